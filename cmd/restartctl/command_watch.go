package main

import (
	"context"
	"flag"
	"io"
)

type WatchCommand struct {
	stderr         io.Writer
	newCoordinator coordinatorFactory
	runWatch       watchRunner
}

func NewWatchCommand(stderr io.Writer, newCoordinator coordinatorFactory, runWatch watchRunner) *WatchCommand {
	return &WatchCommand{
		stderr:         stderr,
		newCoordinator: newCoordinator,
		runWatch:       runWatch,
	}
}

func (c *WatchCommand) Run(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	name := fs.String("name", "", "support operator name used for acknowledgments")
	id := fs.String("id", "", "support operator id used for acknowledgments")
	if err := fs.Parse(args); err != nil {
		return err
	}

	t, err := c.newCoordinator()
	if err != nil {
		return err
	}
	defer t.close()

	supportName := *name
	if supportName == "" {
		supportName = t.settings.OperatorName()
	}
	supportID := *id
	if supportID == "" {
		supportID = t.settings.OperatorID()
	}

	if err := t.coord.Initialize(context.Background()); err != nil {
		return err
	}
	return c.runWatch(t.coord, supportName, supportID)
}
