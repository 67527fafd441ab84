package main

import (
	"context"
	"flag"
	"io"
)

type StartSetCommand struct {
	stdout         io.Writer
	stderr         io.Writer
	newCoordinator coordinatorFactory
}

func NewStartSetCommand(stdout, stderr io.Writer, newCoordinator coordinatorFactory) *StartSetCommand {
	return &StartSetCommand{
		stdout:         stdout,
		stderr:         stderr,
		newCoordinator: newCoordinator,
	}
}

func (c *StartSetCommand) Run(args []string) error {
	fs := flag.NewFlagSet("start-set", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	setNumber := fs.Int("set", 0, "1-based set number to start (default: the next set in order)")
	infraName := fs.String("infra-name", "", "infrastructure name (default: built-in definition)")
	infraID := fs.String("infra-id", "", "infrastructure id (default: built-in definition)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	t, err := c.newCoordinator()
	if err != nil {
		return err
	}
	defer t.close()

	ctx := context.Background()
	if err := t.coord.Initialize(ctx); err != nil {
		return err
	}

	index := len(t.coord.Snapshot().Sets)
	if *setNumber > 0 {
		index = *setNumber - 1
	}
	if err := t.coord.StartSet(ctx, index, *infraName, *infraID); err != nil {
		return err
	}
	printStatus(c.stdout, t.coord.Snapshot())
	return nil
}
