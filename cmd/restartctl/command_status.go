package main

import (
	"context"
	"flag"
	"io"
)

type StatusCommand struct {
	stdout         io.Writer
	stderr         io.Writer
	newCoordinator coordinatorFactory
}

func NewStatusCommand(stdout, stderr io.Writer, newCoordinator coordinatorFactory) *StatusCommand {
	return &StatusCommand{
		stdout:         stdout,
		stderr:         stderr,
		newCoordinator: newCoordinator,
	}
}

func (c *StatusCommand) Run(args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	verbose := fs.Bool("v", false, "print activity recorded during this invocation")
	if err := fs.Parse(args); err != nil {
		return err
	}

	t, err := c.newCoordinator()
	if err != nil {
		return err
	}
	defer t.close()

	if err := t.coord.Initialize(context.Background()); err != nil {
		return err
	}
	printStatus(c.stdout, t.coord.Snapshot())
	if *verbose {
		printActivity(c.stdout, t.coord.Activity().Entries())
	}
	return nil
}
