package main

import (
	"context"
	"flag"
	"fmt"
	"io"
)

type NewSessionCommand struct {
	stdout         io.Writer
	stderr         io.Writer
	newCoordinator coordinatorFactory
}

func NewNewSessionCommand(stdout, stderr io.Writer, newCoordinator coordinatorFactory) *NewSessionCommand {
	return &NewSessionCommand{
		stdout:         stdout,
		stderr:         stderr,
		newCoordinator: newCoordinator,
	}
}

func (c *NewSessionCommand) Run(args []string) error {
	fs := flag.NewFlagSet("new-session", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
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
	if err := t.coord.StartNewSession(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "previous run retired; start-set will open a fresh session")
	return nil
}
