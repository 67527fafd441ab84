package main

import (
	"context"
	"flag"
	"io"
)

type AckCommand struct {
	stdout         io.Writer
	stderr         io.Writer
	newCoordinator coordinatorFactory
}

func NewAckCommand(stdout, stderr io.Writer, newCoordinator coordinatorFactory) *AckCommand {
	return &AckCommand{
		stdout:         stdout,
		stderr:         stderr,
		newCoordinator: newCoordinator,
	}
}

func (c *AckCommand) Run(args []string) error {
	fs := flag.NewFlagSet("ack", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	name := fs.String("name", "", "acknowledging support operator name (default: operator.name from config)")
	id := fs.String("id", "", "acknowledging support operator id (default: operator.id from config)")
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

	ctx := context.Background()
	if err := t.coord.Initialize(ctx); err != nil {
		return err
	}
	if err := t.coord.AcknowledgeStep11(ctx, supportName, supportID); err != nil {
		return err
	}
	printStatus(c.stdout, t.coord.Snapshot())
	return nil
}
