package main

import (
	"context"
	"flag"
	"io"
)

type CompleteStepCommand struct {
	stdout         io.Writer
	stderr         io.Writer
	newCoordinator coordinatorFactory
}

func NewCompleteStepCommand(stdout, stderr io.Writer, newCoordinator coordinatorFactory) *CompleteStepCommand {
	return &CompleteStepCommand{
		stdout:         stdout,
		stderr:         stderr,
		newCoordinator: newCoordinator,
	}
}

func (c *CompleteStepCommand) Run(args []string) error {
	fs := flag.NewFlagSet("complete-step", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	step := fs.Int("step", 0, "1-based step number to complete (default: the current step)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 && *step == 0 {
		parsed, err := parseStepNumber(fs.Arg(0))
		if err != nil {
			return err
		}
		*step = parsed
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

	target := *step
	if target == 0 {
		target = t.coord.Snapshot().CurrentStep
	}
	if err := t.coord.CompleteStep(ctx, target); err != nil {
		return err
	}
	printStatus(c.stdout, t.coord.Snapshot())
	return nil
}
