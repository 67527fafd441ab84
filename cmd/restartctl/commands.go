package main

import (
	"io"
	"os"
)

type commandRunner interface {
	Run(args []string) error
}

type commandWiring struct {
	stdout         io.Writer
	stderr         io.Writer
	newCoordinator coordinatorFactory
	runWatch       watchRunner
}

func defaultCommandWiring(stdout, stderr io.Writer) commandWiring {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return commandWiring{
		stdout:         stdout,
		stderr:         stderr,
		newCoordinator: newDefaultCoordinator,
		runWatch:       runWatchTUI,
	}
}

func buildCommands(wiring commandWiring) map[string]commandRunner {
	return map[string]commandRunner{
		"status":        NewStatusCommand(wiring.stdout, wiring.stderr, wiring.newCoordinator),
		"start-set":     NewStartSetCommand(wiring.stdout, wiring.stderr, wiring.newCoordinator),
		"complete-step": NewCompleteStepCommand(wiring.stdout, wiring.stderr, wiring.newCoordinator),
		"ack":           NewAckCommand(wiring.stdout, wiring.stderr, wiring.newCoordinator),
		"new-session":   NewNewSessionCommand(wiring.stdout, wiring.stderr, wiring.newCoordinator),
		"watch":         NewWatchCommand(wiring.stderr, wiring.newCoordinator, wiring.runWatch),
		"config":        NewConfigCommand(wiring.stdout, wiring.stderr),
	}
}
