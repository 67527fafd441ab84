package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"restartctl/internal/client"
	"restartctl/internal/config"
	"restartctl/internal/logging"
	"restartctl/internal/restart"
	"restartctl/internal/store"
	"restartctl/internal/watch"
)

// tool bundles everything one command invocation needs: the coordinator,
// the loaded settings, and a teardown hook.
type tool struct {
	coord    *restart.Coordinator
	settings config.Settings
	close    func()
}

type coordinatorFactory func() (*tool, error)

type watchRunner func(coord *restart.Coordinator, supportName, supportID string) error

func newDefaultCoordinator() (*tool, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, err
	}
	role, ok := restart.ParseRole(settings.Role())
	if !ok {
		return nil, fmt.Errorf("invalid operator role %q: must be operations or support", settings.Role())
	}
	if _, err := config.EnsureDataDir(); err != nil {
		return nil, err
	}
	cachePath, err := config.CachePath()
	if err != nil {
		return nil, err
	}
	sessionStore, err := store.Open(cachePath)
	if err != nil {
		return nil, err
	}

	logger := logging.New(os.Stderr, logging.ParseLevel(settings.LogLevel()))
	api := client.New(settings.ServiceBaseURL(), settings.ServiceTimeout())

	coord, err := restart.NewCoordinator(restart.Options{
		Service:      api,
		Store:        sessionStore,
		Role:         role,
		Logger:       logger,
		PollInterval: settings.PollInterval(),
	})
	if err != nil {
		_ = sessionStore.Close()
		return nil, err
	}
	return &tool{
		coord:    coord,
		settings: settings,
		close: func() {
			coord.Close()
			_ = sessionStore.Close()
		},
	}, nil
}

func runWatchTUI(coord *restart.Coordinator, supportName, supportID string) error {
	return watch.Run(coord, supportName, supportID)
}

func printStatus(output io.Writer, snap restart.Snapshot) {
	session := snap.SessionID
	if session == "" {
		session = "-"
	}
	fmt.Fprintf(output, "session: %s\nrole: %s\nstate: %s\n\n", session, snap.Role, snap.State)

	writer := tabwriter.NewWriter(output, 0, 8, 2, ' ', 0)
	fmt.Fprintln(writer, "SET\tINFRA\tSTATUS\tSTEP\tACKNOWLEDGED BY")
	for i := 0; i < restart.SetCount; i++ {
		if i >= len(snap.Sets) {
			name := "-"
			if def, ok := restart.DefaultSet(i); ok {
				name = def.InfraName
			}
			fmt.Fprintf(writer, "%d\t%s\t%s\t%s\t%s\n", i+1, name, restart.SetNotStarted, "-", "-")
			continue
		}
		set := snap.Sets[i]
		name := set.InfraName
		if name == "" {
			name = "-"
		}
		step := "-"
		if set.Status == restart.SetStarted {
			step = fmt.Sprintf("%d/%d", set.CurrentStep, restart.StepCount)
		}
		ack := "-"
		if set.SupportName != "" {
			ack = set.SupportName
			if set.AckTime != "" {
				ack += " (" + set.AckTime + ")"
			}
		}
		fmt.Fprintf(writer, "%d\t%s\t%s\t%s\t%s\n", i+1, name, set.Status, step, ack)
	}
	_ = writer.Flush()

	if snap.ActiveSet >= 0 {
		title, _ := restart.StepTitle(snap.CurrentStep)
		fmt.Fprintf(output, "\ncurrent step: %d. %s\n", snap.CurrentStep, title)
	}
}

func printActivity(output io.Writer, entries []restart.ActivityEntry) {
	if len(entries) == 0 {
		return
	}
	fmt.Fprintln(output, "\nactivity:")
	writer := tabwriter.NewWriter(output, 0, 8, 2, ' ', 0)
	for _, entry := range entries {
		fmt.Fprintf(writer, "%s\t%s\t%s\n",
			entry.At.Format("15:04:05"), entry.Category, entry.Message)
	}
	_ = writer.Flush()
}

func parseStepNumber(raw string) (int, error) {
	step, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid step number %q", raw)
	}
	return step, nil
}

func exitOnErr(label string, err error, stderr io.Writer) {
	if err == nil {
		return
	}
	fmt.Fprintf(stderr, "%s error: %v\n", label, err)
	os.Exit(1)
}
