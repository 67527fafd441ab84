package main

import (
	"flag"
	"fmt"
	"io"

	toml "github.com/pelletier/go-toml/v2"

	"restartctl/internal/config"
)

type ConfigCommand struct {
	stdout io.Writer
	stderr io.Writer
}

func NewConfigCommand(stdout, stderr io.Writer) *ConfigCommand {
	return &ConfigCommand{
		stdout: stdout,
		stderr: stderr,
	}
}

func (c *ConfigCommand) Run(args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	defaults := fs.Bool("default", false, "print default config values")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path, err := config.SettingsPath()
	if err != nil {
		return err
	}

	var settings config.Settings
	if *defaults {
		settings = config.DefaultSettings()
	} else {
		settings, err = config.LoadSettings()
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(c.stdout, "# %s\n", path)
	data, err := toml.Marshal(settings)
	if err != nil {
		return err
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	_, err = c.stdout.Write(data)
	return err
}
