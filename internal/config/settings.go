package config

import (
	"errors"
	"os"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultBaseURL        = "https://10.191.171.12:5443/EISHOME/shiftHandover"
	defaultTimeoutSeconds = 30
	defaultPollSeconds    = 30
	defaultRole           = "operations"
)

type Settings struct {
	Service  ServiceSettings  `toml:"service"`
	Operator OperatorSettings `toml:"operator"`
	Poll     PollSettings     `toml:"poll"`
	Logging  LoggingSettings  `toml:"logging"`
}

type ServiceSettings struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type OperatorSettings struct {
	Role string `toml:"role"`
	Name string `toml:"name"`
	ID   string `toml:"id"`
}

type PollSettings struct {
	IntervalSeconds int `toml:"interval_seconds"`
}

type LoggingSettings struct {
	Level string `toml:"level"`
}

func DefaultSettings() Settings {
	return Settings{
		Service: ServiceSettings{
			BaseURL:        defaultBaseURL,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Operator: OperatorSettings{
			Role: defaultRole,
		},
		Poll: PollSettings{
			IntervalSeconds: defaultPollSeconds,
		},
		Logging: LoggingSettings{
			Level: "info",
		},
	}
}

func LoadSettings() (Settings, error) {
	path, err := SettingsPath()
	if err != nil {
		return Settings{}, err
	}
	return loadSettingsFromPath(path)
}

func (s Settings) ServiceBaseURL() string {
	url := strings.TrimSpace(s.Service.BaseURL)
	if url == "" {
		return defaultBaseURL
	}
	return strings.TrimRight(url, "/")
}

func (s Settings) ServiceTimeout() time.Duration {
	seconds := s.Service.TimeoutSeconds
	if seconds <= 0 {
		seconds = defaultTimeoutSeconds
	}
	return time.Duration(seconds) * time.Second
}

func (s Settings) Role() string {
	role := strings.ToLower(strings.TrimSpace(s.Operator.Role))
	if role == "" {
		return defaultRole
	}
	return role
}

func (s Settings) OperatorName() string {
	return strings.TrimSpace(s.Operator.Name)
}

func (s Settings) OperatorID() string {
	return strings.TrimSpace(s.Operator.ID)
}

func (s Settings) PollInterval() time.Duration {
	seconds := s.Poll.IntervalSeconds
	if seconds <= 0 {
		seconds = defaultPollSeconds
	}
	return time.Duration(seconds) * time.Second
}

func (s Settings) LogLevel() string {
	level := strings.TrimSpace(s.Logging.Level)
	if level == "" {
		return "info"
	}
	return level
}

func loadSettingsFromPath(path string) (Settings, error) {
	cfg := DefaultSettings()
	if err := readTOML(path, &cfg); err != nil {
		return Settings{}, err
	}
	return cfg, nil
}

func readTOML(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return toml.Unmarshal(data, out)
}
