// ABOUTME: Settings loading with global + project YAML files merged field by field
// ABOUTME: Precedence: defaults < global < project < environment < command line

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultURL is the backend used when nothing else is configured.
const DefaultURL = "http://localhost:8000"

// Timing holds every periodic and one-shot delay.
type Timing struct {
	Heartbeat    time.Duration `yaml:"heartbeat,omitempty"`
	Reconnect    time.Duration `yaml:"reconnect,omitempty"`
	ConnectRetry time.Duration `yaml:"connect_retry,omitempty"`
	Poll         time.Duration `yaml:"poll,omitempty"`
	Liveness     time.Duration `yaml:"liveness,omitempty"`
	Screenshot   time.Duration `yaml:"screenshot,omitempty"`
	SaveStatus   time.Duration `yaml:"save_status,omitempty"`
	AgentClear   time.Duration `yaml:"agent_clear,omitempty"`
	Notice       time.Duration `yaml:"notice,omitempty"`
}

// DefaultTiming returns the standard delays.
func DefaultTiming() Timing {
	return Timing{
		Heartbeat:    30 * time.Second,
		Reconnect:    3 * time.Second,
		ConnectRetry: 5 * time.Second,
		Poll:         5 * time.Second,
		Liveness:     10 * time.Second,
		Screenshot:   3 * time.Second,
		SaveStatus:   3 * time.Second,
		AgentClear:   10 * time.Second,
		Notice:       5 * time.Second,
	}
}

// Log configures logging.
type Log struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
	File   string `yaml:"file,omitempty"`
}

// Settings holds the merged configuration.
type Settings struct {
	URL           string            `yaml:"url,omitempty"`
	DownloadDir   string            `yaml:"download_dir,omitempty"`
	ImageProtocol string            `yaml:"image_protocol,omitempty"`
	Headers       map[string]string `yaml:"headers,omitempty"`
	Log           Log               `yaml:"log,omitempty"`
	Timing        Timing            `yaml:"timing,omitempty"`
}

// Overrides are command-line values applied last.
type Overrides struct {
	URL      string
	LogLevel string
	LogFile  string
}

// Load reads the global file (or explicit, when non-empty) and the project
// file under projectRoot, then applies environment and command-line values.
func Load(projectRoot, explicit string, o Overrides) (*Settings, error) {
	globalPath := GlobalConfigFile()
	if explicit != "" {
		globalPath = explicit
	}
	global, err := loadFile(globalPath)
	if err != nil {
		if explicit != "" || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading config %s: %w", globalPath, err)
		}
	}

	project, err := loadFile(ProjectConfigFile(projectRoot))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	s := merge(Defaults(), merge(global, project))
	ResolveEnvVars(s)
	applyEnv(s, os.Getenv)
	applyOverrides(s, o)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Defaults returns settings with every field at its default.
func Defaults() *Settings {
	return &Settings{
		URL:           DefaultURL,
		ImageProtocol: "auto",
		Log:           Log{Level: "info", Format: "text", File: LogFile()},
		Timing:        DefaultTiming(),
	}
}

// Validate rejects values the client cannot run with.
func (s *Settings) Validate() error {
	switch s.ImageProtocol {
	case "", "auto", "kitty", "halfblock":
	default:
		return fmt.Errorf("image_protocol %q: want auto, kitty or halfblock", s.ImageProtocol)
	}
	t := s.Timing
	for name, d := range map[string]time.Duration{
		"heartbeat": t.Heartbeat, "reconnect": t.Reconnect, "connect_retry": t.ConnectRetry,
		"poll": t.Poll, "liveness": t.Liveness, "screenshot": t.Screenshot,
		"save_status": t.SaveStatus, "agent_clear": t.AgentClear, "notice": t.Notice,
	} {
		if d < 0 {
			return fmt.Errorf("timing.%s: must not be negative", name)
		}
	}
	return nil
}

// loadFile reads Settings from a YAML file.
func loadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Settings{}, err
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &s, nil
}

// merge overlays non-zero fields of over onto base.
func merge(base, over *Settings) *Settings {
	if base == nil {
		base = &Settings{}
	}
	if over == nil {
		return base
	}
	result := *base

	if over.URL != "" {
		result.URL = over.URL
	}
	if over.DownloadDir != "" {
		result.DownloadDir = over.DownloadDir
	}
	if over.ImageProtocol != "" {
		result.ImageProtocol = over.ImageProtocol
	}
	if over.Log.Level != "" {
		result.Log.Level = over.Log.Level
	}
	if over.Log.Format != "" {
		result.Log.Format = over.Log.Format
	}
	if over.Log.File != "" {
		result.Log.File = over.Log.File
	}
	result.Timing = mergeTiming(base.Timing, over.Timing)

	if len(base.Headers) > 0 || len(over.Headers) > 0 {
		result.Headers = make(map[string]string, len(base.Headers)+len(over.Headers))
		for k, v := range base.Headers {
			result.Headers[k] = v
		}
		for k, v := range over.Headers {
			result.Headers[k] = v
		}
	}
	return &result
}

func mergeTiming(base, over Timing) Timing {
	pick := func(b, o time.Duration) time.Duration {
		if o != 0 {
			return o
		}
		return b
	}
	return Timing{
		Heartbeat:    pick(base.Heartbeat, over.Heartbeat),
		Reconnect:    pick(base.Reconnect, over.Reconnect),
		ConnectRetry: pick(base.ConnectRetry, over.ConnectRetry),
		Poll:         pick(base.Poll, over.Poll),
		Liveness:     pick(base.Liveness, over.Liveness),
		Screenshot:   pick(base.Screenshot, over.Screenshot),
		SaveStatus:   pick(base.SaveStatus, over.SaveStatus),
		AgentClear:   pick(base.AgentClear, over.AgentClear),
		Notice:       pick(base.Notice, over.Notice),
	}
}

func applyEnv(s *Settings, getenv func(string) string) {
	if v := getenv("SEEKDECK_URL"); v != "" {
		s.URL = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		s.Log.Level = v
	}
	if v := getenv("LOG_FORMAT"); v != "" {
		s.Log.Format = v
	}
}

func applyOverrides(s *Settings, o Overrides) {
	if o.URL != "" {
		s.URL = o.URL
	}
	if o.LogLevel != "" {
		s.Log.Level = o.LogLevel
	}
	if o.LogFile != "" {
		s.Log.File = o.LogFile
	}
}
