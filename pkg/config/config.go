// Package config handles configuration for translator-runner.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/devicelab-dev/translator-runner/pkg/core"
	"gopkg.in/yaml.v3"
)

// File names searched by LoadFromDir, in order of preference.
const (
	FileName    = "translator.yaml"
	FileNameAlt = "translator.yml"
)

// Config represents the workspace configuration (translator.yaml).
type Config struct {
	Server   ServerConfig  `yaml:"server"`
	App      AppConfig     `yaml:"app"`
	Timeouts Timeouts      `yaml:"timeouts"`
	Delays   Delays        `yaml:"delays"`
	Swipe    Swipe         `yaml:"swipe"`
	Locators Locators      `yaml:"locators"`
	Output   OutputConfig  `yaml:"output"`
	Logging  LoggingConfig `yaml:"logging"`
}

// ServerConfig locates the Appium server.
type ServerConfig struct {
	URL            string        `yaml:"url"`
	RequestTimeout time.Duration `yaml:"requestTimeout"` // Upper bound for one HTTP call (install can be slow)
}

// AppConfig describes the app under test and the session capabilities.
type AppConfig struct {
	Path                 string                 `yaml:"path"`
	PlatformName         string                 `yaml:"platformName"`
	AutomationName       string                 `yaml:"automationName"`
	AutoGrantPermissions bool                   `yaml:"autoGrantPermissions"`
	NewCommandTimeout    time.Duration          `yaml:"newCommandTimeout"`
	Capabilities         map[string]interface{} `yaml:"capabilities"` // Extra capabilities, passed through
}

// Timeouts are the wait tiers used by element waits.
type Timeouts struct {
	Short    time.Duration `yaml:"short"`
	Default  time.Duration `yaml:"default"`
	Long     time.Duration `yaml:"long"`
	Implicit time.Duration `yaml:"implicit"` // Server-side implicit wait, 0 disables
	Poll     time.Duration `yaml:"poll"`     // Interval between wait attempts
}

// Delays are the settle delays between screens and interactions.
type Delays struct {
	SplashMinimum time.Duration `yaml:"splashMinimum"`
	Transition    time.Duration `yaml:"transition"`
	Interaction   time.Duration `yaml:"interaction"`
	Launch        time.Duration `yaml:"launch"` // After session creation, before the first step
}

// Swipe configures the feature-onboarding carousel gesture.
// Coordinates are fractions of the live window size.
type Swipe struct {
	Count    int           `yaml:"count"`
	StartX   float64       `yaml:"startX"`
	EndX     float64       `yaml:"endX"`
	Y        float64       `yaml:"y"`
	Duration time.Duration `yaml:"duration"`
}

// OutputConfig controls where run artifacts are written.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig controls the log file and console level.
type LoggingConfig struct {
	Dir   string `yaml:"dir"`
	Level string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	home := GetHome()
	return &Config{
		Server: ServerConfig{
			URL:            "http://127.0.0.1:4723",
			RequestTimeout: 5 * time.Minute,
		},
		App: AppConfig{
			Path:                 filepath.Join(home, "Language Translator-debug.apk"),
			PlatformName:         "Android",
			AutomationName:       "UiAutomator2",
			AutoGrantPermissions: true,
			NewCommandTimeout:    5 * time.Minute,
		},
		Timeouts: Timeouts{
			Short:    8 * time.Second,
			Default:  15 * time.Second,
			Long:     30 * time.Second,
			Implicit: 10 * time.Second,
			Poll:     500 * time.Millisecond,
		},
		Delays: Delays{
			SplashMinimum: 8 * time.Second,
			Transition:    2 * time.Second,
			Interaction:   1 * time.Second,
			Launch:        2 * time.Second,
		},
		Swipe: Swipe{
			Count:    3,
			StartX:   0.9,
			EndX:     0.2,
			Y:        0.5,
			Duration: 800 * time.Millisecond,
		},
		Locators: DefaultLocators(),
		Output:   OutputConfig{Dir: GetReportsDir()},
		Logging:  LoggingConfig{Dir: GetLogsDir(), Level: "info"},
	}
}

// Load loads configuration from a file. Fields absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromDir looks for translator.yaml or translator.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range []string{FileName, FileNameAlt} {
		configPath := filepath.Join(dir, name)
		if _, err := os.Stat(configPath); err == nil {
			return Load(configPath)
		}
	}

	// No config file found, use defaults
	return Default(), nil
}

// Validate checks the configuration for values the harness cannot run with.
func (c *Config) Validate() error {
	var problems []string

	u, err := url.Parse(c.Server.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		problems = append(problems, fmt.Sprintf("server.url %q is not an http(s) URL", c.Server.URL))
	}

	if c.Timeouts.Short <= 0 || c.Timeouts.Default <= 0 || c.Timeouts.Long <= 0 {
		problems = append(problems, "timeouts.short/default/long must be positive")
	}
	if c.Timeouts.Poll <= 0 {
		problems = append(problems, "timeouts.poll must be positive")
	}
	if c.Timeouts.Implicit < 0 {
		problems = append(problems, "timeouts.implicit must not be negative")
	}

	d := c.Delays
	if d.SplashMinimum < 0 || d.Transition < 0 || d.Interaction < 0 || d.Launch < 0 {
		problems = append(problems, "delays must not be negative")
	}

	problems = append(problems, c.Swipe.problems()...)
	problems = append(problems, c.Locators.problems()...)

	if len(problems) > 0 {
		return core.ErrInvalidConfig.WithMessage("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}

// ValidateApp checks that the app artifact exists. Appium also accepts a
// remote http(s) URL, which is not checked.
func (c *Config) ValidateApp() error {
	if c.App.Path == "" {
		return core.ErrMissingRequired.WithMessage("app.path is required")
	}
	if strings.HasPrefix(c.App.Path, "http://") || strings.HasPrefix(c.App.Path, "https://") {
		return nil
	}
	info, err := os.Stat(c.App.Path)
	if err != nil {
		return core.ErrInvalidConfig.WithMessage("app not found: " + c.App.Path).WithCause(err)
	}
	if info.IsDir() {
		return core.ErrInvalidConfig.WithMessage("app path is a directory: " + c.App.Path)
	}
	return nil
}

func (s Swipe) problems() []string {
	var out []string
	if s.Count < 0 {
		out = append(out, "swipe.count must not be negative")
	}
	if !(s.EndX > 0 && s.EndX < s.StartX && s.StartX < 1) {
		out = append(out, fmt.Sprintf("swipe must run right to left inside the screen (0 < endX %.2f < startX %.2f < 1)", s.EndX, s.StartX))
	}
	if !(s.Y > 0 && s.Y < 1) {
		out = append(out, fmt.Sprintf("swipe.y %.2f must be between 0 and 1", s.Y))
	}
	if s.Duration <= 0 {
		out = append(out, "swipe.duration must be positive")
	}
	return out
}
