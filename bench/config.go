package bench

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Variant selects how the packaged application is launched.
type Variant string

const (
	VariantStandard  Variant = "standard"  // java -jar
	VariantAOT       Variant = "aot"       // java -Dspring.aot.enabled=true -jar
	VariantExtracted Variant = "extracted" // launch the jarmode-extracted tree
	VariantCDS       Variant = "cds"       // extracted tree plus a CDS archive
)

// Config is the full upgrade plan driving a demo run.
type Config struct {
	App     App     `yaml:"app"`
	Advisor Advisor `yaml:"advisor"`
	Timing  Timing  `yaml:"timing"`
	Steps   []Step  `yaml:"steps"`

	// LogFormat is "console" or "json", set from the CLI rather than the plan file.
	LogFormat string `yaml:"-"`
}

// App describes the sample application under test.
type App struct {
	RepoURL        string `yaml:"repo_url"`
	Dir            string `yaml:"dir"`
	Jar            string `yaml:"jar"`             // relative to Dir
	Port           int    `yaml:"port"`            // HTTP port the app listens on
	ProcessPattern string `yaml:"process_pattern"` // pgrep -f pattern used to stop it
}

// Advisor configures the external upgrade tool invoked between steps.
type Advisor struct {
	Enabled bool     `yaml:"enabled"`
	Command []string `yaml:"command"`
}

// Timing holds the polling and shutdown intervals.
type Timing struct {
	PollIntervalMs   int `yaml:"poll_interval_ms"`
	HealthTimeoutSec int `yaml:"health_timeout_sec"`
	StopGraceSec     int `yaml:"stop_grace_sec"`
	StopTimeoutSec   int `yaml:"stop_timeout_sec"`
}

// Step is one upgrade stage: a JDK to activate, the framework version the
// build descriptor should be at, and how to launch the result.
type Step struct {
	Java       string  `yaml:"java"`   // SDKMAN candidate identifier, e.g. 21.0.4-tem
	Spring     string  `yaml:"spring"` // expected framework version, display only
	Label      string  `yaml:"label"`
	Variant    Variant `yaml:"variant"`
	RunAdvisor bool    `yaml:"run_advisor"`
}

// DefaultConfig returns the built-in plan, runnable without any plan file.
func DefaultConfig() Config {
	cfg := Config{
		Advisor: Advisor{Enabled: true},
		Steps: []Step{
			{Java: "17.0.12-tem", Spring: "3.2.12", RunAdvisor: true},
			{Java: "21.0.4-tem", Spring: "3.4.5", RunAdvisor: true},
			{Java: "25.0.1-tem", Spring: "3.5.5"},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadPlan reads a plan file, or returns the built-in plan when path is empty.
func LoadPlan(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read plan: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse plan: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("invalid plan: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.RepoURL == "" {
		c.App.RepoURL = "https://github.com/spring-projects/spring-petclinic"
	}
	if c.App.Dir == "" {
		c.App.Dir = "spring-petclinic"
	}
	if c.App.Jar == "" {
		c.App.Jar = "target/spring-petclinic.jar"
	}
	if c.App.Port <= 0 {
		c.App.Port = 8080
	}
	if c.App.ProcessPattern == "" {
		c.App.ProcessPattern = c.App.Jar
	}
	if len(c.Advisor.Command) == 0 {
		c.Advisor.Command = []string{"advisor", "upgrade-plan", "apply"}
	}
	if c.Timing.PollIntervalMs <= 0 {
		c.Timing.PollIntervalMs = 500
	}
	if c.Timing.HealthTimeoutSec <= 0 {
		c.Timing.HealthTimeoutSec = 300
	}
	if c.Timing.StopGraceSec <= 0 {
		c.Timing.StopGraceSec = 3
	}
	if c.Timing.StopTimeoutSec <= 0 {
		c.Timing.StopTimeoutSec = 60
	}
	if c.LogFormat == "" {
		c.LogFormat = "console"
	}

	for i := range c.Steps {
		if c.Steps[i].Variant == "" {
			c.Steps[i].Variant = VariantStandard
		}
		if c.Steps[i].Label == "" {
			c.Steps[i].Label = string(c.Steps[i].Variant)
		}
	}
}

func (c *Config) validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("app.port %d out of range", c.App.Port)
	}
	if len(c.Steps) == 0 {
		return fmt.Errorf("plan has no steps")
	}
	for i, step := range c.Steps {
		if step.Java == "" {
			return fmt.Errorf("step %d: java version is required", i+1)
		}
		switch step.Variant {
		case VariantStandard, VariantAOT, VariantExtracted, VariantCDS:
		default:
			return fmt.Errorf("step %d: unknown variant %q", i+1, step.Variant)
		}
		if step.RunAdvisor && !c.Advisor.Enabled {
			return fmt.Errorf("step %d: run_advisor set but advisor is disabled", i+1)
		}
	}
	return nil
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Timing.PollIntervalMs) * time.Millisecond
}

func (c *Config) HealthTimeout() time.Duration {
	return time.Duration(c.Timing.HealthTimeoutSec) * time.Second
}

func (c *Config) StopGrace() time.Duration {
	return time.Duration(c.Timing.StopGraceSec) * time.Second
}

func (c *Config) StopTimeout() time.Duration {
	return time.Duration(c.Timing.StopTimeoutSec) * time.Second
}
