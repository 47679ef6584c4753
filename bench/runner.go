package bench

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Run executes every step of the upgrade plan and prints the comparison
// table as runs accumulate. The recorder and its baseline live for exactly
// one Run call.
func Run(cfg Config) error {
	setupLog(cfg)
	initialLog(cfg)

	tc := NewToolchain(cfg)
	if err := tc.CheckDependencies(); err != nil {
		return err
	}

	ctx := context.Background()
	if err := tc.EnsureApp(ctx); err != nil {
		return err
	}

	rec := NewRecorder()
	for i, step := range cfg.Steps {
		log.Info().
			Int("step", i+1).
			Str("java", step.Java).
			Str("spring", step.Spring).
			Str("variant", string(step.Variant)).
			Msg("Starting upgrade step")

		if err := runStep(ctx, cfg, tc, rec, step); err != nil {
			return fmt.Errorf("step %d (java %s): %w", i+1, step.Java, err)
		}

		fmt.Println()
		fmt.Print(RenderTable(rec))
		fmt.Println()
	}

	log.Info().Int("runs", len(rec.Entries())).Msg("Upgrade demo complete")
	return nil
}

func runStep(ctx context.Context, cfg Config, tc *Toolchain, rec *Recorder, step Step) error {
	if err := tc.UseJava(ctx, step.Java); err != nil {
		return err
	}
	if err := tc.Build(ctx); err != nil {
		return err
	}

	launcher := NewLauncher(cfg, tc.Env())
	if err := launcher.Prepare(ctx, step.Variant); err != nil {
		return err
	}
	if err := launcher.Start(step.Variant); err != nil {
		return err
	}

	act := NewActuator(cfg.App.Port)
	healthCtx, cancel := context.WithTimeout(ctx, cfg.HealthTimeout())
	err := act.WaitHealthy(healthCtx, cfg.PollInterval())
	cancel()
	if err != nil {
		return err
	}

	if err := captureRun(ctx, act, rec, step.Label); err != nil {
		return err
	}

	stopCtx, cancel := context.WithTimeout(ctx, cfg.StopTimeout())
	err = launcher.Stop(stopCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("stopping application: %w", err)
	}

	if step.RunAdvisor {
		if err := tc.RunAdvisor(ctx); err != nil {
			return err
		}
	}
	return nil
}

// captureRun reads the runtime and framework versions plus the two
// comparison metrics from the running application and records them. The
// versions come from the app itself, not the plan, so the table always
// shows what actually ran.
func captureRun(ctx context.Context, act *Actuator, rec *Recorder, label string) error {
	info, err := act.Info(ctx)
	if err != nil {
		return fmt.Errorf("reading application info: %w", err)
	}
	startup, err := act.StartedTimeMillis(ctx)
	if err != nil {
		return fmt.Errorf("reading startup time: %w", err)
	}
	memory, err := act.MemoryUsedBytes(ctx)
	if err != nil {
		return fmt.Errorf("reading memory usage: %w", err)
	}

	log.Info().
		Str("java", info.Java.Version).
		Str("spring", info.Spring.Boot.Version).
		Float64("startup_ms", startup).
		Float64("memory_bytes", memory).
		Msg("Captured metrics")

	rec.Capture(label, info.Java.Version, info.Spring.Boot.Version, startup, memory)
	return nil
}

func setupLog(cfg Config) {
	if strings.ToLower(cfg.LogFormat) == "json" {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		log.Logger = log.Output(os.Stderr)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}
}

func initialLog(cfg Config) {
	advisor := "disabled"
	if cfg.Advisor.Enabled {
		advisor = strings.Join(cfg.Advisor.Command, " ")
	}

	log.Info().
		Str("app_dir", cfg.App.Dir).
		Str("jar", cfg.App.Jar).
		Int("port", cfg.App.Port).
		Int("steps", len(cfg.Steps)).
		Str("advisor", advisor).
		Msg("Starting upgrade demo")
}
