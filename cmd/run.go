package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"boot-upgrade-bench/bench"
)

var (
	planFile         string
	appDir           string
	port             int
	logFormat        string
	pollIntervalMs   int
	healthTimeoutSec int
	stopGraceSec     int
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every step of the upgrade plan and print the comparison table",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := bench.LoadPlan(planFile)
		if err != nil {
			log.Fatalf("Invalid plan: %v", err)
		}

		// flags override the plan file only when set explicitly
		if cmd.Flags().Changed("app-dir") {
			cfg.App.Dir = appDir
		}
		if cmd.Flags().Changed("port") {
			cfg.App.Port = port
		}
		if cmd.Flags().Changed("poll-interval") {
			cfg.Timing.PollIntervalMs = pollIntervalMs
		}
		if cmd.Flags().Changed("health-timeout") {
			cfg.Timing.HealthTimeoutSec = healthTimeoutSec
		}
		if cmd.Flags().Changed("stop-grace") {
			cfg.Timing.StopGraceSec = stopGraceSec
		}
		cfg.LogFormat = logFormat

		if err := bench.Run(cfg); err != nil {
			log.Fatalf("Upgrade demo failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&planFile, "plan", "", "Path to a YAML upgrade plan (empty for the built-in plan)")
	runCmd.Flags().StringVar(&appDir, "app-dir", "", "Directory of the sample application (overrides the plan)")
	runCmd.Flags().IntVar(&port, "port", 8080, "HTTP port the application listens on (overrides the plan)")
	runCmd.Flags().StringVar(&logFormat, "log-format", "console", "Log format: 'json' or 'console'")
	runCmd.Flags().IntVar(&pollIntervalMs, "poll-interval", 500, "Health poll interval in milliseconds (overrides the plan)")
	runCmd.Flags().IntVar(&healthTimeoutSec, "health-timeout", 300, "Seconds to wait for the application to become healthy (overrides the plan)")
	runCmd.Flags().IntVar(&stopGraceSec, "stop-grace", 3, "Grace period in seconds after the process table clears (overrides the plan)")
}
