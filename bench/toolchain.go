package bench

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// Toolchain wraps the external tools the demo drives: git, SDKMAN, the
// maven wrapper, and the upgrade advisor. UseJava updates the environment
// that every later build and launch runs under.
type Toolchain struct {
	cfg       Config
	sdkmanDir string
	env       []string
}

func NewToolchain(cfg Config) *Toolchain {
	dir := os.Getenv("SDKMAN_DIR")
	if dir == "" {
		dir = filepath.Join(os.Getenv("HOME"), ".sdkman")
	}
	return &Toolchain{cfg: cfg, sdkmanDir: dir, env: os.Environ()}
}

// Env returns the environment for processes that must see the active JDK.
func (t *Toolchain) Env() []string {
	return t.env
}

// CheckDependencies verifies every external tool before the first step runs.
func (t *Toolchain) CheckDependencies() error {
	for _, bin := range []string{"git", "bash", "pgrep"} {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("required tool %q not found in PATH", bin)
		}
	}

	if _, err := os.Stat(t.sdkmanInit()); err != nil {
		return fmt.Errorf("SDKMAN not found under %s, install it from https://sdkman.io", t.sdkmanDir)
	}

	if t.cfg.Advisor.Enabled {
		if _, err := exec.LookPath(t.cfg.Advisor.Command[0]); err != nil {
			return fmt.Errorf("upgrade advisor %q not found in PATH", t.cfg.Advisor.Command[0])
		}
	}
	return nil
}

// EnsureApp clones the sample application when its directory is missing.
func (t *Toolchain) EnsureApp(ctx context.Context) error {
	if _, err := os.Stat(t.cfg.App.Dir); err == nil {
		return nil
	}

	log.Info().Str("repo", t.cfg.App.RepoURL).Str("dir", t.cfg.App.Dir).Msg("Cloning sample application")
	if err := t.run(ctx, "", "git", "clone", t.cfg.App.RepoURL, t.cfg.App.Dir); err != nil {
		return fmt.Errorf("cloning sample application: %w", err)
	}
	return nil
}

// UseJava installs (if needed) and activates a JDK through SDKMAN. The
// resulting JAVA_HOME is injected into every later build and launch.
func (t *Toolchain) UseJava(ctx context.Context, version string) error {
	candidate := filepath.Join(t.sdkmanDir, "candidates", "java", version)
	if _, err := os.Stat(candidate); err != nil {
		log.Info().Str("java", version).Msg("Installing JDK")
		script := fmt.Sprintf("source %q && sdk install java %s", t.sdkmanInit(), version)
		if err := t.run(ctx, "", "bash", "-c", script); err != nil {
			return fmt.Errorf("sdk install java %s: %w", version, err)
		}
	}

	t.env = envWithJava(os.Environ(), candidate)
	log.Info().Str("java", version).Str("java_home", candidate).Msg("Switched JDK")
	return nil
}

// Build packages the application with the maven wrapper.
func (t *Toolchain) Build(ctx context.Context) error {
	log.Info().Str("dir", t.cfg.App.Dir).Msg("Building application")
	if err := t.run(ctx, t.cfg.App.Dir, "./mvnw", "-q", "clean", "package", "-DskipTests"); err != nil {
		return fmt.Errorf("maven build: %w", err)
	}
	return nil
}

// RunAdvisor applies the next upgrade step to the build descriptor in place.
// A failed upgrade aborts the run since every later step would measure the
// wrong framework version.
func (t *Toolchain) RunAdvisor(ctx context.Context) error {
	if !t.cfg.Advisor.Enabled {
		return nil
	}

	argv := t.cfg.Advisor.Command
	log.Info().Strs("command", argv).Msg("Running upgrade advisor")
	if err := t.run(ctx, t.cfg.App.Dir, argv[0], argv[1:]...); err != nil {
		return fmt.Errorf("upgrade advisor: %w", err)
	}
	return nil
}

func (t *Toolchain) sdkmanInit() string {
	return filepath.Join(t.sdkmanDir, "bin", "sdkman-init.sh")
}

func (t *Toolchain) run(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = t.env
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return fmt.Errorf("%s: exit code %d", name, exitErr.ExitCode())
		}
		return err
	}
	return nil
}

// envWithJava returns base with JAVA_HOME set and its bin dir prepended to
// PATH, replacing any previous values.
func envWithJava(base []string, javaHome string) []string {
	env := make([]string, 0, len(base)+1)
	for _, kv := range base {
		if strings.HasPrefix(kv, "JAVA_HOME=") {
			continue
		}
		if strings.HasPrefix(kv, "PATH=") {
			env = append(env, "PATH="+filepath.Join(javaHome, "bin")+
				string(os.PathListSeparator)+strings.TrimPrefix(kv, "PATH="))
			continue
		}
		env = append(env, kv)
	}
	return append(env, "JAVA_HOME="+javaHome)
}
