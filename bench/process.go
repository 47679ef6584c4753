package bench

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

// launchArgs returns the java argv for the given launch variant.
func launchArgs(v Variant, jar string) ([]string, error) {
	switch v {
	case VariantStandard:
		return []string{"java", "-jar", jar}, nil
	case VariantAOT:
		return []string{"java", "-Dspring.aot.enabled=true", "-jar", jar}, nil
	case VariantExtracted:
		return []string{"java", "-jar", extractedJar(jar)}, nil
	case VariantCDS:
		return []string{"java", "-XX:SharedArchiveFile=" + archivePath(jar), "-jar", extractedJar(jar)}, nil
	default:
		return nil, fmt.Errorf("unknown launch variant %q", v)
	}
}

func extractedDir(jar string) string {
	return filepath.Join(filepath.Dir(jar), "extracted")
}

func extractedJar(jar string) string {
	return filepath.Join(extractedDir(jar), filepath.Base(jar))
}

func archivePath(jar string) string {
	return strings.TrimSuffix(jar, ".jar") + ".jsa"
}

// Launcher starts and stops the application under test.
type Launcher struct {
	cfg Config
	env []string // environment with the active JAVA_HOME
}

func NewLauncher(cfg Config, env []string) *Launcher {
	return &Launcher{cfg: cfg, env: env}
}

// Prepare runs the extraction a variant needs before launch. For CDS this
// includes the training run that writes the archive; the app exits on
// context refresh so the training run never serves traffic.
func (l *Launcher) Prepare(ctx context.Context, v Variant) error {
	if v != VariantExtracted && v != VariantCDS {
		return nil
	}

	log.Info().Str("variant", string(v)).Msg("Extracting application jar")
	if err := l.runJava(ctx, "-Djarmode=tools", "-jar", l.cfg.App.Jar,
		"extract", "--destination", extractedDir(l.cfg.App.Jar), "--force"); err != nil {
		return fmt.Errorf("extracting jar: %w", err)
	}

	if v == VariantCDS {
		log.Info().Msg("Running CDS training run")
		if err := l.runJava(ctx,
			"-XX:ArchiveClassesAtExit="+archivePath(l.cfg.App.Jar),
			"-Dspring.context.exit=onRefresh",
			"-jar", extractedJar(l.cfg.App.Jar)); err != nil {
			return fmt.Errorf("CDS training run: %w", err)
		}
	}
	return nil
}

func (l *Launcher) runJava(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "java", args...)
	cmd.Dir = l.cfg.App.Dir
	cmd.Env = l.env
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return fmt.Errorf("java: exit code %d", exitErr.ExitCode())
		}
		return err
	}
	return nil
}

// Start launches the packaged application in the background, in its own
// process group, with output captured to a per-variant log file in the app
// directory.
func (l *Launcher) Start(v Variant) error {
	argv, err := launchArgs(v, l.cfg.App.Jar)
	if err != nil {
		return err
	}

	logPath := filepath.Join(l.cfg.App.Dir, fmt.Sprintf("run-%s.log", v))
	logFile, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("creating run log: %w", err)
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = l.cfg.App.Dir
	cmd.Env = l.env
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		logFile.Close()
		return fmt.Errorf("starting application: %w", err)
	}

	// reap the child when it eventually exits
	go func() {
		cmd.Wait()
		logFile.Close()
	}()

	log.Info().
		Str("variant", string(v)).
		Int("pid", cmd.Process.Pid).
		Str("log", logPath).
		Msg("Application started")
	return nil
}

// Stop terminates every process matching the configured pattern, waits for
// the process table to clear, sleeps the grace period, then waits for the
// port to be released.
func (l *Launcher) Stop(ctx context.Context) error {
	pids := l.findPids()
	if len(pids) == 0 {
		log.Warn().Str("pattern", l.cfg.App.ProcessPattern).Msg("No running application found to stop")
	}
	for _, pid := range pids {
		log.Info().Int("pid", pid).Msg("Terminating application")
		syscall.Kill(pid, syscall.SIGTERM)
	}

	if err := waitUntil(ctx, l.cfg.PollInterval(), func() bool {
		return len(l.findPids()) == 0
	}); err != nil {
		return fmt.Errorf("waiting for process exit: %w", err)
	}

	time.Sleep(l.cfg.StopGrace())

	if err := waitUntil(ctx, l.cfg.PollInterval(), func() bool {
		return !l.portInUse()
	}); err != nil {
		return fmt.Errorf("waiting for port %d to be released: %w", l.cfg.App.Port, err)
	}

	log.Info().Int("port", l.cfg.App.Port).Msg("Application stopped")
	return nil
}

// findPids returns pids whose full command line matches the process pattern.
func (l *Launcher) findPids() []int {
	out, err := exec.Command("pgrep", "-f", l.cfg.App.ProcessPattern).Output()
	if err != nil {
		// pgrep exits 1 when nothing matches
		return nil
	}

	var pids []int
	for _, line := range bytes.Split(bytes.TrimSpace(out), []byte("\n")) {
		pid, err := strconv.Atoi(string(bytes.TrimSpace(line)))
		if err != nil {
			continue
		}
		pids = append(pids, pid)
	}
	return pids
}

func (l *Launcher) portInUse() bool {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("localhost:%d", l.cfg.App.Port), 250*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// waitUntil polls done at the given interval until it reports true or ctx
// expires.
func waitUntil(ctx context.Context, interval time.Duration, done func() bool) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if done() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
