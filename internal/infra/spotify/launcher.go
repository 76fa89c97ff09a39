package spotify

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// Launcher detects whether the desktop Spotify app is running and starts it
// when it is not. This is deployment glue for the playback-device side of the
// Connect API; the dispatch core never calls it.
type Launcher struct {
	logger *slog.Logger
	settle time.Duration
}

func NewLauncher(logger *slog.Logger) *Launcher {
	return &Launcher{
		logger: logger,
		settle: 5 * time.Second,
	}
}

// EnsureRunning is best-effort: a launch failure is reported but the caller
// can still proceed, since playback may target another Connect device.
func (l *Launcher) EnsureRunning(ctx context.Context) error {
	if l.isRunning(ctx) {
		l.logger.Info("spotify app already running")
		return nil
	}

	l.logger.Info("spotify app not detected, launching")
	if err := l.launch(); err != nil {
		return err
	}

	// Give the app time to register itself as a playback device.
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(l.settle):
	}

	return nil
}

func (l *Launcher) isRunning(ctx context.Context) bool {
	switch runtime.GOOS {
	case "windows":
		out, err := exec.CommandContext(ctx, "tasklist", "/FI", "IMAGENAME eq Spotify.exe", "/FO", "LIST").Output()
		if err != nil {
			l.logger.Warn("checking spotify process", "error", err)
			return false
		}
		return strings.Contains(strings.ToLower(string(out)), "spotify.exe")
	default:
		err := exec.CommandContext(ctx, "pgrep", "-i", "-x", "spotify").Run()
		return err == nil
	}
}

func (l *Launcher) launch() error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/C", "start", "spotify:")
	case "darwin":
		cmd = exec.Command("open", "-a", "Spotify")
	default:
		cmd = exec.Command("spotify")
	}

	// Fire and forget; the app process outlives this one's interest in it.
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launching spotify app: %w", err)
	}

	return nil
}
