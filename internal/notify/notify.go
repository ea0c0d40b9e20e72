// Package notify dispatches plain-text alert messages through an
// external notifier script. Delivery is strictly best-effort: a missing
// script or a failed send is logged and never fails the run.
package notify

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	scriptName  = "tg-notify.sh"
	sendTimeout = 30 * time.Second
)

// Sender delivers a message. Implementations must treat failure as
// non-fatal and report it via the return value only.
type Sender interface {
	Send(ctx context.Context, message string) error
}

// Script is a Sender backed by an external notifier script that reads
// the message on stdin.
type Script struct {
	path   string
	logger *slog.Logger
}

// Verify Script satisfies Sender at compile time.
var _ Sender = (*Script)(nil)

// NewScript resolves the notifier: an explicit configured path first,
// then $PATH, then ~/scripts as a fallback. With nothing found the
// Sender degrades to a logged no-op.
func NewScript(configuredPath string, logger *slog.Logger) *Script {
	return &Script{path: resolve(configuredPath), logger: logger}
}

func resolve(configuredPath string) string {
	if configuredPath != "" {
		if info, err := os.Stat(configuredPath); err == nil && !info.IsDir() {
			return configuredPath
		}
		return ""
	}
	if found, err := exec.LookPath(scriptName); err == nil {
		return found
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	fallback := filepath.Join(home, "scripts", scriptName)
	if info, err := os.Stat(fallback); err == nil && !info.IsDir() {
		return fallback
	}
	return ""
}

// Available reports whether a notifier script was resolved.
func (s *Script) Available() bool {
	return s.path != ""
}

// Send pipes the message to the notifier script. Every failure mode is
// reduced to a warning; the caller decides nothing based on the error
// beyond logging it.
func (s *Script) Send(ctx context.Context, message string) error {
	if s.path == "" {
		s.logger.Warn("notifier script not found, skipping send")
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.path)
	cmd.Stdin = strings.NewReader(message)
	if out, err := cmd.CombinedOutput(); err != nil {
		s.logger.Warn("notifier send failed",
			slog.String("error", err.Error()),
			slog.String("output", strings.TrimSpace(string(out))))
		return err
	}
	return nil
}
