package newslog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/starford/lustro/internal/state"
)

// keepDays is how much recent history stays in the live log when it
// rotates; older day sections move to monthly archive files.
const keepDays = 14

var daySection = regexp.MustCompile(`^## (\d{4}-\d{2}-\d{2})`)

// Rotate moves day sections older than the retention window into a
// monthly archive file once the log exceeds maxLines. Under the limit,
// or with nothing old enough to move, it does nothing.
func Rotate(logPath, archiveDir string, maxLines int, now time.Time, logger *slog.Logger) error {
	data, err := os.ReadFile(logPath)
	if err != nil {
		return nil
	}
	lines := strings.Split(string(data), "\n")
	if len(lines) <= maxLines {
		return nil
	}

	cutoff := now.UTC().AddDate(0, 0, -keepDays).Format("2006-01-02")
	keepFrom := -1
	for i, line := range lines {
		if m := daySection.FindStringSubmatch(line); m != nil && m[1] < cutoff {
			keepFrom = i
			break
		}
	}
	if keepFrom < 0 {
		return nil
	}

	// A log written before any marker existed has no header to keep.
	markerLine := -1
	for i, line := range lines {
		if strings.Contains(line, Marker) {
			markerLine = i
			break
		}
	}
	if keepFrom <= markerLine {
		return nil
	}
	header := lines[:markerLine+1]
	recent := lines[markerLine+1 : keepFrom]
	old := lines[keepFrom:]

	month := now.UTC().Format("2006-01")
	stem := strings.TrimSuffix(filepath.Base(logPath), filepath.Ext(logPath))
	archivePath := filepath.Join(archiveDir, fmt.Sprintf("%s - Archive %s.md", stem, month))
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return fmt.Errorf("newslog: mkdir archive dir: %w", err)
	}

	var chunk string
	if _, err := os.Stat(archivePath); os.IsNotExist(err) {
		chunk = fmt.Sprintf("# %s Archive - %s\n\n", stem, month)
	}
	chunk += strings.Join(old, "\n") + "\n"
	f, err := os.OpenFile(archivePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("newslog: open archive: %w", err)
	}
	if _, err := f.WriteString(chunk); err != nil {
		f.Close()
		return fmt.Errorf("newslog: append archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("newslog: close archive: %w", err)
	}

	kept := append(append([]string{}, header...), recent...)
	if err := state.WriteAtomic(logPath, []byte(strings.Join(kept, "\n")+"\n")); err != nil {
		return err
	}
	logger.Info("rotated news log",
		slog.Int("archived_lines", len(old)),
		slog.Int("kept_lines", len(recent)),
		slog.String("archive", filepath.Base(archivePath)))
	return nil
}
