package eventlog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var invalidSegment = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// Writer persists an audit trail of lifecycle transitions to disk, one JSON
// file per record under baseDir/<entity>/<action>/.
type Writer struct {
	baseDir string
	log     *slog.Logger
}

// NewWriter returns a writer rooted at baseDir, or nil when baseDir is empty
// (audit logging disabled).
func NewWriter(baseDir string, log *slog.Logger) *Writer {
	base := strings.TrimSpace(baseDir)
	if base == "" {
		return nil
	}
	return &Writer{baseDir: filepath.Clean(base), log: log}
}

// Enabled reports whether audit records are being written.
func (w *Writer) Enabled() bool {
	return w != nil && w.baseDir != ""
}

// Write stores one transition record. entity is the record type (e.g.
// "calendar_event"), action the transition name (e.g. "publish").
func (w *Writer) Write(entity, action, entityID string, payload any) error {
	if !w.Enabled() {
		return nil
	}

	dir := filepath.Join(w.baseDir, sanitizeSegment(entity), sanitizeSegment(action))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	ts := time.Now().UTC()
	fileName := fmt.Sprintf("%s-%s.json", ts.Format("20060102T150405Z"), uuid.NewString())
	path := filepath.Join(dir, fileName)

	record := map[string]any{
		"entity":      entity,
		"action":      action,
		"entity_id":   entityID,
		"recorded_at": ts.Format(time.RFC3339Nano),
		"payload":     payload,
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if w.log != nil {
		w.log.Debug("audit record written", "entity", entity, "action", action, "id", entityID)
	}
	return nil
}

func sanitizeSegment(raw string) string {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "unknown"
	}
	sanitized := invalidSegment.ReplaceAllString(candidate, "_")
	sanitized = strings.Trim(sanitized, "._-")
	if sanitized == "" {
		return "unknown"
	}
	return sanitized
}
