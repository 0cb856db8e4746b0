package server

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/engenium/intentd/internal/model"
)

// AuditLog appends one JSON object per successful classification to a file.
// The file is append-only and never truncated; writes are serialized so
// concurrent requests cannot interleave partial lines.
type AuditLog struct {
	path string
	mu   sync.Mutex
}

// NewAuditLog creates an audit log writing to the given path.
func NewAuditLog(path string) *AuditLog {
	return &AuditLog{path: path}
}

// Append writes a single newline-terminated audit record.
func (a *AuditLog) Append(record model.AuditRecord) error {
	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal audit record: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}

	return nil
}
