package ticket

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File appends tickets to a local JSON array, matching the workshop's
// tickets.json hand-off format.
type File struct {
	mu   sync.Mutex
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

// Save implements Sink. The whole array is rewritten on each save; ticket
// volume is low enough that this stays cheap.
func (f *File) Save(_ context.Context, t Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var tickets []Ticket
	data, err := os.ReadFile(f.path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &tickets); err != nil {
			return fmt.Errorf("parse %s: %w", f.path, err)
		}
	case os.IsNotExist(err):
		if dir := filepath.Dir(f.path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create ticket dir: %w", err)
			}
		}
	default:
		return fmt.Errorf("read %s: %w", f.path, err)
	}

	tickets = append(tickets, t)
	out, err := json.MarshalIndent(tickets, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tickets: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}
