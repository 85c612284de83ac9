package adapters

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/gofrs/flock"

	"splash-master/internal/ports"
	"splash-master/internal/types"
)

// SkipLogAdapter appends one line per skipped target to a text log.
// Writes are serialized in-process with a mutex and across processes
// with an advisory lock on <path>.lock.
type SkipLogAdapter struct {
	path  string
	runID string
	mu    sync.Mutex
	file  *os.File
	lock  *flock.Flock
}

// NewSkipLogAdapter opens path for appending, creating it and its parent
// directory when needed.
func NewSkipLogAdapter(path string, runID string) (*SkipLogAdapter, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("skip log path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to create skip log directory").
				WithCause(err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to open skip log: " + path).
			WithCause(err)
	}
	return &SkipLogAdapter{
		path:  path,
		runID: runID,
		file:  file,
		lock:  flock.New(path + ".lock"),
	}, nil
}

// FormatSkipEntry renders the log line of one entry.
func FormatSkipEntry(runID string, entry types.SkipEntry) string {
	detail := strings.ReplaceAll(entry.Detail, "\n", " ")
	return fmt.Sprintf("%s %s %s: %s\n", runID, entry.Path, entry.Reason, detail)
}

func (a *SkipLogAdapter) Record(entry types.SkipEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.file == nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("skip log is closed")
	}
	if err := a.lock.Lock(); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to lock skip log").
			WithCause(err)
	}
	defer func() { _ = a.lock.Unlock() }()
	if _, err := a.file.WriteString(FormatSkipEntry(a.runID, entry)); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write skip log entry").
			WithCause(err)
	}
	return nil
}

func (a *SkipLogAdapter) Path() string {
	return a.path
}

func (a *SkipLogAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.file == nil {
		return nil
	}
	err := a.file.Close()
	a.file = nil
	_ = a.lock.Close()
	return err
}

var _ ports.SkipLogPort = (*SkipLogAdapter)(nil)
