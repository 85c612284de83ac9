package adapters

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"splash-master/internal/ports"
	"splash-master/internal/types"
)

type SummaryFileAdapter struct{}

func NewSummaryFileAdapter() SummaryFileAdapter {
	return SummaryFileAdapter{}
}

func (a SummaryFileAdapter) WriteSummary(path string, summary types.RunSummary) error {
	if strings.TrimSpace(path) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("summary path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create summary directory").
			WithCause(err)
	}
	data, err := yaml.Marshal(summary)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode run summary").
			WithCause(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write run summary: " + path).
			WithCause(err)
	}
	return nil
}

// ReadSummary loads a summary written by WriteSummary.
func (a SummaryFileAdapter) ReadSummary(path string) (types.RunSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.RunSummary{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("run summary not found: " + path).
			WithCause(err)
	}
	var summary types.RunSummary
	if err := yaml.Unmarshal(data, &summary); err != nil {
		return types.RunSummary{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse run summary: " + path).
			WithCause(err)
	}
	if created := parseCreatedAt(summary.CreatedAt); !created.IsZero() {
		summary.CreatedAt = created.Format(time.RFC3339)
	}
	return summary, nil
}

// parseCreatedAt accepts the timestamp forms a hand-edited summary may
// carry and returns the zero time for anything else.
func parseCreatedAt(value string) time.Time {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}
	}
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05 -0700 MST",
		"2006-01-02 15:04:05",
	} {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}

var _ ports.SummaryWriterPort = SummaryFileAdapter{}
