package adapters

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"splash-master/internal/ports"
	"splash-master/internal/shared"
	"splash-master/internal/types"
)

// SerendipFileAdapter reads the whitespace separated serendip table:
// spectrum file name, redshift, and optional trailing columns. Lines
// starting with # and blank lines are ignored.
type SerendipFileAdapter struct{}

func NewSerendipFileAdapter() SerendipFileAdapter {
	return SerendipFileAdapter{}
}

func (a SerendipFileAdapter) LoadSerendips(ctx context.Context, path string) (map[string]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(shared.KindMsg(types.KindPathNotFound, "serendip file %s cannot be opened", path)).
			WithCause(err)
	}
	defer file.Close()

	serendips := map[string]float64{}
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, invalidSerendip(path, lineNo, "expected file name and redshift", nil)
		}
		z, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, invalidSerendip(path, lineNo, "redshift "+strconv.Quote(fields[1])+" is not a number", err)
		}
		name := filepath.Base(fields[0])
		if _, dup := serendips[name]; dup {
			log.Ctx(ctx).Warn().Str("file", name).Int("line", lineNo).Msg("duplicate serendip entry, keeping first")
			continue
		}
		serendips[name] = z
	}
	if err := scanner.Err(); err != nil {
		return nil, invalidSerendip(path, lineNo, "read failed", err)
	}
	return serendips, nil
}

func invalidSerendip(path string, line int, detail string, cause error) error {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(shared.KindMsg(types.KindInvalidSerendipFile, "%s line %d: %s", path, line, detail))
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return builder
}

var _ ports.SerendipSourcePort = SerendipFileAdapter{}
