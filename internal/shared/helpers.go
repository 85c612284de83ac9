// Package shared provides common utility functions used across multiple
// packages in the splash-master codebase.
package shared

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"splash-master/internal/types"
)

// KindMsg formats an error message that starts with its kind so IsKind
// can recover it after wrapping.
func KindMsg(kind types.ErrorKind, format string, args ...any) string {
	return string(kind) + ": " + fmt.Sprintf(format, args...)
}

// IsKind reports whether err (or an errbuilder error in its chain)
// carries a message of the given kind.
func IsKind(err error, kind types.ErrorKind) bool {
	if err == nil {
		return false
	}
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.HasPrefix(builder.Msg, string(kind)) {
		return true
	}
	return strings.Contains(err.Error(), string(kind)+":")
}

// RequireDir fails with a path-not-found error unless path is an
// existing directory.
func RequireDir(path string, what string) error {
	if strings.TrimSpace(path) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(KindMsg(types.KindPathNotFound, "%s is required", what))
	}
	info, err := os.Stat(path)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(KindMsg(types.KindPathNotFound, "%s %s does not exist", what, path)).
			WithCause(err)
	}
	if !info.IsDir() {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(KindMsg(types.KindPathNotFound, "%s %s is not a directory", what, path))
	}
	return nil
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// NaNs returns a slice of n NaN values.
func NaNs(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
