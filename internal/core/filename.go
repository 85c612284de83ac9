package core

import (
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"splash-master/internal/shared"
	"splash-master/internal/types"
)

// ParseFilename extracts the identity key from a spectrum file name of
// the form <prefix>.<mask>.<slit>.<object>.fits or the same with a .gz
// suffix. Directories in name are ignored.
func ParseFilename(name string) (types.IdentityKey, error) {
	base := filepath.Base(strings.TrimSpace(name))
	parts := strings.Split(base, ".")
	var segments []string
	switch parts[len(parts)-1] {
	case "gz":
		if len(parts) != 6 || parts[4] != "fits" {
			return types.IdentityKey{}, invalidFilename(base)
		}
		segments = parts[1:4]
	case "fits":
		if len(parts) != 5 {
			return types.IdentityKey{}, invalidFilename(base)
		}
		segments = parts[1:4]
	default:
		return types.IdentityKey{}, invalidFilename(base)
	}
	for _, segment := range segments {
		if segment == "" {
			return types.IdentityKey{}, invalidFilename(base)
		}
	}
	return types.IdentityKey{
		Mask:   segments[0],
		Slit:   segments[1],
		Object: segments[2],
	}, nil
}

// FieldOf returns the field a mask belongs to: the case-folded mask
// prefix before its first underscore.
func FieldOf(mask string) string {
	prefix, _, _ := strings.Cut(mask, "_")
	return foldCase(prefix)
}

func invalidFilename(name string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(shared.KindMsg(types.KindInvalidFilename, "%q", name))
}
