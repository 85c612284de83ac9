package core

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"

	"splash-master/internal/policies"
	"splash-master/internal/ports"
	"splash-master/internal/shared"
	"splash-master/internal/types"
)

type TargetSelector struct {
	Discovery  ports.SpectrumDiscoveryPort
	FieldTypes ports.FieldTypePolicyPort
}

func NewTargetSelector(discovery ports.SpectrumDiscoveryPort, fieldTypes ports.FieldTypePolicyPort) TargetSelector {
	return TargetSelector{
		Discovery:  discovery,
		FieldTypes: fieldTypes,
	}
}

// ValidateSelection checks the selection mode and its values without
// touching the filesystem.
func ValidateSelection(sel types.Selection) error {
	switch sel.Mode {
	case types.SelectionAll:
		if len(sel.Values) > 0 {
			return invalidSelection("selection %q takes no selector values", sel.Mode)
		}
		return nil
	case types.SelectionMasks, types.SelectionFields:
	case types.SelectionFieldType:
		for _, value := range sel.Values {
			if _, ok := policies.ParseFieldType(value); !ok {
				return invalidSelection("unknown field type %q", value)
			}
		}
	default:
		return invalidSelection("unknown selection mode %q, expected all, masks, fields or fieldtype", sel.Mode)
	}
	if len(nonEmpty(sel.Values)) == 0 {
		return invalidSelection("selection %q requires selector values", sel.Mode)
	}
	return nil
}

// Select enumerates the spectrum files in dir and keeps those matching
// the selection, sorted by path.
func (s TargetSelector) Select(ctx context.Context, dir string, sel types.Selection) ([]types.Target, error) {
	if s.Discovery == nil || s.FieldTypes == nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("target selector requires discovery and field type ports")
	}
	if err := ValidateSelection(sel); err != nil {
		return nil, err
	}
	if err := shared.RequireDir(dir, "spec1d path"); err != nil {
		return nil, err
	}
	paths, err := s.Discovery.FindSpectra(dir)
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	logger := log.Ctx(ctx)
	candidates := make([]types.Target, 0, len(paths))
	seen := map[types.IdentityKey]string{}
	for _, path := range paths {
		key, err := ParseFilename(path)
		if err != nil {
			logger.Warn().Str("file", path).Err(err).Msg("skipping unparseable spectrum file")
			continue
		}
		normalized := key.Normalized()
		if first, dup := seen[normalized]; dup {
			logger.Warn().Str("file", path).Str("kept", first).Msg("duplicate target, keeping first file")
			continue
		}
		seen[normalized] = path
		candidates = append(candidates, types.Target{
			Path:      path,
			Key:       key,
			Field:     FieldOf(key.Mask),
			FieldType: s.FieldTypes.Classify(key.Mask),
		})
	}

	if sel.Mode == types.SelectionAll {
		return candidates, nil
	}

	wanted := selectorSet(sel)
	found := map[string]struct{}{}
	var selected []types.Target
	for _, target := range candidates {
		value := selectorValue(sel.Mode, target)
		if _, ok := wanted[value]; !ok {
			continue
		}
		found[value] = struct{}{}
		selected = append(selected, target)
	}
	logger.Info().
		Str("selection", string(sel.Mode)).
		Int("matched", len(found)).
		Int("requested", len(wanted)).
		Int("targets", len(selected)).
		Msg(fmt.Sprintf("%d of %d %s found", len(found), len(wanted), sel.Mode))
	return selected, nil
}

func selectorSet(sel types.Selection) map[string]struct{} {
	set := map[string]struct{}{}
	for _, value := range nonEmpty(sel.Values) {
		switch sel.Mode {
		case types.SelectionFields:
			value = foldCase(value)
		case types.SelectionFieldType:
			ft, _ := policies.ParseFieldType(value)
			value = string(ft)
		}
		set[value] = struct{}{}
	}
	return set
}

func selectorValue(mode types.SelectionMode, target types.Target) string {
	switch mode {
	case types.SelectionMasks:
		return target.Key.Mask
	case types.SelectionFields:
		return target.Field
	case types.SelectionFieldType:
		return string(target.FieldType)
	default:
		return ""
	}
}

func nonEmpty(values []string) []string {
	var out []string
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func foldCase(value string) string {
	return cases.Fold().String(value)
}

// TargetFile returns the base file name of a target, the key used by
// the serendip table.
func TargetFile(target types.Target) string {
	return filepath.Base(target.Path)
}

func invalidSelection(format string, args ...any) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(shared.KindMsg(types.KindInvalidSelection, format, args...))
}
