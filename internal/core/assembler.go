package core

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"splash-master/internal/shared"
	"splash-master/internal/types"
)

// TableSource is one pass of values merged into the master table.
type TableSource interface {
	Columns() []string
	// Value returns the cell for (key, tag); ok is false when the source
	// has no row for key.
	Value(key types.IdentityKey, tag string) (types.Value, bool)
}

type MasterAssembler struct {
	Vocabulary types.TagVocabulary
}

// MergeStats counts what one Merge call did.
type MergeStats struct {
	Written   int
	Preserved int
	Missing   int
}

func NewMasterAssembler(vocab types.TagVocabulary) MasterAssembler {
	return MasterAssembler{Vocabulary: vocab}
}

// ValidateTags fails with a schema violation naming every tag missing
// from the vocabulary.
func ValidateTags(vocab types.TagVocabulary, tags []string) error {
	var unknown []string
	for _, tag := range tags {
		if !vocab.Has(tag) {
			unknown = append(unknown, tag)
		}
	}
	if len(unknown) > 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(shared.KindMsg(types.KindSchemaViolation, "unrecognized tags: %s", strings.Join(unknown, ", ")))
	}
	return nil
}

// NewTable returns an empty table with one row per key and one column
// per tag.
func (a MasterAssembler) NewTable(ctx context.Context, index []types.IdentityKey, tags []string) (*types.MasterTable, error) {
	if len(tags) == 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(shared.KindMsg(types.KindSchemaViolation, "no output tags requested"))
	}
	if err := ValidateTags(a.Vocabulary, tags); err != nil {
		return nil, err
	}
	columns := dedupe(tags)
	keys := make([]types.IdentityKey, 0, len(index))
	seen := map[types.IdentityKey]struct{}{}
	for _, key := range index {
		normalized := key.Normalized()
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		keys = append(keys, normalized)
	}
	log.Ctx(ctx).Debug().Int("rows", len(keys)).Strs("columns", columns).Msg("master table initialized")
	return types.NewMasterTable(keys, columns), nil
}

// Merge copies a source into the table field by field. Only table
// columns and defined values are written; a filled cell is never
// overwritten by a later pass. Rows the source lacks stay undefined.
func (a MasterAssembler) Merge(ctx context.Context, table *types.MasterTable, source TableSource) MergeStats {
	var stats MergeStats
	logger := log.Ctx(ctx)
	for _, tag := range source.Columns() {
		if !table.HasColumn(tag) {
			continue
		}
		for _, key := range table.Index {
			value, ok := source.Value(key, tag)
			if !ok {
				stats.Missing++
				continue
			}
			if !value.Defined() {
				continue
			}
			if table.Get(key, tag).Defined() {
				stats.Preserved++
				logger.Debug().Str("target", key.String()).Str("tag", tag).Msg("keeping value from earlier pass")
				continue
			}
			table.Set(key, tag, value)
			stats.Written++
		}
	}
	return stats
}

// Assemble builds the table for targets and merges the sources in
// order.
func (a MasterAssembler) Assemble(ctx context.Context, targets []types.Target, tags []string, sources ...TableSource) (*types.MasterTable, error) {
	index := make([]types.IdentityKey, 0, len(targets))
	for _, target := range targets {
		index = append(index, target.Key)
	}
	table, err := a.NewTable(ctx, index, tags)
	if err != nil {
		return nil, err
	}
	for _, source := range sources {
		stats := a.Merge(ctx, table, source)
		log.Ctx(ctx).Debug().
			Int("written", stats.Written).
			Int("preserved", stats.Preserved).
			Int("missing", stats.Missing).
			Msg("master table pass merged")
	}
	return table, nil
}

// IdentitySource exposes the values derived from the targets
// themselves: mask, slit, object, reconstructed file name, field type.
type IdentitySource struct {
	targets map[types.IdentityKey]types.Target
}

func NewIdentitySource(targets []types.Target) IdentitySource {
	source := IdentitySource{targets: make(map[types.IdentityKey]types.Target, len(targets))}
	for _, target := range targets {
		source.targets[target.Key.Normalized()] = target
	}
	return source
}

func (s IdentitySource) Columns() []string {
	return types.IdentityTags
}

func (s IdentitySource) Value(key types.IdentityKey, tag string) (types.Value, bool) {
	target, ok := s.targets[key.Normalized()]
	if !ok {
		return types.Value{}, false
	}
	switch tag {
	case types.TagMask:
		return types.StringValue(target.Key.Mask), true
	case types.TagSlitName:
		return types.StringValue(target.Key.Slit), true
	case types.TagObjName:
		return types.StringValue(target.Key.Object), true
	case types.TagFullName:
		return types.StringValue(target.Key.Filename()), true
	case types.TagFieldType:
		return types.StringValue(string(target.FieldType)), true
	default:
		return types.Value{}, true
	}
}

func dedupe(values []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(values))
	for _, value := range values {
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
