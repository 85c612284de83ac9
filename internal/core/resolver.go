package core

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"splash-master/internal/ports"
	"splash-master/internal/shared"
	"splash-master/internal/types"
)

// DefaultSerendipFile is the serendip table name looked up inside the
// redshift directory when the serendip option is "default".
const DefaultSerendipFile = "SLIT.goodFormat"

// SerendipDefault selects DefaultSerendipFile.
const SerendipDefault = "default"

type RedshiftResolver struct {
	Source   ports.RedshiftSourcePort
	Serendip ports.SerendipSourcePort
}

// RedshiftTable is the resolver's output keyed by normalized identity
// key.
type RedshiftTable struct {
	Tags    []string
	Records map[types.IdentityKey]types.RedshiftRecord
}

func NewRedshiftResolver(source ports.RedshiftSourcePort, serendip ports.SerendipSourcePort) RedshiftResolver {
	return RedshiftResolver{
		Source:   source,
		Serendip: serendip,
	}
}

// UndefinedRedshift is the record of a target with no counterpart.
func UndefinedRedshift(target types.Target) types.RedshiftRecord {
	nan := math.NaN()
	return types.RedshiftRecord{
		Key:     target.Key,
		Path:    target.Path,
		Source:  types.MatchNone,
		Z:       nan,
		SNR:     nan,
		ABand:   nan,
		MJD:     nan,
		Airmass: nan,
	}
}

// Lookup joins on the identity key. Missing targets get an undefined
// record and ok=false.
func (t RedshiftTable) Lookup(key types.IdentityKey) (types.RedshiftRecord, bool) {
	record, ok := t.Records[key.Normalized()]
	if !ok {
		return UndefinedRedshift(types.Target{Key: key}), false
	}
	return record, true
}

func (t RedshiftTable) Columns() []string {
	return t.Tags
}

func (t RedshiftTable) Value(key types.IdentityKey, tag string) (types.Value, bool) {
	record, ok := t.Records[key.Normalized()]
	if !ok {
		return types.Value{}, false
	}
	switch tag {
	case types.TagZ:
		return types.FloatValue(record.Z), true
	case types.TagZQual:
		if !record.HasQuality {
			return types.Value{}, true
		}
		return types.FloatValue(float64(record.Quality)), true
	case types.TagSNR:
		return types.FloatValue(record.SNR), true
	case types.TagABand:
		return types.FloatValue(record.ABand), true
	case types.TagMJD:
		return types.FloatValue(record.MJD), true
	case types.TagAirmass:
		return types.FloatValue(record.Airmass), true
	default:
		return types.Value{}, true
	}
}

// Counts tallies records by how they were matched.
func (t RedshiftTable) Counts() (matched int, serendips int, unmatched int) {
	for _, record := range t.Records {
		switch record.Source {
		case types.MatchZspec:
			matched++
		case types.MatchSerendip:
			serendips++
		default:
			unmatched++
		}
	}
	return matched, serendips, unmatched
}

// Resolve finds the redshift record of every target, one mask at a
// time. Unmatched targets fall back to the serendip table when one is
// configured and are otherwise left undefined.
func (r RedshiftResolver) Resolve(ctx context.Context, zspecPath string, targets []types.Target, tags []string, serendipFile string) (RedshiftTable, error) {
	if r.Source == nil {
		return RedshiftTable{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("redshift resolver requires a redshift source port")
	}
	if err := shared.RequireDir(zspecPath, "zspec path"); err != nil {
		return RedshiftTable{}, err
	}
	serendips, err := r.loadSerendips(ctx, zspecPath, serendipFile)
	if err != nil {
		return RedshiftTable{}, err
	}

	byMask := map[string][]types.Target{}
	for _, target := range targets {
		byMask[target.Key.Mask] = append(byMask[target.Key.Mask], target)
	}
	masks := make([]string, 0, len(byMask))
	for mask := range byMask {
		masks = append(masks, mask)
	}
	sort.Strings(masks)

	table := RedshiftTable{
		Tags:    projectTags(tags, types.RedshiftTags, types.RetainedRedshiftTags),
		Records: make(map[types.IdentityKey]types.RedshiftRecord, len(targets)),
	}
	logger := log.Ctx(ctx)
	for _, mask := range masks {
		if err := ctx.Err(); err != nil {
			return RedshiftTable{}, err
		}
		file, err := r.Source.LoadMask(ctx, zspecPath, mask)
		if err != nil {
			return RedshiftTable{}, err
		}
		records := resolveMask(ctx, file, byMask[mask], serendips)
		for _, record := range records {
			table.Records[record.Key.Normalized()] = record
		}
		logger.Debug().
			Str("mask", mask).
			Int("targets", len(records)).
			Msg("mask redshifts resolved")
	}
	matched, serendipCount, unmatched := table.Counts()
	logger.Info().
		Int("masks", len(masks)).
		Int("matched", matched).
		Int("serendips", serendipCount).
		Int("unmatched", unmatched).
		Msg("redshift resolution finished")
	return table, nil
}

func (r RedshiftResolver) loadSerendips(ctx context.Context, zspecPath string, serendipFile string) (map[string]float64, error) {
	option := strings.TrimSpace(serendipFile)
	if option == "" {
		log.Ctx(ctx).Debug().Msg("serendip lookup disabled")
		return nil, nil
	}
	path := option
	if strings.EqualFold(option, SerendipDefault) {
		path = filepath.Join(zspecPath, DefaultSerendipFile)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(shared.KindMsg(types.KindPathNotFound, "serendip file %s does not exist", path)).
			WithCause(err)
	}
	if r.Serendip == nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("serendip file configured without a serendip source port")
	}
	serendips, err := r.Serendip.LoadSerendips(ctx, path)
	if err != nil {
		return nil, err
	}
	log.Ctx(ctx).Debug().Str("path", path).Int("entries", len(serendips)).Msg("serendip table loaded")
	return serendips, nil
}

// resolveMask matches the targets of one mask against its redshift file
// and applies the mask-wide quality-1 rule.
func resolveMask(ctx context.Context, file types.RedshiftFile, targets []types.Target, serendips map[string]float64) []types.RedshiftRecord {
	index := newRowIndex(ctx, file)
	demoteAmbiguous := !file.HasManualSentinel()
	records := make([]types.RedshiftRecord, 0, len(targets))
	for _, target := range targets {
		record := UndefinedRedshift(target)
		if row, ok := index.match(target); ok {
			record.Source = types.MatchZspec
			record.Z = row.Z
			record.Quality = row.Quality
			record.HasQuality = true
			record.SNR = row.SNR
			record.ABand = row.ABand
			record.MJD = row.MJD
			record.Airmass = row.Airmass
		} else if serendips != nil {
			z, found := serendips[TargetFile(target)]
			if !found {
				z = math.NaN()
			}
			record.Source = types.MatchSerendip
			record.Z = z
			record.Quality = types.QualitySerendip
			record.HasQuality = true
		}
		if demoteAmbiguous && record.HasQuality && record.Quality == types.QualityAmbiguous {
			record.Quality = types.QualityUnusable
		}
		records = append(records, record)
	}
	return records
}

type rowIndex struct {
	rows  []types.RedshiftRow
	exact map[string]int
	byKey map[types.IdentityKey]int
}

// newRowIndex keys every row by its spectrum file name (given, or
// rebuilt from slit and object) and by its normalized identity key.
// The first row wins on duplicates.
func newRowIndex(ctx context.Context, file types.RedshiftFile) rowIndex {
	index := rowIndex{
		rows:  file.Rows,
		exact: make(map[string]int, len(file.Rows)),
		byKey: make(map[types.IdentityKey]int, len(file.Rows)),
	}
	logger := log.Ctx(ctx)
	for i, row := range file.Rows {
		name := rowFilename(file, row)
		if name == "" {
			continue
		}
		if _, dup := index.exact[name]; dup {
			logger.Warn().Str("mask", file.Mask).Str("file", name).Msg("duplicate redshift row, keeping first")
			continue
		}
		index.exact[name] = i
		key, err := ParseFilename(name)
		if err != nil {
			key = types.IdentityKey{Mask: file.Mask, Slit: row.SlitName, Object: row.ObjName}
		}
		key = key.Normalized()
		if _, dup := index.byKey[key]; !dup {
			index.byKey[key] = i
		}
	}
	return index
}

func (idx rowIndex) match(target types.Target) (types.RedshiftRow, bool) {
	if i, ok := idx.exact[TargetFile(target)]; ok {
		return idx.rows[i], true
	}
	if i, ok := idx.byKey[target.Key.Normalized()]; ok {
		return idx.rows[i], true
	}
	return types.RedshiftRow{}, false
}

func rowFilename(file types.RedshiftFile, row types.RedshiftRow) string {
	if file.HasSpec1DFile {
		return filepath.Base(strings.TrimSpace(row.Spec1DFile))
	}
	slit := strings.TrimSpace(row.SlitName)
	object := strings.TrimSpace(row.ObjName)
	if slit == "" || object == "" {
		return ""
	}
	return types.IdentityKey{Mask: file.Mask, Slit: slit, Object: object}.Filename()
}

// projectTags keeps the requested tags a component can produce, plus
// the retained ones, in request order followed by retained order.
func projectTags(requested []string, produced []string, retained []string) []string {
	producible := make(map[string]struct{}, len(produced))
	for _, tag := range produced {
		producible[tag] = struct{}{}
	}
	seen := map[string]struct{}{}
	var out []string
	for _, tag := range requested {
		if _, ok := producible[tag]; !ok {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	for _, tag := range retained {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
