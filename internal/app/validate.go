package app

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"splash-master/internal/core"
	"splash-master/internal/types"
)

// runSetup is everything a run needs before touching spectra.
type runSetup struct {
	vocab types.TagVocabulary
	tags  []string
	grid  types.WavelengthGrid
}

// prepare checks the configuration that can fail without reading any
// data file: selection, tags against the vocabulary, and the grid.
func (s Service) prepare(ctx context.Context, targets TargetRequest, grid GridRequest, tags []string, schemas []string) (runSetup, error) {
	if err := core.ValidateSelection(types.Selection{Mode: targets.Selection, Values: targets.Selectors}); err != nil {
		return runSetup{}, err
	}
	schema := s.NewTagSchema()
	for _, path := range schemas {
		if path = strings.TrimSpace(path); path == "" {
			continue
		}
		if err := schema.LoadSchema(path); err != nil {
			return runSetup{}, err
		}
	}
	vocab := schema.Vocabulary()
	if err := core.ValidateTags(vocab, tags); err != nil {
		return runSetup{}, err
	}
	wavelengths, err := core.NewGrid(grid.LambdaMin, grid.LambdaMax, grid.LambdaStep)
	if err != nil {
		return runSetup{}, err
	}
	log.Ctx(ctx).Debug().
		Strs("tags", tags).
		Int("grid_points", wavelengths.Len()).
		Int("vocabulary", len(vocab)).
		Msg("run configuration accepted")
	return runSetup{vocab: vocab, tags: tags, grid: wavelengths}, nil
}

// Validate checks a build configuration end to end without rebinning:
// the selection resolves, every selected mask has a readable redshift
// file, and the serendip table (if any) parses.
func (s Service) Validate(ctx context.Context, req ValidateRequest) (ValidateResult, error) {
	targetReq := applyTargetDefaults(req.Targets)
	tags := requestedTags(req.Tags)
	setup, err := s.prepare(ctx, targetReq, applyGridDefaults(req.Grid), tags, req.TagSchemas)
	if err != nil {
		return ValidateResult{}, err
	}
	targets, err := s.selectTargets(ctx, targetReq)
	if err != nil {
		return ValidateResult{}, err
	}
	resolver := core.NewRedshiftResolver(s.Redshifts, s.Serendips)
	if _, err := resolver.Resolve(ctx, req.ZspecPath, targets, setup.tags, req.SerendipFile); err != nil {
		return ValidateResult{}, err
	}
	masks := map[string]struct{}{}
	for _, target := range targets {
		masks[target.Key.Mask] = struct{}{}
	}
	return ValidateResult{
		Tags:       setup.tags,
		GridPoints: setup.grid.Len(),
		Targets:    len(targets),
		Masks:      len(masks),
	}, nil
}
