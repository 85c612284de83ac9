package app

import (
	"context"
	"sort"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"splash-master/internal/core"
	"splash-master/internal/types"
)

// Build runs the whole pipeline: select targets, resolve redshifts,
// rebin spectra, assemble the master table, write the catalog and the
// optional run summary.
func (s Service) Build(ctx context.Context, req BuildRequest) (BuildResult, error) {
	req = applyBuildDefaults(req)
	if req.Output == "" {
		return BuildResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output catalog path is required")
	}
	setup, err := s.prepare(ctx, req.Targets, req.Grid, req.Tags, req.TagSchemas)
	if err != nil {
		return BuildResult{}, err
	}
	targets, err := s.selectTargets(ctx, req.Targets)
	if err != nil {
		return BuildResult{}, err
	}

	runID := s.NewRunID()
	logger := log.Ctx(ctx).With().Str("run_id", runID).Logger()
	ctx = logger.WithContext(ctx)
	logger.Info().
		Int("targets", len(targets)).
		Str("selection", string(req.Targets.Selection)).
		Msg("build started")

	resolver := core.NewRedshiftResolver(s.Redshifts, s.Serendips)
	redshifts, err := resolver.Resolve(ctx, req.ZspecPath, targets, setup.tags, req.SerendipFile)
	if err != nil {
		return BuildResult{}, err
	}

	skipLog, err := s.OpenSkipLog(req.SkipLog, runID)
	if err != nil {
		return BuildResult{}, err
	}
	defer func() {
		if err := skipLog.Close(); err != nil {
			logger.Warn().Err(err).Str("path", req.SkipLog).Msg("failed to close skip log")
		}
	}()
	rebinOptions := core.DefaultRebinOptions()
	rebinOptions.Workers = req.Workers
	rebinner := core.NewRebinner(s.Spectra, skipLog, rebinOptions)
	spectra, err := rebinner.Rebin(ctx, targets, redshifts, setup.grid, setup.tags)
	if err != nil {
		return BuildResult{}, err
	}

	assembler := core.NewMasterAssembler(setup.vocab)
	table, err := assembler.Assemble(ctx, targets, setup.tags,
		core.NewIdentitySource(targets),
		redshifts,
		spectra,
	)
	if err != nil {
		return BuildResult{}, err
	}
	if err := s.CatalogOut.WriteCatalog(req.Output, table, setup.vocab, setup.grid, runID); err != nil {
		return BuildResult{}, err
	}

	summary := s.summarize(runID, req, targets, redshifts, spectra, setup, table)
	if req.Summary != "" {
		if err := s.SummaryOut.WriteSummary(req.Summary, summary); err != nil {
			return BuildResult{}, err
		}
	}
	logger.Info().
		Str("catalog", req.Output).
		Int("rows", table.Len()).
		Int("rebinned", summary.Rebinned).
		Int("skipped", len(targets)-summary.Rebinned).
		Msg("build finished")
	return BuildResult{
		RunID:   runID,
		Catalog: req.Output,
		Summary: summary,
		Table:   table,
	}, nil
}

func (s Service) summarize(runID string, req BuildRequest, targets []types.Target, redshifts core.RedshiftTable, spectra core.SpectrumTable, setup runSetup, table *types.MasterTable) types.RunSummary {
	matched, serendips, unmatched := redshifts.Counts()
	skipped := map[string]int{}
	reasons := make([]string, 0, len(spectra.Skipped))
	for reason := range spectra.Skipped {
		reasons = append(reasons, string(reason))
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		skipped[reason] = spectra.Skipped[types.SkipReason(reason)]
	}
	if len(skipped) == 0 {
		skipped = nil
	}
	return types.RunSummary{
		RunID:      runID,
		CreatedAt:  s.Clock().UTC().Format(time.RFC3339),
		Selection:  req.Targets.Selection,
		Selectors:  append([]string(nil), req.Targets.Selectors...),
		Targets:    len(targets),
		Matched:    matched,
		Serendips:  serendips,
		Unmatched:  unmatched,
		Rebinned:   len(spectra.Spectra),
		Skipped:    skipped,
		GridPoints: setup.grid.Len(),
		Columns:    append([]string(nil), table.Columns...),
		Catalog:    req.Output,
	}
}
