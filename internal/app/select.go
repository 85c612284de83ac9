package app

import (
	"context"

	"splash-master/internal/core"
	"splash-master/internal/policies"
	"splash-master/internal/types"
)

func (s Service) Select(ctx context.Context, req SelectRequest) (SelectResult, error) {
	targets, err := s.selectTargets(ctx, applyTargetDefaults(req.Targets))
	if err != nil {
		return SelectResult{}, err
	}
	return SelectResult{Targets: targets}, nil
}

func (s Service) selectTargets(ctx context.Context, req TargetRequest) ([]types.Target, error) {
	selector := core.NewTargetSelector(s.Discovery, policies.NewFieldTypePolicy(req.SubstructMasks))
	return selector.Select(ctx, req.Spec1DPath, types.Selection{
		Mode:   req.Selection,
		Values: req.Selectors,
	})
}
