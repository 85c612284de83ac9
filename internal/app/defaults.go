package app

import (
	"strings"

	"splash-master/internal/core"
	"splash-master/internal/types"
)

const (
	DefaultLambdaMin  = 4000.0
	DefaultLambdaMax  = 10000.0
	DefaultLambdaStep = 0.65
	DefaultSkipLog    = "log.txt"
)

// applyGridDefaults fills unset grid bounds with the survey grid.
func applyGridDefaults(req GridRequest) GridRequest {
	if req.LambdaMin == 0 {
		req.LambdaMin = DefaultLambdaMin
	}
	if req.LambdaMax == 0 {
		req.LambdaMax = DefaultLambdaMax
	}
	if req.LambdaStep == 0 {
		req.LambdaStep = DefaultLambdaStep
	}
	return req
}

// applyTargetDefaults selects every spectrum when no mode is given and
// lower-cases the mode.
func applyTargetDefaults(req TargetRequest) TargetRequest {
	mode := strings.ToLower(strings.TrimSpace(string(req.Selection)))
	if mode == "" {
		mode = string(types.SelectionAll)
	}
	req.Selection = types.SelectionMode(mode)
	req.Spec1DPath = strings.TrimSpace(req.Spec1DPath)
	return req
}

// requestedTags upper-cases and trims tags, dropping blanks; an empty
// request means the default tags.
func requestedTags(tags []string) []string {
	var out []string
	for _, tag := range tags {
		if trimmed := strings.ToUpper(strings.TrimSpace(tag)); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), types.DefaultTags...)
	}
	return out
}

func applyBuildDefaults(req BuildRequest) BuildRequest {
	req.Targets = applyTargetDefaults(req.Targets)
	req.Grid = applyGridDefaults(req.Grid)
	req.Tags = requestedTags(req.Tags)
	if req.Workers <= 0 {
		req.Workers = core.DefaultWorkers
	}
	if strings.TrimSpace(req.SkipLog) == "" {
		req.SkipLog = DefaultSkipLog
	}
	req.Output = strings.TrimSpace(req.Output)
	req.Summary = strings.TrimSpace(req.Summary)
	return req
}
