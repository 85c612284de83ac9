package app

import (
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// Inspect reads a catalog back. A positive Limit caps the rows kept.
func (s Service) Inspect(req InspectRequest) (InspectResult, error) {
	path := strings.TrimSpace(req.Catalog)
	if path == "" {
		return InspectResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("catalog path is required")
	}
	info, err := s.CatalogIn.ReadCatalog(path)
	if err != nil {
		return InspectResult{}, err
	}
	shown := len(info.Rows)
	if req.Limit > 0 && req.Limit < shown {
		shown = req.Limit
	}
	info.Rows = info.Rows[:shown]
	return InspectResult{Catalog: info, Shown: shown}, nil
}
