package app

import (
	"time"

	"github.com/google/uuid"

	"splash-master/internal/adapters"
	"splash-master/internal/ports"
)

// SkipLog is a skip log that owns an open file.
type SkipLog interface {
	ports.SkipLogPort
	Close() error
}

type Service struct {
	Discovery    ports.SpectrumDiscoveryPort
	Redshifts    ports.RedshiftSourcePort
	Serendips    ports.SerendipSourcePort
	Spectra      ports.SpectrumReaderPort
	CatalogOut   ports.CatalogWriterPort
	CatalogIn    ports.CatalogReaderPort
	SummaryOut   ports.SummaryWriterPort
	NewTagSchema func() ports.TagSchemaPort
	OpenSkipLog  func(path string, runID string) (SkipLog, error)
	NewRunID     func() string
	Clock        func() time.Time
}

func NewService() Service {
	catalog := adapters.NewCatalogFitsAdapter()
	return Service{
		Discovery:  adapters.NewSpectraDirAdapter(),
		Redshifts:  adapters.NewZspecFitsAdapter(),
		Serendips:  adapters.NewSerendipFileAdapter(),
		Spectra:    adapters.NewSpec1DFitsAdapter(),
		CatalogOut: catalog,
		CatalogIn:  catalog,
		SummaryOut: adapters.NewSummaryFileAdapter(),
		NewTagSchema: func() ports.TagSchemaPort {
			return adapters.NewTagSchemaAdapter()
		},
		OpenSkipLog: func(path string, runID string) (SkipLog, error) {
			return adapters.NewSkipLogAdapter(path, runID)
		},
		NewRunID: uuid.NewString,
		Clock:    time.Now,
	}
}
