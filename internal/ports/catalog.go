package ports

import "splash-master/internal/types"

type CatalogWriterPort interface {
	WriteCatalog(path string, table *types.MasterTable, vocab types.TagVocabulary, grid types.WavelengthGrid, runID string) error
}

type CatalogReaderPort interface {
	ReadCatalog(path string) (types.CatalogInfo, error)
}

type SummaryWriterPort interface {
	WriteSummary(path string, summary types.RunSummary) error
}
