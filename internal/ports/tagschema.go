package ports

import "splash-master/internal/types"

// TagSchemaPort builds the output tag vocabulary.
//
// The built-in survey vocabulary is the base layer. Each call to
// LoadSchema adds a yaml layer; later layers override earlier ones per
// tag.
type TagSchemaPort interface {
	LoadSchema(path string) error
	Vocabulary() types.TagVocabulary
}
