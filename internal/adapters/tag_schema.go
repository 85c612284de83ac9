package adapters

import (
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"splash-master/internal/ports"
	"splash-master/internal/types"
)

// TagSchemaAdapter implements TagSchemaPort using layered tag schema
// yaml files on top of the built-in survey vocabulary. Each call to
// LoadSchema merges new tags into the vocabulary; later loads override
// earlier ones per tag.
type TagSchemaAdapter struct {
	merged types.TagVocabulary

	// layers tracks load order for provenance.
	layers []string
}

func NewTagSchemaAdapter() *TagSchemaAdapter {
	return &TagSchemaAdapter{
		merged: types.DefaultTagVocabulary(),
	}
}

// LoadSchema reads a tag schema file and merges its entries.
// Tag names are upper-cased; formats must be E, D or <n>A.
func (a *TagSchemaAdapter) LoadSchema(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read tag schema file: " + path).
			WithCause(err)
	}

	var schema types.TagSchemaFile
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse tag schema file: " + path).
			WithCause(err)
	}

	if schema.SchemaVersion == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("tag schema file missing schema_version: " + path)
	}

	layer := make(types.TagVocabulary, len(schema.Tags))
	for name, format := range schema.Tags {
		tag := strings.ToUpper(strings.TrimSpace(name))
		if tag == "" {
			continue
		}
		normalized := types.TagFormat(strings.ToUpper(strings.TrimSpace(string(format))))
		if !normalized.Valid() {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("tag '" + tag + "' has invalid format '" + string(format) + "' in " + path)
		}
		layer[tag] = normalized
	}

	for tag, format := range layer {
		if previous, exists := a.merged[tag]; exists && previous != format {
			log.Debug().
				Str("tag", tag).
				Str("from", string(previous)).
				Str("to", string(format)).
				Str("layer", path).
				Msg("tag format overridden by later layer")
		}
		a.merged[tag] = format
	}

	a.layers = append(a.layers, path)
	log.Debug().
		Str("path", path).
		Int("tags", len(layer)).
		Int("total", len(a.merged)).
		Msg("tag schema layer loaded")
	return nil
}

// Vocabulary returns a copy of the merged vocabulary.
func (a *TagSchemaAdapter) Vocabulary() types.TagVocabulary {
	return a.merged.Clone()
}

func (a *TagSchemaAdapter) Layers() []string {
	return append([]string(nil), a.layers...)
}

var _ ports.TagSchemaPort = (*TagSchemaAdapter)(nil)
