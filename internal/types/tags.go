package types

import (
	"sort"
	"strconv"
	"strings"
)

// Output tags produced by the pipeline.
const (
	TagLBIN       = "LBIN"
	TagSpec       = "SPEC"
	TagIVar       = "IVAR"
	TagSpecNorm   = "SPECNORM"
	TagIVarNorm   = "IVARNORM"
	TagPosA       = "POS_A"
	TagParA       = "PAR_A"
	TagRA         = "RA"
	TagDec        = "DEC"
	TagRADeg      = "RA_DEG"
	TagDecDeg     = "DEC_DEG"
	TagMaskRA     = "MASK_RA"
	TagMaskDec    = "MASK_DEC"
	TagMaskRADeg  = "MASK_RA_DEG"
	TagMaskDecDeg = "MASK_DEC_DEG"

	TagZ       = "Z"
	TagZQual   = "ZQUAL"
	TagSNR     = "SNR"
	TagABand   = "ABAND"
	TagMJD     = "MJD"
	TagAirmass = "AIRMASS"

	TagMask      = "MASK"
	TagSlitName  = "SLITNAME"
	TagObjName   = "OBJNAME"
	TagFullName  = "FULLNAME"
	TagFieldType = "FIELDTYPE"
)

// DefaultTags is used when a run requests no tags.
var DefaultTags = []string{TagLBIN, TagSpec, TagIVar, TagRA, TagDec}

var SpectrumTags = []string{
	TagLBIN, TagSpec, TagIVar, TagSpecNorm, TagIVarNorm,
	TagPosA, TagParA, TagRA, TagDec, TagRADeg, TagDecDeg,
	TagMaskRA, TagMaskDec, TagMaskRADeg, TagMaskDecDeg,
}

var RedshiftTags = []string{TagZ, TagZQual, TagSNR, TagABand, TagMJD, TagAirmass}

// RetainedRedshiftTags are kept in the redshift table whether requested
// or not; the rebinner and kinematics consumers read them.
var RetainedRedshiftTags = []string{TagZ, TagZQual, TagMJD, TagABand}

var IdentityTags = []string{TagMask, TagSlitName, TagObjName, TagFullName, TagFieldType}

// TagFormat is a FITS binary table storage code: "E" for a float
// array on the wavelength grid, "D" for a float64 scalar, "<n>A" for a
// fixed-width string.
type TagFormat string

func (f TagFormat) IsArray() bool {
	return f == "E"
}

func (f TagFormat) IsString() bool {
	return strings.HasSuffix(string(f), "A")
}

// Width returns the character width of a string format, or 0.
func (f TagFormat) Width() int {
	if !f.IsString() {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSuffix(string(f), "A"))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

func (f TagFormat) Valid() bool {
	switch {
	case f == "E", f == "D":
		return true
	case f.IsString():
		return f.Width() > 0
	default:
		return false
	}
}

// TagVocabulary maps every recognized output tag to its storage format.
type TagVocabulary map[string]TagFormat

func (v TagVocabulary) Has(tag string) bool {
	_, ok := v[tag]
	return ok
}

func (v TagVocabulary) Names() []string {
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (v TagVocabulary) Clone() TagVocabulary {
	out := make(TagVocabulary, len(v))
	for name, format := range v {
		out[name] = format
	}
	return out
}

// DefaultTagVocabulary returns the survey's master file tag map.
func DefaultTagVocabulary() TagVocabulary {
	return TagVocabulary{
		// spectra
		TagLBIN:      "E",
		TagSpec:      "E",
		TagIVar:      "E",
		TagSNR:       "D",
		"SPECCALIB":  "E",
		"IVARCALIB":  "E",
		TagSpecNorm:  "E",
		TagIVarNorm:  "E",
		// identification
		TagMask:      "7A",
		TagSlitName:  "3A",
		TagObjName:   "16A",
		TagFullName:  "38A",
		"GRATE":      "D",
		TagRA:        "11A",
		TagDec:       "11A",
		TagRADeg:     "D",
		TagDecDeg:    "D",
		TagFieldType: "9A",
		// mask and observing conditions
		TagPosA:       "D",
		TagMaskRA:     "11A",
		TagMaskDec:    "11A",
		TagMaskRADeg:  "D",
		TagMaskDecDeg: "D",
		TagParA:       "D",
		TagAirmass:    "D",
		"PIXAV":       "D",
		"EVSTAGE":     "D",
		// kinematics
		TagABand: "D",
		TagMJD:   "D",
		TagZ:     "D",
		"VHEL":   "D",
		"E_VHEL": "D",
		TagZQual: "D",
		// photometry
		"CN": "D", "TIO": "D",
		"F275W": "D", "F336W": "D", "F475W": "D", "F814W": "D", "F110W": "D", "F160W": "D",
		"M": "D", "T": "D", "DDO51": "D", "I": "D", "V": "D", "R": "D", "M36": "D", "M45": "D",
		"E_F275W": "D", "E_F336W": "D", "E_F475W": "D", "E_F814W": "D", "E_F110W": "D", "E_F160W": "D",
		"E_M": "D", "E_T": "D", "E_DDO51": "D", "E_I": "D", "E_V": "D", "E_R": "D", "E_M36": "D", "E_M45": "D",
		// flags
		"CSTAR": "D",
		"ESTAR": "D",
	}
}

// TagSchemaFile is a yaml layer that adds or overrides vocabulary
// entries.
type TagSchemaFile struct {
	SchemaVersion string               `yaml:"schema_version"`
	Tags          map[string]TagFormat `yaml:"tags"`
}
