package types

type SelectionMode string

const (
	SelectionAll       SelectionMode = "all"
	SelectionMasks     SelectionMode = "masks"
	SelectionFields    SelectionMode = "fields"
	SelectionFieldType SelectionMode = "fieldtype"
)

type FieldType string

const (
	FieldTypeDisk      FieldType = "disk"
	FieldTypeDSph      FieldType = "dsph"
	FieldTypeDE        FieldType = "de"
	FieldTypeM32       FieldType = "m32"
	FieldTypeSubstruct FieldType = "substruct"
	FieldTypeHalo      FieldType = "halo"
)

// FieldTypes lists every classification a mask can receive.
var FieldTypes = []FieldType{
	FieldTypeDisk,
	FieldTypeDSph,
	FieldTypeDE,
	FieldTypeM32,
	FieldTypeSubstruct,
	FieldTypeHalo,
}

type Quality int

const (
	QualityManualSentinel Quality = -1
	QualityUnusable       Quality = 0
	QualityAmbiguous      Quality = 1
	QualityGood           Quality = 2
	QualitySerendip       Quality = 3
)

type MatchSource string

const (
	MatchNone     MatchSource = ""
	MatchZspec    MatchSource = "zspec"
	MatchSerendip MatchSource = "serendip"
)

type SkipReason string

const (
	SkipUnreadableFile            SkipReason = "UnreadableFile"
	SkipTooFewExtensions          SkipReason = "TooFewExtensions"
	SkipMissingArmData            SkipReason = "MissingArmData"
	SkipInsufficientValidSamples  SkipReason = "InsufficientValidSamples"
	SkipUndefinedRedshift         SkipReason = "UndefinedRedshift"
	SkipInvalidWavelengthSolution SkipReason = "InvalidWavelengthSolution"
	SkipEmptySpectrum             SkipReason = "EmptySpectrum"
	SkipUnexpectedFailure         SkipReason = "UnexpectedFailure"
)
