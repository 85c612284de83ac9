package types

// ErrorKind prefixes the message of every fatal pipeline error so the
// kind survives wrapping.
type ErrorKind string

const (
	KindInvalidFilename        ErrorKind = "invalid filename"
	KindInvalidSelection       ErrorKind = "invalid selection"
	KindPathNotFound           ErrorKind = "path not found"
	KindMissingCounterpartFile ErrorKind = "missing counterpart file"
	KindMalformedInputFile     ErrorKind = "malformed input file"
	KindInvalidSerendipFile    ErrorKind = "invalid serendip file"
	KindSchemaViolation        ErrorKind = "schema violation"
	KindInvalidGrid            ErrorKind = "invalid grid"
)
