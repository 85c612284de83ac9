package ports

import "splash-master/internal/types"

// SkipLogPort receives one entry per target the rebinner drops.
// Implementations must be safe for concurrent use.
type SkipLogPort interface {
	Record(entry types.SkipEntry) error
}
