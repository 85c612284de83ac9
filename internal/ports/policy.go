package ports

import "splash-master/internal/types"

type FieldTypePolicyPort interface {
	Classify(mask string) types.FieldType
}
