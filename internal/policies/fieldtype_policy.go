package policies

import (
	"strings"

	"splash-master/internal/types"
)

// DefaultSubstructMasks are the masks placed on known halo substructure.
var DefaultSubstructMasks = []string{
	"a3_1", "a3_2", "a3_3", "f2_1", "f2_2", "f207_1", "NE1", "NE2", "NE3", "NE4", "NE6",
	"NW13dV", "NW14V_1", "NW15V", "NW1dV", "NW2V_1", "NW2V_2", "NW2dV", "NW3V_1", "NW9V_1",
	"NW9V_2", "f123_1", "f115_1", "f109_1", "f116_1", "f135_1", "m4_1", "m4_2", "m4_3", "m4_4",
	"m4_5", "a13_1", "a13_2", "a13_3", "a13_4", "A220_1", "A220_2", "A220_3",
}

type fieldTypeRule struct {
	fieldType types.FieldType
	matches   func(mask string) bool
}

// FieldTypePolicy classifies masks by target population. Rules are
// evaluated in order and the first match wins; masks matching no rule
// are halo fields.
type FieldTypePolicy struct {
	rules    []fieldTypeRule
	fallback types.FieldType
}

func NewFieldTypePolicy(substructMasks []string) FieldTypePolicy {
	if len(substructMasks) == 0 {
		substructMasks = DefaultSubstructMasks
	}
	substruct := make(map[string]struct{}, len(substructMasks))
	for _, mask := range substructMasks {
		substruct[strings.TrimSpace(mask)] = struct{}{}
	}
	return FieldTypePolicy{
		rules: []fieldTypeRule{
			{types.FieldTypeDisk, func(mask string) bool {
				return strings.Contains(mask, "mct") || mask == "SE7"
			}},
			{types.FieldTypeDSph, func(mask string) bool {
				return strings.Contains(mask, "d") && !strings.Contains(mask, "nw")
			}},
			{types.FieldTypeDE, func(mask string) bool {
				return containsAny(mask, "n147", "n185", "n205")
			}},
			{types.FieldTypeM32, func(mask string) bool {
				return strings.Contains(mask, "m32")
			}},
			{types.FieldTypeSubstruct, func(mask string) bool {
				_, ok := substruct[mask]
				return ok
			}},
		},
		fallback: types.FieldTypeHalo,
	}
}

func (p FieldTypePolicy) Classify(mask string) types.FieldType {
	for _, rule := range p.rules {
		if rule.matches(mask) {
			return rule.fieldType
		}
	}
	return p.fallback
}

// ParseFieldType accepts a field type name in any letter case.
func ParseFieldType(value string) (types.FieldType, bool) {
	candidate := types.FieldType(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range types.FieldTypes {
		if candidate == known {
			return known, true
		}
	}
	return "", false
}

func containsAny(value string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(value, needle) {
			return true
		}
	}
	return false
}
