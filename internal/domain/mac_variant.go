package domain

import (
	"fmt"
	"strings"
)

// MacVariant selects which historical MAC field tables and missing-field rules apply
type MacVariant int

const (
	// MacVariantExtended is the default variant of the gateway protocol revision targeted here
	MacVariantExtended MacVariant = iota
	// MacVariantGeneral uses the shorter field lists and dashes every missing field
	MacVariantGeneral
)

func (v MacVariant) String() string {
	switch v {
	case MacVariantGeneral:
		return "general"
	case MacVariantExtended:
		return "extended"
	default:
		return "unknown"
	}
}

// ParseMacVariant parses "general" or "extended" (case-insensitive).
// An empty value yields the default extended variant.
func ParseMacVariant(value string) (MacVariant, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "extended":
		return MacVariantExtended, nil
	case "general":
		return MacVariantGeneral, nil
	default:
		return 0, fmt.Errorf("unsupported MAC variant: %s", value)
	}
}
