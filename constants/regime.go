package constants

import (
	"strings"
)

// Regime is the matrimonial property regime a deed assigns to an inventory item.
type Regime string

const (
	Ganancial     Regime = "ganancial"
	Privativo     Regime = "privativo"
	RegimeUnknown Regime = ""
)

var allRegimes = []Regime{
	Ganancial,
	Privativo,
}

// CanonicalizeRegime maps a model-supplied regime label to a known Regime.
// The bool is false when the label is empty or unrecognized.
func CanonicalizeRegime(input string) (Regime, bool) {
	if input == "" {
		return RegimeUnknown, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	synonyms := map[string]Regime{
		"gananciales":                     Ganancial,
		"bien ganancial":                  Ganancial,
		"bienes gananciales":              Ganancial,
		"activo ganancial":                Ganancial,
		"activos de naturaleza ganancial": Ganancial,
		"privativa":                       Privativo,
		"privativos":                      Privativo,
		"privativas":                      Privativo,
		"bien privativo":                  Privativo,
		"activo de naturaleza privativa":  Privativo,
	}

	if r, ok := synonyms[normalized]; ok {
		return r, true
	}

	for _, r := range allRegimes {
		if normalized == string(r) {
			return r, true
		}
	}

	return RegimeUnknown, false
}
