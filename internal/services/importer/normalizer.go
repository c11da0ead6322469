package importer

import (
	"strings"

	"github.com/findosh/showroom/internal/models"
	"github.com/findosh/showroom/internal/textfold"
)

// Canonical labels shown by the catalog filters
const (
	FuelFlex     = "Flex"
	FuelGasoline = "Gasolina"
	FuelEthanol  = "Etanol"
	FuelDiesel   = "Diesel"
	FuelElectric = "Eletrico"
	FuelHybrid   = "Hibrido"

	TransmissionManual    = "Manual"
	TransmissionAutomatic = "Automatico"
	TransmissionAutomated = "Automatizado"
	TransmissionCVT       = "CVT"
)

// Normalizer maps free-form spreadsheet values onto catalog labels
type Normalizer struct {
	fuels         map[string]string
	transmissions map[string]string
	bodyTypes     map[string]string
}

// NewNormalizer creates a normalizer with built-in synonyms
func NewNormalizer() *Normalizer {
	n := &Normalizer{
		fuels:         make(map[string]string),
		transmissions: make(map[string]string),
		bodyTypes:     make(map[string]string),
	}
	n.loadBuiltinData()
	return n
}

// Fuel returns the canonical fuel label. Empty input means Flex, the
// default for Brazilian cars; unknown values are kept as written.
func (n *Normalizer) Fuel(raw string) string {
	key := normalizeKey(raw)
	if key == "" {
		return FuelFlex
	}
	if label, ok := n.fuels[key]; ok {
		return label
	}

	switch {
	case strings.Contains(key, "flex"):
		return FuelFlex
	case strings.Contains(key, "hibrid") || strings.Contains(key, "hybrid"):
		return FuelHybrid
	case strings.Contains(key, "eletric") || strings.Contains(key, "electric"):
		return FuelElectric
	case strings.Contains(key, "diesel"):
		return FuelDiesel
	case strings.Contains(key, "alcool") || strings.Contains(key, "etanol") || strings.Contains(key, "ethanol"):
		return FuelEthanol
	case strings.Contains(key, "gasol") || strings.Contains(key, "petrol"):
		return FuelGasoline
	}
	return strings.TrimSpace(raw)
}

// Transmission returns the canonical gearbox label. Empty input means
// Manual; unknown values are kept as written.
func (n *Normalizer) Transmission(raw string) string {
	key := normalizeKey(raw)
	if key == "" {
		return TransmissionManual
	}
	if label, ok := n.transmissions[key]; ok {
		return label
	}

	switch {
	case strings.Contains(key, "cvt"):
		return TransmissionCVT
	case strings.Contains(key, "automatiz") || strings.Contains(key, "automated"):
		return TransmissionAutomated
	case strings.Contains(key, "auto"):
		return TransmissionAutomatic
	case strings.Contains(key, "manual") || strings.Contains(key, "mecan"):
		return TransmissionManual
	}
	return strings.TrimSpace(raw)
}

// BodyType returns the canonical body label, or the input when unknown
func (n *Normalizer) BodyType(raw string) string {
	if label, ok := n.bodyTypes[normalizeKey(raw)]; ok {
		return label
	}
	return strings.TrimSpace(raw)
}

// Condition reads "new"/"novo" (and "0km") as new; everything else is used
func (n *Normalizer) Condition(raw string) models.Condition {
	switch normalizeKey(raw) {
	case "new", "novo", "nova", "0km", "0 km", "zero km":
		return models.ConditionNew
	}
	return models.ConditionUsed
}

func (n *Normalizer) loadBuiltinData() {
	fuels := map[string][]string{
		FuelFlex:     {"flex", "flexfuel", "flex fuel", "alcool gasolina", "gasolina alcool"},
		FuelGasoline: {"gasolina", "gasoline", "gas", "petrol", "g"},
		FuelEthanol:  {"etanol", "alcool", "ethanol", "e"},
		FuelDiesel:   {"diesel", "d"},
		FuelElectric: {"eletrico", "electric", "ev", "bev"},
		FuelHybrid:   {"hibrido", "hybrid", "hev", "phev"},
	}
	transmissions := map[string][]string{
		TransmissionManual:    {"manual", "mecanico", "mec", "mt", "m"},
		TransmissionAutomatic: {"automatico", "automatic", "auto", "at", "a"},
		TransmissionAutomated: {"automatizado", "automated", "amt", "dct", "dsg"},
		TransmissionCVT:       {"cvt"},
	}
	bodyTypes := map[string][]string{
		"Sedan":     {"sedan", "seda"},
		"Hatch":     {"hatch", "hatchback"},
		"SUV":       {"suv", "utilitario esportivo"},
		"Picape":    {"picape", "pickup", "pick up", "caminhonete"},
		"Crossover": {"crossover"},
		"Coupe":     {"coupe", "cupe"},
		"Perua":     {"perua", "wagon", "station wagon", "sw"},
		"Minivan":   {"minivan", "van"},
	}

	for label, synonyms := range fuels {
		for _, s := range synonyms {
			n.fuels[s] = label
		}
	}
	for label, synonyms := range transmissions {
		for _, s := range synonyms {
			n.transmissions[s] = label
		}
	}
	for label, synonyms := range bodyTypes {
		for _, s := range synonyms {
			n.bodyTypes[s] = label
		}
	}
}

func normalizeKey(s string) string {
	s = textfold.Key(s)
	s = strings.NewReplacer("/", " ", "-", " ", "_", " ", ".", "").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
