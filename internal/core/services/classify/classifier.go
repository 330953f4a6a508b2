package classify

import (
	"strings"

	"github.com/netscenehq/netscene/internal/core/domain"
)

// Input is the raw material for one classification decision. All fields are
// optional; missing fields simply skip the rules that need them.
type Input struct {
	MAC        string
	VendorName string
	Model      string
	Hostname   string
}

// Classifier assigns a device type and confidence from immutable tables.
// Classification is pure: the same input always yields the same result.
type Classifier struct {
	tables *Tables
}

// New creates a classifier over the given tables. Pass nil for the builtin
// defaults.
func New(tables *Tables) *Classifier {
	if tables == nil {
		tables = DefaultTables()
	}
	return &Classifier{tables: tables}
}

// Classify applies the rule tiers in priority order, first match wins:
// model/hostname match, OUI type table, vendor keyword, fallback unknown.
// The metadata tier outranks the OUI table because it reflects what the
// device reports about itself.
func (c *Classifier) Classify(in Input) (domain.DeviceType, domain.Confidence) {
	if t, ok := c.matchMetadata(in.Model); ok {
		return t, domain.ConfidenceExact
	}
	if t, ok := c.matchMetadata(in.Hostname); ok {
		return t, domain.ConfidenceExact
	}

	if t, ok := c.matchOUI(in.MAC); ok {
		return t, domain.ConfidenceOUI
	}

	if t, ok := c.matchKeyword(in.VendorName); ok {
		return t, domain.ConfidenceKeyword
	}

	return domain.TypeUnknown, domain.ConfidenceNone
}

func (c *Classifier) matchMetadata(value string) (domain.DeviceType, bool) {
	if value == "" {
		return "", false
	}
	needle := strings.ToLower(value)

	// Longest pattern wins so "u6-pro" beats "u6" style overlaps; ties
	// break lexicographically to stay deterministic across map iteration.
	var best string
	var bestType domain.DeviceType
	for pattern, t := range c.tables.Models {
		if !strings.Contains(needle, pattern) {
			continue
		}
		if len(pattern) > len(best) || (len(pattern) == len(best) && pattern < best) {
			best = pattern
			bestType = t
		}
	}
	if best == "" {
		return "", false
	}
	return bestType, true
}

func (c *Classifier) matchOUI(mac string) (domain.DeviceType, bool) {
	if len(mac) < 8 {
		return "", false
	}
	prefix := strings.ToUpper(strings.ReplaceAll(mac[0:8], "-", ":"))
	t, ok := c.tables.OUITypes[prefix]
	return t, ok
}

func (c *Classifier) matchKeyword(vendor string) (domain.DeviceType, bool) {
	if vendor == "" {
		return "", false
	}
	needle := strings.ToLower(vendor)
	for _, rule := range c.tables.Keywords {
		if strings.Contains(needle, rule.Pattern) {
			return rule.Type, true
		}
	}
	return "", false
}
