package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// EntryType is how a schedule entry's amount is derived.
type EntryType string

const (
	EntryFixed      EntryType = "fixed"
	EntryPercentage EntryType = "percentage"
	EntryRemaining  EntryType = "remaining"
)

// IsValid returns true if the entry type is known.
func (t EntryType) IsValid() bool {
	switch t {
	case EntryFixed, EntryPercentage, EntryRemaining:
		return true
	default:
		return false
	}
}

var hundred = decimal.NewFromInt(100)

// ScheduleDefinition is one declarative rule of a payment schedule.
type ScheduleDefinition struct {
	Label       string          `yaml:"label" json:"label"`
	StageKey    string          `yaml:"stage,omitempty" json:"stage,omitempty"`
	Type        EntryType       `yaml:"type" json:"type"`
	FixedAmount int64           `yaml:"fixed_amount,omitempty" json:"fixed_amount,omitempty"`
	Percentage  decimal.Decimal `yaml:"percentage,omitempty" json:"percentage"`
}

// ScheduleEntry is a definition with its amount resolved against a project value.
type ScheduleEntry struct {
	ScheduleDefinition
	Amount int64 `json:"amount"`
}

// ResolvedSchedule is the result of evaluating a schedule against a project value.
type ResolvedSchedule struct {
	ProjectValue int64           `json:"project_value"`
	Entries      []ScheduleEntry `json:"entries"`
	Total        int64           `json:"total"`
	// Mismatch is set when the entries do not add up to the project value,
	// or when a remaining entry had to go negative to make them add up.
	// It is a display flag: under or over allocation is a legitimate state.
	Mismatch   bool  `json:"mismatch"`
	Difference int64 `json:"difference"`
}

// ValidateScheduleDefinitions checks the static shape of a schedule.
func ValidateScheduleDefinitions(defs []ScheduleDefinition) error {
	remaining := 0
	for i, def := range defs {
		if strings.TrimSpace(def.Label) == "" {
			return invalidSchedule("entry %d has no label", i)
		}
		if !def.Type.IsValid() {
			return invalidSchedule("entry %q has unknown type %q", def.Label, def.Type)
		}
		switch def.Type {
		case EntryFixed:
			if def.FixedAmount < 0 {
				return invalidSchedule("entry %q has a negative amount", def.Label)
			}
		case EntryPercentage:
			if def.Percentage.IsNegative() || def.Percentage.GreaterThan(hundred) {
				return invalidSchedule("entry %q percentage must be between 0 and 100", def.Label)
			}
		case EntryRemaining:
			remaining++
		}
	}
	if remaining > 1 {
		return invalidSchedule("schedule has %d remaining-balance entries, at most one is allowed", remaining)
	}
	return nil
}

// ResolveSchedule computes every entry's amount. Remaining-balance entries are
// computed after all other entries regardless of their position.
func ResolveSchedule(defs []ScheduleDefinition, projectValue int64) (ResolvedSchedule, error) {
	if err := ValidateScheduleDefinitions(defs); err != nil {
		return ResolvedSchedule{}, err
	}
	if projectValue < 0 {
		return ResolvedSchedule{}, invalidInput("project value cannot be negative")
	}

	entries := make([]ScheduleEntry, len(defs))
	remainingAt := -1
	var allocated int64

	for i, def := range defs {
		entries[i] = ScheduleEntry{ScheduleDefinition: def}
		switch def.Type {
		case EntryFixed:
			entries[i].Amount = def.FixedAmount
		case EntryPercentage:
			entries[i].Amount = percentOf(def.Percentage, projectValue)
		case EntryRemaining:
			remainingAt = i
			continue
		}
		allocated += entries[i].Amount
	}

	total := allocated
	difference := projectValue - allocated
	if remainingAt >= 0 {
		// The remaining entry goes negative when the other entries exceed
		// the project value; the overrun is still reported as a difference.
		entries[remainingAt].Amount = difference
		total += difference
		if difference > 0 {
			difference = 0
		}
	}

	resolved := ResolvedSchedule{
		ProjectValue: projectValue,
		Entries:      entries,
		Total:        total,
		Difference:   difference,
	}
	resolved.Mismatch = len(entries) > 0 && resolved.Difference != 0

	return resolved, nil
}

// percentOf returns round(percentage/100 * value), rounding half away from zero.
func percentOf(percentage decimal.Decimal, value int64) int64 {
	return percentage.Div(hundred).Mul(decimal.NewFromInt(value)).Round(0).IntPart()
}

// ParsePercent parses a decimal percentage such as "12.5".
func ParsePercent(s string) (decimal.Decimal, error) {
	p, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, invalidInput("invalid percentage %q", s)
	}
	return p, nil
}

func mustPercent(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func cloneDefinitions(defs []ScheduleDefinition) []ScheduleDefinition {
	if defs == nil {
		return nil
	}
	out := make([]ScheduleDefinition, len(defs))
	copy(out, defs)
	return out
}
