package services

import (
	"strconv"
	"strings"
	"time"

	"matchfeed_server/models"
)

// Recognised preference keys. Anything else in a preference bag is ignored.
const (
	PrefMinAge        = "minAge"
	PrefMaxAge        = "maxAge"
	PrefGender        = "gender"
	PrefReligion      = "religion"
	PrefMaritalStatus = "maritalStatus"
	PrefDiet          = "diet"
	PrefSmoking       = "smoking"
	PrefDrinking      = "drinking"
	PrefIncomeBracket = "incomeBracket"
	PrefCommunity     = "community"
	PrefEducation     = "education"
	PrefOccupation    = "occupation"
	PrefLocation      = "location"
)

// anyValue disables a categorical preference
const anyValue = "Any"

// Preferences is the typed form of a preference bag
type Preferences struct {
	MinAge *int
	MaxAge *int

	Gender        string
	Religion      string
	MaritalStatus string
	Diet          string
	Smoking       string
	Drinking      string
	IncomeBracket string

	Community  string
	Education  string
	Occupation string
	Location   string
}

// ParsePreferences converts a raw bag into Preferences. Unknown keys, blank
// values and malformed numbers are dropped.
func ParsePreferences(bag map[string]string) Preferences {
	var p Preferences
	for key, raw := range bag {
		value := strings.TrimSpace(raw)
		if value == "" {
			continue
		}
		switch key {
		case PrefMinAge:
			p.MinAge = parseAge(value)
		case PrefMaxAge:
			p.MaxAge = parseAge(value)
		case PrefGender:
			p.Gender = categorical(value)
		case PrefReligion:
			p.Religion = categorical(value)
		case PrefMaritalStatus:
			p.MaritalStatus = categorical(value)
		case PrefDiet:
			p.Diet = categorical(value)
		case PrefSmoking:
			p.Smoking = categorical(value)
		case PrefDrinking:
			p.Drinking = categorical(value)
		case PrefIncomeBracket:
			p.IncomeBracket = categorical(value)
		case PrefCommunity:
			p.Community = value
		case PrefEducation:
			p.Education = value
		case PrefOccupation:
			p.Occupation = value
		case PrefLocation:
			p.Location = value
		}
	}
	return p
}

func parseAge(value string) *int {
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 || n > 150 {
		return nil
	}
	return &n
}

func categorical(value string) string {
	if strings.EqualFold(value, anyValue) {
		return ""
	}
	return value
}

// ExactConstraint requires Field to equal Value
type ExactConstraint struct {
	Field string
	Value string
}

// ContainsConstraint requires at least one of Fields to contain Value.
// Fields name lowercase shadow attributes and Value is lowercased.
type ContainsConstraint struct {
	Fields []string
	Value  string
}

// CompiledPreferences is a conjunction of field constraints
type CompiledPreferences struct {
	// Inclusive YYYY-MM-DD bounds on dob, empty when unbounded
	DOBFrom string
	DOBTo   string

	Exact    []ExactConstraint
	Contains []ContainsConstraint
}

// IsEmpty reports whether no constraint was compiled
func (c CompiledPreferences) IsEmpty() bool {
	return c.DOBFrom == "" && c.DOBTo == "" && len(c.Exact) == 0 && len(c.Contains) == 0
}

// CompilePreferences turns a preference bag into constraints evaluated on today
func CompilePreferences(bag map[string]string, today time.Time) CompiledPreferences {
	return ParsePreferences(bag).Compile(today)
}

// Compile builds the constraint set for the given day
func (p Preferences) Compile(today time.Time) CompiledPreferences {
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	var c CompiledPreferences

	if p.MinAge != nil {
		// Youngest allowed candidate turned minAge today
		c.DOBTo = day.AddDate(-*p.MinAge, 0, 0).Format(time.DateOnly)
	}
	if p.MaxAge != nil {
		// Oldest allowed candidate is still maxAge: born after the day that
		// makes them maxAge+1 today
		c.DOBFrom = day.AddDate(-*p.MaxAge-1, 0, 1).Format(time.DateOnly)
	}

	exact := []struct{ field, value string }{
		{"gender", p.Gender},
		{"religion", p.Religion},
		{"maritalStatus", p.MaritalStatus},
		{"diet", p.Diet},
		{"smoking", p.Smoking},
		{"drinking", p.Drinking},
		{"incomeBracket", p.IncomeBracket},
	}
	for _, e := range exact {
		if e.value != "" {
			c.Exact = append(c.Exact, ExactConstraint{Field: e.field, Value: e.value})
		}
	}

	text := []struct{ field, value string }{
		{"communityLower", p.Community},
		{"educationLower", p.Education},
		{"occupationLower", p.Occupation},
	}
	for _, t := range text {
		if t.value != "" {
			c.Contains = append(c.Contains, ContainsConstraint{Fields: []string{t.field}, Value: strings.ToLower(t.value)})
		}
	}

	if p.Location != "" {
		c.Contains = append(c.Contains, ContainsConstraint{
			Fields: []string{"cityLower", "stateLower", "countryLower"},
			Value:  strings.ToLower(p.Location),
		})
	}
	return c
}

// Matches evaluates the constraints against a profile in memory
func (c CompiledPreferences) Matches(p *models.Profile) bool {
	if c.DOBFrom != "" || c.DOBTo != "" {
		if p.DOB == "" {
			return false
		}
		if c.DOBFrom != "" && p.DOB < c.DOBFrom {
			return false
		}
		if c.DOBTo != "" && p.DOB > c.DOBTo {
			return false
		}
	}
	for _, e := range c.Exact {
		if profileField(p, e.Field) != e.Value {
			return false
		}
	}
	for _, cc := range c.Contains {
		matched := false
		for _, f := range cc.Fields {
			if strings.Contains(profileField(p, f), cc.Value) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func profileField(p *models.Profile, field string) string {
	switch field {
	case "gender":
		return p.Gender
	case "religion":
		return p.Religion
	case "maritalStatus":
		return p.MaritalStatus
	case "diet":
		return p.Diet
	case "smoking":
		return p.Smoking
	case "drinking":
		return p.Drinking
	case "incomeBracket":
		return p.IncomeBracket
	case "communityLower":
		return strings.ToLower(p.Community)
	case "educationLower":
		return strings.ToLower(p.Education)
	case "occupationLower":
		return strings.ToLower(p.Occupation)
	case "cityLower":
		return strings.ToLower(p.City)
	case "stateLower":
		return strings.ToLower(p.State)
	case "countryLower":
		return strings.ToLower(p.Country)
	}
	return ""
}
