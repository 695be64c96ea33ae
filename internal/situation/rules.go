package situation

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Frequency selects which sheets an analysis reads.
type Frequency string

const (
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Yearly    Frequency = "yearly"
)

// ParseFrequency validates a frequency name.
func ParseFrequency(s string) (Frequency, error) {
	switch f := Frequency(s); f {
	case Monthly, Quarterly, Yearly:
		return f, nil
	}
	return "", fmt.Errorf("unknown frequency %q (want monthly, quarterly or yearly)", s)
}

// Groups is the report order of situation groups.
var Groups = []string{
	"description1", "description2", "description3", "description4", "description5",
	"revenues", "costs", "expenses", "profitability", "liquidity", "structure",
	"coberture", "financial-need", "cicle", "cash-flow", "return",
	"conclusion1", "conclusion2", "conclusion3", "conclusion4", "conclusion5",
}

// Situation emits Message when every formula holds.
type Situation struct {
	Name      string    `yaml:"name" json:"name"`
	Message   string    `yaml:"message" json:"message"`
	Frequency Frequency `yaml:"frequency" json:"frequency"`
	Formulas  []Formula `yaml:"formulas" json:"formulas"`
	Group     string    `yaml:"group" json:"group"`
	Active    bool      `yaml:"active" json:"active"`
	Order     int       `yaml:"order" json:"order"`
}

// UnmarshalYAML defaults Active to true.
func (s *Situation) UnmarshalYAML(n *yaml.Node) error {
	type plain Situation
	p := plain{Active: true}
	if err := n.Decode(&p); err != nil {
		return err
	}
	*s = Situation(p)
	return nil
}

// Rules is the contents of a rules file.
type Rules struct {
	Indicators []Indicator `yaml:"indicators" json:"indicators"`
	Situations []Situation `yaml:"situations" json:"situations"`
}

//go:embed rules.yaml
var defaultRules []byte

// DefaultRules returns the built-in rule set.
func DefaultRules() Rules {
	r, err := ParseRules(defaultRules)
	if err != nil {
		panic(fmt.Sprintf("situation: embedded rules: %v", err))
	}
	return r
}

// DefaultRulesYAML returns the built-in rules document.
func DefaultRulesYAML() []byte {
	return append([]byte(nil), defaultRules...)
}

// LoadRules reads a rules file. An empty path yields the built-in rules.
func LoadRules(path string) (Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("reading rules: %w", err)
	}
	r, err := ParseRules(data)
	if err != nil {
		return Rules{}, fmt.Errorf("rules %s: %w", path, err)
	}
	return r, nil
}

// ParseRules decodes and validates a rules document.
func ParseRules(data []byte) (Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Rules{}, fmt.Errorf("parsing rules: %w", err)
	}
	if err := r.Validate(); err != nil {
		return Rules{}, err
	}
	return r, nil
}

// Validate checks that every formula and message compiles.
func (r Rules) Validate() error {
	seen := make(map[string]bool)
	for _, ind := range r.Indicators {
		if ind.Name == "" {
			return fmt.Errorf("indicator with empty name")
		}
		if seen[ind.Name] {
			return fmt.Errorf("duplicate indicator %q", ind.Name)
		}
		seen[ind.Name] = true
		if _, err := Parse(ind.Formula); err != nil {
			return fmt.Errorf("indicator %q: %w", ind.Name, err)
		}
	}
	for _, s := range r.Situations {
		if _, err := ParseFrequency(string(s.Frequency)); err != nil {
			return fmt.Errorf("situation %q: %w", s.Name, err)
		}
		if !slices.Contains(Groups, s.Group) {
			return fmt.Errorf("situation %q: unknown group %q", s.Name, s.Group)
		}
		if len(s.Formulas) == 0 {
			return fmt.Errorf("situation %q: no formulas", s.Name)
		}
		for _, f := range s.Formulas {
			if _, err := f.compile(); err != nil {
				return fmt.Errorf("situation %q: %w", s.Name, err)
			}
		}
		if _, err := ParseTemplate(s.Message); err != nil {
			return fmt.Errorf("situation %q: message: %w", s.Name, err)
		}
	}
	return nil
}
