package situation

import (
	"slices"

	"go.uber.org/zap"
)

// Analyzer evaluates situations against a Book.
type Analyzer struct {
	rules  Rules
	logger *zap.Logger
}

// NewAnalyzer returns an Analyzer for rules. A nil logger discards output.
func NewAnalyzer(rules Rules, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{rules: rules, logger: logger}
}

// Rules returns the analyzer's rule set.
func (a *Analyzer) Rules() Rules { return a.rules }

// Select returns the active situations of a frequency in report order:
// by group, then by Order.
func (a *Analyzer) Select(freq Frequency) []Situation {
	var out []Situation
	for _, g := range Groups {
		var group []Situation
		for _, s := range a.rules.Situations {
			if s.Active && s.Frequency == freq && s.Group == g {
				group = append(group, s)
			}
		}
		slices.SortStableFunc(group, func(x, y Situation) int { return x.Order - y.Order })
		out = append(out, group...)
	}
	return out
}

// Run returns the messages of every situation whose formulas all hold.
// A situation that fails to evaluate is skipped.
func (a *Analyzer) Run(book *Book, freq Frequency, year int) []string {
	var msgs []string
	for _, s := range a.Select(freq) {
		msg, ok, err := evaluate(s, book, year)
		if err != nil {
			a.logger.Debug("situation skipped", zap.String("situation", s.Name), zap.Error(err))
			continue
		}
		if ok && msg != "" {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

func evaluate(s Situation, src Source, year int) (string, bool, error) {
	for _, f := range s.Formulas {
		cf, err := f.compile()
		if err != nil {
			return "", false, err
		}
		ok, err := cf.holds(src)
		if err != nil {
			return "", false, err
		}
		if !ok {
			return "", false, nil
		}
	}
	t, err := ParseTemplate(s.Message)
	if err != nil {
		return "", false, err
	}
	msg, err := t.Render(src, year)
	if err != nil {
		return "", false, err
	}
	return msg, true, nil
}
