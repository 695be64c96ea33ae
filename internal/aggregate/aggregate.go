// Package aggregate rolls raw balance-sheet lines up the canonical chart.
package aggregate

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/finspect-dev/finspect/internal/code"
	"github.com/finspect-dev/finspect/internal/model"
)

// AmbiguousMappingError reports a canonical account fed both by directly
// linked raw accounts and by populated children.
type AmbiguousMappingError struct {
	Code     string
	Direct   []string
	Children []string
}

func (e AmbiguousMappingError) Error() string {
	return fmt.Sprintf("account %s is linked directly from %s and also rolls up children %s",
		e.Code, strings.Join(e.Direct, ","), strings.Join(e.Children, ","))
}

// Options controls ambiguity handling.
type Options struct {
	// Strict turns an ambiguous mapping into an AmbiguousMappingError.
	// Otherwise the direct mapping wins and the conflict is reported.
	Strict bool
	Logger *zap.Logger
}

// Result is a fully populated standardized account tree.
type Result struct {
	Accounts    []model.BalanceSheetAccount
	Unmapped    []string
	Ambiguities []AmbiguousMappingError
}

type node struct {
	acct  model.StandardAccount
	code  code.Code
	value model.Balances
	// populated is set once raw data reached this node, directly or below.
	populated bool
}

// Aggregate computes every canonical account's balances from raw accounts and
// a link table (raw code to canonical code).
//
// Deepest-level accounts sum the raw accounts linked to them. Each shallower
// account sums its directly linked raw accounts when it has any, and
// otherwise the balances of its direct children. Accounts with neither stay
// at zero. Aggregation fails only on malformed codes, or on an ambiguous
// mapping when opts.Strict is set.
func Aggregate(raw []model.RawAccount, links map[string]string, chart []model.StandardAccount, opts Options) (Result, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	nodes := make([]*node, 0, len(chart))
	byCode := make(map[string]*node, len(chart))
	byLevel := make(map[int][]*node)
	deepest := 0
	for _, a := range chart {
		c, err := code.Parse(a.Code)
		if err != nil {
			return Result{}, fmt.Errorf("chart: %w", err)
		}
		n := &node{acct: a, code: c}
		n.acct.Level = c.Level()
		nodes = append(nodes, n)
		byCode[a.Code] = n
		byLevel[n.acct.Level] = append(byLevel[n.acct.Level], n)
		if n.acct.Level > deepest {
			deepest = n.acct.Level
		}
	}

	direct := make(map[string]model.Balances)
	directFrom := make(map[string][]string)
	var res Result
	for _, r := range raw {
		if _, err := code.Parse(r.Code); err != nil {
			return Result{}, fmt.Errorf("raw account: %w", err)
		}
		target, ok := links[r.Code]
		if !ok || byCode[target] == nil {
			res.Unmapped = append(res.Unmapped, r.Code)
			continue
		}
		direct[target] = direct[target].Add(r.Balances)
		directFrom[target] = append(directFrom[target], r.Code)
	}
	if len(res.Unmapped) > 0 {
		log.Debug("raw accounts without canonical link", zap.Strings("codes", res.Unmapped))
	}

	for _, n := range byLevel[deepest] {
		if b, ok := direct[n.acct.Code]; ok {
			n.value, n.populated = b, true
		}
	}

	for level := deepest - 1; level >= 1; level-- {
		children := byLevel[level+1]
		for _, n := range byLevel[level] {
			var sum model.Balances
			var populatedKids []string
			for _, ch := range children {
				if !code.IsDirectChild(n.code, ch.code) {
					continue
				}
				sum = sum.Add(ch.value)
				if ch.populated {
					populatedKids = append(populatedKids, ch.acct.Code)
				}
			}

			b, hasDirect := direct[n.acct.Code]
			switch {
			case hasDirect && len(populatedKids) > 0:
				amb := AmbiguousMappingError{Code: n.acct.Code, Direct: sorted(directFrom[n.acct.Code]), Children: populatedKids}
				if opts.Strict {
					return Result{}, amb
				}
				log.Warn("ambiguous mapping, using direct links",
					zap.String("account", amb.Code),
					zap.Strings("direct", amb.Direct),
					zap.Strings("children", amb.Children))
				res.Ambiguities = append(res.Ambiguities, amb)
				n.value, n.populated = b, true
			case hasDirect:
				n.value, n.populated = b, true
			default:
				n.value, n.populated = sum, len(populatedKids) > 0
			}
		}
	}

	res.Accounts = make([]model.BalanceSheetAccount, len(nodes))
	for i, n := range nodes {
		res.Accounts[i] = model.BalanceSheetAccount{StandardAccount: n.acct, Balances: n.value}
	}
	return res, nil
}

func sorted(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}
