package graph

import (
	"sort"
	"strings"
)

// Term is one slot of a triple pattern: either a bound value or an
// unbound variable.
type Term struct {
	variable string
	value    *Object
}

// V returns a variable term. Occurrences of the same variable across
// patterns must bind to the same value.
func V(name string) Term { return Term{variable: name} }

// R returns a term bound to a resource.
func R(r Resource) Term {
	o := Ref(r)
	return Term{value: &o}
}

// L returns a term bound to a literal.
func L(l Literal) Term {
	o := Lit(l)
	return Term{value: &o}
}

// IsVar reports whether the term is an unbound variable.
func (t Term) IsVar() bool { return t.value == nil && t.variable != "" }

// Pattern is one conjunct of a query: a triple with bound and variable
// slots.
type Pattern struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// Binding maps variable names to the values satisfying a query.
type Binding map[string]Object

// QueryPattern evaluates a conjunction of triple patterns against the
// store and returns every variable binding that satisfies all of them.
// An empty binding set is a legitimate result, not an error. Evaluation
// holds the read lock for its whole duration, so results reflect one
// consistent state even with writes in flight.
//
// For each pattern the index with the most bound slots supplies the
// candidate set; patterns are then joined smallest-first via hash join
// on shared variables.
func (s *Store) QueryPattern(patterns []Pattern) ([]Binding, error) {
	if len(patterns) == 0 {
		return nil, &QuerySyntaxError{Detail: "query has no patterns"}
	}
	for _, p := range patterns {
		if err := checkPattern(p); err != nil {
			return nil, err
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.metrics != nil {
		s.metrics.Queries.Inc()
	}

	candidates := make([][]Triple, len(patterns))
	for i, p := range patterns {
		candidates[i] = s.candidatesLocked(p)
	}

	order := make([]int, len(patterns))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return len(candidates[order[a]]) < len(candidates[order[b]])
	})

	results := []Binding{{}}
	bound := make(map[string]bool)
	for _, idx := range order {
		results = joinPattern(results, bound, patterns[idx], candidates[idx])
		if len(results) == 0 {
			return []Binding{}, nil
		}
	}

	return dedupe(results), nil
}

func checkPattern(p Pattern) error {
	for _, t := range []Term{p.Subject, p.Predicate, p.Object} {
		if t.value == nil && t.variable == "" {
			return &QuerySyntaxError{Detail: "pattern slot is neither bound nor a variable"}
		}
	}
	if p.Subject.value != nil && !p.Subject.value.IsResource() {
		return &QuerySyntaxError{Detail: "subject slot bound to a literal"}
	}
	if p.Predicate.value != nil && !p.Predicate.value.IsResource() {
		return &QuerySyntaxError{Detail: "predicate slot bound to a literal"}
	}
	return nil
}

// candidatesLocked returns the triples matching a pattern's bound slots,
// consulting whichever index narrows the scan most.
func (s *Store) candidatesLocked(p Pattern) []Triple {
	var keys map[string]struct{}
	switch {
	case p.Subject.value != nil:
		keys = s.bySubject[p.Subject.value.Resource]
	case p.Object.value != nil:
		keys = s.byObject[p.Object.value.Key()]
	case p.Predicate.value != nil:
		keys = s.byPredicate[p.Predicate.value.Resource]
	}

	matches := func(t Triple) bool {
		if p.Subject.value != nil && t.Subject != p.Subject.value.Resource {
			return false
		}
		if p.Predicate.value != nil && t.Predicate != p.Predicate.value.Resource {
			return false
		}
		if p.Object.value != nil && t.Object.Key() != p.Object.value.Key() {
			return false
		}
		return true
	}

	var out []Triple
	if keys != nil {
		for key := range keys {
			if t := s.triples[key]; matches(t) {
				out = append(out, t)
			}
		}
		return out
	}
	// Fully unbound pattern: full scan.
	for _, t := range s.triples {
		if matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// varSlot pairs a variable name with an accessor pulling its value out
// of a matching triple.
type varSlot struct {
	name string
	get  func(Triple) Object
}

// patternVars lists a pattern's variable slots.
func patternVars(p Pattern) []varSlot {
	var vars []varSlot
	if p.Subject.IsVar() {
		vars = append(vars, varSlot{p.Subject.variable, func(t Triple) Object { return Ref(t.Subject) }})
	}
	if p.Predicate.IsVar() {
		vars = append(vars, varSlot{p.Predicate.variable, func(t Triple) Object { return Ref(t.Predicate) }})
	}
	if p.Object.IsVar() {
		vars = append(vars, varSlot{p.Object.variable, func(t Triple) Object { return t.Object }})
	}
	return vars
}

// joinPattern hash-joins the bindings accumulated so far with one
// pattern's candidate triples on their shared variables.
func joinPattern(results []Binding, bound map[string]bool, p Pattern, candidates []Triple) []Binding {
	vars := patternVars(p)

	var shared, fresh []int
	for i, v := range vars {
		if bound[v.name] {
			shared = append(shared, i)
		} else {
			fresh = append(fresh, i)
		}
	}

	// Index candidates by the values of the shared variables. A triple
	// where one variable appears twice must carry the same value in
	// both slots.
	hash := make(map[string][]Triple)
	for _, t := range candidates {
		if !consistentRepeats(vars, t) {
			continue
		}
		hash[sharedKey(vars, shared, t)] = append(hash[sharedKey(vars, shared, t)], t)
	}

	var out []Binding
	for _, b := range results {
		var key strings.Builder
		for _, i := range shared {
			key.WriteString(b[vars[i].name].Key())
			key.WriteByte('\x1d')
		}
		for _, t := range hash[key.String()] {
			next := make(Binding, len(b)+len(fresh))
			for k, v := range b {
				next[k] = v
			}
			for _, i := range fresh {
				next[vars[i].name] = vars[i].get(t)
			}
			out = append(out, next)
		}
	}
	for _, v := range vars {
		bound[v.name] = true
	}
	return out
}

func sharedKey(vars []varSlot, shared []int, t Triple) string {
	var key strings.Builder
	for _, i := range shared {
		key.WriteString(vars[i].get(t).Key())
		key.WriteByte('\x1d')
	}
	return key.String()
}

func consistentRepeats(vars []varSlot, t Triple) bool {
	seen := make(map[string]string, len(vars))
	for _, v := range vars {
		key := v.get(t).Key()
		if prev, ok := seen[v.name]; ok && prev != key {
			return false
		}
		seen[v.name] = key
	}
	return true
}

// dedupe collapses bindings that assign identical values, so the result
// is a set of binding tuples.
func dedupe(results []Binding) []Binding {
	seen := make(map[string]bool, len(results))
	out := make([]Binding, 0, len(results))
	for _, b := range results {
		names := make([]string, 0, len(b))
		for name := range b {
			names = append(names, name)
		}
		sort.Strings(names)
		var key strings.Builder
		for _, name := range names {
			key.WriteString(name)
			key.WriteByte('=')
			key.WriteString(b[name].Key())
			key.WriteByte('\x1d')
		}
		if !seen[key.String()] {
			seen[key.String()] = true
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return bindingKey(out[i]) < bindingKey(out[j]) })
	return out
}

func bindingKey(b Binding) string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)
	var key strings.Builder
	for _, name := range names {
		key.WriteString(b[name].Key())
		key.WriteByte('\x1d')
	}
	return key.String()
}
