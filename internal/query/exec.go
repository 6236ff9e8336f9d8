package query

import (
	"context"
	"sort"
	"strings"

	"github.com/knakk/rdf"

	"spendcast/internal/graph"
)

// Solution is one set of variable bindings, keyed by variable name.
// Variables left unbound by an OPTIONAL group are absent.
type Solution map[string]rdf.Term

// Rows is a lazy, single-pass stream of query solutions. Each solution is
// produced on demand by a worker goroutine; consuming the stream twice
// requires re-running the query. Close releases the worker early.
type Rows struct {
	ch     chan Solution
	cancel context.CancelFunc
	cur    Solution
}

// Run evaluates the query against the store. Result ordering is
// engine-defined; callers must not depend on it.
func (q *Query) Run(ctx context.Context, store *graph.Store) *Rows {
	ctx, cancel := context.WithCancel(ctx)
	r := &Rows{ch: make(chan Solution), cancel: cancel}

	go func() {
		defer close(r.ch)
		st := &runState{
			ctx:   ctx,
			store: store,
			out:   r.ch,
		}
		if q.Distinct {
			st.seen = make(map[string]bool)
		}
		q.solveRequired(st, 0, Solution{})
	}()

	return r
}

// Next advances to the next solution, returning false when the stream is
// exhausted.
func (r *Rows) Next() bool {
	s, ok := <-r.ch
	if !ok {
		return false
	}
	r.cur = s
	return true
}

// Solution returns the current solution. Valid only after Next returned
// true.
func (r *Rows) Solution() Solution {
	return r.cur
}

// Close stops the evaluation and drains the stream.
func (r *Rows) Close() {
	r.cancel()
	for range r.ch {
	}
}

// --- evaluation ---

type runState struct {
	ctx   context.Context
	store *graph.Store
	out   chan<- Solution
	seen  map[string]bool // non-nil for DISTINCT
}

// solveRequired backtracks over the required patterns; each full binding
// then flows through the optional groups. Returns false when evaluation
// should stop (context cancelled).
func (q *Query) solveRequired(st *runState, i int, binding Solution) bool {
	if i == len(q.required) {
		return q.solveOptionals(st, 0, binding)
	}
	return matchPattern(st, q.required[i], binding, func() bool {
		return q.solveRequired(st, i+1, binding)
	})
}

// solveOptionals applies each OPTIONAL group in order. A group that
// matches extends the binding (possibly multiple ways); a group that does
// not leaves the binding unchanged.
func (q *Query) solveOptionals(st *runState, i int, binding Solution) bool {
	if i == len(q.optionals) {
		return q.emit(st, binding)
	}

	found := false
	ok := solveGroup(st, q.optionals[i], 0, binding, func() bool {
		found = true
		return q.solveOptionals(st, i+1, binding)
	})
	if !ok {
		return false
	}
	if !found {
		return q.solveOptionals(st, i+1, binding)
	}
	return true
}

func solveGroup(st *runState, patterns []pattern, i int, binding Solution, k func() bool) bool {
	if i == len(patterns) {
		return k()
	}
	return matchPattern(st, patterns[i], binding, func() bool {
		return solveGroup(st, patterns, i+1, binding, k)
	})
}

// matchPattern finds every triple matching the pattern under the current
// binding, extends the binding for each and calls the continuation. The
// binding is restored before returning.
func matchPattern(st *runState, pat pattern, binding Solution, k func() bool) bool {
	select {
	case <-st.ctx.Done():
		return false
	default:
	}

	subj := resolve(pat.subj, binding)
	pred := resolve(pat.pred, binding)
	obj := resolve(pat.obj, binding)

	for _, t := range st.store.Match(subj, pred, obj) {
		bound := extend(pat, t, binding)
		if bound == nil {
			continue // repeated variable mismatch within the pattern
		}
		ok := k()
		for _, v := range bound {
			delete(binding, v)
		}
		if !ok {
			return false
		}
	}
	return true
}

// resolve returns the concrete term for a node, or nil when it is an
// unbound variable (a wildcard for the store).
func resolve(n node, binding Solution) rdf.Term {
	if !n.isVar() {
		return n.term
	}
	if t, ok := binding[n.varName]; ok {
		return t
	}
	return nil
}

// extend binds the pattern's unbound variables to the triple's terms.
// It returns the list of newly bound variable names, or nil when a
// variable occurring twice in the pattern would need two values.
func extend(pat pattern, t rdf.Triple, binding Solution) []string {
	var bound []string

	bind := func(n node, term rdf.Term) bool {
		if !n.isVar() {
			return true
		}
		if existing, ok := binding[n.varName]; ok {
			return graph.TermKey(existing) == graph.TermKey(term)
		}
		binding[n.varName] = term
		bound = append(bound, n.varName)
		return true
	}

	if bind(pat.subj, t.Subj) && bind(pat.pred, t.Pred) && bind(pat.obj, t.Obj) {
		return boundOrMarker(bound)
	}
	for _, v := range bound {
		delete(binding, v)
	}
	return nil
}

// boundOrMarker keeps a non-nil result for the "bound nothing new but
// consistent" case, which extend must distinguish from a mismatch.
func boundOrMarker(bound []string) []string {
	if bound == nil {
		return []string{}
	}
	return bound
}

// emit projects the binding onto the selected variables and sends it.
func (q *Query) emit(st *runState, binding Solution) bool {
	sol := make(Solution, len(q.Vars))
	for _, v := range q.Vars {
		if t, ok := binding[v]; ok {
			sol[v] = t
		}
	}

	if st.seen != nil {
		key := solutionKey(sol)
		if st.seen[key] {
			return true
		}
		st.seen[key] = true
	}

	select {
	case st.out <- sol:
		return true
	case <-st.ctx.Done():
		return false
	}
}

func solutionKey(sol Solution) string {
	parts := make([]string, 0, len(sol))
	for v, t := range sol {
		parts = append(parts, v+"="+graph.TermKey(t))
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}
