// Package graph holds an in-memory, read-only RDF triple store loaded once
// per run from a Turtle file. The store is an arena: load, query, discard.
package graph

import (
	"github.com/knakk/rdf"
)

// Store is an immutable set of triples with per-position indexes for
// pattern lookup. It is safe for concurrent readers once built.
type Store struct {
	triples []rdf.Triple
	bySubj  map[string][]int
	byPred  map[string][]int
	byObj   map[string][]int
}

// NewStore indexes the given triples.
func NewStore(triples []rdf.Triple) *Store {
	s := &Store{
		triples: triples,
		bySubj:  make(map[string][]int),
		byPred:  make(map[string][]int),
		byObj:   make(map[string][]int),
	}
	for i, t := range triples {
		s.bySubj[TermKey(t.Subj)] = append(s.bySubj[TermKey(t.Subj)], i)
		s.byPred[TermKey(t.Pred)] = append(s.byPred[TermKey(t.Pred)], i)
		s.byObj[TermKey(t.Obj)] = append(s.byObj[TermKey(t.Obj)], i)
	}
	return s
}

// Len returns the number of triples in the store.
func (s *Store) Len() int {
	return len(s.triples)
}

// Match returns all triples matching the pattern. A nil term is a
// wildcard. The scan starts from the most selective bound position.
func (s *Store) Match(subj, pred, obj rdf.Term) []rdf.Triple {
	candidates := s.candidates(subj, pred, obj)

	var out []rdf.Triple
	for _, i := range candidates {
		t := s.triples[i]
		if subj != nil && TermKey(t.Subj) != TermKey(subj) {
			continue
		}
		if pred != nil && TermKey(t.Pred) != TermKey(pred) {
			continue
		}
		if obj != nil && TermKey(t.Obj) != TermKey(obj) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (s *Store) candidates(subj, pred, obj rdf.Term) []int {
	best := -1
	var bestList []int

	consider := func(list []int, bound bool) {
		if !bound {
			return
		}
		if best == -1 || len(list) < best {
			best = len(list)
			bestList = list
		}
	}
	consider(s.bySubj[keyOrEmpty(subj)], subj != nil)
	consider(s.byPred[keyOrEmpty(pred)], pred != nil)
	consider(s.byObj[keyOrEmpty(obj)], obj != nil)

	if best == -1 {
		// fully unbound pattern scans everything
		all := make([]int, len(s.triples))
		for i := range all {
			all[i] = i
		}
		return all
	}
	return bestList
}

// TermKey returns a canonical string key for term comparison. N-Triples
// serialization distinguishes IRIs, blanks and literals including
// datatype and language tag.
func TermKey(t rdf.Term) string {
	return t.Serialize(rdf.NTriples)
}

func keyOrEmpty(t rdf.Term) string {
	if t == nil {
		return ""
	}
	return TermKey(t)
}
