package graph

import (
	"io"
	"os"

	"github.com/knakk/rdf"
)

// Load parses a Turtle file into an in-memory store. The whole file must
// parse: a missing or unreadable file yields a LoadError, invalid Turtle a
// ParseError, and no partial store is ever returned.
//
// Relative IRI references are resolved against an in-document @base only,
// not against the file's location; graphs are expected to use absolute
// IRIs (all shipped graphs do).
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	store, err := Decode(f)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return store, nil
}

// Decode parses Turtle from a reader into a store.
func Decode(r io.Reader) (*Store, error) {
	dec := rdf.NewTripleDecoder(r, rdf.Turtle)

	var triples []rdf.Triple
	for {
		t, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		triples = append(triples, t)
	}
	return NewStore(triples), nil
}
