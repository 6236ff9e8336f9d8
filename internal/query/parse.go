// Package query parses and evaluates the fixed, read-only graph-pattern
// queries the extraction reports run against the in-memory store.
//
// The supported language is the SELECT subset the report queries use:
// PREFIX declarations, basic graph patterns with ';' predicate-object
// lists, OPTIONAL groups, the 'a' shorthand and '#' comments. Everything
// else is rejected, which is acceptable because queries ship with the
// repository and are never constructed from user input.
package query

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/knakk/rdf"
)

const rdfTypeIRI = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

// Query is a parsed SELECT query ready for evaluation.
type Query struct {
	Vars     []string
	Distinct bool

	prefixes  map[string]string
	required  []pattern
	optionals [][]pattern
}

// pattern is one triple pattern; each position is either a variable or a
// concrete term.
type pattern struct {
	subj, pred, obj node
}

type node struct {
	varName string
	term    rdf.Term
}

func (n node) isVar() bool { return n.varName != "" }

// Parse compiles query text into an executable Query. Syntax the engine
// does not accept is reported as an ExecutionError.
func Parse(text string) (*Query, error) {
	toks, err := lex(text)
	if err != nil {
		return nil, &ExecutionError{Err: err}
	}
	p := &parser{toks: toks, q: &Query{prefixes: map[string]string{}}}
	if err := p.parse(); err != nil {
		return nil, &ExecutionError{Err: err}
	}
	return p.q, nil
}

// --- lexer ---

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIRI           // <...>
	tokPrefixed      // pfx:local (prefix may be empty)
	tokVar           // ?name
	tokLiteral       // "..." with optional @lang / ^^datatype
	tokNumber        // bare numeric
	tokWord          // bare keyword: SELECT, WHERE, PREFIX, OPTIONAL, DISTINCT, a
	tokDot
	tokSemicolon
	tokLBrace
	tokRBrace
	tokIllegal // character outside the supported subset
)

type token struct {
	kind tokenKind
	text string
	lang string
	// literal datatype, exactly one set when present
	dtIRI      string
	dtPrefixed string
	line       int
}

type lexer struct {
	src  []rune
	pos  int
	line int
}

func lex(text string) ([]token, error) {
	l := &lexer{src: []rune(text), line: 1}
	var toks []token
	for {
		t, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.kind == tokEOF {
			return toks, nil
		}
	}
}

func (l *lexer) next() (token, error) {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, line: l.line}, nil
	}

	c := l.src[l.pos]
	switch {
	case c == '.':
		l.pos++
		return token{kind: tokDot, line: l.line}, nil
	case c == ';':
		l.pos++
		return token{kind: tokSemicolon, line: l.line}, nil
	case c == '{':
		l.pos++
		return token{kind: tokLBrace, line: l.line}, nil
	case c == '}':
		l.pos++
		return token{kind: tokRBrace, line: l.line}, nil
	case c == '<':
		return l.scanIRI()
	case c == '?' || c == '$':
		return l.scanVar()
	case c == '"':
		return l.scanLiteral()
	case c == ':':
		return l.scanName()
	case c == '+' || c == '-' || unicode.IsDigit(c):
		return l.scanNumber()
	case unicode.IsLetter(c) || c == '_':
		return l.scanName()
	default:
		// Carry the character as a token so the parser can report the
		// surrounding construct (FILTER, expressions) instead of dying
		// here on its punctuation.
		l.pos++
		return token{kind: tokIllegal, text: string(c), line: l.line}, nil
	}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\n' {
			l.line++
			l.pos++
		} else if unicode.IsSpace(c) {
			l.pos++
		} else if c == '#' {
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		} else {
			return
		}
	}
}

func (l *lexer) scanIRI() (token, error) {
	line := l.line
	l.pos++ // consume '<'
	start := l.pos
	for l.pos < len(l.src) && l.src[l.pos] != '>' {
		if l.src[l.pos] == '\n' {
			return token{}, fmt.Errorf("line %d: unterminated IRI", line)
		}
		l.pos++
	}
	if l.pos >= len(l.src) {
		return token{}, fmt.Errorf("line %d: unterminated IRI", line)
	}
	iri := string(l.src[start:l.pos])
	l.pos++ // consume '>'
	return token{kind: tokIRI, text: iri, line: line}, nil
}

func (l *lexer) scanVar() (token, error) {
	line := l.line
	l.pos++ // consume '?' or '$'
	start := l.pos
	for l.pos < len(l.src) && isNameRune(l.src[l.pos]) {
		l.pos++
	}
	if l.pos == start {
		return token{}, fmt.Errorf("line %d: empty variable name", line)
	}
	return token{kind: tokVar, text: string(l.src[start:l.pos]), line: line}, nil
}

func (l *lexer) scanLiteral() (token, error) {
	line := l.line
	l.pos++ // consume opening quote
	var sb strings.Builder
	for {
		if l.pos >= len(l.src) {
			return token{}, fmt.Errorf("line %d: unterminated string literal", line)
		}
		c := l.src[l.pos]
		if c == '"' {
			l.pos++
			break
		}
		if c == '\\' {
			l.pos++
			if l.pos >= len(l.src) {
				return token{}, fmt.Errorf("line %d: unterminated escape", line)
			}
			switch l.src[l.pos] {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case '"':
				sb.WriteRune('"')
			case '\\':
				sb.WriteRune('\\')
			default:
				return token{}, fmt.Errorf("line %d: unsupported escape \\%s", line, string(l.src[l.pos]))
			}
			l.pos++
			continue
		}
		if c == '\n' {
			l.line++
		}
		sb.WriteRune(c)
		l.pos++
	}

	tok := token{kind: tokLiteral, text: sb.String(), line: line}

	// optional language tag or datatype
	if l.pos < len(l.src) && l.src[l.pos] == '@' {
		l.pos++
		start := l.pos
		for l.pos < len(l.src) && (unicode.IsLetter(l.src[l.pos]) || l.src[l.pos] == '-') {
			l.pos++
		}
		if l.pos == start {
			return token{}, fmt.Errorf("line %d: empty language tag", line)
		}
		tok.lang = string(l.src[start:l.pos])
	} else if l.pos+1 < len(l.src) && l.src[l.pos] == '^' && l.src[l.pos+1] == '^' {
		l.pos += 2
		dt, err := l.next()
		if err != nil {
			return token{}, err
		}
		switch dt.kind {
		case tokIRI:
			tok.dtIRI = dt.text
		case tokPrefixed:
			tok.dtPrefixed = dt.text
		default:
			return token{}, fmt.Errorf("line %d: expected datatype IRI after ^^", line)
		}
	}
	return tok, nil
}

func (l *lexer) scanNumber() (token, error) {
	line := l.line
	start := l.pos
	if l.src[l.pos] == '+' || l.src[l.pos] == '-' {
		l.pos++
	}
	digits := false
	for l.pos < len(l.src) && (unicode.IsDigit(l.src[l.pos]) || l.src[l.pos] == '.') {
		if unicode.IsDigit(l.src[l.pos]) {
			digits = true
		}
		l.pos++
	}
	if !digits {
		return token{}, fmt.Errorf("line %d: malformed number", line)
	}
	text := string(l.src[start:l.pos])
	// a trailing dot is the statement terminator, not a decimal point
	if strings.HasSuffix(text, ".") {
		text = text[:len(text)-1]
		l.pos--
	}
	return token{kind: tokNumber, text: text, line: line}, nil
}

// scanName scans either a bare keyword or a prefixed name. A ':' glues a
// prefix to its local part.
func (l *lexer) scanName() (token, error) {
	line := l.line
	start := l.pos
	for l.pos < len(l.src) && isNameRune(l.src[l.pos]) {
		l.pos++
	}
	word := string(l.src[start:l.pos])

	if l.pos < len(l.src) && l.src[l.pos] == ':' {
		l.pos++
		localStart := l.pos
		for l.pos < len(l.src) && isNameRune(l.src[l.pos]) {
			l.pos++
		}
		local := string(l.src[localStart:l.pos])
		return token{kind: tokPrefixed, text: word + ":" + local, line: line}, nil
	}
	return token{kind: tokWord, text: word, line: line}, nil
}

func isNameRune(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' || c == '-'
}

// --- parser ---

type parser struct {
	toks []token
	pos  int
	q    *Query
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) take() token {
	t := p.toks[p.pos]
	p.pos++
	return t
}

func (p *parser) isWord(t token, kw string) bool {
	return t.kind == tokWord && strings.EqualFold(t.text, kw)
}

func (p *parser) parse() error {
	for p.isWord(p.peek(), "PREFIX") {
		if err := p.parsePrefix(); err != nil {
			return err
		}
	}

	head := p.peek()
	switch {
	case p.isWord(head, "SELECT"):
		// supported
	case p.isWord(head, "CONSTRUCT"), p.isWord(head, "ASK"), p.isWord(head, "DESCRIBE"):
		return fmt.Errorf("line %d: %s queries are not supported, only SELECT", head.line, strings.ToUpper(head.text))
	default:
		return fmt.Errorf("line %d: expected SELECT", head.line)
	}
	p.take()

	if p.isWord(p.peek(), "DISTINCT") {
		p.take()
		p.q.Distinct = true
	}

	for p.peek().kind == tokVar {
		p.q.Vars = append(p.q.Vars, p.take().text)
	}
	if len(p.q.Vars) == 0 {
		return fmt.Errorf("line %d: SELECT needs at least one variable", p.peek().line)
	}

	if !p.isWord(p.peek(), "WHERE") {
		return fmt.Errorf("line %d: expected WHERE", p.peek().line)
	}
	p.take()

	if p.peek().kind != tokLBrace {
		return fmt.Errorf("line %d: expected '{' after WHERE", p.peek().line)
	}
	p.take()

	if err := p.parseGroup(); err != nil {
		return err
	}

	if p.peek().kind != tokEOF {
		return fmt.Errorf("line %d: unexpected trailing content", p.peek().line)
	}
	if len(p.q.required) == 0 && len(p.q.optionals) == 0 {
		return fmt.Errorf("empty WHERE clause")
	}
	return nil
}

func (p *parser) parsePrefix() error {
	p.take() // PREFIX
	name := p.take()
	if name.kind != tokPrefixed {
		return fmt.Errorf("line %d: expected prefix name in PREFIX declaration", name.line)
	}
	i := strings.Index(name.text, ":")
	if name.text[i+1:] != "" {
		return fmt.Errorf("line %d: malformed prefix name %q", name.line, name.text)
	}
	pfx := name.text[:i]
	iri := p.take()
	if iri.kind != tokIRI {
		return fmt.Errorf("line %d: expected IRI in PREFIX declaration", iri.line)
	}
	p.q.prefixes[pfx] = iri.text
	return nil
}

func (p *parser) parseGroup() error {
	for {
		t := p.peek()
		switch {
		case t.kind == tokRBrace:
			p.take()
			return nil
		case t.kind == tokDot:
			p.take()
		case p.isWord(t, "OPTIONAL"):
			p.take()
			if p.peek().kind != tokLBrace {
				return fmt.Errorf("line %d: expected '{' after OPTIONAL", p.peek().line)
			}
			p.take()
			pats, err := p.parsePatternBlock()
			if err != nil {
				return err
			}
			p.q.optionals = append(p.q.optionals, pats)
		case p.isWord(t, "FILTER") || p.isWord(t, "UNION") || p.isWord(t, "GRAPH"):
			return fmt.Errorf("line %d: %s is not supported", t.line, strings.ToUpper(t.text))
		case t.kind == tokEOF:
			return fmt.Errorf("line %d: unexpected end of query, missing '}'", t.line)
		default:
			pats, err := p.parseTriples()
			if err != nil {
				return err
			}
			p.q.required = append(p.q.required, pats...)
		}
	}
}

// parsePatternBlock parses the body of an OPTIONAL group up to '}'.
func (p *parser) parsePatternBlock() ([]pattern, error) {
	var out []pattern
	for {
		t := p.peek()
		switch {
		case t.kind == tokRBrace:
			p.take()
			if len(out) == 0 {
				return nil, fmt.Errorf("line %d: empty OPTIONAL group", t.line)
			}
			return out, nil
		case t.kind == tokDot:
			p.take()
		case t.kind == tokEOF:
			return nil, fmt.Errorf("line %d: unexpected end of query inside OPTIONAL", t.line)
		default:
			pats, err := p.parseTriples()
			if err != nil {
				return nil, err
			}
			out = append(out, pats...)
		}
	}
}

// parseTriples parses one same-subject block: subject, then one or more
// ';'-separated predicate-object pairs.
func (p *parser) parseTriples() ([]pattern, error) {
	subj, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	var out []pattern
	for {
		pred, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		obj, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		out = append(out, pattern{subj: subj, pred: pred, obj: obj})

		if p.peek().kind == tokSemicolon {
			p.take()
			// tolerate a dangling ';' before '.' or '}'
			if p.peek().kind == tokDot || p.peek().kind == tokRBrace {
				return out, nil
			}
			continue
		}
		return out, nil
	}
}

func (p *parser) parseTerm() (node, error) {
	t := p.take()
	switch t.kind {
	case tokVar:
		return node{varName: t.text}, nil
	case tokIRI:
		iri, err := rdf.NewIRI(t.text)
		if err != nil {
			return node{}, fmt.Errorf("line %d: invalid IRI <%s>: %v", t.line, t.text, err)
		}
		return node{term: iri}, nil
	case tokPrefixed:
		full, err := p.expand(t)
		if err != nil {
			return node{}, err
		}
		iri, err := rdf.NewIRI(full)
		if err != nil {
			return node{}, fmt.Errorf("line %d: invalid IRI <%s>: %v", t.line, full, err)
		}
		return node{term: iri}, nil
	case tokLiteral:
		lit, err := p.literal(t)
		if err != nil {
			return node{}, err
		}
		return node{term: lit}, nil
	case tokNumber:
		dt := "http://www.w3.org/2001/XMLSchema#integer"
		if strings.Contains(t.text, ".") {
			dt = "http://www.w3.org/2001/XMLSchema#decimal"
		}
		dtIRI, err := rdf.NewIRI(dt)
		if err != nil {
			return node{}, err
		}
		return node{term: rdf.NewTypedLiteral(t.text, dtIRI)}, nil
	case tokWord:
		if t.text == "a" {
			iri, err := rdf.NewIRI(rdfTypeIRI)
			if err != nil {
				return node{}, err
			}
			return node{term: iri}, nil
		}
		return node{}, fmt.Errorf("line %d: unexpected keyword %q in triple pattern", t.line, t.text)
	case tokIllegal:
		return node{}, fmt.Errorf("line %d: unexpected character %q", t.line, t.text)
	default:
		return node{}, fmt.Errorf("line %d: unexpected token in triple pattern", t.line)
	}
}

func (p *parser) expand(t token) (string, error) {
	i := strings.Index(t.text, ":")
	pfx, local := t.text[:i], t.text[i+1:]
	base, ok := p.q.prefixes[pfx]
	if !ok {
		return "", fmt.Errorf("line %d: unknown prefix %q", t.line, pfx)
	}
	return base + local, nil
}

func (p *parser) literal(t token) (rdf.Literal, error) {
	switch {
	case t.lang != "":
		lit, err := rdf.NewLangLiteral(t.text, t.lang)
		if err != nil {
			return rdf.Literal{}, fmt.Errorf("line %d: %v", t.line, err)
		}
		return lit, nil
	case t.dtIRI != "" || t.dtPrefixed != "":
		dt := t.dtIRI
		if dt == "" {
			full, err := p.expand(token{text: t.dtPrefixed, line: t.line})
			if err != nil {
				return rdf.Literal{}, err
			}
			dt = full
		}
		dtIRI, err := rdf.NewIRI(dt)
		if err != nil {
			return rdf.Literal{}, fmt.Errorf("line %d: invalid datatype IRI: %v", t.line, err)
		}
		return rdf.NewTypedLiteral(t.text, dtIRI), nil
	default:
		lit, err := rdf.NewLiteral(t.text)
		if err != nil {
			return rdf.Literal{}, fmt.Errorf("line %d: %v", t.line, err)
		}
		return lit, nil
	}
}
