package syntax

import "fmt"

// Tree is a parsed document. Trees are immutable; ModifyWith derives a new
// tree from a replacement root.
type Tree struct {
	name  string
	root  *ModulePart
	diags []Diagnostic
}

// Parse reads src into a tree. Parsing never fails: unrecognised input is
// kept as opaque members and reported through Diagnostics, so the printed
// tree always equals src.
func Parse(name, src string) *Tree {
	toks, diags := Lex(src)
	p := &parser{toks: toks, diags: diags}
	root := p.parseModulePart()
	return &Tree{name: name, root: root, diags: p.diags}
}

// NewTree wraps an existing root.
func NewTree(name string, root *ModulePart) *Tree {
	return &Tree{name: name, root: root}
}

func (t *Tree) Name() string              { return t.name }
func (t *Tree) Root() *ModulePart         { return t.root }
func (t *Tree) Diagnostics() []Diagnostic { return t.diags }

// HasErrors reports whether reading the document produced an error diagnostic.
func (t *Tree) HasErrors() bool {
	for _, d := range t.diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ModifyWith returns a tree for the same document rooted at root.
func (t *Tree) ModifyWith(root *ModulePart) *Tree {
	return &Tree{name: t.name, root: root}
}

// String prints the complete source text of the tree.
func (t *Tree) String() string { return Text(t.root) }

// Newline returns the line terminator used by the document, defaulting to "\n".
func (t *Tree) Newline() string {
	for _, tok := range Tokens(t.root) {
		for _, l := range []MinutiaeList{tok.leading, tok.trailing} {
			for _, m := range l {
				if m.Kind == MinutiaeEndOfLine {
					return m.Text
				}
			}
		}
	}
	return "\n"
}

type parser struct {
	toks  []*Token
	pos   int
	diags []Diagnostic
}

func (p *parser) cur() *Token { return p.toks[p.pos] }

func (p *parser) peek(n int) *Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) advance() *Token {
	t := p.toks[p.pos]
	if t.kind != TokenEOF {
		p.pos++
	}
	return t
}

func (p *parser) errorf(at *Token, code, format string, args ...any) {
	p.diags = append(p.diags, Diagnostic{
		Severity: SeverityError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Pos:      at.pos,
	})
}

func (p *parser) parseModulePart() *ModulePart {
	var imports []*ImportDecl
	for p.cur().kind == TokenImportKeyword {
		imports = append(imports, p.parseImport())
	}
	var members []Member
	for p.cur().kind != TokenEOF {
		members = append(members, p.parseMember())
	}
	return &ModulePart{imports: imports, members: members, eof: p.cur()}
}

func (p *parser) parseImport() *ImportDecl {
	start := p.cur()
	var toks []*Token
	for {
		t := p.cur()
		if t.kind == TokenEOF {
			p.errorf(start, CodeUnterminatedImport, "import declaration is missing ';'")
			break
		}
		toks = append(toks, p.advance())
		if t.kind == TokenSemicolon {
			break
		}
	}
	return &ImportDecl{tokens: toks}
}

func (p *parser) parseMember() Member {
	md := p.parseMetadata()
	if p.atServiceDecl() {
		mark := p.pos
		if d, ok := p.parseServiceDecl(md); ok {
			return d
		}
		p.pos = mark
	}
	if p.cur().kind == TokenAt {
		p.errorf(p.cur(), CodeMalformedAnnotation, "malformed annotation")
	}
	m := &OpaqueMember{metadata: md, tokens: p.collectMember()}
	if len(m.tokens) == 0 {
		p.errorf(p.cur(), CodeUnterminatedMember, "metadata is not attached to a declaration")
	}
	return m
}

// parseMetadata reads documentation lines and annotations. A malformed
// annotation ends the block; its tokens become part of the member.
func (p *parser) parseMetadata() *Metadata {
	var docs []*Token
	for p.cur().kind == TokenDocLine {
		docs = append(docs, p.advance())
	}
	var annots []*Annotation
	for p.cur().kind == TokenAt {
		mark := p.pos
		a, ok := p.parseAnnotation()
		if !ok {
			p.pos = mark
			break
		}
		annots = append(annots, a)
	}
	if len(docs) == 0 && len(annots) == 0 {
		return nil
	}
	return &Metadata{docLines: docs, annotations: annots}
}

func (p *parser) parseAnnotation() (*Annotation, bool) {
	at := p.advance()
	if p.cur().kind != TokenIdentifier {
		return nil, false
	}
	ref := &QualifiedName{name: p.advance()}
	if p.cur().kind == TokenColon && p.peek(1).kind == TokenIdentifier {
		ref.prefix = ref.name
		ref.colon = p.advance()
		ref.name = p.advance()
	}
	a := &Annotation{at: at, ref: ref}
	if p.cur().kind == TokenOpenBrace {
		m, ok := p.parseMapping()
		if !ok {
			return nil, false
		}
		a.value = m
	}
	return a, true
}

func (p *parser) parseMapping() (*MappingConstructor, bool) {
	m := &MappingConstructor{open: p.advance()}
	if p.cur().kind == TokenCloseBrace {
		m.close = p.advance()
		return m, true
	}
	for {
		run, ok := p.collectField()
		if !ok {
			return nil, false
		}
		if len(run) == 0 {
			p.errorf(p.cur(), CodeEmptyMappingField, "empty mapping field")
		}
		m.fields = append(m.fields, newFieldFromRun(run))
		switch p.cur().kind {
		case TokenComma:
			m.separators = append(m.separators, p.advance())
		case TokenCloseBrace:
			m.close = p.advance()
			return m, true
		default:
			return nil, false
		}
	}
}

// collectField gathers tokens up to a ',' or '}' at the mapping's own depth.
func (p *parser) collectField() ([]*Token, bool) {
	var run []*Token
	depth := 0
	for {
		t := p.cur()
		switch {
		case t.kind == TokenEOF:
			return nil, false
		case depth == 0 && (t.kind == TokenComma || t.kind == TokenCloseBrace):
			return run, true
		case t.kind.opens():
			depth++
		case t.kind.closes():
			depth--
		}
		run = append(run, p.advance())
	}
}

func newFieldFromRun(run []*Token) *SpecificField {
	if len(run) >= 2 && (run[0].kind == TokenIdentifier || run[0].kind == TokenStringLiteral) && run[1].kind == TokenColon {
		return &SpecificField{name: run[0], colon: run[1], value: run[2:]}
	}
	return &SpecificField{value: run}
}

// atServiceDecl reports whether a qualifier run followed by 'service'
// starts here. `service class` and `service object` are type definitions,
// not service declarations.
func (p *parser) atServiceDecl() bool {
	for i := p.pos; i < len(p.toks); i++ {
		t := p.toks[i]
		if t.kind == TokenServiceKeyword {
			if i+1 < len(p.toks) {
				next := p.toks[i+1]
				return next.kind != TokenIdentifier || !serviceTypeWords[next.text]
			}
			return true
		}
		if t.kind != TokenIdentifier || !qualifiers[t.text] {
			return false
		}
	}
	return false
}

var serviceTypeWords = map[string]bool{"class": true, "object": true}

func (p *parser) parseServiceDecl(md *Metadata) (*ServiceDecl, bool) {
	d := &ServiceDecl{metadata: md}
	for p.cur().kind == TokenIdentifier {
		d.qualifiers = append(d.qualifiers, p.advance())
	}
	d.serviceKw = p.advance()

	// Type descriptor and absolute path, up to 'on'.
	depth := 0
	for {
		t := p.cur()
		if depth == 0 && t.kind == TokenOnKeyword {
			break
		}
		if t.kind == TokenEOF || (depth == 0 && (t.kind == TokenOpenBrace || t.kind == TokenSemicolon)) {
			p.errorf(d.serviceKw, CodeMalformedService, "service declaration is missing 'on'")
			return nil, false
		}
		if t.kind.opens() {
			depth++
		} else if t.kind.closes() {
			depth--
		}
		d.header = append(d.header, p.advance())
	}
	d.onKw = p.advance()

	// Listener expressions, up to the body.
	depth = 0
	for {
		t := p.cur()
		if depth == 0 && t.kind == TokenOpenBrace {
			break
		}
		if t.kind == TokenEOF || (depth == 0 && t.kind == TokenSemicolon) {
			p.errorf(d.serviceKw, CodeMalformedService, "service declaration is missing a body")
			return nil, false
		}
		if t.kind.opens() {
			depth++
		} else if t.kind.closes() {
			depth--
		}
		d.expressions = append(d.expressions, p.advance())
	}
	if len(d.expressions) == 0 {
		p.errorf(d.onKw, CodeMalformedService, "service declaration has no listener")
	}

	d.openBrace = p.advance()
	depth = 1
	for {
		t := p.cur()
		if t.kind == TokenEOF {
			p.errorf(d.openBrace, CodeMalformedService, "service body is not closed")
			return nil, false
		}
		switch t.kind {
		case TokenOpenBrace, TokenOpenBracePipe:
			depth++
		case TokenCloseBrace:
			depth--
		case TokenClosePipeBrace:
			if depth > 1 {
				depth--
			}
		}
		if depth == 0 {
			break
		}
		d.body = append(d.body, p.advance())
	}
	d.closeBrace = p.advance()
	if p.cur().kind == TokenSemicolon {
		d.semicolon = p.advance()
	}
	return d, true
}

// collectMember gathers the tokens of a non-service member: up to a ';' at
// depth zero, or up to a '}' that returns to depth zero plus an optional ';'.
// A '}' followed by another block (a function returning a record type) does
// not end the member.
func (p *parser) collectMember() []*Token {
	var toks []*Token
	depth := 0
	for {
		t := p.cur()
		if t.kind == TokenEOF {
			if len(toks) > 0 {
				p.errorf(toks[0], CodeUnterminatedMember, "declaration is not terminated")
			}
			return toks
		}
		toks = append(toks, p.advance())
		switch {
		case t.kind == TokenSemicolon && depth == 0:
			return toks
		case t.kind.opens():
			depth++
		case t.kind.closes():
			if depth == 0 {
				p.errorf(t, CodeUnexpectedToken, "unexpected %s", t.kind)
				return toks
			}
			depth--
			if depth == 0 && t.kind == TokenCloseBrace {
				if next := p.cur().kind; next == TokenOpenBrace || next == TokenOpenBracePipe {
					continue
				}
				if p.cur().kind == TokenSemicolon {
					toks = append(toks, p.advance())
				}
				return toks
			}
		}
	}
}
