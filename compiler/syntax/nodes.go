package syntax

import (
	"errors"
	"fmt"
	"strings"
)

// NodeKind classifies a non-terminal node.
type NodeKind int

const (
	KindModulePart NodeKind = iota
	KindImportDecl
	KindServiceDecl
	KindOpaqueMember
	KindMetadata
	KindAnnotation
	KindQualifiedName
	KindMappingConstructor
	KindSpecificField
)

var nodeKindNames = [...]string{
	KindModulePart:         "ModulePart",
	KindImportDecl:         "ImportDecl",
	KindServiceDecl:        "ServiceDecl",
	KindOpaqueMember:       "OpaqueMember",
	KindMetadata:           "Metadata",
	KindAnnotation:         "Annotation",
	KindQualifiedName:      "QualifiedName",
	KindMappingConstructor: "MappingConstructor",
	KindSpecificField:      "SpecificField",
}

func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return fmt.Sprintf("NodeKind(%d)", int(k))
}

// ErrSeparatorCount is returned when a separated list has the wrong number of
// separators for its items.
var ErrSeparatorCount = errors.New("syntax: separator count must be one less than item count")

// Node is a non-terminal of the tree. All implementations live in this package.
type Node interface {
	Kind() NodeKind
	appendTokens(dst []*Token) []*Token
}

// Member is a top-level module member.
type Member interface {
	Node
	member()
}

// Tokens returns the tokens of n in source order.
func Tokens(n Node) []*Token {
	if n == nil {
		return nil
	}
	return n.appendTokens(nil)
}

// Text prints n including all minutiae.
func Text(n Node) string {
	var b strings.Builder
	for _, t := range Tokens(n) {
		t.writeTo(&b)
	}
	return b.String()
}

// PlainText prints tokens without minutiae, separating two tokens by a single
// space wherever the source had trivia between them.
func PlainText(toks []*Token) string {
	var b strings.Builder
	for i, t := range toks {
		if i > 0 && (len(toks[i-1].trailing) > 0 || len(t.leading) > 0) {
			b.WriteByte(' ')
		}
		b.WriteString(t.text)
	}
	return b.String()
}

func appendAll(dst []*Token, toks []*Token) []*Token {
	return append(dst, toks...)
}

func appendTok(dst []*Token, t *Token) []*Token {
	if t == nil {
		return dst
	}
	return append(dst, t)
}

// ModulePart is the root of a document: imports, members and the EOF token.
type ModulePart struct {
	imports []*ImportDecl
	members []Member
	eof     *Token
}

// NewModulePart builds a root node.
func NewModulePart(imports []*ImportDecl, members []Member, eof *Token) *ModulePart {
	if eof == nil {
		eof = NewToken(TokenEOF, "", nil, nil)
	}
	return &ModulePart{imports: imports, members: members, eof: eof}
}

func (m *ModulePart) Kind() NodeKind         { return KindModulePart }
func (m *ModulePart) Imports() []*ImportDecl { return m.imports }
func (m *ModulePart) Members() []Member      { return m.members }
func (m *ModulePart) EOF() *Token            { return m.eof }

// WithMembers returns a new root with the same imports and EOF token and the
// given members.
func (m *ModulePart) WithMembers(members []Member) *ModulePart {
	return &ModulePart{imports: m.imports, members: members, eof: m.eof}
}

func (m *ModulePart) appendTokens(dst []*Token) []*Token {
	for _, imp := range m.imports {
		dst = imp.appendTokens(dst)
	}
	for _, mem := range m.members {
		dst = mem.appendTokens(dst)
	}
	return appendTok(dst, m.eof)
}

// ImportDecl is an import statement kept as its raw tokens.
type ImportDecl struct {
	tokens []*Token
}

func (d *ImportDecl) Kind() NodeKind   { return KindImportDecl }
func (d *ImportDecl) Tokens() []*Token { return d.tokens }

// Path is the imported module name, e.g. "ballerina/websub".
func (d *ImportDecl) Path() string {
	var toks []*Token
	for _, t := range d.tokens[1:] {
		if t.kind == TokenSemicolon || (t.kind == TokenIdentifier && t.text == "as") {
			break
		}
		toks = append(toks, t)
	}
	return strings.ReplaceAll(PlainText(toks), " ", "")
}

func (d *ImportDecl) appendTokens(dst []*Token) []*Token { return appendAll(dst, d.tokens) }

// Metadata groups the documentation lines and annotations preceding a member.
type Metadata struct {
	docLines    []*Token
	annotations []*Annotation
}

// NewMetadata builds a metadata node.
func NewMetadata(docLines []*Token, annotations []*Annotation) *Metadata {
	return &Metadata{docLines: docLines, annotations: annotations}
}

func (m *Metadata) Kind() NodeKind             { return KindMetadata }
func (m *Metadata) DocLines() []*Token         { return m.docLines }
func (m *Metadata) Annotations() []*Annotation { return m.annotations }
func (m *Metadata) IsEmpty() bool              { return m == nil || (len(m.docLines) == 0 && len(m.annotations) == 0) }

// WithAnnotations returns a copy of m with the annotation list replaced.
func (m *Metadata) WithAnnotations(annotations []*Annotation) *Metadata {
	return &Metadata{docLines: m.docLines, annotations: annotations}
}

// Annotation returns the first annotation with the given qualified name.
func (m *Metadata) Annotation(prefix, name string) (*Annotation, bool) {
	if m == nil {
		return nil, false
	}
	for _, a := range m.annotations {
		if a.ref.Prefix() == prefix && a.ref.Name() == name {
			return a, true
		}
	}
	return nil, false
}

func (m *Metadata) firstToken() *Token {
	if len(m.docLines) > 0 {
		return m.docLines[0]
	}
	if len(m.annotations) > 0 {
		return m.annotations[0].at
	}
	return nil
}

func (m *Metadata) appendTokens(dst []*Token) []*Token {
	if m == nil {
		return dst
	}
	dst = appendAll(dst, m.docLines)
	for _, a := range m.annotations {
		dst = a.appendTokens(dst)
	}
	return dst
}

// Annotation is `@prefix:Name` optionally followed by a mapping constructor.
type Annotation struct {
	at    *Token
	ref   *QualifiedName
	value *MappingConstructor
}

// NewAnnotation builds an annotation node; value may be nil.
func NewAnnotation(at *Token, ref *QualifiedName, value *MappingConstructor) *Annotation {
	return &Annotation{at: at, ref: ref, value: value}
}

func (a *Annotation) Kind() NodeKind             { return KindAnnotation }
func (a *Annotation) AtToken() *Token            { return a.at }
func (a *Annotation) Reference() *QualifiedName  { return a.ref }
func (a *Annotation) Value() *MappingConstructor { return a.value }

// WithLeading returns a copy of a whose `@` token has leading minutiae l.
func (a *Annotation) WithLeading(l MinutiaeList) *Annotation {
	return &Annotation{at: a.at.WithLeading(l), ref: a.ref, value: a.value}
}

// WithTrailing returns a copy of a whose last token has trailing minutiae l.
func (a *Annotation) WithTrailing(l MinutiaeList) *Annotation {
	c := *a
	if a.value != nil {
		v := *a.value
		v.close = v.close.WithTrailing(l)
		c.value = &v
		return &c
	}
	ref := *a.ref
	ref.name = ref.name.WithTrailing(l)
	c.ref = &ref
	return &c
}

func (a *Annotation) appendTokens(dst []*Token) []*Token {
	dst = appendTok(dst, a.at)
	dst = a.ref.appendTokens(dst)
	if a.value != nil {
		dst = a.value.appendTokens(dst)
	}
	return dst
}

// QualifiedName is `prefix:name` or a bare `name`.
type QualifiedName struct {
	prefix *Token
	colon  *Token
	name   *Token
}

// NewQualifiedName builds a reference; prefix and colon are nil for a bare name.
func NewQualifiedName(prefix, colon, name *Token) *QualifiedName {
	return &QualifiedName{prefix: prefix, colon: colon, name: name}
}

func (q *QualifiedName) Kind() NodeKind { return KindQualifiedName }

func (q *QualifiedName) Prefix() string {
	if q.prefix == nil {
		return ""
	}
	return q.prefix.text
}

func (q *QualifiedName) Name() string { return q.name.text }

func (q *QualifiedName) String() string {
	if q.prefix == nil {
		return q.name.text
	}
	return q.prefix.text + ":" + q.name.text
}

func (q *QualifiedName) appendTokens(dst []*Token) []*Token {
	dst = appendTok(dst, q.prefix)
	dst = appendTok(dst, q.colon)
	return appendTok(dst, q.name)
}

// MappingConstructor is `{ field, field, ... }`.
type MappingConstructor struct {
	open       *Token
	fields     []*SpecificField
	separators []*Token
	close      *Token
}

// NewMappingConstructor builds a mapping literal. separators must hold exactly
// one comma between each pair of fields.
func NewMappingConstructor(open *Token, fields []*SpecificField, separators []*Token, close *Token) (*MappingConstructor, error) {
	want := len(fields) - 1
	if want < 0 {
		want = 0
	}
	if len(separators) != want {
		return nil, fmt.Errorf("%w: %d fields, %d separators", ErrSeparatorCount, len(fields), len(separators))
	}
	return &MappingConstructor{open: open, fields: fields, separators: separators, close: close}, nil
}

func (m *MappingConstructor) Kind() NodeKind           { return KindMappingConstructor }
func (m *MappingConstructor) Fields() []*SpecificField { return m.fields }
func (m *MappingConstructor) Separators() []*Token     { return m.separators }
func (m *MappingConstructor) OpenBrace() *Token        { return m.open }
func (m *MappingConstructor) CloseBrace() *Token       { return m.close }

// Field returns the first field with the given name.
func (m *MappingConstructor) Field(name string) (*SpecificField, bool) {
	for _, f := range m.fields {
		if f.Name() == name {
			return f, true
		}
	}
	return nil, false
}

func (m *MappingConstructor) appendTokens(dst []*Token) []*Token {
	dst = appendTok(dst, m.open)
	for i, f := range m.fields {
		dst = f.appendTokens(dst)
		if i < len(m.separators) {
			dst = appendTok(dst, m.separators[i])
		}
	}
	return appendTok(dst, m.close)
}

// SpecificField is `name: value`. Fields that are not of that shape (spread,
// computed keys, shorthand) keep a nil name and colon and hold all their
// tokens as the value.
type SpecificField struct {
	name  *Token
	colon *Token
	value []*Token
}

// NewSpecificField builds a mapping field.
func NewSpecificField(name, colon *Token, value ...*Token) *SpecificField {
	return &SpecificField{name: name, colon: colon, value: value}
}

func (f *SpecificField) Kind() NodeKind        { return KindSpecificField }
func (f *SpecificField) ValueTokens() []*Token { return f.value }

// Name is the field key, unquoted when the key is a string literal.
func (f *SpecificField) Name() string {
	if f.name == nil {
		return ""
	}
	if f.name.kind == TokenStringLiteral {
		if s, err := UnquoteString(f.name.text); err == nil {
			return s
		}
	}
	return f.name.text
}

// StringValue decodes the value when it is a single string literal.
func (f *SpecificField) StringValue() (string, bool) {
	if len(f.value) != 1 || f.value[0].kind != TokenStringLiteral {
		return "", false
	}
	s, err := UnquoteString(f.value[0].text)
	if err != nil {
		return "", false
	}
	return s, true
}

func (f *SpecificField) appendTokens(dst []*Token) []*Token {
	dst = appendTok(dst, f.name)
	dst = appendTok(dst, f.colon)
	return appendAll(dst, f.value)
}
