// Package synth builds brand-new syntax fragments from plain values: mapping
// literals and annotations that did not exist in the original source.
//
// Every constructor is pure. The produced nodes carry the minutiae needed to
// print as well-formed, re-parseable source.
package synth

import (
	"errors"
	"fmt"
	"sort"

	"github.com/strogmv/websubc/compiler/syntax"
)

// Names of the annotation injected onto websub services.
const (
	MetaInfoPrefix = "websub"
	MetaInfoName   = "MetaInfo"
	ServicePathKey = "servicePath"
)

// ErrMalformedName is returned when a field name, prefix or annotation name
// is not a plain identifier.
var ErrMalformedName = errors.New("synth: malformed identifier")

// Field is one key/string-value pair of a mapping literal.
type Field struct {
	Name  string
	Value string
}

// Style controls the layout of synthesized fragments. Base is the indentation
// of the line the fragment starts on; fields are indented by Base+Indent.
type Style struct {
	Newline string
	Indent  string
	Base    string
}

// DefaultStyle uses LF line breaks and four-space indentation.
var DefaultStyle = Style{Newline: "\n", Indent: "    "}

func (s Style) normalize() Style {
	if s.Newline == "" {
		s.Newline = DefaultStyle.Newline
	}
	return s
}

// FieldsFromMap converts m into fields ordered by key.
func FieldsFromMap(m map[string]string) []Field {
	fields := make([]Field, 0, len(m))
	for k, v := range m {
		fields = append(fields, Field{Name: k, Value: v})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	return fields
}

// MappingConstructor builds
//
//	{
//	    name: "value",
//	    other: "value"
//	}
//
// Commas appear only between fields. Zero fields yield an empty mapping.
func MappingConstructor(fields []Field, style Style) (*syntax.MappingConstructor, error) {
	style = style.normalize()
	nl := syntax.NewMinutiaeList(syntax.EndOfLine(style.Newline))
	var indent, base syntax.MinutiaeList
	if style.Base+style.Indent != "" {
		indent = syntax.NewMinutiaeList(syntax.Whitespace(style.Base + style.Indent))
	}
	if style.Base != "" {
		base = syntax.NewMinutiaeList(syntax.Whitespace(style.Base))
	}

	open := syntax.NewToken(syntax.TokenOpenBrace, "{", nil, nl)
	nodes := make([]*syntax.SpecificField, 0, len(fields))
	var seps []*syntax.Token
	for i, f := range fields {
		if !syntax.IsIdentifier(f.Name) {
			return nil, fmt.Errorf("%w: field name %q", ErrMalformedName, f.Name)
		}
		var trailing syntax.MinutiaeList
		if i == len(fields)-1 {
			trailing = nl
		}
		nodes = append(nodes, syntax.NewSpecificField(
			syntax.NewToken(syntax.TokenIdentifier, f.Name, indent, nil),
			syntax.NewToken(syntax.TokenColon, ":", nil, syntax.NewMinutiaeList(syntax.Whitespace(" "))),
			syntax.NewStringLiteral(f.Value, nil, trailing),
		))
		if i < len(fields)-1 {
			seps = append(seps, syntax.NewToken(syntax.TokenComma, ",", nil, nl))
		}
	}
	closeTok := syntax.NewToken(syntax.TokenCloseBrace, "}", base, nil)
	return syntax.NewMappingConstructor(open, nodes, seps, closeTok)
}

// Annotation builds `@prefix:name value`. An empty prefix yields `@name`;
// value may be nil.
func Annotation(prefix, name string, value *syntax.MappingConstructor) (*syntax.Annotation, error) {
	if !syntax.IsIdentifier(name) {
		return nil, fmt.Errorf("%w: annotation name %q", ErrMalformedName, name)
	}
	if prefix != "" && !syntax.IsIdentifier(prefix) {
		return nil, fmt.Errorf("%w: annotation prefix %q", ErrMalformedName, prefix)
	}
	var nameTrailing syntax.MinutiaeList
	if value != nil {
		nameTrailing = syntax.NewMinutiaeList(syntax.Whitespace(" "))
	}
	nameTok := syntax.NewToken(syntax.TokenIdentifier, name, nil, nameTrailing)
	var ref *syntax.QualifiedName
	if prefix == "" {
		ref = syntax.NewQualifiedName(nil, nil, nameTok)
	} else {
		ref = syntax.NewQualifiedName(
			syntax.NewIdentifier(prefix),
			syntax.NewToken(syntax.TokenColon, ":", nil, nil),
			nameTok,
		)
	}
	return syntax.NewAnnotation(syntax.NewToken(syntax.TokenAt, "@", nil, nil), ref, value), nil
}

// AnnotationSpec names an annotation and the field carrying the service path.
type AnnotationSpec struct {
	Prefix string
	Name   string
	Field  string
}

// DefaultAnnotation is `@websub:MetaInfo { servicePath: ... }`.
var DefaultAnnotation = AnnotationSpec{Prefix: MetaInfoPrefix, Name: MetaInfoName, Field: ServicePathKey}

// Build synthesizes the annotation for servicePath.
func (s AnnotationSpec) Build(servicePath string, style Style) (*syntax.Annotation, error) {
	m, err := MappingConstructor([]Field{{Name: s.Field, Value: servicePath}}, style)
	if err != nil {
		return nil, err
	}
	return Annotation(s.Prefix, s.Name, m)
}

// MetaInfo synthesizes `@websub:MetaInfo { servicePath: "<servicePath>" }`.
func MetaInfo(servicePath string, style Style) (*syntax.Annotation, error) {
	return DefaultAnnotation.Build(servicePath, style)
}
