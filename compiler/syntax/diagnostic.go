package syntax

import "fmt"

// Severity of a diagnostic.
type Severity int

const (
	SeverityHint Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityHint:
		return "hint"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// Stable diagnostic codes produced by the lexer and parser.
const (
	CodeUnterminatedString   = "SYNTAX_UNTERMINATED_STRING"
	CodeUnterminatedTemplate = "SYNTAX_UNTERMINATED_TEMPLATE"
	CodeUnterminatedMember   = "SYNTAX_UNTERMINATED_MEMBER"
	CodeUnterminatedImport   = "SYNTAX_UNTERMINATED_IMPORT"
	CodeUnexpectedToken      = "SYNTAX_UNEXPECTED_TOKEN"
	CodeMalformedAnnotation  = "SYNTAX_MALFORMED_ANNOTATION"
	CodeMalformedService     = "SYNTAX_MALFORMED_SERVICE"
	CodeEmptyMappingField    = "SYNTAX_EMPTY_MAPPING_FIELD"
)

// Diagnostic is a problem found while reading a document.
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string
	Pos      Position
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s: %s [%s]", d.Pos.Line, d.Pos.Column, d.Severity, d.Message, d.Code)
}
