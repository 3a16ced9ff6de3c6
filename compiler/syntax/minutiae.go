package syntax

import "strings"

// MinutiaeKind classifies trivia attached to tokens.
type MinutiaeKind int

const (
	MinutiaeWhitespace MinutiaeKind = iota
	MinutiaeEndOfLine
	MinutiaeComment
)

// Minutiae is a piece of trivia: whitespace, a line break or a comment.
type Minutiae struct {
	Kind MinutiaeKind
	Text string
}

func Whitespace(text string) Minutiae { return Minutiae{Kind: MinutiaeWhitespace, Text: text} }
func EndOfLine(text string) Minutiae  { return Minutiae{Kind: MinutiaeEndOfLine, Text: text} }
func Comment(text string) Minutiae    { return Minutiae{Kind: MinutiaeComment, Text: text} }

// MinutiaeList is an ordered run of trivia. Lists are never modified in place;
// Add returns a new list.
type MinutiaeList []Minutiae

// NewMinutiaeList builds a list from the given items.
func NewMinutiaeList(items ...Minutiae) MinutiaeList {
	if len(items) == 0 {
		return nil
	}
	out := make(MinutiaeList, len(items))
	copy(out, items)
	return out
}

// Add returns a copy of l with items appended.
func (l MinutiaeList) Add(items ...Minutiae) MinutiaeList {
	out := make(MinutiaeList, 0, len(l)+len(items))
	out = append(out, l...)
	return append(out, items...)
}

// HasNewline reports whether l contains an end-of-line minutiae.
func (l MinutiaeList) HasNewline() bool {
	for _, m := range l {
		if m.Kind == MinutiaeEndOfLine {
			return true
		}
	}
	return false
}

// SplitAfterLastNewline splits l into everything up to and including the last
// end-of-line, and the remainder (usually indentation). If l has no line
// break, head is empty and tail is l.
func (l MinutiaeList) SplitAfterLastNewline() (head, tail MinutiaeList) {
	for i := len(l) - 1; i >= 0; i-- {
		if l[i].Kind == MinutiaeEndOfLine {
			return NewMinutiaeList(l[:i+1]...), NewMinutiaeList(l[i+1:]...)
		}
	}
	return nil, NewMinutiaeList(l...)
}

func (l MinutiaeList) String() string {
	var b strings.Builder
	l.writeTo(&b)
	return b.String()
}

func (l MinutiaeList) writeTo(b *strings.Builder) {
	for _, m := range l {
		b.WriteString(m.Text)
	}
}
