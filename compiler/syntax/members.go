package syntax

// ServiceDecl is a top-level service declaration:
//
//	metadata? qualifier* 'service' header 'on' expressions '{' body '}' ';'?
//
// The header (type descriptor and absolute resource path), the listener
// expressions and the body are kept as raw tokens.
type ServiceDecl struct {
	metadata    *Metadata
	qualifiers  []*Token
	serviceKw   *Token
	header      []*Token
	onKw        *Token
	expressions []*Token
	openBrace   *Token
	body        []*Token
	closeBrace  *Token
	semicolon   *Token
}

func (d *ServiceDecl) member()                {}
func (d *ServiceDecl) Kind() NodeKind         { return KindServiceDecl }
func (d *ServiceDecl) Metadata() *Metadata    { return d.metadata }
func (d *ServiceDecl) Qualifiers() []*Token   { return d.qualifiers }
func (d *ServiceDecl) ServiceKeyword() *Token { return d.serviceKw }
func (d *ServiceDecl) Header() []*Token       { return d.header }
func (d *ServiceDecl) OnKeyword() *Token      { return d.onKw }
func (d *ServiceDecl) Expressions() []*Token  { return d.expressions }
func (d *ServiceDecl) OpenBrace() *Token      { return d.openBrace }
func (d *ServiceDecl) Body() []*Token         { return d.body }
func (d *ServiceDecl) CloseBrace() *Token     { return d.closeBrace }
func (d *ServiceDecl) Semicolon() *Token      { return d.semicolon }

// HasMetadata reports whether the declaration carries a non-empty metadata block.
func (d *ServiceDecl) HasMetadata() bool { return !d.metadata.IsEmpty() }

// IsMalformed reports whether the declaration lacks a listener expression.
func (d *ServiceDecl) IsMalformed() bool { return len(d.expressions) == 0 }

// WithMetadata returns a copy of d carrying md. All other children are shared.
func (d *ServiceDecl) WithMetadata(md *Metadata) *ServiceDecl {
	c := *d
	c.metadata = md
	return &c
}

// FirstToken is the first token of the declaration proper, after metadata.
func (d *ServiceDecl) FirstToken() *Token {
	if len(d.qualifiers) > 0 {
		return d.qualifiers[0]
	}
	return d.serviceKw
}

// WithFirstTokenLeading returns a copy of d whose first token after metadata
// has its leading minutiae replaced.
func (d *ServiceDecl) WithFirstTokenLeading(l MinutiaeList) *ServiceDecl {
	c := *d
	if len(c.qualifiers) > 0 {
		qs := make([]*Token, len(c.qualifiers))
		copy(qs, c.qualifiers)
		qs[0] = qs[0].WithLeading(l)
		c.qualifiers = qs
		return &c
	}
	c.serviceKw = c.serviceKw.WithLeading(l)
	return &c
}

// TypeDescriptor is the plain text of the header before the resource path,
// e.g. "websub:SubscriberService".
func (d *ServiceDecl) TypeDescriptor() string {
	return PlainText(d.header[:d.pathStart()])
}

// AbsolutePath returns the absolute resource path of the service, if the
// header declares one.
func (d *ServiceDecl) AbsolutePath() (string, bool) {
	i := d.pathStart()
	if i == len(d.header) {
		return "", false
	}
	if d.header[i].kind == TokenStringLiteral {
		s, err := UnquoteString(d.header[i].text)
		if err != nil {
			return d.header[i].text, true
		}
		return s, true
	}
	var path string
	for _, t := range d.header[i:] {
		path += t.text
	}
	return path, true
}

// Listener is the plain text of the listener expressions.
func (d *ServiceDecl) Listener() string { return PlainText(d.expressions) }

func (d *ServiceDecl) pathStart() int {
	for i, t := range d.header {
		if t.kind == TokenSlash || t.kind == TokenStringLiteral {
			return i
		}
	}
	return len(d.header)
}

func (d *ServiceDecl) appendTokens(dst []*Token) []*Token {
	dst = d.metadata.appendTokens(dst)
	dst = appendAll(dst, d.qualifiers)
	dst = appendTok(dst, d.serviceKw)
	dst = appendAll(dst, d.header)
	dst = appendTok(dst, d.onKw)
	dst = appendAll(dst, d.expressions)
	dst = appendTok(dst, d.openBrace)
	dst = appendAll(dst, d.body)
	dst = appendTok(dst, d.closeBrace)
	return appendTok(dst, d.semicolon)
}

// OpaqueMember is any top-level member other than a service declaration. Its
// tokens are carried through rewriting untouched.
type OpaqueMember struct {
	metadata *Metadata
	tokens   []*Token
}

func (m *OpaqueMember) member()             {}
func (m *OpaqueMember) Kind() NodeKind      { return KindOpaqueMember }
func (m *OpaqueMember) Metadata() *Metadata { return m.metadata }
func (m *OpaqueMember) Tokens() []*Token    { return m.tokens }

// Keyword is the first word of the member that is not a qualifier, e.g.
// "function", "listener" or "type".
func (m *OpaqueMember) Keyword() string {
	for _, t := range m.tokens {
		if t.kind == TokenIdentifier && qualifiers[t.text] {
			continue
		}
		return t.text
	}
	return ""
}

func (m *OpaqueMember) appendTokens(dst []*Token) []*Token {
	dst = m.metadata.appendTokens(dst)
	return appendAll(dst, m.tokens)
}

var qualifiers = map[string]bool{
	"public":        true,
	"private":       true,
	"isolated":      true,
	"distinct":      true,
	"client":        true,
	"readonly":      true,
	"final":         true,
	"configurable":  true,
	"transactional": true,
}
