// Copyright 2014 Joel Scoble (github:mohae). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// This code is based on code originally written by The Go Authors.
// Their copyright notice immediately follows this one.

// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Tree builds the preprocessor tree from wikitext, the way parse.Tree in
// the teacher builds a Mustache parse tree from mustache text. Mustache's
// tags never nest, so the teacher can get away with a flat, channel-fed
// lexer plus a token-lookahead reducer; wikitext templates, arguments and
// links nest arbitrarily, so the rules here are genuine recursive descent
// over the scanner in lex.go instead.
package parse

import (
	"fmt"
	"regexp"
	"runtime"
	"strings"
)

// Error reports a grammar failure: a position in the source text the
// grammar could not reduce. It is the external-collaborator failure mode
// named in the error taxonomy ("Grammar failure (external): reported
// upward as a parse error with position; not recovered").
type Error struct {
	Name string
	Line int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("wikitext %s:%d: %s", e.Name, e.Line, e.Msg)
}

// Tree holds the state of one build pass: the scanner plus the
// heading-lookahead stack described in §4.2.
type Tree struct {
	Name string
	text string
	s    *scanner

	// noMatch is the stack of negative-lookahead patterns described in
	// §4.2: a grammar rule pushes a pattern on entry to a context that
	// must not cross some boundary (a heading close, a literal
	// newline), pops it on exit, and the plain-character path in
	// parseNodes checks the stack before consuming each rune.
	noMatch []*regexp.Regexp
}

// argBacktrack is panicked by parseArgument when "{{{" turns out not to be
// closeable as an argument (no matching "}}}" before the template/body
// that contains it ends); the ambiguity is resolved the way a PEG grammar
// resolves an ordered choice, by trying the more specific alternative
// first and backtracking to the next one on failure.
type argBacktrack struct{}

// Build parses text into a preprocessor Body. name is used only in error
// messages, the way the teacher's Tree.Name is.
func Build(name, text string) (body *Body, err error) {
	t := &Tree{Name: name, text: text, s: newScanner(name, text)}
	defer t.recover(&err)
	body = t.parseBody()
	return body, nil
}

func (t *Tree) recover(errp *error) {
	e := recover()
	if e == nil {
		return
	}
	if _, ok := e.(runtime.Error); ok {
		panic(e)
	}
	if perr, ok := e.(*Error); ok {
		*errp = perr
		return
	}
	panic(e)
}

func (t *Tree) errorf(format string, args ...interface{}) {
	logger.Criticalf(format, args...)
	panic(&Error{Name: t.Name, Line: t.s.lineNumber(), Msg: fmt.Sprintf(format, args...)})
}

// pushNoMatch installs a negative-lookahead pattern; re anchors at the
// current scan position (callers pass patterns with a leading "^").
func (t *Tree) pushNoMatch(re *regexp.Regexp) {
	t.noMatch = append(t.noMatch, re)
}

func (t *Tree) popNoMatch() {
	t.noMatch = t.noMatch[:len(t.noMatch)-1]
}

// checkNoMatch reports whether the remaining input matches any pattern
// currently on the lookahead stack; the grammar rule that pushed the
// pattern treats a match as "the current branch must fail here".
func (t *Tree) checkNoMatch() bool {
	if len(t.noMatch) == 0 {
		return false
	}
	rest := t.s.rest()
	for _, re := range t.noMatch {
		if re.MatchString(rest) {
			logger.Debugf("checkNoMatch: %s matched at line %d\n", re.String(), t.s.lineNumber())
			return true
		}
	}
	return false
}

// parseBody is the top-level rule: document := (heading / node)* EOF.
func (t *Tree) parseBody() *Body {
	body := newBody(t.s.pos)
	nodes, _ := t.parseNodes(true, nil, nil)
	body.Children = nodes
	return body
}

// parseNodes reads a sequence of sibling nodes until EOF, until one of the
// literal terminators is found at the current position, or (if closingTag
// is non-nil) until a closing tag matching that pattern is found. The
// matched terminator (or closing tag text) is consumed and returned; at
// EOF with no match, "" is returned.
func (t *Tree) parseNodes(headingsAllowed bool, terminators []string, closingTag *regexp.Regexp) (nodes []Node, matched string) {
	var text strings.Builder
	textPos := t.s.pos
	flush := func() {
		if text.Len() > 0 {
			nodes = append(nodes, newText(textPos, text.String()))
			text.Reset()
		}
	}
	for {
		if t.s.atEOF() {
			flush()
			return nodes, ""
		}
		if closingTag != nil {
			if loc := closingTag.FindStringIndex(t.s.rest()); loc != nil && loc[0] == 0 {
				flush()
				found := t.s.rest()[:loc[1]]
				t.s.advance(loc[1])
				return nodes, found
			}
		}
		for _, term := range terminators {
			if t.s.hasPrefix(term) {
				flush()
				t.s.advance(len(term))
				return nodes, term
			}
		}
		if headingsAllowed && t.s.atLineStart() {
			if h := t.tryParseHeading(); h != nil {
				flush()
				textPos = t.s.pos
				nodes = append(nodes, h)
				continue
			}
		}
		if t.s.hasPrefix("<!--") {
			flush()
			nodes = append(nodes, t.parseComment())
			textPos = t.s.pos
			continue
		}
		if tag := matchTagOpen(t.s.rest()); tag != nil {
			flush()
			nodes = append(nodes, t.parseInclusionTag(tag))
			textPos = t.s.pos
			continue
		}
		if t.s.hasPrefix("{{{") {
			flush()
			nodes = append(nodes, t.parseBraceGroup())
			textPos = t.s.pos
			continue
		}
		if t.s.hasPrefix("{{") {
			flush()
			nodes = append(nodes, t.parseTemplate())
			textPos = t.s.pos
			continue
		}
		if t.s.hasPrefix("[[") {
			flush()
			nodes = append(nodes, t.parseLink())
			textPos = t.s.pos
			continue
		}
		if t.checkNoMatch() {
			flush()
			return nodes, ""
		}
		text.WriteRune(t.s.next())
	}
}

// --- Comments ---------------------------------------------------------

func (t *Tree) parseComment() *Comment {
	pos := t.s.pos
	t.s.advance(len("<!--"))
	end := strings.Index(t.s.rest(), "-->")
	if end < 0 {
		// Forgiving: an unclosed comment swallows the rest of input,
		// matching how MediaWiki's own tokenizer treats a dangling
		// comment rather than raising a grammar failure over it.
		raw := "<!--" + t.s.rest()
		t.s.advance(len(t.s.rest()))
		return newComment(pos, raw)
	}
	raw := "<!--" + t.s.rest()[:end+len("-->")]
	t.s.advance(end + len("-->"))
	return newComment(pos, raw)
}

// --- Inclusion tags -----------------------------------------------------

var reOpenTag = regexp.MustCompile(`(?is)^<(noinclude|includeonly|onlyinclude)((?:[^>])*?)(/)?>`)

type tagOpen struct {
	name        string
	attr        string
	selfClosing bool
	length      int
}

func matchTagOpen(rest string) *tagOpen {
	m := reOpenTag.FindStringSubmatchIndex(rest)
	if m == nil {
		return nil
	}
	return &tagOpen{
		name:        strings.ToLower(rest[m[2]:m[3]]),
		attr:        rest[m[4]:m[5]],
		selfClosing: m[6] >= 0,
		length:      m[1],
	}
}

func closingTagPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?is)^</` + regexp.QuoteMeta(name) + `\s*>`)
}

func (t *Tree) parseInclusionTag(tag *tagOpen) Node {
	pos := t.s.pos
	t.s.advance(tag.length)
	gate := inclusionGate{Attr: tag.attr, SelfClosing: tag.selfClosing}
	var children []Node
	if !tag.selfClosing {
		nodes, closer := t.parseNodes(false, nil, closingTagPattern(tag.name))
		children = nodes
		gate.ClosingText = closer
		if closer == "" {
			t.errorf("unclosed <%s> tag", tag.name)
		}
	}
	switch tag.name {
	case "noinclude":
		n := newNoInclude(pos)
		n.inclusionGate = gate
		n.Children = children
		return n
	case "includeonly":
		n := newIncludeOnly(pos)
		n.inclusionGate = gate
		n.Children = children
		return n
	default:
		n := newOnlyInclude(pos)
		n.inclusionGate = gate
		n.Children = children
		return n
	}
}

// --- Links --------------------------------------------------------------

func (t *Tree) parseLink() *Link {
	pos := t.s.pos
	t.s.advance(len("[["))
	n := newLink(pos)
	children, closer := t.parseNodes(false, []string{"]]"}, nil)
	if closer == "" {
		t.errorf("unclosed [[ link")
	}
	n.Children = children
	return n
}

// --- Headings -------------------------------------------------------------

// reHeadingClose matches the first "=" run that ends a line: one or more
// "=" characters followed only by horizontal whitespace and a line break
// or end of input.
var reHeadingClose = regexp.MustCompile(`^(=+)[ \t]*(?:\r?\n|$)`)

func (t *Tree) tryParseHeading() *Heading {
	rest := t.s.rest()
	lead := 0
	for lead < len(rest) && rest[lead] == '=' {
		lead++
	}
	if lead == 0 {
		return nil
	}
	// The line must actually end in an "=" run for this to be a
	// heading at all; otherwise the leading "=" is ordinary text. Checked
	// against just this line so a heading can never span a newline.
	line := rest[lead:]
	if nl := strings.IndexByte(line, '\n'); nl >= 0 {
		line = line[:nl]
	}
	m := reLineClosingEquals.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	// The real level is the shorter of the two runs, capped at 6: a
	// run longer than the other side's just flows into content as
	// plain text on whichever side has the excess.
	trail := len(m[1])
	level := lead
	if trail < level {
		level = trail
	}
	if level > 6 {
		level = 6
	}
	pos := t.s.pos
	t.s.advance(level) // consume only the real opening delimiter; any
	// excess leading "=" beyond level flows into content as plain text.

	t.pushNoMatch(reHeadingClose)
	children, _ := t.parseNodes(false, nil, nil)
	t.popNoMatch()

	loc := reHeadingClose.FindStringSubmatchIndex(t.s.rest())
	if loc == nil {
		t.errorf("heading at line %d never closes", t.s.lineNumber())
	}
	runLen := loc[3] - loc[2]
	closeLevel := runLen
	if closeLevel > level {
		closeLevel = level
	}
	excess := runLen - closeLevel
	if excess > 0 {
		children = append(children, newText(t.s.pos, strings.Repeat("=", excess)))
		t.s.advance(excess)
	}
	t.s.advance(closeLevel)

	h := newHeading(pos, level)
	h.Children = children
	return h
}

// reLineClosingEquals captures the trailing "=" run of a line (with any
// leading "=" run already stripped), the mark of a heading close.
var reLineClosingEquals = regexp.MustCompile(`(=+)[ \t]*$`)

// --- Templates and arguments ---------------------------------------------

// parseBraceGroup resolves the "{{{" ambiguity: try it as an Argument
// first (the more specific alternative) and fall back to a Template whose
// name begins with a literal "{" on failure, the way an ordered-choice PEG
// rule would.
func (t *Tree) parseBraceGroup() Node {
	checkpoint := t.s.pos
	if n, ok := t.tryParseArgument(); ok {
		return n
	}
	t.s.pos = checkpoint
	return t.parseTemplate()
}

func (t *Tree) tryParseArgument() (n *Argument, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, isBacktrack := r.(argBacktrack); isBacktrack {
				ok = false
				return
			}
			panic(r)
		}
	}()
	return t.parseArgument(), true
}

func (t *Tree) parseArgument() *Argument {
	pos := t.s.pos
	t.s.advance(len("{{{"))
	arg := newArgument(pos)
	nameNodes, term := t.parseNodes(false, []string{"|", "}}}"}, nil)
	arg.ArgName.Nodes = nameNodes
	for term == "|" {
		defNodes, term2 := t.parseNodes(false, []string{"|", "}}}"}, nil)
		arg.Defaults = append(arg.Defaults, &List{NodeType: NodeList, Pos: pos, Nodes: defNodes})
		term = term2
	}
	if term != "}}}" {
		panic(argBacktrack{})
	}
	return arg
}

func (t *Tree) parseTemplate() *Template {
	pos := t.s.pos
	bol := t.s.atLineStart()
	t.s.advance(len("{{"))
	tmpl := newTemplate(pos)
	tmpl.BOL = bol
	nameNodes, term := t.parseNodes(false, []string{"|", "}}"}, nil)
	tmpl.Name.Nodes = nameNodes
	for term == "|" {
		arg, term2 := t.parseTemplateArg()
		tmpl.Args = append(tmpl.Args, arg)
		term = term2
	}
	if term != "}}" {
		t.errorf("unclosed template invocation")
	}
	return tmpl
}

// parseTemplateArg reads one "|"-separated argument: a name followed by
// "=" makes it named, otherwise the whole segment is the positional value.
func (t *Tree) parseTemplateArg() (*TemplateArg, string) {
	pos := t.s.pos
	arg := newTemplateArg(pos)
	firstNodes, term := t.parseNodes(false, []string{"=", "|", "}}"}, nil)
	if term == "=" {
		arg.Name = &List{NodeType: NodeList, Pos: pos, Nodes: firstNodes}
		valueNodes, term2 := t.parseNodes(false, []string{"|", "}}"}, nil)
		arg.Value.Nodes = valueNodes
		return arg, term2
	}
	arg.Unnamed = true
	arg.Value.Nodes = firstNodes
	return arg, term
}
