// Copyright 2014 Joel Scoble (github:mohae). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// This code is based on code originally written by The Go Authors.
// Their copyright notice immediately follows this one.

// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Preprocessor tree nodes.

package parse

import (
	"bytes"
	"fmt"
)

// A Node is an element in the preprocessor tree. The interface is trivial.
// The interface contains an unexported method so that only types local to
// this package can satisfy it.
type Node interface {
	Type() NodeType
	String() string
	// Copy does a deep copy of the Node and all its components.
	Copy() Node
	Position() Pos // byte position of start of node in the original input
	// Make sure only functions in this package can create Nodes.
	unexported()
}

// NodeType identifies the type of a preprocessor tree node.
type NodeType int

// Pos represents a byte position in the original input text from which
// this tree was built.
type Pos int

func (p Pos) Position() Pos {
	return p
}

// unexported keeps Node implementations local to the package. All
// implementations embed Pos, so this takes care of it.
func (Pos) unexported() {
}

// Type returns itself and provides an easy default implementation for
// embedding in a Node.
func (t NodeType) Type() NodeType {
	return t
}

const (
	NodeBody NodeType = iota
	NodeText
	NodeComment
	NodeLink
	NodeHeading
	NodeNoInclude
	NodeIncludeOnly
	NodeOnlyInclude
	NodeTemplate
	NodeTemplateArg
	NodeArgument
	// NodeList tags a bare, reusable ordered child sequence: the "name",
	// "value", "argname" and "default" slots of Template/TemplateArg/
	// Argument are all just one of these, distinguished by which struct
	// field holds them rather than by their own tag.
	NodeList
)

// NodeStrings gives a short description for each NodeType, used in logging.
var NodeStrings = map[NodeType]string{
	NodeBody:        "Body",
	NodeText:        "Text",
	NodeComment:     "Comment",
	NodeLink:        "Link",
	NodeHeading:     "Heading",
	NodeNoInclude:   "NoInclude",
	NodeIncludeOnly: "IncludeOnly",
	NodeOnlyInclude: "OnlyInclude",
	NodeTemplate:    "Template",
	NodeTemplateArg: "TemplateArg",
	NodeArgument:    "Argument",
	NodeList:        "NodeList",
}

// Body is the root container for a parsed document.
type Body struct {
	NodeType
	Pos
	Children []Node
}

func newBody(pos Pos) *Body {
	return &Body{NodeType: NodeBody, Pos: pos}
}

func (b *Body) append(n Node) {
	b.Children = append(b.Children, n)
}

func (b *Body) String() string {
	buf := new(bytes.Buffer)
	for _, c := range b.Children {
		fmt.Fprint(buf, c)
	}
	return buf.String()
}

func (b *Body) Copy() Node {
	n := newBody(b.Pos)
	for _, c := range b.Children {
		n.append(c.Copy())
	}
	return n
}

// Text holds a merged run of literal characters.
type Text struct {
	NodeType
	Pos
	Value string
}

func newText(pos Pos, value string) *Text {
	return &Text{NodeType: NodeText, Pos: pos, Value: value}
}

func (t *Text) String() string { return t.Value }

func (t *Text) Copy() Node { return newText(t.Pos, t.Value) }

// Comment holds a raw `<!-- ... -->` span, captured verbatim. It is
// invisible during expansion and exists only so reconstruction is exact.
type Comment struct {
	NodeType
	Pos
	Raw string
}

func newComment(pos Pos, raw string) *Comment {
	return &Comment{NodeType: NodeComment, Pos: pos, Raw: raw}
}

func (c *Comment) String() string { return c.Raw }

func (c *Comment) Copy() Node {
	return &Comment{NodeType: NodeComment, Pos: c.Pos, Raw: c.Raw}
}

// Link is a passthrough for `[[...]]`. Its children are transparent: the
// expander emits the brackets and expands the children between them.
type Link struct {
	NodeType
	Pos
	Children []Node
}

func newLink(pos Pos) *Link {
	return &Link{NodeType: NodeLink, Pos: pos}
}

func (l *Link) append(n Node) { l.Children = append(l.Children, n) }

func (l *Link) String() string {
	buf := new(bytes.Buffer)
	fmt.Fprint(buf, "[[")
	for _, c := range l.Children {
		fmt.Fprint(buf, c)
	}
	fmt.Fprint(buf, "]]")
	return buf.String()
}

func (l *Link) Copy() Node {
	n := newLink(l.Pos)
	for _, c := range l.Children {
		n.append(c.Copy())
	}
	return n
}

// Heading is a `level` run of `=` delimiting a section at the root of a
// Body. The delimiters themselves are not stored as children.
type Heading struct {
	NodeType
	Pos
	Level    int
	Children []Node
}

func newHeading(pos Pos, level int) *Heading {
	return &Heading{NodeType: NodeHeading, Pos: pos, Level: level}
}

func (h *Heading) append(n Node) { h.Children = append(h.Children, n) }

func (h *Heading) String() string {
	eq := equals(h.Level)
	buf := new(bytes.Buffer)
	fmt.Fprint(buf, eq)
	for _, c := range h.Children {
		fmt.Fprint(buf, c)
	}
	fmt.Fprint(buf, eq)
	return buf.String()
}

func (h *Heading) Copy() Node {
	n := newHeading(h.Pos, h.Level)
	for _, c := range h.Children {
		n.append(c.Copy())
	}
	return n
}

func equals(level int) string {
	b := make([]byte, level)
	for i := range b {
		b[i] = '='
	}
	return string(b)
}

// inclusionGate carries the fields shared by NoInclude, IncludeOnly and
// OnlyInclude: the opening tag's attribute junk and how the tag closed.
type inclusionGate struct {
	Attr        string // attribute junk between the tag name and '>' or '/>'
	SelfClosing bool
	ClosingText string // literal closing tag text; unused when SelfClosing
}

// NoInclude gates content that is silent when include=true.
type NoInclude struct {
	NodeType
	Pos
	inclusionGate
	Children []Node
}

func newNoInclude(pos Pos) *NoInclude {
	return &NoInclude{NodeType: NodeNoInclude, Pos: pos}
}

func (n *NoInclude) append(c Node) { n.Children = append(n.Children, c) }

func (n *NoInclude) String() string { return tagString("noinclude", n.inclusionGate, n.Children) }

func (n *NoInclude) Copy() Node {
	c := newNoInclude(n.Pos)
	c.inclusionGate = n.inclusionGate
	for _, ch := range n.Children {
		c.append(ch.Copy())
	}
	return c
}

// IncludeOnly gates content that is silent when include=false.
type IncludeOnly struct {
	NodeType
	Pos
	inclusionGate
	Children []Node
}

func newIncludeOnly(pos Pos) *IncludeOnly {
	return &IncludeOnly{NodeType: NodeIncludeOnly, Pos: pos}
}

func (n *IncludeOnly) append(c Node) { n.Children = append(n.Children, c) }

func (n *IncludeOnly) String() string { return tagString("includeonly", n.inclusionGate, n.Children) }

func (n *IncludeOnly) Copy() Node {
	c := newIncludeOnly(n.Pos)
	c.inclusionGate = n.inclusionGate
	for _, ch := range n.Children {
		c.append(ch.Copy())
	}
	return c
}

// OnlyInclude marks the subset of a document that survives when the frame
// that owns this tree is itself being included. It is always transparent
// during expansion; it never gates its own children.
type OnlyInclude struct {
	NodeType
	Pos
	inclusionGate
	Children []Node
}

func newOnlyInclude(pos Pos) *OnlyInclude {
	return &OnlyInclude{NodeType: NodeOnlyInclude, Pos: pos}
}

func (n *OnlyInclude) append(c Node) { n.Children = append(n.Children, c) }

func (n *OnlyInclude) String() string { return tagString("onlyinclude", n.inclusionGate, n.Children) }

func (n *OnlyInclude) Copy() Node {
	c := newOnlyInclude(n.Pos)
	c.inclusionGate = n.inclusionGate
	for _, ch := range n.Children {
		c.append(ch.Copy())
	}
	return c
}

func tagString(name string, g inclusionGate, children []Node) string {
	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, "<%s%s", name, g.Attr)
	if g.SelfClosing {
		fmt.Fprint(buf, "/>")
		return buf.String()
	}
	fmt.Fprint(buf, ">")
	for _, c := range children {
		fmt.Fprint(buf, c)
	}
	fmt.Fprint(buf, g.ClosingText)
	return buf.String()
}

// List is a bare ordered sequence of child nodes, tagged NodeList. It backs
// the "name", "value", "argname" and "default" slots below; which role it
// plays is determined entirely by the field it is stored in.
type List struct {
	NodeType
	Pos
	Nodes []Node
}

func newNodeList(pos Pos) *List {
	return &List{NodeType: NodeList, Pos: pos}
}

func (l *List) append(n Node) { l.Nodes = append(l.Nodes, n) }

func (l *List) String() string {
	buf := new(bytes.Buffer)
	for _, n := range l.Nodes {
		fmt.Fprint(buf, n)
	}
	return buf.String()
}

func (l *List) Copy() Node {
	n := newNodeList(l.Pos)
	for _, c := range l.Nodes {
		n.append(c.Copy())
	}
	return n
}

// Template is a `{{...}}` invocation.
type Template struct {
	NodeType
	Pos
	Name *List
	Args []*TemplateArg
	BOL  bool // whether the opening "{{" sat at beginning-of-line
}

func newTemplate(pos Pos) *Template {
	return &Template{NodeType: NodeTemplate, Pos: pos, Name: newNodeList(pos)}
}

func (t *Template) String() string {
	buf := new(bytes.Buffer)
	fmt.Fprint(buf, "{{", t.Name)
	for _, a := range t.Args {
		fmt.Fprint(buf, a)
	}
	fmt.Fprint(buf, "}}")
	return buf.String()
}

func (t *Template) Copy() Node {
	n := &Template{NodeType: NodeTemplate, Pos: t.Pos, BOL: t.BOL}
	n.Name = t.Name.Copy().(*List)
	for _, a := range t.Args {
		n.Args = append(n.Args, a.Copy().(*TemplateArg))
	}
	return n
}

// TemplateArg is one positional or named argument of a Template.
// Positional arguments have a nil Name; Unnamed mirrors that on Value's
// side for reconstruction (the "|" separator belongs to the value, not a
// missing name).
type TemplateArg struct {
	NodeType
	Pos
	Name    *List // nil for positional arguments
	Value   *List
	Unnamed bool
}

func newTemplateArg(pos Pos) *TemplateArg {
	return &TemplateArg{NodeType: NodeTemplateArg, Pos: pos, Value: newNodeList(pos)}
}

func (a *TemplateArg) String() string {
	if a.Name == nil {
		return "|" + a.Value.String()
	}
	return "|" + a.Name.String() + "=" + a.Value.String()
}

func (a *TemplateArg) Copy() Node {
	n := &TemplateArg{NodeType: NodeTemplateArg, Pos: a.Pos, Unnamed: a.Unnamed}
	if a.Name != nil {
		n.Name = a.Name.Copy().(*List)
	}
	n.Value = a.Value.Copy().(*List)
	return n
}

// Argument is a `{{{...}}}` template-parameter reference. Only the first
// Default, if any, is semantically used; the rest exist purely so
// reconstruction can reproduce every "|default" the source carried.
type Argument struct {
	NodeType
	Pos
	ArgName  *List
	Defaults []*List
}

func newArgument(pos Pos) *Argument {
	return &Argument{NodeType: NodeArgument, Pos: pos, ArgName: newNodeList(pos)}
}

func (a *Argument) String() string {
	buf := new(bytes.Buffer)
	fmt.Fprint(buf, "{{{", a.ArgName)
	for _, d := range a.Defaults {
		fmt.Fprint(buf, "|", d)
	}
	fmt.Fprint(buf, "}}}")
	return buf.String()
}

func (a *Argument) Copy() Node {
	n := &Argument{NodeType: NodeArgument, Pos: a.Pos}
	n.ArgName = a.ArgName.Copy().(*List)
	for _, d := range a.Defaults {
		n.Defaults = append(n.Defaults, d.Copy().(*List))
	}
	return n
}

// IsEmptyBody reports whether a Body (or nil) carries nothing but
// whitespace text, mirroring the teacher's IsEmptyTree helper.
func IsEmptyBody(b *Body) bool {
	if b == nil {
		return true
	}
	for _, c := range b.Children {
		if t, ok := c.(*Text); ok {
			if len(bytesTrimSpace(t.Value)) == 0 {
				continue
			}
		}
		return false
	}
	return true
}

func bytesTrimSpace(s string) string {
	return string(bytes.TrimSpace([]byte(s)))
}
