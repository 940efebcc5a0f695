// Copyright 2014 Joel Scoble (github:mohae). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package preprocessor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gowikitext/preprocessor/parse"
)

// Heading is one entry of the heading index (§3): a byte range into the
// EXPANDED output plus the title and section ordinal it belongs to.
// Section is a decimal ordinal ("1", "2", ...) for headings discovered at
// the outermost invocation, and "T-n" for headings discovered inside a
// transcluded template.
type Heading struct {
	Begin   int
	End     int
	Title   string
	Section string
}

// autoNewlineRe is the MediaWiki bug #529 compatibility check (§4.4.1
// step 8): a template whose expansion opens a table, definition list,
// indent or list item needs a leading newline when its own "{{" did not
// sit at the start of a line. It is anchored at position 0 only, so a
// leading "\r" before one of these characters does not trigger it
// (Open Question (c)).
var autoNewlineRe = regexp.MustCompile(`^(?:\{\||[:;#*])`)

// transcludePrefixes are the subst/safesubst/msgnw/msg/raw colon prefixes
// named FIXME in the original implementation (Open Question (b)):
// resolved as if the prefix were absent, i.e. an ordinary template call.
var transcludePrefixes = []string{"subst:", "safesubst:", "msgnw:", "msg:", "raw:"}

func stripTranscludePrefix(name string) string {
	for _, p := range transcludePrefixes {
		if len(name) >= len(p) && strings.EqualFold(name[:len(p)], p) {
			return name[len(p):]
		}
	}
	return name
}

// expand is a Frame's primary entry point (§4.4): it walks the frame's
// own tree and returns the expanded text plus the heading index.
func (f *Frame) expand() (string, []Heading) {
	return f.expandNodes(f.tree.Children)
}

// expandNodes walks an arbitrary sibling sequence against this frame. It
// backs both the top-level expand() call and the argument/name-subtree
// expansions that happen while still inside the same frame (e.g.
// expanding a template's name or an argument's default).
func (f *Frame) expandNodes(nodes []parse.Node) (string, []Heading) {
	if _, looped := f.callStack[f.title]; looped {
		logger.Debugf("template loop detected: [[%s]]", f.title)
		return fmt.Sprintf(`<span class="error">Template loop detected: [[%s]]</span>`, f.title), nil
	}
	var out strings.Builder
	var headings []Heading
	f.walk(nodes, &out, &headings)
	return out.String(), headings
}

// walk is the pre/post-order traversal described in §4.4: text is
// appended literally, comments are skipped outright,
// inclusion gates skip their subtree depending on f.include, and
// everything else either recurses transparently or delegates to a
// sub-expansion routine.
func (f *Frame) walk(nodes []parse.Node, out *strings.Builder, headings *[]Heading) {
	for _, n := range nodes {
		switch v := n.(type) {
		case *parse.Text:
			out.WriteString(v.Value)
		case *parse.Comment:
			// Silent in expansion; exists only for reconstruction.
		case *parse.NoInclude:
			if !f.include {
				f.walk(v.Children, out, headings)
			}
		case *parse.IncludeOnly:
			if f.include {
				f.walk(v.Children, out, headings)
			}
		case *parse.OnlyInclude:
			f.walk(v.Children, out, headings)
		case *parse.Link:
			out.WriteString("[[")
			f.walk(v.Children, out, headings)
			out.WriteString("]]")
		case *parse.Heading:
			f.walkHeading(v, out, headings)
		case *parse.Template:
			f.walkTemplate(v, out, headings)
		case *parse.Argument:
			out.WriteString(f.expandArgument(v))
		default:
			// The builder never places any other node kind in a walked
			// sequence; anything else emits nothing.
		}
	}
}

// walkHeading records a heading entry (headings can only ever appear as
// direct children of the tree root per the data-model invariant, so every
// Heading node this walk visits qualifies), emits its "=" delimiters, and
// closes the entry's End offset once its children are emitted.
func (f *Frame) walkHeading(h *parse.Heading, out *strings.Builder, headings *[]Heading) {
	idx := len(*headings) + 1
	section := strconv.Itoa(idx)
	if f.include {
		section = "T-" + section
	}
	*headings = append(*headings, Heading{Begin: out.Len(), Title: f.title, Section: section})
	eq := strings.Repeat("=", h.Level)
	out.WriteString(eq)
	f.walk(h.Children, out, headings)
	out.WriteString(eq)
	(*headings)[len(*headings)-1].End = out.Len()
}

// walkTemplate expands a template invocation and splices its sub-headings
// into the outer index, shifted by the output offset the template's text
// begins at. Per §4.4.1 step 9, the auto-newline prefix added inside
// expandTemplate is NOT separately accounted for here: the child's
// offsets are shifted only by pos, reproducing the original
// implementation's behavior verbatim.
func (f *Frame) walkTemplate(t *parse.Template, out *strings.Builder, headings *[]Heading) {
	pos := out.Len()
	text, sub := f.expandTemplate(t)
	for i := range sub {
		sub[i].Begin += pos
		sub[i].End += pos
	}
	*headings = append(*headings, sub...)
	out.WriteString(text)
}

// expandTemplate implements §4.4.1.
func (f *Frame) expandTemplate(t *parse.Template) (string, []Heading) {
	name, _ := f.expandNodes(t.Name.Nodes)
	name = strings.TrimSpace(name)

	if val, ok := expandMagicWord(name, f.sample); ok {
		return val, nil
	}

	if colon := strings.IndexByte(name, ':'); colon >= 0 {
		funcName := name[:colon]
		// Leading-whitespace-only strip of the colon tail (Open Question (a)).
		arg0 := strings.TrimLeft(name[colon+1:], " \t\r\n")
		args := newParserFuncArgs(f, arg0, t.Args)
		if val, ok := callParserFunc(funcName, args); ok {
			return val, nil
		}
	}

	name = stripTranscludePrefix(name)

	ns, page := f.ctx.Settings.CanonicalPageName(name, "Template")
	body, found := f.ctx.Store.GetTemplate(ns, page)
	if !found {
		logger.Debugf("template not found: %s", f.ctx.Settings.ExpandPageName(ns, page))
		return "[[" + f.ctx.Settings.ExpandPageName(ns, page) + "]]", nil
	}

	namedArgs := map[string]*parse.List{}
	var positionalArgs []*parse.List
	for _, arg := range t.Args {
		if arg.Name != nil {
			argName, _ := f.expandNodes(arg.Name.Nodes)
			argName = strings.TrimSpace(argName)
			// QUIRK: last one wins.
			namedArgs[argName] = arg.Value
			if i, err := strconv.Atoi(argName); err == nil && i >= 1 && i <= len(positionalArgs) {
				positionalArgs[i-1] = nil
			}
		} else {
			positionalArgs = append(positionalArgs, arg.Value)
			key := strconv.Itoa(len(positionalArgs))
			delete(namedArgs, key)
		}
	}

	callStack := make(map[string]struct{}, len(f.callStack)+1)
	for k := range f.callStack {
		callStack[k] = struct{}{}
	}
	callStack[f.title] = struct{}{}

	canonicalTitle := f.ctx.Settings.ExpandPageName(ns, page)
	child := newFrame(f.ctx, canonicalTitle, body, true, f, namedArgs, positionalArgs, callStack)

	if max := f.ctx.Options.MaxInvocations; max > 0 {
		*f.invocations++
		if *f.invocations > max {
			logger.Criticalf("max invocations (%d) exceeded expanding [[%s]]", max, child.title)
			return fmt.Sprintf(`<span class="error">Template loop detected: [[%s]]</span>`, child.title), nil
		}
	}

	out, headings := child.expand()
	// See MediaWiki bug #529 (and #6255 for problems).
	if !t.BOL && autoNewlineRe.MatchString(out) {
		out = "\n" + out
	}
	return out, headings
}

// expandArgument implements §4.4.2.
func (f *Frame) expandArgument(a *parse.Argument) string {
	orig, _ := f.expandNodes(a.ArgName.Nodes)
	name := strings.TrimSpace(orig)
	if f.parent == nil || !f.hasArgument(name) {
		if len(a.Defaults) > 0 {
			text, _ := f.expandNodes(a.Defaults[0].Nodes)
			return text
		}
		return "{{{" + orig + "}}}"
	}
	return f.getArgument(name)
}
