// Copyright 2014 Joel Scoble (github:mohae). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package preprocessor

import (
	"strconv"
	"strings"
	"time"

	"github.com/gowikitext/preprocessor/parse"
)

// Frame is one activation record of template expansion (§4.3 / C3): a
// tree plus the argument bindings, include flag and recursion guard that
// give meaning to the {{{...}}} and {{...}} nodes inside it. Frames exist
// for the duration of a single expansion pass; nothing here is shared
// across separate Expand calls. The time sample and invocation counter
// are created with the root frame and shared only by its descendants.
type Frame struct {
	ctx     *Preprocessor
	parent  *Frame
	title   string
	tree    *parse.Body
	include bool

	namedArgs      map[string]*parse.List
	positionalArgs []*parse.List // entries may be nil once tombstoned

	callStack map[string]struct{}

	sample      *timeSample
	invocations *int
}

// newRootFrame builds the top-level, include=false Frame for a page.
func newRootFrame(ctx *Preprocessor, title, text string) *Frame {
	return newFrame(ctx, title, text, false, nil, nil, nil, nil)
}

// newFrame parses text into a tree and wraps it in a Frame. A parse
// failure panics the grammar's *parse.Error (§7's "Grammar failure:
// reported upward as a parse error with position; not recovered"); the
// public Expand entry point recovers it into a normal error.
func newFrame(ctx *Preprocessor, title, text string, include bool, parent *Frame,
	namedArgs map[string]*parse.List, positionalArgs []*parse.List, callStack map[string]struct{}) *Frame {

	tree, err := parse.Build(title, text)
	if err != nil {
		logger.Criticalf("frame %q: %s", title, err)
		panic(err)
	}
	if include {
		if trimmed := collectOnlyInclude(tree); trimmed != nil {
			logger.Debugf("frame %q: <onlyinclude> present, dropping the rest of the document", title)
			tree = trimmed
		}
	}
	f := &Frame{
		ctx:            ctx,
		parent:         parent,
		title:          title,
		tree:           tree,
		include:        include,
		namedArgs:      namedArgs,
		positionalArgs: positionalArgs,
		callStack:      callStack,
	}
	if parent != nil {
		f.sample = parent.sample
		f.invocations = parent.invocations
	} else {
		f.sample = newTimeSample(ctx.Options.Clock)
		n := 0
		f.invocations = &n
	}
	return f
}

// collectOnlyInclude implements the §4.3 QUIRK: when a frame is built for
// inclusion and the document contains one or more <onlyinclude> blocks
// anywhere, the tree is replaced by a new Body holding exactly those
// blocks in document order; the rest of the document is discarded. A nil
// return means no <onlyinclude> was found and the caller should keep the
// original tree whole.
func collectOnlyInclude(tree *parse.Body) *parse.Body {
	var found []*parse.OnlyInclude
	findOnlyIncludes(tree.Children, &found)
	if len(found) == 0 {
		return nil
	}
	out := &parse.Body{}
	for _, oi := range found {
		out.Children = append(out.Children, oi)
	}
	return out
}

func findOnlyIncludes(nodes []parse.Node, out *[]*parse.OnlyInclude) {
	for _, n := range nodes {
		switch v := n.(type) {
		case *parse.OnlyInclude:
			*out = append(*out, v)
			findOnlyIncludes(v.Children, out)
		case *parse.NoInclude:
			findOnlyIncludes(v.Children, out)
		case *parse.IncludeOnly:
			findOnlyIncludes(v.Children, out)
		case *parse.Link:
			findOnlyIncludes(v.Children, out)
		case *parse.Heading:
			findOnlyIncludes(v.Children, out)
		case *parse.Template:
			findOnlyIncludes(v.Name.Nodes, out)
			for _, a := range v.Args {
				if a.Name != nil {
					findOnlyIncludes(a.Name.Nodes, out)
				}
				findOnlyIncludes(a.Value.Nodes, out)
			}
		case *parse.Argument:
			findOnlyIncludes(v.ArgName.Nodes, out)
			for _, d := range v.Defaults {
				findOnlyIncludes(d.Nodes, out)
			}
		}
	}
}

// lookupArgument implements the §4.3 "(name) -> (subtree?, is_named)"
// rule: a named binding wins over a positional one, and a positional
// slot that's been tombstoned by a later same-numbered named argument is
// treated as absent.
func (f *Frame) lookupArgument(name string) (value *parse.List, named, ok bool) {
	if v, present := f.namedArgs[name]; present {
		return v, true, true
	}
	if i, err := strconv.Atoi(name); err == nil && i >= 1 && i <= len(f.positionalArgs) {
		if v := f.positionalArgs[i-1]; v != nil {
			return v, false, true
		}
	}
	return nil, false, false
}

func (f *Frame) hasArgument(name string) bool {
	_, _, ok := f.lookupArgument(name)
	return ok
}

// getArgument expands a bound argument's subtree against the PARENT
// frame, since the value text was supplied by the caller and must be
// evaluated in the caller's scope (§4.3).
func (f *Frame) getArgument(name string) string {
	v, named, ok := f.lookupArgument(name)
	if !ok {
		return ""
	}
	text, _ := f.parent.expandNodes(v.Nodes)
	if named {
		text = strings.TrimSpace(text)
	}
	return text
}

// timeSample is the "now" sampled once per top-level Expand call (§5:
// "Magic-word time values should be sampled once per top-level expansion
// to ensure self-consistency"), shared by every frame descended from the
// root so every {{CURRENTTIME}}-family reference in one render agrees.
type timeSample struct {
	utc   time.Time
	local time.Time
}

func newTimeSample(c Clock) *timeSample {
	return &timeSample{utc: c.Now(true), local: c.Now(false)}
}
