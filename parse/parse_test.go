// Copyright 2014 Joel Scoble (github:mohae). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// This code is based on code originally written by The Go Authors.
// Their copyright notice immediately follows this one.

// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parse

import (
	"flag"
	"testing"
)

var debug = flag.Bool("debug", false, "show the errors produced by the main tests")

type parseTest struct {
	name  string
	input string
	ok    bool
}

const (
	noError  = true
	hasError = false
)

var parseTests = []parseTest{
	{"empty", "", noError},
	{"text", "some text", noError},
	{"comment", "a<!-- hidden -->b", noError},
	{"unclosed comment swallows to EOF", "a<!-- never closes", noError},
	{"template", "{{Foo}}", noError},
	{"template with positional arg", "{{Foo|bar}}", noError},
	{"template with named arg", "{{Foo|x=bar}}", noError},
	{"template with mixed args", "{{Foo|bar|x=baz|qux}}", noError},
	{"nested template", "{{Foo|{{Bar}}}}", noError},
	{"argument", "{{{x}}}", noError},
	{"argument with default", "{{{x|default}}}", noError},
	{"argument with multiple defaults", "{{{x|a|b}}}", noError},
	{"brace then template", "{{{X}}", noError},
	{"link", "[[Category:Foo]]", noError},
	{"link with nested template", "[[Category:{{Foo}}]]", noError},
	{"noinclude", "a<noinclude>hidden</noinclude>b", noError},
	{"includeonly", "a<includeonly>shown-only-on-transclusion</includeonly>b", noError},
	{"onlyinclude", "a<onlyinclude>kept</onlyinclude>b", noError},
	{"self-closing noinclude", "a<noinclude/>b", noError},
	{"heading level 2", "==Title==\n", noError},
	{"heading with excess equals", "===Title====\n", noError},
	{"heading cannot cross a newline", "==Title\nStill text==\n", noError},
	{"heading level capped at 6", "=======Title=======\n", noError},
	// Errors.
	{"unclosed template", "hello {{Foo", hasError},
	{"unclosed link", "hello [[Foo", hasError},
	{"unclosed inclusion tag", "hello <noinclude>Foo", hasError},
}

func TestBuildReconstructsInput(t *testing.T) {
	for _, test := range parseTests {
		body, err := Build(test.name, test.input)
		switch {
		case err == nil && !test.ok:
			t.Errorf("%s: expected an error, got none", test.name)
			continue
		case err != nil && test.ok:
			t.Errorf("%s: unexpected error: %v", test.name, err)
			continue
		case err != nil && !test.ok:
			if *debug {
				t.Logf("%s: %v", test.name, err)
			}
			continue
		}
		if got := body.String(); got != test.input {
			t.Errorf("%s: reconstructed %q, want %q", test.name, got, test.input)
		}
	}
}

func TestBuildHeadingNeverCrossesNewline(t *testing.T) {
	body, err := Build("heading boundary", "==Title\nStill text==\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range body.Children {
		if _, ok := c.(*Heading); ok {
			t.Fatalf("a line without a same-line closing run must not parse as a Heading")
		}
	}
}

func TestBuildHeadingLevel(t *testing.T) {
	body, err := Build("level", "===Title===\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(body.Children) == 0 {
		t.Fatal("expected at least one child")
	}
	h, ok := body.Children[0].(*Heading)
	if !ok {
		t.Fatalf("expected first child to be a Heading, got %T", body.Children[0])
	}
	if h.Level != 3 {
		t.Fatalf("level = %d, want 3", h.Level)
	}
}

func TestBuildArgumentVsTemplateAmbiguity(t *testing.T) {
	const input = "{{{X}}"
	body, err := Build("ambiguous", input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var tmpl *Template
	for _, c := range body.Children {
		if tm, ok := c.(*Template); ok {
			tmpl = tm
		}
	}
	if tmpl == nil {
		t.Fatal("expected {{{X}} to backtrack from Argument into a Template")
	}
	if got := body.String(); got != input {
		t.Fatalf("reconstructed %q, want %q", got, input)
	}
}
