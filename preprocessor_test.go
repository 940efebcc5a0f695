// Copyright 2014 Joel Scoble (github:mohae). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package preprocessor

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClockAt(s string) Clock {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return FixedClock{Time: t}
}

// Scenario 1: a call to an unresolved template yields the placeholder.
func TestExpandScenario1MissingTemplate(t *testing.T) {
	p := New(nil, nil, Options{})
	out, headings, err := p.Expand("Test", "Hello {{foo}}")
	require.NoError(t, err)
	assert.Equal(t, "Hello [[Template:Foo]]", out)
	assert.Empty(t, headings)
}

// Scenario 2: date/time magic words sample a single pinned clock.
func TestExpandScenario2MagicWords(t *testing.T) {
	p := New(nil, nil, Options{Clock: fixedClockAt("1970-01-01T00:02:00Z")})
	out, _, err := p.Expand("Test", "{{CURRENTYEAR}}-{{CURRENTMONTH}}-{{CURRENTDAY2}} {{CURRENTTIME}}")
	require.NoError(t, err)
	assert.Equal(t, "1970-01-01 00:02", out)
}

// Scenario 3: named and positional arguments bind into the template body.
func TestExpandScenario3Arguments(t *testing.T) {
	store := NewMapStore()
	store.Set("Template", "T", "{{{1}}}/{{{name|def}}}")
	p := New(nil, store, Options{})
	out, _, err := p.Expand("Test", "{{T|hello|name=world}}")
	require.NoError(t, err)
	assert.Equal(t, "hello/world", out)
}

// Scenario 4: #if.
func TestExpandScenario4If(t *testing.T) {
	p := New(nil, nil, Options{})
	out, _, err := p.Expand("Test", "{{#if:yes|A|B}}")
	require.NoError(t, err)
	assert.Equal(t, "A", out)

	out, _, err = p.Expand("Test", "{{#if:|A|B}}")
	require.NoError(t, err)
	assert.Equal(t, "B", out)
}

// Scenario 5: #ifeq canonicalizes numeric operands.
func TestExpandScenario5Ifeq(t *testing.T) {
	p := New(nil, nil, Options{})
	out, _, err := p.Expand("Test", "{{#ifeq:01|1|eq|ne}}")
	require.NoError(t, err)
	assert.Equal(t, "eq", out)

	out, _, err = p.Expand("Test", "{{#ifeq:a|b|eq|ne}}")
	require.NoError(t, err)
	assert.Equal(t, "ne", out)
}

// Scenario 6: #switch with a #default fallback.
func TestExpandScenario6Switch(t *testing.T) {
	p := New(nil, nil, Options{})
	out, _, err := p.Expand("Test", "{{#switch:b|a=1|b=2|c=3|#default=0}}")
	require.NoError(t, err)
	assert.Equal(t, "2", out)

	out, _, err = p.Expand("Test", "{{#switch:d|a=1|b=2|c=3|#default=0}}")
	require.NoError(t, err)
	assert.Equal(t, "0", out)
}

// §8 property 5: two positional arms then a named one falls through.
func TestExpandSwitchFallThrough(t *testing.T) {
	p := New(nil, nil, Options{})
	out, _, err := p.Expand("Test", "{{#switch:x|x|y|z=match}}")
	require.NoError(t, err)
	assert.Equal(t, "match", out)
}

// Scenario 7: a self-referencing template yields exactly one loop span
// and does not recurse without bound.
func TestExpandScenario7TemplateLoop(t *testing.T) {
	store := NewMapStore()
	store.Set("Template", "R", "{{R}}")
	p := New(nil, store, Options{})
	out, headings, err := p.Expand("Test", "{{R}}")
	require.NoError(t, err)
	assert.Equal(t, `<span class="error">Template loop detected: [[Template:R]]</span>`, out)
	assert.Empty(t, headings)
}

// Scenario 8: <onlyinclude> is the only surviving content when
// transcluded, but transparent (so the rest of the document still shows)
// at the top level.
func TestExpandScenario8OnlyInclude(t *testing.T) {
	store := NewMapStore()
	store.Set("Template", "X", "<onlyinclude>kept</onlyinclude> dropped")
	p := New(nil, store, Options{})

	out, _, err := p.Expand("Test", "{{X}}")
	require.NoError(t, err)
	assert.Equal(t, "kept", out)

	out, _, err = p.Expand("Test", "<onlyinclude>kept</onlyinclude> dropped")
	require.NoError(t, err)
	assert.Equal(t, "kept dropped", out)
}

// Scenario 9: a heading index of two top-level sections, each spanning
// exactly its "=" delimiters plus heading text.
func TestExpandScenario9Headings(t *testing.T) {
	p := New(nil, nil, Options{})
	out, headings, err := p.Expand("Test", "==Intro==\n\n==Body==")
	require.NoError(t, err)
	require.Len(t, headings, 2)

	want := []Heading{
		{Title: "Test", Section: "1"},
		{Title: "Test", Section: "2"},
	}
	got := make([]Heading, len(headings))
	for i, h := range headings {
		got[i] = Heading{Title: h.Title, Section: h.Section}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("heading titles/sections mismatch (-want +got):\n%s", diff)
	}

	wantSpans := []string{"==Intro==", "==Body=="}
	for i, h := range headings {
		assert.Equalf(t, wantSpans[i], out[h.Begin:h.End], "heading %d span", i)
	}
}

// Scenario 10: byte-exact reconstruction, including interior whitespace.
func TestReconstructScenario10(t *testing.T) {
	const input = "{{ x | a | b = c }}"
	out, err := Reconstruct("Test", input)
	require.NoError(t, err)
	assert.Equal(t, input, out)
}

func TestExpandNoIncludeIncludeOnlyGating(t *testing.T) {
	store := NewMapStore()
	store.Set("Template", "Gate", "a<noinclude>N</noinclude><includeonly>I</includeonly>b")
	p := New(nil, store, Options{})

	out, _, err := p.Expand("Test", "a<noinclude>N</noinclude><includeonly>I</includeonly>b")
	require.NoError(t, err)
	assert.Equal(t, "aNb", out, "top level keeps noinclude, drops includeonly")

	out, _, err = p.Expand("Test", "{{Gate}}")
	require.NoError(t, err)
	assert.Equal(t, "aIb", out, "transcluded body keeps includeonly, drops noinclude")
}

func TestExpandAutoNewlineRule(t *testing.T) {
	store := NewMapStore()
	store.Set("Template", "List", "* item")
	p := New(nil, store, Options{})

	out, _, err := p.Expand("Test", "x{{List}}")
	require.NoError(t, err)
	assert.Equal(t, "x\n* item", out, "a non-bol template beginning with '*' gets a leading newline")

	out, _, err = p.Expand("Test", "{{List}}")
	require.NoError(t, err)
	assert.Equal(t, "* item", out, "a bol template never gets the auto-newline prefix")
}

func TestExpandMaxInvocationsBoundsRunawayExpansion(t *testing.T) {
	// A non-cyclic chain (T1 -> T2 -> T3 -> ...), so call-stack cycle
	// detection never fires; only the invocation cap should stop it.
	store := NewMapStore()
	store.Set("Template", "T1", "{{T2}}")
	store.Set("Template", "T2", "{{T3}}")
	store.Set("Template", "T3", "{{T4}}")
	p := New(nil, store, Options{MaxInvocations: 2})
	out, _, err := p.Expand("Test", "{{T1}}")
	require.NoError(t, err)
	assert.Contains(t, out, "Template loop detected")
}

func TestSectionExtractReplaceRoundTrip(t *testing.T) {
	p := New(nil, nil, Options{})
	const input = "intro\n==A==\nfirst\n==B==\nsecond"
	out, headings, err := p.Expand("Test", input)
	require.NoError(t, err)
	require.Len(t, headings, 2)

	section, ok := ExtractSection(out, headings, "1")
	require.True(t, ok)

	roundTripped, ok := ReplaceSection(out, headings, "1", section)
	require.True(t, ok)
	assert.Equal(t, out, roundTripped)
}
