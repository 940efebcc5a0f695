// Copyright 2014 Joel Scoble (github:mohae). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package preprocessor implements the MediaWiki preprocessor: the pass
// that resolves templates, template arguments, parser functions, magic
// words and inclusion tags into expanded wiki text, before any
// block/inline parsing to HTML happens.
package preprocessor

import "github.com/gowikitext/preprocessor/parse"

// Options configures a Preprocessor's expansion behavior beyond what a
// single Expand call's title/text arguments capture.
type Options struct {
	// Clock supplies "now" for the date/time magic word table (§4.7).
	// A nil Clock defaults to RealClock.
	Clock Clock
	// MaxInvocations bounds the number of template expansions within a
	// single top-level Expand call, protecting against combinatorial
	// expansion (§5). Zero means unbounded, matching "the source repo
	// does not fix one". A template that would push the count past the
	// bound returns the same loop-detected span a cycle would.
	MaxInvocations int
}

// Preprocessor resolves template references and parser functions while
// expanding a page's wikitext against a namespace table and a template
// store.
type Preprocessor struct {
	Settings *Settings
	Store    TemplateStore
	Options  Options
}

// New returns a Preprocessor reading templates from store under settings.
// A nil settings uses DefaultSettings(); a nil store never resolves a
// template, so every {{...}} call falls back to the "[[Namespace:Page]]"
// placeholder.
func New(settings *Settings, store TemplateStore, opts Options) *Preprocessor {
	if settings == nil {
		settings = DefaultSettings()
	}
	if store == nil {
		store = NewMapStore()
	}
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	return &Preprocessor{Settings: settings, Store: store, Options: opts}
}

// Expand parses text as the page named title and returns its expanded
// output plus the heading index, threaded correctly through nested
// template inclusions (§4.4). A grammar failure anywhere in the
// expansion tree (the root document or any transcluded template body)
// surfaces as a returned error; every other failure mode named in §7
// (template loops, missing templates, missing arguments) is rendered
// inline and never reaches here as an error.
func (p *Preprocessor) Expand(title, text string) (out string, headings []Heading, err error) {
	defer func() {
		if r := recover(); r != nil {
			perr, ok := r.(*parse.Error)
			if !ok {
				panic(r)
			}
			err = perr
		}
	}()
	f := newRootFrame(p, title, text)
	out, headings = f.expand()
	return out, headings, nil
}
