// Copyright 2014 Joel Scoble (github:mohae). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package preprocessor

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/gowikitext/preprocessor/parse"
)

var (
	upperCaser = cases.Upper(language.Und)
	lowerCaser = cases.Lower(language.Und)
)

// parserFuncArgs is the §4.4.3 ParserFuncArguments view: a borrowed
// window over a template's arg children plus the colon-tail string, with
// no copying and no caching (parser functions conventionally evaluate
// each argument at most once, so there is nothing to gain by memoizing).
type parserFuncArgs struct {
	frame *Frame
	first string
	args  []*parse.TemplateArg
}

func newParserFuncArgs(f *Frame, first string, args []*parse.TemplateArg) *parserFuncArgs {
	return &parserFuncArgs{frame: f, first: first, args: args}
}

func (a *parserFuncArgs) count() int {
	return 1 + len(a.args)
}

// name returns the stripped expansion of arg i's name subtree, or
// ok=false when that arg is positional (or i is 0, which never has one).
func (a *parserFuncArgs) name(i int) (name string, ok bool) {
	if i == 0 {
		return "", false
	}
	arg := a.args[i-1]
	if arg.Name == nil {
		return "", false
	}
	text, _ := a.frame.expandNodes(arg.Name.Nodes)
	return strings.TrimSpace(text), true
}

// value returns the stripped expansion of arg i's value subtree. Index 0
// is the colon-tail string: the caller trims the whole template name
// before the colon split and then trims the tail's leading side (Open
// Question (a)), so it has no surrounding whitespace; it is returned
// as-is, not re-stripped.
func (a *parserFuncArgs) value(i int) string {
	if i == 0 {
		return a.first
	}
	text, _ := a.frame.expandNodes(a.args[i-1].Value.Nodes)
	return strings.TrimSpace(text)
}

// pair is "name=value" when arg i is named, else just the stripped value.
func (a *parserFuncArgs) pair(i int) string {
	if name, ok := a.name(i); ok {
		return name + "=" + a.value(i)
	}
	return a.value(i)
}

// callParserFunc dispatches a §4.7 parser function by name. An unknown
// name returns ok=false, falling through to template resolution per §7.
func callParserFunc(name string, args *parserFuncArgs) (string, bool) {
	switch name {
	case "lc":
		return lowerCaser.String(args.value(0)), true
	case "uc":
		return upperCaser.String(args.value(0)), true
	case "lcfirst":
		return firstCased(args.value(0), lowerCaser), true
	case "ucfirst":
		return firstCased(args.value(0), upperCaser), true
	case "#if":
		return parserFuncIf(args), true
	case "#ifeq":
		return parserFuncIfeq(args), true
	case "#switch":
		return parserFuncSwitch(args), true
	}
	return "", false
}

func firstCased(s string, c cases.Caser) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return c.String(string(r[0])) + string(r[1:])
}

func parserFuncIf(a *parserFuncArgs) string {
	if a.count() <= 1 {
		return ""
	}
	if a.value(0) != "" {
		return a.pair(1)
	}
	if a.count() > 2 {
		return a.pair(2)
	}
	return ""
}

func parserFuncIfeq(a *parserFuncArgs) string {
	if a.count() <= 2 {
		return ""
	}
	lhs := canonicalizeNumeric(a.value(0))
	rhs := canonicalizeNumeric(a.pair(1))
	if lhs == rhs {
		return a.pair(2)
	}
	if a.count() > 3 {
		return a.pair(3)
	}
	return ""
}

// canonicalizeNumeric parses s as a decimal integer and re-formats it so
// that e.g. "01" compares equal to "1", per §4.7's #ifeq rule.
func canonicalizeNumeric(s string) string {
	if n, err := strconv.Atoi(s); err == nil {
		return strconv.Itoa(n)
	}
	return s
}

// parserFuncSwitch implements the §4.7 #switch fall-through algorithm.
func parserFuncSwitch(a *parserFuncArgs) string {
	n := a.count()
	if n < 2 {
		return ""
	}
	selector := a.value(0)
	pendingMatch := false
	pendingDefault := false
	var def string
	haveDefault := false
	var lastNamed bool
	var lastValue string
	for i := 1; i < n; i++ {
		name, named := a.name(i)
		value := a.value(i)
		lastNamed = named
		lastValue = value
		if named {
			if pendingMatch || name == selector {
				return value
			} else if pendingDefault || name == "#default" {
				def = value
				haveDefault = true
				pendingDefault = false
			}
			pendingMatch = false
		} else {
			if value == selector {
				pendingMatch = true
			} else if value == "#default" {
				pendingDefault = true
			}
		}
	}
	if !lastNamed {
		return lastValue
	}
	if haveDefault {
		return def
	}
	return ""
}
