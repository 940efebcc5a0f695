// Copyright 2014 Joel Scoble (github:mohae). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package preprocessor

import (
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Namespace is a single registered namespace prefix, e.g. "Template" or
// "Category". Prefix matching against raw template references is
// case-insensitive.
type Namespace struct {
	Prefix string `yaml:"prefix"`
}

// Namespaces is the full set of registered namespaces, keyed by their
// canonical (mixed-case) name.
type Namespaces map[string]Namespace

// Settings is the read-only namespace table consulted while canonicalizing
// template references. It is safe for concurrent reads; nothing in this
// package mutates a Settings after construction.
type Settings struct {
	Namespaces Namespaces `yaml:"namespaces"`
}

// DefaultSettings returns a Settings with the namespaces every installation
// is expected to carry: at minimum, "template".
func DefaultSettings() *Settings {
	return NewSettings(Namespaces{
		"Template": {Prefix: "Template"},
		"Category": {Prefix: "Category"},
		"File":     {Prefix: "File"},
		"Media":    {Prefix: "Media"},
	})
}

// NewSettings builds a Settings from a caller-supplied namespace table.
func NewSettings(ns Namespaces) *Settings {
	return &Settings{Namespaces: ns}
}

// LoadSettingsYAML reads a Settings from YAML of the form:
//
//	namespaces:
//	  Template:
//	    prefix: Template
//	  Category:
//	    prefix: Category
func LoadSettingsYAML(r io.Reader) (*Settings, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var s Settings
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	if s.Namespaces == nil {
		s.Namespaces = Namespaces{}
	}
	return &s, nil
}

// find looks up a namespace by case-insensitive prefix match, returning its
// canonical (registered) name and whether it was found.
func (s *Settings) find(prefix string) (string, bool) {
	if s == nil {
		return "", false
	}
	for name, n := range s.Namespaces {
		if strings.EqualFold(n.Prefix, prefix) {
			return name, true
		}
	}
	return "", false
}

// CanonicalPageName canonicalizes a raw template reference (the text found
// between a Template's "{{" and its first "|" or "}}") into a (namespace,
// pageName) pair. Leading/trailing whitespace is trimmed and interior
// spaces are folded to underscores before a namespace prefix, if any, is
// matched case-insensitively against the "Namespace:PageName" split. The
// page name's first letter is then capitalized, matching MediaWiki's
// real-world $wgCapitalLinks default ("foo" -> "Foo"); the namespace
// prefix itself is left as the registry spells it.
//
// An unrecognized prefix is not an error: the whole raw string becomes the
// page name under defaultNamespace.
func (s *Settings) CanonicalPageName(raw, defaultNamespace string) (namespace, pageName string) {
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, " ", "_")
	if i := strings.IndexByte(raw, ':'); i >= 0 {
		prefix, rest := raw[:i], raw[i+1:]
		if name, ok := s.find(prefix); ok {
			return name, firstCased(rest, upperCaser)
		}
	}
	return defaultNamespace, firstCased(raw, upperCaser)
}

// ExpandPageName returns the human-readable "Namespace:PageName" form of a
// canonicalized reference, restoring underscores to spaces.
func (s *Settings) ExpandPageName(namespace, pageName string) string {
	pn := strings.ReplaceAll(pageName, "_", " ")
	if namespace == "" {
		return pn
	}
	return namespace + ":" + pn
}
