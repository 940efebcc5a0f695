// Copyright 2014 Joel Scoble (github:mohae). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package preprocessor

import "github.com/gowikitext/preprocessor/parse"

// Reconstruct parses text and re-renders it byte for byte (C5). Every
// node type in the parse package already knows how to re-emit its own
// delimiters via String() (parse/node.go), so the reconstructor needs no
// logic of its own beyond building the tree and asking for its string
// form; this is also what parse/parse_test.go's round-trip assertions
// exercise directly on the tree.
//
// reconstruct(build(text)) == text is the primary correctness property
// of the build pipeline (§8 property 1); a mismatch here is a build bug,
// not a recoverable condition (§7).
func Reconstruct(title, text string) (string, error) {
	tree, err := parse.Build(title, text)
	if err != nil {
		return "", err
	}
	return tree.String(), nil
}
