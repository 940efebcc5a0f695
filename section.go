// Copyright 2014 Joel Scoble (github:mohae). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package preprocessor

// ExtractSection returns the substring of text spanning the heading whose
// Section matches section (a decimal ordinal like "1" or a transcluded
// "T-n") through the next heading's Begin offset, or the end of text if
// it's the last heading. ok is false if no heading carries that section.
func ExtractSection(text string, headings []Heading, section string) (out string, ok bool) {
	i := sectionIndex(headings, section)
	if i < 0 {
		return "", false
	}
	begin, end := sectionRange(text, headings, i)
	return text[begin:end], true
}

// ReplaceSection splices replacement in place of the named section,
// leaving everything outside its range untouched. ReplaceSection(t, h, n,
// ExtractSection(t, h, n)) is the identity (§8 property 6).
func ReplaceSection(text string, headings []Heading, section, replacement string) (out string, ok bool) {
	i := sectionIndex(headings, section)
	if i < 0 {
		return "", false
	}
	begin, end := sectionRange(text, headings, i)
	return text[:begin] + replacement + text[end:], true
}

func sectionIndex(headings []Heading, section string) int {
	for i, h := range headings {
		if h.Section == section {
			return i
		}
	}
	return -1
}

func sectionRange(text string, headings []Heading, i int) (begin, end int) {
	begin = headings[i].Begin
	end = len(text)
	if i+1 < len(headings) {
		end = headings[i+1].Begin
	}
	return begin, end
}
