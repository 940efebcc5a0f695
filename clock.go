// Copyright 2014 Joel Scoble (github:mohae). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package preprocessor

import "time"

// Clock supplies the current time to magic-word expansion. It is sampled
// once per top-level Expand call so that {{CURRENTTIME}} and friends are
// stable across every magic word resolved within the same request, the way
// a real wiki sees a single "now" per page render.
type Clock interface {
	Now(utc bool) time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

// Now returns time.Now(), in UTC if utc is set.
func (RealClock) Now(utc bool) time.Time {
	t := time.Now()
	if utc {
		return t.UTC()
	}
	return t
}

// FixedClock always returns the same instant, for deterministic tests of
// date/time magic words.
type FixedClock struct {
	Time time.Time
}

// Now returns the fixed instant, converted to UTC if requested.
func (c FixedClock) Now(utc bool) time.Time {
	if utc {
		return c.Time.UTC()
	}
	return c.Time
}
