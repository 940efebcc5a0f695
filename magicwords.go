// Copyright 2014 Joel Scoble (github:mohae). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package preprocessor

import (
	"strconv"
	"time"
)

// expandMagicWord resolves the §4.7 date/time magic word table against a
// single time sample shared by the whole top-level expansion. An unknown
// name returns ok=false so the caller falls through to the parser-function
// and template-resolution paths, per the error taxonomy in §7.
func expandMagicWord(name string, sample *timeSample) (string, bool) {
	switch name {
	case "CURRENTMONTH":
		return sample.utc.Format("01"), true
	case "LOCALMONTH":
		return sample.local.Format("01"), true
	case "CURRENTMONTH1":
		return strconv.Itoa(int(sample.utc.Month())), true
	case "LOCALMONTH1":
		return strconv.Itoa(int(sample.local.Month())), true
	case "CURRENTMONTHNAME", "CURRENTMONTHNAMEGEN":
		// FIXME: genitive form is identical to the nominative for now.
		return sample.utc.Month().String(), true
	case "LOCALMONTHNAME", "LOCALMONTHNAMEGEN":
		return sample.local.Month().String(), true
	case "CURRENTMONTHABBREV":
		return sample.utc.Format("Jan"), true
	case "LOCALMONTHABBREV":
		return sample.local.Format("Jan"), true
	case "CURRENTDAY":
		return strconv.Itoa(sample.utc.Day()), true
	case "LOCALDAY":
		return strconv.Itoa(sample.local.Day()), true
	case "CURRENTDAY2":
		return sample.utc.Format("02"), true
	case "LOCALDAY2":
		return sample.local.Format("02"), true
	case "CURRENTDAYNAME":
		return sample.utc.Weekday().String(), true
	case "LOCALDAYNAME":
		return sample.local.Weekday().String(), true
	case "CURRENTYEAR":
		return sample.utc.Format("2006"), true
	case "LOCALYEAR":
		return sample.local.Format("2006"), true
	case "CURRENTTIME":
		return sample.utc.Format("15:04"), true
	case "LOCALTIME":
		return sample.local.Format("15:04"), true
	case "CURRENTHOUR":
		return sample.utc.Format("15"), true
	case "LOCALHOUR":
		return sample.local.Format("15"), true
	case "CURRENTWEEK":
		return strconv.Itoa(strftimeWeekW(sample.utc) + 1), true
	case "LOCALWEEK":
		return strconv.Itoa(strftimeWeekW(sample.local) + 1), true
	case "CURRENTDOW":
		return strconv.Itoa(int(sample.utc.Weekday())), true
	case "LOCALDOW":
		return strconv.Itoa(int(sample.local.Weekday())), true
	case "CURRENTTIMESTAMP":
		return sample.utc.Format("20060102150405"), true
	case "LOCALTIMESTAMP":
		return sample.local.Format("20060102150405"), true
	}
	return "", false
}

// strftimeWeekW reproduces C/Python's strftime("%W"): the week number of
// the year with Monday as the first day of the week, where every day
// before the year's first Monday falls in week 0.
func strftimeWeekW(t time.Time) int {
	yday := t.YearDay() - 1                    // 0-based day of year
	mondayOffset := (int(t.Weekday()) + 6) % 7 // 0=Monday..6=Sunday
	return (yday - mondayOffset + 7) / 7
}
