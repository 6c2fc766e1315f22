// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2015 Canonical Ltd
 * Copyright (C) 2024 The Cacophony Project
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 */

package testutil

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/check.v1"
)

type containsChecker struct {
	*check.CheckerInfo
}

// Contains is a Checker that looks for a needle in a haystack. The
// haystack can be a string or a []string; for a string the needle is
// matched as a substring, for a slice as an element.
var Contains check.Checker = &containsChecker{
	&check.CheckerInfo{Name: "Contains", Params: []string{"haystack", "needle"}},
}

func (c *containsChecker) Check(params []interface{}, names []string) (result bool, error string) {
	needle, ok := params[1].(string)
	if !ok {
		return false, "needle must be a string"
	}
	switch haystack := params[0].(type) {
	case string:
		return strings.Contains(haystack, needle), ""
	case []string:
		for _, item := range haystack {
			if item == needle {
				return true, ""
			}
		}
		return false, ""
	default:
		return false, fmt.Sprintf("haystack is of unsupported type %T", params[0])
	}
}

type fileContentChecker struct {
	*check.CheckerInfo
}

// FileEquals verifies that the given file's content is equal to the string
// provided.
var FileEquals check.Checker = &fileContentChecker{
	&check.CheckerInfo{Name: "FileEquals", Params: []string{"filename", "content"}},
}

func (c *fileContentChecker) Check(params []interface{}, names []string) (result bool, error string) {
	filename, ok := params[0].(string)
	if !ok {
		return false, "filename must be a string"
	}
	expected, ok := params[1].(string)
	if !ok {
		return false, "content must be a string"
	}
	buf, err := os.ReadFile(filename)
	if err != nil {
		return false, fmt.Sprintf("cannot read file %q: %v", filename, err)
	}
	if string(buf) != expected {
		return false, fmt.Sprintf("file %q has content %q", filename, buf)
	}
	return true, ""
}

type fileContainsChecker struct {
	*check.CheckerInfo
}

// FileContains verifies that the given file's content contains the string
// provided.
var FileContains check.Checker = &fileContainsChecker{
	&check.CheckerInfo{Name: "FileContains", Params: []string{"filename", "content"}},
}

func (c *fileContainsChecker) Check(params []interface{}, names []string) (result bool, error string) {
	filename, ok := params[0].(string)
	if !ok {
		return false, "filename must be a string"
	}
	needle, ok := params[1].(string)
	if !ok {
		return false, "content must be a string"
	}
	buf, err := os.ReadFile(filename)
	if err != nil {
		return false, fmt.Sprintf("cannot read file %q: %v", filename, err)
	}
	if !strings.Contains(string(buf), needle) {
		return false, fmt.Sprintf("file %q has content %q", filename, buf)
	}
	return true, ""
}

type filePresenceChecker struct {
	*check.CheckerInfo
	present bool
}

// FilePresent verifies that the given file exists.
var FilePresent check.Checker = &filePresenceChecker{
	CheckerInfo: &check.CheckerInfo{Name: "FilePresent", Params: []string{"filename"}},
	present:     true,
}

// FileAbsent verifies that the given file does not exist.
var FileAbsent check.Checker = &filePresenceChecker{
	CheckerInfo: &check.CheckerInfo{Name: "FileAbsent", Params: []string{"filename"}},
	present:     false,
}

func (c *filePresenceChecker) Check(params []interface{}, names []string) (result bool, error string) {
	filename, ok := params[0].(string)
	if !ok {
		return false, "filename must be a string"
	}
	_, err := os.Stat(filename)
	if os.IsNotExist(err) && c.present {
		return false, fmt.Sprintf("file %q is absent but should exist", filename)
	}
	if err == nil && !c.present {
		return false, fmt.Sprintf("file %q is present but should not exist", filename)
	}
	return true, ""
}
