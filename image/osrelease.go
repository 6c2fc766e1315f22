// -*- Mode: Go; indent-tabs-mode: t -*-

/*
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

package image

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mvo5/goconfigparser"

	"github.com/TheCacophonyProject/cardtool/dirs"
)

// OSRelease is the subset of os-release(5) cardtool reports.
type OSRelease struct {
	ID         string
	VersionID  string
	PrettyName string
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// ReadOSRelease parses the os-release file of the image mounted at rootDir.
func ReadOSRelease(rootDir string) (*OSRelease, error) {
	cfg := goconfigparser.New()
	cfg.AllowNoSectionHeader = true
	if err := cfg.ReadFile(filepath.Join(rootDir, dirs.OSRelease)); err != nil {
		return nil, fmt.Errorf("cannot read os-release: %v", err)
	}

	id, err := cfg.Get("", "ID")
	if err != nil {
		return nil, fmt.Errorf("cannot read os-release: %v", err)
	}
	rel := &OSRelease{ID: unquote(id)}
	// optional
	if v, err := cfg.Get("", "VERSION_ID"); err == nil {
		rel.VersionID = unquote(v)
	}
	if v, err := cfg.Get("", "PRETTY_NAME"); err == nil {
		rel.PrettyName = unquote(v)
	}
	return rel, nil
}

// IsExpectedOS reports whether the image mounted at rootDir declares
// itself as osID. A missing or unreadable os-release is not expected.
func IsExpectedOS(rootDir, osID string) bool {
	f, err := os.Open(filepath.Join(rootDir, dirs.OSRelease))
	if err != nil {
		return false
	}
	defer f.Close()

	prefix := "ID=" + osID
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if strings.HasPrefix(scanner.Text(), prefix) {
			return true
		}
	}
	return false
}
