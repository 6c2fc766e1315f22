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

// Package wpaconf reads and writes wpa_supplicant.conf files.
//
// Only the subset of the format used on provisioned images is supported:
// top-level key=value fields and network blocks. Comments are dropped when
// a file is written back.
package wpaconf

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// ParseError describes a problem with a line of a wpa_supplicant.conf file.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Field is a single key=value setting.
type Field struct {
	Key   string
	Value string
}

// Fields is an ordered list of settings.
type Fields []Field

// Get returns the value of key.
func (fs Fields) Get(key string) (string, bool) {
	for _, f := range fs {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Set updates key in place, or appends it if it is not set yet.
func (fs Fields) Set(key, value string) Fields {
	for i := range fs {
		if fs[i].Key == key {
			fs[i].Value = value
			return fs
		}
	}
	return append(fs, Field{Key: key, Value: value})
}

type network struct {
	ssid   string
	hex    bool // ssid is written unquoted, as hex encoded bytes
	fields Fields
}

// Conf is a parsed wpa_supplicant.conf.
type Conf struct {
	fields   Fields
	networks []*network
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// Parse reads a wpa_supplicant.conf from r.
func Parse(r io.Reader) (*Conf, error) {
	conf := &Conf{}

	var cur *network
	var curStart int
	lineno := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if line == "}" {
			if cur == nil {
				return nil, &ParseError{Line: lineno, Msg: "unexpected }"}
			}
			var ssid string
			var found, hex bool
			rest := make(Fields, 0, len(cur.fields))
			for _, f := range cur.fields {
				if f.Key == "ssid" && !found {
					ssid, found = unquote(f.Value), true
					hex = ssid == f.Value
					continue
				}
				rest = append(rest, f)
			}
			if !found {
				return nil, &ParseError{Line: curStart, Msg: "network has no ssid"}
			}
			cur.ssid, cur.hex, cur.fields = ssid, hex, rest
			conf.setNetwork(cur)
			cur = nil
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, &ParseError{Line: lineno, Msg: fmt.Sprintf("expected key=value, got %q", line)}
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)

		switch {
		case value == "{" && key != "network":
			return nil, &ParseError{Line: lineno, Msg: fmt.Sprintf("unknown section %q", key)}
		case value == "{" && cur != nil:
			return nil, &ParseError{Line: lineno, Msg: "nested network"}
		case value == "{":
			cur = &network{}
			curStart = lineno
		case cur != nil:
			cur.fields = append(cur.fields, Field{Key: key, Value: value})
		default:
			conf.fields = conf.fields.Set(key, value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if cur != nil {
		return nil, &ParseError{Line: curStart, Msg: "unterminated network"}
	}
	return conf, nil
}

// Write writes conf to w in canonical form.
func (conf *Conf) Write(w io.Writer) error {
	var buf bytes.Buffer
	for _, f := range conf.fields {
		fmt.Fprintf(&buf, "%s=%s\n", f.Key, f.Value)
	}
	for _, n := range conf.networks {
		if n.hex {
			fmt.Fprintf(&buf, "\nnetwork={\n    ssid=%s\n", n.ssid)
		} else {
			fmt.Fprintf(&buf, "\nnetwork={\n    ssid=\"%s\"\n", n.ssid)
		}
		for _, f := range n.fields {
			fmt.Fprintf(&buf, "    %s=%s\n", f.Key, f.Value)
		}
		buf.WriteString("}\n")
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Field returns the value of a top-level setting.
func (conf *Conf) Field(key string) (string, bool) {
	return conf.fields.Get(key)
}

// SetField sets a top-level setting.
func (conf *Conf) SetField(key, value string) {
	conf.fields = conf.fields.Set(key, value)
}

// Fields returns a copy of the top-level settings.
func (conf *Conf) Fields() Fields {
	return append(Fields(nil), conf.fields...)
}

// Networks returns the SSIDs of all networks in file order. An SSID stored
// hex encoded is returned as its hex digits.
func (conf *Conf) Networks() []string {
	ssids := make([]string, 0, len(conf.networks))
	for _, n := range conf.networks {
		ssids = append(ssids, n.ssid)
	}
	return ssids
}

// Network returns the settings of the network with the given SSID,
// without the ssid itself.
func (conf *Conf) Network(ssid string) (Fields, bool) {
	if i := conf.indexOf(ssid); i >= 0 {
		return append(Fields(nil), conf.networks[i].fields...), true
	}
	return nil, false
}

// AddNetwork adds a network with a plain text SSID, replacing an existing
// one with the same SSID in place.
func (conf *Conf) AddNetwork(ssid string, fields Fields) {
	conf.setNetwork(&network{ssid: ssid, fields: append(Fields(nil), fields...)})
}

func (conf *Conf) setNetwork(n *network) {
	if i := conf.indexOf(n.ssid); i >= 0 {
		conf.networks[i] = n
		return
	}
	conf.networks = append(conf.networks, n)
}

// RemoveNetwork removes the network with the given SSID and reports
// whether there was one.
func (conf *Conf) RemoveNetwork(ssid string) bool {
	i := conf.indexOf(ssid)
	if i < 0 {
		return false
	}
	conf.networks = append(conf.networks[:i], conf.networks[i+1:]...)
	return true
}

func (conf *Conf) indexOf(ssid string) int {
	for i, n := range conf.networks {
		if n.ssid == ssid {
			return i
		}
	}
	return -1
}
