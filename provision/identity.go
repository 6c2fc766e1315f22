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

package provision

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	yaml2 "gopkg.in/yaml.v2"
	"gopkg.in/yaml.v3"

	"github.com/TheCacophonyProject/cardtool/dirs"
)

// UploaderSpoolDir is where the thermal uploader picks up recordings.
const UploaderSpoolDir = "/var/spool/cptv"

// SetIdentity sets the salt minion id of the image.
func SetIdentity(rootDir, name string) error {
	if err := afero.WriteFile(rootFs(rootDir), dirs.MinionID, []byte(name), 0644); err != nil {
		return fmt.Errorf("cannot set minion id: %v", err)
	}
	return nil
}

// SetHostname sets the hostname of the image.
func SetHostname(rootDir, name string) error {
	if err := afero.WriteFile(rootFs(rootDir), dirs.Hostname, []byte(name+"\n"), 0644); err != nil {
		return fmt.Errorf("cannot set hostname: %v", err)
	}
	return nil
}

// Hostname returns the hostname of the image.
func Hostname(rootDir string) (string, error) {
	data, err := afero.ReadFile(rootFs(rootDir), dirs.Hostname)
	if err != nil {
		return "", fmt.Errorf("cannot read hostname: %v", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// UpdateHosts points the loopback entries of the image's hosts file at
// name, leaving every other line alone.
func UpdateHosts(rootDir, name string) error {
	fs := rootFs(rootDir)
	data, err := afero.ReadFile(fs, dirs.Hosts)
	if err != nil {
		return fmt.Errorf("cannot update hosts: %v", err)
	}

	var buf bytes.Buffer
	r := bufio.NewReader(bytes.NewReader(data))
	for {
		line, err := r.ReadString('\n')
		if strings.HasPrefix(line, "127.0.0.1") {
			line = "127.0.0.1 localhost " + name + "\n"
		}
		buf.WriteString(line)
		if err != nil {
			break
		}
	}

	if err := afero.WriteFile(fs, dirs.Hosts, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("cannot update hosts: %v", err)
	}
	return nil
}

func quotedMapping(kv ...string) *yaml.Node {
	m := &yaml.Node{Kind: yaml.MappingNode}
	for i := 0; i < len(kv); i += 2 {
		m.Content = append(m.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: kv[i]},
			&yaml.Node{Kind: yaml.ScalarNode, Style: yaml.DoubleQuotedStyle, Value: kv[i+1]},
		)
	}
	return m
}

func writeYAML(fs afero.Fs, name string, doc *yaml.Node) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	return afero.WriteFile(fs, name, data, 0644)
}

// IssueUploaderConf resets the thermal uploader configuration, dropping
// any local override.
func IssueUploaderConf(rootDir string) error {
	fs := rootFs(rootDir)
	if err := writeYAML(fs, dirs.UploaderConf, quotedMapping("directory", UploaderSpoolDir)); err != nil {
		return fmt.Errorf("cannot write uploader configuration: %v", err)
	}
	if err := tryRemove(fs, dirs.UploaderPrivConf); err != nil {
		return fmt.Errorf("cannot remove uploader override: %v", err)
	}
	return nil
}

// DeviceConf is the device configuration read by the Cacophony services.
type DeviceConf struct {
	ServerURL  string `yaml:"server-url"`
	Group      string `yaml:"group"`
	DeviceName string `yaml:"device-name"`
}

// IssueDeviceConf writes the device configuration and removes the private
// device configuration, which holds the credentials of a previous
// registration.
func IssueDeviceConf(rootDir, url, name, group string) error {
	fs := rootFs(rootDir)
	doc := quotedMapping(
		"server-url", url,
		"group", group,
		"device-name", name,
	)
	if err := writeYAML(fs, dirs.DeviceConf, doc); err != nil {
		return fmt.Errorf("cannot write device configuration: %v", err)
	}
	if err := tryRemove(fs, dirs.DevicePrivConf); err != nil {
		return fmt.Errorf("cannot remove private device configuration: %v", err)
	}
	return nil
}

// ReadDeviceConf reads the device configuration of the image.
func ReadDeviceConf(rootDir string) (*DeviceConf, error) {
	data, err := afero.ReadFile(rootFs(rootDir), dirs.DeviceConf)
	if err != nil {
		return nil, fmt.Errorf("cannot read device configuration: %v", err)
	}
	var conf DeviceConf
	if err := yaml2.Unmarshal(data, &conf); err != nil {
		return nil, fmt.Errorf("cannot parse device configuration: %v", err)
	}
	return &conf, nil
}
