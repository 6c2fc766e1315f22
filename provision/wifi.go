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
	"bytes"
	"fmt"

	"github.com/spf13/afero"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/TheCacophonyProject/cardtool/dirs"
	"github.com/TheCacophonyProject/cardtool/wpaconf"
)

// ProtectedSSIDError is returned when asked to change the network used
// for configuration and installation access.
type ProtectedSSIDError struct {
	SSID string
	Op   string
}

func (e *ProtectedSSIDError) Error() string {
	return fmt.Sprintf("cannot %s protected network %q", e.Op, e.SSID)
}

// CheckSSID returns a *ProtectedSSIDError if ssid is the protected one.
func CheckSSID(ssid, protected, op string) error {
	if ssid == protected {
		return &ProtectedSSIDError{SSID: ssid, Op: op}
	}
	return nil
}

func readWpaConf(fs afero.Fs) (*wpaconf.Conf, error) {
	f, err := fs.Open(dirs.WpaSupplicantConf)
	if err != nil {
		return nil, fmt.Errorf("cannot read wifi configuration: %v", err)
	}
	defer f.Close()
	conf, err := wpaconf.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("cannot parse wifi configuration: %w", err)
	}
	return conf, nil
}

func writeWpaConf(fs afero.Fs, conf *wpaconf.Conf) error {
	var buf bytes.Buffer
	if err := conf.Write(&buf); err != nil {
		return err
	}
	if err := afero.WriteFile(fs, dirs.WpaSupplicantConf, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("cannot write wifi configuration: %v", err)
	}
	return nil
}

func updateWpaConf(rootDir string, f func(conf *wpaconf.Conf) error) error {
	fs := rootFs(rootDir)
	conf, err := readWpaConf(fs)
	if err != nil {
		return err
	}
	if err := f(conf); err != nil {
		return err
	}
	return writeWpaConf(fs, conf)
}

// ListNetworks returns the SSIDs of the configured networks.
func ListNetworks(rootDir string) ([]string, error) {
	conf, err := readWpaConf(rootFs(rootDir))
	if err != nil {
		return nil, err
	}
	return conf.Networks(), nil
}

// SetNetwork adds a WPA-PSK network or changes the password of an
// existing one.
func SetNetwork(rootDir, ssid, password string) error {
	return updateWpaConf(rootDir, func(conf *wpaconf.Conf) error {
		conf.AddNetwork(ssid, wpaconf.Fields{{Key: "psk", Value: `"` + password + `"`}})
		return nil
	})
}

// RemoveNetwork removes a configured network.
func RemoveNetwork(rootDir, ssid string) error {
	return updateWpaConf(rootDir, func(conf *wpaconf.Conf) error {
		if !conf.RemoveNetwork(ssid) {
			return fmt.Errorf("network %q is not configured", ssid)
		}
		return nil
	})
}

// ClearNetworks removes every network except keep and returns how many
// were removed.
func ClearNetworks(rootDir, keep string) (int, error) {
	removed := 0
	err := updateWpaConf(rootDir, func(conf *wpaconf.Conf) error {
		for _, ssid := range conf.Networks() {
			if ssid != keep && conf.RemoveNetwork(ssid) {
				removed++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// NormalizeCountry returns the form of a country code wpa_supplicant
// expects.
func NormalizeCountry(code string) string {
	return cases.Upper(language.Und).String(code)
}

// SetCountry sets the regulatory domain and returns the code as written.
func SetCountry(rootDir, code string) (string, error) {
	code = NormalizeCountry(code)
	err := updateWpaConf(rootDir, func(conf *wpaconf.Conf) error {
		conf.SetField("country", code)
		return nil
	})
	if err != nil {
		return "", err
	}
	return code, nil
}
