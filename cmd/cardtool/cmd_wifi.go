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

package main

import (
	"fmt"

	"github.com/jessevdk/go-flags"

	"github.com/TheCacophonyProject/cardtool/i18n"
	"github.com/TheCacophonyProject/cardtool/image"
	"github.com/TheCacophonyProject/cardtool/partition"
	"github.com/TheCacophonyProject/cardtool/provision"
)

var deviceArgDesc = argDesc{
	// TRANSLATORS: This needs to begin with < and end with >
	name: i18n.G("<device>"),
	// TRANSLATORS: This should not start with a lowercase letter.
	desc: i18n.G("The SD card device, e.g. /dev/sdb"),
}

type deviceArg struct {
	Device string
}

type cmdWifiList struct {
	Positional deviceArg `positional-args:"yes" required:"yes"`
}

type cmdWifiSet struct {
	Positional struct {
		Device   string
		SSID     string
		Password string
	} `positional-args:"yes" required:"yes"`
}

type cmdWifiRemove struct {
	Positional struct {
		Device string
		SSID   string
	} `positional-args:"yes" required:"yes"`
}

type cmdWifiClear struct {
	Positional deviceArg `positional-args:"yes" required:"yes"`
}

type cmdWifiCountry struct {
	Positional struct {
		Device  string
		Country string
	} `positional-args:"yes" required:"yes"`
}

func init() {
	wifi := addGroup("wifi",
		i18n.G("Manage WiFi networks of an image"),
		i18n.G("The wifi command manipulates the WiFi connection details stored in an image."))

	wifi.addSubcommand("list",
		i18n.G("Show the configured WiFi networks"),
		i18n.G("The list command shows the WiFi networks configured on the card."),
		func() flags.Commander { return &cmdWifiList{} },
		nil, []argDesc{deviceArgDesc})

	wifi.addSubcommand("set",
		i18n.G("Add or update a WiFi network"),
		i18n.G(`
The set command adds a WPA-PSK network to the card, or changes the password
of a network that is already configured. The network used for installation
access cannot be changed.
`),
		func() flags.Commander { return &cmdWifiSet{} },
		nil, []argDesc{deviceArgDesc, {
			name: i18n.G("<ssid>"),
			desc: i18n.G("The network name"),
		}, {
			name: i18n.G("<password>"),
			desc: i18n.G("The network password"),
		}})

	wifi.addSubcommand("remove",
		i18n.G("Remove a WiFi network"),
		i18n.G("The remove command removes a WiFi network from the card."),
		func() flags.Commander { return &cmdWifiRemove{} },
		nil, []argDesc{deviceArgDesc, {
			name: i18n.G("<ssid>"),
			desc: i18n.G("The network name"),
		}})

	wifi.addSubcommand("clear",
		i18n.G("Remove all WiFi networks"),
		i18n.G("The clear command removes every WiFi network except the one used for installation access."),
		func() flags.Commander { return &cmdWifiClear{} },
		nil, []argDesc{deviceArgDesc})

	wifi.addSubcommand("country",
		i18n.G("Set the WiFi country code"),
		i18n.G("The country command sets the regulatory domain the WiFi radio operates in."),
		func() flags.Commander { return &cmdWifiCountry{} },
		nil, []argDesc{deviceArgDesc, {
			name: i18n.G("<country>"),
			desc: i18n.G("The ISO 3166-1 country code, e.g. NZ"),
		}})
}

func (x *cmdWifiList) Execute(args []string) error {
	if len(args) > 0 {
		return ErrExtraArgs
	}

	var ssids []string
	err := image.WithMount(partition.DevicePath(x.Positional.Device), imageOptions(), func(rootDir string) (err error) {
		ssids, err = provision.ListNetworks(rootDir)
		return err
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(Stdout, i18n.G("Configured wifi networks:"))
	if len(ssids) == 0 {
		fmt.Fprintln(Stdout, i18n.G("(none)"))
		return nil
	}
	for _, ssid := range ssids {
		fmt.Fprintln(Stdout, ssid)
	}
	return nil
}

func (x *cmdWifiSet) Execute(args []string) error {
	if len(args) > 0 {
		return ErrExtraArgs
	}
	ssid := x.Positional.SSID
	if err := provision.CheckSSID(ssid, toolConfig.ProtectedSSID, "change"); err != nil {
		return err
	}

	err := image.WithMount(partition.DevicePath(x.Positional.Device), imageOptions(), func(rootDir string) error {
		return provision.SetNetwork(rootDir, ssid, x.Positional.Password)
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(Stdout, i18n.G("%s network configured.\n"), ssid)
	return nil
}

func (x *cmdWifiRemove) Execute(args []string) error {
	if len(args) > 0 {
		return ErrExtraArgs
	}
	ssid := x.Positional.SSID
	if err := provision.CheckSSID(ssid, toolConfig.ProtectedSSID, "remove"); err != nil {
		return err
	}

	err := image.WithMount(partition.DevicePath(x.Positional.Device), imageOptions(), func(rootDir string) error {
		return provision.RemoveNetwork(rootDir, ssid)
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(Stdout, i18n.G("%s network removed.\n"), ssid)
	return nil
}

func (x *cmdWifiClear) Execute(args []string) error {
	if len(args) > 0 {
		return ErrExtraArgs
	}

	var removed int
	err := image.WithMount(partition.DevicePath(x.Positional.Device), imageOptions(), func(rootDir string) (err error) {
		removed, err = provision.ClearNetworks(rootDir, toolConfig.ProtectedSSID)
		return err
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(Stdout, i18n.NG("All WiFi networks removed (%d network).\n",
		"All WiFi networks removed (%d networks).\n", removed), removed)
	return nil
}

func (x *cmdWifiCountry) Execute(args []string) error {
	if len(args) > 0 {
		return ErrExtraArgs
	}

	var country string
	err := image.WithMount(partition.DevicePath(x.Positional.Device), imageOptions(), func(rootDir string) (err error) {
		country, err = provision.SetCountry(rootDir, x.Positional.Country)
		return err
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(Stdout, i18n.G("WiFi country changed to '%s'.\n"), country)
	return nil
}
