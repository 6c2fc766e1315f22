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

var shortIDHelp = i18n.G("Set the identity of an image")
var longIDHelp = i18n.G(`
The id command sets the device name and group of a Cacophony Project
Raspbian image. The hostname follows the device name, and any credentials
left over from a previous registration are removed so that the device
registers afresh with the server it uploads to.
`)

type cmdID struct {
	URL string `long:"url"`

	Positional struct {
		Device string
		Name   string
		Group  string
	} `positional-args:"yes" required:"yes"`
}

func init() {
	addCommand("id", shortIDHelp, longIDHelp, func() flags.Commander {
		return &cmdID{}
	}, map[string]string{
		// TRANSLATORS: This should not start with a lowercase letter.
		"url": i18n.G("The API server URL to upload to (default from configuration)"),
	}, []argDesc{{
		// TRANSLATORS: This needs to begin with < and end with >
		name: i18n.G("<device>"),
		// TRANSLATORS: This should not start with a lowercase letter.
		desc: i18n.G("The SD card device, e.g. /dev/sdb"),
	}, {
		name: i18n.G("<name>"),
		desc: i18n.G("The device name"),
	}, {
		name: i18n.G("<group>"),
		desc: i18n.G("The group the device belongs to"),
	}})
}

func (x *cmdID) Execute(args []string) error {
	if len(args) > 0 {
		return ErrExtraArgs
	}

	url := x.URL
	if url == "" {
		url = toolConfig.APIURL
	}
	name, group := x.Positional.Name, x.Positional.Group

	device := partition.DevicePath(x.Positional.Device)
	err := image.WithMount(device, imageOptions(), func(rootDir string) error {
		if err := provision.SetIdentity(rootDir, name); err != nil {
			return err
		}
		if err := provision.SetHostname(rootDir, name); err != nil {
			return err
		}
		if err := provision.UpdateHosts(rootDir, name); err != nil {
			return err
		}
		if err := provision.IssueUploaderConf(rootDir); err != nil {
			return err
		}
		return provision.IssueDeviceConf(rootDir, url, name, group)
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(Stdout, i18n.G("Card updated."))
	return nil
}
