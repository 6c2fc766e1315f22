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
	"text/tabwriter"

	"github.com/jessevdk/go-flags"

	"github.com/TheCacophonyProject/cardtool/i18n"
	"github.com/TheCacophonyProject/cardtool/image"
	"github.com/TheCacophonyProject/cardtool/logger"
	"github.com/TheCacophonyProject/cardtool/partition"
	"github.com/TheCacophonyProject/cardtool/provision"
)

var shortInfoHelp = i18n.G("Show how an image is provisioned")
var longInfoHelp = i18n.G(`
The info command shows the operating system, hostname and device identity
stored on a card, without changing anything.
`)

type cmdImageInfo struct {
	Positional deviceArg `positional-args:"yes" required:"yes"`
}

func init() {
	addCommand("info", shortInfoHelp, longInfoHelp, func() flags.Commander {
		return &cmdImageInfo{}
	}, nil, []argDesc{deviceArgDesc})
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (x *cmdImageInfo) Execute(args []string) error {
	if len(args) > 0 {
		return ErrExtraArgs
	}

	var rel *image.OSRelease
	var hostname string
	var dev *provision.DeviceConf
	err := image.WithMount(partition.DevicePath(x.Positional.Device), imageOptions(), func(rootDir string) error {
		var err error
		if rel, err = image.ReadOSRelease(rootDir); err != nil {
			return err
		}
		if hostname, err = provision.Hostname(rootDir); err != nil {
			logger.Debugf("%v", err)
		}
		// an image that was never given an identity has no device.yaml
		if dev, err = provision.ReadDeviceConf(rootDir); err != nil {
			logger.Debugf("%v", err)
			dev = &provision.DeviceConf{}
		}
		return nil
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(Stdout, 5, 3, 2, ' ', 0)
	fmt.Fprintf(w, i18n.G("os:\t%s\n"), orDash(rel.PrettyName))
	fmt.Fprintf(w, i18n.G("hostname:\t%s\n"), orDash(hostname))
	fmt.Fprintf(w, i18n.G("device-name:\t%s\n"), orDash(dev.DeviceName))
	fmt.Fprintf(w, i18n.G("group:\t%s\n"), orDash(dev.Group))
	fmt.Fprintf(w, i18n.G("server-url:\t%s\n"), orDash(dev.ServerURL))
	return w.Flush()
}
