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
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/TheCacophonyProject/cardtool/i18n"
	"github.com/TheCacophonyProject/cardtool/image"
	"github.com/TheCacophonyProject/cardtool/partition"
	"github.com/TheCacophonyProject/cardtool/provision"
)

type cmdSSHEnable struct {
	Positional deviceArg `positional-args:"yes" required:"yes"`
}

type cmdSSHAddKey struct {
	Positional struct {
		Device  string
		KeyFile flags.Filename
	} `positional-args:"yes" required:"yes"`
}

func init() {
	ssh := addGroup("ssh",
		i18n.G("Manage SSH access to an image"),
		i18n.G("The ssh command controls remote access to a provisioned device."))

	ssh.addSubcommand("enable",
		i18n.G("Enable the SSH daemon at boot"),
		i18n.G("The enable command makes the device start its SSH daemon when it boots."),
		func() flags.Commander { return &cmdSSHEnable{} },
		nil, []argDesc{deviceArgDesc})

	ssh.addSubcommand("add-key",
		i18n.G("Add an SSH public key"),
		i18n.G(`
The add-key command appends a public key to the authorized keys of the
device's default user. The key is checked before the card is touched.
`),
		func() flags.Commander { return &cmdSSHAddKey{} },
		nil, []argDesc{deviceArgDesc, {
			// TRANSLATORS: This needs to begin with < and end with >
			name: i18n.G("<key-file>"),
			// TRANSLATORS: This should not start with a lowercase letter.
			desc: i18n.G("A file holding the public key, e.g. ~/.ssh/id_ed25519.pub"),
		}})
}

func (x *cmdSSHEnable) Execute(args []string) error {
	if len(args) > 0 {
		return ErrExtraArgs
	}

	err := image.WithMount(partition.DevicePath(x.Positional.Device), imageOptions(), provision.EnableSSHAtBoot)
	if err != nil {
		return err
	}

	fmt.Fprintln(Stdout, i18n.G("SSH daemon enabled at boot."))
	return nil
}

func (x *cmdSSHAddKey) Execute(args []string) error {
	if len(args) > 0 {
		return ErrExtraArgs
	}

	data, err := os.ReadFile(string(x.Positional.KeyFile))
	if err != nil {
		return fmt.Errorf(i18n.G("cannot read key file: %v"), err)
	}
	key, err := provision.ValidateSSHKey(string(data))
	if err != nil {
		return err
	}

	user := toolConfig.User
	err = image.WithMount(partition.DevicePath(x.Positional.Device), imageOptions(), func(rootDir string) error {
		return provision.AddSSHKey(rootDir, key, user)
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(Stdout, i18n.G("SSH public key added for %q user.\n"), user.Name)
	return nil
}
