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

// Package dirs lists the fixed locations of the files cardtool reads and
// rewrites. All paths are absolute inside the provisioned image; join them
// with the directory the image root is mounted at to reach the real file.
package dirs

import (
	"path/filepath"
)

const (
	// OSRelease identifies the distribution of the image.
	OSRelease = "/etc/os-release"

	// MinionID holds the salt minion identity of the device.
	MinionID = "/etc/salt/minion_id"

	Hostname = "/etc/hostname"
	Hosts    = "/etc/hosts"

	UploaderConf     = "/etc/thermal-uploader.yaml"
	UploaderPrivConf = "/etc/thermal-uploader-priv.yaml"

	DeviceConf     = "/etc/cacophony/device.yaml"
	DevicePrivConf = "/etc/cacophony/device-priv.yaml"

	WpaSupplicantConf = "/etc/wpa_supplicant/wpa_supplicant.conf"

	// BootDir is where the boot partition is mounted under the root.
	BootDir = "/boot"

	// SSHMarker makes the image start sshd on boot when present.
	SSHMarker = "/boot/ssh"

	homeDir = "/home"
)

// SSHDir returns the ssh directory of the given user.
func SSHDir(user string) string {
	return filepath.Join(homeDir, user, ".ssh")
}

// AuthorizedKeys returns the authorized_keys file of the given user.
func AuthorizedKeys(user string) string {
	return filepath.Join(SSHDir(user), "authorized_keys")
}
