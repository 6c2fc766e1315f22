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

package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/check.v1"
)

var cardMountScript = `
key=$(printf '%s' "$2" | tr '/' '_')
part=$(basename "$1")
if [ -e "FIXTURE/.fail-mount-$part" ]; then
    echo "mount: $2: cannot mount $1" >&2
    exit 32
fi
mkdir -p "FIXTURE/.mounts"
printf '%s' "$part" > "FIXTURE/.mounts/$key"
cp -a "FIXTURE/$part/." "$2"
`

var cardUmountScript = `
key=$(printf '%s' "$1" | tr '/' '_')
part=$(cat "FIXTURE/.mounts/$key")
if [ -e "FIXTURE/.fail-umount-$part" ]; then
    echo "umount: $1: target is busy." >&2
    exit 32
fi
rm -rf "FIXTURE/$part"
mkdir -p "FIXTURE/$part"
cp -a "$1/." "FIXTURE/$part"
find "$1" -mindepth 1 -delete
rm -f "FIXTURE/.mounts/$key"
`

// MockCard mocks partprobe, fdisk, mount and umount so that device looks
// like a card with the given partitions. Every partition is backed by the
// directory named after its basename under fixtureDir: mounting copies it
// to the target and unmounting copies the target back and empties it.
//
// Creating fixtureDir/.fail-mount-<part> or fixtureDir/.fail-umount-<part>
// makes mounting or unmounting that partition fail.
func MockCard(c *check.C, device string, partitions []string, fixtureDir string) *MockCmd {
	var fdisk strings.Builder
	fmt.Fprintf(&fdisk, "Disk %s: 14.9 GiB, 15931539456 bytes, 31116288 sectors\n\n", device)
	fdisk.WriteString("Device     Boot  Start      End  Sectors  Size Id Type\n")
	for i, part := range partitions {
		fmt.Fprintf(&fdisk, "%s  %d  %d  1000  500K 83 Linux\n", part, 8192+i*1000, 9191+i*1000)
		c.Assert(os.MkdirAll(filepath.Join(fixtureDir, filepath.Base(part)), 0755), check.IsNil)
	}

	cmd := MockCommand(c, "partprobe", "")
	cmd.Also("fdisk", "cat <<'EOF'\n"+fdisk.String()+"EOF")
	cmd.Also("mount", strings.Replace(cardMountScript, "FIXTURE", fixtureDir, -1))
	cmd.Also("umount", strings.Replace(cardUmountScript, "FIXTURE", fixtureDir, -1))
	return cmd
}

// MountCalls filters calls down to the mount and umount ones.
func MountCalls(calls [][]string) [][]string {
	var out [][]string
	for _, call := range calls {
		if call[0] == "mount" || call[0] == "umount" {
			out = append(out, call)
		}
	}
	return out
}
