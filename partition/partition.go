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

// Package partition finds the boot and root partitions of a block device.
package partition

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/TheCacophonyProject/cardtool/logger"
	"github.com/TheCacophonyProject/cardtool/osutil"
)

// ExpectedCount is the number of partitions a provisionable image has.
const ExpectedCount = 2

// CountError is returned when a device does not have exactly
// ExpectedCount partitions.
type CountError struct {
	Device   string
	Expected int
	Found    int
}

func (e *CountError) Error() string {
	return fmt.Sprintf("expected %d partitions on %s, found %d", e.Expected, e.Device, e.Found)
}

// DevicePath returns the device node for name. Bare names such as "sdb"
// are taken to live under /dev.
func DevicePath(name string) string {
	if strings.HasPrefix(name, "/") {
		return name
	}
	return "/dev/" + name
}

// Refresh asks the kernel to re-read the partition table of device.
func Refresh(device string) error {
	if _, err := osutil.RunCmd("partprobe", device); err != nil {
		return fmt.Errorf("cannot refresh partition table of %s: %v", device, err)
	}
	return nil
}

// List returns the partition device nodes of device in table order.
func List(device string) ([]string, error) {
	out, err := osutil.RunCmd("fdisk", "-l", device)
	if err != nil {
		return nil, fmt.Errorf("cannot list partitions of %s: %v", device, err)
	}
	return parseFdisk(out, device), nil
}

func parseFdisk(out []byte, device string) []string {
	var parts []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, device) {
			continue
		}
		fields := strings.Fields(line)
		// the "Disk /dev/sdb: ..." header does not start with the device
		if len(fields) > 0 && fields[0] != device {
			parts = append(parts, fields[0])
		}
	}
	return parts
}

// Resolve refreshes and lists the partitions of device and returns the
// first as boot and the second as root.
func Resolve(device string) (boot, root string, err error) {
	if err := Refresh(device); err != nil {
		return "", "", err
	}
	parts, err := List(device)
	if err != nil {
		return "", "", err
	}
	if len(parts) != ExpectedCount {
		return "", "", &CountError{Device: device, Expected: ExpectedCount, Found: len(parts)}
	}
	logger.Debugf("partitions of %s: boot %s, root %s", device, parts[0], parts[1])
	return parts[0], parts[1], nil
}
