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

// Package image mounts the partitions of an SD card image and makes sure
// they are unmounted again, whatever happens in between.
package image

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/TheCacophonyProject/cardtool/dirs"
	"github.com/TheCacophonyProject/cardtool/logger"
	"github.com/TheCacophonyProject/cardtool/mount"
	"github.com/TheCacophonyProject/cardtool/partition"
)

// DefaultOSID is the os-release ID of the images cardtool provisions.
const DefaultOSID = "raspbian"

var tempDirBase = ""

// State is a step in the lifetime of a Mount.
type State int

const (
	Idle State = iota
	PartitionsResolved
	RootMounted
	BootMounted
	Ready
	Released
	Failed
)

var stateNames = map[State]string{
	Idle:               "idle",
	PartitionsResolved: "partitions-resolved",
	RootMounted:        "root-mounted",
	BootMounted:        "boot-mounted",
	Ready:              "ready",
	Released:           "released",
	Failed:             "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// NotExpectedError is returned when the mounted image is not the
// expected operating system.
type NotExpectedError struct {
	Device string
	OSID   string
}

func (e *NotExpectedError) Error() string {
	return fmt.Sprintf("%s does not contain a %s image", e.Device, e.OSID)
}

// Options modify how an image is opened.
type Options struct {
	// OSID is the os-release ID the image must have; DefaultOSID if empty.
	OSID string
}

func (opts *Options) osID() string {
	if opts == nil || opts.OSID == "" {
		return DefaultOSID
	}
	return opts.OSID
}

// Mount is an image whose root and boot partitions are mounted and whose
// operating system was checked.
type Mount struct {
	device string
	dir    string
	stack  *mount.Stack
	state  State
}

func (m *Mount) setState(s State) {
	logger.Debugf("image %s: %s -> %s", m.device, m.state, s)
	m.state = s
}

// Dir returns the directory the root partition is mounted at.
func (m *Mount) Dir() string {
	return m.dir
}

// State returns the current state of m.
func (m *Mount) State() State {
	return m.state
}

// Open resolves the partitions of device, mounts root and then boot
// inside it, and checks the image. On failure everything that was
// mounted is unmounted again before returning.
func Open(device string, opts *Options) (*Mount, error) {
	m := &Mount{device: device, state: Idle}
	osID := opts.osID()

	boot, root, err := partition.Resolve(device)
	if err != nil {
		m.setState(Failed)
		return nil, err
	}
	m.setState(PartitionsResolved)

	dir, err := os.MkdirTemp(tempDirBase, "cardtool-")
	if err != nil {
		m.setState(Failed)
		return nil, fmt.Errorf("cannot create mount point: %v", err)
	}
	m.dir = dir

	stack := mount.NewStack()
	err = func() error {
		if _, err := stack.Acquire(root, dir); err != nil {
			return err
		}
		m.setState(RootMounted)
		if _, err := stack.Acquire(boot, filepath.Join(dir, dirs.BootDir)); err != nil {
			return err
		}
		m.setState(BootMounted)
		if !IsExpectedOS(dir, osID) {
			return &NotExpectedError{Device: device, OSID: osID}
		}
		return nil
	}()
	if err != nil {
		m.setState(Failed)
		if rerr := m.teardown(stack); rerr != nil {
			logger.Noticef("cannot clean up after failing to open %s: %v", device, rerr)
			err = errors.Join(err, rerr)
		}
		return nil, err
	}

	m.stack = stack.Detach()
	m.setState(Ready)
	return m, nil
}

// teardown unmounts stack and removes the mount point, which is only
// done when nothing is left mounted on it.
func (m *Mount) teardown(stack *mount.Stack) error {
	if err := stack.Release(); err != nil {
		return err
	}
	if err := os.Remove(m.dir); err != nil {
		return fmt.Errorf("cannot remove mount point: %v", err)
	}
	return nil
}

// Close unmounts the image. Only the first call has any effect.
func (m *Mount) Close() error {
	if m.state == Released || m.state == Failed {
		return nil
	}
	if err := m.teardown(m.stack); err != nil {
		m.setState(Failed)
		return fmt.Errorf("cannot close %s: %w", m.device, err)
	}
	m.setState(Released)
	return nil
}

// WithMount opens device, calls f with the root directory and closes
// device again. An error from f is preferred over one from closing.
func WithMount(device string, opts *Options, f func(rootDir string) error) (err error) {
	m, err := Open(device, opts)
	if err != nil {
		return err
	}
	defer func() {
		cerr := m.Close()
		if cerr == nil {
			return
		}
		if err != nil {
			logger.Noticef("%v", cerr)
			return
		}
		err = cerr
	}()
	return f(m.Dir())
}
