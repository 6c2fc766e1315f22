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

// Package mount keeps track of mounted filesystems so that they can be
// unmounted in the reverse order they were mounted in.
package mount

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/TheCacophonyProject/cardtool/logger"
	"github.com/TheCacophonyProject/cardtool/osutil"
)

var syncFilesystems = unix.Sync

// Binding is a source device mounted at a target directory.
type Binding struct {
	Source string
	Target string

	active bool
}

// Active reports whether the binding is still mounted.
func (b *Binding) Active() bool {
	return b.active
}

// Error is returned when a mount fails.
type Error struct {
	Source string
	Target string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("cannot mount %s at %s: %v", e.Source, e.Target, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// UnmountError is returned for every target that could not be unmounted.
type UnmountError struct {
	Target string
	Err    error
}

func (e *UnmountError) Error() string {
	return fmt.Sprintf("cannot unmount %s: %v", e.Target, e.Err)
}

func (e *UnmountError) Unwrap() error { return e.Err }

// Stack is an ordered set of mounts.
type Stack struct {
	bindings []*Binding
}

// NewStack returns an empty stack.
func NewStack() *Stack {
	return &Stack{}
}

// Acquire creates target if needed and mounts source on it. The binding
// is only pushed if the mount succeeded.
func (s *Stack) Acquire(source, target string) (*Binding, error) {
	if err := os.MkdirAll(target, 0755); err != nil {
		return nil, &Error{Source: source, Target: target, Err: err}
	}
	logger.Debugf("mounting %s at %s", source, target)
	if _, err := osutil.RunCmd("mount", source, target); err != nil {
		return nil, &Error{Source: source, Target: target, Err: err}
	}
	b := &Binding{Source: source, Target: target, active: true}
	s.bindings = append(s.bindings, b)
	return b, nil
}

// Release unmounts every binding, most recent first. A failure does not
// stop the remaining bindings from being unmounted; the failed bindings
// stay on the stack and all failures are returned together.
func (s *Stack) Release() error {
	if len(s.bindings) == 0 {
		return nil
	}
	syncFilesystems()

	var errs []error
	var kept []*Binding
	for i := len(s.bindings) - 1; i >= 0; i-- {
		b := s.bindings[i]
		logger.Debugf("unmounting %s", b.Target)
		if _, err := osutil.RunCmd("umount", b.Target); err != nil {
			uerr := &UnmountError{Target: b.Target, Err: err}
			logger.Noticef("%v", uerr)
			errs = append(errs, uerr)
			kept = append(kept, b)
			continue
		}
		b.active = false
	}
	// kept was filled in reverse
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	s.bindings = kept
	return errors.Join(errs...)
}

// Detach moves all bindings to a new stack, leaving s empty.
func (s *Stack) Detach() *Stack {
	detached := &Stack{bindings: s.bindings}
	s.bindings = nil
	return detached
}

// Len returns the number of bindings on the stack.
func (s *Stack) Len() int {
	return len(s.bindings)
}

// Bindings returns a copy of the bindings in the order they were mounted.
func (s *Stack) Bindings() []Binding {
	out := make([]Binding, len(s.bindings))
	for i, b := range s.bindings {
		out[i] = *b
	}
	return out
}
