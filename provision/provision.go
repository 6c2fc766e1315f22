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

// Package provision patches the configuration files of a mounted image.
//
// Every function takes the directory the image's root partition is mounted
// at; paths inside the image are resolved relative to it.
package provision

import (
	"errors"
	"os"

	"github.com/spf13/afero"
)

var rootFs = func(rootDir string) afero.Fs {
	return afero.NewBasePathFs(afero.NewOsFs(), rootDir)
}

func tryRemove(fs afero.Fs, name string) error {
	if err := fs.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
