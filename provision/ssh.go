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

package provision

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/TheCacophonyProject/cardtool/config"
	"github.com/TheCacophonyProject/cardtool/dirs"
)

// EnableSSHAtBoot makes the image start its SSH daemon on boot.
func EnableSSHAtBoot(rootDir string) error {
	fs := rootFs(rootDir)
	_, err := fs.Stat(dirs.SSHMarker)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("cannot enable ssh: %v", err)
	}
	f, err := fs.Create(dirs.SSHMarker)
	if err != nil {
		return fmt.Errorf("cannot enable ssh: %v", err)
	}
	return f.Close()
}

// ValidateSSHKey checks that text holds a single public key in
// authorized_keys format and returns it without surrounding whitespace.
func ValidateSSHKey(text string) (string, error) {
	key := strings.TrimSpace(text)
	if key == "" {
		return "", errors.New("invalid ssh public key: empty")
	}
	if strings.Contains(key, "\n") {
		return "", errors.New("invalid ssh public key: more than one line")
	}
	if _, _, _, _, err := ssh.ParseAuthorizedKey([]byte(key)); err != nil {
		return "", fmt.Errorf("invalid ssh public key: %v", err)
	}
	return key, nil
}

// AddSSHKey appends key to the authorized keys of user. Adding the same
// key twice leaves two copies.
func AddSSHKey(rootDir, key string, user config.User) error {
	fs := rootFs(rootDir)
	sshDir := dirs.SSHDir(user.Name)
	authKeys := dirs.AuthorizedKeys(user.Name)

	if err := fs.MkdirAll(sshDir, 0700); err != nil {
		return fmt.Errorf("cannot create %s: %v", sshDir, err)
	}
	f, err := fs.OpenFile(authKeys, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0600)
	if err != nil {
		return fmt.Errorf("cannot open %s: %v", authKeys, err)
	}
	_, err = f.WriteString("\n" + strings.TrimSpace(key) + "\n")
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("cannot write %s: %v", authKeys, err)
	}

	for _, p := range []string{sshDir, authKeys} {
		if err := fs.Chown(p, user.UID, user.GID); err != nil {
			return fmt.Errorf("cannot change owner of %s: %v", p, err)
		}
	}
	return nil
}
