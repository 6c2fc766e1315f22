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

package main_test

import (
	"crypto/ed25519"
	"crypto/rand"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ssh"
	. "gopkg.in/check.v1"

	cardtool "github.com/TheCacophonyProject/cardtool/cmd/cardtool"
	"github.com/TheCacophonyProject/cardtool/testutil"
)

type sshSuite struct {
	BaseCardtoolSuite
}

var _ = Suite(&sshSuite{})

func (s *sshSuite) TestEnable(c *C) {
	err := cardtool.RunMain([]string{"ssh", "enable", "sdb"})
	c.Assert(err, IsNil)
	c.Check(s.Stdout(), Equals, "SSH daemon enabled at boot.\n")
	c.Check(s.bootPath("ssh"), testutil.FileEquals, "")
	c.Check(s.rootPath("boot/ssh"), testutil.FileAbsent)
	s.checkMountedOnce(c)
}

func (s *sshSuite) writeKey(c *C) (path, key string) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	c.Assert(err, IsNil)
	sshPub, err := ssh.NewPublicKey(pub)
	c.Assert(err, IsNil)
	key = strings.TrimSpace(string(ssh.MarshalAuthorizedKey(sshPub))) + " me@laptop"

	path = filepath.Join(c.MkDir(), "id_ed25519.pub")
	c.Assert(os.WriteFile(path, []byte(key+"\n"), 0644), IsNil)
	return path, key
}

func (s *sshSuite) TestAddKey(c *C) {
	keyFile, key := s.writeKey(c)

	err := cardtool.RunMain([]string{"ssh", "add-key", "sdb", keyFile})
	c.Assert(err, IsNil)
	c.Check(s.Stdout(), Equals, "SSH public key added for \"pi\" user.\n")
	c.Check(s.rootPath("home/pi/.ssh/authorized_keys"), testutil.FileEquals, "\n"+key+"\n")
	s.checkMountedOnce(c)
}

func (s *sshSuite) TestAddKeyTwice(c *C) {
	keyFile, key := s.writeKey(c)

	c.Assert(cardtool.RunMain([]string{"ssh", "add-key", "sdb", keyFile}), IsNil)
	c.Assert(cardtool.RunMain([]string{"ssh", "add-key", "sdb", keyFile}), IsNil)
	c.Check(s.rootPath("home/pi/.ssh/authorized_keys"), testutil.FileEquals, "\n"+key+"\n\n"+key+"\n")
}

func (s *sshSuite) TestAddKeyInvalid(c *C) {
	keyFile := filepath.Join(c.MkDir(), "key.pub")
	c.Assert(os.WriteFile(keyFile, []byte("not a key\n"), 0644), IsNil)

	err := cardtool.RunMain([]string{"ssh", "add-key", "sdb", keyFile})
	c.Assert(err, ErrorMatches, "invalid ssh public key: .*")
	c.Check(s.card.Calls(), HasLen, 0)
}

func (s *sshSuite) TestAddKeyMissingFile(c *C) {
	err := cardtool.RunMain([]string{"ssh", "add-key", "sdb", filepath.Join(c.MkDir(), "missing.pub")})
	c.Assert(err, ErrorMatches, "cannot read key file: .*")
	c.Check(s.card.Calls(), HasLen, 0)
}
