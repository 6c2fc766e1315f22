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
	"os"

	. "gopkg.in/check.v1"

	cardtool "github.com/TheCacophonyProject/cardtool/cmd/cardtool"
	"github.com/TheCacophonyProject/cardtool/testutil"
)

type idSuite struct {
	BaseCardtoolSuite
}

var _ = Suite(&idSuite{})

func (s *idSuite) TestID(c *C) {
	s.writeRoot(c, "etc/thermal-uploader-priv.yaml", "password: old\n")
	s.writeRoot(c, "etc/cacophony/device-priv.yaml", "device-id: 12\n")

	err := cardtool.RunMain([]string{"id", "sdb", "test200", "testgroup"})
	c.Assert(err, IsNil)
	c.Check(s.Stdout(), Equals, "Card updated.\n")
	c.Check(s.Stderr(), Equals, "")

	c.Check(s.rootPath("etc/salt/minion_id"), testutil.FileEquals, "test200")
	c.Check(s.rootPath("etc/hostname"), testutil.FileEquals, "test200\n")
	c.Check(s.rootPath("etc/hosts"), testutil.FileEquals,
		"127.0.0.1 localhost test200\n::1\t\tlocalhost ip6-localhost ip6-loopback\n")
	c.Check(s.rootPath("etc/thermal-uploader.yaml"), testutil.FileEquals, "directory: \"/var/spool/cptv\"\n")
	c.Check(s.rootPath("etc/thermal-uploader-priv.yaml"), testutil.FileAbsent)
	c.Check(s.rootPath("etc/cacophony/device.yaml"), testutil.FileEquals, `server-url: "https://api.cacophony.org.nz"
group: "testgroup"
device-name: "test200"
`)
	c.Check(s.rootPath("etc/cacophony/device-priv.yaml"), testutil.FileAbsent)
	s.checkMountedOnce(c)
}

func (s *idSuite) TestIDWithURL(c *C) {
	err := cardtool.RunMain([]string{"id", "--url=https://test.example.com", "/dev/sdb", "test200", "testgroup"})
	c.Assert(err, IsNil)
	c.Check(s.rootPath("etc/cacophony/device.yaml"), testutil.FileEquals, `server-url: "https://test.example.com"
group: "testgroup"
device-name: "test200"
`)
}

func (s *idSuite) TestIDFailureStillUnmounts(c *C) {
	// an image without a salt directory
	c.Assert(os.RemoveAll(s.rootPath("etc/salt")), IsNil)

	err := cardtool.RunMain([]string{"id", "sdb", "test200", "testgroup"})
	c.Assert(err, ErrorMatches, "cannot set minion id: .*")
	c.Check(s.Stdout(), Equals, "")
	s.checkMountedOnce(c)
	c.Check(s.rootPath("etc/hostname"), testutil.FileEquals, "raspberrypi\n")
}
