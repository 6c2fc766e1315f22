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
	. "gopkg.in/check.v1"

	cardtool "github.com/TheCacophonyProject/cardtool/cmd/cardtool"
	"github.com/TheCacophonyProject/cardtool/testutil"
)

type infoSuite struct {
	BaseCardtoolSuite
}

var _ = Suite(&infoSuite{})

func (s *infoSuite) TestInfo(c *C) {
	s.writeRoot(c, "etc/hostname", "test200\n")
	s.writeRoot(c, "etc/cacophony/device.yaml", `server-url: "https://api.cacophony.org.nz"
group: "testgroup"
device-name: "test200"
`)

	err := cardtool.RunMain([]string{"info", "sdb"})
	c.Assert(err, IsNil)
	c.Check(s.Stdout(), Equals, `os:           Raspbian GNU/Linux 10 (buster)
hostname:     test200
device-name:  test200
group:        testgroup
server-url:   https://api.cacophony.org.nz
`)
	s.checkMountedOnce(c)
}

func (s *infoSuite) TestInfoUnprovisioned(c *C) {
	err := cardtool.RunMain([]string{"info", "sdb"})
	c.Assert(err, IsNil)
	c.Check(s.Stdout(), Equals, `os:           Raspbian GNU/Linux 10 (buster)
hostname:     raspberrypi
device-name:  -
group:        -
server-url:   -
`)
}

func (s *infoSuite) TestInfoChangesNothing(c *C) {
	c.Assert(cardtool.RunMain([]string{"info", "sdb"}), IsNil)
	c.Check(s.rootPath("etc/hostname"), testutil.FileEquals, "raspberrypi\n")
	c.Check(s.rootPath("etc/cacophony/device.yaml"), testutil.FileAbsent)
}
