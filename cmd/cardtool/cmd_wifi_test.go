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
	"errors"

	. "gopkg.in/check.v1"

	cardtool "github.com/TheCacophonyProject/cardtool/cmd/cardtool"
	"github.com/TheCacophonyProject/cardtool/provision"
	"github.com/TheCacophonyProject/cardtool/testutil"
)

type wifiSuite struct {
	BaseCardtoolSuite
}

var _ = Suite(&wifiSuite{})

const wpaConfPath = "etc/wpa_supplicant/wpa_supplicant.conf"

func (s *wifiSuite) TestList(c *C) {
	err := cardtool.RunMain([]string{"wifi", "list", "sdb"})
	c.Assert(err, IsNil)
	c.Check(s.Stdout(), Equals, "Configured wifi networks:\nbushnet\n")
	s.checkMountedOnce(c)
}

func (s *wifiSuite) TestListNone(c *C) {
	s.writeRoot(c, wpaConfPath, "country=NZ\n")

	err := cardtool.RunMain([]string{"wifi", "list", "sdb"})
	c.Assert(err, IsNil)
	c.Check(s.Stdout(), Equals, "Configured wifi networks:\n(none)\n")
}

func (s *wifiSuite) TestListBroken(c *C) {
	s.writeRoot(c, wpaConfPath, "country=NZ\n}\n")

	err := cardtool.RunMain([]string{"wifi", "list", "sdb"})
	c.Assert(err, ErrorMatches, "cannot parse wifi configuration: line 2: unexpected }")
	s.checkMountedOnce(c)
}

func (s *wifiSuite) TestSet(c *C) {
	err := cardtool.RunMain([]string{"wifi", "set", "sdb", "home", "s3cret"})
	c.Assert(err, IsNil)
	c.Check(s.Stdout(), Equals, "home network configured.\n")
	c.Check(s.rootPath(wpaConfPath), testutil.FileEquals, defaultWpaConf+`
network={
    ssid="home"
    psk="s3cret"
}
`)
	s.checkMountedOnce(c)
}

func (s *wifiSuite) TestSetProtected(c *C) {
	err := cardtool.RunMain([]string{"wifi", "set", "sdb", "bushnet", "other"})
	c.Assert(err, ErrorMatches, `cannot change protected network "bushnet"`)
	var perr *provision.ProtectedSSIDError
	c.Check(errors.As(err, &perr), Equals, true)
	c.Check(s.card.Calls(), HasLen, 0)
	c.Check(s.rootPath(wpaConfPath), testutil.FileEquals, defaultWpaConf)
}

func (s *wifiSuite) TestRemove(c *C) {
	s.writeRoot(c, wpaConfPath, defaultWpaConf+"\nnetwork={\n    ssid=\"home\"\n    psk=\"pw\"\n}\n")

	err := cardtool.RunMain([]string{"wifi", "remove", "sdb", "home"})
	c.Assert(err, IsNil)
	c.Check(s.Stdout(), Equals, "home network removed.\n")
	c.Check(s.rootPath(wpaConfPath), testutil.FileEquals, defaultWpaConf)
	s.checkMountedOnce(c)
}

func (s *wifiSuite) TestRemoveUnknown(c *C) {
	err := cardtool.RunMain([]string{"wifi", "remove", "sdb", "home"})
	c.Assert(err, ErrorMatches, `network "home" is not configured`)
	c.Check(s.Stdout(), Equals, "")
	s.checkMountedOnce(c)
}

func (s *wifiSuite) TestRemoveProtected(c *C) {
	err := cardtool.RunMain([]string{"wifi", "remove", "sdb", "bushnet"})
	c.Assert(err, ErrorMatches, `cannot remove protected network "bushnet"`)
	c.Check(s.card.Calls(), HasLen, 0)
}

func (s *wifiSuite) TestClear(c *C) {
	s.writeRoot(c, wpaConfPath, `country=NZ

network={
    ssid="home"
    psk="pw"
}

network={
    ssid="bushnet"
    psk="feathers"
}

network={
    ssid="work"
    psk="pw2"
}
`)

	err := cardtool.RunMain([]string{"wifi", "clear", "sdb"})
	c.Assert(err, IsNil)
	c.Check(s.Stdout(), Equals, "All WiFi networks removed (2 networks).\n")
	c.Check(s.rootPath(wpaConfPath), testutil.FileEquals, `country=NZ

network={
    ssid="bushnet"
    psk="feathers"
}
`)
}

func (s *wifiSuite) TestClearSingle(c *C) {
	s.writeRoot(c, wpaConfPath, `network={
    ssid="bushnet"
    psk="feathers"
}

network={
    ssid="home"
    psk="pw"
}
`)

	err := cardtool.RunMain([]string{"wifi", "clear", "sdb"})
	c.Assert(err, IsNil)
	c.Check(s.Stdout(), Equals, "All WiFi networks removed (1 network).\n")
	s.checkMountedOnce(c)
}

func (s *wifiSuite) TestCountry(c *C) {
	err := cardtool.RunMain([]string{"wifi", "country", "sdb", "gb"})
	c.Assert(err, IsNil)
	c.Check(s.Stdout(), Equals, "WiFi country changed to 'GB'.\n")
	c.Check(s.rootPath(wpaConfPath), testutil.FileContains, "\ncountry=GB\n")
	s.checkMountedOnce(c)
}
