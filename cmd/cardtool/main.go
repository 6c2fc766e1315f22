// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2014-2015 Canonical Ltd
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

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/jessevdk/go-flags"
	"golang.org/x/sys/unix"

	"github.com/TheCacophonyProject/cardtool/config"
	"github.com/TheCacophonyProject/cardtool/i18n"
	"github.com/TheCacophonyProject/cardtool/image"
	"github.com/TheCacophonyProject/cardtool/logger"
)

// Standard streams, redirected for testing.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

var osGeteuid = unix.Geteuid

type options struct {
	Debug bool `long:"debug"`
}

type argDesc struct {
	name string
	desc string
}

var optionsData options

// toolConfig is loaded before any command runs.
var toolConfig = config.Default()

// ErrExtraArgs is returned if extra arguments to a command are found
var ErrExtraArgs = errors.New(i18n.G("too many arguments for command"))

var errNotRoot = errors.New(i18n.G("not running as root, sudo?"))

// cmdInfo holds information needed to call parser.AddCommand(...).
type cmdInfo struct {
	name, shortHelp, longHelp string
	builder                   func() flags.Commander
	optDescs                  map[string]string
	argDescs                  []argDesc
	subcommands               []*cmdInfo
}

// commands holds information about all top-level commands.
var commands []*cmdInfo

// addCommand replaces parser.addCommand() in a way that is compatible with
// re-constructing a pristine parser.
func addCommand(name, shortHelp, longHelp string, builder func() flags.Commander, optDescs map[string]string, argDescs []argDesc) *cmdInfo {
	info := &cmdInfo{
		name:      name,
		shortHelp: shortHelp,
		longHelp:  longHelp,
		builder:   builder,
		optDescs:  optDescs,
		argDescs:  argDescs,
	}
	commands = append(commands, info)
	return info
}

// cmdGroup is a command that only holds subcommands.
type cmdGroup struct{}

func (*cmdGroup) Execute([]string) error {
	return &flags.Error{Type: flags.ErrCommandRequired, Message: "subcommand required"}
}

// addGroup adds a top-level command whose work is done by its
// subcommands.
func addGroup(name, shortHelp, longHelp string) *cmdInfo {
	return addCommand(name, shortHelp, longHelp, func() flags.Commander {
		return &cmdGroup{}
	}, nil, nil)
}

func (info *cmdInfo) addSubcommand(name, shortHelp, longHelp string, builder func() flags.Commander, optDescs map[string]string, argDescs []argDesc) *cmdInfo {
	sub := &cmdInfo{
		name:      name,
		shortHelp: shortHelp,
		longHelp:  longHelp,
		builder:   builder,
		optDescs:  optDescs,
		argDescs:  argDescs,
	}
	info.subcommands = append(info.subcommands, sub)
	return sub
}

func lintDesc(cmdName, optName, desc, origDesc string) {
	if len(optName) == 0 {
		logger.Panicf("option on %q has no name", cmdName)
	}
	if len(origDesc) != 0 {
		logger.Panicf("description of %s's %q of %q set from tag (=> no i18n)", cmdName, optName, origDesc)
	}
	if len(desc) > 0 {
		if !unicode.IsUpper(([]rune)(desc)[0]) {
			logger.Panicf("description of %s's %q not uppercase: %q", cmdName, optName, desc)
		}
	}
}

func lintArg(cmdName, optName, desc, origDesc string) {
	lintDesc(cmdName, optName, desc, origDesc)
	if optName[0] != '<' || optName[len(optName)-1] != '>' {
		logger.Panicf("argument %q's %q should have <>s", cmdName, optName)
	}
}

func addToParser(parent *flags.Command, c *cmdInfo) {
	cmd, err := parent.AddCommand(c.name, c.shortHelp, strings.TrimSpace(c.longHelp), c.builder())
	if err != nil {
		logger.Panicf("cannot add command %q: %v", c.name, err)
	}

	opts := cmd.Options()
	if c.optDescs != nil && len(opts) != len(c.optDescs) {
		logger.Panicf("wrong number of option descriptions for %s: expected %d, got %d", c.name, len(opts), len(c.optDescs))
	}
	for _, opt := range opts {
		name := opt.LongName
		if name == "" {
			name = string(opt.ShortName)
		}
		desc, ok := c.optDescs[name]
		if !(c.optDescs == nil || ok) {
			logger.Panicf("%s missing description for %s", c.name, name)
		}
		lintDesc(c.name, name, desc, opt.Description)
		if desc != "" {
			opt.Description = desc
		}
	}

	args := cmd.Args()
	if c.argDescs != nil && len(args) != len(c.argDescs) {
		logger.Panicf("wrong number of argument descriptions for %s: expected %d, got %d", c.name, len(args), len(c.argDescs))
	}
	for i, arg := range args {
		name, desc := arg.Name, ""
		if c.argDescs != nil {
			name = c.argDescs[i].name
			desc = c.argDescs[i].desc
		}
		lintArg(c.name, name, desc, arg.Description)
		arg.Name = name
		arg.Description = desc
	}

	for _, sub := range c.subcommands {
		addToParser(cmd, sub)
	}
}

// Parser creates and populates a fresh parser.
// Since commands have local state a fresh parser is required to isolate tests
// from each other.
func Parser() *flags.Parser {
	optionsData = options{}
	parser := flags.NewParser(&optionsData, flags.HelpFlag|flags.PassDoubleDash)
	parser.ShortDescription = i18n.G("Provision Cacophony Project SD card images")
	parser.LongDescription = i18n.G(`
Update the identity, WiFi and SSH details of a Cacophony Project Raspbian
image stored on an SD card. The card's partitions are mounted for the
duration of a command and unmounted again before it returns.
`)
	parser.FindOptionByLongName("debug").Description = i18n.G("Show debug output")
	parser.CommandHandler = prepareAndExecute

	for _, c := range commands {
		addToParser(parser.Command, c)
	}
	return parser
}

// prepareAndExecute runs before every command: only root may mount
// devices.
func prepareAndExecute(command flags.Commander, args []string) error {
	if command == nil {
		return nil
	}
	if osGeteuid() != 0 {
		return errNotRoot
	}
	if optionsData.Debug {
		logger.EnableDebug()
	}
	cfg, err := config.Load(config.Path())
	if err != nil {
		return err
	}
	toolConfig = cfg
	return command.Execute(args)
}

func imageOptions() *image.Options {
	return &image.Options{OSID: toolConfig.OSID}
}

func init() {
	err := logger.SimpleSetup()
	if err != nil {
		fmt.Fprintf(Stderr, i18n.G("WARNING: failed to activate logging: %v\n"), err)
	}
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(Stderr, i18n.G("error: %v\n"), err)
		os.Exit(1)
	}
}

// unknownArg returns the first argument that is neither an option nor
// part of the chain of active commands.
func unknownArg(parser *flags.Parser, args []string) string {
	var chain []string
	for cmd := parser.Command.Active; cmd != nil; cmd = cmd.Active {
		chain = append(chain, cmd.Name)
	}
	for _, arg := range args {
		if strings.HasPrefix(arg, "-") {
			continue
		}
		if len(chain) > 0 && arg == chain[0] {
			chain = chain[1:]
			continue
		}
		return arg
	}
	return ""
}

func run(args []string) error {
	parser := Parser()
	_, err := parser.ParseArgs(args)
	if err == nil {
		return nil
	}

	var e *flags.Error
	if !errors.As(err, &e) {
		return err
	}
	switch e.Type {
	case flags.ErrHelp:
		parser.WriteHelp(Stdout)
		return nil
	case flags.ErrCommandRequired:
		parser.WriteHelp(Stdout)
		if parser.Command.Active == nil {
			return errors.New(i18n.G("no command given"))
		}
		return errors.New(i18n.G("no subcommand given"))
	case flags.ErrUnknownCommand:
		parser.WriteHelp(Stdout)
		return fmt.Errorf(i18n.G(`unknown command %q, see "cardtool --help"`), unknownArg(parser, args))
	}
	return err
}
