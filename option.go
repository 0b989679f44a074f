// Copyright (c) 2025 Niema Moshiri and The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of go-autoboot.
//
// go-autoboot is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-autoboot is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-autoboot.  If not, see <https://www.gnu.org/licenses/>.

package autoboot

import (
	"fmt"
	"strings"
)

// BootOption is an entry of the boot selector menu. The numeric order is the
// menu order.
type BootOption int

// Boot options. OptionNone means no autoboot option is configured.
const (
	OptionNone BootOption = iota - 1
	OptionSystemMenu
	OptionHomebrewLauncher
	OptionVWiiSystemMenu
	OptionVWiiHomebrewChannel
)

// AllOptions lists every selectable option in menu order.
var AllOptions = []BootOption{
	OptionSystemMenu,
	OptionHomebrewLauncher,
	OptionVWiiSystemMenu,
	OptionVWiiHomebrewChannel,
}

var optionKeys = map[BootOption]string{
	OptionSystemMenu:          "wiiu_menu",
	OptionHomebrewLauncher:    "homebrew_launcher",
	OptionVWiiSystemMenu:      "vwii_system_menu",
	OptionVWiiHomebrewChannel: "vwii_homebrew_channel",
}

var optionLabels = map[BootOption]string{
	OptionSystemMenu:          "Wii U Menu",
	OptionHomebrewLauncher:    "Homebrew Launcher",
	OptionVWiiSystemMenu:      "vWii System Menu",
	OptionVWiiHomebrewChannel: "vWii Homebrew Channel",
}

const noneKey = "none"

// String returns the key stored in autoboot.cfg.
func (o BootOption) String() string {
	if key, ok := optionKeys[o]; ok {
		return key
	}
	if o == OptionNone {
		return noneKey
	}
	return fmt.Sprintf("BootOption(%d)", int(o))
}

// Label returns the menu text of the option.
func (o BootOption) Label() string {
	if label, ok := optionLabels[o]; ok {
		return label
	}
	return o.String()
}

// Valid reports whether o is a selectable option.
func (o BootOption) Valid() bool {
	_, ok := optionKeys[o]
	return ok
}

// ParseBootOption matches the start of line against the option keys, so
// trailing text such as a newline is ignored. Anything else, including
// "none", yields OptionNone.
func ParseBootOption(line string) BootOption {
	for _, o := range AllOptions {
		if strings.HasPrefix(line, optionKeys[o]) {
			return o
		}
	}
	return OptionNone
}
