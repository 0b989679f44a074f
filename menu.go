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

import "slices"

// MenuItem is one line of the boot selector menu.
type MenuItem struct {
	Label  string
	Option BootOption
}

// Availability records which optional boot targets are installed.
type Availability struct {
	// HomebrewLauncher is true when the homebrew launcher installer exists.
	HomebrewLauncher bool
	// HomebrewChannel is the detected vWii homebrew channel, or 0.
	HomebrewChannel uint64
}

// Offers reports whether o can be booted.
func (a Availability) Offers(o BootOption) bool {
	switch o {
	case OptionSystemMenu, OptionVWiiSystemMenu:
		return true
	case OptionHomebrewLauncher:
		return a.HomebrewLauncher
	case OptionVWiiHomebrewChannel:
		return a.HomebrewChannel != 0
	default:
		return false
	}
}

// BuildMenu lists the available options in menu order.
func BuildMenu(a Availability) []MenuItem {
	items := make([]MenuItem, 0, len(AllOptions))
	for _, o := range AllOptions {
		if a.Offers(o) {
			items = append(items, MenuItem{Option: o, Label: o.Label()})
		}
	}
	return items
}

// NeedsMenu reports whether the menu has to be shown: nothing is configured,
// the configured option is not installed, or the user holds the menu button.
func NeedsMenu(configured BootOption, a Availability, menuButtonHeld bool) bool {
	return configured == OptionNone || !a.Offers(configured) || menuButtonHeld
}

// Fallback maps a selection to what can actually be booted. Homebrew
// targets that are missing fall back to their system menu and anything
// unknown boots the system menu.
func Fallback(selected BootOption, a Availability) BootOption {
	switch {
	case selected == OptionHomebrewLauncher && !a.HomebrewLauncher:
		return OptionSystemMenu
	case selected == OptionVWiiHomebrewChannel && a.HomebrewChannel == 0:
		return OptionVWiiSystemMenu
	case !selected.Valid():
		return OptionSystemMenu
	default:
		return selected
	}
}

// menuIndex returns the position of o in items, or -1.
func menuIndex(items []MenuItem, o BootOption) int {
	return slices.IndexFunc(items, func(item MenuItem) bool { return item.Option == o })
}
