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

// Package quickstart resolves a pending quick start request into a single
// launch action.
//
// The Dispatcher waits for the platform's quick start menu to close, loads the
// launch info database, looks up the requested entry and walks a fixed
// decision tree over the record's title id: homebrew, system menu, system
// settings, built-in applets, the secondary-OS menu, optical disc titles and
// finally a generic title launch. Every failure along the way declines, so
// the caller falls through to its normal boot menu.
package quickstart

import "fmt"

// ActionKind identifies the launch action chosen by the Dispatcher.
type ActionKind int

// Launch actions.
const (
	Decline ActionKind = iota
	OpenQuickStartSettings
	LaunchHomebrew
	OpenSystemSettings
	SwitchToApplet
	BootSecondaryMenu
	LaunchTitle
)

func (k ActionKind) String() string {
	switch k {
	case Decline:
		return "decline"
	case OpenQuickStartSettings:
		return "quick-start-settings"
	case LaunchHomebrew:
		return "homebrew"
	case OpenSystemSettings:
		return "system-settings"
	case SwitchToApplet:
		return "applet"
	case BootSecondaryMenu:
		return "secondary-menu"
	case LaunchTitle:
		return "title"
	default:
		return fmt.Sprintf("ActionKind(%d)", int(k))
	}
}

// Applet is a built-in system application reached by a switch call.
type Applet int

// Built-in applets.
const (
	AppletBrowser Applet = iota
	AppletEShop
	AppletDownloadManagement
	AppletCommunity
	AppletFriendList
	AppletTVCompanion
)

// AllApplets lists every applet in table order.
var AllApplets = []Applet{
	AppletBrowser,
	AppletEShop,
	AppletDownloadManagement,
	AppletCommunity,
	AppletFriendList,
	AppletTVCompanion,
}

func (a Applet) String() string {
	switch a {
	case AppletBrowser:
		return "browser"
	case AppletEShop:
		return "eshop"
	case AppletDownloadManagement:
		return "download-management"
	case AppletCommunity:
		return "community"
	case AppletFriendList:
		return "friend-list"
	case AppletTVCompanion:
		return "tv-companion"
	default:
		return fmt.Sprintf("Applet(%d)", int(a))
	}
}

// ParseApplet parses the String form of an applet.
func ParseApplet(s string) (Applet, error) {
	for _, a := range AllApplets {
		if a.String() == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown applet %q", s)
}

// Action is the outcome of one dispatch.
type Action struct {
	// Path is the homebrew path for LaunchHomebrew.
	Path string
	Kind ActionKind
	// TitleID is the launched title for LaunchTitle, the matched title for
	// the other title-driven kinds and zero otherwise.
	TitleID uint64
	// Applet is set for SwitchToApplet.
	Applet Applet
}

// Taken reports whether a quick start action was taken. The boot flow shows
// its normal menu when it returns false.
func (a Action) Taken() bool {
	return a.Kind != Decline
}

func (a Action) String() string {
	switch a.Kind {
	case LaunchHomebrew:
		return fmt.Sprintf("%s(%s)", a.Kind, a.Path)
	case SwitchToApplet:
		return fmt.Sprintf("%s(%s)", a.Kind, a.Applet)
	case LaunchTitle:
		return fmt.Sprintf("%s(%016X)", a.Kind, a.TitleID)
	default:
		return a.Kind.String()
	}
}
