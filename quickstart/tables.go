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

package quickstart

import (
	"github.com/ZaparooProject/go-autoboot/launchinfo"
)

// Title ids and masks used by the decision tree.
const (
	DefaultSentinelEntryID uint64 = 1
	DefaultHomebrewMask    uint64 = 0x0005000F << 32
	DefaultSecondaryMenu   uint64 = 0x0005001010004000

	// DiscTitleMask selects the upper half of a title id; a disc is only
	// accepted when that half equals DiscTitlePrefix.
	DiscTitleMask   uint64 = 0xFFFFFFFF00000000
	DiscTitlePrefix uint64 = 0x0005000000000000
)

// Tables holds the platform title ids the Dispatcher recognises. Region
// indexed arrays are in JPN, USA, EUR order.
type Tables struct {
	Applets         map[Applet][3]uint64
	SystemMenu      [3]uint64
	Settings        [3]uint64
	SentinelEntryID uint64
	HomebrewMask    uint64
	SecondaryMenu   uint64
}

// DefaultTables returns the title ids shipped with the platform.
func DefaultTables() Tables {
	return Tables{
		SentinelEntryID: DefaultSentinelEntryID,
		HomebrewMask:    DefaultHomebrewMask,
		SystemMenu:      [3]uint64{0x0005001010040000, 0x0005001010040100, 0x0005001010040200},
		Settings:        [3]uint64{0x0005001010047000, 0x0005001010047100, 0x0005001010047200},
		Applets: map[Applet][3]uint64{
			AppletBrowser:            {0x000500301001200A, 0x000500301001210A, 0x000500301001220A},
			AppletEShop:              {0x000500301001400A, 0x000500301001410A, 0x000500301001420A},
			AppletDownloadManagement: {0x000500301001800A, 0x000500301001810A, 0x000500301001820A},
			AppletCommunity:          {0x000500301001600A, 0x000500301001610A, 0x000500301001620A},
			AppletFriendList:         {0x000500301001500A, 0x000500301001510A, 0x000500301001520A},
			AppletTVCompanion:        {0x000500301001300A, 0x000500301001310A, 0x000500301001320A},
		},
		SecondaryMenu: DefaultSecondaryMenu,
	}
}

// SettingsTitle returns the system settings title id of region.
func (t Tables) SettingsTitle(region launchinfo.Region) uint64 {
	return t.Settings[region]
}

type classKind int

const (
	classSystemMenu classKind = iota + 1
	classSettings
	classApplet
	classSecondaryMenu
)

type titleClass struct {
	kind   classKind
	applet Applet
}

// classify builds the title id lookup used after the homebrew mask check.
// Earlier classes win when a title id appears in more than one list.
func (t Tables) classify() map[uint64]titleClass {
	m := make(map[uint64]titleClass)
	add := func(id uint64, c titleClass) {
		if id == 0 {
			return
		}
		if _, ok := m[id]; !ok {
			m[id] = c
		}
	}
	for _, id := range t.SystemMenu {
		add(id, titleClass{kind: classSystemMenu})
	}
	for _, id := range t.Settings {
		add(id, titleClass{kind: classSettings})
	}
	for _, a := range AllApplets {
		for _, id := range t.Applets[a] {
			add(id, titleClass{kind: classApplet, applet: a})
		}
	}
	add(t.SecondaryMenu, titleClass{kind: classSecondaryMenu})
	return m
}

// isHomebrew reports whether every bit of the homebrew mask is set.
func (t Tables) isHomebrew(titleID uint64) bool {
	return t.HomebrewMask != 0 && titleID&t.HomebrewMask == t.HomebrewMask
}

// IsWiiUDisc reports whether a title id found on optical media belongs to
// the native platform.
func IsWiiUDisc(titleID uint64) bool {
	return titleID&DiscTitleMask == DiscTitlePrefix
}
