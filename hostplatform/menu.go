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

package hostplatform

import (
	"context"
	"strings"

	autoboot "github.com/ZaparooProject/go-autoboot"
)

// scriptedMenu answers the boot menu from State.Menu.
type scriptedMenu struct {
	p *Platform
}

// Menu returns the boot selector menu. An empty Menu.Select picks the first
// item and an empty Menu.Autoboot keeps the current autoboot option.
func (p *Platform) Menu() autoboot.Menu {
	return scriptedMenu{p: p}
}

func (m scriptedMenu) Choose(
	_ context.Context, items []autoboot.MenuItem, current autoboot.BootOption, updatesBlocked bool,
) (autoboot.BootOption, autoboot.BootOption, error) {
	labels := make([]string, len(items))
	for i, item := range items {
		labels[i] = item.Option.String()
	}
	m.p.record("menu", "%s (autoboot %s, updates blocked %v)", strings.Join(labels, ","), current, updatesBlocked)

	state := m.p.state.Menu
	selected := autoboot.OptionNone
	switch {
	case state.Select != "":
		selected = autoboot.ParseBootOption(state.Select)
	case len(items) > 0:
		selected = items[0].Option
	}

	autobootOpt := current
	if state.Autoboot != "" {
		autobootOpt = autoboot.ParseBootOption(state.Autoboot)
	}
	return selected, autobootOpt, nil
}
