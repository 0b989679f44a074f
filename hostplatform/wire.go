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
	autoboot "github.com/ZaparooProject/go-autoboot"
	"github.com/ZaparooProject/go-autoboot/quickstart"
	"github.com/ZaparooProject/go-autoboot/watchdog"
)

// Dispatcher wires a quick start dispatcher to every service of p, with
// the watchdog armed around the boot check.
func (p *Platform) Dispatcher(wd watchdog.Config) *quickstart.Dispatcher {
	d := quickstart.NewDispatcher(p, p)
	d.Accounts = p
	d.Homebrew = p
	d.Applets = p
	d.Prompt = p.DiscPrompt()
	d.Exit = p.Exit
	d.Watchdog = func() quickstart.Stopper {
		return watchdog.Start(wd, p, p)
	}
	return d
}

// Selector wires a boot selector to p, using d for quick start.
func (p *Platform) Selector(d *quickstart.Dispatcher) *autoboot.Selector {
	return &autoboot.Selector{
		Launcher:   p,
		QuickStart: d,
		Menu:       p.Menu(),
	}
}
