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

// Package autoboot implements a console boot selector.
//
// On every boot the Selector first relaunches the system transfer
// application if that is what is running, then gives a pending quick start
// request the chance to launch a title directly. When neither applies it
// boots the option stored in autoboot.cfg, showing the boot menu when no
// usable option is configured or the menu button is held.
package autoboot

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/rs/zerolog/log"

	"github.com/ZaparooProject/go-autoboot/quickstart"
)

// System transfer title ids, one per region.
var systemTransferTitles = [3]uint64{0x0005001010062000, 0x0005001010062100, 0x0005001010062200}

// IsSystemTransfer reports whether titleID is the system transfer
// application, which must be relaunched to run in its own context.
func IsSystemTransfer(titleID uint64) bool {
	for _, id := range systemTransferTitles {
		if id == titleID {
			return true
		}
	}
	return false
}

// Launcher boots the selector's targets.
type Launcher interface {
	// Relaunch restarts the given title in its own context.
	Relaunch(titleID uint64) error
	BootSystemMenu() error
	BootHomebrewLauncher() error
	BootVWiiMenu() error
	BootVWiiTitle(titleID uint64) error
}

// Menu is the interactive boot selector screen.
type Menu interface {
	// Choose shows items with autoboot highlighted and returns the option
	// picked and the autoboot option the user left configured.
	Choose(ctx context.Context, items []MenuItem, autoboot BootOption, updatesBlocked bool) (selected, newAutoboot BootOption, err error)
}

// UpdateWarner is implemented by menus that can warn that the system update
// folder exists.
type UpdateWarner interface {
	// WarnUpdatesNotBlocked reports whether updates are blocked once the
	// user dismissed the warning.
	WarnUpdatesNotBlocked(ctx context.Context) (blocked bool, err error)
}

// QuickStarter resolves pending quick start requests.
type QuickStarter interface {
	Run(ctx context.Context) (quickstart.Action, error)
}

// Env describes the boot being handled.
type Env struct {
	// SLC is the root of the compatibility SLC used to find the vWii
	// homebrew channel. Nil disables detection.
	SLC fs.FS
	// ConfigPath is the autoboot.cfg location.
	ConfigPath string
	// CurrentTitleID is the title the selector runs as.
	CurrentTitleID uint64
	// HomebrewLauncherInstalled is true when the launcher installer exists.
	HomebrewLauncherInstalled bool
	// MenuButtonHeld forces the menu.
	MenuButtonHeld bool
	// UpdatesBlocked is shown on the menu.
	UpdatesBlocked bool
	// UpdateWarning asks the menu to warn about the update folder before
	// the autoboot option is read.
	UpdateWarning bool
}

// Result reports what the Selector did.
type Result struct {
	QuickStart quickstart.Action
	Booted     BootOption
	// Relaunched is set when the system transfer title was restarted.
	Relaunched         bool
	MenuShown          bool
	UpdateWarningShown bool
}

// Selector runs one boot.
type Selector struct {
	Launcher   Launcher
	QuickStart QuickStarter
	Menu       Menu
}

// Boot handles one boot. Errors are only returned for failures the console
// cannot recover from; a failed launch of the chosen option is reported
// after the fallback to the system menu has been attempted.
func (s *Selector) Boot(ctx context.Context, env Env) (Result, error) {
	var res Result

	if IsSystemTransfer(env.CurrentTitleID) {
		log.Debug().Msgf("relaunching system transfer title %016X", env.CurrentTitleID)
		res.Relaunched = true
		if err := s.Launcher.Relaunch(env.CurrentTitleID); err != nil {
			return res, fmt.Errorf("relaunch %016X: %w", env.CurrentTitleID, err)
		}
		return res, nil
	}

	if s.QuickStart != nil {
		action, err := s.QuickStart.Run(ctx)
		if err != nil {
			return res, fmt.Errorf("quick start: %w", err)
		}
		res.QuickStart = action
		if action.Taken() {
			return res, nil
		}
	}

	if env.UpdateWarning {
		if w, ok := s.Menu.(UpdateWarner); ok {
			res.UpdateWarningShown = true
			blocked, err := w.WarnUpdatesNotBlocked(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("update warning failed")
			} else {
				env.UpdatesBlocked = blocked
			}
		}
	}

	avail := Availability{
		HomebrewLauncher: env.HomebrewLauncherInstalled,
		HomebrewChannel:  DetectHomebrewChannel(env.SLC),
	}
	configured := ReadAutobootOption(env.ConfigPath)
	selected := configured

	if s.Menu != nil && NeedsMenu(configured, avail, env.MenuButtonHeld) {
		res.MenuShown = true
		var err error
		selected, err = s.chooseFromMenu(ctx, env, avail, configured)
		if err != nil {
			return res, err
		}
	}

	res.Booted = Fallback(selected, avail)
	if err := s.boot(res.Booted, avail); err != nil {
		log.Warn().Err(err).Msgf("failed to boot %s", res.Booted)
		if res.Booted == OptionSystemMenu {
			return res, fmt.Errorf("boot %s: %w", res.Booted, err)
		}
		res.Booted = OptionSystemMenu
		if err := s.Launcher.BootSystemMenu(); err != nil {
			return res, fmt.Errorf("boot %s: %w", res.Booted, err)
		}
	}
	return res, nil
}

func (s *Selector) chooseFromMenu(
	ctx context.Context, env Env, avail Availability, configured BootOption,
) (BootOption, error) {
	items := BuildMenu(avail)
	selected, autoboot, err := s.Menu.Choose(ctx, items, configured, env.UpdatesBlocked)
	if err != nil {
		return OptionNone, fmt.Errorf("boot menu: %w", err)
	}
	if menuIndex(items, selected) < 0 {
		selected = OptionNone
	}
	if menuIndex(items, autoboot) < 0 {
		autoboot = OptionNone
	}
	if autoboot != configured {
		if err := WriteAutobootOption(env.ConfigPath, autoboot); err != nil {
			log.Warn().Err(err).Msg("failed to save autoboot option")
		}
	}
	return selected, nil
}

func (s *Selector) boot(o BootOption, avail Availability) error {
	log.Debug().Msgf("booting %s", o)
	switch o {
	case OptionHomebrewLauncher:
		return s.Launcher.BootHomebrewLauncher() //nolint:wrapcheck // wrapped by Boot
	case OptionVWiiSystemMenu:
		return s.Launcher.BootVWiiMenu() //nolint:wrapcheck // wrapped by Boot
	case OptionVWiiHomebrewChannel:
		return s.Launcher.BootVWiiTitle(avail.HomebrewChannel) //nolint:wrapcheck // wrapped by Boot
	default:
		return s.Launcher.BootSystemMenu() //nolint:wrapcheck // wrapped by Boot
	}
}
