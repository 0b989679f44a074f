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
	"errors"
	"os"
	"path"
	"strings"
	"time"

	"github.com/ZaparooProject/go-autoboot/quickstart"
)

var errWakeUnsupported = errors.New("gamepad cannot be woken on the host")

// LaunchTitle implements quickstart.Platform.
func (p *Platform) LaunchTitle(titleID uint64, info quickstart.TitleInfo) error {
	p.record("patch", "%016X v%d", titleID, info.Version)
	p.record("launch-title", "%016X from %s", titleID, info.Device)
	return nil
}

// LaunchQuickStartSettings implements quickstart.Platform.
func (p *Platform) LaunchQuickStartSettings() error {
	p.record("settings", "quick start")
	return nil
}

// LaunchSystemSettings implements quickstart.Platform.
func (p *Platform) LaunchSystemSettings() error {
	p.record("settings", "system")
	return nil
}

// SwitchToApplet implements quickstart.Platform.
func (p *Platform) SwitchToApplet(applet quickstart.Applet) error {
	p.record("applet", "%s", applet)
	return nil
}

// BootSystemMenu implements quickstart.Platform and autoboot.Launcher.
func (p *Platform) BootSystemMenu() error {
	p.record("system-menu", "")
	return nil
}

// BootSecondaryMenu implements quickstart.Platform.
func (p *Platform) BootSecondaryMenu() error {
	p.record("vwii-menu", "")
	return nil
}

// Relaunch implements autoboot.Launcher.
func (p *Platform) Relaunch(titleID uint64) error {
	p.record("relaunch", "%016X", titleID)
	return nil
}

// BootHomebrewLauncher implements autoboot.Launcher.
func (p *Platform) BootHomebrewLauncher() error {
	p.record("homebrew-launcher", "")
	return nil
}

// BootVWiiMenu implements autoboot.Launcher.
func (p *Platform) BootVWiiMenu() error {
	return p.BootSecondaryMenu()
}

// BootVWiiTitle implements autoboot.Launcher.
func (p *Platform) BootVWiiTitle(titleID uint64) error {
	p.record("vwii-title", "%016X", titleID)
	return nil
}

// LaunchHomebrew implements quickstart.HomebrewLoader. Only .rpx and .wuhb
// files on the SD card can be started.
func (p *Platform) LaunchHomebrew(homebrewPath string) error {
	sd := p.HostPath("/vol/external01")
	if info, err := os.Stat(sd); err != nil || !info.IsDir() {
		return &quickstart.LaunchError{Path: homebrewPath, Kind: quickstart.LoaderUnavailable, Err: err}
	}

	full := homebrewPath
	if !strings.HasPrefix(full, "/vol/") {
		full = path.Join("/vol/external01", full)
	}
	if !strings.HasPrefix(full, "/vol/external01/") {
		return &quickstart.LaunchError{Path: homebrewPath, Kind: quickstart.PathInvalid}
	}
	switch strings.ToLower(path.Ext(full)) {
	case ".rpx", ".wuhb":
	default:
		return &quickstart.LaunchError{Path: homebrewPath, Kind: quickstart.PathInvalid}
	}
	info, err := os.Stat(p.HostPath(full))
	if err != nil {
		return &quickstart.LaunchError{Path: homebrewPath, Kind: quickstart.PathInvalid, Err: err}
	}
	if info.IsDir() {
		return &quickstart.LaunchError{Path: homebrewPath, Kind: quickstart.PathInvalid}
	}
	p.record("homebrew", "%s", full)
	return nil
}

// ProcessMessages implements quickstart.AppletEvents by playing the
// applet script, then reporting exit.
func (p *Platform) ProcessMessages() quickstart.AppletStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.applet) == 0 {
		return quickstart.StatusExiting
	}
	st := p.applet[0]
	p.applet = p.applet[1:]
	return st
}

// DrawDoneRelease implements quickstart.AppletEvents.
func (p *Platform) DrawDoneRelease() {
	p.record("applet-release", "")
}

// Shutdown implements quickstart.AppletEvents.
func (p *Platform) Shutdown() {
	p.record("applet-shutdown", "")
}

// Exit records the process exit after an applet.
func (p *Platform) Exit() {
	p.record("exit", "")
}

// discPrompt is the insert-disc screen. The user aborts after
// Disc.AbortAfter polls.
type discPrompt struct {
	p *Platform
}

// DiscPrompt returns the platform's insert-disc screen.
func (p *Platform) DiscPrompt() quickstart.DiscPrompt {
	return discPrompt{p: p}
}

func (d discPrompt) Show(wrongDisc bool) {
	if wrongDisc {
		d.p.record("disc-prompt", "eject the inserted disc")
		return
	}
	d.p.record("disc-prompt", "insert disc")
}

func (d discPrompt) Aborted() bool {
	d.p.mu.Lock()
	defer d.p.mu.Unlock()
	d.p.promptPolls++
	return d.p.promptPolls > d.p.state.Disc.AbortAfter
}

func (d discPrompt) Close() {
	d.p.record("disc-prompt-closed", "")
}

// Connected implements watchdog.Peripheral.
func (p *Platform) Connected() bool {
	g := p.state.Gamepad
	if !g.Connected {
		return false
	}
	return g.DisconnectAfter == 0 || time.Since(p.opened) < time.Duration(g.DisconnectAfter)
}

// Wake implements watchdog.Peripheral.
func (p *Platform) Wake() error {
	p.record("gamepad-wake", "")
	return errWakeUnsupported
}

// RequestCancel implements watchdog.Canceller.
func (p *Platform) RequestCancel() {
	p.cancelOnce.Do(func() {
		p.record("quick-start-cancel", "")
		close(p.cancelled)
	})
}
