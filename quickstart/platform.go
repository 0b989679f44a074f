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
	"context"
	"io"

	"github.com/google/uuid"
)

// Account slot matching.
const (
	NumAccountSlots   = 13
	AccountPrefixSize = 8
)

// AppLaunchParam is the quick start request left behind by the platform menu.
type AppLaunchParam struct {
	EntryID     uint64
	AccountUUID uuid.UUID
}

// TitleInfo describes an installed or inserted title.
type TitleInfo struct {
	Path    string
	Device  string
	TitleID uint64
	Version uint16
}

// Platform is the set of system services the Dispatcher consumes.
type Platform interface {
	// BootCheck blocks while the platform quick start menu is shown and
	// reports whether a quick start request is pending.
	BootCheck(ctx context.Context) (bool, error)
	// AppLaunchParam returns the pending quick start request.
	AppLaunchParam(ctx context.Context) (AppLaunchParam, error)

	TitleExists(titleID uint64) bool
	// DiscTitles lists the titles on the optical drive. An empty list means
	// no disc is inserted.
	DiscTitles() ([]uint64, error)
	TitleInfo(titleID uint64) (TitleInfo, error)

	// LaunchTitle applies the title's patch data and launches it.
	LaunchTitle(titleID uint64, info TitleInfo) error
	LaunchQuickStartSettings() error
	LaunchSystemSettings() error
	SwitchToApplet(applet Applet) error
	BootSystemMenu() error
	BootSecondaryMenu() error
}

// Accounts gives access to the console account slots.
type Accounts interface {
	// AccountUUID returns the UUID stored in slot, or an error if the slot
	// is empty.
	AccountUUID(slot int) (uuid.UUID, error)
	// LoadAccount makes slot the active console account.
	LoadAccount(slot int) error
}

// HomebrewLoader starts homebrew executables. Failures should be reported
// as *LaunchError.
type HomebrewLoader interface {
	LaunchHomebrew(path string) error
}

// AppletStatus is a lifecycle message delivered while an applet runs.
type AppletStatus int

// Applet lifecycle statuses.
const (
	StatusInForeground AppletStatus = iota
	StatusInBackground
	StatusReleaseForeground
	StatusExiting
)

func (s AppletStatus) String() string {
	switch s {
	case StatusInForeground:
		return "in-foreground"
	case StatusInBackground:
		return "in-background"
	case StatusReleaseForeground:
		return "release-foreground"
	case StatusExiting:
		return "exiting"
	default:
		return "unknown"
	}
}

// AppletEvents is the process lifecycle message source.
type AppletEvents interface {
	// ProcessMessages returns the next lifecycle status.
	ProcessMessages() AppletStatus
	// DrawDoneRelease acknowledges a foreground release.
	DrawDoneRelease()
	// Shutdown tears the message source down before exit.
	Shutdown()
}

// DiscPrompt is the interactive insert-disc screen.
type DiscPrompt interface {
	// Show displays the prompt. wrongDisc asks the user to eject the
	// inserted disc first.
	Show(wrongDisc bool)
	// Aborted reports whether the user cancelled since the last call.
	Aborted() bool
	// Close removes the prompt.
	Close()
}

// StreamOpener constructs the stream the database is loaded from. An error
// is only returned when the stream cannot be constructed at all; problems
// with the path surface on the first read.
type StreamOpener interface {
	OpenStream(path, mode string) (io.ReadSeekCloser, error)
}

// StreamOpenerFunc adapts a function to StreamOpener.
type StreamOpenerFunc func(path, mode string) (io.ReadSeekCloser, error)

// OpenStream calls f(path, mode).
func (f StreamOpenerFunc) OpenStream(path, mode string) (io.ReadSeekCloser, error) {
	return f(path, mode)
}

// Stopper is a guard armed around BootCheck.
type Stopper interface {
	Stop()
}
