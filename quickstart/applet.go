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

	"github.com/rs/zerolog/log"
)

type appletState int

const (
	stateWaitingForForeground appletState = iota
	stateReleasing
	stateExiting
)

// waitForApplet services lifecycle messages while a switched-to applet runs.
// When the applet hands the foreground back after a release, the system
// menu is booted. The loop ends only when the process is told to exit.
func (d *Dispatcher) waitForApplet(ctx context.Context) {
	if d.Applets == nil {
		return
	}
	log.Debug().Msg("wait for applet")

	state := stateWaitingForForeground
	for state != stateExiting {
		switch d.Applets.ProcessMessages() {
		case StatusExiting:
			state = stateExiting
		case StatusReleaseForeground:
			d.Applets.DrawDoneRelease()
			state = stateReleasing
		case StatusInForeground:
			if state == stateReleasing {
				if err := d.Platform.BootSystemMenu(); err != nil {
					log.Warn().Err(err).Msg("failed to boot system menu")
				}
				state = stateWaitingForForeground
			}
		case StatusInBackground:
		}
		if state == stateExiting {
			break
		}
		if !sleep(ctx, d.Options.AppletPollInterval) {
			log.Debug().Msg("applet wait cancelled")
			break
		}
	}
	d.Applets.Shutdown()
}
