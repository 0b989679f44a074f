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
	"time"

	"github.com/rs/zerolog/log"
)

// queryDisc inspects the optical drive. inserted is true for any disc;
// native is true only when one of its titles is a native title, in which
// case titleID is that title.
func (d *Dispatcher) queryDisc() (titleID uint64, inserted, native bool) {
	titles, err := d.Platform.DiscTitles()
	if err != nil {
		log.Debug().Err(err).Msg("disc query failed")
		return 0, false, false
	}
	if len(titles) == 0 {
		return 0, false, false
	}
	for _, id := range titles {
		if IsWiiUDisc(id) {
			return id, true, true
		}
	}
	return 0, true, false
}

// waitForDisc makes sure the disc for expected is available and returns the
// title id to launch. It returns false when the user aborts.
//
// An installed copy of the title wins outright. Otherwise the drive is
// polled briefly; a matching disc launches expected. Failing that the
// insert-disc prompt is shown until a native disc shows up or the user
// aborts. If a wrong disc was inserted it must be ejected first, after which
// any native disc is accepted.
func (d *Dispatcher) waitForDisc(ctx context.Context, expected uint64) (uint64, bool) {
	if d.Platform.TitleExists(expected) {
		return expected, true
	}

	var (
		discID   uint64
		inserted bool
		native   bool
	)
	for attempt := 0; ; attempt++ {
		discID, inserted, native = d.queryDisc()
		if native || attempt >= d.Options.DiscPollAttempts {
			break
		}
		if !sleep(ctx, d.Options.DiscPollInterval) {
			return 0, false
		}
	}

	wrongDisc := inserted && discID != expected
	if inserted && !wrongDisc {
		return expected, true
	}

	if d.Prompt == nil {
		log.Debug().Msg("no disc prompt available")
		return 0, false
	}

	log.Debug().Bool("wrongDisc", wrongDisc).Msgf("waiting for disc %016X", expected)
	d.Prompt.Show(wrongDisc)
	defer d.Prompt.Close()

	allowDisc := !wrongDisc
	for {
		if d.Prompt.Aborted() {
			log.Debug().Msg("disc prompt aborted")
			return 0, false
		}
		if id, _, ok := d.queryDisc(); ok {
			if allowDisc {
				log.Debug().Msgf("disc inserted: %016X", id)
				return id, true
			}
		} else {
			allowDisc = true
		}
		if !sleep(ctx, d.Options.PromptInterval) {
			return 0, false
		}
	}
}

// sleep waits for d or until ctx is done. It returns false if ctx ended.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
