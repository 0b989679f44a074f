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
	"bytes"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ZaparooProject/go-autoboot/launchinfo"
)

// TitleChecker reports whether a title is installed.
type TitleChecker interface {
	TitleExists(titleID uint64) bool
}

// DetectRegion picks the region whose system settings title is installed,
// checking JPN, USA then EUR. It defaults to EUR.
func DetectRegion(tc TitleChecker, t Tables) launchinfo.Region {
	for _, region := range launchinfo.AllRegions {
		if tc.TitleExists(t.SettingsTitle(region)) {
			return region
		}
	}
	return launchinfo.RegionEUR
}

// MatchAccount returns the first slot whose UUID shares its leading
// AccountPrefixSize bytes with id.
func MatchAccount(accounts Accounts, id uuid.UUID) (int, bool) {
	for slot := range NumAccountSlots {
		slotID, err := accounts.AccountUUID(slot)
		if err != nil {
			continue
		}
		if bytes.Equal(slotID[:AccountPrefixSize], id[:AccountPrefixSize]) {
			return slot, true
		}
	}
	return 0, false
}

// loadAccount activates the account matching id. Failures are logged only.
func loadAccount(accounts Accounts, id uuid.UUID) {
	if accounts == nil {
		return
	}
	slot, ok := MatchAccount(accounts, id)
	if !ok {
		log.Debug().Msgf("no console account matches %s", id)
		return
	}
	log.Debug().Msgf("load console account %d", slot)
	if err := accounts.LoadAccount(slot); err != nil {
		log.Warn().Err(err).Msgf("failed to load console account %d", slot)
	}
}
