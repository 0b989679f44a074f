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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

const (
	// UpdateDir is the system update folder. Replacing it with a file keeps
	// the console from downloading updates.
	UpdateDir = "/vol/storage_mlc01/sys/update"
	// UpdateSkipFile silences the update warning.
	UpdateSkipFile = "/vol/external01/wiiu/environments/skipUpdateWarn"
)

// Answers to the update warning in MenuState.UpdateWarning.
const (
	UpdateWarningContinue = "continue"
	UpdateWarningDelete   = "delete"
	UpdateWarningSkip     = "skip"
)

// checkUpdates blocks updates by creating a file at UpdateDir when nothing
// is there. warn is true when UpdateDir is a directory and the warning has
// not been silenced.
func (p *Platform) checkUpdates() (blocked, warn bool) {
	path := p.HostPath(UpdateDir)
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		_, err := os.Stat(p.HostPath(UpdateSkipFile))
		return false, err != nil
	case err == nil:
		return true, false
	case !errors.Is(err, fs.ErrNotExist):
		log.Warn().Err(err).Msg("failed to check the update folder")
		return false, false
	}

	if err := createBlockingFile(path); err != nil {
		log.Warn().Err(err).Msg("failed to block updates")
	} else {
		log.Info().Msgf("created %s as file", UpdateDir)
		p.record("block-updates", "%s", UpdateDir)
	}
	return true, false
}

func createBlockingFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create update parent: %w", err)
	}
	f, err := os.Create(path) //nolint:gosec // path is under the platform root
	if err != nil {
		return fmt.Errorf("create update file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("create update file: %w", err)
	}
	return nil
}

// WarnUpdatesNotBlocked implements autoboot.UpdateWarner with the answer
// from State.Menu.UpdateWarning.
func (m scriptedMenu) WarnUpdatesNotBlocked(context.Context) (bool, error) {
	answer := m.p.state.Menu.UpdateWarning
	if answer == "" {
		answer = UpdateWarningContinue
	}
	m.p.record("update-warning", "%s", answer)

	switch answer {
	case UpdateWarningDelete:
		path := m.p.HostPath(UpdateDir)
		if err := os.RemoveAll(path); err != nil {
			return false, fmt.Errorf("delete update folder: %w", err)
		}
		if err := createBlockingFile(path); err != nil {
			return false, err
		}
		return true, nil
	case UpdateWarningSkip:
		skip := m.p.HostPath(UpdateSkipFile)
		if err := os.MkdirAll(filepath.Dir(skip), 0o750); err != nil {
			return false, fmt.Errorf("create skip file: %w", err)
		}
		text := "If this file exists, the update warning is not shown\n"
		if err := os.WriteFile(skip, []byte(text), 0o600); err != nil {
			return false, fmt.Errorf("create skip file: %w", err)
		}
		return false, nil
	case UpdateWarningContinue:
		return false, nil
	default:
		return false, fmt.Errorf("unknown update warning answer %q", answer)
	}
}
