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

package autoboot

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// ConfigFileName is the autoboot configuration file inside the environment
// directory.
const ConfigFileName = "autoboot.cfg"

// DefaultConfigPath is used when the environment directory is unknown.
const DefaultConfigPath = "/vol/external01/wiiu/" + ConfigFileName

// maxConfigLine bounds how much of the first line is considered.
const maxConfigLine = 127

// ConfigPath returns the autoboot.cfg path for an environment directory.
func ConfigPath(environmentDir string) string {
	if environmentDir == "" {
		return DefaultConfigPath
	}
	return filepath.Join(environmentDir, ConfigFileName)
}

// ReadAutobootOption reads the configured option from path. A missing file
// or unknown content yields OptionNone.
func ReadAutobootOption(path string) BootOption {
	f, err := os.Open(path) //nolint:gosec // Config path is expected
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Msgf("failed to open %s", path)
		}
		return OptionNone
	}
	defer func() { _ = f.Close() }()

	reader := bufio.NewReaderSize(f, maxConfigLine+1)
	line, err := reader.ReadSlice('\n')
	if err != nil && len(line) == 0 {
		return OptionNone
	}
	if len(line) > maxConfigLine {
		line = line[:maxConfigLine]
	}
	return ParseBootOption(string(line))
}

// WriteAutobootOption stores o in path, writing "none" for OptionNone.
func WriteAutobootOption(path string, o BootOption) error {
	value := noneKey
	if o.Valid() {
		value = o.String()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:gosec // Shared SD card directory
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(value), 0o644); err != nil { //nolint:gosec // Config is not secret
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
