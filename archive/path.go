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

package archive

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Path is a database location inside a backup archive.
type Path struct {
	ArchivePath string
	// InternalPath is empty when the database should be detected.
	InternalPath string
}

// archiveExtensions are the supported archive extensions.
var archiveExtensions = []string{".zip", ".7z", ".rar"}

// splitArchive finds the first "<ext>/" in p and splits around it.
func splitArchive(p string) (archivePath, internalPath string, ok bool) {
	lower := strings.ToLower(filepath.ToSlash(p))
	for _, ext := range archiveExtensions {
		if idx := strings.Index(lower, ext+"/"); idx >= 0 {
			end := idx + len(ext)
			return p[:end], p[end+1:], true
		}
	}
	return "", "", false
}

// ParsePath recognises paths such as
// "/backups/mlc.7z/usr/save/00050010/10066000/user/common/quickstart.db" or
// a bare "/backups/mlc.zip". It returns nil without error when path does not
// name an existing archive, so callers can fall back to a plain file.
//
//nolint:nilnil // nil path means "not an archive"
func ParsePath(path string) (*Path, error) {
	archivePath, internalPath, ok := splitArchive(path)
	if !ok {
		if !IsArchiveExtension(strings.ToLower(filepath.Ext(path))) {
			return nil, nil
		}
		archivePath, internalPath = path, ""
	}

	if _, err := os.Stat(archivePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat archive %s: %w", archivePath, err)
	}
	return &Path{ArchivePath: archivePath, InternalPath: internalPath}, nil
}

// IsArchivePath reports whether path looks like an archive reference. It
// does not touch the file system.
func IsArchivePath(path string) bool {
	if _, _, ok := splitArchive(path); ok {
		return true
	}
	return IsArchiveExtension(strings.ToLower(filepath.Ext(path)))
}
