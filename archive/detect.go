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
	"fmt"
	"path"
	"strings"
)

// DatabaseFileName is the file name the system software stores the database under.
const DatabaseFileName = "quickstart.db"

// databaseExtensions are accepted when no entry carries DatabaseFileName.
var databaseExtensions = map[string]bool{
	".db":  true,
	".bin": true,
	".dat": true,
}

// IsDatabaseFile checks if an archive entry looks like a database image.
func IsDatabaseFile(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	return databaseExtensions[ext]
}

// DetectDatabaseFile picks the database image inside an archive. An entry named
// DatabaseFileName wins; otherwise the first entry with a database extension is used.
func DetectDatabaseFile(arc Archive, archivePath string) (string, error) {
	files, err := arc.List()
	if err != nil {
		return "", fmt.Errorf("list archive files: %w", err)
	}

	fallback := ""
	for _, file := range files {
		if strings.EqualFold(path.Base(file.Name), DatabaseFileName) {
			return file.Name, nil
		}
		if fallback == "" && IsDatabaseFile(file.Name) {
			fallback = file.Name
		}
	}
	if fallback != "" {
		return fallback, nil
	}

	return "", NoDatabaseError{Archive: archivePath}
}
