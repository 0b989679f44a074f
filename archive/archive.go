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

// Package archive reads launch-info database images out of console backup
// archives. It supports ZIP, 7z, and RAR formats.
package archive

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// MaxEntrySize bounds how much of a single archive entry is buffered.
// Database images are a few hundred kilobytes at most.
const MaxEntrySize = 16 * 1024 * 1024

// FileInfo contains information about a file in an archive.
type FileInfo struct {
	Name string // Full path within archive
	Size int64  // Uncompressed size
}

// Archive provides read access to files within an archive.
type Archive interface {
	// List returns all regular files in the archive.
	List() ([]FileInfo, error)

	// Open opens a file within the archive for sequential reading.
	// Returns the reader and the uncompressed size.
	Open(internalPath string) (io.ReadCloser, int64, error)

	// Close closes the archive.
	Close() error
}

// Open opens an archive file based on its extension.
// Supported formats: .zip, .7z, .rar
func Open(path string) (Archive, error) {
	var (
		arc Archive
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".zip":
		arc, err = OpenZIP(path)
	case ".7z":
		arc, err = OpenSevenZip(path)
	case ".rar":
		arc, err = OpenRAR(path)
	default:
		return nil, FormatError{Format: ext}
	}
	if err != nil {
		// A typed nil must not escape inside the interface.
		return nil, err
	}
	return arc, nil
}

// IsArchiveExtension checks if an extension is a supported archive format.
func IsArchiveExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".zip", ".7z", ".rar":
		return true
	default:
		return false
	}
}

// ReadEntry reads a whole entry into memory. Entries larger than MaxEntrySize
// are rejected before anything is decompressed.
func ReadEntry(arc Archive, internalPath string) ([]byte, error) {
	reader, size, err := arc.Open(internalPath)
	if err != nil {
		return nil, fmt.Errorf("open file in archive: %w", err)
	}
	defer func() { _ = reader.Close() }()

	if size < 0 || size > MaxEntrySize {
		return nil, EntryTooLargeError{InternalPath: internalPath, Size: size}
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(reader, data); err != nil {
		return nil, fmt.Errorf("read file from archive: %w", err)
	}
	return data, nil
}

func matchName(name, internalPath string) bool {
	return strings.EqualFold(strings.TrimPrefix(filepath.ToSlash(name), "/"),
		strings.TrimPrefix(filepath.ToSlash(internalPath), "/"))
}
