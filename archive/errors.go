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

import "fmt"

// FormatError indicates an unsupported or invalid archive format.
type FormatError struct {
	Format string
	Reason string
}

func (e FormatError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported archive format %s: %s", e.Format, e.Reason)
	}
	return fmt.Sprintf("unsupported archive format: %s", e.Format)
}

// FileNotFoundError indicates a file was not found in the archive.
type FileNotFoundError struct {
	Archive      string
	InternalPath string
}

func (e FileNotFoundError) Error() string {
	return fmt.Sprintf("file %q not found in archive %q", e.InternalPath, e.Archive)
}

// NoDatabaseError indicates no database image was found in the archive.
type NoDatabaseError struct {
	Archive string
}

func (e NoDatabaseError) Error() string {
	return fmt.Sprintf("no launch info database found in archive %q", e.Archive)
}

// EntryTooLargeError indicates an entry exceeds MaxEntrySize.
type EntryTooLargeError struct {
	InternalPath string
	Size         int64
}

func (e EntryTooLargeError) Error() string {
	return fmt.Sprintf("archive entry %q is %d bytes (max %d)", e.InternalPath, e.Size, MaxEntrySize)
}
