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

package launchinfo

import (
	"errors"
	"fmt"
)

// Common errors for launch-info databases.
var (
	// ErrCorruptOrMissing indicates the database stream could not be opened or read,
	// was truncated, or carried an invalid header.
	ErrCorruptOrMissing = errors.New("launch info database corrupt or missing")

	// ErrNotFound indicates no record carries the requested entry id.
	ErrNotFound = errors.New("launch info not found")

	// ErrAlreadyLoaded indicates Load was called on a populated database.
	ErrAlreadyLoaded = errors.New("launch info database already loaded")

	// ErrPathTooLong indicates the default database path does not fit the caller's buffer.
	ErrPathTooLong = errors.New("database path exceeds buffer size")

	// ErrInvalidRecord indicates a record could not be encoded or decoded.
	ErrInvalidRecord = errors.New("invalid launch info record")
)

// LoadError describes why a database load failed. It always matches
// ErrCorruptOrMissing with errors.Is.
type LoadError struct {
	Err    error
	Region Region
	Stage  string
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load %s database: %s: %v", e.Region, e.Stage, e.Err)
	}
	return fmt.Sprintf("load %s database: %s", e.Region, e.Stage)
}

// Unwrap exposes both the classification and the underlying cause.
func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrCorruptOrMissing}
	}
	return []error{ErrCorruptOrMissing, e.Err}
}
