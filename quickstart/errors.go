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
	"errors"
	"fmt"
)

// ErrFatal marks failures the boot flow cannot recover from. Only stream
// construction produces it.
var ErrFatal = errors.New("fatal quick start failure")

// LaunchErrorKind classifies homebrew launch failures.
type LaunchErrorKind int

// Homebrew launch failure kinds.
const (
	PathInvalid LaunchErrorKind = iota
	LoaderUnavailable
)

func (k LaunchErrorKind) String() string {
	switch k {
	case PathInvalid:
		return "path invalid"
	case LoaderUnavailable:
		return "loader unavailable"
	default:
		return fmt.Sprintf("LaunchErrorKind(%d)", int(k))
	}
}

// LaunchError is returned by a HomebrewLoader that could not start a path.
type LaunchError struct {
	Err  error
	Path string
	Kind LaunchErrorKind
}

func (e *LaunchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("launch homebrew %q: %s: %v", e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("launch homebrew %q: %s", e.Path, e.Kind)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}
