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
	"errors"
	"fmt"
	"io/fs"
	"path"
)

// vWii homebrew channel title ids, in detection order.
const (
	TitleOpenHBC uint64 = 0x000100014F484243 // 'OHBC'
	TitleHBC     uint64 = 0x000100014C554C5A // 'LULZ'
)

// vWiiContentPath returns the path of a vWii title's boot content, relative to
// the root of the compatibility SLC.
func vWiiContentPath(titleID uint64) string {
	return path.Join("title", fmt.Sprintf("%08x", titleID>>32), fmt.Sprintf("%08x", titleID&0xFFFFFFFF),
		"content", "00000000.app")
}

// DetectHomebrewChannel returns the title id of the installed vWii homebrew
// channel, preferring the open source build, or 0 if none is installed.
// slc is the root of the compatibility SLC.
func DetectHomebrewChannel(slc fs.FS) uint64 {
	if slc == nil {
		return 0
	}
	for _, titleID := range []uint64{TitleOpenHBC, TitleHBC} {
		_, err := fs.Stat(slc, vWiiContentPath(titleID))
		if err == nil {
			return titleID
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return 0
		}
	}
	return 0
}
