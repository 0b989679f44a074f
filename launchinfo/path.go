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

import "fmt"

// ECOProcessID is the system process whose save area holds the quick start database.
const ECOProcessID uint64 = 0x0005001010066000

// DefaultPathBufferSize matches the buffer the system software formats into.
const DefaultPathBufferSize = 0x80

// DefaultDatabasePath derives the database path for a process id. It performs
// no I/O. The result plus a terminating NUL must fit in bufferSize.
func DefaultDatabasePath(processID uint64, bufferSize int) (string, error) {
	path := fmt.Sprintf("/vol/storage_mlc01/usr/save/%08x/%08x/user/common/quickstart.db",
		uint32(processID>>32), uint32(processID)) //nolint:gosec // intentional split of the title id
	if len(path)+1 > bufferSize {
		return "", fmt.Errorf("%w: %d bytes into %d", ErrPathTooLong, len(path)+1, bufferSize)
	}
	return path, nil
}
