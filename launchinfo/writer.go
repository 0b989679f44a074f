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
	"bytes"
	"fmt"
	"io"
)

// WriteDatabase writes a complete database image: header, user table, then the
// JPN, USA and EUR system tables back to back.
func WriteDatabase(w io.Writer, user []Record, system map[Region][]Record, version uint32) error {
	tables := append([][]Record{user}, make([][]Record, len(AllRegions))...)
	for i, region := range AllRegions {
		tables[i+1] = system[region]
	}

	header := Header{Version: version, RecordSize: RecordSize}
	offset := uint32(HeaderSize)
	for i, recs := range tables {
		if len(recs) > MaxRecords {
			return fmt.Errorf("%w: table %d has %d records (max %d)", ErrInvalidRecord, i, len(recs), MaxRecords)
		}
		t := Table{Count: uint32(len(recs))} //nolint:gosec // bounded by MaxRecords
		if t.Count > 0 {
			t.Offset = offset
			offset += t.Count * RecordSize
		}
		if i == 0 {
			header.User = t
		} else {
			header.System[i-1] = t
		}
	}

	var buf bytes.Buffer
	buf.Grow(int(offset))
	buf.Write(EncodeHeader(header))
	for _, recs := range tables {
		for _, rec := range recs {
			raw, err := EncodeRecord(rec)
			if err != nil {
				return err
			}
			buf.Write(raw)
		}
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write database: %w", err)
	}
	return nil
}
