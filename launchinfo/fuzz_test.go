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
	"errors"
	"testing"
)

// FuzzDecodeRecord checks that any record-sized input decodes and re-encodes stably.
func FuzzDecodeRecord(f *testing.F) {
	seed, _ := EncodeRecord(Record{EntryID: 42, TitleID: 0x0005001010047100, Parameter: "/vol/x"})
	f.Add(seed)
	f.Add(make([]byte, RecordSize))
	f.Add(bytes.Repeat([]byte{0xFF}, RecordSize))

	f.Fuzz(func(t *testing.T, data []byte) {
		rec, err := DecodeRecord(data)
		if len(data) != RecordSize {
			if err == nil {
				t.Fatalf("DecodeRecord() accepted %d bytes", len(data))
			}
			return
		}
		if err != nil {
			if !errors.Is(err, ErrInvalidRecord) {
				t.Fatalf("DecodeRecord() error = %v", err)
			}
			if bytes.IndexByte(data[recordParameterOffset:], 0) != -1 {
				t.Fatalf("DecodeRecord() rejected a terminated parameter: %v", err)
			}
			return
		}

		raw, err := EncodeRecord(rec)
		if err != nil {
			t.Fatalf("EncodeRecord() of decoded record error = %v", err)
		}
		again, err := DecodeRecord(raw)
		if err != nil || again != rec {
			t.Errorf("re-decode = %+v, %v; want %+v", again, err, rec)
		}
	})
}

// FuzzLoad fuzzes the loader with arbitrary images.
func FuzzLoad(f *testing.F) {
	var buf bytes.Buffer
	_ = WriteDatabase(&buf, []Record{{EntryID: 2, TitleID: 3}}, map[Region][]Record{
		RegionUSA: {{EntryID: 4, TitleID: 5}},
	}, 1)
	f.Add(buf.Bytes(), uint8(1))
	f.Add([]byte("QSLI"), uint8(0))
	f.Add([]byte{}, uint8(2))

	f.Fuzz(func(t *testing.T, data []byte, region uint8) {
		if len(data) > 4*1024*1024 {
			return
		}
		db := NewDatabase()
		err := db.Load(bytes.NewReader(data), Region(region%4))
		if err != nil {
			if !errors.Is(err, ErrCorruptOrMissing) {
				t.Fatalf("Load() error %v does not match ErrCorruptOrMissing", err)
			}
			if db.Len() != 0 {
				t.Fatalf("failed Load() left %d records", db.Len())
			}
			return
		}
		if db.Len() > 2*MaxRecords {
			t.Fatalf("Load() returned %d records", db.Len())
		}
	})
}
