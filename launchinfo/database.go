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
	"io"

	"github.com/ZaparooProject/go-autoboot/internal/binary"
)

// Database is one region's view of the launch-info database: the user table
// followed by the region's system table. The zero value is an empty database
// ready for Load.
type Database struct {
	records []Record
	region  Region
	loaded  bool
}

// NewDatabase creates an empty database.
func NewDatabase() *Database {
	return &Database{}
}

// Load reads the header and the tables selected by region from s.
// It may only succeed once. On failure the database is left empty and the
// returned error matches ErrCorruptOrMissing. The stream is only read.
func (db *Database) Load(s io.ReadSeeker, region Region) error {
	if db.loaded {
		return ErrAlreadyLoaded
	}
	if !region.Valid() {
		return &LoadError{Region: region, Stage: "select region table"}
	}

	raw, err := binary.ReadRangeAt(s, 0, HeaderSize)
	if err != nil {
		return &LoadError{Region: region, Stage: "read header", Err: err}
	}
	header, err := DecodeHeader(raw)
	if err != nil {
		return &LoadError{Region: region, Stage: "validate header", Err: err}
	}

	records := make([]Record, 0, header.User.Count+header.SystemTable(region).Count)
	for _, table := range []Table{header.User, header.SystemTable(region)} {
		records, err = readTable(s, table, records)
		if err != nil {
			return &LoadError{Region: region, Stage: "read records", Err: err}
		}
	}

	db.records = records
	db.region = region
	db.loaded = true
	return nil
}

func readTable(s io.ReadSeeker, table Table, dst []Record) ([]Record, error) {
	if table.Count == 0 {
		return dst, nil
	}
	raw, err := binary.ReadRangeAt(s, int64(table.Offset), int(table.Count)*RecordSize)
	if err != nil {
		return nil, err
	}
	for i := range int(table.Count) {
		rec, err := DecodeRecord(raw[i*RecordSize : (i+1)*RecordSize])
		if err != nil {
			return nil, err
		}
		dst = append(dst, rec)
	}
	return dst, nil
}

// GetByEntryID returns the first record whose entry id matches id.
// A miss returns ErrNotFound, which callers should treat as routine.
func (db *Database) GetByEntryID(id uint64) (Record, error) {
	for _, rec := range db.records {
		if rec.EntryID == id {
			return rec, nil
		}
	}
	return Record{}, ErrNotFound
}

// Loaded reports whether Load has succeeded.
func (db *Database) Loaded() bool {
	return db.loaded
}

// Region returns the region the database was loaded for.
func (db *Database) Region() Region {
	return db.region
}

// Len returns the number of loaded records.
func (db *Database) Len() int {
	return len(db.records)
}

// Records returns a copy of the loaded records in table order.
func (db *Database) Records() []Record {
	out := make([]Record, len(db.records))
	copy(out, db.records)
	return out
}
