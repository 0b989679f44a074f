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
	"fmt"
	"strings"

	"github.com/ZaparooProject/go-autoboot/internal/binary"
)

// Region selects which system table is loaded next to the user table.
type Region uint32

// Supported regions, in on-disk table order.
const (
	RegionJPN Region = 0
	RegionUSA Region = 1
	RegionEUR Region = 2
)

// AllRegions lists every region in on-disk table order.
var AllRegions = []Region{RegionJPN, RegionUSA, RegionEUR}

func (r Region) String() string {
	switch r {
	case RegionJPN:
		return "JPN"
	case RegionUSA:
		return "USA"
	case RegionEUR:
		return "EUR"
	default:
		return fmt.Sprintf("region(%d)", uint32(r))
	}
}

// Valid reports whether r names one of the three on-disk tables.
func (r Region) Valid() bool {
	return r <= RegionEUR
}

// ParseRegion parses a region name (case-insensitive).
func ParseRegion(s string) (Region, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "JPN", "JP", "JAPAN":
		return RegionJPN, nil
	case "USA", "US", "NA":
		return RegionUSA, nil
	case "EUR", "EU", "PAL":
		return RegionEUR, nil
	default:
		return 0, fmt.Errorf("unknown region %q", s)
	}
}

// Header layout. All integers are big-endian.
const (
	HeaderSize = 0x40

	headerMagicOffset      = 0x00
	headerVersionOffset    = 0x04
	headerRecordSizeOffset = 0x08
	headerUserOffset       = 0x0C
	headerUserCountOffset  = 0x10
	headerSystemOffset     = 0x14
	headerTableDescSize    = 8

	// MaxRecords bounds every table so a corrupt count cannot force a huge allocation.
	MaxRecords = 1024
)

// Magic identifies a launch-info database.
var Magic = []byte("QSLI")

// Table locates a run of records in the stream.
type Table struct {
	Offset uint32
	Count  uint32
}

// End returns the offset just past the table.
func (t Table) End() int64 {
	return int64(t.Offset) + int64(t.Count)*RecordSize
}

// Header is the fixed database header.
type Header struct {
	System     [3]Table
	User       Table
	Version    uint32
	RecordSize uint32
}

// SystemTable returns the system table for region.
func (h Header) SystemTable(region Region) Table {
	return h.System[region]
}

// EncodeHeader serialises h. RecordSize is written as given so tests can build
// deliberately broken images.
func EncodeHeader(h Header) []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[headerMagicOffset:], Magic)
	binary.PutUint32At(buf, headerVersionOffset, h.Version)
	binary.PutUint32At(buf, headerRecordSizeOffset, h.RecordSize)
	binary.PutUint32At(buf, headerUserOffset, h.User.Offset)
	binary.PutUint32At(buf, headerUserCountOffset, h.User.Count)
	for i, t := range h.System {
		off := headerSystemOffset + i*headerTableDescSize
		binary.PutUint32At(buf, off, t.Offset)
		binary.PutUint32At(buf, off+4, t.Count)
	}
	return buf
}

// DecodeHeader parses and validates a header.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("header too small: %d bytes", len(data))
	}
	if !binary.HasPrefix(data[headerMagicOffset:], Magic) {
		return Header{}, fmt.Errorf("invalid magic % X", data[headerMagicOffset:headerMagicOffset+len(Magic)])
	}

	h := Header{
		Version:    binary.Uint32At(data, headerVersionOffset),
		RecordSize: binary.Uint32At(data, headerRecordSizeOffset),
		User: Table{
			Offset: binary.Uint32At(data, headerUserOffset),
			Count:  binary.Uint32At(data, headerUserCountOffset),
		},
	}
	for i := range h.System {
		off := headerSystemOffset + i*headerTableDescSize
		h.System[i] = Table{
			Offset: binary.Uint32At(data, off),
			Count:  binary.Uint32At(data, off+4),
		}
	}

	if h.RecordSize != RecordSize {
		return Header{}, fmt.Errorf("record size 0x%X, want 0x%X", h.RecordSize, RecordSize)
	}
	if err := validateTable("user", h.User); err != nil {
		return Header{}, err
	}
	for i, t := range h.System {
		if err := validateTable(Region(i).String()+" system", t); err != nil { //nolint:gosec // i < 3
			return Header{}, err
		}
	}
	return h, nil
}

func validateTable(name string, t Table) error {
	if t.Count > MaxRecords {
		return fmt.Errorf("%s table has %d records (max %d)", name, t.Count, MaxRecords)
	}
	if t.Count > 0 && t.Offset < HeaderSize {
		return fmt.Errorf("%s table at 0x%X overlaps header", name, t.Offset)
	}
	return nil
}
