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

// Package launchinfo implements the quick start launch-info database: the fixed
// binary record and header layout, a loader that materialises one region's view
// of the database from a seekable stream, and lookup by entry id.
package launchinfo

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ZaparooProject/go-autoboot/internal/binary"
)

// Record layout. All integers are big-endian.
const (
	RecordSize = 0x810

	recordEntryIDOffset   = 0x000
	recordTitleIDOffset   = 0x008
	recordMediaTypeOffset = 0x010
	recordReservedOffset  = 0x014
	recordReservedSize    = 0x00C
	recordParameterOffset = 0x020
	recordParameterSize   = RecordSize - recordParameterOffset

	// MaxParameterLen is the longest parameter that still fits with its terminator.
	MaxParameterLen = recordParameterSize - 1
)

// Layout checks: each array length goes negative, failing the build, unless the
// fields are contiguous and a record is exactly 0x810 bytes.
var (
	_ [recordReservedOffset - (recordMediaTypeOffset + 4)]struct{}
	_ [(recordMediaTypeOffset + 4) - recordReservedOffset]struct{}
	_ [recordParameterOffset - (recordReservedOffset + recordReservedSize)]struct{}
	_ [(recordReservedOffset + recordReservedSize) - recordParameterOffset]struct{}
	_ [RecordSize - 0x810]struct{}
	_ [0x810 - RecordSize]struct{}
)

// MediaType selects where a title's data lives.
type MediaType uint32

// Known media types. Other values are preserved as read and treated like Embedded.
const (
	MediaTypeEmbedded    MediaType = 0
	MediaTypeOpticalDisc MediaType = 1
)

func (m MediaType) String() string {
	switch m {
	case MediaTypeEmbedded:
		return "embedded"
	case MediaTypeOpticalDisc:
		return "optical-disc"
	default:
		return fmt.Sprintf("media(%d)", uint32(m))
	}
}

// ParseMediaType parses the names produced by MediaType.String.
func ParseMediaType(s string) (MediaType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "embedded", "mlc", "usb":
		return MediaTypeEmbedded, nil
	case "optical-disc", "disc", "odd":
		return MediaTypeOpticalDisc, nil
	default:
		return 0, fmt.Errorf("%w: unknown media type %q", ErrInvalidRecord, s)
	}
}

// Record is one launch-info entry.
type Record struct {
	// Parameter holds the homebrew path for homebrew entries and is opaque otherwise.
	Parameter string
	EntryID   uint64
	TitleID   uint64
	MediaType MediaType
}

// EncodeRecord serialises r into its fixed RecordSize layout.
func EncodeRecord(r Record) ([]byte, error) {
	if i := strings.IndexByte(r.Parameter, 0); i >= 0 {
		return nil, fmt.Errorf("%w: entry %d parameter has a NUL at byte %d", ErrInvalidRecord, r.EntryID, i)
	}
	buf := make([]byte, RecordSize)
	binary.PutUint64At(buf, recordEntryIDOffset, r.EntryID)
	binary.PutUint64At(buf, recordTitleIDOffset, r.TitleID)
	binary.PutUint32At(buf, recordMediaTypeOffset, uint32(r.MediaType))
	err := binary.PutCString(buf[recordParameterOffset:recordParameterOffset+recordParameterSize], r.Parameter)
	if err != nil {
		return nil, fmt.Errorf("%w: entry %d parameter: %w", ErrInvalidRecord, r.EntryID, err)
	}
	return buf, nil
}

// DecodeRecord parses a single record. data must be exactly RecordSize bytes and
// the parameter must be terminated inside its field.
func DecodeRecord(data []byte) (Record, error) {
	if len(data) != RecordSize {
		return Record{}, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidRecord, len(data), RecordSize)
	}
	param := data[recordParameterOffset : recordParameterOffset+recordParameterSize]
	if bytes.IndexByte(param, 0) == -1 {
		return Record{}, fmt.Errorf("%w: parameter is not NUL-terminated", ErrInvalidRecord)
	}
	return Record{
		EntryID:   binary.Uint64At(data, recordEntryIDOffset),
		TitleID:   binary.Uint64At(data, recordTitleIDOffset),
		MediaType: MediaType(binary.Uint32At(data, recordMediaTypeOffset)),
		Parameter: binary.CString(param),
	}, nil
}
