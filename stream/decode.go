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

package stream

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

type compression int

const (
	compressionNone compression = iota
	compressionZstd
	compressionXZ
	compressionLZMA
)

func (c compression) String() string {
	switch c {
	case compressionZstd:
		return "zstd"
	case compressionXZ:
		return "xz"
	case compressionLZMA:
		return "lzma"
	default:
		return "none"
	}
}

var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	xzMagic   = []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}
)

const maxMagicLen = 6

// detectCompression picks a decoder from the magic bytes, falling back to the
// file extension for formats without one (lzma).
func detectCompression(name string, head []byte) compression {
	switch {
	case bytes.HasPrefix(head, zstdMagic):
		return compressionZstd
	case bytes.HasPrefix(head, xzMagic):
		return compressionXZ
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".zst", ".zstd":
		return compressionZstd
	case ".xz":
		return compressionXZ
	case ".lzma":
		return compressionLZMA
	}
	return compressionNone
}

// decompress fully decodes r, failing if the output exceeds MaxImageSize.
func decompress(c compression, r io.Reader) ([]byte, error) {
	var (
		dec io.Reader
		err error
	)
	switch c {
	case compressionZstd:
		zr, zerr := zstd.NewReader(r, zstd.WithDecoderMaxMemory(MaxImageSize+1))
		if zerr != nil {
			return nil, fmt.Errorf("zstd init: %w", zerr)
		}
		defer zr.Close()
		dec = zr
	case compressionXZ:
		dec, err = xz.NewReader(r)
	case compressionLZMA:
		dec, err = lzma.NewReader(r)
	default:
		return nil, fmt.Errorf("unknown compression %d", c)
	}
	if err != nil {
		return nil, fmt.Errorf("%s init: %w", c, err)
	}

	data, err := io.ReadAll(io.LimitReader(dec, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("%s decode: %w", c, err)
	}
	if len(data) > MaxImageSize {
		return nil, fmt.Errorf("%s image exceeds %d bytes", c, MaxImageSize)
	}
	return data, nil
}
