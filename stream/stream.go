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

// Package stream opens launch info database images as seekable byte streams.
//
// A stream is built from a path and a mode. Construction only fails for an
// unsupported mode; every problem with the path itself is deferred to the
// first Read or Seek, so callers see a usable handle whose first access fails.
//
// Besides plain files, a path may name a compressed image (zstd, xz or lzma)
// or an image stored inside a backup archive (see the archive package).
package stream

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ZaparooProject/go-autoboot/archive"
)

// MaxImageSize bounds the decoded size of compressed and archived images.
const MaxImageSize = archive.MaxEntrySize

// ErrUnsupportedMode is returned by Open for any mode other than "r" or "rb".
var ErrUnsupportedMode = errors.New("unsupported stream mode")

// Stream is a read-only, seekable handle on a database image.
type Stream struct {
	r      io.ReadSeeker
	closer io.Closer
	err    error
	path   string
}

// Open constructs a stream for path. Only read modes are supported.
func Open(path, mode string) (*Stream, error) {
	switch mode {
	case "r", "rb":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMode, mode)
	}

	s := &Stream{path: path}
	if err := s.open(); err != nil {
		s.err = fmt.Errorf("open %s: %w", path, err)
	}
	return s, nil
}

func (s *Stream) open() error {
	arcPath, err := archive.ParsePath(s.path)
	if err != nil {
		return fmt.Errorf("parse archive path: %w", err)
	}
	if arcPath != nil {
		data, err := readArchived(arcPath)
		if err != nil {
			return err
		}
		return s.useBytes(data, arcPath.InternalPath)
	}

	file, err := os.Open(s.path) //nolint:gosec // User-provided path is expected
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}

	magic := make([]byte, maxMagicLen)
	n, err := io.ReadFull(file, magic)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		_ = file.Close()
		return fmt.Errorf("read magic: %w", err)
	}
	comp := detectCompression(s.path, magic[:n])
	if comp == compressionNone {
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			_ = file.Close()
			return fmt.Errorf("rewind: %w", err)
		}
		s.r = file
		s.closer = file
		return nil
	}

	defer func() { _ = file.Close() }()
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind: %w", err)
	}
	data, err := decompress(comp, file)
	if err != nil {
		return err
	}
	s.r = bytes.NewReader(data)
	return nil
}

// useBytes installs an in-memory image, decompressing it first when needed.
func (s *Stream) useBytes(data []byte, name string) error {
	comp := detectCompression(name, data)
	if comp != compressionNone {
		decoded, err := decompress(comp, bytes.NewReader(data))
		if err != nil {
			return err
		}
		data = decoded
	}
	s.r = bytes.NewReader(data)
	return nil
}

func readArchived(p *archive.Path) ([]byte, error) {
	arc, err := archive.Open(p.ArchivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer func() { _ = arc.Close() }()

	if p.InternalPath == "" {
		p.InternalPath, err = archive.DetectDatabaseFile(arc, p.ArchivePath)
		if err != nil {
			return nil, fmt.Errorf("detect database: %w", err)
		}
	}
	data, err := archive.ReadEntry(arc, p.InternalPath)
	if err != nil {
		return nil, fmt.Errorf("read database: %w", err)
	}
	return data, nil
}

// Path returns the path the stream was constructed with.
func (s *Stream) Path() string {
	return s.path
}

// Err returns the deferred construction error, if any.
func (s *Stream) Err() error {
	return s.err
}

// Read implements io.Reader.
func (s *Stream) Read(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.r.Read(p) //nolint:wrapcheck // io.Reader passthrough
}

// Seek implements io.Seeker.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.r.Seek(offset, whence) //nolint:wrapcheck // io.Seeker passthrough
}

// Close releases the underlying file. It is safe to call more than once.
func (s *Stream) Close() error {
	if s.closer == nil {
		return nil
	}
	c := s.closer
	s.closer = nil
	if err := c.Close(); err != nil {
		return fmt.Errorf("close %s: %w", s.path, err)
	}
	return nil
}
