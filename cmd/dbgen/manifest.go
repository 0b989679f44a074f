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

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	"gopkg.in/yaml.v3"

	"github.com/ZaparooProject/go-autoboot/hostplatform"
	"github.com/ZaparooProject/go-autoboot/launchinfo"
)

// manifest is the YAML description of a database image.
type manifest struct {
	System  map[string][]manifestRecord `yaml:"system"`
	User    []manifestRecord            `yaml:"user"`
	Version uint32                      `yaml:"version"`
}

type manifestRecord struct {
	Media     string               `yaml:"media"`
	Parameter string               `yaml:"parameter"`
	EntryID   uint64               `yaml:"entry_id"`
	TitleID   hostplatform.TitleID `yaml:"title_id"`
}

func loadManifest(path string) (*manifest, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Manifest path is expected
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &m, nil
}

func (r manifestRecord) record() (launchinfo.Record, error) {
	media, err := launchinfo.ParseMediaType(r.Media)
	if err != nil {
		return launchinfo.Record{}, fmt.Errorf("entry %d: %w", r.EntryID, err)
	}
	if len(r.Parameter) > launchinfo.MaxParameterLen {
		return launchinfo.Record{}, fmt.Errorf("entry %d: parameter longer than %d bytes",
			r.EntryID, launchinfo.MaxParameterLen)
	}
	return launchinfo.Record{
		EntryID:   r.EntryID,
		TitleID:   uint64(r.TitleID),
		MediaType: media,
		Parameter: r.Parameter,
	}, nil
}

func convert(in []manifestRecord) ([]launchinfo.Record, error) {
	out := make([]launchinfo.Record, 0, len(in))
	for _, r := range in {
		rec, err := r.record()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// records converts the manifest into the user table and the per-region
// system tables.
func (m *manifest) records() ([]launchinfo.Record, map[launchinfo.Region][]launchinfo.Record, error) {
	user, err := convert(m.User)
	if err != nil {
		return nil, nil, fmt.Errorf("user: %w", err)
	}
	system := make(map[launchinfo.Region][]launchinfo.Record, len(m.System))
	for name, recs := range m.System {
		region, err := launchinfo.ParseRegion(name)
		if err != nil {
			return nil, nil, fmt.Errorf("system: %w", err)
		}
		converted, err := convert(recs)
		if err != nil {
			return nil, nil, fmt.Errorf("system %s: %w", region, err)
		}
		system[region] = append(system[region], converted...)
	}
	return user, system, nil
}

// writeImage writes the image for m to path and returns the record count.
func writeImage(path string, m *manifest) (int, error) {
	user, system, err := m.records()
	if err != nil {
		return 0, err
	}
	version := m.Version
	if version == 0 {
		version = 1
	}

	var img bytes.Buffer
	if err := launchinfo.WriteDatabase(&img, user, system, version); err != nil {
		return 0, fmt.Errorf("build image: %w", err)
	}

	f, err := os.Create(path) //nolint:gosec // Output path is expected
	if err != nil {
		return 0, fmt.Errorf("create output: %w", err)
	}
	if err := compress(f, path, img.Bytes()); err != nil {
		_ = f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close output: %w", err)
	}

	n := len(user)
	for _, recs := range system {
		n += len(recs)
	}
	return n, nil
}

// compress writes data to w, compressed according to the extension of name.
func compress(w io.Writer, name string, data []byte) error {
	var (
		zw  io.WriteCloser
		err error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".zst", ".zstd":
		zw, err = zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	case ".xz":
		zw, err = xz.NewWriter(w)
	default:
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write image: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("create compressor: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		_ = zw.Close()
		return fmt.Errorf("compress image: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("compress image: %w", err)
	}
	return nil
}
