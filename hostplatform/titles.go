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

package hostplatform

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ZaparooProject/go-autoboot/quickstart"
)

// appXML is the subset of a title's code/app.xml that is read.
type appXML struct {
	TitleID      string `xml:"title_id"`
	TitleVersion string `xml:"title_version"`
}

// readAppXML returns the title id and version declared in dir/code/app.xml.
func readAppXML(dir string) (uint64, uint16, error) {
	data, err := os.ReadFile(filepath.Join(dir, "code", "app.xml")) //nolint:gosec // Platform tree is trusted
	if err != nil {
		return 0, 0, fmt.Errorf("read app.xml: %w", err)
	}
	var app appXML
	if err := xml.Unmarshal(data, &app); err != nil {
		return 0, 0, fmt.Errorf("parse app.xml: %w", err)
	}
	titleID, err := ParseTitleID(app.TitleID)
	if err != nil {
		return 0, 0, fmt.Errorf("app.xml: %w", err)
	}
	var version uint64
	if v := strings.TrimSpace(app.TitleVersion); v != "" {
		version, err = strconv.ParseUint(v, 10, 16)
		if err != nil {
			return 0, 0, fmt.Errorf("app.xml title_version: %w", err)
		}
	}
	return titleID, uint16(version), nil
}

// titleDirs lists where an installed title may live.
func (p *Platform) titleDirs(titleID uint64) []string {
	hi := fmt.Sprintf("%08x", titleID>>32)
	lo := fmt.Sprintf("%08x", titleID&0xFFFFFFFF)
	return []string{
		filepath.Join(p.root, "mlc", "sys", "title", hi, lo),
		filepath.Join(p.root, "mlc", "usr", "title", hi, lo),
	}
}

func (p *Platform) titleDir(titleID uint64) (string, bool) {
	for _, dir := range p.titleDirs(titleID) {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, true
		}
	}
	return "", false
}

// BootCheck implements quickstart.Platform. It simulates the user spending
// SelectionTime in the quick start menu; a cancellation request during that
// time ends the menu without a pending request.
func (p *Platform) BootCheck(ctx context.Context) (bool, error) {
	qs := p.state.QuickStart
	if !qs.Pending {
		return false, nil
	}
	if qs.SelectionTime > 0 {
		timer := time.NewTimer(time.Duration(qs.SelectionTime))
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return false, fmt.Errorf("boot check: %w", ctx.Err())
		case <-p.cancelled:
			p.record("boot-check", "cancelled")
			return false, nil
		case <-timer.C:
		}
	}
	p.record("boot-check", "entry %d", qs.EntryID)
	return true, nil
}

// AppLaunchParam implements quickstart.Platform.
func (p *Platform) AppLaunchParam(context.Context) (quickstart.AppLaunchParam, error) {
	param := quickstart.AppLaunchParam{EntryID: p.state.QuickStart.EntryID}
	if a := p.state.QuickStart.Account; a != "" {
		id, err := uuid.Parse(a)
		if err != nil {
			return param, fmt.Errorf("quick start account: %w", err)
		}
		param.AccountUUID = id
	}
	return param, nil
}

// TitleExists implements quickstart.Platform.
func (p *Platform) TitleExists(titleID uint64) bool {
	_, ok := p.titleDir(titleID)
	return ok
}

// DiscTitles implements quickstart.Platform. A disc directory is reported
// immediately; scripted titles appear after InsertAfter queries.
func (p *Platform) DiscTitles() ([]uint64, error) {
	p.mu.Lock()
	p.discQueries++
	queries := p.discQueries
	p.mu.Unlock()

	var titles []uint64
	discDir := filepath.Join(p.root, "disc")
	if titleID, _, err := readAppXML(discDir); err == nil {
		titles = append(titles, titleID)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if queries > p.state.Disc.InsertAfter {
		for _, t := range p.state.Disc.Titles {
			titles = append(titles, uint64(t))
		}
	}
	return titles, nil
}

// TitleInfo implements quickstart.Platform.
func (p *Platform) TitleInfo(titleID uint64) (quickstart.TitleInfo, error) {
	if dir, ok := p.titleDir(titleID); ok {
		info := quickstart.TitleInfo{TitleID: titleID, Path: dir, Device: "mlc"}
		if _, version, err := readAppXML(dir); err == nil {
			info.Version = version
		}
		return info, nil
	}
	titles, err := p.DiscTitles()
	if err != nil {
		return quickstart.TitleInfo{}, err
	}
	for _, t := range titles {
		if t == titleID {
			return quickstart.TitleInfo{TitleID: titleID, Path: filepath.Join(p.root, "disc"), Device: "odd"}, nil
		}
	}
	return quickstart.TitleInfo{}, fmt.Errorf("title %016X not found", titleID)
}
