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

package quickstart_test

import (
	"context"
	"errors"
	"io"
	"slices"
	"testing"

	"github.com/google/uuid"

	"github.com/ZaparooProject/go-autoboot/launchinfo"
	"github.com/ZaparooProject/go-autoboot/quickstart"
)

const (
	usaSettings    uint64 = 0x0005001010047100
	usaSystemMenu  uint64 = 0x0005001010040100
	gameTitle      uint64 = 0x0005000010101D00
	discTitle      uint64 = 0x0005000010145000
	otherDiscTitle uint64 = 0x0005000010176A00
	homebrewTitle  uint64 = 0x0005000F12345678
	homebrewPath          = "/vol/external01/wiiu/apps/foo/foo.rpx"
)

func TestRun_NoQuickStartPending(t *testing.T) {
	t.Parallel()

	p := newFakePlatform(42)
	p.pending = false
	d, opener := newTestDispatcher(p, nil)

	action, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if action.Taken() {
		t.Errorf("Run() = %v, want decline", action)
	}
	if len(opener.paths) != 0 {
		t.Errorf("database opened %d times, want 0", len(opener.paths))
	}
	if len(p.calls) != 0 {
		t.Errorf("platform calls = %v, want none", p.calls)
	}
}

func TestRun_BootCheckError(t *testing.T) {
	t.Parallel()

	p := newFakePlatform(42)
	p.bootErr = errFake
	d, _ := newTestDispatcher(p, nil)

	action, err := d.Run(context.Background())
	if err != nil || action.Taken() {
		t.Errorf("Run() = %v, %v, want decline without error", action, err)
	}
}

func TestRun_WatchdogArmedAroundBootCheck(t *testing.T) {
	t.Parallel()

	for _, pending := range []bool{true, false} {
		p := newFakePlatform(42)
		p.pending = pending
		d, _ := newTestDispatcher(p, buildImage(t, nil, nil))
		guard := &fakeGuard{}
		d.Watchdog = guard.start

		if _, err := d.Run(context.Background()); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if guard.armed != 1 || guard.stopped != 1 {
			t.Errorf("pending=%v: armed %d stopped %d, want 1 and 1", pending, guard.armed, guard.stopped)
		}
	}
}

// Scenario A.
func TestRun_SentinelOpensQuickStartSettings(t *testing.T) {
	t.Parallel()

	image := buildImage(t, []launchinfo.Record{{EntryID: 1, TitleID: usaSettings}}, nil)
	p := newFakePlatform(1)
	d, _ := newTestDispatcher(p, image)

	action, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if action.Kind != quickstart.OpenQuickStartSettings {
		t.Errorf("Run() = %v, want %v", action, quickstart.OpenQuickStartSettings)
	}
	if !slices.Equal(p.calls, []string{"quick-start-settings"}) {
		t.Errorf("calls = %v", p.calls)
	}
}

func TestRun_SentinelSkipsAccountLoad(t *testing.T) {
	t.Parallel()

	id := uuid.MustParse("11223344-5566-7788-99aa-bbccddeeff00")
	p := newFakePlatform(1)
	p.param.AccountUUID = id
	d, _ := newTestDispatcher(p, buildImage(t, nil, nil))
	accounts := &fakeAccounts{slots: map[int]uuid.UUID{0: id}}
	d.Accounts = accounts

	if _, err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(accounts.loaded) != 0 {
		t.Errorf("loaded accounts = %v, want none", accounts.loaded)
	}
}

func TestRun_SystemSettingsTitle(t *testing.T) {
	t.Parallel()

	image := buildImage(t, []launchinfo.Record{{EntryID: 42, TitleID: usaSettings}}, nil)
	p := newFakePlatform(42)
	d, _ := newTestDispatcher(p, image)

	action, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if action.Kind != quickstart.OpenSystemSettings {
		t.Errorf("Run() = %v, want %v", action, quickstart.OpenSystemSettings)
	}
	if !slices.Equal(p.calls, []string{"system-settings"}) {
		t.Errorf("calls = %v", p.calls)
	}
}

// Scenario B.
func TestRun_Homebrew(t *testing.T) {
	t.Parallel()

	image := buildImage(t, []launchinfo.Record{
		{EntryID: 7, TitleID: homebrewTitle, Parameter: homebrewPath},
	}, nil)
	p := newFakePlatform(7)
	d, _ := newTestDispatcher(p, image)
	loader := &fakeHomebrew{}
	d.Homebrew = loader

	action, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if action.Kind != quickstart.LaunchHomebrew || action.Path != homebrewPath {
		t.Errorf("Run() = %+v, want homebrew %q", action, homebrewPath)
	}
	if !slices.Equal(loader.launched, []string{homebrewPath}) {
		t.Errorf("launched = %v", loader.launched)
	}
}

// P3: the homebrew mask is checked before any title literal.
func TestRun_HomebrewBeatsSettingsLiteral(t *testing.T) {
	t.Parallel()

	tables := quickstart.DefaultTables()
	tables.Settings[launchinfo.RegionUSA] = homebrewTitle

	image := buildImage(t, []launchinfo.Record{
		{EntryID: 42, TitleID: homebrewTitle, Parameter: homebrewPath},
	}, nil)
	p := newFakePlatform(42)
	d, _ := newTestDispatcher(p, image)
	d.SetTables(tables)
	d.Homebrew = &fakeHomebrew{}

	action, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if action.Kind != quickstart.LaunchHomebrew {
		t.Errorf("Run() = %v, want homebrew", action)
	}
	if len(p.calls) != 0 {
		t.Errorf("calls = %v, want none", p.calls)
	}
}

// P4: load failure, lookup miss and homebrew failure all decline without a
// launch call.
func TestRun_DeclineSafety(t *testing.T) {
	t.Parallel()

	validImage := buildImage(t, []launchinfo.Record{
		{EntryID: 7, TitleID: homebrewTitle, Parameter: homebrewPath},
		{EntryID: 8, TitleID: gameTitle},
	}, nil)

	tests := []struct {
		homebrew quickstart.HomebrewLoader
		name     string
		image    []byte
		entryID  uint64
	}{
		{name: "corrupt database", image: []byte("not a database"), entryID: 8},
		{name: "empty image", image: nil, entryID: 8},
		{name: "lookup miss", image: validImage, entryID: 99},
		{
			name:     "homebrew path invalid",
			image:    validImage,
			entryID:  7,
			homebrew: &fakeHomebrew{err: &quickstart.LaunchError{Path: homebrewPath, Kind: quickstart.PathInvalid}},
		},
		{
			name:     "homebrew loader unavailable",
			image:    validImage,
			entryID:  7,
			homebrew: &fakeHomebrew{err: &quickstart.LaunchError{Path: homebrewPath, Kind: quickstart.LoaderUnavailable}},
		},
		{name: "no homebrew loader", image: validImage, entryID: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := newFakePlatform(tt.entryID)
			p.installed[gameTitle] = true
			d, _ := newTestDispatcher(p, tt.image)
			d.Homebrew = tt.homebrew

			action, err := d.Run(context.Background())
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if action.Taken() {
				t.Errorf("Run() = %v, want decline", action)
			}
			if len(p.calls) != 0 {
				t.Errorf("calls = %v, want none", p.calls)
			}
		})
	}
}

// P5: quick starting into the system menu is suppressed for every region.
func TestRun_SystemMenuDeclines(t *testing.T) {
	t.Parallel()

	for _, titleID := range quickstart.DefaultTables().SystemMenu {
		image := buildImage(t, []launchinfo.Record{{EntryID: 42, TitleID: titleID}}, nil)
		p := newFakePlatform(42)
		p.installed[titleID] = true
		d, _ := newTestDispatcher(p, image)

		action, err := d.Run(context.Background())
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if action.Taken() {
			t.Errorf("title %016X: Run() = %v, want decline", titleID, action)
		}
		if len(p.calls) != 0 {
			t.Errorf("title %016X: calls = %v, want none", titleID, p.calls)
		}
	}
}

func TestRun_SystemMenuFromSystemTable(t *testing.T) {
	t.Parallel()

	image := buildImage(t, nil, map[launchinfo.Region][]launchinfo.Record{
		launchinfo.RegionUSA: {{EntryID: 2, TitleID: usaSystemMenu}},
	})
	p := newFakePlatform(2)
	d, _ := newTestDispatcher(p, image)

	action, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if action.Taken() {
		t.Errorf("Run() = %v, want decline", action)
	}
}

// Scenario D.
func TestRun_StreamFailsOnFirstRead(t *testing.T) {
	t.Parallel()

	p := newFakePlatform(42)
	d := quickstart.NewDispatcher(p, quickstart.StreamOpenerFunc(func(string, string) (io.ReadSeekCloser, error) {
		return failingStream{}, nil
	}))
	d.Options = testOptions()

	action, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if action.Taken() {
		t.Errorf("Run() = %v, want decline", action)
	}
	if len(p.calls) != 0 {
		t.Errorf("calls = %v, want none", p.calls)
	}
}

func TestRun_StreamConstructionIsFatal(t *testing.T) {
	t.Parallel()

	p := newFakePlatform(42)
	d := quickstart.NewDispatcher(p, quickstart.StreamOpenerFunc(func(string, string) (io.ReadSeekCloser, error) {
		return nil, errFake
	}))
	d.Options = testOptions()

	action, err := d.Run(context.Background())
	if !errors.Is(err, quickstart.ErrFatal) {
		t.Fatalf("Run() error = %v, want ErrFatal", err)
	}
	if !errors.Is(err, errFake) {
		t.Errorf("Run() error = %v, want wrapped cause", err)
	}
	if action.Taken() {
		t.Errorf("Run() = %v, want decline", action)
	}
}

func TestRun_DefaultPathAndStreamClosed(t *testing.T) {
	t.Parallel()

	p := newFakePlatform(42)
	d, opener := newTestDispatcher(p, buildImage(t, nil, nil))

	if _, err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := "/vol/storage_mlc01/usr/save/00050010/10066000/user/common/quickstart.db"
	if !slices.Equal(opener.paths, []string{want}) {
		t.Errorf("opened %v, want %q", opener.paths, want)
	}
	if !opener.last.closed {
		t.Error("stream was not closed")
	}
}

func TestRun_RegionSelectsSystemTable(t *testing.T) {
	t.Parallel()

	image := buildImage(t, nil, map[launchinfo.Region][]launchinfo.Record{
		launchinfo.RegionJPN: {{EntryID: 5, TitleID: gameTitle}},
		launchinfo.RegionEUR: {{EntryID: 5, TitleID: otherDiscTitle}},
	})

	tests := []struct {
		name      string
		installed uint64
		want      uint64
	}{
		{name: "JPN settings installed", installed: 0x0005001010047000, want: gameTitle},
		{name: "nothing installed defaults to EUR", want: otherDiscTitle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := newFakePlatform(5)
			p.installed[gameTitle] = true
			p.installed[otherDiscTitle] = true
			if tt.installed != 0 {
				p.installed[tt.installed] = true
			}
			d, _ := newTestDispatcher(p, image)
			d.Options.AutoRegion = true

			action, err := d.Run(context.Background())
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if action.Kind != quickstart.LaunchTitle || action.TitleID != tt.want {
				t.Errorf("Run() = %v, want title %016X", action, tt.want)
			}
		})
	}
}

func TestRun_AccountLoaded(t *testing.T) {
	t.Parallel()

	requested := uuid.MustParse("11223344-5566-7788-0000-000000000000")
	image := buildImage(t, []launchinfo.Record{{EntryID: 42, TitleID: gameTitle}}, nil)
	p := newFakePlatform(42)
	p.param.AccountUUID = requested
	p.installed[gameTitle] = true
	d, _ := newTestDispatcher(p, image)
	accounts := &fakeAccounts{slots: map[int]uuid.UUID{
		0: uuid.MustParse("99999999-5566-7788-99aa-bbccddeeff00"),
		3: uuid.MustParse("11223344-5566-7788-ffff-ffffffffffff"),
		5: uuid.MustParse("11223344-5566-7788-aaaa-aaaaaaaaaaaa"),
	}}
	d.Accounts = accounts

	if _, err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !slices.Equal(accounts.loaded, []int{3}) {
		t.Errorf("loaded = %v, want [3]", accounts.loaded)
	}
}

func TestRun_EmbeddedTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		infoErr   error
		name      string
		installed bool
		wantTaken bool
	}{
		{name: "installed", installed: true, wantTaken: true},
		{name: "missing", installed: false},
		{name: "title info failure", installed: true, infoErr: errFake},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			image := buildImage(t, []launchinfo.Record{{EntryID: 42, TitleID: gameTitle}}, nil)
			p := newFakePlatform(42)
			p.installed[gameTitle] = tt.installed
			p.infoErr = tt.infoErr
			d, _ := newTestDispatcher(p, image)

			action, err := d.Run(context.Background())
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if action.Taken() != tt.wantTaken {
				t.Fatalf("Run() = %v, taken want %v", action, tt.wantTaken)
			}
			if tt.wantTaken && !slices.Equal(p.calls, []string{"title 0005000010101D00"}) {
				t.Errorf("calls = %v", p.calls)
			}
			if !tt.wantTaken && len(p.calls) != 0 {
				t.Errorf("calls = %v, want none", p.calls)
			}
		})
	}
}

func TestRun_ZeroTitleDeclines(t *testing.T) {
	t.Parallel()

	image := buildImage(t, []launchinfo.Record{{EntryID: 42}}, nil)
	p := newFakePlatform(42)
	p.installed[0] = true
	d, _ := newTestDispatcher(p, image)

	action, err := d.Run(context.Background())
	if err != nil || action.Taken() {
		t.Errorf("Run() = %v, %v, want decline", action, err)
	}
}

func TestRun_SecondaryMenu(t *testing.T) {
	t.Parallel()

	image := buildImage(t, []launchinfo.Record{{EntryID: 42, TitleID: quickstart.DefaultSecondaryMenu}}, nil)
	p := newFakePlatform(42)
	d, _ := newTestDispatcher(p, image)

	action, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if action.Kind != quickstart.BootSecondaryMenu {
		t.Errorf("Run() = %v, want %v", action, quickstart.BootSecondaryMenu)
	}
	if !slices.Equal(p.calls, []string{"secondary-menu"}) {
		t.Errorf("calls = %v", p.calls)
	}
}

func TestRun_TitleLookupBuiltOnce(t *testing.T) {
	t.Parallel()

	image := buildImage(t, []launchinfo.Record{{EntryID: 42, TitleID: quickstart.DefaultSecondaryMenu}}, nil)
	p := newFakePlatform(42)
	d, _ := newTestDispatcher(p, image)

	run := func() quickstart.Action {
		t.Helper()
		action, err := d.Run(context.Background())
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		return action
	}

	if got := run(); got.Kind != quickstart.BootSecondaryMenu {
		t.Fatalf("first Run() = %v, want %v", got, quickstart.BootSecondaryMenu)
	}

	// Editing the field after the first dispatch leaves the lookup as built.
	d.Tables.SecondaryMenu = quickstart.DefaultSecondaryMenu + 1
	if got := run(); got.Kind != quickstart.BootSecondaryMenu {
		t.Errorf("second Run() = %v, want the lookup built by the first run", got)
	}

	tables := quickstart.DefaultTables()
	tables.SecondaryMenu = quickstart.DefaultSecondaryMenu + 1
	d.SetTables(tables)
	if got := run(); got.Taken() {
		t.Errorf("Run() after SetTables = %v, want decline", got)
	}
}

func TestRun_LaunchFailureDeclines(t *testing.T) {
	t.Parallel()

	image := buildImage(t, []launchinfo.Record{{EntryID: 42, TitleID: usaSettings}}, nil)
	p := newFakePlatform(42)
	p.launchErr = errFake
	d, _ := newTestDispatcher(p, image)

	action, err := d.Run(context.Background())
	if err != nil || action.Taken() {
		t.Errorf("Run() = %v, %v, want decline", action, err)
	}
}
