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

package autoboot_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"testing"
	"testing/fstest"

	autoboot "github.com/ZaparooProject/go-autoboot"
	"github.com/ZaparooProject/go-autoboot/quickstart"
)

type fakeLauncher struct {
	failing map[string]bool
	calls   []string
}

func (l *fakeLauncher) call(name string) error {
	l.calls = append(l.calls, name)
	if l.failing[name] {
		return errors.New(name + " failed")
	}
	return nil
}

func (l *fakeLauncher) Relaunch(titleID uint64) error {
	return l.call(fmt.Sprintf("relaunch %016X", titleID))
}
func (l *fakeLauncher) BootSystemMenu() error       { return l.call("system-menu") }
func (l *fakeLauncher) BootHomebrewLauncher() error { return l.call("homebrew-launcher") }
func (l *fakeLauncher) BootVWiiMenu() error         { return l.call("vwii-menu") }
func (l *fakeLauncher) BootVWiiTitle(titleID uint64) error {
	return l.call(fmt.Sprintf("vwii %016X", titleID))
}

type fakeQuickStart struct {
	err    error
	action quickstart.Action
	runs   int
}

func (q *fakeQuickStart) Run(context.Context) (quickstart.Action, error) {
	q.runs++
	return q.action, q.err
}

type fakeMenu struct {
	items          []autoboot.MenuItem
	selected       autoboot.BootOption
	autoboot       autoboot.BootOption
	shownAutoboot  autoboot.BootOption
	updatesBlocked bool
	shown          bool
}

func (m *fakeMenu) Choose(
	_ context.Context, items []autoboot.MenuItem, current autoboot.BootOption, updatesBlocked bool,
) (autoboot.BootOption, autoboot.BootOption, error) {
	m.shown = true
	m.items = items
	m.shownAutoboot = current
	m.updatesBlocked = updatesBlocked
	return m.selected, m.autoboot, nil
}

type warningMenu struct {
	fakeMenu
	err      error
	warnings int
	blocked  bool
}

func (m *warningMenu) WarnUpdatesNotBlocked(context.Context) (bool, error) {
	m.warnings++
	return m.blocked, m.err
}

func writeConfig(t *testing.T, o autoboot.BootOption) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), autoboot.ConfigFileName)
	if err := autoboot.WriteAutobootOption(path, o); err != nil {
		t.Fatalf("WriteAutobootOption() error = %v", err)
	}
	return path
}

func TestBoot_SystemTransferRelaunch(t *testing.T) {
	t.Parallel()

	launcher := &fakeLauncher{}
	qs := &fakeQuickStart{}
	s := &autoboot.Selector{Launcher: launcher, QuickStart: qs}

	res, err := s.Boot(context.Background(), autoboot.Env{CurrentTitleID: 0x0005001010062100})
	if err != nil {
		t.Fatalf("Boot() error = %v", err)
	}
	if !res.Relaunched {
		t.Error("Relaunched = false")
	}
	if qs.runs != 0 {
		t.Error("quick start ran after relaunch")
	}
	if !slices.Equal(launcher.calls, []string{"relaunch 0005001010062100"}) {
		t.Errorf("calls = %v", launcher.calls)
	}
}

func TestBoot_QuickStartTaken(t *testing.T) {
	t.Parallel()

	launcher := &fakeLauncher{}
	qs := &fakeQuickStart{action: quickstart.Action{Kind: quickstart.LaunchTitle, TitleID: 0x0005000010101D00}}
	s := &autoboot.Selector{Launcher: launcher, QuickStart: qs}

	res, err := s.Boot(context.Background(), autoboot.Env{ConfigPath: writeConfig(t, autoboot.OptionSystemMenu)})
	if err != nil {
		t.Fatalf("Boot() error = %v", err)
	}
	if !res.QuickStart.Taken() {
		t.Error("quick start action lost")
	}
	if len(launcher.calls) != 0 {
		t.Errorf("calls = %v, want none", launcher.calls)
	}
}

func TestBoot_QuickStartFatal(t *testing.T) {
	t.Parallel()

	s := &autoboot.Selector{
		Launcher:   &fakeLauncher{},
		QuickStart: &fakeQuickStart{err: quickstart.ErrFatal},
	}
	if _, err := s.Boot(context.Background(), autoboot.Env{}); !errors.Is(err, quickstart.ErrFatal) {
		t.Errorf("Boot() error = %v, want ErrFatal", err)
	}
}

func TestBoot_ConfiguredOption(t *testing.T) {
	t.Parallel()

	slc := fstest.MapFS{"title/00010001/4c554c5a/content/00000000.app": {}}

	tests := []struct {
		env      autoboot.Env
		name     string
		want     []string
		config   autoboot.BootOption
		wantBoot autoboot.BootOption
	}{
		{
			name:     "system menu",
			config:   autoboot.OptionSystemMenu,
			want:     []string{"system-menu"},
			wantBoot: autoboot.OptionSystemMenu,
		},
		{
			name:     "homebrew launcher",
			config:   autoboot.OptionHomebrewLauncher,
			env:      autoboot.Env{HomebrewLauncherInstalled: true},
			want:     []string{"homebrew-launcher"},
			wantBoot: autoboot.OptionHomebrewLauncher,
		},
		{
			name:     "homebrew channel",
			config:   autoboot.OptionVWiiHomebrewChannel,
			env:      autoboot.Env{SLC: slc},
			want:     []string{"vwii 000100014C554C5A"},
			wantBoot: autoboot.OptionVWiiHomebrewChannel,
		},
		{
			name:     "missing channel without menu falls back",
			config:   autoboot.OptionVWiiHomebrewChannel,
			want:     []string{"vwii-menu"},
			wantBoot: autoboot.OptionVWiiSystemMenu,
		},
		{
			name:     "none without menu boots the system menu",
			config:   autoboot.OptionNone,
			want:     []string{"system-menu"},
			wantBoot: autoboot.OptionSystemMenu,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			launcher := &fakeLauncher{}
			s := &autoboot.Selector{Launcher: launcher, QuickStart: &fakeQuickStart{}}
			env := tt.env
			env.ConfigPath = writeConfig(t, tt.config)

			res, err := s.Boot(context.Background(), env)
			if err != nil {
				t.Fatalf("Boot() error = %v", err)
			}
			if res.Booted != tt.wantBoot || res.MenuShown {
				t.Errorf("Boot() = %+v, want %v without menu", res, tt.wantBoot)
			}
			if !slices.Equal(launcher.calls, tt.want) {
				t.Errorf("calls = %v, want %v", launcher.calls, tt.want)
			}
		})
	}
}

func TestBoot_MenuUpdatesAutoboot(t *testing.T) {
	t.Parallel()

	launcher := &fakeLauncher{}
	menu := &fakeMenu{selected: autoboot.OptionVWiiSystemMenu, autoboot: autoboot.OptionVWiiSystemMenu}
	s := &autoboot.Selector{Launcher: launcher, Menu: menu}
	env := autoboot.Env{ConfigPath: writeConfig(t, autoboot.OptionNone), UpdatesBlocked: true}

	res, err := s.Boot(context.Background(), env)
	if err != nil {
		t.Fatalf("Boot() error = %v", err)
	}
	if !menu.shown || !res.MenuShown {
		t.Fatal("menu not shown")
	}
	if !menu.updatesBlocked {
		t.Error("updates blocked state not passed to the menu")
	}
	if menu.shownAutoboot != autoboot.OptionNone {
		t.Errorf("menu autoboot = %v, want none", menu.shownAutoboot)
	}
	if len(menu.items) != 2 {
		t.Errorf("menu items = %v", menu.items)
	}
	if got := autoboot.ReadAutobootOption(env.ConfigPath); got != autoboot.OptionVWiiSystemMenu {
		t.Errorf("saved autoboot = %v", got)
	}
	if !slices.Equal(launcher.calls, []string{"vwii-menu"}) {
		t.Errorf("calls = %v", launcher.calls)
	}
}

func TestBoot_MenuButtonHeld(t *testing.T) {
	t.Parallel()

	launcher := &fakeLauncher{}
	menu := &fakeMenu{selected: autoboot.OptionSystemMenu, autoboot: autoboot.OptionNone}
	s := &autoboot.Selector{Launcher: launcher, Menu: menu}
	env := autoboot.Env{
		ConfigPath:                writeConfig(t, autoboot.OptionHomebrewLauncher),
		HomebrewLauncherInstalled: true,
		MenuButtonHeld:            true,
	}

	if _, err := s.Boot(context.Background(), env); err != nil {
		t.Fatalf("Boot() error = %v", err)
	}
	if !menu.shown {
		t.Fatal("menu not shown")
	}
	if got := autoboot.ReadAutobootOption(env.ConfigPath); got != autoboot.OptionNone {
		t.Errorf("saved autoboot = %v, want none", got)
	}
}

func TestBoot_MenuSelectionNotOffered(t *testing.T) {
	t.Parallel()

	launcher := &fakeLauncher{}
	menu := &fakeMenu{selected: autoboot.OptionHomebrewLauncher, autoboot: autoboot.OptionHomebrewLauncher}
	s := &autoboot.Selector{Launcher: launcher, Menu: menu}
	env := autoboot.Env{ConfigPath: writeConfig(t, autoboot.OptionNone)}

	res, err := s.Boot(context.Background(), env)
	if err != nil {
		t.Fatalf("Boot() error = %v", err)
	}
	if res.Booted != autoboot.OptionSystemMenu {
		t.Errorf("Booted = %v, want system menu", res.Booted)
	}
	// The config is unchanged because the invalid choice maps back to none.
	if got := autoboot.ReadAutobootOption(env.ConfigPath); got != autoboot.OptionNone {
		t.Errorf("saved autoboot = %v, want none", got)
	}
}

func TestBoot_LaunchFailureFallsBack(t *testing.T) {
	t.Parallel()

	launcher := &fakeLauncher{failing: map[string]bool{"vwii-menu": true}}
	s := &autoboot.Selector{Launcher: launcher}
	env := autoboot.Env{ConfigPath: writeConfig(t, autoboot.OptionVWiiSystemMenu)}

	res, err := s.Boot(context.Background(), env)
	if err != nil {
		t.Fatalf("Boot() error = %v", err)
	}
	if res.Booted != autoboot.OptionSystemMenu {
		t.Errorf("Booted = %v, want system menu", res.Booted)
	}
	if !slices.Equal(launcher.calls, []string{"vwii-menu", "system-menu"}) {
		t.Errorf("calls = %v", launcher.calls)
	}

	launcher = &fakeLauncher{failing: map[string]bool{"vwii-menu": true, "system-menu": true}}
	s = &autoboot.Selector{Launcher: launcher}
	if _, err := s.Boot(context.Background(), env); err == nil {
		t.Error("Boot() error = nil when everything fails")
	}
}

func TestBoot_UpdateWarning(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err          error
		name         string
		warning      bool
		blocked      bool
		wantWarnings int
		wantBlocked  bool
	}{
		{name: "no update folder", warning: false, wantWarnings: 0, wantBlocked: true},
		{name: "warning dismissed", warning: true, blocked: false, wantWarnings: 1, wantBlocked: false},
		{name: "folder deleted from warning", warning: true, blocked: true, wantWarnings: 1, wantBlocked: true},
		{name: "warning fails", warning: true, err: errors.New("screen"), wantWarnings: 1, wantBlocked: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			menu := &warningMenu{
				fakeMenu: fakeMenu{selected: autoboot.OptionSystemMenu},
				blocked:  tt.blocked,
				err:      tt.err,
			}
			s := &autoboot.Selector{Launcher: &fakeLauncher{}, Menu: menu}
			env := autoboot.Env{
				ConfigPath:     writeConfig(t, autoboot.OptionNone),
				UpdatesBlocked: !tt.warning,
				UpdateWarning:  tt.warning,
			}

			res, err := s.Boot(context.Background(), env)
			if err != nil {
				t.Fatalf("Boot() error = %v", err)
			}
			if menu.warnings != tt.wantWarnings {
				t.Errorf("warnings = %d, want %d", menu.warnings, tt.wantWarnings)
			}
			if res.UpdateWarningShown != (tt.wantWarnings > 0) {
				t.Errorf("UpdateWarningShown = %v", res.UpdateWarningShown)
			}
			if !menu.shown {
				t.Fatal("menu not shown")
			}
			if menu.updatesBlocked != tt.wantBlocked {
				t.Errorf("menu updates blocked = %v, want %v", menu.updatesBlocked, tt.wantBlocked)
			}
		})
	}
}

func TestBoot_UpdateWarningAfterQuickStart(t *testing.T) {
	t.Parallel()

	menu := &warningMenu{}
	s := &autoboot.Selector{
		Launcher:   &fakeLauncher{},
		QuickStart: &fakeQuickStart{action: quickstart.Action{Kind: quickstart.LaunchTitle, TitleID: 0x0005000010101D00}},
		Menu:       menu,
	}

	res, err := s.Boot(context.Background(), autoboot.Env{UpdateWarning: true})
	if err != nil {
		t.Fatalf("Boot() error = %v", err)
	}
	if menu.warnings != 0 || res.UpdateWarningShown {
		t.Error("update warning shown for a taken quick start")
	}
}
