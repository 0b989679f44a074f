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

// Package hostplatform runs the boot selector against a directory on the
// host instead of a console.
//
// A platform root looks like this:
//
//	state.yaml          console description (see State)
//	mlc/                /vol/storage_mlc01: sys/title and usr/title trees,
//	                    usr/save/.../quickstart.db
//	sd/                 /vol/external01: homebrew and wiiu/autoboot.cfg
//	slccmpt/            /vol/storage_slccmpt01: vWii titles
//	disc/               optional inserted disc with code/app.xml
//
// Every launch is recorded in a journal instead of being executed.
package hostplatform

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	autoboot "github.com/ZaparooProject/go-autoboot"
	"github.com/ZaparooProject/go-autoboot/quickstart"
	"github.com/ZaparooProject/go-autoboot/stream"
)

// Volumes mapped onto the platform root.
var volumes = []struct {
	prefix string
	dir    string
}{
	{prefix: "/vol/storage_mlc01", dir: "mlc"},
	{prefix: "/vol/external01", dir: "sd"},
	{prefix: "/vol/storage_slccmpt01", dir: "slccmpt"},
}

// EnvironmentDir is the SD path of the homebrew environment holding
// autoboot.cfg and the setup modules.
const EnvironmentDir = "/vol/external01/wiiu/environments/aroma"

// hblInstaller is the homebrew launcher installer, relative to the
// environment directory.
const hblInstaller = "modules/setup/50_hbl_installer.rpx"

// Event is one journal entry.
type Event struct {
	Time   time.Time `yaml:"time"`
	Kind   string    `yaml:"kind"`
	Detail string    `yaml:"detail,omitempty"`
}

// Platform is a simulated console backed by a directory.
type Platform struct {
	opened      time.Time
	state       *State
	cancelled   chan struct{}
	root        string
	journal     []Event
	applet      []quickstart.AppletStatus
	mu          sync.Mutex
	discQueries int
	promptPolls int
	cancelOnce  sync.Once
	activeSlot  int
}

// Open loads root/state.yaml. A missing state file yields a console with
// no pending quick start and a connected gamepad.
func Open(root string) (*Platform, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("platform root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("platform root %s is not a directory", root)
	}

	state := &State{Gamepad: GamepadState{Connected: true}}
	statePath := filepath.Join(root, StateFileName)
	if _, err := os.Stat(statePath); err == nil {
		state, err = LoadState(statePath)
		if err != nil {
			return nil, err
		}
	}
	return New(root, state), nil
}

// New creates a platform from an already loaded state.
func New(root string, state *State) *Platform {
	p := &Platform{
		root:       root,
		state:      state,
		opened:     time.Now(),
		cancelled:  make(chan struct{}),
		activeSlot: -1,
	}
	for _, s := range state.Applet {
		st, err := parseAppletStatus(s)
		if err == nil {
			p.applet = append(p.applet, st)
		}
	}
	return p
}

// Root returns the platform root directory.
func (p *Platform) Root() string {
	return p.root
}

// State returns the console description.
func (p *Platform) State() *State {
	return p.state
}

// HostPath maps a console volume path onto the platform root. Paths outside
// the known volumes are returned unchanged.
func (p *Platform) HostPath(volPath string) string {
	for _, v := range volumes {
		if volPath == v.prefix || strings.HasPrefix(volPath, v.prefix+"/") {
			rel := strings.TrimPrefix(volPath, v.prefix)
			return filepath.Join(p.root, v.dir, filepath.FromSlash(rel))
		}
	}
	return volPath
}

// OpenStream opens a database stream after mapping the console path.
func (p *Platform) OpenStream(path, mode string) (io.ReadSeekCloser, error) {
	s, err := stream.Open(p.HostPath(path), mode)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}
	return s, nil
}

// Env describes the boot for the selector. It blocks updates when the
// update folder is missing.
func (p *Platform) Env() autoboot.Env {
	env := autoboot.Env{
		SLC:            os.DirFS(filepath.Join(p.root, "slccmpt")),
		ConfigPath:     p.HostPath(autoboot.ConfigPath(EnvironmentDir)),
		CurrentTitleID: uint64(p.state.CurrentTitle),
		MenuButtonHeld: p.state.MenuButtonHeld,
	}
	env.UpdatesBlocked, env.UpdateWarning = p.checkUpdates()
	if _, err := os.Stat(p.HostPath(EnvironmentDir + "/" + hblInstaller)); err == nil {
		env.HomebrewLauncherInstalled = true
	}
	return env
}

func (p *Platform) record(kind, format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ev := Event{Time: time.Now(), Kind: kind, Detail: fmt.Sprintf(format, args...)}
	p.journal = append(p.journal, ev)
	log.Debug().Str("event", kind).Msg(ev.Detail)
}

// Journal returns a copy of the recorded events.
func (p *Platform) Journal() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.journal...)
}

// Kinds returns the kinds of the recorded events in order.
func (p *Platform) Kinds() []string {
	journal := p.Journal()
	kinds := make([]string, len(journal))
	for i, ev := range journal {
		kinds[i] = ev.Kind
	}
	return kinds
}

// WriteJournal writes the journal as YAML.
func (p *Platform) WriteJournal(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p.Journal()); err != nil {
		return fmt.Errorf("encode journal: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode journal: %w", err)
	}
	return nil
}

// AccountUUID implements quickstart.Accounts.
func (p *Platform) AccountUUID(slot int) (uuid.UUID, error) {
	if slot < 0 || slot >= len(p.state.Accounts) || p.state.Accounts[slot] == "" {
		return uuid.Nil, fmt.Errorf("account slot %d is empty", slot)
	}
	id, err := uuid.Parse(p.state.Accounts[slot])
	if err != nil {
		return uuid.Nil, fmt.Errorf("account slot %d: %w", slot, err)
	}
	return id, nil
}

// LoadAccount implements quickstart.Accounts.
func (p *Platform) LoadAccount(slot int) error {
	if _, err := p.AccountUUID(slot); err != nil {
		return err
	}
	p.mu.Lock()
	p.activeSlot = slot
	p.mu.Unlock()
	p.record("account", "slot %d", slot)
	return nil
}

// ActiveAccount returns the loaded account slot, or -1.
func (p *Platform) ActiveAccount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.activeSlot
}
