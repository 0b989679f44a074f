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
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/ZaparooProject/go-autoboot/quickstart"
)

// StateFileName is the console description inside a platform root.
const StateFileName = "state.yaml"

// TitleID is a title id written in YAML as hex ("0005000010145000" or
// "0x0005000010145000") or as a plain integer.
type TitleID uint64

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *TitleID) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: title id must be a scalar", value.Line)
	}
	id, err := ParseTitleID(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*t = TitleID(id)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (t TitleID) MarshalYAML() (any, error) {
	return t.String(), nil
}

func (t TitleID) String() string {
	return fmt.Sprintf("%016X", uint64(t))
}

// ParseTitleID parses a hex title id with an optional 0x prefix.
func ParseTitleID(s string) (uint64, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	id, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid title id %q: %w", s, err)
	}
	return id, nil
}

// Duration is a time.Duration written as "3s" in YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// State describes the simulated console.
type State struct {
	// Accounts holds the account UUID of each slot; empty strings are
	// unoccupied slots.
	Accounts []string `yaml:"accounts"`
	// Applet is the lifecycle script played after an applet switch.
	Applet         []string        `yaml:"applet"`
	QuickStart     QuickStartState `yaml:"quickstart"`
	Menu           MenuState       `yaml:"menu"`
	Disc           DiscState       `yaml:"disc"`
	Gamepad        GamepadState    `yaml:"gamepad"`
	CurrentTitle   TitleID         `yaml:"current_title"`
	MenuButtonHeld bool            `yaml:"menu_button_held"`
}

// QuickStartState is the pending quick start request.
type QuickStartState struct {
	Account string `yaml:"account"`
	// SelectionTime is how long the user spends in the quick start menu.
	SelectionTime Duration `yaml:"selection_time"`
	EntryID       uint64   `yaml:"entry_id"`
	Pending       bool     `yaml:"pending"`
}

// DiscState scripts the optical drive in addition to the disc directory.
type DiscState struct {
	// Titles are reported once InsertAfter drive queries have happened.
	Titles      []TitleID `yaml:"titles"`
	InsertAfter int       `yaml:"insert_after"`
	// AbortAfter is the number of prompt polls before the user aborts.
	AbortAfter int `yaml:"abort_after"`
}

// GamepadState scripts the gamepad connection.
type GamepadState struct {
	// DisconnectAfter drops the gamepad this long after the platform was
	// opened. Zero keeps it connected.
	DisconnectAfter Duration `yaml:"disconnect_after"`
	Connected       bool     `yaml:"connected"`
}

// MenuState scripts the boot selector menu.
type MenuState struct {
	Select   string `yaml:"select"`
	Autoboot string `yaml:"autoboot"`
	// UpdateWarning answers the update warning: continue, delete or skip.
	UpdateWarning string `yaml:"update_warning"`
}

// LoadState reads a State from a YAML file.
func LoadState(path string) (*State, error) {
	data, err := os.ReadFile(path) //nolint:gosec // State path is expected
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}
	var state State
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse state file %s: %w", path, err)
	}
	if err := state.validate(); err != nil {
		return nil, fmt.Errorf("state file %s: %w", path, err)
	}
	return &state, nil
}

func (s *State) validate() error {
	if len(s.Accounts) > quickstart.NumAccountSlots {
		return fmt.Errorf("%d accounts, at most %d slots", len(s.Accounts), quickstart.NumAccountSlots)
	}
	for i, a := range s.Accounts {
		if a == "" {
			continue
		}
		if _, err := uuid.Parse(a); err != nil {
			return fmt.Errorf("account slot %d: %w", i, err)
		}
	}
	if s.QuickStart.Account != "" {
		if _, err := uuid.Parse(s.QuickStart.Account); err != nil {
			return fmt.Errorf("quick start account: %w", err)
		}
	}
	for _, st := range s.Applet {
		if _, err := parseAppletStatus(st); err != nil {
			return err
		}
	}
	return nil
}

func parseAppletStatus(s string) (quickstart.AppletStatus, error) {
	for _, st := range []quickstart.AppletStatus{
		quickstart.StatusInForeground,
		quickstart.StatusInBackground,
		quickstart.StatusReleaseForeground,
		quickstart.StatusExiting,
	} {
		if st.String() == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown applet status %q", s)
}
