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

package quickstart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ZaparooProject/go-autoboot/launchinfo"
)

// Default timings.
const (
	DefaultDiscPollAttempts   = 20
	DefaultDiscPollInterval   = 100 * time.Millisecond
	DefaultPromptInterval     = 16 * time.Millisecond
	DefaultAppletPollInterval = time.Millisecond
)

// Options tunes where the database is read from and how long the
// Dispatcher waits on hardware.
type Options struct {
	// DatabasePath overrides the default path derived from ProcessID.
	DatabasePath string
	ProcessID    uint64
	// Region is used when AutoRegion is false.
	Region     launchinfo.Region
	AutoRegion bool

	DiscPollAttempts   int
	DiscPollInterval   time.Duration
	PromptInterval     time.Duration
	AppletPollInterval time.Duration
}

// DefaultOptions returns the options used on a real console.
func DefaultOptions() Options {
	return Options{
		ProcessID:          launchinfo.ECOProcessID,
		Region:             launchinfo.RegionEUR,
		AutoRegion:         true,
		DiscPollAttempts:   DefaultDiscPollAttempts,
		DiscPollInterval:   DefaultDiscPollInterval,
		PromptInterval:     DefaultPromptInterval,
		AppletPollInterval: DefaultAppletPollInterval,
	}
}

// Dispatcher resolves one quick start request. Platform and Streams are
// required; every other collaborator is optional.
type Dispatcher struct {
	Platform Platform
	Accounts Accounts
	Homebrew HomebrewLoader
	Applets  AppletEvents
	Prompt   DiscPrompt
	Streams  StreamOpener
	// Watchdog is armed for the duration of BootCheck.
	Watchdog func() Stopper
	// Exit terminates the process after an applet finishes.
	Exit func()
	// Tables is read when the first record is dispatched; later changes
	// need SetTables.
	Tables  Tables
	Options Options

	classes map[uint64]titleClass
}

// NewDispatcher returns a Dispatcher with the default tables and options.
func NewDispatcher(p Platform, streams StreamOpener) *Dispatcher {
	return &Dispatcher{
		Platform: p,
		Streams:  streams,
		Tables:   DefaultTables(),
		Options:  DefaultOptions(),
	}
}

// SetTables replaces the title tables and rebuilds the title lookup.
func (d *Dispatcher) SetTables(t Tables) {
	d.Tables = t
	d.classes = t.classify()
}

// titleClasses returns the title lookup, building it on first use.
func (d *Dispatcher) titleClasses() map[uint64]titleClass {
	if d.classes == nil {
		d.classes = d.Tables.classify()
	}
	return d.classes
}

var declined = Action{Kind: Decline}

// Run waits for the platform quick start menu and performs the selected
// action. The returned error is only non-nil for ErrFatal failures; every
// other problem is logged and reported as a Decline.
func (d *Dispatcher) Run(ctx context.Context) (Action, error) {
	pending, err := d.bootCheck(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("quick start boot check failed")
		return declined, nil
	}
	if !pending {
		log.Debug().Msg("no quick start")
		return declined, nil
	}

	db, err := d.loadDatabase()
	if err != nil {
		if errors.Is(err, ErrFatal) {
			log.Error().Err(err).Msg("quick start aborted")
			return declined, err
		}
		log.Warn().Err(err).Msg("failed to load launch info database")
		return declined, nil
	}

	param, err := d.Platform.AppLaunchParam(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read app launch param")
		return declined, nil
	}

	if param.EntryID == d.Tables.SentinelEntryID {
		log.Debug().Msg("launch quick start settings")
		if err := d.Platform.LaunchQuickStartSettings(); err != nil {
			log.Warn().Err(err).Msg("failed to launch quick start settings")
			return declined, nil
		}
		return Action{Kind: OpenQuickStartSettings}, nil
	}

	loadAccount(d.Accounts, param.AccountUUID)

	rec, err := db.GetByEntryID(param.EntryID)
	if err != nil {
		log.Debug().Err(err).Msgf("no launch info for entry %d", param.EntryID)
		return declined, nil
	}
	return d.dispatch(ctx, rec), nil
}

func (d *Dispatcher) bootCheck(ctx context.Context) (bool, error) {
	if d.Watchdog != nil {
		guard := d.Watchdog()
		defer guard.Stop()
	}
	pending, err := d.Platform.BootCheck(ctx)
	if err != nil {
		return false, fmt.Errorf("boot check: %w", err)
	}
	return pending, nil
}

func (d *Dispatcher) loadDatabase() (*launchinfo.Database, error) {
	region := d.Options.Region
	if d.Options.AutoRegion {
		region = DetectRegion(d.Platform, d.Tables)
	}

	path := d.Options.DatabasePath
	if path == "" {
		var err error
		path, err = launchinfo.DefaultDatabasePath(d.Options.ProcessID, launchinfo.DefaultPathBufferSize)
		if err != nil {
			return nil, fmt.Errorf("database path: %w", err)
		}
	}
	log.Debug().Str("region", region.String()).Msgf("loading launch info database %s", path)

	s, err := d.Streams.OpenStream(path, "r")
	if err != nil {
		return nil, fmt.Errorf("%w: construct stream for %s: %w", ErrFatal, path, err)
	}
	defer func() { _ = s.Close() }()

	db := launchinfo.NewDatabase()
	if err := db.Load(s, region); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return db, nil
}

// dispatch walks the title id decision tree for a resolved record.
func (d *Dispatcher) dispatch(ctx context.Context, rec launchinfo.Record) Action {
	titleID := rec.TitleID
	if titleID == 0 {
		log.Debug().Msgf("entry %d has no title", rec.EntryID)
		return declined
	}

	if d.Tables.isHomebrew(titleID) {
		return d.launchHomebrew(rec.Parameter)
	}

	if class, ok := d.titleClasses()[titleID]; ok {
		switch class.kind {
		case classSystemMenu:
			log.Debug().Msg("skip quick starting into the system menu")
			return declined
		case classSettings:
			log.Debug().Msg("launch system settings")
			if err := d.Platform.LaunchSystemSettings(); err != nil {
				log.Warn().Err(err).Msg("failed to launch system settings")
				return declined
			}
			return Action{Kind: OpenSystemSettings, TitleID: titleID}
		case classApplet:
			return d.switchToApplet(ctx, class.applet, titleID)
		case classSecondaryMenu:
			log.Debug().Msg("launch secondary menu")
			if err := d.Platform.BootSecondaryMenu(); err != nil {
				log.Warn().Err(err).Msg("failed to boot secondary menu")
				return declined
			}
			return Action{Kind: BootSecondaryMenu, TitleID: titleID}
		}
	}

	if rec.MediaType == launchinfo.MediaTypeOpticalDisc {
		launchID, ok := d.waitForDisc(ctx, titleID)
		if !ok {
			log.Debug().Msg("no disc, fall back to the boot menu")
			return declined
		}
		titleID = launchID
	} else if !d.Platform.TitleExists(titleID) {
		log.Debug().Msgf("title %016X doesn't exist", titleID)
		return declined
	}

	info, err := d.Platform.TitleInfo(titleID)
	if err != nil {
		log.Warn().Err(err).Msgf("no title info for %016X", titleID)
		return declined
	}
	log.Debug().Msgf("launch %016X", titleID)
	if err := d.Platform.LaunchTitle(titleID, info); err != nil {
		log.Warn().Err(err).Msgf("failed to launch %016X", titleID)
		return declined
	}
	return Action{Kind: LaunchTitle, TitleID: titleID}
}

func (d *Dispatcher) launchHomebrew(path string) Action {
	log.Debug().Msgf("trying to launch homebrew title: %q", path)
	if d.Homebrew == nil {
		log.Warn().Msg("no homebrew loader available")
		return declined
	}
	if err := d.Homebrew.LaunchHomebrew(path); err != nil {
		log.Warn().Err(err).Msg("failed to launch homebrew title")
		return declined
	}
	return Action{Kind: LaunchHomebrew, Path: path}
}

func (d *Dispatcher) switchToApplet(ctx context.Context, applet Applet, titleID uint64) Action {
	log.Debug().Msgf("launching %s", applet)
	if err := d.Platform.SwitchToApplet(applet); err != nil {
		log.Warn().Err(err).Msgf("failed to switch to %s", applet)
		return declined
	}
	d.waitForApplet(ctx)
	if d.Exit != nil {
		log.Debug().Msg("exit to system menu")
		d.Exit()
	}
	return Action{Kind: SwitchToApplet, Applet: applet, TitleID: titleID}
}
