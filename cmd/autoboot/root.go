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
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ZaparooProject/go-autoboot/hostplatform"
	"github.com/ZaparooProject/go-autoboot/internal/config"
	"github.com/ZaparooProject/go-autoboot/launchinfo"
	"github.com/ZaparooProject/go-autoboot/quickstart"
)

const appVersion = "0.1.0"

// app carries the loaded configuration to the subcommands.
type app struct {
	cfg     *config.Config
	cfgFile string
}

// flagKeys binds persistent flags to config keys.
var flagKeys = map[string]string{
	"platform":   config.KeyPlatform,
	"database":   config.KeyDatabase,
	"region":     config.KeyRegion,
	"process-id": config.KeyProcessID,
	"verbose":    config.KeyVerbose,
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           "autoboot",
		Short:         "Quick start dispatcher and boot selector for a host platform directory",
		Version:       appVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is ./config.yaml or $HOME/.config/autoboot/config.yaml)")
	pf.BoolP("verbose", "V", false, "verbose output")
	pf.StringP("platform", "p", ".", "platform root directory")
	pf.String("database", "", "database path, console (/vol/...) or host")
	pf.String("region", config.RegionAuto, "region: auto, jpn, usa or eur")
	pf.String("process-id", "", "title id whose save area holds the database (hex)")

	cmd.AddCommand(newQuickStartCmd(a), newSelectCmd(a), newDBCmd(a))
	cmd.CompletionOptions.HiddenDefaultCmd = true
	return cmd
}

func (a *app) load(cmd *cobra.Command) error {
	v, err := config.New(a.cfgFile)
	if err != nil {
		return err //nolint:wrapcheck // already describes the file
	}
	if err := bindFlags(v, cmd); err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	a.cfg = cfg
	setupLogging(cmd.ErrOrStderr(), cfg.Verbose)
	log.Debug().Msgf("using config file %q", v.ConfigFileUsed())
	return nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

func setupLogging(w io.Writer, verbose bool) {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()
}

// platform opens the configured platform root.
func (a *app) platform() (*hostplatform.Platform, error) {
	p, err := hostplatform.Open(a.cfg.Platform)
	if err != nil {
		return nil, fmt.Errorf("open platform: %w", err)
	}
	return p, nil
}

// dispatcher wires a quick start dispatcher to the platform with the
// configured tables, options and watchdog.
func (a *app) dispatcher(p *hostplatform.Platform) (*quickstart.Dispatcher, error) {
	opts, err := a.cfg.Options()
	if err != nil {
		return nil, err //nolint:wrapcheck // validated on load
	}
	tables, err := a.cfg.Tables()
	if err != nil {
		return nil, err //nolint:wrapcheck // validated on load
	}
	d := p.Dispatcher(a.cfg.WatchdogConfig())
	d.Options = opts
	d.SetTables(tables)
	return d, nil
}

// databasePath returns the configured database path or the default one.
func (a *app) databasePath() (string, error) {
	if a.cfg.Database != "" {
		return a.cfg.Database, nil
	}
	opts, err := a.cfg.Options()
	if err != nil {
		return "", err //nolint:wrapcheck // validated on load
	}
	path, err := launchinfo.DefaultDatabasePath(opts.ProcessID, launchinfo.DefaultPathBufferSize)
	if err != nil {
		return "", fmt.Errorf("database path: %w", err)
	}
	return path, nil
}

// region returns the configured region, detecting it on p when set to auto.
func (a *app) region(p *hostplatform.Platform) (launchinfo.Region, error) {
	opts, err := a.cfg.Options()
	if err != nil {
		return 0, err //nolint:wrapcheck // validated on load
	}
	if !opts.AutoRegion {
		return opts.Region, nil
	}
	tables, err := a.cfg.Tables()
	if err != nil {
		return 0, err //nolint:wrapcheck // validated on load
	}
	return quickstart.DetectRegion(p, tables), nil
}

func writeJournal(w io.Writer, p *hostplatform.Platform) error {
	if _, err := fmt.Fprintln(w, "journal:"); err != nil {
		return fmt.Errorf("write journal: %w", err)
	}
	return p.WriteJournal(w) //nolint:wrapcheck // already wrapped
}
