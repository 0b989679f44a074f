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

// Package config loads the command line configuration through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ZaparooProject/go-autoboot/launchinfo"
	"github.com/ZaparooProject/go-autoboot/quickstart"
	"github.com/ZaparooProject/go-autoboot/watchdog"
)

// EnvPrefix prefixes every environment variable, e.g. AUTOBOOT_REGION.
const EnvPrefix = "AUTOBOOT"

// RegionAuto detects the region from the installed settings title.
const RegionAuto = "auto"

// Keys shared with command line flags.
const (
	KeyPlatform        = "platform"
	KeyDatabase        = "database"
	KeyRegion          = "region"
	KeyProcessID       = "process_id"
	KeySentinelEntryID = "sentinel_entry_id"
	KeyVerbose         = "verbose"
)

var errEmptyPlatform = errors.New("platform root is empty")

// WatchdogConfig holds the watchdog timings.
type WatchdogConfig struct {
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	PollDelay    time.Duration `mapstructure:"poll_delay"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Debounce     time.Duration `mapstructure:"debounce"`
}

// DiscConfig holds the disc wait timings.
type DiscConfig struct {
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	PromptInterval time.Duration `mapstructure:"prompt_interval"`
	PollAttempts   int           `mapstructure:"poll_attempts"`
}

// TitlesConfig overrides the built-in title tables. Title ids are hex
// strings; region lists are in JPN, USA, EUR order.
type TitlesConfig struct {
	Applets       map[string][]string `mapstructure:"applets"`
	SecondaryMenu string              `mapstructure:"secondary_menu"`
	HomebrewMask  string              `mapstructure:"homebrew_mask"`
	SystemMenu    []string            `mapstructure:"system_menu"`
	Settings      []string            `mapstructure:"settings"`
}

// Config is the complete configuration.
type Config struct {
	Titles TitlesConfig `mapstructure:"titles"`
	// Platform is the host platform root directory.
	Platform string `mapstructure:"platform"`
	// Database overrides the database path derived from ProcessID.
	Database        string         `mapstructure:"database"`
	Region          string         `mapstructure:"region"`
	ProcessID       string         `mapstructure:"process_id"`
	Disc            DiscConfig     `mapstructure:"disc"`
	Watchdog        WatchdogConfig `mapstructure:"watchdog"`
	SentinelEntryID uint64         `mapstructure:"sentinel_entry_id"`
	Verbose         bool           `mapstructure:"verbose"`
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	wd := watchdog.DefaultConfig()
	v.SetDefault(KeyPlatform, ".")
	v.SetDefault(KeyRegion, RegionAuto)
	v.SetDefault(KeyProcessID, fmt.Sprintf("%016X", launchinfo.ECOProcessID))
	v.SetDefault(KeySentinelEntryID, quickstart.DefaultSentinelEntryID)
	v.SetDefault("watchdog.idle_timeout", wd.IdleTimeout)
	v.SetDefault("watchdog.poll_delay", wd.PollDelay)
	v.SetDefault("watchdog.poll_interval", wd.PollInterval)
	v.SetDefault("watchdog.debounce", wd.Debounce)
	v.SetDefault("disc.poll_attempts", quickstart.DefaultDiscPollAttempts)
	v.SetDefault("disc.poll_interval", quickstart.DefaultDiscPollInterval)
	v.SetDefault("disc.prompt_interval", quickstart.DefaultPromptInterval)
}

// New returns a viper instance reading AUTOBOOT_* variables and, when
// present, config.yaml. An explicit file must exist; otherwise the working
// directory and $HOME/.config/autoboot are searched.
func New(file string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
		return v, nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "autoboot"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field that is parsed later.
func (c *Config) Validate() error {
	if c.Platform == "" {
		return errEmptyPlatform
	}
	if _, _, err := c.region(); err != nil {
		return err
	}
	if _, err := c.processID(); err != nil {
		return err
	}
	if c.Disc.PollAttempts < 0 {
		return fmt.Errorf("disc.poll_attempts must not be negative, got %d", c.Disc.PollAttempts)
	}
	for name, d := range map[string]time.Duration{
		"watchdog.idle_timeout":  c.Watchdog.IdleTimeout,
		"watchdog.poll_delay":    c.Watchdog.PollDelay,
		"watchdog.poll_interval": c.Watchdog.PollInterval,
		"watchdog.debounce":      c.Watchdog.Debounce,
		"disc.poll_interval":     c.Disc.PollInterval,
		"disc.prompt_interval":   c.Disc.PromptInterval,
	} {
		if d < 0 {
			return fmt.Errorf("%s must not be negative, got %v", name, d)
		}
	}
	if c.Watchdog.IdleTimeout == 0 {
		return errors.New("watchdog.idle_timeout must be positive")
	}
	if c.Watchdog.PollInterval == 0 {
		return errors.New("watchdog.poll_interval must be positive")
	}
	if _, err := c.Tables(); err != nil {
		return err
	}
	return nil
}

// region returns the fixed region, or auto=true.
func (c *Config) region() (launchinfo.Region, bool, error) {
	if c.Region == "" || strings.EqualFold(c.Region, RegionAuto) {
		return launchinfo.RegionEUR, true, nil
	}
	r, err := launchinfo.ParseRegion(c.Region)
	if err != nil {
		return 0, false, fmt.Errorf("region: %w", err)
	}
	return r, false, nil
}

func (c *Config) processID() (uint64, error) {
	if c.ProcessID == "" {
		return launchinfo.ECOProcessID, nil
	}
	id, err := parseHex(c.ProcessID)
	if err != nil {
		return 0, fmt.Errorf("process_id: %w", err)
	}
	return id, nil
}

// Options builds the dispatcher options.
func (c *Config) Options() (quickstart.Options, error) {
	opts := quickstart.DefaultOptions()
	region, auto, err := c.region()
	if err != nil {
		return opts, err
	}
	processID, err := c.processID()
	if err != nil {
		return opts, err
	}
	opts.DatabasePath = c.Database
	opts.ProcessID = processID
	opts.Region = region
	opts.AutoRegion = auto
	opts.DiscPollAttempts = c.Disc.PollAttempts
	opts.DiscPollInterval = c.Disc.PollInterval
	opts.PromptInterval = c.Disc.PromptInterval
	return opts, nil
}

// WatchdogConfig returns the watchdog timings.
func (c *Config) WatchdogConfig() watchdog.Config {
	return watchdog.Config{
		IdleTimeout:  c.Watchdog.IdleTimeout,
		PollDelay:    c.Watchdog.PollDelay,
		PollInterval: c.Watchdog.PollInterval,
		Debounce:     c.Watchdog.Debounce,
	}
}

// Tables returns the default title tables with the configured overrides
// applied.
func (c *Config) Tables() (quickstart.Tables, error) {
	t := quickstart.DefaultTables()
	if c.SentinelEntryID != 0 {
		t.SentinelEntryID = c.SentinelEntryID
	}

	o := c.Titles
	var err error
	if o.SystemMenu != nil {
		if t.SystemMenu, err = parseRegional("titles.system_menu", o.SystemMenu); err != nil {
			return t, err
		}
	}
	if o.Settings != nil {
		if t.Settings, err = parseRegional("titles.settings", o.Settings); err != nil {
			return t, err
		}
	}
	if len(o.Applets) > 0 {
		applets := make(map[quickstart.Applet][3]uint64, len(t.Applets))
		for a, ids := range t.Applets {
			applets[a] = ids
		}
		for name, ids := range o.Applets {
			a, err := quickstart.ParseApplet(name)
			if err != nil {
				return t, fmt.Errorf("titles.applets: %w", err)
			}
			if applets[a], err = parseRegional("titles.applets."+name, ids); err != nil {
				return t, err
			}
		}
		t.Applets = applets
	}
	if o.SecondaryMenu != "" {
		if t.SecondaryMenu, err = parseHex(o.SecondaryMenu); err != nil {
			return t, fmt.Errorf("titles.secondary_menu: %w", err)
		}
	}
	if o.HomebrewMask != "" {
		if t.HomebrewMask, err = parseHex(o.HomebrewMask); err != nil {
			return t, fmt.Errorf("titles.homebrew_mask: %w", err)
		}
	}
	return t, nil
}

func parseRegional(key string, values []string) ([3]uint64, error) {
	var ids [3]uint64
	if len(values) != len(ids) {
		return ids, fmt.Errorf("%s: want %d title ids (JPN, USA, EUR), got %d", key, len(ids), len(values))
	}
	for i, s := range values {
		id, err := parseHex(s)
		if err != nil {
			return ids, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		ids[i] = id
	}
	return ids, nil
}

// parseHex parses a 64-bit hex value with an optional 0x prefix.
func parseHex(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hex value %q: %w", s, err)
	}
	return v, nil
}
