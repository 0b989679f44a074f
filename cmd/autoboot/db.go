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
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ZaparooProject/go-autoboot/hostplatform"
	"github.com/ZaparooProject/go-autoboot/launchinfo"
)

func newDBCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Inspect the launch info database",
	}
	cmd.AddCommand(newDBPathCmd(a), newDBDumpCmd(a), newDBLookupCmd(a))
	return cmd
}

func newDBPathCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the database path and where it maps on the host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := a.databasePath()
			if err != nil {
				return err
			}
			p, err := a.platform()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "console: %s\n", path)
			fmt.Fprintf(out, "host:    %s\n", p.HostPath(path))
			return nil
		},
	}
}

// dumpRecord is the YAML form of a record.
type dumpRecord struct {
	Parameter string               `yaml:"parameter,omitempty"`
	Media     string               `yaml:"media"`
	EntryID   uint64               `yaml:"entry_id"`
	TitleID   hostplatform.TitleID `yaml:"title_id"`
}

func newDBDumpCmd(a *app) *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "dump [file]",
		Short: "List the records visible for the region",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.loadDatabase(args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asYAML {
				return dumpYAML(out, db)
			}
			return dumpTable(out, db)
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "output as YAML")
	return cmd
}

func newDBLookupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <entry-id> [file]",
		Short: "Resolve one quick start entry id",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entryID, err := strconv.ParseUint(args[0], 0, 64)
			if err != nil {
				return fmt.Errorf("invalid entry id %q: %w", args[0], err)
			}
			db, err := a.loadDatabase(args[1:])
			if err != nil {
				return err
			}
			rec, err := db.GetByEntryID(entryID)
			if errors.Is(err, launchinfo.ErrNotFound) {
				return fmt.Errorf("entry %d: %w", entryID, err)
			}
			if err != nil {
				return fmt.Errorf("lookup: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "entry:     %d\n", rec.EntryID)
			fmt.Fprintf(out, "title:     %016X\n", rec.TitleID)
			fmt.Fprintf(out, "media:     %s\n", rec.MediaType)
			if rec.Parameter != "" {
				fmt.Fprintf(out, "parameter: %s\n", rec.Parameter)
			}
			return nil
		},
	}
}

// loadDatabase loads args[0], or the configured database when args is empty.
func (a *app) loadDatabase(args []string) (*launchinfo.Database, error) {
	p, err := a.platform()
	if err != nil {
		return nil, err
	}
	path := ""
	if len(args) > 0 {
		path = args[0]
	} else if path, err = a.databasePath(); err != nil {
		return nil, err
	}
	region, err := a.region(p)
	if err != nil {
		return nil, err
	}

	s, err := p.OpenStream(path, "r")
	if err != nil {
		return nil, err //nolint:wrapcheck // already wrapped
	}
	defer func() { _ = s.Close() }()

	db := launchinfo.NewDatabase()
	if err := db.Load(s, region); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return db, nil
}

func dumpTable(w io.Writer, db *launchinfo.Database) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "region: %s, %d records\n", db.Region(), db.Len())
	fmt.Fprintln(tw, "ENTRY\tTITLE\tMEDIA\tPARAMETER")
	for _, rec := range db.Records() {
		fmt.Fprintf(tw, "%d\t%016X\t%s\t%s\n", rec.EntryID, rec.TitleID, rec.MediaType, rec.Parameter)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write records: %w", err)
	}
	return nil
}

func dumpYAML(w io.Writer, db *launchinfo.Database) error {
	records := make([]dumpRecord, 0, db.Len())
	for _, rec := range db.Records() {
		records = append(records, dumpRecord{
			EntryID:   rec.EntryID,
			TitleID:   hostplatform.TitleID(rec.TitleID),
			Media:     rec.MediaType.String(),
			Parameter: rec.Parameter,
		})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	return nil
}
