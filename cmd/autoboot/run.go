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

	"github.com/spf13/cobra"
)

func newQuickStartCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "quickstart",
		Short: "Resolve the pending quick start request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.platform()
			if err != nil {
				return err
			}
			d, err := a.dispatcher(p)
			if err != nil {
				return err
			}

			action, err := d.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("quick start: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "action: %s\n", action)
			return writeJournal(out, p)
		},
	}
}

func newSelectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "select",
		Short: "Run one boot: system transfer check, quick start, boot menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.platform()
			if err != nil {
				return err
			}
			d, err := a.dispatcher(p)
			if err != nil {
				return err
			}

			res, err := p.Selector(d).Boot(cmd.Context(), p.Env())
			if err != nil {
				return fmt.Errorf("boot: %w", err)
			}

			out := cmd.OutOrStdout()
			switch {
			case res.Relaunched:
				fmt.Fprintln(out, "relaunched: true")
			case res.QuickStart.Taken():
				fmt.Fprintf(out, "quickstart: %s\n", res.QuickStart)
			default:
				fmt.Fprintf(out, "booted: %s\n", res.Booted)
				fmt.Fprintf(out, "menu shown: %v\n", res.MenuShown)
				if res.UpdateWarningShown {
					fmt.Fprintln(out, "update warning shown: true")
				}
			}
			return writeJournal(out, p)
		},
	}
}
