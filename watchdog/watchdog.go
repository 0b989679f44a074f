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

// Package watchdog aborts the platform quick start menu when it is left idle
// or the gamepad goes away.
package watchdog

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds the watchdog timings.
type Config struct {
	// IdleTimeout cancels the menu once this long after Start.
	IdleTimeout time.Duration
	// PollDelay is the delay before the first peripheral check.
	PollDelay time.Duration
	// PollInterval is the period of the peripheral checks.
	PollInterval time.Duration
	// Debounce is how long a disconnect must last before it cancels.
	Debounce time.Duration
}

// DefaultConfig returns the timings used on a real console.
func DefaultConfig() Config {
	return Config{
		IdleTimeout:  120 * time.Second,
		PollDelay:    10 * time.Second,
		PollInterval: time.Second,
		Debounce:     3 * time.Second,
	}
}

// Peripheral is the gamepad whose connection is watched.
type Peripheral interface {
	Connected() bool
	// Wake asks a disconnected peripheral to reconnect.
	Wake() error
}

// Canceller requests cancellation of the platform quick start menu.
type Canceller interface {
	RequestCancel()
}

// Watchdog runs two timers between Start and Stop.
type Watchdog struct {
	peripheral Peripheral
	canceller  Canceller
	done       chan struct{}
	wg         sync.WaitGroup
	stopOnce   sync.Once
	cfg        Config
	cancelled  atomic.Bool
	// connectedAtStart gates both the disconnect poll and the wake on Stop.
	connectedAtStart bool
}

// Start arms the idle timer and, if the peripheral is connected now, the
// disconnect poll.
func Start(cfg Config, p Peripheral, c Canceller) *Watchdog {
	w := &Watchdog{
		peripheral: p,
		canceller:  c,
		done:       make(chan struct{}),
		cfg:        cfg,
	}
	if p != nil {
		w.connectedAtStart = p.Connected()
	}

	w.wg.Add(1)
	go w.idle()
	if w.connectedAtStart {
		w.wg.Add(1)
		go w.poll()
	}
	return w
}

func (w *Watchdog) idle() {
	defer w.wg.Done()
	timer := time.NewTimer(w.cfg.IdleTimeout)
	defer timer.Stop()

	select {
	case <-w.done:
	case <-timer.C:
		log.Debug().Msg("selecting a title takes too long, aborting the quick start menu")
		w.cancel()
	}
}

func (w *Watchdog) poll() {
	defer w.wg.Done()
	if !w.wait(w.cfg.PollDelay) {
		return
	}
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if !w.peripheral.Connected() {
			// The gamepad reconnects briefly after a title is picked.
			if !w.wait(w.cfg.Debounce) {
				return
			}
			if !w.peripheral.Connected() {
				log.Debug().Msg("gamepad was disconnected, aborting the quick start menu")
				w.cancel()
				return
			}
		}
		select {
		case <-w.done:
			return
		case <-ticker.C:
		}
	}
}

// wait sleeps for d and reports false if the watchdog was stopped first.
func (w *Watchdog) wait(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-w.done:
		return false
	case <-timer.C:
		return true
	}
}

func (w *Watchdog) cancel() {
	if w.cancelled.CompareAndSwap(false, true) && w.canceller != nil {
		w.canceller.RequestCancel()
	}
}

// Cancelled reports whether the watchdog cancelled the menu.
func (w *Watchdog) Cancelled() bool {
	return w.cancelled.Load()
}

// Stop disarms both timers and waits for running checks to finish. If the
// watchdog did not cancel and the peripheral was connected at Start but is
// gone now, it is woken up. Stop may be called more than once.
func (w *Watchdog) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.wg.Wait()

		if w.Cancelled() || !w.connectedAtStart || w.peripheral.Connected() {
			return
		}
		log.Debug().Msg("wake up gamepad")
		if err := w.peripheral.Wake(); err != nil {
			log.Debug().Err(err).Msg("failed to wake gamepad")
		}
	})
}
