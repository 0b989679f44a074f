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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ZaparooProject/go-autoboot/launchinfo"
	"github.com/ZaparooProject/go-autoboot/quickstart"
)

var errFake = errors.New("fake failure")

// fakePlatform records every launch-style call in calls. Queries are not
// recorded.
type fakePlatform struct {
	installed  map[uint64]bool
	infoErr    error
	bootErr    error
	launchErr  error
	discs      [][]uint64
	calls      []string
	param      quickstart.AppLaunchParam
	discCalls  int
	bootChecks int
	pending    bool
}

func newFakePlatform(entryID uint64) *fakePlatform {
	return &fakePlatform{
		pending:   true,
		param:     quickstart.AppLaunchParam{EntryID: entryID},
		installed: map[uint64]bool{},
	}
}

func (p *fakePlatform) BootCheck(context.Context) (bool, error) {
	p.bootChecks++
	return p.pending, p.bootErr
}

func (p *fakePlatform) AppLaunchParam(context.Context) (quickstart.AppLaunchParam, error) {
	return p.param, nil
}

func (p *fakePlatform) TitleExists(titleID uint64) bool {
	return p.installed[titleID]
}

// DiscTitles steps through discs, repeating the last state.
func (p *fakePlatform) DiscTitles() ([]uint64, error) {
	p.discCalls++
	if len(p.discs) == 0 {
		return nil, nil
	}
	return p.discs[min(p.discCalls, len(p.discs))-1], nil
}

func (p *fakePlatform) TitleInfo(titleID uint64) (quickstart.TitleInfo, error) {
	if p.infoErr != nil {
		return quickstart.TitleInfo{}, p.infoErr
	}
	return quickstart.TitleInfo{TitleID: titleID, Device: "mlc"}, nil
}

func (p *fakePlatform) record(format string, args ...any) error {
	p.calls = append(p.calls, fmt.Sprintf(format, args...))
	return p.launchErr
}

func (p *fakePlatform) LaunchTitle(titleID uint64, info quickstart.TitleInfo) error {
	if info.TitleID != titleID {
		return errors.New("title info mismatch")
	}
	return p.record("title %016X", titleID)
}

func (p *fakePlatform) LaunchQuickStartSettings() error { return p.record("quick-start-settings") }
func (p *fakePlatform) LaunchSystemSettings() error     { return p.record("system-settings") }
func (p *fakePlatform) SwitchToApplet(a quickstart.Applet) error {
	return p.record("applet %s", a)
}
func (p *fakePlatform) BootSystemMenu() error    { return p.record("system-menu") }
func (p *fakePlatform) BootSecondaryMenu() error { return p.record("secondary-menu") }

type fakeHomebrew struct {
	err      error
	launched []string
}

func (h *fakeHomebrew) LaunchHomebrew(path string) error {
	if h.err != nil {
		return h.err
	}
	h.launched = append(h.launched, path)
	return nil
}

type fakeAccounts struct {
	slots  map[int]uuid.UUID
	loaded []int
}

func (a *fakeAccounts) AccountUUID(slot int) (uuid.UUID, error) {
	id, ok := a.slots[slot]
	if !ok {
		return uuid.Nil, errFake
	}
	return id, nil
}

func (a *fakeAccounts) LoadAccount(slot int) error {
	a.loaded = append(a.loaded, slot)
	return nil
}

type fakePrompt struct {
	polls      int
	abortAfter int
	shown      bool
	wrongDisc  bool
	closed     bool
}

func (p *fakePrompt) Show(wrongDisc bool) {
	p.shown = true
	p.wrongDisc = wrongDisc
}

func (p *fakePrompt) Aborted() bool {
	p.polls++
	return p.polls > p.abortAfter
}

func (p *fakePrompt) Close() { p.closed = true }

type fakeApplets struct {
	statuses []quickstart.AppletStatus
	released int
	shutdown bool
}

func (a *fakeApplets) ProcessMessages() quickstart.AppletStatus {
	if len(a.statuses) == 0 {
		return quickstart.StatusExiting
	}
	s := a.statuses[0]
	a.statuses = a.statuses[1:]
	return s
}

func (a *fakeApplets) DrawDoneRelease() { a.released++ }
func (a *fakeApplets) Shutdown()        { a.shutdown = true }

type fakeGuard struct {
	armed   int
	stopped int
}

func (g *fakeGuard) start() quickstart.Stopper {
	g.armed++
	return g
}

func (g *fakeGuard) Stop() { g.stopped++ }

type memStream struct {
	*bytes.Reader
	closed bool
}

func (m *memStream) Close() error {
	m.closed = true
	return nil
}

type failingStream struct{}

func (failingStream) Read([]byte) (int, error)       { return 0, errFake }
func (failingStream) Seek(int64, int) (int64, error) { return 0, nil }
func (failingStream) Close() error                   { return nil }

func buildImage(t *testing.T, user []launchinfo.Record, system map[launchinfo.Region][]launchinfo.Record) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := launchinfo.WriteDatabase(&buf, user, system, 1); err != nil {
		t.Fatalf("WriteDatabase() error = %v", err)
	}
	return buf.Bytes()
}

// imageOpener serves image for every path and remembers the last stream.
type imageOpener struct {
	last  *memStream
	paths []string
	image []byte
}

func (o *imageOpener) OpenStream(path, mode string) (io.ReadSeekCloser, error) {
	if mode != "r" {
		return nil, fmt.Errorf("mode %q", mode)
	}
	o.paths = append(o.paths, path)
	o.last = &memStream{Reader: bytes.NewReader(o.image)}
	return o.last, nil
}

func testOptions() quickstart.Options {
	opts := quickstart.DefaultOptions()
	opts.AutoRegion = false
	opts.Region = launchinfo.RegionUSA
	opts.DiscPollAttempts = 3
	opts.DiscPollInterval = time.Millisecond
	opts.PromptInterval = time.Millisecond
	opts.AppletPollInterval = time.Microsecond
	return opts
}

func newTestDispatcher(p *fakePlatform, image []byte) (*quickstart.Dispatcher, *imageOpener) {
	opener := &imageOpener{image: image}
	d := quickstart.NewDispatcher(p, opener)
	d.Options = testOptions()
	return d, opener
}
