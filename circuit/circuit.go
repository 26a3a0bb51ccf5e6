// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package circuit drives the ten AES-128 rounds over the column-group
// layout spec §4.4 and §4.5 describe, and exposes the three operations
// spec §4.6 names as the circuit's external surface: Configure,
// ScheduleKey, and Encrypt.
package circuit

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/SnellerInc/aes128circuit/chips"
	"github.com/SnellerInc/aes128circuit/cs"
	"github.com/SnellerInc/aes128circuit/keyschedule"
	"github.com/SnellerInc/aes128circuit/table"
)

// Error kinds from spec §7. Synthesis errors from the cs collaborator
// propagate unchanged, wrapped with %w, rather than being folded into
// one of these sentinels.
var (
	ErrKeyNotScheduled  = errors.New("keys not scheduled")
	ErrCapacityExceeded = errors.New("AES capacity exceeded")

	// ErrInvalidMixColumnsCoef is chips.ErrInvalidCoef under the name
	// spec §7 uses; mixColumns never actually produces a coefficient
	// outside {1, 2, 3} since mixColumnsMatrix is a fixed literal, but
	// callers comparing against this package's errors shouldn't have to
	// know that the check lives one layer down in package chips.
	ErrInvalidMixColumnsCoef = chips.ErrInvalidCoef
)

// Config is the result of Configure: the allocated columns, selectors,
// the shared table, and the N column groups, ready for ScheduleKey and
// Encrypt. ID lets a caller juggling several circuit instances in one
// process tell their diagnostics apart, the same way the teacher tags
// each query with a uuid for its logs (cmd/snellerd/handler_query.go).
type Config struct {
	ID uuid.UUID

	Params Params

	table  table.Columns
	groups []*chips.Group

	rconCol cs.Column
	rconSel cs.Selector

	active       int
	keyScheduled bool
	roundKeys    *keyschedule.RoundKeyTable
}

// Configure allocates columns, selectors, the shared table, and N
// column groups, and declares every gate and lookup the circuit needs.
// Called once per circuit (spec §4.6).
func Configure(csys cs.ConstraintSystem, p Params) (*Config, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	cfg := &Config{
		ID:     uuid.New(),
		Params: p,
		table:  table.Declare(csys),
	}

	cfg.groups = make([]*chips.Group, p.N)
	for i := range cfg.groups {
		cfg.groups[i] = chips.ConfigureGroup(csys, cfg.table)
	}

	cfg.rconCol = csys.FixedColumn()
	cfg.rconSel = csys.ComplexSelector()
	csys.EqualityGate("key_schedule_rcon", cfg.rconSel, cfg.groups[0].Cols[0], cfg.rconCol)

	return cfg, nil
}

// LoadTable loads the shared tagged table into the columns Configure
// allocated. Must run before any chip operation (spec §5); embedders
// call it once per circuit (spec §4.6).
func (cfg *Config) LoadTable(l cs.Layouter) error {
	return table.LoadFullTable(l, cfg.table)
}

// ScheduleKey expands key into the 11-round round-key table and stores
// it for every subsequent Encrypt call. It runs in group 0 and must be
// called before any Encrypt call. Calling it again expands the new key
// in group 0 as well, consuming more of that group's rows, and later
// Encrypt calls use the new round keys.
func (cfg *Config) ScheduleKey(l cs.Layouter, key [16]byte) error {
	g0 := cfg.groups[0]
	rk, err := keyschedule.ExpandKey(l, keyschedule.Config{
		Group:   g0,
		RconCol: cfg.rconCol,
		RconSel: cfg.rconSel,
	}, key)
	if err != nil {
		return fmt.Errorf("schedule_key: %w", err)
	}
	cfg.roundKeys = rk
	cfg.keyScheduled = true
	return nil
}

// Encrypt transforms a 16-byte plaintext into its 16-byte ciphertext
// under the already-scheduled round keys, returning the 16 cells the
// embedder can expose as public inputs (or not — spec §1 leaves that
// choice to the embedder). It enforces the capacity accounting spec
// §4.5 describes: it rotates to the next column group whenever the
// active one runs out of room, and fails once every group is
// exhausted.
func (cfg *Config) Encrypt(l cs.Layouter, plaintext [16]byte) ([16]cs.Cell, error) {
	if !cfg.keyScheduled {
		return [16]cs.Cell{}, ErrKeyNotScheduled
	}

	g, err := cfg.reserveGroup()
	if err != nil {
		return [16]cs.Cell{}, err
	}

	var cells [16]cs.Cell
	err = l.AssignRegion("encrypt_block", func(r cs.Region) error {
		out, err := encryptBlock(g, r, cfg.roundKeys, plaintext)
		if err != nil {
			return err
		}
		cells = out
		return nil
	})
	if err != nil {
		return [16]cs.Cell{}, fmt.Errorf("encrypt: %w", err)
	}
	return cells, nil
}

// reserveGroup implements the scheduler contract from spec §4.5: stay
// in the active group if it has room for one more block, else advance
// to the next group, else fail with capacity exhaustion. The active
// group index and the groups' row counters are the only mutable state
// touched during a synthesis pass (spec §9); they are reached through
// Config, passed by reference, never in process-wide state.
func (cfg *Config) reserveGroup() (*chips.Group, error) {
	budget := cfg.Params.RowBudget()
	need := encryptRowCost()

	g := cfg.groups[cfg.active]
	if budget-g.RowsUsed() >= need {
		return g, nil
	}
	if cfg.active < len(cfg.groups)-1 {
		cfg.active++
		return cfg.groups[cfg.active], nil
	}
	return nil, ErrCapacityExceeded
}

// encryptBlock runs AddRoundKey(0), rounds 1..10 of
// SubBytes/ShiftRows/MixColumns(skipped at 10)/AddRoundKey, and returns
// the final 16 byte cells (spec §4.4).
func encryptBlock(g *chips.Group, r cs.Region, rk *keyschedule.RoundKeyTable, plaintext [16]byte) ([16]cs.Cell, error) {
	s, err := newStateFromBlock(g, r, plaintext)
	if err != nil {
		return [16]cs.Cell{}, err
	}

	rk0 := rk.Round(0)
	rk0Val := roundKeyBytes(rk, 0)
	s, err = addRoundKey(g, r, s, rk0, rk0Val)
	if err != nil {
		return [16]cs.Cell{}, err
	}

	for round := 1; round <= 10; round++ {
		s, err = subBytes(g, r, s)
		if err != nil {
			return [16]cs.Cell{}, err
		}

		s = shiftRows(s)

		if round != 10 {
			s, err = mixColumns(g, r, s)
			if err != nil {
				return [16]cs.Cell{}, err
			}
		}

		rkr := rk.Round(round)
		rkrVal := roundKeyBytes(rk, round)
		s, err = addRoundKey(g, r, s, rkr, rkrVal)
		if err != nil {
			return [16]cs.Cell{}, err
		}
	}

	var out [16]cs.Cell
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			out[4*col+row] = s.cell[row][col]
		}
	}
	return out, nil
}
