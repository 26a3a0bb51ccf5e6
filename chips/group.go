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

// Package chips implements the five thin constraint modules spec §4.2
// names: U8RangeCheck, U8Xor, Sbox, MulBy2, MulBy3. Each chip declares
// one lookup argument against the shared tagged table (package table)
// guarded by a complex selector, and exposes a witness-time operation
// that assigns inputs via equality copies, computes the output
// out-of-circuit, assigns it, and enables its selector.
package chips

import (
	"errors"

	"github.com/SnellerInc/aes128circuit/cs"
	"github.com/SnellerInc/aes128circuit/table"
)

// ErrInvalidCoef is returned by MulByCoef for any coefficient outside
// {1, 2, 3} (spec §7, "invalid MixColumns coefficient").
var ErrInvalidCoef = errors.New("invalid MixColumns coefficient")

// Group is one of the N compile-time-sized column groups spec §4.5
// describes: three advice columns shared by all five chips, each
// chip owning its own complex selector and lookup declaration so rows
// in this group never collide with any other group's rows. All groups
// look up into the same shared tagged table.
type Group struct {
	Cols [3]cs.Column

	U8Range U8RangeCheckChip
	Xor     U8XorChip
	Sbox    SboxChip
	MulBy2  MulBy2Chip
	MulBy3  MulBy3Chip

	nextRow int
}

// ConfigureGroup allocates a fresh column group and wires its five
// chips' lookups against the shared table held in tableCols. Called
// once per group, from circuit.Configure (spec §4.6).
func ConfigureGroup(csys cs.ConstraintSystem, tableCols table.Columns) *Group {
	g := &Group{
		Cols: [3]cs.Column{csys.AdviceColumn(), csys.AdviceColumn(), csys.AdviceColumn()},
	}

	arr := tableCols.Array()

	g.U8Range = U8RangeCheckChip{sel: csys.ComplexSelector(), cols: g.Cols}
	csys.Lookup("u8_range_check", g.U8Range.sel, cs.TagU8, g.Cols, arr)

	g.Xor = U8XorChip{sel: csys.ComplexSelector(), cols: g.Cols}
	csys.Lookup("u8_xor", g.Xor.sel, cs.TagXor, g.Cols, arr)

	g.Sbox = SboxChip{sel: csys.ComplexSelector(), cols: g.Cols}
	csys.Lookup("sbox", g.Sbox.sel, cs.TagSbox, g.Cols, arr)

	g.MulBy2 = MulBy2Chip{sel: csys.ComplexSelector(), cols: g.Cols}
	csys.Lookup("mul_by_2", g.MulBy2.sel, cs.TagMul2, g.Cols, arr)

	g.MulBy3 = MulBy3Chip{sel: csys.ComplexSelector(), cols: g.Cols}
	csys.Lookup("mul_by_3", g.MulBy3.sel, cs.TagMul3, g.Cols, arr)

	return g
}

// AllocRow reserves the next free row in this group. Every chip
// operation allocates exactly one row (spec §4.2, witness-time
// contract), so row accounting lives here rather than in each chip.
func (g *Group) AllocRow() int {
	row := g.nextRow
	g.nextRow++
	return row
}

// RowsUsed reports how many rows this group has consumed so far.
func (g *Group) RowsUsed() int { return g.nextRow }

// Reset rewinds the group's row cursor. The column-group scheduler in
// package circuit never calls it: a group it advances to has not
// allocated any rows yet, so its cursor is already at zero.
func (g *Group) Reset() { g.nextRow = 0 }
