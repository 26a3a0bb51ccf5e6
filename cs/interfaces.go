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

package cs

// ConstraintSystem is consumed exactly once per circuit, during
// configure(). It allocates the columns and selectors the circuit needs
// and declares the lookup arguments that tie chip rows to the shared
// tagged table.
type ConstraintSystem interface {
	// AdviceColumn allocates a fresh witness column.
	AdviceColumn() Column

	// FixedColumn allocates a fresh constant-valued column.
	FixedColumn() Column

	// LookupColumn allocates a fresh column meant to be loaded with the
	// contents of the shared tagged table (tag, x, y, z).
	LookupColumn() Column

	// Selector allocates a simple binary selector.
	Selector() Selector

	// ComplexSelector allocates a selector that is allowed to appear in
	// a lookup's input expression (as every chip selector here does, per
	// spec §4.2 "guarded by a complex selector").
	ComplexSelector() Selector

	// Lookup declares that, whenever sel is enabled on a row, the tuple
	// (tag, advice[0], advice[1], advice[2]) taken from that row must
	// appear among the rows of lookupCols tagged with tag. advice must
	// name exactly the column group's three advice columns; a chip whose
	// operation only needs one or two of them is responsible for
	// assigning the unused slots to 0, matching the zero-padding the
	// table itself uses for those semantic rows (spec §3, "Tagged lookup
	// row").
	Lookup(name string, sel Selector, tag TableTag, advice [3]Column, lookupCols [4]Column)

	// EqualityGate declares a gate of the form
	// sel * (advice_cell - fixed_cell) == 0, used to pin the first byte
	// of a round-constant word to the fixed rcon column (spec §4.3).
	EqualityGate(name string, sel Selector, advice Column, fixed Column)
}

// Layouter sequences regions of witness assignment and the one-time
// table load. It mirrors the synthesizer contract described in spec §5:
// table load happens-before any chip operation, and assignments within
// one region are locally ordered by row offset.
type Layouter interface {
	// AssignRegion runs fn with a fresh Region scoped to name. Regions
	// are never reused: each call gets disjoint rows in the column(s) fn
	// assigns into, matching the teacher's pattern of scoping a closure
	// to a narrow piece of witness state (see vm's per-opcode assembly
	// routines).
	AssignRegion(name string, fn func(Region) error) error

	// LoadTable loads rows into the four lookup columns in lookupCols,
	// in the exact order given. Calling it twice with the same rows must
	// leave byte-identical table contents (spec §8, idempotence of load).
	LoadTable(name string, lookupCols [4]Column, rows []TableRow) error
}

// Region is the witness-assignment scope handed to an AssignRegion
// closure. All assignment routines in this module call Assign/Copy in
// row order.
type Region interface {
	// Assign writes val into col at row and returns a handle to the new
	// cell.
	Assign(col Column, row int, val Element) (Cell, error)

	// AssignFixed writes val into a fixed column at row.
	AssignFixed(col Column, row int, val Element) (Cell, error)

	// Copy imposes an equality constraint between two previously
	// assigned cells. It is the only mechanism cross-region dependencies
	// are expressed with (spec §5).
	Copy(a, b Cell) error

	// EnableSelector turns sel on for row, which activates every gate
	// and lookup guarded by sel at that row.
	EnableSelector(sel Selector, row int) error
}

// SynthesisError wraps a failure surfaced by the underlying proof
// system (failed assignment, missing equality, bad table load, or a
// lookup argument that does not hold). Spec §7 kind 1.
type SynthesisError struct {
	Op  string
	Err error
}

func (e *SynthesisError) Error() string { return "synthesis error in " + e.Op + ": " + e.Err.Error() }
func (e *SynthesisError) Unwrap() error  { return e.Err }
