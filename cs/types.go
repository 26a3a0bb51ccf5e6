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

// Package cs declares the narrow interface the AES-128 arithmetization
// circuit expects from a host proof system: allocating advice, fixed,
// selector and lookup-table columns, and assigning cells into
// witness-generation regions with copy-constraint support. The real
// polynomial commitment scheme, prover and verifier live outside this
// module; cs only carries the boundary the circuit consumes, plus a
// reference implementation (Ref) good enough to run the circuit's own
// tests against.
package cs

import "fmt"

// Element is a field element as seen by the circuit. The circuit never
// needs general prime-field arithmetic: every value it assigns is either
// a byte (0..255), a tag (1..5), or a GF(2^8) XOR-table index, so Element
// is carried as a plain machine integer and range-checked at the edges
// rather than reduced modulo a prime.
type Element uint32

// Byte returns e truncated to a byte, and reports whether e was already
// canonical in 0..255.
func (e Element) Byte() (byte, bool) {
	return byte(e), e < 256
}

// ColumnKind distinguishes the three column families a constraint system
// can allocate.
type ColumnKind uint8

const (
	KindAdvice ColumnKind = iota + 1
	KindFixed
	KindLookup
)

func (k ColumnKind) String() string {
	switch k {
	case KindAdvice:
		return "advice"
	case KindFixed:
		return "fixed"
	case KindLookup:
		return "lookup"
	default:
		return fmt.Sprintf("ColumnKind(%d)", uint8(k))
	}
}

// Column is an opaque handle to a column allocated by a ConstraintSystem.
// Like the teacher's ion.Symbol (ion/writer.go), a Column carries no
// data of its own; it only indexes into the constraint system that
// created it.
type Column struct {
	Kind  ColumnKind
	Index int
}

// Selector is an opaque handle to a (possibly complex) selector column.
type Selector struct {
	Index   int
	Complex bool
}

// Cell identifies one assigned entry: a column together with a row.
// Equality (copy) constraints are expressed between Cells.
type Cell struct {
	Column Column
	Row    int
}

// TableTag discriminates which semantic lookup table a tagged row
// belongs to. Numbering matches spec §3 "Tagged lookup row" exactly;
// changing it silently breaks every chip's lookup, so it is defined in
// exactly one place (here) and cross-checked by table.TestGoldenLayout.
type TableTag uint8

const (
	TagU8   TableTag = 1
	TagXor  TableTag = 2
	TagSbox TableTag = 3
	TagMul2 TableTag = 4
	TagMul3 TableTag = 5
	TagZero TableTag = 0 // the all-zero sentinel row
)

// TableRow is one row of the shared tagged lookup table: (tag, x, y, z).
type TableRow struct {
	Tag     TableTag
	X, Y, Z Element
}
