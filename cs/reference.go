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

import "fmt"

// Ref is an in-memory, entirely non-cryptographic implementation of
// ConstraintSystem and Layouter. It does not build a polynomial, commit
// to anything, or run a permutation argument; it keeps every assigned
// cell in a plain map, checks each copy constraint by direct comparison
// when Copy is called, and checks lookups and equality gates the same
// way in Verify once synthesis finishes. This is the same role the
// teacher's vm/reference_impl.go plays for the bytecode interpreter: a
// slow, obviously-correct implementation the real thing can be checked
// against in tests. Ref is not meant to be fast, and it is not meant to
// be used outside of tests and the cmd/aescircuit CLI.
type Ref struct {
	nAdvice, nFixed, nLookup, nSelector int

	lookups []lookupDecl
	eqGates []eqGateDecl

	cellVals map[cellKey]Element
	uf       map[cellKey]cellKey
	enabled  map[selKey]bool
	tables   map[[4]int][]TableRow

	errs []error
}

type cellKey struct {
	kind ColumnKind
	col  int
	row  int
}

type selKey struct {
	idx int
	row int
}

type lookupDecl struct {
	name       string
	sel        Selector
	tag        TableTag
	advice     [3]Column
	lookupCols [4]Column
}

type eqGateDecl struct {
	name   string
	sel    Selector
	advice Column
	fixed  Column
}

// NewRef creates an empty reference constraint system.
func NewRef() *Ref {
	return &Ref{
		cellVals: make(map[cellKey]Element),
		uf:       make(map[cellKey]cellKey),
		enabled:  make(map[selKey]bool),
		tables:   make(map[[4]int][]TableRow),
	}
}

func (r *Ref) AdviceColumn() Column {
	c := Column{Kind: KindAdvice, Index: r.nAdvice}
	r.nAdvice++
	return c
}

func (r *Ref) FixedColumn() Column {
	c := Column{Kind: KindFixed, Index: r.nFixed}
	r.nFixed++
	return c
}

func (r *Ref) LookupColumn() Column {
	c := Column{Kind: KindLookup, Index: r.nLookup}
	r.nLookup++
	return c
}

func (r *Ref) Selector() Selector {
	s := Selector{Index: r.nSelector}
	r.nSelector++
	return s
}

func (r *Ref) ComplexSelector() Selector {
	s := Selector{Index: r.nSelector, Complex: true}
	r.nSelector++
	return s
}

func (r *Ref) Lookup(name string, sel Selector, tag TableTag, advice [3]Column, lookupCols [4]Column) {
	r.lookups = append(r.lookups, lookupDecl{name: name, sel: sel, tag: tag, advice: advice, lookupCols: lookupCols})
}

func (r *Ref) EqualityGate(name string, sel Selector, advice Column, fixed Column) {
	r.eqGates = append(r.eqGates, eqGateDecl{name: name, sel: sel, advice: advice, fixed: fixed})
}

// region is the Ref-backed implementation of cs.Region.
type region struct {
	r    *Ref
	name string
}

func (r *Ref) AssignRegion(name string, fn func(Region) error) error {
	return fn(&region{r: r, name: name})
}

func (r *Ref) LoadTable(name string, lookupCols [4]Column, rows []TableRow) error {
	key := [4]int{lookupCols[0].Index, lookupCols[1].Index, lookupCols[2].Index, lookupCols[3].Index}
	cp := make([]TableRow, len(rows))
	copy(cp, rows)
	r.tables[key] = cp
	return nil
}

func (reg *region) Assign(col Column, row int, val Element) (Cell, error) {
	if col.Kind != KindAdvice {
		return Cell{}, fmt.Errorf("region %q: Assign called on non-advice column", reg.name)
	}
	k := cellKey{kind: col.Kind, col: col.Index, row: row}
	reg.r.cellVals[k] = val
	return Cell{Column: col, Row: row}, nil
}

func (reg *region) AssignFixed(col Column, row int, val Element) (Cell, error) {
	if col.Kind != KindFixed {
		return Cell{}, fmt.Errorf("region %q: AssignFixed called on non-fixed column", reg.name)
	}
	k := cellKey{kind: col.Kind, col: col.Index, row: row}
	reg.r.cellVals[k] = val
	return Cell{Column: col, Row: row}, nil
}

func (reg *region) Copy(a, b Cell) error {
	av, aok := reg.r.value(a)
	bv, bok := reg.r.value(b)
	if !aok || !bok {
		return fmt.Errorf("region %q: Copy on unassigned cell", reg.name)
	}
	if av != bv {
		return fmt.Errorf("region %q: Copy between unequal cells (%v=%d, %v=%d)", reg.name, a, av, b, bv)
	}
	ka, kb := cellKeyOf(a), cellKeyOf(b)
	reg.r.uf[ka] = kb
	return nil
}

func (reg *region) EnableSelector(sel Selector, row int) error {
	reg.r.enabled[selKey{idx: sel.Index, row: row}] = true
	return nil
}

func cellKeyOf(c Cell) cellKey {
	return cellKey{kind: c.Column.Kind, col: c.Column.Index, row: c.Row}
}

func (r *Ref) value(c Cell) (Element, bool) {
	v, ok := r.cellVals[cellKeyOf(c)]
	return v, ok
}

// Verify checks every declared lookup and equality gate against the
// assignments recorded during synthesis. It is the reference system's
// stand-in for the real proof system's soundness guarantee: a circuit
// implementation that calls Verify successfully in tests is, modulo the
// field-encoding caveat in cs.Element, the same circuit a real PLONK
// backend would accept.
func (r *Ref) Verify() error {
	for _, g := range r.eqGates {
		for row := 0; row < r.maxRow(); row++ {
			if !r.enabled[selKey{idx: g.sel.Index, row: row}] {
				continue
			}
			av, aok := r.cellVals[cellKey{kind: KindAdvice, col: g.advice.Index, row: row}]
			fv, fok := r.cellVals[cellKey{kind: KindFixed, col: g.fixed.Index, row: row}]
			if !aok || !fok {
				return &SynthesisError{Op: g.name, Err: fmt.Errorf("row %d: equality gate over unassigned cell", row)}
			}
			if av != fv {
				return &SynthesisError{Op: g.name, Err: fmt.Errorf("row %d: %d != %d", row, av, fv)}
			}
		}
	}

	for _, l := range r.lookups {
		key := [4]int{l.lookupCols[0].Index, l.lookupCols[1].Index, l.lookupCols[2].Index, l.lookupCols[3].Index}
		rows, ok := r.tables[key]
		if !ok {
			return &SynthesisError{Op: l.name, Err: fmt.Errorf("lookup against a table that was never loaded")}
		}
		for row := 0; row < r.maxRow(); row++ {
			if !r.enabled[selKey{idx: l.sel.Index, row: row}] {
				continue
			}
			var tuple [3]Element
			for i, c := range l.advice {
				v, ok := r.cellVals[cellKey{kind: KindAdvice, col: c.Index, row: row}]
				if !ok {
					return &SynthesisError{Op: l.name, Err: fmt.Errorf("row %d: lookup over unassigned cell", row)}
				}
				tuple[i] = v
			}
			if !matchesAnyRow(rows, l.tag, tuple) {
				return &SynthesisError{Op: l.name, Err: fmt.Errorf("row %d: tuple (%d,%d,%d,%d) not present in table", row, l.tag, tuple[0], tuple[1], tuple[2])}
			}
		}
	}
	return nil
}

func matchesAnyRow(rows []TableRow, tag TableTag, tuple [3]Element) bool {
	for _, row := range rows {
		if row.Tag == tag && row.X == tuple[0] && row.Y == tuple[1] && row.Z == tuple[2] {
			return true
		}
	}
	return false
}

func (r *Ref) maxRow() int {
	max := -1
	for k := range r.cellVals {
		if k.row > max {
			max = k.row
		}
	}
	return max + 1
}

// Canonical resolves a's assigned value by walking the copy-constraint
// union chain, matching the permutation argument's guarantee that all
// cells in one equivalence class carry the same value. It is exposed for
// tests that want to assert on a cell's final value irrespective of
// which region produced it.
func (r *Ref) Canonical(c Cell) (Element, bool) {
	k := cellKeyOf(c)
	seen := map[cellKey]bool{}
	for {
		if seen[k] {
			break
		}
		seen[k] = true
		if nk, ok := r.uf[k]; ok {
			k = nk
			continue
		}
		break
	}
	v, ok := r.cellVals[k]
	return v, ok
}
