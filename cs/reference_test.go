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

import "testing"

func TestRefLookupPassesWhenTupleInTable(t *testing.T) {
	r := NewRef()
	a, b, c := r.AdviceColumn(), r.AdviceColumn(), r.AdviceColumn()
	lut := [4]Column{r.LookupColumn(), r.LookupColumn(), r.LookupColumn(), r.LookupColumn()}
	sel := r.ComplexSelector()

	r.Lookup("xor", sel, TagXor, [3]Column{a, b, c}, lut)

	if err := r.LoadTable("xor_table", lut, []TableRow{
		{Tag: TagXor, X: 5, Y: 3, Z: 6},
	}); err != nil {
		t.Fatalf("LoadTable: %v", err)
	}

	err := r.AssignRegion("xor_region", func(reg Region) error {
		if _, err := reg.Assign(a, 0, 5); err != nil {
			return err
		}
		if _, err := reg.Assign(b, 0, 3); err != nil {
			return err
		}
		if _, err := reg.Assign(c, 0, 6); err != nil {
			return err
		}
		return reg.EnableSelector(sel, 0)
	})
	if err != nil {
		t.Fatalf("AssignRegion: %v", err)
	}

	if err := r.Verify(); err != nil {
		t.Fatalf("Verify should pass for a tuple present in the table: %v", err)
	}
}

func TestRefLookupFailsWhenTupleMissing(t *testing.T) {
	r := NewRef()
	a, b, c := r.AdviceColumn(), r.AdviceColumn(), r.AdviceColumn()
	lut := [4]Column{r.LookupColumn(), r.LookupColumn(), r.LookupColumn(), r.LookupColumn()}
	sel := r.ComplexSelector()

	r.Lookup("xor", sel, TagXor, [3]Column{a, b, c}, lut)
	if err := r.LoadTable("xor_table", lut, []TableRow{
		{Tag: TagXor, X: 5, Y: 3, Z: 6},
	}); err != nil {
		t.Fatalf("LoadTable: %v", err)
	}

	err := r.AssignRegion("bad_region", func(reg Region) error {
		if _, err := reg.Assign(a, 0, 5); err != nil {
			return err
		}
		if _, err := reg.Assign(b, 0, 3); err != nil {
			return err
		}
		if _, err := reg.Assign(c, 0, 7); err != nil { // wrong: should be 6
			return err
		}
		return reg.EnableSelector(sel, 0)
	})
	if err != nil {
		t.Fatalf("AssignRegion: %v", err)
	}

	if err := r.Verify(); err == nil {
		t.Fatal("Verify should fail when the enabled row's tuple isn't in the table")
	} else if _, ok := err.(*SynthesisError); !ok {
		t.Fatalf("expected a *SynthesisError, got %T: %v", err, err)
	}
}

func TestRefEqualityGate(t *testing.T) {
	r := NewRef()
	advice := r.AdviceColumn()
	fixed := r.FixedColumn()
	sel := r.ComplexSelector()
	r.EqualityGate("pin", sel, advice, fixed)

	err := r.AssignRegion("pin_region", func(reg Region) error {
		if _, err := reg.Assign(advice, 2, 42); err != nil {
			return err
		}
		if _, err := reg.AssignFixed(fixed, 2, 42); err != nil {
			return err
		}
		return reg.EnableSelector(sel, 2)
	})
	if err != nil {
		t.Fatalf("AssignRegion: %v", err)
	}
	if err := r.Verify(); err != nil {
		t.Fatalf("Verify should pass when advice equals fixed: %v", err)
	}
}

func TestRefCopyConstraintRejectsUnequalValues(t *testing.T) {
	r := NewRef()
	a := r.AdviceColumn()

	err := r.AssignRegion("copy_region", func(reg Region) error {
		c1, err := reg.Assign(a, 0, 1)
		if err != nil {
			return err
		}
		c2, err := reg.Assign(a, 1, 2)
		if err != nil {
			return err
		}
		return reg.Copy(c1, c2)
	})
	if err == nil {
		t.Fatal("Copy between cells holding different values should fail")
	}
}

func TestRefCanonicalFollowsCopyChain(t *testing.T) {
	r := NewRef()
	a := r.AdviceColumn()

	var c0, c1, c2 Cell
	err := r.AssignRegion("chain", func(reg Region) error {
		var err error
		if c0, err = reg.Assign(a, 0, 9); err != nil {
			return err
		}
		if c1, err = reg.Assign(a, 1, 9); err != nil {
			return err
		}
		if c2, err = reg.Assign(a, 2, 9); err != nil {
			return err
		}
		if err := reg.Copy(c0, c1); err != nil {
			return err
		}
		return reg.Copy(c1, c2)
	})
	if err != nil {
		t.Fatalf("AssignRegion: %v", err)
	}

	v, ok := r.Canonical(c0)
	if !ok || v != 9 {
		t.Fatalf("Canonical(c0) = (%d, %v), want (9, true)", v, ok)
	}
}

func TestElementByte(t *testing.T) {
	if b, ok := Element(200).Byte(); !ok || b != 200 {
		t.Fatalf("Element(200).Byte() = (%d, %v), want (200, true)", b, ok)
	}
	if _, ok := Element(300).Byte(); ok {
		t.Fatal("Element(300).Byte() should report non-canonical")
	}
}
