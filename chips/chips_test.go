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

package chips

import (
	"testing"

	"github.com/SnellerInc/aes128circuit/cs"
	"github.com/SnellerInc/aes128circuit/table"
)

func newTestGroup(t *testing.T) (*cs.Ref, *Group) {
	t.Helper()
	r := cs.NewRef()
	tcols := table.Declare(r)
	g := ConfigureGroup(r, tcols)
	if err := table.LoadFullTable(r, tcols); err != nil {
		t.Fatalf("LoadFullTable: %v", err)
	}
	return r, g
}

func rawByte(t *testing.T, g *Group, r cs.Region, v byte) cs.Cell {
	t.Helper()
	row := g.AllocRow()
	cell, err := r.Assign(g.Cols[0], row, cs.Element(v))
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	return cell
}

func TestSboxChip(t *testing.T) {
	r, g := newTestGroup(t)
	var yVal byte
	err := r.AssignRegion("sbox", func(reg cs.Region) error {
		x := rawByte(t, g, reg, 0x53)
		var err error
		_, yVal, err = g.Sbox.Assign(g, reg, x, 0x53)
		return err
	})
	if err != nil {
		t.Fatalf("AssignRegion: %v", err)
	}
	if yVal != table.Sbox[0x53] {
		t.Fatalf("SboxChip.Assign returned %d, want %d", yVal, table.Sbox[0x53])
	}
	if err := r.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestXorChip(t *testing.T) {
	r, g := newTestGroup(t)
	var zVal byte
	err := r.AssignRegion("xor", func(reg cs.Region) error {
		x := rawByte(t, g, reg, 0x12)
		y := rawByte(t, g, reg, 0xAB)
		var err error
		_, zVal, err = g.Xor.Assign(g, reg, x, 0x12, y, 0xAB)
		return err
	})
	if err != nil {
		t.Fatalf("AssignRegion: %v", err)
	}
	if zVal != 0x12^0xAB {
		t.Fatalf("XorChip.Assign returned %d, want %d", zVal, 0x12^0xAB)
	}
	if err := r.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestU8RangeCheckChip(t *testing.T) {
	r, g := newTestGroup(t)
	err := r.AssignRegion("range", func(reg cs.Region) error {
		x := rawByte(t, g, reg, 0xFF)
		return g.U8Range.Assign(g, reg, x, 0xFF)
	})
	if err != nil {
		t.Fatalf("AssignRegion: %v", err)
	}
	if err := r.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestMulByCoefDispatch(t *testing.T) {
	r, g := newTestGroup(t)
	var idCell cs.Cell
	var idVal, v2, v3 byte
	var origCell cs.Cell
	var err4 error
	err := r.AssignRegion("mulcoef", func(reg cs.Region) error {
		x := rawByte(t, g, reg, 0x57)
		origCell = x

		var err error
		idCell, idVal, err = MulByCoef(g, reg, 1, x, 0x57)
		if err != nil {
			return err
		}

		_, v2, err = MulByCoef(g, reg, 2, x, 0x57)
		if err != nil {
			return err
		}

		_, v3, err = MulByCoef(g, reg, 3, x, 0x57)
		if err != nil {
			return err
		}

		_, _, err4 = MulByCoef(g, reg, 4, x, 0x57)
		return nil
	})
	if err != nil {
		t.Fatalf("AssignRegion: %v", err)
	}
	if err4 != ErrInvalidCoef {
		t.Fatalf("coefficient 4 should fail with ErrInvalidCoef, got %v", err4)
	}
	if idVal != 0x57 || idCell != origCell {
		t.Fatalf("coefficient 1 should be a pure equality copy, got val=%d cell=%v", idVal, idCell)
	}
	if v2 != table.MulBy2(0x57) {
		t.Fatalf("coefficient 2 = %d, want %d", v2, table.MulBy2(0x57))
	}
	if v3 != table.MulBy3(0x57) {
		t.Fatalf("coefficient 3 = %d, want %d", v3, table.MulBy3(0x57))
	}
	if err := r.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestGroupRowAccounting(t *testing.T) {
	_, g := newTestGroup(t)
	if g.RowsUsed() != 0 {
		t.Fatalf("fresh group should have 0 rows used, got %d", g.RowsUsed())
	}
	g.AllocRow()
	g.AllocRow()
	if g.RowsUsed() != 2 {
		t.Fatalf("RowsUsed() = %d, want 2", g.RowsUsed())
	}
	g.Reset()
	if g.RowsUsed() != 0 {
		t.Fatalf("Reset() should zero the row cursor, RowsUsed() = %d", g.RowsUsed())
	}
}
