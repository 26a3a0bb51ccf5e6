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

// MulBy2Chip and MulBy3Chip share a shape (one input, one output,
// zero-padded third column) and are grouped in one file the way
// original_source/src/chips/gf_mul_chip.rs implements both GF(2^8)
// byte multiplications side by side.
package chips

import (
	"github.com/SnellerInc/aes128circuit/cs"
	"github.com/SnellerInc/aes128circuit/table"
)

// MulBy2Chip computes y = xtime(x) via a lookup against the
// mul-by-2-tagged slice of the shared table.
type MulBy2Chip struct {
	sel  cs.Selector
	cols [3]cs.Column
}

// Assign copies x into the chip's row, looks up y = MulBy2(xVal) out of
// circuit, assigns it, and enables the mul-by-2 lookup.
func (c *MulBy2Chip) Assign(g *Group, r cs.Region, x cs.Cell, xVal byte) (cs.Cell, byte, error) {
	row := g.AllocRow()
	yVal := table.MulBy2(xVal)

	xCell, err := r.Assign(c.cols[0], row, cs.Element(xVal))
	if err != nil {
		return cs.Cell{}, 0, err
	}
	if err := r.Copy(xCell, x); err != nil {
		return cs.Cell{}, 0, err
	}
	yCell, err := r.Assign(c.cols[1], row, cs.Element(yVal))
	if err != nil {
		return cs.Cell{}, 0, err
	}
	if _, err := r.Assign(c.cols[2], row, 0); err != nil {
		return cs.Cell{}, 0, err
	}
	if err := r.EnableSelector(c.sel, row); err != nil {
		return cs.Cell{}, 0, err
	}
	return yCell, yVal, nil
}

// MulBy3Chip computes y = xtime(x)^x via a lookup against the
// mul-by-3-tagged slice of the shared table.
type MulBy3Chip struct {
	sel  cs.Selector
	cols [3]cs.Column
}

// Assign copies x into the chip's row, looks up y = MulBy3(xVal) out of
// circuit, assigns it, and enables the mul-by-3 lookup.
func (c *MulBy3Chip) Assign(g *Group, r cs.Region, x cs.Cell, xVal byte) (cs.Cell, byte, error) {
	row := g.AllocRow()
	yVal := table.MulBy3(xVal)

	xCell, err := r.Assign(c.cols[0], row, cs.Element(xVal))
	if err != nil {
		return cs.Cell{}, 0, err
	}
	if err := r.Copy(xCell, x); err != nil {
		return cs.Cell{}, 0, err
	}
	yCell, err := r.Assign(c.cols[1], row, cs.Element(yVal))
	if err != nil {
		return cs.Cell{}, 0, err
	}
	if _, err := r.Assign(c.cols[2], row, 0); err != nil {
		return cs.Cell{}, 0, err
	}
	if err := r.EnableSelector(c.sel, row); err != nil {
		return cs.Cell{}, 0, err
	}
	return yCell, yVal, nil
}

// MulByCoef dispatches to MulBy2, MulBy3, or a pure equality copy for
// coefficient 1, following spec §9's "do not encode as runtime
// polymorphism" guidance: the coefficient is a small closed enumeration
// {1, 2, 3}, not an interface.
func MulByCoef(g *Group, r cs.Region, coef int, x cs.Cell, xVal byte) (cs.Cell, byte, error) {
	switch coef {
	case 1:
		return x, xVal, nil
	case 2:
		return g.MulBy2.Assign(g, r, x, xVal)
	case 3:
		return g.MulBy3.Assign(g, r, x, xVal)
	default:
		return cs.Cell{}, 0, ErrInvalidCoef
	}
}
