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

import "github.com/SnellerInc/aes128circuit/cs"

// U8XorChip computes z = x^y for two byte cells via a lookup against
// the XOR-tagged slice of the shared table. XOR has no compact
// algebraic form over a prime field, so — like the S-box and the two
// GF(2^8) multiplications — it is tabulated rather than gated (spec
// §4.2).
type U8XorChip struct {
	sel  cs.Selector
	cols [3]cs.Column
}

// Assign copies x and y into the chip's row, computes z = xVal^yVal out
// of circuit, assigns it, and enables the XOR lookup. It returns the
// cell holding z and its value.
func (c *U8XorChip) Assign(g *Group, r cs.Region, x cs.Cell, xVal byte, y cs.Cell, yVal byte) (cs.Cell, byte, error) {
	row := g.AllocRow()
	zVal := xVal ^ yVal

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
	if err := r.Copy(yCell, y); err != nil {
		return cs.Cell{}, 0, err
	}

	zCell, err := r.Assign(c.cols[2], row, cs.Element(zVal))
	if err != nil {
		return cs.Cell{}, 0, err
	}

	if err := r.EnableSelector(c.sel, row); err != nil {
		return cs.Cell{}, 0, err
	}
	return zCell, zVal, nil
}
