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

// U8RangeCheckChip constrains one byte cell to lie in 0..255 via a
// lookup against the U8-tagged slice of the shared table (spec §4.2).
type U8RangeCheckChip struct {
	sel  cs.Selector
	cols [3]cs.Column
}

// Assign range-checks b (whose canonical value is bVal) in g at the
// next free row. The chip only needs one of the group's three columns;
// the other two are zero-padded to match the U8 table rows' (x, 0, 0)
// shape (spec §3).
func (c *U8RangeCheckChip) Assign(g *Group, r cs.Region, b cs.Cell, bVal byte) error {
	row := g.AllocRow()

	cell, err := r.Assign(c.cols[0], row, cs.Element(bVal))
	if err != nil {
		return err
	}
	if err := r.Copy(cell, b); err != nil {
		return err
	}
	if _, err := r.Assign(c.cols[1], row, 0); err != nil {
		return err
	}
	if _, err := r.Assign(c.cols[2], row, 0); err != nil {
		return err
	}
	return r.EnableSelector(c.sel, row)
}
