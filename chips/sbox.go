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
	"github.com/SnellerInc/aes128circuit/cs"
	"github.com/SnellerInc/aes128circuit/table"
)

// SboxChip computes y = Sbox[x] for one byte cell via a lookup against
// the S-box-tagged slice of the shared table (spec §4.2).
type SboxChip struct {
	sel  cs.Selector
	cols [3]cs.Column
}

// Assign copies x into the chip's row, looks up y = Sbox[xVal] out of
// circuit, assigns it, and enables the S-box lookup. The group's third
// column is zero-padded to match the S-box table rows' (x, y, 0) shape.
func (c *SboxChip) Assign(g *Group, r cs.Region, x cs.Cell, xVal byte) (cs.Cell, byte, error) {
	row := g.AllocRow()
	yVal := table.Sbox[xVal]

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
