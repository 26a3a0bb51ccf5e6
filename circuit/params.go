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

package circuit

import "fmt"

// Params is the compile-time circuit shape from spec §4.5: 2^K is the
// row budget available to each column group, and N is the number of
// independent column groups. Embedders choose (K, N) once, before
// Configure; Params carries no mutable state of its own.
type Params struct {
	K int
	N int
}

// Validate reports whether p describes a usable circuit shape.
func (p Params) Validate() error {
	if p.K <= 0 {
		return fmt.Errorf("circuit: K must be positive, got %d", p.K)
	}
	if p.N <= 0 {
		return fmt.Errorf("circuit: N must be positive, got %d", p.N)
	}
	return nil
}

// RowBudget returns 2^K, the number of rows available per column group.
func (p Params) RowBudget() int {
	return 1 << uint(p.K)
}
