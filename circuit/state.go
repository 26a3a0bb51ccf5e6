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

import (
	"github.com/SnellerInc/aes128circuit/chips"
	"github.com/SnellerInc/aes128circuit/cs"
	"github.com/SnellerInc/aes128circuit/keyschedule"
)

// mixColumnsMatrix is the fixed 4x4 coefficient matrix from spec §4.4,
// represented as a constant literal rather than runtime polymorphism
// (spec §9): each entry is one of the closed set {1, 2, 3} and is
// dispatched by chips.MulByCoef.
var mixColumnsMatrix = [4][4]int{
	{2, 3, 1, 1},
	{1, 2, 3, 1},
	{1, 1, 2, 3},
	{3, 1, 1, 2},
}

// state is the 4x4 byte matrix the encryption pipeline threads through
// each round, column-major per spec §3: state[row][col] is the byte at
// row `row` of word (column) `col`.
type state struct {
	cell [4][4]cs.Cell
	val  [4][4]byte
}

// newStateFromBlock assigns 16 raw bytes (the plaintext) into fresh
// cells, column-major: block[4*col+row] becomes state[row][col].
func newStateFromBlock(g *chips.Group, r cs.Region, block [16]byte) (state, error) {
	var s state
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			v := block[4*col+row]
			cell, err := rawAssign(g, r, v)
			if err != nil {
				return state{}, err
			}
			s.cell[row][col] = cell
			s.val[row][col] = v
		}
	}
	return s, nil
}

// bytes returns the state's 16 canonical byte values in the same
// column-major order newStateFromBlock consumes.
func (s state) bytes() [16]byte {
	var out [16]byte
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			out[4*col+row] = s.val[row][col]
		}
	}
	return out
}

// subBytes applies the Sbox chip to all 16 state bytes (spec §4.4.a):
// 16 Sbox lookups, one new row each.
func subBytes(g *chips.Group, r cs.Region, in state) (state, error) {
	var out state
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			cell, v, err := g.Sbox.Assign(g, r, in.cell[row][col], in.val[row][col])
			if err != nil {
				return state{}, err
			}
			out.cell[row][col] = cell
			out.val[row][col] = v
		}
	}
	return out, nil
}

// shiftRows reorders bytes per spec §6's column-major permutation
// s'[row][col] = s[row][(col+row) mod 4]. This is realized purely by
// relabeling existing cell handles: no new cell, no new row, no new
// constraint (spec §4.4.b).
func shiftRows(in state) state {
	var out state
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			src := (col + row) % 4
			out.cell[row][col] = in.cell[row][src]
			out.val[row][col] = in.val[row][src]
		}
	}
	return out
}

// mixColumns applies the fixed matrix from spec §4.4.c to each of the 4
// words (columns) independently. Coefficient 1 is a pure equality copy
// (no new cell, no selector, per spec §9); coefficients 2 and 3 dispatch
// to MulBy2/MulBy3. Each output byte is then combined from its (up to 4)
// coefficient-multiplied terms with 3 XOR lookups.
func mixColumns(g *chips.Group, r cs.Region, in state) (state, error) {
	var out state
	for col := 0; col < 4; col++ {
		src := [4]cs.Cell{in.cell[0][col], in.cell[1][col], in.cell[2][col], in.cell[3][col]}
		srcVal := [4]byte{in.val[0][col], in.val[1][col], in.val[2][col], in.val[3][col]}

		for row := 0; row < 4; row++ {
			var terms [4]cs.Cell
			var termVals [4]byte
			for k := 0; k < 4; k++ {
				cell, v, err := chips.MulByCoef(g, r, mixColumnsMatrix[row][k], src[k], srcVal[k])
				if err != nil {
					return state{}, err
				}
				terms[k] = cell
				termVals[k] = v
			}

			acc, accVal := terms[0], termVals[0]
			for k := 1; k < 4; k++ {
				cell, v, err := g.Xor.Assign(g, r, acc, accVal, terms[k], termVals[k])
				if err != nil {
					return state{}, err
				}
				acc, accVal = cell, v
			}
			out.cell[row][col] = acc
			out.val[row][col] = accVal
		}
	}
	return out, nil
}

// addRoundKey XORs every state byte with the matching byte of round key
// rk (spec §4.4.d). rk is indexed [word/col][byte/row], matching
// keyschedule.RoundKeyTable.Round's layout.
func addRoundKey(g *chips.Group, r cs.Region, in state, rk [4][4]cs.Cell, rkVal [4][4]byte) (state, error) {
	var out state
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			cell, v, err := g.Xor.Assign(g, r, in.cell[row][col], in.val[row][col], rk[col][row], rkVal[col][row])
			if err != nil {
				return state{}, err
			}
			out.cell[row][col] = cell
			out.val[row][col] = v
		}
	}
	return out, nil
}

// roundKeyBytes extracts a round's values out of a keyschedule.Trace for
// use alongside addRoundKey, which needs both cell handles and plain
// values to compute the next XOR out of circuit.
func roundKeyBytes(rk *keyschedule.RoundKeyTable, round int) [4][4]byte {
	var out [4][4]byte
	// Trace is column-major (word, byte) exactly like RoundKeyTable.words.
	copy(out[:], rk.Trace[4*round:4*round+4])
	return out
}

// rawAssign writes val into the group's first advice column at a fresh
// row with no selector enabled, the same helper keyschedule.assignRaw
// provides for round-0 key bytes, used here for the plaintext bytes.
func rawAssign(g *chips.Group, r cs.Region, val byte) (cs.Cell, error) {
	row := g.AllocRow()
	return r.Assign(g.Cols[0], row, cs.Element(val))
}
