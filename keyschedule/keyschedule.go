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

// Package keyschedule implements the AES-128 key expansion state
// machine from spec §4.3: eleven states (round 0..10), a single
// forward transition per state, expanding a 16-byte key into 44
// four-byte words (176 byte cells) using the U8Xor, Sbox and
// U8RangeCheck chips plus a fixed column carrying the round constants.
package keyschedule

import (
	"github.com/SnellerInc/aes128circuit/chips"
	"github.com/SnellerInc/aes128circuit/cs"
)

// RoundConstants is the sequence spec §6 fixes: rc(r) used at the
// output round r+1. rc(9) is 54, not 108 — the classical off-by-one
// this module is tested against (spec §8).
var RoundConstants = [10]byte{1, 2, 4, 8, 16, 32, 64, 128, 27, 54}

// RoundKeyTable is the once-assigned, read-only view of the 11
// round-key words described in spec §3. Words are indexed 0..43;
// Round(r) returns the 4 words used at AddRoundKey round r.
type RoundKeyTable struct {
	words [44][4]cs.Cell
	Trace [44][4]byte
}

// Round returns the 4 words (each a [4]cs.Cell of bytes, column-major)
// that make up round key r (0..10).
func (t *RoundKeyTable) Round(r int) [4][4]cs.Cell {
	var out [4][4]cs.Cell
	copy(out[:], t.words[4*r:4*r+4])
	return out
}

// Word returns the raw cell handles for word index w (0..43).
func (t *RoundKeyTable) Word(w int) [4]cs.Cell { return t.words[w] }

// Config bundles the resources ExpandKey needs from the active column
// group: the group itself (for its five chips and row budget) plus the
// fixed rcon column and its pinning selector, both allocated once at
// circuit Configure time and used only by the key schedule (spec §4.3).
type Config struct {
	Group  *chips.Group
	RconCol cs.Column
	RconSel cs.Selector
}

// ExpandKey runs the 11-state key-schedule machine over key and returns
// the resulting round-key table. It must be called exactly once per
// proof before any Encrypt call (spec §4.6); the scheduler in package
// circuit enforces that ordering and reserves this call's row cost out
// of group 0's budget.
func ExpandKey(l cs.Layouter, cfg Config, key [16]byte) (*RoundKeyTable, error) {
	var table RoundKeyTable

	err := l.AssignRegion("key_schedule", func(r cs.Region) error {
		g := cfg.Group

		// Round 0: assign the input key bytes directly, column-major
		// (word w, byte b) = key[4*w+b].
		for w := 0; w < 4; w++ {
			for b := 0; b < 4; b++ {
				v := key[4*w+b]
				cell, err := assignRaw(g, r, v)
				if err != nil {
					return err
				}
				table.words[w][b] = cell
				table.Trace[w][b] = v
			}
		}

		for round := 1; round <= 10; round++ {
			prev := round - 1
			prevWords := [4][4]cs.Cell{table.words[4*prev], table.words[4*prev+1], table.words[4*prev+2], table.words[4*prev+3]}
			prevVals := [4][4]byte{table.Trace[4*prev], table.Trace[4*prev+1], table.Trace[4*prev+2], table.Trace[4*prev+3]}

			// temp = RotWord(prevWords[3]): realized purely by
			// relabeling existing cells, no new row (spec §4.3).
			last := prevWords[3]
			lastVal := prevVals[3]
			temp := [4]cs.Cell{last[1], last[2], last[3], last[0]}
			tempVal := [4]byte{lastVal[1], lastVal[2], lastVal[3], lastVal[0]}

			// subbed = SubWord(temp): 4 Sbox lookups.
			var subbed [4]cs.Cell
			var subbedVal [4]byte
			for i := 0; i < 4; i++ {
				cell, v, err := g.Sbox.Assign(g, r, temp[i], tempVal[i])
				if err != nil {
					return err
				}
				subbed[i] = cell
				subbedVal[i] = v
			}

			// Pin rc(round-1) into an advice cell via the dedicated
			// equality gate, then fold it into subbed[0..4] with 4 XOR
			// lookups to produce rconned (spec §4.3).
			rc := RoundConstants[round-1]
			rcCell, err := pinRcon(g, r, cfg.RconCol, cfg.RconSel, rc)
			if err != nil {
				return err
			}
			zeroCell, err := assignRaw(g, r, 0)
			if err != nil {
				return err
			}

			var rconned [4]cs.Cell
			var rconnedVal [4]byte
			rconWordCells := [4]cs.Cell{rcCell, zeroCell, zeroCell, zeroCell}
			rconWordVals := [4]byte{rc, 0, 0, 0}
			for i := 0; i < 4; i++ {
				cell, v, err := g.Xor.Assign(g, r, subbed[i], subbedVal[i], rconWordCells[i], rconWordVals[i])
				if err != nil {
					return err
				}
				rconned[i] = cell
				rconnedVal[i] = v
			}

			// word_0 = prevWords[0] xor rconned: 4 XOR lookups.
			var word0 [4]cs.Cell
			var word0Val [4]byte
			for i := 0; i < 4; i++ {
				cell, v, err := g.Xor.Assign(g, r, prevWords[0][i], prevVals[0][i], rconned[i], rconnedVal[i])
				if err != nil {
					return err
				}
				word0[i] = cell
				word0Val[i] = v
			}
			table.words[4*round] = word0
			table.Trace[4*round] = word0Val

			// word_k = prevWords[k] xor word_{k-1}, for k = 1..3.
			prevComputed := word0
			prevComputedVal := word0Val
			for k := 1; k < 4; k++ {
				var wk [4]cs.Cell
				var wkVal [4]byte
				for i := 0; i < 4; i++ {
					cell, v, err := g.Xor.Assign(g, r, prevWords[k][i], prevVals[k][i], prevComputed[i], prevComputedVal[i])
					if err != nil {
						return err
					}
					wk[i] = cell
					wkVal[i] = v
				}
				table.words[4*round+k] = wk
				table.Trace[4*round+k] = wkVal
				prevComputed = wk
				prevComputedVal = wkVal
			}
		}

		// Range-check every scheduled output byte (rounds 1..10). This
		// is a documentation pass per spec §4.3: XOR outputs are
		// already byte-range by construction of the XOR table, but an
		// explicit check catches any stray non-byte cell (spec §9,
		// open question on U8RangeCheckChip's scope).
		for w := 4; w < 44; w++ {
			for b := 0; b < 4; b++ {
				if err := g.U8Range.Assign(g, r, table.words[w][b], table.Trace[w][b]); err != nil {
					return err
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return &table, nil
}

// assignRaw writes val into the group's first advice column at a fresh
// row with no selector enabled — used for the round-0 key bytes and for
// the zero padding fed into the rcon word's last three bytes.
func assignRaw(g *chips.Group, r cs.Region, val byte) (cs.Cell, error) {
	row := g.AllocRow()
	cell, err := r.Assign(g.Cols[0], row, cs.Element(val))
	if err != nil {
		return cs.Cell{}, err
	}
	return cell, nil
}

// pinRcon assigns rc into the group's advice column and a matching
// fixed cell carrying the same value, then enables the equality gate
// that forces them equal (spec §4.3, "q_eq_rcon * (advice - fixed) = 0").
func pinRcon(g *chips.Group, r cs.Region, rconCol cs.Column, sel cs.Selector, rc byte) (cs.Cell, error) {
	row := g.AllocRow()
	adviceCell, err := r.Assign(g.Cols[0], row, cs.Element(rc))
	if err != nil {
		return cs.Cell{}, err
	}
	if _, err := r.AssignFixed(rconCol, row, cs.Element(rc)); err != nil {
		return cs.Cell{}, err
	}
	if err := r.EnableSelector(sel, row); err != nil {
		return cs.Cell{}, err
	}
	return adviceCell, nil
}
