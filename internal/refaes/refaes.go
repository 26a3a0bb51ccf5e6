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

// Package refaes is the AES-128 oracle used by tests and cmd/aescircuit
// to check a circuit witness against a non-circuit ciphertext. Encrypt
// defers to the standard library's crypto/aes: the oracle must be the
// canonical, independently-implemented cipher, not a second hand-rolled
// one that could share a transcription bug with the circuit's own
// tables. Expand, by contrast, has no standard-library equivalent to
// defer to — crypto/aes never exposes its round-key schedule — so it
// stays a from-FIPS-197 implementation, sharing the S-box package table
// feeds into the circuit's lookup table and the round constants package
// keyschedule uses inside the constraint system, so a schedule check
// against Expand can never disagree with the circuit over a
// transcription error in one of those shared tables.
package refaes

import (
	"crypto/aes"

	"github.com/SnellerInc/aes128circuit/ints"
	"github.com/SnellerInc/aes128circuit/keyschedule"
	"github.com/SnellerInc/aes128circuit/table"
)

// Key128 is a raw AES-128 key.
type Key128 [16]byte

// ExpandedKey128 holds the 11 round keys (round 0 through round 10)
// produced by Key128.Expand, each a 4x4 byte matrix indexed
// [word/column][byte/row] to match keyschedule.RoundKeyTable.Round.
type ExpandedKey128 [11][4][4]byte

// RandomKey128 returns a key drawn from crypto/rand, the same way the
// hardware-accelerator wrapper this package is adapted from sourced
// its key material.
func RandomKey128() (Key128, error) {
	var k Key128
	if err := ints.RandomFillSlice(k[:]); err != nil {
		return Key128{}, err
	}
	return k, nil
}

// Expand runs the FIPS-197 key schedule out of circuit, producing the
// same 11 round keys keyschedule.ExpandKey assigns into cells.
func (k Key128) Expand() ExpandedKey128 {
	var words [44][4]byte
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			words[col][row] = k[4*col+row]
		}
	}

	for col := 4; col < 44; col++ {
		temp := words[col-1]
		if col%4 == 0 {
			temp = subWord(rotWord(temp))
			temp[0] ^= keyschedule.RoundConstants[col/4-1]
		}
		for row := 0; row < 4; row++ {
			words[col][row] = words[col-4][row] ^ temp[row]
		}
	}

	var rk ExpandedKey128
	for round := 0; round < 11; round++ {
		for col := 0; col < 4; col++ {
			rk[round][col] = words[4*round+col]
		}
	}
	return rk
}

// Encrypt runs one AES-128 block encryption via crypto/aes, the
// canonical oracle every circuit witness is checked against.
func (k Key128) Encrypt(plaintext [16]byte) [16]byte {
	block, err := aes.NewCipher(k[:])
	if err != nil {
		// k is always 16 bytes by construction; NewCipher only rejects
		// wrong-length keys.
		panic("refaes: " + err.Error())
	}
	var out [16]byte
	block.Encrypt(out[:], plaintext[:])
	return out
}

func subWord(w [4]byte) [4]byte {
	var out [4]byte
	for i, b := range w {
		out[i] = table.Sbox[b]
	}
	return out
}

func rotWord(w [4]byte) [4]byte {
	return [4]byte{w[1], w[2], w[3], w[0]}
}
