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
	"testing"

	"github.com/SnellerInc/aes128circuit/cs"
	"github.com/SnellerInc/aes128circuit/internal/refaes"
	"github.com/SnellerInc/aes128circuit/table"
)

// tamperedRows returns the full table with its sbox-tagged row for x=0
// corrupted, so any witness that looks up Sbox[0] fails Verify.
func tamperedRows() []cs.TableRow {
	rows := table.BuildRows()
	for i, row := range rows {
		if row.Tag == cs.TagSbox && row.X == 0 {
			rows[i].Y ^= 1
			break
		}
	}
	return rows
}

func cellsToBlock(t *testing.T, r *cs.Ref, cells [16]cs.Cell) [16]byte {
	t.Helper()
	var out [16]byte
	for i, c := range cells {
		v, ok := r.Canonical(c)
		if !ok {
			t.Fatalf("cell %d (%v) never assigned", i, c)
		}
		b, ok := v.Byte()
		if !ok {
			t.Fatalf("cell %d (%v) holds non-canonical value %d", i, c, v)
		}
		out[i] = b
	}
	return out
}

func runEncrypt(t *testing.T, key, plaintext [16]byte) (*cs.Ref, [16]byte) {
	t.Helper()
	r := cs.NewRef()
	cfg, err := Configure(r, Params{K: 20, N: 1})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if err := cfg.LoadTable(r); err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	if err := cfg.ScheduleKey(r, key); err != nil {
		t.Fatalf("ScheduleKey: %v", err)
	}
	cells, err := cfg.Encrypt(r, plaintext)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if err := r.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	return r, cellsToBlock(t, r, cells)
}

func TestEncryptKnownVectors(t *testing.T) {
	cases := []struct {
		name       string
		key        [16]byte
		plaintext  [16]byte
		ciphertext [16]byte
	}{
		{
			name:       "S1_zero_key_zero_block",
			key:        [16]byte{},
			plaintext:  [16]byte{},
			ciphertext: [16]byte{0x66, 0xe9, 0x4b, 0xd4, 0xef, 0x8a, 0x2c, 0x3b, 0x88, 0x4c, 0xfa, 0x59, 0xca, 0x34, 0x2b, 0x2e},
		},
		{
			name:       "S2_fips197_appendix_b",
			key:        [16]byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f},
			plaintext:  [16]byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88, 0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff},
			ciphertext: [16]byte{0x69, 0xc4, 0xe0, 0xd8, 0x6a, 0x7b, 0x04, 0x30, 0xd8, 0xcd, 0xb7, 0x80, 0x70, 0xb4, 0xc5, 0x5a},
		},
		{
			name:       "S3_nist_sp800_38a",
			key:        [16]byte{0x2b, 0x7e, 0x15, 0x16, 0x28, 0xae, 0xd2, 0xa6, 0xab, 0xf7, 0x15, 0x88, 0x09, 0xcf, 0x4f, 0x3c},
			plaintext:  [16]byte{0x6b, 0xc1, 0xbe, 0xe2, 0x2e, 0x40, 0x9f, 0x96, 0xe9, 0x3d, 0x7e, 0x11, 0x73, 0x93, 0x17, 0x2a},
			ciphertext: [16]byte{0x3a, 0xd7, 0x7b, 0xb4, 0x0d, 0x7a, 0x36, 0x60, 0xa8, 0x9e, 0xca, 0xf3, 0x24, 0x66, 0xef, 0x97},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, got := runEncrypt(t, c.key, c.plaintext)
			if got != c.ciphertext {
				t.Fatalf("got %x, want %x", got, c.ciphertext)
			}
			// Cross-check against the plain-Go oracle too, so this test
			// fails loudly if the literal above were ever transcribed
			// wrong rather than quietly agreeing with a wrong circuit.
			oracle := refaes.Key128(c.key).Encrypt(c.plaintext)
			if oracle != c.ciphertext {
				t.Fatalf("oracle %x disagrees with literal %x", oracle, c.ciphertext)
			}
		})
	}
}

func TestEncryptMatchesOracleRandomKey(t *testing.T) {
	key, err := refaes.RandomKey128()
	if err != nil {
		t.Fatalf("RandomKey128: %v", err)
	}
	plaintext, err := refaes.RandomKey128()
	if err != nil {
		t.Fatalf("RandomKey128 (plaintext): %v", err)
	}

	_, got := runEncrypt(t, [16]byte(key), [16]byte(plaintext))
	want := key.Encrypt([16]byte(plaintext))
	if got != want {
		t.Fatalf("got %x, want %x", got, want)
	}
}

func TestEncryptBeforeScheduleKeyFails(t *testing.T) {
	r := cs.NewRef()
	cfg, err := Configure(r, Params{K: 20, N: 1})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if err := cfg.LoadTable(r); err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	if _, err := cfg.Encrypt(r, [16]byte{}); err != ErrKeyNotScheduled {
		t.Fatalf("Encrypt before ScheduleKey = %v, want ErrKeyNotScheduled", err)
	}
}

func TestCapacityExhaustion(t *testing.T) {
	const k, n = 12, 2
	r := cs.NewRef()
	cfg, err := Configure(r, Params{K: k, N: n})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if err := cfg.LoadTable(r); err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	if err := cfg.ScheduleKey(r, [16]byte{}); err != nil {
		t.Fatalf("ScheduleKey: %v", err)
	}

	budget := cfg.Params.RowBudget()
	need := encryptRowCost()
	ksRows := keyScheduleRowCost()
	capGroup0 := (budget - ksRows) / need
	capRest := (budget / need) * (n - 1)
	wantOK := capGroup0 + capRest

	ok := 0
	for {
		_, err := cfg.Encrypt(r, [16]byte{byte(ok)})
		if err != nil {
			if err != ErrCapacityExceeded {
				t.Fatalf("unexpected error after %d successful encrypts: %v", ok, err)
			}
			break
		}
		ok++
		if ok > wantOK+1 {
			t.Fatalf("capacity exhaustion never triggered after %d encrypts (wanted %d)", ok, wantOK)
		}
	}
	if ok != wantOK {
		t.Fatalf("successful encrypt count = %d, want %d", ok, wantOK)
	}
}

func TestConfigureRejectsInvalidParams(t *testing.T) {
	r := cs.NewRef()
	if _, err := Configure(r, Params{K: 0, N: 1}); err == nil {
		t.Fatal("Configure should reject K=0")
	}
	if _, err := Configure(r, Params{K: 1, N: 0}); err == nil {
		t.Fatal("Configure should reject N=0")
	}
}

func TestVerifyFailsOnTamperedSbox(t *testing.T) {
	r := cs.NewRef()
	cfg, err := Configure(r, Params{K: 20, N: 1})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}

	// Load a table whose sbox-tagged rows are wrong for exactly one
	// input; any witness that exercises that byte through the sbox
	// lookup should fail Verify.
	if err := r.LoadTable("enc_full_table", cfg.table.Array(), tamperedRows()); err != nil {
		t.Fatalf("LoadTable: %v", err)
	}

	if err := cfg.ScheduleKey(r, [16]byte{}); err != nil {
		t.Fatalf("ScheduleKey: %v", err)
	}
	if _, err := cfg.Encrypt(r, [16]byte{0x00}); err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	if err := r.Verify(); err == nil {
		t.Fatal("Verify should fail against a tampered sbox table")
	} else if _, ok := err.(*cs.SynthesisError); !ok {
		t.Fatalf("expected a *cs.SynthesisError, got %T: %v", err, err)
	}
}
