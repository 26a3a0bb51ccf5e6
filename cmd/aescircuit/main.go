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

// Command aescircuit drives the reference cs implementation through
// Configure, ScheduleKey and Encrypt for one or more key/plaintext
// pairs, and reports each ciphertext alongside a pass/fail against the
// refaes oracle. It is glue only: no prover, verifier or transcript is
// ever constructed here.
package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/SnellerInc/aes128circuit/circuit"
	"github.com/SnellerInc/aes128circuit/cs"
	"github.com/SnellerInc/aes128circuit/internal/refaes"
)

var (
	dashK      int
	dashN      int
	dashKey    string
	dashPlain  string
	dashParams string
)

func init() {
	flag.IntVar(&dashK, "K", 20, "log2 row budget per column group")
	flag.IntVar(&dashN, "N", 1, "number of column groups")
	flag.StringVar(&dashKey, "k", "000102030405060708090a0b0c0d0e0f", "16-byte AES key, hex-encoded")
	flag.StringVar(&dashPlain, "p", "00112233445566778899aabbccddeeff", "16-byte plaintext block, hex-encoded")
	flag.StringVar(&dashParams, "params", "", "JSON file describing circuit shape and a batch of key/plaintext jobs (overrides -K/-N/-k/-p)")
}

func exitf(f string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, f+"\n", args...)
	os.Exit(1)
}

// job is one key/plaintext pair to run through the circuit.
type job struct {
	Key       string `json:"key"`
	Plaintext string `json:"plaintext"`
}

// fileParams is the shape of the optional -params JSON file.
type fileParams struct {
	K    int   `json:"K"`
	N    int   `json:"N"`
	Jobs []job `json:"jobs"`
}

func decodeBlock(name, hexStr string) [16]byte {
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		exitf("%s: invalid hex %q: %s", name, hexStr, err)
	}
	if len(b) != 16 {
		exitf("%s: expected 16 bytes, got %d", name, len(b))
	}
	var out [16]byte
	copy(out[:], b)
	return out
}

func loadParams() (circuit.Params, []job) {
	if dashParams == "" {
		return circuit.Params{K: dashK, N: dashN}, []job{{Key: dashKey, Plaintext: dashPlain}}
	}

	data, err := os.ReadFile(dashParams)
	if err != nil {
		exitf("reading %s: %s", dashParams, err)
	}
	var fp fileParams
	if err := json.Unmarshal(data, &fp); err != nil {
		exitf("parsing %s: %s", dashParams, err)
	}
	if len(fp.Jobs) == 0 {
		exitf("%s: no jobs listed", dashParams)
	}
	return circuit.Params{K: fp.K, N: fp.N}, fp.Jobs
}

func main() {
	flag.Parse()
	params, jobs := loadParams()

	r := cs.NewRef()
	cfg, err := circuit.Configure(r, params)
	if err != nil {
		exitf("circuit.Configure: %s", err)
	}
	log.Printf("circuit %s: K=%d N=%d, %d jobs", cfg.ID, params.K, params.N, len(jobs))
	if err := cfg.LoadTable(r); err != nil {
		exitf("circuit %s: LoadTable: %s", cfg.ID, err)
	}

	failures := 0
	var scheduledKey string
	for i, j := range jobs {
		key := decodeBlock(fmt.Sprintf("jobs[%d].key", i), j.Key)
		plaintext := decodeBlock(fmt.Sprintf("jobs[%d].plaintext", i), j.Plaintext)

		if j.Key != scheduledKey {
			if err := cfg.ScheduleKey(r, key); err != nil {
				exitf("circuit %s: ScheduleKey: %s", cfg.ID, err)
			}
			scheduledKey = j.Key
		}

		cells, err := cfg.Encrypt(r, plaintext)
		if err != nil {
			log.Printf("circuit %s: job %d: Encrypt: %s", cfg.ID, i, err)
			failures++
			continue
		}

		var got [16]byte
		ok := true
		for b, cell := range cells {
			v, assigned := r.Canonical(cell)
			byteVal, canonical := v.Byte()
			if !assigned || !canonical {
				ok = false
				break
			}
			got[b] = byteVal
		}

		want := refaes.Key128(key).Encrypt(plaintext)
		pass := ok && got == want
		if !pass {
			failures++
		}
		fmt.Printf("job %d: key=%x plaintext=%x ciphertext=%x pass=%v\n", i, key, plaintext, got, pass)
	}

	if err := r.Verify(); err != nil {
		exitf("circuit %s: Verify: %s", cfg.ID, err)
	}
	if failures > 0 {
		exitf("circuit %s: %d of %d jobs failed", cfg.ID, failures, len(jobs))
	}
}
