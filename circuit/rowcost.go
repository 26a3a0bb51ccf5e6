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
	"sync"

	"github.com/SnellerInc/aes128circuit/chips"
	"github.com/SnellerInc/aes128circuit/cs"
	"github.com/SnellerInc/aes128circuit/keyschedule"
	"github.com/SnellerInc/aes128circuit/table"
)

// KEY_SCHEDULE_ROWS and AES_ROWS (spec §4.5) are not hand-maintained
// magic numbers: spec §9 warns that the shared table's row layout is
// fragile precisely because it is hand-derived and easy to get subtly
// wrong, and the same risk applies to row-cost arithmetic over ten AES
// rounds and eleven key-schedule states. Instead this package measures
// both costs once, by running the real key-schedule and encrypt-block
// code paths against a throwaway reference constraint system, and
// caches the result. A change to either pipeline's row cost is
// reflected here automatically instead of silently drifting out of
// sync with a hardcoded constant.
var rowCostOnce sync.Once
var keyScheduleRows int
var perBlockRows int

func measureRowCosts() {
	ref := cs.NewRef()
	tcols := table.Declare(ref)
	g := chips.ConfigureGroup(ref, tcols)
	rconCol := ref.FixedColumn()
	rconSel := ref.ComplexSelector()
	ref.EqualityGate("key_schedule_rcon", rconSel, g.Cols[0], rconCol)

	rk, err := keyschedule.ExpandKey(ref, keyschedule.Config{
		Group:   g,
		RconCol: rconCol,
		RconSel: rconSel,
	}, [16]byte{})
	if err != nil {
		panic("circuit: measuring key schedule row cost: " + err.Error())
	}
	keyScheduleRows = g.RowsUsed()

	before := g.RowsUsed()
	err = ref.AssignRegion("measure_encrypt", func(r cs.Region) error {
		_, err := encryptBlock(g, r, rk, [16]byte{})
		return err
	})
	if err != nil {
		panic("circuit: measuring encrypt row cost: " + err.Error())
	}
	perBlockRows = g.RowsUsed() - before
}

func keyScheduleRowCost() int {
	rowCostOnce.Do(measureRowCosts)
	return keyScheduleRows
}

func encryptRowCost() int {
	rowCostOnce.Do(measureRowCosts)
	return perBlockRows
}
