// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package epochtime

// DisabledEpochSentinel is returned by BlocksUntilNextEpoch for a tempo of
// zero. It is not a countdown: a zero tempo never triggers, callers must
// use IsTriggerBlock rather than compare against this value.
const DisabledEpochSentinel uint64 = 1000

// BlocksUntilNextEpoch returns the number of blocks before the next epoch
// of the subnet, 0 meaning the given block is a trigger block.
// Subnets are offset by their netuid so they do not all trigger on the same block.
func BlocksUntilNextEpoch(netuid uint16, tempo uint16, block uint64) uint64 {
	if tempo == 0 {
		return DisabledEpochSentinel
	}
	t := uint64(tempo)
	// (block + netuid + 1) mod (tempo + 1), reduced term by term so the
	// sum cannot wrap near the end of the uint64 range.
	r := (block%(t+1) + (uint64(netuid)+1)%(t+1)) % (t + 1)
	return t - r
}

// IsTriggerBlock returns true if the periodic work keyed by the given
// period must run on this block.
func IsTriggerBlock(netuid uint16, tempo uint16, block uint64) bool {
	return tempo != 0 && BlocksUntilNextEpoch(netuid, tempo, block) == 0
}

// NextTriggerBlock returns the first block at or after the given one on
// which the subnet triggers, false when the tempo is zero.
func NextTriggerBlock(netuid uint16, tempo uint16, block uint64) (uint64, bool) {
	if tempo == 0 {
		return 0, false
	}
	return block + BlocksUntilNextEpoch(netuid, tempo, block), true
}
