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

package pow

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"

	"code.subnetd.io/subnetd/core/types"
	"code.subnetd.io/subnetd/libs/config/encoding"
	"code.subnetd.io/subnetd/libs/num"
	"code.subnetd.io/subnetd/logging"

	"golang.org/x/crypto/sha3"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const namedLogger = "pow"

// NonceSize is the size of a proof of work, a big endian nonce.
const NonceSize = 8

var (
	ErrInvalidProofSize   = errors.New("proof of work must be an 8 bytes nonce")
	ErrDifficultyNotMet   = errors.New("proof of work does not meet the difficulty")
	ErrProofAlreadyUsed   = errors.New("proof of work was already used")
	ErrNoSolutionInBudget = errors.New("no proof of work found within the iteration budget")
)

type Config struct {
	Level encoding.LogLevel `long:"log-level"`
}

func NewDefaultConfig() Config {
	return Config{
		Level: encoding.LogLevel{Level: logging.InfoLevel},
	}
}

// Engine validates registration requests. An empty proof pays with a burn,
// anything else must be a proof of work for the subnet and hotkey.
type Engine struct {
	log *logging.Logger
	// hex seals of the accepted proofs
	used map[string]struct{}
}

func New(log *logging.Logger, conf Config) *Engine {
	log = log.Named(namedLogger)
	log.SetLevel(conf.Level.Get())
	return &Engine{
		log:  log,
		used: map[string]struct{}{},
	}
}

// Seal is the hash a proof of work is measured on.
func Seal(netuid types.NetUID, hotkey types.Hotkey, nonce uint64) []byte {
	buf := make([]byte, 2+len(hotkey)+NonceSize)
	binary.BigEndian.PutUint16(buf, uint16(netuid))
	copy(buf[2:], hotkey)
	binary.BigEndian.PutUint64(buf[2+len(hotkey):], nonce)
	h := sha3.Sum256(buf)
	return h[:]
}

// MeetsDifficulty is true when seal * difficulty fits in 256 bits.
func MeetsDifficulty(seal []byte, difficulty uint64) bool {
	var b [32]byte
	copy(b[:], seal)
	h := num.UintFromBytes(b)
	_, overflow := num.UintZero().MulOverflow(h, num.NewUint(difficulty))
	return !overflow
}

func Proof(nonce uint64) []byte {
	p := make([]byte, NonceSize)
	binary.BigEndian.PutUint64(p, nonce)
	return p
}

// Solve searches a nonce meeting the difficulty, starting at from.
func Solve(netuid types.NetUID, hotkey types.Hotkey, difficulty, from, budget uint64) ([]byte, error) {
	for nonce := from; nonce < from+budget; nonce++ {
		if MeetsDifficulty(Seal(netuid, hotkey, nonce), difficulty) {
			return Proof(nonce), nil
		}
	}
	return nil, ErrNoSolutionInBudget
}

func (e *Engine) Validate(_ context.Context, netuid types.NetUID, hotkey types.Hotkey, _ types.Coldkey, difficulty uint64, proof []byte) (types.RegistrationChannel, error) {
	if len(proof) == 0 {
		return types.RegistrationChannelBurn, nil
	}
	if len(proof) != NonceSize {
		return types.RegistrationChannelUnspecified, ErrInvalidProofSize
	}
	seal := Seal(netuid, hotkey, binary.BigEndian.Uint64(proof))
	key := hex.EncodeToString(seal)
	if _, ok := e.used[key]; ok {
		return types.RegistrationChannelUnspecified, ErrProofAlreadyUsed
	}
	if !MeetsDifficulty(seal, difficulty) {
		e.log.Debug("proof of work rejected",
			logging.NetUID(uint16(netuid)),
			logging.Hotkey(string(hotkey)),
			logging.Uint64("difficulty", difficulty))
		return types.RegistrationChannelUnspecified, ErrDifficultyNotMet
	}
	e.used[key] = struct{}{}
	return types.RegistrationChannelPoW, nil
}

func (e *Engine) Name() string {
	return "pow"
}

func (e *Engine) Checkpoint() ([]byte, error) {
	seals := maps.Keys(e.used)
	slices.Sort(seals)
	return json.Marshal(seals)
}

func (e *Engine) Load(_ context.Context, data []byte) error {
	var seals []string
	if err := json.Unmarshal(data, &seals); err != nil {
		return err
	}
	e.used = make(map[string]struct{}, len(seals))
	for _, s := range seals {
		e.used[s] = struct{}{}
	}
	return nil
}
