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

package events

import (
	"context"
	"fmt"

	vgcontext "code.subnetd.io/subnetd/libs/context"
)

type Type int

// Base common denominator all event-bus events share.
type Base struct {
	ctx     context.Context
	blockNr uint64
	seq     uint64
	et      Type
}

// Event - the base event interface type.
type Event interface {
	Type() Type
	Context() context.Context
	Sequence() uint64
	SetSequenceID(s uint64)
	BlockNr() uint64
}

const (
	// All event type -> used by subscribers to just receive all events, has no actual corresponding event payload.
	All Type = iota
	BlockAppliedEvent
	SubnetCreatedEvent
	SubnetRemovedEvent
	RegistrationEvent
	AdmissionAdjustedEvent
	StakeAddedEvent
	StakeRemovedEvent
	DelegateTakeUpdatedEvent
	EmissionInjectedEvent
	RewardPayoutEvent
	NetworkParameterEvent
	CheckpointEvent
)

var toString = map[Type]string{
	All:                      "ALL",
	BlockAppliedEvent:        "BlockAppliedEvent",
	SubnetCreatedEvent:       "SubnetCreatedEvent",
	SubnetRemovedEvent:       "SubnetRemovedEvent",
	RegistrationEvent:        "RegistrationEvent",
	AdmissionAdjustedEvent:   "AdmissionAdjustedEvent",
	StakeAddedEvent:          "StakeAddedEvent",
	StakeRemovedEvent:        "StakeRemovedEvent",
	DelegateTakeUpdatedEvent: "DelegateTakeUpdatedEvent",
	EmissionInjectedEvent:    "EmissionInjectedEvent",
	RewardPayoutEvent:        "RewardPayoutEvent",
	NetworkParameterEvent:    "NetworkParameterEvent",
	CheckpointEvent:          "CheckpointEvent",
}

func newBase(ctx context.Context, t Type) *Base {
	h, _ := vgcontext.BlockHeightFromContext(ctx)
	return &Base{
		ctx:     ctx,
		blockNr: h,
		et:      t,
	}
}

func (b *Base) SetSequenceID(s uint64) {
	// sequence ID can only be set once
	if b.seq != 0 {
		return
	}
	b.seq = s
}

// Sequence returns event sequence number.
func (b Base) Sequence() uint64 {
	return b.seq
}

// Context returns context.
func (b Base) Context() context.Context {
	return b.ctx
}

// Type returns the event type.
func (b Base) Type() Type {
	return b.et
}

// BlockNr returns the block number the event was produced in.
func (b Base) BlockNr() uint64 {
	return b.blockNr
}

// ID is the unique identifier of the event within the chain.
func (b Base) ID() string {
	return fmt.Sprintf("%d-%d", b.blockNr, b.seq)
}

// String get string representation of event type.
func (t Type) String() string {
	s, ok := toString[t]
	if !ok {
		return "UNKNOWN EVENT"
	}
	return s
}
