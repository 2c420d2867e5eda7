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


package processor

import (
	"code.subnetd.io/subnetd/core/broker"
	"code.subnetd.io/subnetd/core/events"
)

// blockBroker holds back the events sent while a block or a request is
// applied, they are only forwarded once every change has been kept.
type blockBroker struct {
	broker.Interface

	buffering bool
	buf       []events.Event
}

func newBlockBroker(b broker.Interface) *blockBroker {
	return &blockBroker{Interface: b}
}

func (b *blockBroker) Send(evt events.Event) {
	if b.buffering {
		b.buf = append(b.buf, evt)
		return
	}
	b.Interface.Send(evt)
}

func (b *blockBroker) SendBatch(evts []events.Event) {
	if b.buffering {
		b.buf = append(b.buf, evts...)
		return
	}
	b.Interface.SendBatch(evts)
}

func (b *blockBroker) begin() {
	b.buffering = true
	b.buf = nil
}

func (b *blockBroker) commit() {
	evts := b.buf
	b.buffering = false
	b.buf = nil
	if len(evts) > 0 {
		b.Interface.SendBatch(evts)
	}
}

// discard drops the held back events and returns how many were dropped.
func (b *blockBroker) discard() int {
	n := len(b.buf)
	b.buffering = false
	b.buf = nil
	return n
}
