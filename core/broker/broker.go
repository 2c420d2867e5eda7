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

package broker

import (
	"sync"

	"code.subnetd.io/subnetd/core/events"
	"code.subnetd.io/subnetd/libs/config/encoding"
	"code.subnetd.io/subnetd/logging"
)

const namedLogger = "broker"

// Config represents the configuration of the broker.
type Config struct {
	Level encoding.LogLevel `long:"log-level"`
}

// NewDefaultConfig creates an instance of config with default values.
func NewDefaultConfig() Config {
	return Config{
		Level: encoding.LogLevel{Level: logging.InfoLevel},
	}
}

// Interface is what the engines need from the broker.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/broker_mock.go -package mocks code.subnetd.io/subnetd/core/broker Interface
type Interface interface {
	Send(event events.Event)
	SendBatch(evts []events.Event)
}

// Subscriber receives the events of the types it is interested in.
type Subscriber interface {
	Push(evts ...events.Event)
	Types() []events.Type
}

// Broker dispatches events synchronously to its subscribers, in the order
// they are sent. Block application is single threaded so no buffering is done.
type Broker struct {
	log *logging.Logger

	mu    sync.Mutex
	seq   uint64
	subs  map[int]Subscriber
	tSubs map[events.Type]map[int]Subscriber
	next  int
}

func New(log *logging.Logger, config Config) *Broker {
	log = log.Named(namedLogger)
	log.SetLevel(config.Level.Get())

	return &Broker{
		log:   log,
		subs:  map[int]Subscriber{},
		tSubs: map[events.Type]map[int]Subscriber{},
	}
}

// Send sets the sequence of the event and pushes it to all interested subscribers.
func (b *Broker) Send(event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	event.SetSequenceID(b.seq)
	for _, s := range b.subscribers(event.Type()) {
		s.Push(event)
	}
}

// SendBatch sends all events in order.
func (b *Broker) SendBatch(evts []events.Event) {
	for _, e := range evts {
		b.Send(e)
	}
}

// Subscribe registers a new subscriber and returns its ID.
func (b *Broker) Subscribe(s Subscriber) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	k := b.next
	b.subs[k] = s
	types := s.Types()
	if len(types) == 0 {
		types = []events.Type{events.All}
	}
	for _, t := range types {
		if _, ok := b.tSubs[t]; !ok {
			b.tSubs[t] = map[int]Subscriber{}
		}
		b.tSubs[t][k] = s
	}
	return k
}

func (b *Broker) Unsubscribe(k int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[k]; !ok {
		return
	}
	delete(b.subs, k)
	for _, m := range b.tSubs {
		delete(m, k)
	}
}

// subscribers returns the subscribers for a type in subscription order.
func (b *Broker) subscribers(t events.Type) []Subscriber {
	out := make([]Subscriber, 0, len(b.tSubs[t])+len(b.tSubs[events.All]))
	for k := 1; k <= b.next; k++ {
		if s, ok := b.tSubs[t][k]; ok {
			out = append(out, s)
			continue
		}
		if s, ok := b.tSubs[events.All][k]; ok {
			out = append(out, s)
		}
	}
	return out
}
