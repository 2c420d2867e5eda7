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
)

// Collector is a subscriber keeping every event it receives, used by the
// simulation command to report what happened during a run.
type Collector struct {
	mu    sync.Mutex
	types []events.Type
	evts  []events.Event
}

func NewCollector(types ...events.Type) *Collector {
	return &Collector{
		types: types,
	}
}

func (c *Collector) Push(evts ...events.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evts = append(c.evts, evts...)
}

func (c *Collector) Types() []events.Type {
	return c.types
}

// Events returns the collected events.
func (c *Collector) Events() []events.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]events.Event, len(c.evts))
	copy(out, c.evts)
	return out
}

// Flush returns the collected events and forgets them.
func (c *Collector) Flush() []events.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.evts
	c.evts = nil
	return out
}
