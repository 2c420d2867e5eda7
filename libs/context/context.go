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

package context

import (
	"context"
	"errors"
)

type blockHeight struct{}

var ErrBlockHeightMissing = errors.New("no or invalid block height set on context")

// WithBlockHeight returns a context carrying the height of the block being applied.
func WithBlockHeight(ctx context.Context, h uint64) context.Context {
	return context.WithValue(ctx, blockHeight{}, h)
}

// BlockHeightFromContext returns the block height set on the context, if any.
func BlockHeightFromContext(ctx context.Context) (uint64, error) {
	hv := ctx.Value(blockHeight{})
	if hv == nil {
		return 0, ErrBlockHeightMissing
	}
	h, ok := hv.(uint64)
	if !ok {
		return 0, ErrBlockHeightMissing
	}
	return h, nil
}
