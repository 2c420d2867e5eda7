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

package logging_test

import (
	"testing"

	"code.subnetd.io/subnetd/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for _, tc := range []struct {
		in  string
		out logging.Level
	}{
		{"debug", logging.DebugLevel},
		{"INFO", logging.InfoLevel},
		{"warning", logging.WarnLevel},
		{"warn", logging.WarnLevel},
		{"error", logging.ErrorLevel},
		{"panic", logging.PanicLevel},
		{"fatal", logging.FatalLevel},
	} {
		lvl, err := logging.ParseLevel(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.out, lvl, tc.in)
	}

	_, err := logging.ParseLevel("verbose")
	require.Error(t, err)
}

func TestNamedLogger(t *testing.T) {
	log := logging.NewTestLogger()
	child := log.Named("processor").Named("admission")
	assert.Equal(t, "processor.admission", child.GetName())

	child.SetLevel(logging.DebugLevel)
	assert.Equal(t, logging.DebugLevel, child.GetLevel())
	assert.True(t, child.IsDebug())
	assert.Equal(t, logging.ErrorLevel, log.GetLevel())
}
