// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package report_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"code.hybscloud.com/boundq/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingAndEmpty(t *testing.T) {
	dir := t.TempDir()

	sessions, err := report.Load(filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	assert.Nil(t, sessions)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	sessions, err = report.Load(empty)
	require.NoError(t, err)
	assert.Nil(t, sessions)
}

func TestLoadMalformed(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))

	_, err := report.Load(bad)
	assert.Error(t, err)
	assert.Error(t, report.Append(bad, report.Session{}))
}

func TestAppendKeepsPreviousSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")

	first := report.Session{
		SessionTime: "2026-01-01T00:00:00Z",
		Benchmarks: []report.Result{{
			Implementation:      "boundq/fair",
			Workload:            report.Timed,
			NumProducers:        2,
			NumConsumers:        2,
			NumMessages:         10,
			NumMessagesConsumed: 10,
			Throughput:          100,
		}},
	}
	second := report.Session{SessionTime: "2026-01-02T00:00:00Z"}

	require.NoError(t, report.Append(path, first))
	require.NoError(t, report.Append(path, second))

	sessions, err := report.Load(path)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, first, sessions[0])
	assert.Equal(t, second.SessionTime, sessions[1].SessionTime)
}

func TestGatherSystemInfo(t *testing.T) {
	info := report.GatherSystemInfo()
	assert.Equal(t, runtime.GOARCH, info.GOARCH)
	assert.Equal(t, runtime.NumCPU(), info.NumCPU)
	assert.Positive(t, info.GOMAXPROCS)
}
