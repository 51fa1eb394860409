// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package report defines the JSON benchmark report shared by the
// benchmark and plotting commands.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Workload names.
const (
	Timed = "timed"
	Mixed = "mixed"
)

// Result holds results for one run.
type Result struct {
	Implementation      string  `json:"implementation"`
	Workload            string  `json:"workload"`
	NumProducers        int     `json:"num_producers"`
	NumConsumers        int     `json:"num_consumers"`
	Capacity            int     `json:"capacity"`
	NumMessages         int64   `json:"num_messages"`          // produced or added
	NumMessagesConsumed int64   `json:"num_messages_consumed"` // consumed or taken
	NumRejected         int64   `json:"num_rejected,omitempty"`
	TestDuration        string  `json:"test_duration,omitempty"`
	ActualElapsed       string  `json:"actual_elapsed"`
	Throughput          float64 `json:"throughput_msgs_sec"` // consumed per second
	Timestamp           int64   `json:"timestamp"`
	GoVersion           string  `json:"go_version"`
}

// SystemInfo holds system information.
type SystemInfo struct {
	NumCPU      int     `json:"num_cpu"`
	GOMAXPROCS  int     `json:"gomaxprocs"`
	CPUModel    string  `json:"cpu_model,omitempty"`
	CPUSpeedMHz float64 `json:"cpu_speed_mhz,omitempty"`
	GOARCH      string  `json:"go_arch"`
	TotalMemory uint64  `json:"total_memory_bytes,omitempty"`
}

// Session is one benchmark session.
type Session struct {
	SessionTime string     `json:"session_time"`
	SystemInfo  SystemInfo `json:"system_info"`
	Benchmarks  []Result   `json:"benchmarks"`
}

// GatherSystemInfo collects basic CPU and memory details. Fields gopsutil
// cannot read on this platform are left empty.
func GatherSystemInfo() SystemInfo {
	info := SystemInfo{
		NumCPU:     runtime.NumCPU(),
		GOMAXPROCS: runtime.GOMAXPROCS(0),
		GOARCH:     runtime.GOARCH,
	}
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		info.CPUModel = infos[0].ModelName
		info.CPUSpeedMHz = infos[0].Mhz
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.TotalMemory = vm.Total
	}
	return info
}

// Load reads the sessions stored in path. A missing or empty file yields
// no sessions.
func Load(path string) ([]Session, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	var sessions []Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return sessions, nil
}

// Append appends s to the sessions stored in path.
func Append(path string, s Session) error {
	sessions, err := Load(path)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(append(sessions, s), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
