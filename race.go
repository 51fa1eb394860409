// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package boundq

// RaceEnabled is true when the race detector is active.
// Used by tests to skip stress tests whose payload handoff is ordered only
// through atomix acquire/release on a separate slot state word.
const RaceEnabled = true
