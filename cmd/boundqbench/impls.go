// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"code.hybscloud.com/boundq"
	"code.hybscloud.com/boundq/internal/bench"
)

// implementation is one queue configuration under test.
type implementation struct {
	name     string
	newQueue func(capacity int) (bench.Queue[*int], error)
}

// implementations lists every reservation strategy, plus the buffered
// channel baseline.
func implementations(small bool) []implementation {
	impls := []implementation{{
		name: "chan",
		newQueue: func(capacity int) (bench.Queue[*int], error) {
			return bench.NewChanQueue[*int](capacity), nil
		},
	}}
	for _, kind := range boundq.LockKinds {
		name := "boundq/" + kind.String()
		if small {
			name += "/small"
		}
		impls = append(impls, implementation{
			name: name,
			newQueue: func(capacity int) (bench.Queue[*int], error) {
				b := boundq.New(capacity).Guard(kind)
				if small {
					b.Small()
				}
				q, err := boundq.Build[*int](b)
				if err != nil {
					return nil, err
				}
				return q, nil
			},
		})
	}
	return impls
}

// concurrencyConfigs returns the producer/consumer layouts of a timed run.
func concurrencyConfigs(high bool) []bench.Config {
	configs := []bench.Config{
		{Producers: 1, Consumers: 1},
		{Producers: 2, Consumers: 2},
		{Producers: 8, Consumers: 1},
		{Producers: 10, Consumers: 10},
	}
	if high {
		configs = append(configs,
			bench.Config{Producers: 50, Consumers: 50},
			bench.Config{Producers: 100, Consumers: 100},
		)
	}
	return configs
}
