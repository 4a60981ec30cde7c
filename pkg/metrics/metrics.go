/*
 * Minio Cloud Storage, (C) 2016, 2017, 2018 Minio, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package metrics exposes the scrub core's Prometheus counters: blocks
// classified by terminal state, and bytes read off data disks.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/snaparray/scrubcore/pkg/scrub"
)

// Sink is the default MetricsSink, registering its collectors against a
// caller-supplied registry so cmd/scrubd can serve them alongside
// whatever else it exposes.
type Sink struct {
	blocks    *prometheus.CounterVec
	bytesRead prometheus.Counter
}

// NewSink creates and registers a Sink's collectors on reg.
func NewSink(reg prometheus.Registerer) (*Sink, error) {
	s := &Sink{
		blocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scrubcore",
			Name:      "blocks_total",
			Help:      "Blocks classified by the scrub loop, labeled by terminal state.",
		}, []string{"state"}),
		bytesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scrubcore",
			Name:      "bytes_read_total",
			Help:      "Bytes read from data disks during scrubbing.",
		}),
	}
	if err := reg.Register(s.blocks); err != nil {
		return nil, err
	}
	if err := reg.Register(s.bytesRead); err != nil {
		return nil, err
	}
	return s, nil
}

// ObserveBlock implements scrub.MetricsSink.
func (s *Sink) ObserveBlock(state scrub.BlockState) {
	s.blocks.WithLabelValues(state.String()).Inc()
}

// ObserveBytesRead implements scrub.MetricsSink.
func (s *Sink) ObserveBytesRead(n int64) {
	if n <= 0 {
		return
	}
	s.bytesRead.Add(float64(n))
}
