/*
Copyright The CloudNativePG Contributors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package metrics exposes the control plane's own Prometheus metrics: one
// collector scraping the live Topology/Orchestrator state on every /metrics
// request, rather than caching between scrapes.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cloudnative-pg/operationmanagement/internal/orchestrator"
	"github.com/cloudnative-pg/operationmanagement/internal/topology"
)

// Namespace is the prefix for every metric this collector exposes.
const Namespace = "operationmanagement"

// Collector implements prometheus.Collector over a Snapshotter and an
// Orchestrator's OperationLock, re-probing the cluster on every scrape
// rather than caching.
type Collector struct {
	Snapshotter   *topology.Snapshotter
	Lock          *orchestrator.OperationLock
	ScrapeTimeout time.Duration

	nodeUp         *prometheus.Desc
	nodeIsPrimary  *prometheus.Desc
	replicationGap *prometheus.Desc
	clusterHealthy *prometheus.Desc
	lockHeld       *prometheus.Desc
}

// New builds a Collector ready to register with a prometheus.Registry.
func New(snapshotter *topology.Snapshotter, lock *orchestrator.OperationLock) *Collector {
	return &Collector{
		Snapshotter: snapshotter,
		Lock:        lock,
		nodeUp: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "node", "up"),
			"1 if the node answered its last probe, 0 otherwise.",
			[]string{"node"}, nil,
		),
		nodeIsPrimary: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "node", "is_primary"),
			"1 if the node currently reports itself as primary.",
			[]string{"node"}, nil,
		),
		replicationGap: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "node", "replication_gap_bytes"),
			"pg_wal_lsn_diff between the primary and this standby, in bytes.",
			[]string{"node"}, nil,
		),
		clusterHealthy: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "cluster", "healthy"),
			"1 if cluster_status is HEALTHY, 0 otherwise.",
			nil, nil,
		),
		lockHeld: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "operation", "lock_held"),
			"1 if the OperationLock is currently held by an in-flight operation.",
			[]string{"operation"}, nil,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.nodeUp
	ch <- c.nodeIsPrimary
	ch <- c.replicationGap
	ch <- c.clusterHealthy
	ch <- c.lockHeld
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.scrapeTimeout())
	defer cancel()

	overview := c.Snapshotter.Overview(ctx)

	for name, node := range overview.Nodes {
		ch <- prometheus.MustNewConstMetric(c.nodeUp, prometheus.GaugeValue, boolToFloat(node.Connected), name)
		ch <- prometheus.MustNewConstMetric(c.nodeIsPrimary, prometheus.GaugeValue, boolToFloat(node.IsPrimary), name)
		if node.ReplicationGap != nil {
			ch <- prometheus.MustNewConstMetric(
				c.replicationGap, prometheus.GaugeValue, float64(node.ReplicationGap.GapBytes), name,
			)
		}
	}

	ch <- prometheus.MustNewConstMetric(c.clusterHealthy, prometheus.GaugeValue,
		boolToFloat(overview.ClusterStatus == topology.Healthy))

	holder, held := c.Lock.Current()
	op := "none"
	if held {
		op = holder.Operation
	}
	ch <- prometheus.MustNewConstMetric(c.lockHeld, prometheus.GaugeValue, boolToFloat(held), op)
}

func (c *Collector) scrapeTimeout() time.Duration {
	if c.ScrapeTimeout <= 0 {
		return 10 * time.Second
	}
	return c.ScrapeTimeout
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

var _ prometheus.Collector = (*Collector)(nil)
