// Package metrics holds the Prometheus collectors of the family tree core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Anomaly kinds observed while walking an ancestor chain.
const (
	AnomalyDepthCeiling    = "depth_ceiling"
	AnomalyCycle           = "cycle"
	AnomalyDanglingFather  = "dangling_father"
	AnomalyLookupFailure   = "lookup_failure"
	AnomalyDescendantLimit = "descendant_limit"
)

// Search index operations.
const (
	SyncUpsert = "upsert"
	SyncRemove = "remove"
	SyncSkip   = "skip"
)

var (
	// LineageAnomalies counts data integrity anomalies met by the name resolver.
	// They never fail a request.
	LineageAnomalies = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "familytree",
		Name:      "lineage_anomalies_total",
		Help:      "Integrity anomalies observed while resolving ancestor chains",
	}, []string{"kind"})

	SearchSync = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "familytree",
		Name:      "search_sync_total",
		Help:      "Search index synchronization operations",
	}, []string{"op"})

	PermissionChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "familytree",
		Name:      "permission_checks_total",
		Help:      "Capability checks by result",
	}, []string{"result"})

	ResolveHops = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "familytree",
		Name:      "lineage_resolve_hops",
		Help:      "Store reads per full name resolution",
		Buckets:   []float64{1, 2, 3, 5, 8, 12, 20},
	})
)
