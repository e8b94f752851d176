// Package metrics defines Prometheus collectors for the persistence
// core. They live in a standalone package to avoid import cycles
// between the storage and migration packages.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RecordsHealed counts records upgraded to the current schema shape
	// during a load, labeled by collection.
	RecordsHealed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "indica_records_healed_total",
		Help: "Records normalized to the current schema shape on read",
	}, []string{"collection"})

	// CorruptCollections counts unparseable containers that were
	// replaced with the empty default.
	CorruptCollections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "indica_corrupt_collections_total",
		Help: "Unparseable collection containers recovered with the empty default",
	}, []string{"collection"})

	// LegacyImports counts legacy flat files imported into the
	// relational store at startup.
	LegacyImports = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "indica_legacy_imports_total",
		Help: "Legacy collection files imported into the relational store",
	}, []string{"collection"})

	// LegacySkips counts legacy flat files skipped because they failed
	// to parse.
	LegacySkips = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "indica_legacy_skips_total",
		Help: "Legacy collection files left untouched after a parse failure",
	}, []string{"collection"})
)

// Register registers the core metrics on the given registry (or the
// default if nil). Safe to call more than once.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{
		RecordsHealed,
		CorruptCollections,
		LegacyImports,
		LegacySkips,
	} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
