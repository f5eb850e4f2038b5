package patroni

import (
	"time"
)

type Config struct {
	// Endpoints are the membership API endpoints ("host:port"), tried in
	// order until one answers.
	Endpoints []string `json:"endpoints"`

	// QueryTimeout bounds a single membership query. Cluster nodes are
	// expected to be co-located and low-latency, so keep this short.
	QueryTimeout time.Duration `json:"query_timeout"`

	// DatabasePort is assigned to members whose entry does not carry an
	// explicit port.
	DatabasePort uint16 `json:"database_port"`
}

const (
	DefaultQueryTimeout = 2 * time.Second
	DefaultDatabasePort = 5432
)
