package router

import (
	"errors"
	"net"
	"strconv"
	"strings"

	"gfx.cafe/gfx/pgroute/lib/discovery"
)

// Candidate is one connectable address. Candidate lists are ordered: the
// first candidate to both connect and satisfy the required session
// attribute wins.
type Candidate struct {
	Host string
	Port uint16
}

func (T Candidate) Address() string {
	return net.JoinHostPort(T.Host, strconv.Itoa(int(T.Port)))
}

// Source is the topology a candidate list is resolved from. Exactly one
// variant is active per invocation.
type Source interface {
	source()
}

// StaticEndpoint is a single fixed endpoint.
type StaticEndpoint struct {
	Host string
	Port uint16
}

// HostList is an explicit, ordered failover list of "host" or "host:port"
// entries. Position carries no role information, only failover priority.
type HostList struct {
	Hosts []string

	// DefaultPort applies to entries without an explicit port.
	DefaultPort uint16
}

// Discovered resolves candidates from a cluster-membership service.
type Discovered struct {
	Discoverer discovery.Discoverer
}

func (StaticEndpoint) source() {}
func (HostList) source()       {}
func (Discovered) source()     {}

// ParseHostPort splits a "host" or "host:port" entry, applying def when
// the port is absent. IPv6 hosts without a port may be bracketed.
func ParseHostPort(entry string, def uint16) (Candidate, error) {
	host, portstr, err := net.SplitHostPort(entry)
	if err != nil {
		var addrErr *net.AddrError
		if errors.As(err, &addrErr) && strings.Contains(addrErr.Err, "missing port") {
			return Candidate{Host: strings.Trim(entry, "[]"), Port: def}, nil
		}
		return Candidate{}, err
	}
	port, err := strconv.ParseUint(portstr, 10, 16)
	if err != nil {
		return Candidate{}, &net.AddrError{Err: "invalid port " + strconv.Quote(portstr), Addr: entry}
	}
	return Candidate{Host: host, Port: uint16(port)}, nil
}
