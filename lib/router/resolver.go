package router

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"gfx.cafe/gfx/pgroute/lib/discovery"
)

// ErrNoCandidates is returned when resolution yields nothing and no
// fallback is defined for the intent.
var ErrNoCandidates = errors.New("resolve: no candidates")

var tracer = otel.Tracer("gfx.cafe/gfx/pgroute/lib/router")

// Resolve turns an intent plus a topology source into a non-empty, ordered
// candidate list. The required session attribute is intent.SessionAttrs().
func Resolve(ctx context.Context, intent Intent, source Source) ([]Candidate, error) {
	ctx, span := tracer.Start(ctx, "router.Resolve")
	defer span.End()
	span.SetAttributes(attribute.String("intent", intent.String()))

	switch src := source.(type) {
	case StaticEndpoint:
		return []Candidate{{Host: src.Host, Port: src.Port}}, nil
	case HostList:
		return resolveHostList(src)
	case Discovered:
		return resolveDiscovered(ctx, intent, src.Discoverer)
	default:
		return nil, fmt.Errorf("resolve: unknown topology source %T", source)
	}
}

func resolveHostList(src HostList) ([]Candidate, error) {
	if len(src.Hosts) == 0 {
		return nil, ErrNoCandidates
	}
	candidates := make([]Candidate, 0, len(src.Hosts))
	for _, entry := range src.Hosts {
		candidate, err := ParseHostPort(entry, src.DefaultPort)
		if err != nil {
			return nil, fmt.Errorf("resolve: %w", err)
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

func resolveDiscovered(ctx context.Context, intent Intent, discoverer discovery.Discoverer) ([]Candidate, error) {
	members, err := discoverer.Members(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}

	var picked []discovery.Member
	switch intent {
	case ReadWrite:
		picked = discovery.FilterRole(members, discovery.RoleLeader)
	case ReadOnly:
		picked = discovery.FilterRole(members, discovery.RoleReplica)
		if len(picked) == 0 {
			// better a writable connection than none
			picked = discovery.FilterRole(members, discovery.RoleLeader)
		}
	case BestEffort:
		picked = discovery.FilterRole(members, discovery.RoleLeader)
		picked = append(picked, discovery.FilterRole(members, discovery.RoleReplica)...)
	}
	if len(picked) == 0 {
		return nil, fmt.Errorf("%w for intent %s", ErrNoCandidates, intent)
	}

	candidates := make([]Candidate, 0, len(picked))
	for _, member := range picked {
		candidates = append(candidates, Candidate{Host: member.Host, Port: member.Port})
	}
	return candidates, nil
}
