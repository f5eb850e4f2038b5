package discovery

import (
	"context"
	"net"
	"strconv"
)

// Role is a cluster member's role as reported by the membership service.
// Values are compared case-sensitively.
type Role string

const (
	RoleLeader  Role = "leader"
	RoleReplica Role = "replica"
)

// Member is one cluster member for the current invocation. Members are not
// cached across invocations.
type Member struct {
	Name string
	Role Role

	Host string
	Port uint16
}

func (T Member) Address() string {
	return net.JoinHostPort(T.Host, strconv.Itoa(int(T.Port)))
}

// Discoverer looks up and returns the current cluster members.
type Discoverer interface {
	Members(ctx context.Context) ([]Member, error)
}

// FilterRole returns the members matching want, preserving reported order.
// For RoleLeader at most one member is returned; a correct cluster only has
// one, so extra matches are dropped rather than failing.
func FilterRole(members []Member, want Role) []Member {
	var res []Member
	for _, member := range members {
		if member.Role != want {
			continue
		}
		res = append(res, member)
		if want == RoleLeader {
			break
		}
	}
	return res
}
