package router

import (
	"fmt"
)

// Intent is what the caller needs from the session: a writable node, a
// read-only node, or whichever member answers first.
type Intent int

const (
	// ReadWrite requires the current leader.
	ReadWrite Intent = iota
	// ReadOnly prefers replicas but accepts the leader when the cluster
	// has none.
	ReadOnly
	// BestEffort orders the leader first and replicas after it. It still
	// demands write capability from whichever candidate it lands on; the
	// intent governs candidate order, not attribute laxity.
	BestEffort
)

func (T Intent) String() string {
	switch T {
	case ReadWrite:
		return "read-write"
	case ReadOnly:
		return "read-only"
	case BestEffort:
		return "best-effort"
	default:
		return fmt.Sprintf("intent(%d)", int(T))
	}
}

// SessionAttrs is the target_session_attrs value the connecting driver
// must enforce for this intent.
func (T Intent) SessionAttrs() string {
	switch T {
	case ReadOnly:
		return "any"
	default:
		return "read-write"
	}
}

func ParseIntent(value string) (Intent, error) {
	switch value {
	case "read-write", "rw":
		return ReadWrite, nil
	case "read-only", "ro":
		return ReadOnly, nil
	case "best-effort", "any":
		return BestEffort, nil
	default:
		return 0, fmt.Errorf("unknown intent %q (want read-write, read-only, or best-effort)", value)
	}
}
