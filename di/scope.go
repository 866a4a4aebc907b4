package di

import "fmt"

// Scope determines how many instances of a bean exist.
type Scope int

const (
	ScopeSingleton Scope = iota // One instance per Manager
	ScopeThread                 // One instance per thread context, see Manager.WithThread
)

func (s Scope) String() string {
	switch s {
	case ScopeSingleton:
		return "singleton"
	case ScopeThread:
		return "thread"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// ParseScope maps "singleton" or "thread" to a Scope.
func ParseScope(s string) (Scope, error) {
	switch s {
	case "singleton", "":
		return ScopeSingleton, nil
	case "thread":
		return ScopeThread, nil
	default:
		return 0, fmt.Errorf("unknown scope %q", s)
	}
}

func (s Scope) valid() bool {
	return s == ScopeSingleton || s == ScopeThread
}
