package di

import (
	"fmt"
	"strings"

	apperrors "github.com/kbukum/beankit/errors"
)

// Name identifies a bean: an optional namespace plus a required local name.
// Names are comparable and used directly as map keys.
type Name struct {
	namespace string
	local     string
}

// NewName returns a name without namespace.
func NewName(local string) (Name, error) {
	return NewNamespacedName("", local)
}

// NewNamespacedName returns a name qualified by namespace. An empty
// namespace is the same as no namespace. A namespace must not contain '}'
// and a name without namespace must not start with '{', so that String and
// ParseName round-trip.
func NewNamespacedName(namespace, local string) (Name, error) {
	n := Name{namespace: namespace, local: local}
	if err := n.validate(); err != nil {
		return Name{}, err
	}
	return n, nil
}

// Key builds a name without validating it. Every Manager operation
// validates the names it receives, so Key is safe for literals:
//
//	di.Lookup[TextSeq](ctx, m, di.Key("hello"))
func Key(local string) Name {
	return Name{local: local}
}

// NamespacedKey is Key with a namespace.
func NamespacedKey(namespace, local string) Name {
	return Name{namespace: namespace, local: local}
}

// ParseName parses the textual form produced by String: "{namespace}local"
// or "local".
func ParseName(s string) (Name, error) {
	if !strings.HasPrefix(s, "{") {
		return NewName(s)
	}
	end := strings.IndexByte(s, '}')
	if end < 0 {
		return Name{}, apperrors.InvalidName(fmt.Sprintf("unterminated namespace in bean name %q", s))
	}
	return NewNamespacedName(s[1:end], s[end+1:])
}

// Namespace returns the namespace, or "" when absent.
func (n Name) Namespace() string { return n.namespace }

// Local returns the local name.
func (n Name) Local() string { return n.local }

// IsZero reports whether n is the zero Name.
func (n Name) IsZero() bool { return n == Name{} }

func (n Name) String() string {
	if n.namespace == "" {
		return n.local
	}
	return "{" + n.namespace + "}" + n.local
}

func (n Name) validate() error {
	if n.local == "" {
		return apperrors.InvalidName("bean name must not be empty")
	}
	if strings.ContainsRune(n.namespace, '}') {
		return apperrors.InvalidName(fmt.Sprintf("namespace %q must not contain '}'", n.namespace))
	}
	if n.namespace == "" && strings.HasPrefix(n.local, "{") {
		return apperrors.InvalidName(fmt.Sprintf("bean name %q without namespace must not start with '{'", n.local))
	}
	return nil
}
