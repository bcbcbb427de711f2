package refine

import "strings"

// Activation is the ordered set of tag kinds eligible in one call. Its order
// records priority only; fields still run their tags in declared order.
// The zero value activates nothing.
type Activation struct {
	kinds []TagKind
	set   map[TagKind]struct{}
}

// Activate builds an Activation keeping the first occurrence of each kind.
// Empty kinds are dropped.
func Activate(kinds ...TagKind) Activation {
	a := Activation{set: make(map[TagKind]struct{}, len(kinds))}
	for _, k := range kinds {
		if k == "" {
			continue
		}
		if _, dup := a.set[k]; dup {
			continue
		}
		a.set[k] = struct{}{}
		a.kinds = append(a.kinds, k)
	}
	return a
}

// ParseActivation reads a comma separated kind list such as
// "normalize-name, lowercase".
func ParseActivation(s string) Activation {
	parts := strings.Split(s, ",")
	kinds := make([]TagKind, 0, len(parts))
	for _, p := range parts {
		kinds = append(kinds, TagKind(strings.TrimSpace(p)))
	}
	return Activate(kinds...)
}

// Allows reports whether kind is active.
func (a Activation) Allows(kind TagKind) bool {
	_, ok := a.set[kind]
	return ok
}

// Kinds returns the active kinds in marker order.
func (a Activation) Kinds() []TagKind {
	out := make([]TagKind, len(a.kinds))
	copy(out, a.kinds)
	return out
}

// Len returns the number of active kinds.
func (a Activation) Len() int { return len(a.kinds) }

// Empty reports whether no kind is active; processing is then a no-op.
func (a Activation) Empty() bool { return len(a.kinds) == 0 }

func (a Activation) String() string {
	parts := make([]string, len(a.kinds))
	for i, k := range a.kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, ",")
}
