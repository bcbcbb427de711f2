package refine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"
)

// Markers maps an operation name (e.g. "create") to the kinds it activates.
type Markers map[string]Activation

// Activation returns the activation configured for operation.
func (m Markers) Activation(operation string) (Activation, bool) {
	a, ok := m[operation]
	return a, ok
}

// Operations returns the configured operation names in lexical order.
func (m Markers) Operations() []string {
	ops := make([]string, 0, len(m))
	for op := range m {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

// LoadMarkers reads markers from environment variables carrying prefix.
// The remainder of the variable name, lower-cased, is the operation:
//
//	REFINE_MARKER_CREATE=normalize-name,lowercase
//	REFINE_MARKER_UPDATE_BY_ID=trim
//
// yields operations "create" and "update_by_id".
func LoadMarkers(prefix string) (Markers, error) {
	k := koanf.New(".")
	err := k.Load(env.Provider(prefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, prefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load markers: %w", err)
	}

	m := make(Markers)
	for _, key := range k.Keys() {
		m[key] = ParseActivation(k.String(key))
	}
	return m, nil
}

// ParseMarkers reads markers from YAML mapping operations to kind lists:
//
//	create: [normalize-name, lowercase]
//	update: [trim]
func ParseMarkers(data []byte) (Markers, error) {
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse markers: %w", err)
	}

	m := make(Markers, len(raw))
	for op, kinds := range raw {
		tk := make([]TagKind, len(kinds))
		for i, k := range kinds {
			tk[i] = TagKind(strings.TrimSpace(k))
		}
		m[op] = Activate(tk...)
	}
	return m, nil
}
