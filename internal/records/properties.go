package records

import "strings"

// Property is one TXT key. A bare key ("flag") has HasValue false, which is
// distinct from an empty value ("flag=").
type Property struct {
	Key      string
	Value    string
	HasValue bool
}

// PropertySet is an ordered set of TXT properties with unique keys.
// Keys compare case-sensitively.
type PropertySet struct {
	props []Property
}

// ParseProperties builds a PropertySet from the character-strings of one
// TXT record (RFC 6763 §6.3, §6.4).
//
// Each string splits on its first '='. A string without '=' is a bare key;
// bare keys that are empty or whitespace are skipped. A repeated key keeps
// its original position and takes the later value.
func ParseProperties(txt []string) PropertySet {
	var ps PropertySet
	for _, s := range txt {
		key, value, hasValue := strings.Cut(s, "=")
		if !hasValue && strings.TrimSpace(key) == "" {
			continue
		}
		ps.Set(Property{Key: key, Value: value, HasValue: hasValue})
	}
	return ps
}

// Set inserts p, replacing any property with the same key in place.
func (ps *PropertySet) Set(p Property) {
	for i := range ps.props {
		if ps.props[i].Key == p.Key {
			ps.props[i] = p
			return
		}
	}
	ps.props = append(ps.props, p)
}

// Lookup returns the property stored under key.
func (ps PropertySet) Lookup(key string) (Property, bool) {
	for _, p := range ps.props {
		if p.Key == key {
			return p, true
		}
	}
	return Property{}, false
}

// Get returns the value for key and whether the key has a value at all.
// Missing keys and bare keys both report false.
func (ps PropertySet) Get(key string) (string, bool) {
	p, ok := ps.Lookup(key)
	return p.Value, ok && p.HasValue
}

// Has reports whether key is present, with or without a value.
func (ps PropertySet) Has(key string) bool {
	_, ok := ps.Lookup(key)
	return ok
}

// Len returns the number of keys.
func (ps PropertySet) Len() int {
	return len(ps.props)
}

// Keys returns the keys in insertion order.
func (ps PropertySet) Keys() []string {
	keys := make([]string, len(ps.props))
	for i, p := range ps.props {
		keys[i] = p.Key
	}
	return keys
}

// Properties returns a copy of the properties in insertion order.
func (ps PropertySet) Properties() []Property {
	return append([]Property(nil), ps.props...)
}

// Map flattens the set into a map. Bare keys map to "".
func (ps PropertySet) Map() map[string]string {
	m := make(map[string]string, len(ps.props))
	for _, p := range ps.props {
		m[p.Key] = p.Value
	}
	return m
}

// String renders the set as TXT strings joined by spaces.
func (ps PropertySet) String() string {
	parts := make([]string, len(ps.props))
	for i, p := range ps.props {
		if p.HasValue {
			parts[i] = p.Key + "=" + p.Value
		} else {
			parts[i] = p.Key
		}
	}
	return strings.Join(parts, " ")
}
