// Package locale loads per-language dictionaries backing all UI text.
package locale

// Placeholder is what a missing key resolves to.
const Placeholder = ""

// Dictionary maps a key to its display string for one language.
type Dictionary map[string]string

// T resolves key. Missing keys and a nil dictionary yield Placeholder.
func (d Dictionary) T(key string) string {
	if d == nil {
		return Placeholder
	}
	if v, ok := d[key]; ok {
		return v
	}
	return Placeholder
}
