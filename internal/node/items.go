package node

// ParameterReader exposes the named parameters attached to a batch of
// input items.
type ParameterReader interface {
	// Len returns the number of items in the batch.
	Len() int

	// Parameter returns the value of name for the item at index.
	Parameter(name string, index int) (interface{}, bool)
}

// MapItems is a ParameterReader over plain parameter maps, one per item.
type MapItems []map[string]interface{}

// Len returns the number of items.
func (m MapItems) Len() int {
	return len(m)
}

// Parameter returns the parameter of item index. Nil values count as absent.
func (m MapItems) Parameter(name string, index int) (interface{}, bool) {
	if index < 0 || index >= len(m) {
		return nil, false
	}
	v, ok := m[index][name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// WithDefaults returns a reader that falls back to defaults for any
// parameter an item does not set.
func WithDefaults(items ParameterReader, defaults map[string]interface{}) ParameterReader {
	return defaultedItems{items: items, defaults: defaults}
}

type defaultedItems struct {
	items    ParameterReader
	defaults map[string]interface{}
}

func (d defaultedItems) Len() int {
	return d.items.Len()
}

func (d defaultedItems) Parameter(name string, index int) (interface{}, bool) {
	if v, ok := d.items.Parameter(name, index); ok {
		return v, true
	}
	v, ok := d.defaults[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}
