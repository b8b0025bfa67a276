package protocol

import (
	"fmt"
	"strconv"
)

// Bundle is an ordered set of key/value pairs. Keys keep the position
// of their first insertion; putting an existing key replaces its value.
type Bundle struct {
	keys   []string
	values map[string]interface{}
}

// NewBundle returns an empty bundle.
func NewBundle() Bundle {
	return Bundle{values: map[string]interface{}{}}
}

func (b *Bundle) put(key string, value interface{}) {
	if b.values == nil {
		b.values = map[string]interface{}{}
	}
	if _, ok := b.values[key]; !ok {
		b.keys = append(b.keys, key)
	}
	b.values[key] = value
}

// PutString sets key to a string value.
func (b *Bundle) PutString(key, value string) {
	b.put(key, value)
}

// PutInt sets key to an int value.
func (b *Bundle) PutInt(key string, value int) {
	b.put(key, value)
}

// Get returns the value stored under key.
func (b Bundle) Get(key string) (interface{}, bool) {
	v, ok := b.values[key]
	return v, ok
}

// GetString returns the string stored under key, or "" if the key is
// missing or holds another type.
func (b Bundle) GetString(key string) string {
	s, _ := b.values[key].(string)
	return s
}

// GetInt returns the int stored under key, or 0 if the key is missing
// or holds another type.
func (b Bundle) GetInt(key string) int {
	i, _ := b.values[key].(int)
	return i
}

// Keys returns the keys in insertion order.
func (b Bundle) Keys() []string {
	return append([]string(nil), b.keys...)
}

// Len returns the number of keys.
func (b Bundle) Len() int {
	return len(b.keys)
}

// Clone returns an independent copy of b.
func (b Bundle) Clone() Bundle {
	c := Bundle{
		keys:   append([]string(nil), b.keys...),
		values: make(map[string]interface{}, len(b.values)),
	}
	for k, v := range b.values {
		c.values[k] = v
	}
	return c
}

// Format returns the textual value of key as it appears on the wire.
func (b Bundle) Format(key string) string {
	switch v := b.values[key].(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
