package keyvaluestore

import (
	"sync"

	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
)

// KeyValueStore is a concurrency safe store keyed by shared.Key.
type KeyValueStore[V any] interface {
	Set(key shared.Key, value V)
	Get(key shared.Key) (V, bool)
	Delete(key shared.Key)
	// Range calls fn for every entry until fn returns false
	Range(fn func(key string, value V) bool)
	Len() int
}

// keyValueStore implements KeyValueStore using sync.Map.
type keyValueStore[V any] struct {
	store sync.Map
}

// NewKeyValueStore creates a new instance of a key value store.
func NewKeyValueStore[V any]() KeyValueStore[V] {
	return &keyValueStore[V]{}
}

// Set stores a key-value pair in the store.
func (c *keyValueStore[V]) Set(key shared.Key, value V) {
	c.store.Store(key.ToString(), value)
}

// Get retrieves a value from the key value store based on its key.
func (c *keyValueStore[V]) Get(key shared.Key) (V, bool) {
	var zero V
	result, exists := c.store.Load(key.ToString())
	if !exists {
		return zero, false
	}
	value, ok := result.(V)
	if !ok {
		return zero, false
	}
	return value, true
}

// delete value from key value store
func (c *keyValueStore[V]) Delete(key shared.Key) {
	c.store.Delete(key.ToString())
}

func (c *keyValueStore[V]) Range(fn func(key string, value V) bool) {
	c.store.Range(func(k, v interface{}) bool {
		return fn(k.(string), v.(V))
	})
}

func (c *keyValueStore[V]) Len() int {
	count := 0
	c.store.Range(func(_, _ interface{}) bool {
		count++
		return true
	})
	return count
}
