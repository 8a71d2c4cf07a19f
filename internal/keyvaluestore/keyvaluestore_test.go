package keyvaluestore

import (
	"fmt"
	"sync"
	"testing"

	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
	"github.com/stretchr/testify/assert"
)

func TestKeyValueStore(t *testing.T) {
	assertion := assert.New(t)

	// create a new key value store
	kvs := NewKeyValueStore[string]()
	assertion.NotNil(kvs, "key value store should not be nil")

	key := shared.Key{
		PrimaryKey: "us-east-1",
		SortKey:    "s3",
	}
	value := "testvalue"
	kvs.Set(key, value) // set value
	v, ok := kvs.Get(key)

	// get value from key value store
	assertion.True(ok, "value should be present")
	assertion.Equal(value, v, "value should match")
	assertion.Equal(1, kvs.Len())

	// get item from key value store that does not exist
	v, ok = kvs.Get(shared.Key{
		PrimaryKey: "non-existent-pk",
		SortKey:    "non-existent-sk",
	})
	assertion.False(ok, "value should not be present")
	assertion.Empty(v, "value should be empty")

	kvs.Delete(key)
	_, ok = kvs.Get(key)
	assertion.False(ok, "value should be deleted")
	assertion.Equal(0, kvs.Len())
}

func TestKeyValueStoreConcurrentSet(t *testing.T) {
	assertion := assert.New(t)

	kvs := NewKeyValueStore[int]()
	wg := new(sync.WaitGroup)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			kvs.Set(shared.Key{PrimaryKey: "check", SortKey: fmt.Sprintf("%d", i)}, i)
		}(i)
	}
	wg.Wait()
	assertion.Equal(50, kvs.Len())

	sum := 0
	kvs.Range(func(key string, value int) bool {
		sum += value
		return true
	})
	assertion.Equal(1225, sum)
}
