package cache

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/keyvaluestore"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
)

// ReportCache holds decoded report documents read from s3. reports are
// written once and never mutated, so entries never go stale. a warm lambda
// reuses the cache across invocations.
type ReportCache interface {
	Get(key ReportCacheKey) (ReportDocument, bool)
	Set(key ReportCacheKey, value interface{}) error
	Delete(key ReportCacheKey) error
	GetOrLoad(key ReportCacheKey, loader func() (ReportDocument, error)) (ReportDocument, error)
	GetCacheHits() int32
	GetCacheMisses() int32
}

type _ReportCache struct {
	cache       keyvaluestore.KeyValueStore[ReportDocument] // key value store for decoded reports
	cacheHits   atomic.Int32
	cacheMisses atomic.Int32
}

type ReportCacheKey struct {
	Bucket string
	Key    string
}

type ReportDocument struct {
	Content      map[string]interface{}
	LastModified time.Time
}

func NewReportCache() ReportCache {
	return &_ReportCache{cache: keyvaluestore.NewKeyValueStore[ReportDocument](),
		cacheHits:   atomic.Int32{},
		cacheMisses: atomic.Int32{}}
}

func (c *_ReportCache) Get(key ReportCacheKey) (ReportDocument, bool) {
	result, ok := c.cache.Get(shared.Key{
		PrimaryKey: key.Bucket,
		SortKey:    key.Key,
	})
	if ok {
		c.cacheHits.Add(1)
		return result, true
	}
	c.cacheMisses.Add(1)
	return ReportDocument{}, false
}

func (c *_ReportCache) Set(key ReportCacheKey, value interface{}) error {
	valueAssert, ok := value.(ReportDocument)
	if !ok {
		return errors.New("type assertion failed. value is incorrect type")
	}
	if key.Bucket == "" || key.Key == "" {
		return errors.New("bucket and key are required")
	}
	c.cache.Set(shared.Key{
		PrimaryKey: key.Bucket,
		SortKey:    key.Key,
	}, valueAssert)
	return nil
}

func (c *_ReportCache) Delete(key ReportCacheKey) error {
	c.cache.Delete(shared.Key{
		PrimaryKey: key.Bucket,
		SortKey:    key.Key,
	})
	return nil
}

// GetOrLoad returns the cached document or calls loader and caches its result.
// loader errors are not cached.
func (c *_ReportCache) GetOrLoad(key ReportCacheKey, loader func() (ReportDocument, error)) (ReportDocument, error) {
	if doc, ok := c.Get(key); ok {
		return doc, nil
	}
	doc, err := loader()
	if err != nil {
		return ReportDocument{}, err
	}
	if err := c.Set(key, doc); err != nil {
		return ReportDocument{}, err
	}
	return doc, nil
}

func (c *_ReportCache) GetCacheHits() int32 {
	return c.cacheHits.Load()
}

func (c *_ReportCache) GetCacheMisses() int32 {
	return c.cacheMisses.Load()
}
