package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCache(t *testing.T) {
	assertion := assert.New(t)

	reportCache := NewReportCache()
	assertion.NotNil(reportCache)
	assertion.Equal(int32(0), reportCache.GetCacheHits())
	assertion.Equal(int32(0), reportCache.GetCacheMisses())
}

func TestCache(t *testing.T) {
	assertion := assert.New(t)

	reportCache := NewReportCache()
	assertion.NotNil(reportCache)

	key := ReportCacheKey{
		Bucket: "reports-bucket",
		Key:    "security-reports/app/dev/inspector-20240101-000000.json",
	}

	err := reportCache.Set(key, ReportDocument{
		Content: map[string]interface{}{"findingsCount": float64(3)},
	})
	assertion.NoError(err)

	doc, ok := reportCache.Get(key)
	assertion.True(ok)
	assertion.Equal(float64(3), doc.Content["findingsCount"])
	assertion.Equal(int32(1), reportCache.GetCacheHits())

	reportCache.Delete(key)

	_, ok = reportCache.Get(key)
	assertion.False(ok)
	assertion.Equal(int32(1), reportCache.GetCacheHits())
	assertion.Equal(int32(1), reportCache.GetCacheMisses())

	// wrong value type
	err = reportCache.Set(key, "test")
	assertion.Error(err)

	// empty key
	err = reportCache.Set(ReportCacheKey{}, ReportDocument{})
	assertion.Error(err)
}

func TestGetOrLoad(t *testing.T) {
	assertion := assert.New(t)

	reportCache := NewReportCache()
	key := ReportCacheKey{Bucket: "b", Key: "k"}
	loads := 0
	loader := func() (ReportDocument, error) {
		loads++
		return ReportDocument{Content: map[string]interface{}{"id": "1"}}, nil
	}

	doc, err := reportCache.GetOrLoad(key, loader)
	assertion.NoError(err)
	assertion.Equal("1", doc.Content["id"])

	doc, err = reportCache.GetOrLoad(key, loader)
	assertion.NoError(err)
	assertion.Equal("1", doc.Content["id"])
	assertion.Equal(1, loads)
	assertion.Equal(int32(1), reportCache.GetCacheHits())
	assertion.Equal(int32(1), reportCache.GetCacheMisses())

	// errors are returned and not cached
	failingKey := ReportCacheKey{Bucket: "b", Key: "broken"}
	_, err = reportCache.GetOrLoad(failingKey, func() (ReportDocument, error) {
		return ReportDocument{}, errors.New("access denied")
	})
	assertion.Error(err)
	_, ok := reportCache.Get(failingKey)
	assertion.False(ok)
}
