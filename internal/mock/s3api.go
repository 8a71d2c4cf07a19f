package mock

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3Types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

var (
	TestBucketName      = "test-bucket"
	TestErrorBucketName = "test-error-bucket"
	TestMissingKey      = "test-missing-key"
)

type PutRecord struct {
	Bucket      string
	Key         string
	ContentType string
	Body        []byte
}

// MockS3Api keeps written objects in memory. any call against
// TestErrorBucketName fails.
type MockS3Api struct {
	mu        sync.Mutex
	Objects   map[string][]byte    // key -> body, served by GetObject
	Modified  map[string]time.Time // key -> last modified, served by List and Head
	Puts      []PutRecord
	HeadCalls int
}

func NewMockS3Api() *MockS3Api {
	return &MockS3Api{
		Objects:  map[string][]byte{},
		Modified: map[string]time.Time{},
	}
}

// AddObject seeds an object as if it had been written at modified.
func (s *MockS3Api) AddObject(key string, body []byte, modified time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Objects == nil {
		s.Objects = map[string][]byte{}
		s.Modified = map[string]time.Time{}
	}
	s.Objects[key] = body
	s.Modified[key] = modified
}

// GetPut returns the last put for key.
func (s *MockS3Api) GetPut(key string) (PutRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.Puts) - 1; i >= 0; i-- {
		if s.Puts[i].Key == key {
			return s.Puts[i], true
		}
	}
	return PutRecord{}, false
}

// PutKeys returns every written key in order.
func (s *MockS3Api) PutKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := []string{}
	for _, put := range s.Puts {
		keys = append(keys, put.Key)
	}
	return keys
}

// get object
func (s *MockS3Api) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if aws.ToString(params.Bucket) == TestErrorBucketName {
		return nil, errors.New("get object error")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	body, ok := s.Objects[aws.ToString(params.Key)]
	if !ok {
		return nil, errors.New("no such key")
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(bytes.NewReader(body)),
	}, nil
}

// put object
func (s *MockS3Api) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if aws.ToString(params.Bucket) == TestErrorBucketName {
		return nil, errors.New("put object error")
	}
	var body []byte
	if params.Body != nil {
		content, err := io.ReadAll(params.Body)
		if err != nil {
			return nil, err
		}
		body = content
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Puts = append(s.Puts, PutRecord{
		Bucket:      aws.ToString(params.Bucket),
		Key:         aws.ToString(params.Key),
		ContentType: aws.ToString(params.ContentType),
		Body:        body,
	})
	if s.Objects == nil {
		s.Objects = map[string][]byte{}
		s.Modified = map[string]time.Time{}
	}
	s.Objects[aws.ToString(params.Key)] = body
	return &s3.PutObjectOutput{}, nil
}

// head object
func (s *MockS3Api) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.HeadCalls++
	key := aws.ToString(params.Key)
	if aws.ToString(params.Bucket) == TestErrorBucketName || key == TestMissingKey {
		return nil, errors.New("head object error")
	}
	output := &s3.HeadObjectOutput{
		ContentLength: aws.Int64(int64(len(s.Objects[key]))),
	}
	if modified, ok := s.Modified[key]; ok {
		output.LastModified = aws.Time(modified)
	}
	return output, nil
}

// list objects v2, a single page filtered by prefix
func (s *MockS3Api) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if aws.ToString(params.Bucket) == TestErrorBucketName {
		return nil, errors.New("list objects error")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := aws.ToString(params.Prefix)
	contents := []s3Types.Object{}
	for key, body := range s.Objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		obj := s3Types.Object{
			Key:  aws.String(key),
			Size: aws.Int64(int64(len(body))),
		}
		if modified, ok := s.Modified[key]; ok {
			obj.LastModified = aws.Time(modified)
		}
		contents = append(contents, obj)
	}
	return &s3.ListObjectsV2Output{
		Contents:    contents,
		IsTruncated: aws.Bool(false),
	}, nil
}
