// Package storagetest provides an in-memory storage.System for tests.
package storagetest

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/JaimeStill/folio/pkg/lifecycle"
	"github.com/JaimeStill/folio/pkg/storage"
)

// Object is a stored blob and its content type.
type Object struct {
	Data        []byte
	ContentType string
}

// Memory is a concurrency-safe in-memory blob store. The Err fields inject
// failures into the matching operation.
type Memory struct {
	mu      sync.Mutex
	objects map[string]Object

	ExistsErr error
	GetErr    error
	PutErr    error
	DeleteErr error
	SignErr   error

	Gets    int
	Puts    int
	Deletes int
}

var _ storage.System = (*Memory)(nil)

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string]Object)}
}

// Seed stores data at bucket/key without counting as a Put.
func (m *Memory) Seed(bucket, key string, data []byte, contentType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path(bucket, key)] = Object{Data: data, ContentType: contentType}
}

// Object returns the blob at bucket/key.
func (m *Memory) Object(bucket, key string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[path(bucket, key)]
	return obj, ok
}

// Keys returns every stored key in bucket, sorted.
func (m *Memory) Keys(bucket string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	prefix := bucket + "/"
	var keys []string
	for p := range m.objects {
		if k, ok := strings.CutPrefix(p, prefix); ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Counts returns the Get, Put and Delete call counts.
func (m *Memory) Counts() (gets, puts, deletes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Gets, m.Puts, m.Deletes
}

func (m *Memory) Start(lc *lifecycle.Coordinator) error {
	return nil
}

func (m *Memory) Exists(ctx context.Context, bucket, key string) (bool, error) {
	if err := storage.ValidateKey(bucket, key); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ExistsErr != nil {
		return false, m.ExistsErr
	}
	_, ok := m.objects[path(bucket, key)]
	return ok, nil
}

func (m *Memory) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	if err := storage.ValidateKey(bucket, key); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Gets++
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	obj, ok := m.objects[path(bucket, key)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), obj.Data...), nil
}

func (m *Memory) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	if err := storage.ValidateKey(bucket, key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Puts++
	if m.PutErr != nil {
		return m.PutErr
	}
	m.objects[path(bucket, key)] = Object{
		Data:        append([]byte(nil), data...),
		ContentType: contentType,
	}
	return nil
}

func (m *Memory) Delete(ctx context.Context, bucket, key string) error {
	if err := storage.ValidateKey(bucket, key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Deletes++
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	p := path(bucket, key)
	if _, ok := m.objects[p]; !ok {
		return storage.ErrNotFound
	}
	delete(m.objects, p)
	return nil
}

func (m *Memory) DeletePrefix(ctx context.Context, bucket, prefix string) (int, error) {
	if err := storage.ValidateKey(bucket, prefix); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DeleteErr != nil {
		return 0, m.DeleteErr
	}

	full := path(bucket, prefix)
	n := 0
	for p := range m.objects {
		if strings.HasPrefix(p, full) {
			delete(m.objects, p)
			n++
		}
	}
	m.Deletes += n
	return n, nil
}

// SignedURL returns https://blob.test/{bucket}/{key}?ttl={ttl}.
func (m *Memory) SignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	if err := storage.ValidateKey(bucket, key); err != nil {
		return "", err
	}
	if m.SignErr != nil {
		return "", m.SignErr
	}
	return fmt.Sprintf("https://blob.test/%s/%s?ttl=%s", bucket, key, url.QueryEscape(ttl.String())), nil
}

func path(bucket, key string) string {
	return bucket + "/" + key
}
