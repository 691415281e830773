package fake

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hireline/hireline/internal/storage"
)

// Objects is an in-memory object store.
type Objects struct {
	mu      sync.Mutex
	objects map[string][]byte

	// UploadErr, when set, is returned by Upload.
	UploadErr error
}

// NewObjects returns an empty object store.
func NewObjects() *Objects {
	return &Objects{objects: make(map[string][]byte)}
}

// Len returns the number of stored objects.
func (o *Objects) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.objects)
}

// Has reports whether path is stored.
func (o *Objects) Has(path string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.objects[path]
	return ok
}

func (o *Objects) Upload(_ context.Context, path string, data []byte, _ string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.UploadErr != nil {
		return o.UploadErr
	}
	if _, ok := o.objects[path]; ok {
		return &storage.Error{Op: "upload", StatusCode: 409, Message: "The resource already exists"}
	}
	o.objects[path] = append([]byte(nil), data...)
	return nil
}

func (o *Objects) SignedURL(_ context.Context, path string, ttl time.Duration) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.objects[path]; !ok {
		return "", storage.ErrObjectNotFound
	}
	return fmt.Sprintf("https://storage.test/object/sign/resumes/%s?token=fake&expires=%d", path, int(ttl.Seconds())), nil
}

func (o *Objects) Remove(_ context.Context, paths ...string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, p := range paths {
		delete(o.objects, p)
	}
	return nil
}
