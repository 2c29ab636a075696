package document

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/Abraxas-365/hojavida/pkg/fsx"
)

type memoryStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	options  map[string]fsx.WriteOptions
	writeErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		objects: make(map[string][]byte),
		options: make(map[string]fsx.WriteOptions),
	}
}

func (m *memoryStore) ReadFile(_ context.Context, path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[path]
	if !ok {
		return nil, fsx.ErrNotExist
	}
	return data, nil
}

func (m *memoryStore) WriteFile(_ context.Context, path string, data []byte, opts ...fsx.WriteOption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.objects[path] = append([]byte(nil), data...)
	m.options[path] = fsx.ApplyOptions(opts...)
	return nil
}

func (m *memoryStore) WriteFileStream(ctx context.Context, path string, r io.Reader, opts ...fsx.WriteOption) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return m.WriteFile(ctx, path, data, opts...)
}

type stubSigner struct {
	url string
	err error
}

func (s stubSigner) SignedURL(_ context.Context, path string, _ time.Duration) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.url + path, nil
}

// fakeEngine records launches and hands out sessions scripted by print
type fakeEngine struct {
	mu        sync.Mutex
	launches  int
	launchErr error
	print     func(ctx context.Context, html string) ([]byte, error)
	sessions  []*fakeSession
}

func (e *fakeEngine) Launch(ctx context.Context) (Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.launches++
	if e.launchErr != nil {
		return nil, e.launchErr
	}
	s := &fakeSession{print: e.print}
	e.sessions = append(e.sessions, s)
	return s, nil
}

func (e *fakeEngine) closeCounts() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]int, len(e.sessions))
	for i, s := range e.sessions {
		out[i] = s.closes
	}
	return out
}

type fakeSession struct {
	print  func(ctx context.Context, html string) ([]byte, error)
	closes int
}

func (s *fakeSession) Print(ctx context.Context, html string, _ PrintOptions) ([]byte, error) {
	if s.print == nil {
		return nil, errors.New("no print behaviour")
	}
	return s.print(ctx, html)
}

func (s *fakeSession) Close() error {
	s.closes++
	return nil
}

var minimalPDF = []byte("%PDF-1.4\n%fake\n")
