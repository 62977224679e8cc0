// Package fs implements a filesystem-spool messaging.Queue. Each message is
// one JSON file moving between pending/, processing/, completed/ and dlq/
// directories, so a crashed consumer leaves an inspectable trail and a
// restarted one picks up where it stopped.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"

	"github.com/registrykit/bridge/internal/clock"
	"github.com/registrykit/bridge/internal/idgen"
	"github.com/registrykit/bridge/service/messaging"
)

// Config holds the spool location and retry budget.
type Config struct {
	BasePath   string
	MaxRetries int
}

// DefaultConfig returns the standard spool configuration.
func DefaultConfig() Config {
	return Config{
		BasePath:   "/tmp/bridge/queue",
		MaxRetries: 3,
	}
}

// envelope is the on-disk message shape.
type envelope[T any] struct {
	ID        string    `json:"id"`
	Data      T         `json:"data"`
	Retries   int       `json:"retries"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Queue is a filesystem-backed messaging.Queue.
type Queue[T any] struct {
	fs     afs.Service
	config Config
	mu     sync.Mutex

	pendingDir    string
	processingDir string
	completedDir  string
	dlqDir        string
}

// NewQueue creates a filesystem queue rooted at config.BasePath, creating
// the spool directories when missing.
func NewQueue[T any](fs afs.Service, config Config) (*Queue[T], error) {
	if config.BasePath == "" {
		return nil, fmt.Errorf("fs queue: base path cannot be empty")
	}
	q := &Queue[T]{
		fs:            fs,
		config:        config,
		pendingDir:    path.Join(config.BasePath, "pending"),
		processingDir: path.Join(config.BasePath, "processing"),
		completedDir:  path.Join(config.BasePath, "completed"),
		dlqDir:        path.Join(config.BasePath, "dlq"),
	}
	ctx := context.Background()
	for _, dir := range []string{q.pendingDir, q.processingDir, q.completedDir, q.dlqDir} {
		if exists, _ := fs.Exists(ctx, dir); exists {
			continue
		}
		if err := fs.Create(ctx, dir, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("fs queue: creating %s: %w", dir, err)
		}
	}
	return q, nil
}

// Publish writes the payload to the pending spool.
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	now := clock.Now()
	env := envelope[T]{ID: idgen.New(), Data: *t, CreatedAt: now, UpdatedAt: now}
	return q.write(ctx, path.Join(q.pendingDir, env.ID+".json"), &env)
}

// Consume moves the oldest pending message into processing and returns it.
// It answers (nil, nil) when the spool is drained.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	objects, err := q.fs.List(ctx, q.pendingDir)
	if err != nil {
		return nil, fmt.Errorf("fs queue: listing pending: %w", err)
	}
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		env, err := q.read(ctx, object.URL())
		if err != nil {
			// A corrupt file would wedge the spool head; park it aside.
			_ = q.fs.Move(ctx, object.URL(), path.Join(q.dlqDir, "invalid-"+object.Name()))
			return nil, err
		}
		env.UpdatedAt = clock.Now()
		if err := q.write(ctx, path.Join(q.processingDir, object.Name()), env); err != nil {
			return nil, err
		}
		if err := q.fs.Delete(ctx, object.URL()); err != nil {
			return nil, fmt.Errorf("fs queue: removing pending %s: %w", object.Name(), err)
		}
		return &fsMessage[T]{envelope: env, queue: q}, nil
	}
	return nil, nil
}

func (q *Queue[T]) complete(ctx context.Context, env *envelope[T]) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	name := env.ID + ".json"
	if err := q.write(ctx, path.Join(q.completedDir, name), env); err != nil {
		return err
	}
	return q.discardProcessing(ctx, name)
}

func (q *Queue[T]) fail(ctx context.Context, env *envelope[T]) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	name := env.ID + ".json"
	dir := q.pendingDir
	if env.Retries > q.config.MaxRetries {
		dir = q.dlqDir
	}
	if err := q.write(ctx, path.Join(dir, name), env); err != nil {
		return err
	}
	return q.discardProcessing(ctx, name)
}

func (q *Queue[T]) discardProcessing(ctx context.Context, name string) error {
	processing := path.Join(q.processingDir, name)
	if exists, _ := q.fs.Exists(ctx, processing); exists {
		if err := q.fs.Delete(ctx, processing); err != nil {
			return fmt.Errorf("fs queue: removing processing %s: %w", name, err)
		}
	}
	return nil
}

func (q *Queue[T]) write(ctx context.Context, location string, env *envelope[T]) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("fs queue: marshaling message %s: %w", env.ID, err)
	}
	return q.fs.Upload(ctx, location, file.DefaultFileOsMode, bytes.NewBuffer(data))
}

func (q *Queue[T]) read(ctx context.Context, url string) (*envelope[T], error) {
	data, err := q.fs.DownloadWithURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fs queue: reading %s: %w", url, err)
	}
	var env envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("fs queue: decoding %s: %w", url, err)
	}
	return &env, nil
}

type fsMessage[T any] struct {
	envelope *envelope[T]
	queue    *Queue[T]

	mu        sync.Mutex
	processed bool
}

// T returns the message payload.
func (m *fsMessage[T]) T() *T {
	return &m.envelope.Data
}

// Ack files the message under completed/.
func (m *fsMessage[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message %s already processed", m.envelope.ID)
	}
	m.processed = true
	m.envelope.UpdatedAt = clock.Now()
	return m.queue.complete(context.Background(), m.envelope)
}

// Nack requeues the message for redelivery, or files it under dlq/ once the
// retry budget is spent.
func (m *fsMessage[T]) Nack(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message %s already processed", m.envelope.ID)
	}
	m.processed = true
	m.envelope.Retries++
	m.envelope.UpdatedAt = clock.Now()
	if err != nil {
		m.envelope.Error = err.Error()
	}
	return m.queue.fail(context.Background(), m.envelope)
}

var _ messaging.Queue[any] = (*Queue[any])(nil)
