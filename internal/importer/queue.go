package importer

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrQueueClosed is returned by Request after Close.
var ErrQueueClosed = errors.New("import queue closed")

// Job is a finished background import.
type Job struct {
	ID     string
	Path   string
	Upload Upload
}

type request struct {
	id   string
	path string
}

// Queue imports assets on worker goroutines. Finished jobs wait until the
// thread that owns the GPU collects them with Drain.
type Queue struct {
	loader   *Loader
	requests chan request

	mu     sync.RWMutex // Guards closed and sends on requests.
	closed bool

	doneMu   sync.Mutex
	finished []Job

	wg sync.WaitGroup
}

// NewQueue starts workers goroutines importing through loader. At least one
// worker always runs.
func NewQueue(loader *Loader, workers int) *Queue {
	if workers < 1 {
		workers = 1
	}
	q := &Queue{
		loader:   loader,
		requests: make(chan request, 64),
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.work()
	}
	return q
}

// Request schedules path for import and returns the job ID. It blocks while
// the request backlog is full.
func (q *Queue) Request(path string) (string, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return "", ErrQueueClosed
	}
	id := uuid.NewString()
	q.requests <- request{id: id, path: path}
	q.loader.log.Debug("import requested", zap.String("job", id), zap.String("asset", path))
	return id, nil
}

// Drain returns the jobs finished since the last call, oldest first.
func (q *Queue) Drain() []Job {
	q.doneMu.Lock()
	defer q.doneMu.Unlock()
	jobs := q.finished
	q.finished = nil
	return jobs
}

// Close stops accepting requests, finishes the backlog and waits for the
// workers to exit. Jobs finished before Close returns remain drainable.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.requests)
	q.mu.Unlock()
	q.wg.Wait()
}

func (q *Queue) work() {
	defer q.wg.Done()
	for req := range q.requests {
		up := q.loader.Load(req.path)

		q.doneMu.Lock()
		q.finished = append(q.finished, Job{ID: req.id, Path: req.path, Upload: up})
		q.doneMu.Unlock()
		q.loader.log.Debug("import finished", zap.String("job", req.id), zap.String("asset", req.path))
	}
}
