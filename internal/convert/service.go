package convert

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/avdeevs/mediavault/internal/common"
	"github.com/avdeevs/mediavault/internal/logging"
	"github.com/google/uuid"
)

// DefaultDeadline is how long a submitted task may stay pending before it is
// rejected with a timeout.
const DefaultDeadline = 30 * time.Second

// BackgroundCallbacks let a caller that has navigated away from the
// submitting context still learn about terminal worker resolutions.
// CurrentContext is compared against the context captured at submission
// time; on mismatch the matching callback fires in addition to resolving
// the awaited task.
type BackgroundCallbacks struct {
	CurrentContext func() string
	OnComplete     func(Result)
	OnError        func(error)
}

// pendingTask is one entry of the pending map, owned exclusively by the
// dispatcher goroutine.
type pendingTask struct {
	task       *Task
	payload    Payload
	onProgress ProgressFunc
	origin     string
	timer      *time.Timer
}

// generation is one worker lifetime. Initialize creates one; destroy or a
// crash retires it. done is closed after err is set, so racing submitters
// can observe why the generation stopped.
type generation struct {
	submitCh  chan *pendingTask
	destroyCh chan chan struct{}
	done      chan struct{}
	err       error
}

// Service is the process-wide conversion front end. One dispatcher
// goroutine owns the pending map and the worker handle exclusively; all
// submissions, inbound messages, timeouts and shutdowns funnel through it,
// so a pending entry is removed exactly once with no external locking.
type Service struct {
	worker   Worker
	deadline time.Duration
	log      logging.Logger

	mu  sync.Mutex
	gen *generation

	cbMu      sync.Mutex
	callbacks BackgroundCallbacks

	pendingGauge atomic.Int64
}

// Option configures a Service.
type Option func(*Service)

// WithDeadline overrides the per-task deadline.
func WithDeadline(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.deadline = d
		}
	}
}

// NewService creates a Service around the given worker. The worker is not
// started until Initialize.
func NewService(worker Worker, log logging.Logger, opts ...Option) *Service {
	s := &Service{worker: worker, deadline: DefaultDeadline, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize lazily starts the worker. It is idempotent: while a worker
// generation is alive, further calls are no-ops. After Destroy or a crash
// it starts a fresh generation.
func (s *Service) Initialize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != nil {
		return
	}

	g := &generation{
		submitCh:  make(chan *pendingTask),
		destroyCh: make(chan chan struct{}),
		done:      make(chan struct{}),
	}

	requests := make(chan Request, 64)
	messages := make(chan Message, 64)
	workerCtx, cancel := context.WithCancel(context.Background())
	workerDone := make(chan error, 1)

	go func() {
		workerDone <- s.worker.Run(workerCtx, requests, messages)
	}()
	go s.dispatch(g, requests, messages, workerDone, cancel)

	s.gen = g
}

// Submit registers a conversion and returns its awaitable handle. It never
// fails synchronously: with no live worker generation the task comes back
// already rejected with a worker-init error. onProgress may be nil.
func (s *Service) Submit(payload Payload, onProgress ProgressFunc) *Task {
	task := newTask(uuid.NewString())

	s.mu.Lock()
	g := s.gen
	s.mu.Unlock()
	if g == nil {
		task.resolve(nil, common.ErrWorkerInit)
		return task
	}

	pt := &pendingTask{
		task:       task,
		payload:    payload,
		onProgress: onProgress,
		origin:     s.currentContext(),
	}

	select {
	case g.submitCh <- pt:
	case <-g.done:
		task.resolve(nil, g.err)
	}
	return task
}

// PendingCount reports how many tasks are currently awaiting a terminal
// message.
func (s *Service) PendingCount() int {
	return int(s.pendingGauge.Load())
}

// SetBackgroundCallbacks installs (or replaces) the off-screen completion
// callbacks.
func (s *Service) SetBackgroundCallbacks(cb BackgroundCallbacks) {
	s.cbMu.Lock()
	s.callbacks = cb
	s.cbMu.Unlock()
}

// Destroy terminates the worker and rejects every currently pending task
// with a destroyed error. Submissions after Destroy are rejected until
// Initialize is called again.
func (s *Service) Destroy() {
	s.mu.Lock()
	g := s.gen
	s.mu.Unlock()
	if g == nil {
		return
	}

	ack := make(chan struct{})
	select {
	case g.destroyCh <- ack:
		<-ack
	case <-g.done:
	}
}

// dispatch is the single owner of the pending map.
func (s *Service) dispatch(g *generation, requests chan<- Request, messages <-chan Message, workerDone <-chan error, cancel context.CancelFunc) {
	ctx := context.Background()
	pending := make(map[string]*pendingTask)
	expired := make(chan string, 64)

	finish := func(id string, result *Result, err error, fromWorker bool) {
		pt, ok := pending[id]
		if !ok {
			return
		}
		pt.timer.Stop()
		delete(pending, id)
		s.pendingGauge.Add(-1)
		pt.task.resolve(result, err)
		if fromWorker {
			s.notifyBackground(pt.origin, result, err)
		}
	}

	shutdown := func(cause error) {
		cancel()
		for id, pt := range pending {
			pt.timer.Stop()
			delete(pending, id)
			s.pendingGauge.Add(-1)
			pt.task.resolve(nil, cause)
		}
		g.err = cause
		s.mu.Lock()
		if s.gen == g {
			s.gen = nil
		}
		s.mu.Unlock()
		close(g.done)
	}

	for {
		select {
		case pt := <-g.submitCh:
			id := pt.task.ID
			select {
			case requests <- Request{ID: id, Payload: pt.payload}:
			default:
				pt.task.resolve(nil, fmt.Errorf("%w: worker queue full", common.ErrConversionFailed))
				continue
			}
			pending[id] = pt
			s.pendingGauge.Add(1)
			pt.timer = time.AfterFunc(s.deadline, func() {
				select {
				case expired <- id:
				case <-g.done:
				}
			})

		case msg := <-messages:
			pt, ok := pending[msg.ID]
			if !ok {
				// stale: already timed out, resolved, or never ours
				s.log.Warn(ctx, "ignoring message for unknown task", "id", msg.ID, "type", msg.Type)
				continue
			}
			switch msg.Type {
			case MessageProgress:
				if pt.onProgress != nil {
					pt.onProgress(msg.Progress, msg.Phase)
				}
			case MessageComplete:
				finish(msg.ID, msg.Result, nil, true)
			case MessageError:
				finish(msg.ID, nil, fmt.Errorf("%w: %s", common.ErrConversionFailed, msg.Error), true)
			}

		case id := <-expired:
			finish(id, nil, common.ErrConversionTimeout, false)

		case ack := <-g.destroyCh:
			shutdown(common.ErrWorkerDestroyed)
			close(ack)
			return

		case err := <-workerDone:
			cause := common.ErrWorkerCrashed
			if err != nil {
				if errors.Is(err, common.ErrWorkerInit) {
					cause = err
				} else {
					cause = fmt.Errorf("%w: %v", common.ErrWorkerCrashed, err)
				}
			}
			s.log.Error(ctx, "conversion worker stopped unexpectedly", "error", err)
			shutdown(cause)
			return
		}
	}
}

func (s *Service) currentContext() string {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()
	if s.callbacks.CurrentContext == nil {
		return ""
	}
	return s.callbacks.CurrentContext()
}

func (s *Service) notifyBackground(origin string, result *Result, err error) {
	s.cbMu.Lock()
	cb := s.callbacks
	s.cbMu.Unlock()

	if cb.CurrentContext == nil || cb.CurrentContext() == origin {
		return
	}
	if err != nil {
		if cb.OnError != nil {
			cb.OnError(err)
		}
		return
	}
	if cb.OnComplete != nil && result != nil {
		cb.OnComplete(*result)
	}
}
