package runner

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"rate_bot/internal/models"
)

type TaskState int

const (
	TaskIdle TaskState = iota
	TaskScheduled
	TaskRunning
)

func (s TaskState) String() string {
	switch s {
	case TaskScheduled:
		return "scheduled"
	case TaskRunning:
		return "running"
	default:
		return "idle"
	}
}

// CycleFunc runs one trade cycle for a future.
type CycleFunc func(ctx context.Context, market models.Market, futureID string) error

type task struct {
	futureID string
	market   models.Market
	timer    *time.Timer
	token    uint64
	next     time.Time
	state    TaskState
}

// Scheduler keeps one self-rescheduling timer per future id.
type Scheduler struct {
	ctx  context.Context
	run  CycleFunc
	avg  time.Duration
	sem  chan struct{}
	log  *zap.Logger
	wg   sync.WaitGroup
	hook func(n int)

	nextDelay func(avg time.Duration) time.Duration

	mu      sync.Mutex
	tasks   map[string]*task
	seq     uint64
	stopped bool
}

// NewScheduler shares sem with the other schedulers of the process, so the
// number of concurrently running cycles stays bounded overall.
func NewScheduler(ctx context.Context, run CycleFunc, avg time.Duration, sem chan struct{}, log *zap.Logger) *Scheduler {
	return &Scheduler{
		ctx:       ctx,
		run:       run,
		avg:       avg,
		sem:       sem,
		log:       log,
		nextDelay: NextDelay,
		tasks:     make(map[string]*task),
	}
}

// OnChange registers a callback receiving the number of tracked futures.
func (s *Scheduler) OnChange(fn func(n int)) { s.hook = fn }

// NextDelay draws a whole number of seconds uniformly from
// [round(avg/2), round(avg*2)].
func NextDelay(avg time.Duration) time.Duration {
	secs := avg.Seconds()
	lo := int64(math.Round(secs / 2))
	hi := int64(math.Round(secs * 2))
	if hi < lo {
		hi = lo
	}
	return time.Duration(lo+rand.Int64N(hi-lo+1)) * time.Second
}

func key(futureID string) string { return strings.ToLower(futureID) }

// Schedule installs the task for the future, replacing the pending timer
// of an existing one. A running task only gets its market snapshot updated;
// it reschedules itself when the cycle ends.
func (s *Scheduler) Schedule(market models.Market, future models.Future) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}

	id := key(future.ID)
	t, ok := s.tasks[id]
	if !ok {
		t = &task{futureID: future.ID}
		s.tasks[id] = t
	}
	t.market = market
	if t.state == TaskRunning {
		return
	}
	s.installLocked(id, t)
	s.notifyLocked()
}

// Tracked reports whether the future has a live task.
func (s *Scheduler) Tracked(futureID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[key(futureID)]
	return ok
}

func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// State returns the task state and next fire time of the future.
func (s *Scheduler) State(futureID string) (TaskState, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[key(futureID)]
	if !ok {
		return TaskIdle, time.Time{}
	}
	return t.state, t.next
}

func (s *Scheduler) installLocked(id string, t *task) {
	if t.timer != nil {
		t.timer.Stop()
	}
	s.seq++
	token := s.seq
	delay := s.nextDelay(s.avg)

	t.token = token
	t.next = time.Now().Add(delay)
	t.state = TaskScheduled
	t.timer = time.AfterFunc(delay, func() { s.fire(id, token) })

	s.log.Info("next trade scheduled",
		zap.String("future", t.futureID),
		zap.Time("at", t.next),
		zap.Duration("in", delay),
	)
}

func (s *Scheduler) fire(id string, token uint64) {
	s.mu.Lock()
	t, ok := s.tasks[id]
	// stale timer of a replaced task, or the previous cycle is still running
	if !ok || s.stopped || t.token != token || t.state == TaskRunning {
		s.mu.Unlock()
		return
	}
	t.state = TaskRunning
	market := t.market
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	s.runOnce(market, t.futureID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || s.ctx.Err() != nil {
		t.state = TaskIdle
		return
	}
	s.installLocked(id, t)
}

func (s *Scheduler) runOnce(market models.Market, futureID string) {
	if s.ctx.Err() != nil {
		return
	}
	select {
	case s.sem <- struct{}{}:
	case <-s.ctx.Done():
		return
	}
	defer func() { <-s.sem }()

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("trade cycle panicked",
				zap.String("future", futureID),
				zap.String("panic", fmt.Sprint(r)),
				zap.Stack("stack"),
			)
		}
	}()

	err := s.run(s.ctx, market, futureID)
	switch {
	case err == nil:
	case IsPolicyAbort(err):
		s.log.Warn("trade cycle aborted by policy", zap.String("future", futureID), zap.Error(err))
	default:
		s.log.Error("trade cycle failed", zap.String("future", futureID), zap.Error(err))
	}
}

func (s *Scheduler) notifyLocked() {
	if s.hook != nil {
		s.hook(len(s.tasks))
	}
}

// Stop cancels all pending timers and waits for running cycles until ctx
// ends.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	for _, t := range s.tasks {
		if t.timer != nil {
			t.timer.Stop()
		}
		if t.state == TaskScheduled {
			t.state = TaskIdle
		}
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
