package service

import (
	"context"
	"quizify_backend/internal/model"
	"quizify_backend/internal/util"
	"quizify_backend/pkg/logger"
	"sync"
	"time"

	"go.uber.org/zap"
)

type SessionState string

const (
	StateInProgress SessionState = "in_progress"
	StateSubmitting SessionState = "submitting"
	StateCompleted  SessionState = "completed"
)

type SubmitTrigger string

const (
	TriggerManual  SubmitTrigger = "manual"
	TriggerTimeout SubmitTrigger = "timeout"
)

// AttemptRecorder persists a finalized attempt. QuizStore implements it.
type AttemptRecorder interface {
	SubmitAttempt(ctx context.Context, draft model.AttemptDraft) (*model.Attempt, error)
}

// TickerFunc starts a repeating tick source and returns its channel and a stop function.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func systemTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

type RunnerOptions struct {
	Now        func() time.Time
	Ticker     TickerFunc
	OnComplete func(attempt *model.Attempt, trigger SubmitTrigger)
}

// AttemptRunner drives one student's pass through a quiz. It owns the
// countdown for timed quizzes and guarantees that at most one attempt is
// recorded per session, whichever of manual submit and timeout comes first.
type AttemptRunner struct {
	quiz      model.Quiz
	studentID string
	recorder  AttemptRecorder
	now       func() time.Time
	onDone    func(*model.Attempt, SubmitTrigger)

	mu        sync.Mutex
	state     SessionState
	discarded bool
	index     int
	answers   model.Answers
	startedAt time.Time
	remaining int
	attempt   *model.Attempt
	trigger   SubmitTrigger
	stopTimer func()
	done      chan struct{}
}

// NewAttemptRunner starts a session at question 0. For a timed quiz the
// countdown starts immediately at TimeLimit*60 seconds.
func NewAttemptRunner(quiz model.Quiz, studentID string, recorder AttemptRecorder, opts RunnerOptions) *AttemptRunner {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Ticker == nil {
		opts.Ticker = systemTicker
	}

	r := &AttemptRunner{
		quiz:      quiz.Clone(),
		studentID: studentID,
		recorder:  recorder,
		now:       opts.Now,
		onDone:    opts.OnComplete,
		state:     StateInProgress,
		answers:   make(model.Answers),
		remaining: quiz.TimeLimitSeconds(),
		done:      make(chan struct{}),
	}
	r.startedAt = r.now()

	if r.remaining > 0 {
		r.startTimer(opts.Ticker)
	}
	return r
}

func (r *AttemptRunner) startTimer(ticker TickerFunc) {
	ch, stop := ticker(time.Second)
	quit := make(chan struct{})
	var once sync.Once
	r.stopTimer = func() {
		once.Do(func() {
			stop()
			close(quit)
		})
	}

	go func() {
		for {
			select {
			case <-quit:
				return
			case <-ch:
				if r.tick() {
					return
				}
			}
		}
	}()
}

// tick counts down one second and submits when the countdown reaches zero.
// It reports whether the timer should stop.
func (r *AttemptRunner) tick() bool {
	r.mu.Lock()
	if r.state != StateInProgress || r.discarded {
		r.mu.Unlock()
		return true
	}
	if r.remaining > 0 {
		r.remaining--
	}
	expired := r.remaining == 0
	r.mu.Unlock()

	if !expired {
		return false
	}

	if _, err := r.submit(context.Background(), TriggerTimeout); err != nil {
		logger.Log.Error("Timed submission failed",
			zap.String("quizId", r.quiz.ID),
			zap.String("studentId", r.studentID),
			zap.Error(err),
		)
	}
	return true
}

func (r *AttemptRunner) Quiz() model.Quiz {
	return r.quiz
}

func (r *AttemptRunner) StudentID() string {
	return r.studentID
}

// Answer records or overwrites the answer for questionID. Position and state
// are unchanged.
func (r *AttemptRunner) Answer(questionID string, answer model.Answer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateInProgress || r.discarded {
		return util.ErrSessionClosed
	}
	r.answers[questionID] = answer
	return nil
}

func (r *AttemptRunner) clamp(i int) int {
	last := len(r.quiz.Questions) - 1
	if i > last {
		i = last
	}
	if i < 0 {
		i = 0
	}
	return i
}

// Advance moves to the next question, staying on the last one.
func (r *AttemptRunner) Advance() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.index = r.clamp(r.index + 1)
	return r.index
}

// Retreat moves to the previous question, staying on the first one.
func (r *AttemptRunner) Retreat() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.index = r.clamp(r.index - 1)
	return r.index
}

// JumpTo moves directly to question i (clamped), as the overview grid does.
func (r *AttemptRunner) JumpTo(i int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.index = r.clamp(i)
	return r.index
}

// CurrentAnswered reports whether the question at the current index has a recorded answer.
func (r *AttemptRunner) CurrentAnswered() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.quiz.Questions) == 0 {
		return false
	}
	_, ok := r.answers[r.quiz.Questions[r.index].ID]
	return ok
}

// Submit finalizes the session manually. A second call, or a call racing the
// timer, is absorbed: it returns the already recorded attempt, or nil while
// the first submission is still being persisted.
func (r *AttemptRunner) Submit(ctx context.Context) (*model.Attempt, error) {
	return r.submit(ctx, TriggerManual)
}

func (r *AttemptRunner) submit(ctx context.Context, trigger SubmitTrigger) (*model.Attempt, error) {
	r.mu.Lock()
	if r.discarded {
		r.mu.Unlock()
		return nil, util.ErrSessionClosed
	}
	if r.state != StateInProgress {
		attempt := r.attempt
		r.mu.Unlock()
		return attempt, nil
	}

	r.state = StateSubmitting
	elapsed := r.now().Sub(r.startedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	draft := model.AttemptDraft{
		QuizID:      r.quiz.ID,
		StudentID:   r.studentID,
		Answers:     r.answers.Clone(),
		Score:       r.quiz.Score(r.answers),
		TotalPoints: r.quiz.TotalPoints(),
		TimeSpent:   int(elapsed / time.Second),
	}
	stop := r.stopTimer
	r.mu.Unlock()

	if stop != nil {
		stop()
	}

	attempt, err := r.recorder.SubmitAttempt(ctx, draft)

	r.mu.Lock()
	if err != nil {
		// 持久化失败时回到答题状态，允许手动重试
		r.state = StateInProgress
		r.mu.Unlock()
		return nil, err
	}
	r.state = StateCompleted
	r.attempt = attempt
	r.trigger = trigger
	close(r.done)
	onDone := r.onDone
	r.mu.Unlock()

	if onDone != nil {
		onDone(attempt, trigger)
	}
	return attempt, nil
}

// Discard abandons the session without recording anything and stops the timer.
func (r *AttemptRunner) Discard() {
	r.mu.Lock()
	if r.state == StateCompleted || r.discarded {
		r.mu.Unlock()
		return
	}
	r.discarded = true
	stop := r.stopTimer
	r.mu.Unlock()

	if stop != nil {
		stop()
	}
}

// Done is closed once an attempt has been recorded.
func (r *AttemptRunner) Done() <-chan struct{} {
	return r.done
}

type RunnerSnapshot struct {
	State         SessionState          `json:"state"`
	Discarded     bool                  `json:"discarded,omitempty"`
	CurrentIndex  int                   `json:"currentIndex"`
	QuestionCount int                   `json:"questionCount"`
	Current       model.StudentQuestion `json:"currentQuestion"`
	Answers       model.Answers         `json:"answers"`
	AnsweredCount int                   `json:"answeredCount"`
	Timed         bool                  `json:"timed"`
	Remaining     int                   `json:"remainingSeconds"`
	StartedAt     time.Time             `json:"startedAt"`
	Attempt       *model.Attempt        `json:"attempt,omitempty"`
	Trigger       SubmitTrigger         `json:"trigger,omitempty"`
}

func (r *AttemptRunner) Snapshot() RunnerSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	answered := 0
	for _, q := range r.quiz.Questions {
		if _, ok := r.answers[q.ID]; ok {
			answered++
		}
	}

	snap := RunnerSnapshot{
		State:         r.state,
		Discarded:     r.discarded,
		CurrentIndex:  r.index,
		QuestionCount: len(r.quiz.Questions),
		Answers:       r.answers.Clone(),
		AnsweredCount: answered,
		Timed:         r.quiz.TimeLimitSeconds() > 0,
		Remaining:     r.remaining,
		StartedAt:     r.startedAt,
		Attempt:       r.attempt,
		Trigger:       r.trigger,
	}
	if len(r.quiz.Questions) > 0 {
		snap.Current = r.quiz.Questions[r.index].StudentView()
	}
	return snap
}
