package service

import (
	"context"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"

	healthsvc "spot_trader/internal/modules/health/service"
	"spot_trader/pkg/logger"
)

// Scheduler превращает тики таймера в торговые циклы. Инвариант: в
// полёте не больше одного цикла. Тик, пришедший во время работы,
// отбрасывается, а не ставится в очередь, чтобы циклы не слипались
// после долгого запроса к бирже.
type Scheduler struct {
	cycleEvery    time.Duration
	snapshotEvery time.Duration

	runner   CycleRunner
	recorder *Recorder
	state    *healthsvc.State

	trigger chan time.Time
	wg      sync.WaitGroup
}

func NewScheduler(cycleEvery, snapshotEvery time.Duration, runner CycleRunner, recorder *Recorder, state *healthsvc.State) *Scheduler {
	return &Scheduler{
		cycleEvery:    cycleEvery,
		snapshotEvery: snapshotEvery,
		runner:        runner,
		recorder:      recorder,
		state:         state,
		trigger:       make(chan time.Time, 1),
	}
}

// Run блокируется до отмены контекста.
func (s *Scheduler) Run(ctx context.Context) {
	s.wg.Add(1)
	go s.worker(ctx)

	cycleTicker := time.NewTicker(s.cycleEvery)
	snapshotTicker := time.NewTicker(s.snapshotEvery)
	defer cycleTicker.Stop()
	defer snapshotTicker.Stop()

	// стартовый снимок: гварду нужна оценка портфеля до первой сделки
	s.recorder.RecordNow(ctx, time.Now())
	s.state.SetReady(true)
	s.fire(time.Now())

	for {
		select {
		case <-ctx.Done():
			s.state.SetReady(false)
			s.wg.Wait()
			return
		case t := <-cycleTicker.C:
			s.fire(t)
		case t := <-snapshotTicker.C:
			s.recorder.RecordNow(ctx, t)
		}
	}
}

// fire кладёт триггер без блокировки. Переполнение значит, что worker
// ещё занят предыдущим циклом.
func (s *Scheduler) fire(t time.Time) {
	select {
	case s.trigger <- t:
	default:
		s.state.MarkSkipped()
		logger.Warn("cycle still running, skipping trigger at %s", t.Format(time.RFC3339))
	}
}

func (s *Scheduler) worker(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-s.trigger:
			s.runCycle(ctx, now)
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context, now time.Time) {
	span := opentracing.StartSpan("trading_cycle")
	defer span.Finish()
	ctx = opentracing.ContextWithSpan(ctx, span)

	started := time.Now()
	executed := s.runner.RunCycle(ctx, now)
	span.SetTag("orders_executed", executed)

	logger.Info("cycle done: %d orders in %s", executed, time.Since(started).Round(time.Millisecond))
	s.state.TouchCycle(now)

	// после сделок балансы устарели, снимаем сразу, не дожидаясь таймера
	if executed > 0 {
		s.recorder.RecordNow(ctx, time.Now())
	}
}
