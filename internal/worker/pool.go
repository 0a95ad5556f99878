package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultPopTimeout = 5 * time.Second

// Pool runs a fixed number of goroutines that pop receipt jobs and hand them
// to a Processor.
type Pool struct {
	queue      JobQueue
	processor  *Processor
	workers    int
	popTimeout time.Duration
	logger     *zap.Logger
}

func NewPool(q JobQueue, processor *Processor, workers int, logger *zap.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{
		queue:      q,
		processor:  processor,
		workers:    workers,
		popTimeout: defaultPopTimeout,
		logger:     logger,
	}
}

// Run blocks until ctx is cancelled and every worker has returned.
func (p *Pool) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			p.loop(ctx, workerID)
		}(i)
	}
	wg.Wait()
}

func (p *Pool) loop(ctx context.Context, workerID int) {
	log := p.logger.With(zap.Int("worker", workerID))
	for {
		select {
		case <-ctx.Done():
			log.Debug("worker shutting down")
			return
		default:
		}

		job, err := p.queue.Pop(ctx, p.popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn("failed to pop job", zap.Error(err))
			// back off so a broken connection does not spin
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		if job == nil {
			continue
		}

		if err := p.processor.Process(ctx, job); err != nil {
			log.Warn("job failed", zap.String("reference", job.PaymentReference), zap.Error(err))
		}
	}
}
