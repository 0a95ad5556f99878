package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/zubari_server/internal/pkg/email"
	"github.com/qs3c/zubari_server/internal/pkg/queue"
)

// DefaultMaxAttempts is how many times a receipt is tried before it is dropped.
const DefaultMaxAttempts = 3

// ReceiptSender delivers receipt emails. *email.Service implements it.
type ReceiptSender interface {
	SendReceipt(to string, r email.Receipt) error
}

// JobQueue is the receipt queue the worker consumes. *queue.Queue implements it.
type JobQueue interface {
	Push(ctx context.Context, job *queue.ReceiptJob) error
	Pop(ctx context.Context, timeout time.Duration) (*queue.ReceiptJob, error)
}

// Processor sends one receipt and requeues it on failure.
type Processor struct {
	sender      ReceiptSender
	queue       JobQueue
	maxAttempts int
	logger      *zap.Logger
}

func NewProcessor(sender ReceiptSender, q JobQueue, maxAttempts int, logger *zap.Logger) *Processor {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		sender:      sender,
		queue:       q,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// Process sends the receipt for job. A failed send is pushed back with its
// attempt count raised until maxAttempts is reached, after which the job is
// dropped and the send error returned.
func (p *Processor) Process(ctx context.Context, job *queue.ReceiptJob) error {
	if job.Email == "" {
		return fmt.Errorf("receipt %s has no recipient", job.PaymentReference)
	}

	err := p.sender.SendReceipt(job.Email, email.Receipt{
		PaymentReference:    job.PaymentReference,
		Plan:                job.Plan,
		Amount:              job.Amount,
		Currency:            job.Currency,
		SubscriptionExpires: job.SubscriptionExpires,
	})
	if err == nil {
		p.logger.Info("receipt sent",
			zap.Int64("user_id", job.UserID),
			zap.String("reference", job.PaymentReference))
		return nil
	}

	job.Attempts++
	if job.Attempts >= p.maxAttempts {
		p.logger.Error("receipt dropped",
			zap.String("reference", job.PaymentReference),
			zap.Int("attempts", job.Attempts),
			zap.Error(err))
		return fmt.Errorf("send receipt %s: %w", job.PaymentReference, err)
	}

	p.logger.Warn("receipt failed, requeueing",
		zap.String("reference", job.PaymentReference),
		zap.Int("attempts", job.Attempts),
		zap.Error(err))
	if qerr := p.queue.Push(ctx, job); qerr != nil {
		return fmt.Errorf("requeue receipt %s: %w", job.PaymentReference, qerr)
	}
	return nil
}
