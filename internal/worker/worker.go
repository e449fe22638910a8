// Package worker consumes background jobs from the Redis queue.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campus-hub/backend/internal/models"
	"github.com/campus-hub/backend/internal/notifications"
	"github.com/campus-hub/backend/pkg/queue"
)

const dequeueWait = 5 * time.Second

// EmailProcessor sends registration-confirmation emails and records every
// attempt in the email audit log.
type EmailProcessor struct {
	jobs   *queue.Queue
	repo   *notifications.Repository
	mailer *notifications.Mailer
	logger *zap.Logger
}

// NewEmailProcessor creates the processor.
func NewEmailProcessor(jobs *queue.Queue, repo *notifications.Repository, mailer *notifications.Mailer, logger *zap.Logger) *EmailProcessor {
	return &EmailProcessor{jobs: jobs, repo: repo, mailer: mailer, logger: logger}
}

// Run consumes the email queue until ctx is done.
func (p *EmailProcessor) Run(ctx context.Context) {
	p.logger.Info("email worker started")
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopped")
			return
		default:
		}

		job, err := p.jobs.Dequeue(ctx, queue.QueueEmails, dequeueWait)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Error("dequeue failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if job == nil {
			continue
		}

		if err := p.handle(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
			if rerr := p.jobs.Retry(ctx, queue.QueueEmails, job); rerr != nil {
				p.logger.Error("retry failed", zap.String("job_id", job.ID), zap.Error(rerr))
			}
		}
	}
}

func (p *EmailProcessor) handle(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeRegistrationEmail {
		p.logger.Warn("unknown job type", zap.String("type", string(job.Type)))
		return nil
	}
	var payload queue.RegistrationEmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	subject := fmt.Sprintf("You're registered for %s", payload.EventName)
	status := "skipped"
	if p.mailer.Enabled() {
		body := fmt.Sprintf("Hi %s,\n\nYour registration for %s is confirmed. See you there!\n",
			payload.RecipientName, payload.EventName)
		if err := p.mailer.Send(payload.RecipientEmail, subject, body); err != nil {
			status = "failed"
			if lerr := p.logAttempt(ctx, payload, subject, status); lerr != nil {
				p.logger.Warn("email log write failed", zap.Error(lerr))
			}
			return err
		}
		status = "sent"
	}

	if err := p.logAttempt(ctx, payload, subject, status); err != nil {
		return fmt.Errorf("email log write: %w", err)
	}
	p.logger.Info("confirmation email processed",
		zap.String("recipient", payload.RecipientEmail),
		zap.String("status", status))
	return nil
}

func (p *EmailProcessor) logAttempt(ctx context.Context, payload queue.RegistrationEmailPayload, subject, status string) error {
	return p.repo.Log(ctx, &models.EmailLog{
		RegistrationID: payload.RegistrationID,
		Recipient:      payload.RecipientEmail,
		Subject:        subject,
		Status:         status,
	})
}
