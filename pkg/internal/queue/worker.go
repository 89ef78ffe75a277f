package queue

import (
	"context"
	"time"

	"github.com/desmin2102/HostelApp/pkg/internal/services/mailer"
	"github.com/rs/zerolog/log"
)

type Worker struct {
	Queue       *Queue
	Sender      mailer.Sender
	PollTimeout time.Duration
}

func NewWorker(queue *Queue, sender mailer.Sender) *Worker {
	return &Worker{Queue: queue, Sender: sender, PollTimeout: 5 * time.Second}
}

// Run delivers jobs until ctx is cancelled. A failed delivery is logged and dropped.
func (v *Worker) Run(ctx context.Context) {
	log.Info().Msg("Notification worker started...")
	for {
		if ctx.Err() != nil {
			log.Info().Msg("Notification worker stopped...")
			return
		}
		if _, err := v.ProcessOne(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("An error occurred when popping notification job...")
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}
}

// ProcessOne handles at most one job and reports whether one was found.
func (v *Worker) ProcessOne(ctx context.Context) (bool, error) {
	job, err := v.Queue.Pop(ctx, v.PollTimeout)
	if err != nil {
		return false, err
	} else if job == nil {
		return false, nil
	}

	if err := v.Sender.Send(ctx, job.Mail); err != nil {
		log.Warn().Err(err).Str("job", job.ID).Msg("Unable to deliver notification, dropping it...")
	} else {
		log.Debug().Str("job", job.ID).Int("recipients", len(job.Mail.To)).Msg("Notification delivered...")
	}
	return true, nil
}
