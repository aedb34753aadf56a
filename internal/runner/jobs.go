package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/repfinder/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/repfinder/pkg/resilience"
)

const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Job is a discovery request read from the jobs topic.
type Job struct {
	ID         string `json:"id"`
	CorpusPath string `json:"corpus_path"`
	Support    string `json:"support"`
	Output     string `json:"output,omitempty"`
}

// RunCompleted is published to the results topic once a job finishes,
// successfully or not.
type RunCompleted struct {
	RunID      string  `json:"run_id"`
	JobID      string  `json:"job_id"`
	Status     string  `json:"status"`
	Patterns   int     `json:"patterns"`
	Rounds     int     `json:"rounds"`
	Threshold  float64 `json:"threshold"`
	DurationMs int64   `json:"duration_ms"`
	Cached     bool    `json:"cached"`
	Output     string  `json:"output,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// Publisher sends an event to the results topic.
type Publisher interface {
	Publish(ctx context.Context, event kafka.Event) error
}

// HandleJob returns a Kafka MessageHandler that runs each job and publishes
// its outcome. Undecodable messages are logged and skipped. A job that
// fails is reported as a failed event rather than redelivered, since
// re-running it would fail the same way. Only a publish that still fails
// after retries is returned as an error.
func HandleJob(r *Runner, pub Publisher, retry resilience.RetryConfig) kafka.MessageHandler {
	logger := slog.Default().With("component", "job-handler")
	return func(ctx context.Context, key []byte, value []byte) error {
		job, err := kafka.DecodeJSON[Job](value)
		if err != nil {
			logger.Error("failed to decode job",
				"error", err,
				"key", string(key),
			)
			return nil
		}
		if job.CorpusPath == "" {
			logger.Error("job has no corpus path", "job_id", job.ID)
			return nil
		}
		if job.Support == "" {
			job.Support = "2"
		}

		if m := r.deps.Metrics; m != nil {
			m.JobsInFlight.Inc()
			defer m.JobsInFlight.Dec()
		}

		logger.Info("processing job",
			"job_id", job.ID,
			"corpus", job.CorpusPath,
			"support", job.Support,
		)
		start := time.Now()
		summary, runErr := r.Run(ctx, Request{
			InputPath:  job.CorpusPath,
			Support:    job.Support,
			OutputPath: job.Output,
		})

		event := completedEvent(job, summary, runErr, time.Since(start))
		if runErr != nil {
			logger.Error("job failed", "job_id", job.ID, "error", runErr)
		} else {
			logger.Info("job completed",
				"job_id", job.ID,
				"run_id", event.RunID,
				"patterns", event.Patterns,
				"duration_ms", event.DurationMs,
			)
		}

		err = resilience.Retry(ctx, "publish run result", retry, func() error {
			err := pub.Publish(ctx, kafka.Event{Key: job.ID, Value: event})
			if err != nil && ctx.Err() != nil {
				return resilience.Permanent(err)
			}
			return err
		})
		if err != nil {
			return fmt.Errorf("publishing result of job %s: %w", job.ID, err)
		}
		return nil
	}
}

func completedEvent(job Job, summary *Summary, err error, elapsed time.Duration) RunCompleted {
	event := RunCompleted{
		JobID:      job.ID,
		Status:     StatusCompleted,
		DurationMs: elapsed.Milliseconds(),
	}
	if err != nil {
		event.Status = StatusFailed
		event.Error = err.Error()
		return event
	}
	event.RunID = summary.RunID
	event.Patterns = summary.Patterns
	event.Rounds = summary.Rounds
	event.Threshold = summary.Threshold
	event.Cached = summary.Cached
	event.Output = summary.OutputPath
	return event
}
