// Package events describes what happened on the device for anyone listening
// off-device, e.g. the contractor who is told that the worker arrived.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	ProfileCreated Type = "profile.created"
	JobAccepted    Type = "job.accepted"
	JobRejected    Type = "job.rejected"
	OfferExpired   Type = "offer.expired"
	JobPosted      Type = "job.posted"
	WorkerArrived  Type = "worker.arrived"
)

type Event struct {
	ID      string    `json:"id"`
	Type    Type      `json:"type"`
	Phone   string    `json:"phone"`
	JobID   int64     `json:"job_id,omitempty"`
	Message string    `json:"message,omitempty"`
	At      time.Time `json:"at"`
}

func New(typ Type, phone string, jobID int64) Event {
	return Event{ID: uuid.NewString(), Type: typ, Phone: phone, JobID: jobID, At: time.Now().UTC()}
}

// ArrivalMessage is the acknowledgement sent when a worker reaches the site.
func ArrivalMessage(workerName string) string {
	return fmt.Sprintf("सूचना: %s काम की लोकेशन पर पहुंच चुके हैं! ठेकेदार को मैसेज भेज दिया गया है।", workerName)
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// LogPublisher writes events to the log. It is the sink when no broker is set.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, e Event) error {
	p.logger.InfoContext(ctx, "event",
		slog.String("id", e.ID),
		slog.String("type", string(e.Type)),
		slog.String("phone", e.Phone),
		slog.Int64("job_id", e.JobID),
		slog.String("message", e.Message),
	)
	return nil
}
