package mailer

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Outcome tells the consumer what to do with a delivery.
type Outcome int

const (
	Ack Outcome = iota
	Reject
	Requeue
)

// Worker turns queued EmailJobs into sent mail.
type Worker struct {
	Sender      Sender
	Logger      *logrus.Logger
	SendTimeout time.Duration
}

func NewWorker(sender Sender, logger *logrus.Logger) *Worker {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Worker{Sender: sender, Logger: logger, SendTimeout: 15 * time.Second}
}

// Handle processes one message body. Malformed or unrenderable jobs are
// rejected, send failures are requeued.
func (w *Worker) Handle(ctx context.Context, body []byte) Outcome {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		w.Logger.WithError(err).Warn("bad email message")
		return Reject
	}
	log := w.Logger.WithFields(logrus.Fields{"to": job.To, "template": job.Template})

	content, err := job.Render()
	if err != nil {
		log.WithError(err).Warn("render email failed")
		return Reject
	}

	c, cancel := context.WithTimeout(ctx, w.SendTimeout)
	defer cancel()
	if err := w.Sender.Send(c, job.To, content.Subject, content.Text, content.HTML); err != nil {
		log.WithError(err).Warn("send email failed")
		return Requeue
	}
	log.Info("email sent")
	return Ack
}

// Run consumes deliveries until ctx is done or the channel closes. A message
// is requeued at most once; a second send failure drops it.
func (w *Worker) Run(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			switch w.Handle(ctx, msg.Body) {
			case Ack:
				_ = msg.Ack(false)
			case Requeue:
				_ = msg.Nack(false, !msg.Redelivered)
			default:
				_ = msg.Nack(false, false)
			}
		}
	}
}
