package mailer_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-clean-starter/config"
	"github.com/oksasatya/go-clean-starter/pkg/mailer"
	mailtpl "github.com/oksasatya/go-clean-starter/pkg/mailer/templates"
)

var cfg = &config.Config{AppName: "Acme", CompanyName: "Acme Inc", LoginURL: "https://acme.test/login"}

type sent struct{ to, subject, text, html string }

type fakeSender struct {
	mu   sync.Mutex
	err  error
	sent []sent
}

func (f *fakeSender) Send(_ context.Context, to, subject, text, html string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sent{to, subject, text, html})
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func jobBody(t *testing.T, job mailer.EmailJob) []byte {
	t.Helper()
	b, err := json.Marshal(job)
	require.NoError(t, err)
	return b
}

func TestRender_Welcome(t *testing.T) {
	job := mailer.EmailJob{
		To:       "jane@example.com",
		Template: mailtpl.Welcome,
		Data:     mailtpl.NewWelcomeData(cfg, "Jane Doe", "jane@example.com"),
	}

	c, err := job.Render()

	require.NoError(t, err)
	assert.Equal(t, "Welcome to Acme, Jane Doe", c.Subject)
	assert.Contains(t, c.Text, "jane@example.com")
	assert.Contains(t, c.Text, "https://acme.test/login")
	assert.Contains(t, c.HTML, "<strong>jane@example.com</strong>")
}

func TestRender_ProfileUpdated(t *testing.T) {
	job := mailer.EmailJob{
		To:       "jane@example.com",
		Template: "PROFILE_UPDATED",
		Data: mailtpl.NewProfileUpdatedData(cfg, "Jane Doe", "jane@example.com",
			map[string]string{"firstName": "Janet", "avatar": ""}),
	}

	c, err := job.Render()

	require.NoError(t, err)
	assert.Equal(t, "Your profile was updated", c.Subject)
	assert.Contains(t, c.Text, "- First name: Janet")
	assert.Contains(t, c.Text, "- Avatar: (removed)")
	assert.Contains(t, c.HTML, "<strong>First name</strong>: Janet")
}

func TestRender_PlainAndInvalid(t *testing.T) {
	c, err := mailer.EmailJob{To: "a@b.co", Subject: "Hi", Text: "hello"}.Render()
	require.NoError(t, err)
	assert.Equal(t, "hello", c.Text)

	_, err = mailer.EmailJob{To: "a@b.co", Subject: "Hi"}.Render()
	assert.Error(t, err)
	_, err = mailer.EmailJob{Text: "hello"}.Render()
	assert.Error(t, err)
	_, err = mailer.EmailJob{To: "a@b.co", Template: "does_not_exist"}.Render()
	assert.Error(t, err)
}

func TestWorker_Handle(t *testing.T) {
	s := &fakeSender{}
	w := mailer.NewWorker(s, quietLogger())
	ctx := context.Background()

	assert.Equal(t, mailer.Reject, w.Handle(ctx, []byte("{not json")))
	assert.Equal(t, mailer.Reject, w.Handle(ctx, jobBody(t, mailer.EmailJob{To: "a@b.co", Template: "nope"})))
	assert.Equal(t, mailer.Ack, w.Handle(ctx, jobBody(t, mailer.EmailJob{
		To: "jane@example.com", Template: mailtpl.Welcome,
		Data: mailtpl.NewWelcomeData(cfg, "Jane", "jane@example.com"),
	})))
	require.Len(t, s.sent, 1)
	assert.Equal(t, "jane@example.com", s.sent[0].to)

	s.err = errors.New("mailgun down")
	assert.Equal(t, mailer.Requeue, w.Handle(ctx, jobBody(t, mailer.EmailJob{To: "a@b.co", Text: "x"})))
}

type ackRecord struct {
	acked    bool
	requeued bool
	nacked   bool
}

type fakeAcker struct {
	mu      sync.Mutex
	records map[uint64]*ackRecord
}

func (f *fakeAcker) rec(tag uint64) *ackRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.records[tag] == nil {
		f.records[tag] = &ackRecord{}
	}
	return f.records[tag]
}

func (f *fakeAcker) Ack(tag uint64, _ bool) error { f.rec(tag).acked = true; return nil }
func (f *fakeAcker) Nack(tag uint64, _ bool, requeue bool) error {
	r := f.rec(tag)
	r.nacked = true
	r.requeued = requeue
	return nil
}
func (f *fakeAcker) Reject(tag uint64, requeue bool) error { return f.Nack(tag, false, requeue) }

func TestWorker_Run(t *testing.T) {
	s := &fakeSender{err: errors.New("down")}
	w := mailer.NewWorker(s, quietLogger())
	acker := &fakeAcker{records: map[uint64]*ackRecord{}}
	body := jobBody(t, mailer.EmailJob{To: "a@b.co", Text: "x"})

	msgs := make(chan amqp.Delivery, 3)
	msgs <- amqp.Delivery{Acknowledger: acker, DeliveryTag: 1, Body: body}
	msgs <- amqp.Delivery{Acknowledger: acker, DeliveryTag: 2, Body: body, Redelivered: true}
	msgs <- amqp.Delivery{Acknowledger: acker, DeliveryTag: 3, Body: []byte("garbage")}
	close(msgs)

	w.Run(context.Background(), msgs)

	assert.True(t, acker.rec(1).requeued, "first failure is requeued")
	assert.True(t, acker.rec(2).nacked)
	assert.False(t, acker.rec(2).requeued, "redelivered failure is dropped")
	assert.True(t, acker.rec(3).nacked)
	assert.False(t, acker.rec(3).requeued)
}
