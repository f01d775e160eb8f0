package mailqueue_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-clean-starter/config"
	"github.com/oksasatya/go-clean-starter/internal/domain/entity"
	"github.com/oksasatya/go-clean-starter/internal/infrastructure/mailqueue"
	"github.com/oksasatya/go-clean-starter/pkg/mailer"
	mailtpl "github.com/oksasatya/go-clean-starter/pkg/mailer/templates"
)

type capture struct {
	jobs []mailer.EmailJob
	err  error
}

func (c *capture) PublishJSON(_ context.Context, body any) error {
	if c.err != nil {
		return c.err
	}
	c.jobs = append(c.jobs, body.(mailer.EmailJob))
	return nil
}

func TestEmailService_PublishesRenderableJobs(t *testing.T) {
	pub := &capture{}
	svc := mailqueue.NewEmailService(pub, &config.Config{AppName: "Acme"})
	u, err := entity.CreateUser("jane@example.com", "Jane", "Doe")
	require.NoError(t, err)

	require.NoError(t, svc.SendWelcome(context.Background(), u))
	require.NoError(t, svc.SendProfileUpdated(context.Background(), u, map[string]string{"lastName": "Smith"}))

	require.Len(t, pub.jobs, 2)
	assert.Equal(t, mailtpl.Welcome, pub.jobs[0].Template)
	assert.Equal(t, "jane@example.com", pub.jobs[0].To)
	assert.Equal(t, "Jane Doe", pub.jobs[0].Data["Name"])
	assert.Equal(t, mailtpl.ProfileUpdated, pub.jobs[1].Template)

	for _, j := range pub.jobs {
		_, err := j.Render()
		assert.NoError(t, err, j.Template)
	}
}

func TestEmailService_PublishError(t *testing.T) {
	pub := &capture{err: errors.New("channel closed")}
	svc := mailqueue.NewEmailService(pub, &config.Config{})
	u, err := entity.CreateUser("jane@example.com", "Jane", "Doe")
	require.NoError(t, err)

	assert.Error(t, svc.SendWelcome(context.Background(), u))
}
