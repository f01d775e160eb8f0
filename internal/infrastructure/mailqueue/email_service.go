// Package mailqueue implements service.EmailService by publishing
// mailer.EmailJob messages for the email worker.
package mailqueue

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-clean-starter/config"
	"github.com/oksasatya/go-clean-starter/internal/domain/entity"
	"github.com/oksasatya/go-clean-starter/internal/domain/service"
	"github.com/oksasatya/go-clean-starter/pkg/mailer"
	mailtpl "github.com/oksasatya/go-clean-starter/pkg/mailer/templates"
)

// Publisher is satisfied by helpers.RabbitPublisher.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

type EmailService struct {
	pub Publisher
	cfg *config.Config
}

func NewEmailService(pub Publisher, cfg *config.Config) *EmailService {
	return &EmailService{pub: pub, cfg: cfg}
}

func (s *EmailService) SendWelcome(ctx context.Context, u *entity.User) error {
	return s.pub.PublishJSON(ctx, mailer.EmailJob{
		To:       u.Email(),
		Template: mailtpl.Welcome,
		Data:     mailtpl.NewWelcomeData(s.cfg, u.FullName(), u.Email(), mailtpl.WithTime(time.Now())),
	})
}

func (s *EmailService) SendProfileUpdated(ctx context.Context, u *entity.User, changes map[string]string) error {
	return s.pub.PublishJSON(ctx, mailer.EmailJob{
		To:       u.Email(),
		Template: mailtpl.ProfileUpdated,
		Data:     mailtpl.NewProfileUpdatedData(s.cfg, u.FullName(), u.Email(), changes, mailtpl.WithTime(time.Now())),
	})
}

// LogOnly stands in when MAIL_SEND_ENABLED is false: jobs are logged, not sent.
type LogOnly struct {
	Logger *logrus.Logger
}

func (l LogOnly) SendWelcome(_ context.Context, u *entity.User) error {
	l.Logger.WithField("to", u.Email()).Info("welcome email skipped (mail disabled)")
	return nil
}

func (l LogOnly) SendProfileUpdated(_ context.Context, u *entity.User, changes map[string]string) error {
	l.Logger.WithFields(logrus.Fields{"to": u.Email(), "changes": len(changes)}).Info("profile email skipped (mail disabled)")
	return nil
}

var (
	_ service.EmailService = (*EmailService)(nil)
	_ service.EmailService = LogOnly{}
)
