package templates

import (
	"time"

	"github.com/oksasatya/go-clean-starter/config"
)

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

func WithChanges(ch map[string]string) Option {
	return func(d *EmailData) { d.Changes = ch }
}

// NewBaseEmailData fills the common fields from config, then applies opts.
func NewBaseEmailData(cfg *config.Config, typ string, name, email, recipient string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: recipient,
		Type:           typ,

		CompanyName:    cfg.CompanyName,
		CompanyAddress: cfg.CompanyAddress,
		AppName:        cfg.AppName,

		LogoURL:        cfg.LogoURL,
		SupportURL:     cfg.SupportURL,
		PrivacyURL:     cfg.PrivacyURL,
		UnsubscribeURL: cfg.UnsubscribeURL,
		LoginURL:       cfg.LoginURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewWelcomeData(cfg *config.Config, name, email string, opts ...Option) map[string]any {
	d := NewBaseEmailData(cfg, Welcome, name, email, email, opts...)
	return ToMap(d)
}

func NewProfileUpdatedData(cfg *config.Config, name, email string, changes map[string]string, opts ...Option) map[string]any {
	opts = append([]Option{WithChanges(changes)}, opts...)
	d := NewBaseEmailData(cfg, ProfileUpdated, name, email, email, opts...)
	return ToMap(d)
}
