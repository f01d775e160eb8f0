package application

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-clean-starter/internal/domain/errs"
	repo "github.com/oksasatya/go-clean-starter/internal/domain/repository"
)

const defaultSideEffectTimeout = 10 * time.Second

func validateID(field, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errs.Validation(field, field+" is required")
	}
	return id, nil
}

// normalizeSort applies defaults and rejects unknown sort keys or orders.
func normalizeSort(sortBy, order string, allowed map[string]bool) (string, string, error) {
	sortBy = strings.TrimSpace(sortBy)
	if sortBy == "" {
		sortBy = "createdAt"
	}
	if !allowed[sortBy] {
		return "", "", errs.Validation("sortBy", "unsupported sort field "+sortBy)
	}
	order = strings.ToLower(strings.TrimSpace(order))
	if order == "" {
		order = repo.SortDesc
	}
	if order != repo.SortAsc && order != repo.SortDesc {
		return "", "", errs.Validation("sortOrder", "sortOrder must be asc or desc")
	}
	return sortBy, order, nil
}

func loggerOrStd(l *logrus.Logger) *logrus.Logger {
	if l != nil {
		return l
	}
	return logrus.StandardLogger()
}

// sideEffects runs fire-and-forget work detached from the request context.
// Failures are only logged.
type sideEffects struct {
	wg      sync.WaitGroup
	timeout time.Duration
}

func (b *sideEffects) run(ctx context.Context, log *logrus.Entry, name string, fn func(context.Context) error) {
	timeout := b.timeout
	if timeout <= 0 {
		timeout = defaultSideEffectTimeout
	}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		c, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		if err := fn(c); err != nil {
			log.WithError(err).Warn(name + " failed")
		}
	}()
}

// wait blocks until every side effect started so far has finished.
func (b *sideEffects) wait() { b.wg.Wait() }
