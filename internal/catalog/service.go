// Package catalog manages code-addressed items and their view ranking.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/m3rciful/cinebot/core/logger"
	"github.com/m3rciful/cinebot/core/telegram/netutil"
	"github.com/m3rciful/cinebot/core/telegram/sender"
	"github.com/m3rciful/cinebot/internal/domain"
)

// Store is the item storage used by the service.
type Store interface {
	InsertItemIfCodeFree(ctx context.Context, it domain.Item) (bool, error)
	ItemByCode(ctx context.Context, code string) (domain.Item, error)
	ItemsByRecency(ctx context.Context, limit, offset int) ([]domain.Item, error)
	ItemsByViews(ctx context.Context, limit, offset int) ([]domain.Item, error)
	CountItems(ctx context.Context) (int, error)
	IncrementItemViews(ctx context.Context, code string) error
	DeleteItemByCode(ctx context.Context, code string) (domain.Item, error)
	SetItemDistribution(ctx context.Context, code string, ref domain.MessageRef) error
	TotalViews(ctx context.Context) (int64, error)
}

// Retractor deletes a distributed copy.
type Retractor interface {
	Delete(ctx context.Context, ref domain.MessageRef) error
}

// Enqueuer runs a job in the background.
type Enqueuer interface {
	Enqueue(ctx context.Context, job sender.Job) error
}

// Service is the catalog.
type Service struct {
	store   Store
	retract Retractor
	async   Enqueuer
}

func NewService(store Store, retract Retractor) *Service {
	return &Service{store: store, retract: retract}
}

// UseDispatcher moves retractions to the background queue.
func (s *Service) UseDispatcher(q Enqueuer) { s.async = q }

// AddItem stores it under its canonical code. It returns false when the
// code is taken.
func (s *Service) AddItem(ctx context.Context, it domain.Item) (bool, error) {
	code, err := ValidateCode(it.Code)
	if err != nil {
		return false, err
	}
	if !it.Payload.Valid() {
		return false, domain.Validation("catalog.add", "item has no media")
	}
	it.Code = code
	if strings.TrimSpace(it.Title) == "" {
		it.Title = TitleOf(it.Description)
	}
	ok, err := s.store.InsertItemIfCodeFree(ctx, it)
	if err != nil {
		return false, domain.Storage("catalog.add", err)
	}
	status := "ok"
	if !ok {
		status = "skip"
	}
	logger.Info(ctx, "service.catalog", "item.added",
		slog.String("status", status),
		slog.String("code", code),
		slog.String("media_kind", string(it.Payload.Kind)),
	)
	return ok, nil
}

// FindByCode returns false for an unknown code.
func (s *Service) FindByCode(ctx context.Context, code string) (domain.Item, bool, error) {
	c := Canonical(code)
	if c == "" {
		return domain.Item{}, false, nil
	}
	it, err := s.store.ItemByCode(ctx, c)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Item{}, false, nil
	}
	if err != nil {
		return domain.Item{}, false, domain.Storage("catalog.find", err)
	}
	return it, true, nil
}

// Exists reports whether code is taken.
func (s *Service) Exists(ctx context.Context, code string) (bool, error) {
	_, ok, err := s.FindByCode(ctx, code)
	return ok, err
}

func (s *Service) IncrementViews(ctx context.Context, code string) error {
	err := s.store.IncrementItemViews(ctx, Canonical(code))
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFound("catalog.views", "item")
	}
	if err != nil {
		return domain.Storage("catalog.views", err)
	}
	return nil
}

func (s *Service) TopByViews(ctx context.Context, limit, offset int) ([]domain.Item, error) {
	items, err := s.store.ItemsByViews(ctx, limit, offset)
	if err != nil {
		return nil, domain.Storage("catalog.top", err)
	}
	return items, nil
}

func (s *Service) Recent(ctx context.Context, limit, offset int) ([]domain.Item, error) {
	items, err := s.store.ItemsByRecency(ctx, limit, offset)
	if err != nil {
		return nil, domain.Storage("catalog.recent", err)
	}
	return items, nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.store.CountItems(ctx)
	if err != nil {
		return 0, domain.Storage("catalog.count", err)
	}
	return n, nil
}

func (s *Service) TotalViews(ctx context.Context) (int64, error) {
	n, err := s.store.TotalViews(ctx)
	if err != nil {
		return 0, domain.Storage("catalog.views_total", err)
	}
	return n, nil
}

// AttachDistribution records the channel post of an item.
func (s *Service) AttachDistribution(ctx context.Context, code string, ref domain.MessageRef) error {
	err := s.store.SetItemDistribution(ctx, Canonical(code), ref)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFound("catalog.distribution", "item")
	}
	if err != nil {
		return domain.Storage("catalog.distribution", err)
	}
	return nil
}

// DeleteByCode removes the item and then retracts its channel post. A
// failed retraction is only logged.
func (s *Service) DeleteByCode(ctx context.Context, code string) (domain.Item, error) {
	c := Canonical(code)
	it, err := s.store.DeleteItemByCode(ctx, c)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Item{}, domain.NotFound("catalog.delete", "item")
	}
	if err != nil {
		return domain.Item{}, domain.Storage("catalog.delete", err)
	}
	logger.Info(ctx, "service.catalog", "item.deleted",
		slog.String("status", "ok"),
		slog.String("code", c),
	)
	if !it.Distribution.IsZero() && s.retract != nil {
		s.retractPost(ctx, c, it.Distribution)
	}
	return it, nil
}

func (s *Service) retractPost(ctx context.Context, code string, ref domain.MessageRef) {
	run := func(ctx context.Context) error {
		err := s.retract.Delete(ctx, ref)
		if err != nil {
			logger.Warn(ctx, "service.catalog", "item.retract",
				slog.String("status", "fail"),
				slog.String("code", code),
				slog.String("error_kind", netutil.Classify(err)),
				slog.String("err", netutil.RedactErr(err)),
			)
		}
		return err
	}
	if s.async != nil {
		err := s.async.Enqueue(ctx, sender.Job{Action: "retract", Endpoint: "deleteMessage", Run: run})
		if err == nil {
			return
		}
		logger.Debug(ctx, "service.catalog", "item.retract.inline",
			slog.String("reason", err.Error()),
		)
	}
	_ = run(ctx)
}
