// Package broadcast delivers one payload to every known user, at most once
// per recipient.
package broadcast

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/m3rciful/cinebot/core/logger"
	"github.com/m3rciful/cinebot/core/telegram/netutil"
	"github.com/m3rciful/cinebot/internal/domain"
)

// Recipients lists user ids to deliver to.
type Recipients interface {
	ListUserIDs(ctx context.Context) ([]int64, error)
}

// Sender is the part of the gateway a broadcast uses.
type Sender interface {
	Send(ctx context.Context, chatID int64, msg domain.Outgoing) (domain.MessageRef, error)
	Copy(ctx context.Context, chatID int64, from domain.MessageRef) (domain.MessageRef, error)
}

// Payload is either a composed message or a message copied verbatim.
type Payload struct {
	Message  domain.Outgoing
	CopyFrom *domain.MessageRef
}

// Forward builds a payload copying ref.
func Forward(ref domain.MessageRef) Payload {
	return Payload{CopyFrom: &ref}
}

// Empty reports whether there is nothing to send.
func (p Payload) Empty() bool {
	return p.CopyFrom == nil && p.Message.Text == "" && p.Message.Media == nil
}

// Result summarizes a run. Success + Errors == Total.
type Result struct {
	RunID    string
	Total    int
	Success  int
	Errors   int
	Duration time.Duration
}

// Options tune pacing. Telegram allows about 30 messages per second per bot.
type Options struct {
	Concurrency int
	PerSecond   float64
	Burst       int
}

func (o *Options) normalize() {
	if o.Concurrency <= 0 {
		o.Concurrency = 8
	}
	if o.PerSecond <= 0 {
		o.PerSecond = 25
	}
	if o.Burst <= 0 {
		o.Burst = 1
	}
}

type Service struct {
	users  Recipients
	sender Sender
	opts   Options
}

func NewService(users Recipients, sender Sender, opts Options) *Service {
	opts.normalize()
	return &Service{users: users, sender: sender, opts: opts}
}

// Run sends p to every user. Delivery failures are counted, not returned;
// only a failure to list recipients is an error.
func (s *Service) Run(ctx context.Context, p Payload) (Result, error) {
	res := Result{RunID: uuid.NewString()}
	if p.Empty() {
		return res, domain.Validation("broadcast.run", "nothing to send")
	}
	ctx = logger.WithRunID(ctx, res.RunID)
	start := time.Now()

	ids, err := s.users.ListUserIDs(ctx)
	if err != nil {
		return res, domain.Storage("broadcast.recipients", err)
	}
	res.Total = len(ids)
	logger.Info(ctx, "service.broadcast", "broadcast.start",
		slog.Int("total", res.Total),
		slog.Bool("copy", p.CopyFrom != nil),
	)

	var ok, failed atomic.Int64
	limiter := rate.NewLimiter(rate.Limit(s.opts.PerSecond), s.opts.Burst)
	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)
	for _, id := range ids {
		if ctx.Err() != nil {
			failed.Add(1)
			continue
		}
		g.Go(func() error {
			if err := limiter.Wait(ctx); err != nil {
				failed.Add(1)
				return nil
			}
			if err := s.deliver(ctx, id, p); err != nil {
				failed.Add(1)
				logger.Debug(ctx, "service.broadcast", "broadcast.recipient",
					slog.String("status", "fail"),
					slog.Int64("recipient_id", id),
					slog.String("error_kind", netutil.Classify(err)),
					slog.String("err", netutil.RedactErr(err)),
				)
				return nil
			}
			ok.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	res.Success = int(ok.Load())
	res.Errors = int(failed.Load())
	res.Duration = time.Since(start)

	status := "ok"
	if errors.Is(ctx.Err(), context.Canceled) {
		status = "cancelled"
	}
	logger.Info(ctx, "service.broadcast", "broadcast.done",
		slog.String("status", status),
		slog.Int("total", res.Total),
		slog.Int("success", res.Success),
		slog.Int("errors", res.Errors),
		slog.Duration("duration", logger.RoundMS(res.Duration)),
	)
	return res, nil
}

func (s *Service) deliver(ctx context.Context, chatID int64, p Payload) error {
	if p.CopyFrom != nil {
		_, err := s.sender.Copy(ctx, chatID, *p.CopyFrom)
		return err
	}
	_, err := s.sender.Send(ctx, chatID, p.Message)
	return err
}
