// Package rating maintains the derived averageRating and totalReviews fields of a book.
package rating

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "bookreview/rating"

// ErrRecomputeFailed is returned when the aggregate could not be refreshed after retries.
// The stored aggregate may be stale until the next successful recompute of the book.
var ErrRecomputeFailed = errors.New("rating aggregate recompute failed")

// Summary is the derived rating state stored on a book.
type Summary struct {
	AverageRating float64 `json:"averageRating"`
	TotalReviews  int     `json:"totalReviews"`
}

// Summarize returns the mean rounded half away from zero to one decimal, and the count.
// No ratings yields the zero Summary.
func Summarize(ratings []int) Summary {
	if len(ratings) == 0 {
		return Summary{}
	}
	sum := decimal.Zero
	for _, r := range ratings {
		sum = sum.Add(decimal.NewFromInt(int64(r)))
	}
	avg := sum.DivRound(decimal.NewFromInt(int64(len(ratings))), 1)
	return Summary{AverageRating: avg.InexactFloat64(), TotalReviews: len(ratings)}
}

// Store reads the ratings of a book and writes its aggregate.
type Store interface {
	BookRatings(ctx context.Context, bookID string) ([]int, error)
	SetBookRating(ctx context.Context, bookID string, s Summary) error
}

// Aggregator recomputes a book's aggregate from all of its reviews.
type Aggregator struct {
	store    Store
	logger   *slog.Logger
	tracer   trace.Tracer
	failures metric.Int64Counter
	maxTries uint
	backOff  func() backoff.BackOff
}

type Option func(*Aggregator)

func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(a *Aggregator) { a.tracer = tp.Tracer(instrumentationName) }
}

func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(a *Aggregator) { a.failures = newFailureCounter(mp.Meter(instrumentationName)) }
}

// WithRetry sets the attempt budget and the backoff policy factory.
func WithRetry(maxTries uint, policy func() backoff.BackOff) Option {
	return func(a *Aggregator) {
		a.maxTries = maxTries
		a.backOff = policy
	}
}

func NewAggregator(store Store, opts ...Option) *Aggregator {
	a := &Aggregator{
		store:    store,
		logger:   slog.Default(),
		tracer:   otel.Tracer(instrumentationName),
		failures: newFailureCounter(otel.Meter(instrumentationName)),
		maxTries: 3,
		backOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func newFailureCounter(m metric.Meter) metric.Int64Counter {
	c, err := m.Int64Counter("rating.recompute.failures",
		metric.WithDescription("Rating aggregate recomputes that failed after retries"))
	if err != nil {
		return noop.Int64Counter{}
	}
	return c
}

// Recompute reads every rating of bookID and overwrites the book's aggregate.
// It is idempotent and touches no other book field.
func (a *Aggregator) Recompute(ctx context.Context, bookID string) error {
	ctx, span := a.tracer.Start(ctx, "rating.recompute",
		trace.WithAttributes(attribute.String("book.id", bookID)))
	defer span.End()

	summary, err := backoff.Retry(ctx, func() (Summary, error) {
		ratings, err := a.store.BookRatings(ctx, bookID)
		if err != nil {
			return Summary{}, err
		}
		s := Summarize(ratings)
		if err := a.store.SetBookRating(ctx, bookID, s); err != nil {
			return Summary{}, err
		}
		return s, nil
	},
		backoff.WithBackOff(a.backOff()),
		backoff.WithMaxTries(a.maxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			a.logger.WarnContext(ctx, "rating recompute retry", "book_id", bookID, "error", err, "next_in", next)
		}),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "recompute failed")
		a.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("book.id", bookID)))
		a.logger.ErrorContext(ctx, "rating recompute failed", "book_id", bookID, "error", err)
		return fmt.Errorf("%w: book %s: %w", ErrRecomputeFailed, bookID, err)
	}

	span.SetAttributes(
		attribute.Int("reviews.total", summary.TotalReviews),
		attribute.Float64("rating.average", summary.AverageRating),
	)
	return nil
}
