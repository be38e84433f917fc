package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"unsplashfetch/pkg/attribution"
	"unsplashfetch/pkg/config"
	errs "unsplashfetch/pkg/errors"
	"unsplashfetch/pkg/logger"
	"unsplashfetch/pkg/ratelimit"
	"unsplashfetch/pkg/storage"
	"unsplashfetch/pkg/unsplash"
)

// Fetcher downloads random photos into sequentially numbered files
type Fetcher struct {
	source   PhotoSource
	store    ImageStore
	limiter  ratelimit.Limiter
	embedder attribution.Embedder
	reporter Reporter
	logger   logger.Logger
}

// Option customizes a Fetcher
type Option func(*Fetcher)

// WithLimiter paces API calls
func WithLimiter(l ratelimit.Limiter) Option {
	return func(f *Fetcher) { f.limiter = l }
}

// WithEmbedder adds attribution to each saved file
func WithEmbedder(e attribution.Embedder) Option {
	return func(f *Fetcher) { f.embedder = e }
}

// WithReporter receives per-index results
func WithReporter(r Reporter) Option {
	return func(f *Fetcher) { f.reporter = r }
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// New creates a Fetcher over the given source and store
func New(source PhotoSource, store ImageStore, opts ...Option) *Fetcher {
	f := &Fetcher{
		source:   source,
		store:    store,
		limiter:  ratelimit.Unlimited{},
		embedder: attribution.Nop{},
		reporter: nopReporter{},
		logger:   logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewFromConfig wires a Fetcher from configuration
func NewFromConfig(cfg *config.Config, reporter Reporter, log logger.Logger) *Fetcher {
	client := unsplash.NewClient(unsplash.Options{
		BaseURL:    cfg.Unsplash.BaseURL,
		AccessKey:  cfg.Unsplash.AccessKey,
		APIVersion: cfg.Unsplash.APIVersion,
		UserAgent:  cfg.Unsplash.UserAgent,
		Timeout:    cfg.Unsplash.Timeout,
	}, log)

	opts := []Option{
		WithLogger(log),
		WithLimiter(ratelimit.New(cfg.RateLimit.RequestsPerHour)),
	}
	if reporter != nil {
		opts = append(opts, WithReporter(reporter))
	}
	if cfg.Attribution.EmbedEXIF {
		opts = append(opts, WithEmbedder(attribution.NewExifEmbedder()))
	}

	return New(client, storage.NewManager(cfg.Output.Directory), opts...)
}

// Run resets the output directory and attempts count fetches.
//
// Indices whose metadata or image request returns a non-200 status are
// reported and skipped. A transport or storage failure stops the run; the
// returned report then holds the outcomes up to and including that index.
func (f *Fetcher) Run(ctx context.Context, count int) (*Report, error) {
	if count < 0 {
		f.logger.WarnWithFields("negative count, nothing to fetch", map[string]interface{}{
			"count": count,
		})
		count = 0
	}

	report := &Report{Requested: count, Outcomes: make([]Outcome, 0, count)}

	if err := f.store.Reset(); err != nil {
		return report, errs.Wrap(errs.ErrorTypeStorage, err, "failed to reset output directory")
	}

	f.logger.InfoWithFields("starting fetch", map[string]interface{}{
		"count": count,
	})

	for i := 1; i <= count; i++ {
		outcome := f.fetchOne(ctx, i)
		report.Outcomes = append(report.Outcomes, outcome)

		if outcome.Status == StatusSaved {
			f.reporter.Saved(i, outcome.Path, outcome.Bytes)
			continue
		}

		f.reporter.Failed(i, outcome.Err)
		if outcome.Fatal() {
			return report, fmt.Errorf("image %d: %w", i, outcome.Err)
		}
	}

	f.logger.InfoWithFields("fetch finished", map[string]interface{}{
		"requested": report.Requested,
		"saved":     report.Saved(),
		"failed":    report.Failed(),
	})

	return report, nil
}

// fetchOne performs the metadata lookup, download and write for one index
func (f *Fetcher) fetchOne(ctx context.Context, index int) Outcome {
	log := f.logger.WithField("index", index)
	outcome := Outcome{Index: index}

	if err := f.limiter.Wait(ctx); err != nil {
		outcome.Status = StatusTransportFailure
		outcome.Err = errs.Wrap(errs.ErrorTypeNetwork, err, "rate limiter wait aborted")
		return outcome
	}

	photo, err := f.source.RandomPhoto(ctx)
	if err != nil {
		outcome.Status = classify(err)
		outcome.Err = err
		log.WithError(err).Warn("metadata fetch failed")
		return outcome
	}
	outcome.PhotoID = photo.ID

	// Image CDN downloads do not count against the API quota
	data, err := f.source.Download(ctx, photo.URLs.Regular)
	if err != nil {
		outcome.Status = classify(err)
		outcome.Err = err
		log.WithError(err).WithField("photo_id", photo.ID).Warn("image download failed")
		return outcome
	}

	path, n, err := f.store.SaveImage(index, bytes.NewReader(data))
	logger.LogSave(log, index, path, n, err)
	if err != nil {
		outcome.Status = StatusStorageFailure
		outcome.Err = errs.Wrap(errs.ErrorTypeStorage, err, "failed to write image")
		return outcome
	}

	if err := f.embedder.Embed(path, photo); err != nil {
		log.WithError(err).WithField("path", path).Warn("could not embed attribution")
	} else if info, err := os.Stat(path); err == nil {
		n = info.Size()
	}

	outcome.Status = StatusSaved
	outcome.Path = path
	outcome.Bytes = n
	return outcome
}

// classify maps a client error onto an outcome status
func classify(err error) Status {
	if errs.IsAPIError(err) {
		return StatusAPIFailure
	}
	return StatusTransportFailure
}

type nopReporter struct{}

func (nopReporter) Saved(int, string, int64) {}
func (nopReporter) Failed(int, error)        {}
