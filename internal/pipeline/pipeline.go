package pipeline

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"tunepull/internal/library"
	"tunepull/internal/logging"
	"tunepull/internal/services"
	"tunepull/internal/textutil"
	"tunepull/internal/track"
)

// Locator finds a source video for a record.
type Locator interface {
	Locate(ctx context.Context, rec track.Record) (track.Candidate, error)
}

// Fetcher downloads the audio for a candidate.
type Fetcher interface {
	Fetch(ctx context.Context, candidate track.Candidate) (*track.AudioBuffer, error)
}

// Tagger writes a tagged output file and returns its path. Overwrite reports
// whether existing outputs are replaced; the pipeline skips records whose
// output exists when it is false.
type Tagger interface {
	Tag(ctx context.Context, buf *track.AudioBuffer, rec track.Record, dest string) (string, error)
	Overwrite() bool
}

// ProgressFunc is called once per record after it reaches a terminal state.
type ProgressFunc func(completed, total int)

// ResultFunc observes each record's result as it is produced.
type ResultFunc func(index int, result track.FetchResult)

// lowMatchCoverage is the share of query tokens a hit's title must contain
// before a mismatch warning is logged.
const lowMatchCoverage = 0.5

// Pipeline runs locate, fetch, and tag for each record of a batch.
type Pipeline struct {
	locator  Locator
	fetcher  Fetcher
	tagger   Tagger
	layout   library.Layout
	onResult ResultFunc
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithResultHook registers an observer for per-record results.
func WithResultHook(fn ResultFunc) Option {
	return func(p *Pipeline) {
		p.onResult = fn
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logging.NewComponentLogger(logger, "pipeline")
	}
}

// New assembles a pipeline.
func New(locator Locator, fetcher Fetcher, tagger Tagger, layout library.Layout, opts ...Option) *Pipeline {
	p := &Pipeline{
		locator: locator,
		fetcher: fetcher,
		tagger:  tagger,
		layout:  layout,
		logger:  logging.NewComponentLogger(nil, "pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes the selected records of cat in order and returns one result
// per record, in selection order. A nil selection means every record.
//
// Records are processed one at a time. Cancellation is observed between
// records only: the record in flight runs to completion, then Run returns the
// results gathered so far together with ctx.Err().
func (p *Pipeline) Run(ctx context.Context, cat track.Catalog, selection []int, onProgress ProgressFunc) ([]track.FetchResult, error) {
	records, err := Select(cat.Records, selection)
	if err != nil {
		return nil, err
	}
	total := len(records)
	overwrite := p.tagger.Overwrite()
	results := make([]track.FetchResult, 0, total)

	started := time.Now()
	p.logger.InfoContext(ctx, "batch started",
		logging.String(logging.FieldCollection, cat.CollectionName),
		logging.Int("records", total),
		logging.Bool("overwrite", overwrite),
	)

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			p.logger.WarnContext(ctx, "batch cancelled",
				logging.Int("completed", i),
				logging.Int("records", total),
				logging.String(logging.FieldEventType, "batch_cancelled"),
			)
			return results, err
		}

		recCtx := services.WithRecordIndex(context.WithoutCancel(ctx), i+1)
		result := p.process(recCtx, cat.CollectionName, rec, overwrite)
		result.Position = catalogPosition(selection, i)
		results = append(results, result)

		if p.onResult != nil {
			p.onResult(i, result)
		}
		if onProgress != nil {
			onProgress(i+1, total)
		}
	}

	summary := track.Summarize(results)
	p.logger.InfoContext(ctx, "batch complete",
		logging.String(logging.FieldCollection, cat.CollectionName),
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed),
		logging.Duration("elapsed", time.Since(started).Round(time.Millisecond)),
	)
	return results, nil
}

// catalogPosition maps the i-th selected record back to its 1-based position
// in the catalog.
func catalogPosition(selection []int, i int) int {
	if selection == nil {
		return i + 1
	}
	return selection[i] + 1
}

func (p *Pipeline) process(ctx context.Context, collection string, rec track.Record, overwrite bool) track.FetchResult {
	dest := p.layout.Path(collection, rec)
	if !overwrite && library.Exists(dest) {
		p.logger.InfoContext(ctx, "already stored",
			logging.String("record", rec.Label()),
			logging.String("path", dest),
		)
		return track.FetchResult{Record: rec, Outcome: track.OutcomeSuccess, OutputPath: dest, Skipped: true}
	}

	candidate, err := p.locator.Locate(services.WithStage(ctx, "locate"), rec)
	if err != nil {
		return p.failure(services.WithStage(ctx, "locate"), rec, err)
	}
	p.checkMatch(ctx, rec, candidate)

	buf, err := p.fetcher.Fetch(services.WithStage(ctx, "fetch"), candidate)
	if err != nil {
		return p.failure(services.WithStage(ctx, "fetch"), rec, err)
	}

	path, err := p.tagger.Tag(services.WithStage(ctx, "tag"), buf, rec, dest)
	if err != nil {
		return p.failure(services.WithStage(ctx, "tag"), rec, err)
	}

	p.logger.InfoContext(ctx, "track stored",
		logging.String("record", rec.Label()),
		logging.String("video_id", candidate.ID),
		logging.String("path", path),
	)
	return track.FetchResult{Record: rec, Outcome: track.OutcomeSuccess, OutputPath: path}
}

func (p *Pipeline) failure(ctx context.Context, rec track.Record, err error) track.FetchResult {
	outcome := services.OutcomeFor(err)
	logging.WarnWithContext(ctx, p.logger, "record failed", "record_failed",
		logging.String("record", rec.Label()),
		logging.String(logging.FieldOutcome, string(outcome)),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, hintOrDefault(err)),
	)
	return track.FetchResult{Record: rec, Outcome: outcome, Detail: err.Error(), Err: err}
}

// checkMatch logs when the top hit's title shares few tokens with the query.
// The hit is used regardless.
func (p *Pipeline) checkMatch(ctx context.Context, rec track.Record, candidate track.Candidate) {
	if candidate.Title == "" {
		return
	}
	coverage := textutil.Coverage(textutil.NewFingerprint(rec.SearchQuery()), textutil.NewFingerprint(candidate.Title))
	if coverage >= lowMatchCoverage {
		return
	}
	logging.WarnWithContext(ctx, p.logger, "search hit may not match record", "weak_search_match",
		logging.String("record", rec.Label()),
		logging.String("video_title", candidate.Title),
		logging.String("coverage", strconv.FormatFloat(coverage, 'f', 2, 64)),
		logging.String(logging.FieldErrorHint, "verify the stored file; the top search hit is used without verification"),
	)
}

func hintOrDefault(err error) string {
	if hint := services.Hint(err); hint != "" {
		return hint
	}
	return "check logs for details"
}
