package ingest

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Stage labels the pipeline's position for logging and error context.
type Stage string

const (
	StageValidating Stage = "validating"
	StageDecoding   Stage = "decoding"
	StageRendering  Stage = "rendering"
	StageShrinkLoop Stage = "shrink_loop"
	StageEncoding   Stage = "encoding"
	StageDone       Stage = "done"
	StageFailed     Stage = "failed"
)

// Pipeline runs the image ingestion stages for one file at a time. A
// Pipeline is safe for concurrent Runs: it holds no per-invocation state.
type Pipeline struct {
	cfg      Config
	rules    []Rule
	decoders []DecodeStrategy
	encoder  Encoder
	logger   *slog.Logger
}

// New validates cfg and builds a pipeline with the default decode
// strategies and codecs.
func New(log *slog.Logger, cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("ingest config: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		cfg:      cfg,
		rules:    ParseAccept(cfg.Accept),
		decoders: defaultDecoders(),
		encoder:  codecEncoder{},
		logger:   log.With(slog.String("component", "ingest")),
	}, nil
}

// Config returns the pipeline's resolved configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Run executes the full pipeline for src and returns exactly one result.
// The context is checked between stages; a cancelled caller never observes
// a result.
func (p *Pipeline) Run(ctx context.Context, src SourceFile) (Result, error) {
	stage := StageValidating
	fail := func(err error) (Result, error) {
		p.logger.Warn("ingestion failed",
			slog.String("file", src.Name),
			slog.String("stage", string(stage)),
			slog.Any("error", err),
		)
		return Result{}, err
	}

	// Type filter: declared MIME or extension against the allow-list.
	if !matchAccept(p.rules, src.Mime, src.Name) {
		return fail(fmt.Errorf("%w: %q is not in the accepted list (%s)",
			ErrUnsupportedType, declaredType(src), p.cfg.Accept))
	}
	if p.cfg.SniffContent {
		if sniffed := SniffMime(src.Data); sniffed != "" && !matchAccept(p.rules, sniffed, src.Name) {
			return fail(fmt.Errorf("%w: content looks like %q, which is not in the accepted list (%s)",
				ErrUnsupportedType, sniffed, p.cfg.Accept))
		}
	}

	// Size guard, before any decode work.
	if size := int64(len(src.Data)); size > p.cfg.MaxSize {
		return fail(fmt.Errorf("%w: %s MB exceeds the %s MB limit",
			ErrOriginalTooLarge, FormatMB(size), FormatMB(p.cfg.MaxSize)))
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	stage = StageDecoding
	surface, err := decodeSurface(p.decoders, src.Data)
	if err != nil {
		return fail(err)
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	// Render + encode, looping until the blob fits or the floors run out.
	// The loop body executes at least once.
	stage = StageShrinkLoop
	blob, iterations, exhausted, err := p.shrink(ctx, surface)
	if err != nil {
		return fail(err)
	}
	if exhausted && p.cfg.OnSizeTargetUnmet == PolicyFail {
		return fail(fmt.Errorf("%w: smallest attempt is %s MB at %dpx, target is %s MB",
			ErrSizeTargetUnmet, FormatMB(blob.Size()), blob.Width, FormatMB(p.cfg.MaxOutputSize)))
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	stage = StageEncoding
	dataURL, err := EncodeDataURL(blob.Mime, bytes.NewReader(blob.Data))
	if err != nil {
		return fail(err)
	}

	stage = StageDone
	p.logger.Info("ingestion complete",
		slog.String("file", src.Name),
		slog.String("mime", blob.Mime),
		slog.Int("width", blob.Width),
		slog.Int("height", blob.Height),
		slog.Int64("bytes", blob.Size()),
		slog.Int("iterations", iterations),
		slog.Bool("best_effort", exhausted),
	)

	return Result{
		DataURL:    dataURL,
		Blob:       blob,
		Iterations: iterations,
		BestEffort: exhausted,
	}, nil
}

// declaredType describes the file's claimed type for error messages,
// preferring the MIME and falling back to the filename.
func declaredType(src SourceFile) string {
	if mime := NormalizeMime(src.Mime); mime != "" {
		return mime
	}
	return strings.ToLower(strings.TrimSpace(src.Name))
}
