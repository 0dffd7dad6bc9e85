package builder

import (
	"context"
	"log/slog"

	"github.com/cheggaaa/pb/v3"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"
	"k8s.io/utils/clock"

	"github.com/aquasecurity/maven-repo-builder/pkg/config"
	"github.com/aquasecurity/maven-repo-builder/pkg/index"
	sourcetypes "github.com/aquasecurity/maven-repo-builder/pkg/source/types"
)

type Builder struct {
	readers  map[config.SourceType]sourcetypes.Reader
	clock    clock.Clock
	progress bool
}

type BuilderOption func(*Builder)

func WithClock(c clock.Clock) BuilderOption {
	return func(b *Builder) {
		b.clock = c
	}
}

// WithProgress shows a progress bar over the configured sources
func WithProgress(progress bool) BuilderOption {
	return func(b *Builder) {
		b.progress = progress
	}
}

func NewBuilder(readers map[config.SourceType]sourcetypes.Reader, opts ...BuilderOption) *Builder {
	b := &Builder{
		readers: readers,
		clock:   clock.RealClock{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build reads the sources in the declared order and merges their artifacts into one index.
// The priority of a source is its 1-based position, so a skipped or failed source still consumes one.
// Failed sources don't stop the build, their errors are returned together with the index.
func (b *Builder) Build(ctx context.Context, sources []config.Source) (*index.Index, error) {
	var bar *pb.ProgressBar
	if b.progress {
		bar = pb.StartNew(len(sources))
		defer bar.Finish()
	}

	idx := index.New()
	var errs *multierror.Error
	for i, src := range sources {
		priority := i + 1
		logger := slog.With(slog.Int("priority", priority), slog.String("type", string(src.Type)))

		if bar != nil {
			bar.Increment()
		}

		reader, ok := b.readers[src.Type.Normalize()]
		if !ok {
			logger.Warn("Unsupported source type")
			continue
		}

		artifacts, err := reader.Read(ctx, src)
		if err != nil {
			logger.Error("Failed to read artifact source", slog.Any("error", err))
			errs = multierror.Append(errs, xerrors.Errorf("source %d (%s): %w", priority, src.Type, err))
			continue
		}

		logger.Debug("Placing artifacts in the result list", slog.Int("count", len(artifacts)))
		idx.Merge(artifacts, priority)
		logger.Debug("The result contains GAs so far", slog.Int("count", idx.Len()))
	}
	idx.CreatedAt = b.clock.Now().UTC()

	slog.Info("Build completed", slog.Int("sources", len(sources)), slog.Int("artifacts", idx.Len()))
	return idx, errs.ErrorOrNil()
}
