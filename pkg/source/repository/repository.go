package repository

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/xerrors"

	"github.com/aquasecurity/maven-repo-builder/pkg/config"
	"github.com/aquasecurity/maven-repo-builder/pkg/downloader"
	"github.com/aquasecurity/maven-repo-builder/pkg/filter"
	sourcetypes "github.com/aquasecurity/maven-repo-builder/pkg/source/types"
	"github.com/aquasecurity/maven-repo-builder/pkg/types"
)

var _ sourcetypes.Reader = (*Reader)(nil)

var ErrUnsupportedScheme = xerrors.New("unsupported repository URL scheme")

// Lister returns a recursive listing of a remote repository, one `./relative/path` per line.
type Lister interface {
	List(ctx context.Context, repoURL string) ([]string, error)
}

// Reader lists artifacts stored in local or remote repositories.
type Reader struct {
	lister Lister
	logger *slog.Logger
}

func New(lister Lister) *Reader {
	return &Reader{
		lister: lister,
		logger: slog.Default().With(slog.String("source", string(config.RepositorySource))),
	}
}

func (r *Reader) Read(ctx context.Context, src config.Source) (types.ArtifactMap, error) {
	artifacts := make(types.ArtifactMap)
	// Scan in reverse order so that the first declared repository wins
	for i := len(src.RepoURLs) - 1; i >= 0; i-- {
		repoURL := src.RepoURLs[i]
		r.logger.Info("Building artifact list from repository", slog.String("url", repoURL))
		found, err := r.scan(ctx, repoURL)
		if err != nil {
			return nil, err
		}
		for a, url := range found {
			artifacts[a] = url
		}
	}

	artifacts, err := filter.ByPatterns(artifacts, src.IncludedGAVPatterns)
	if err != nil {
		return nil, xerrors.Errorf("filter error: %w", err)
	}
	r.logger.Debug("Found artifacts", slog.Int("count", len(artifacts)))
	return artifacts, nil
}

func (r *Reader) scan(ctx context.Context, repoURL string) (types.ArtifactMap, error) {
	if p, local := downloader.LocalPath(repoURL); local {
		artifacts, err := ListLocal(p)
		if err != nil {
			return nil, xerrors.Errorf("local repository %s: %w", p, err)
		}
		return artifacts, nil
	}

	switch scheme, _, _ := strings.Cut(repoURL, "://"); scheme {
	case "http", "https":
		lines, err := r.lister.List(ctx, repoURL)
		if err != nil {
			return nil, xerrors.Errorf("remote repository %s: %w", repoURL, err)
		}
		return ParseListing(repoURL, lines), nil
	default:
		return nil, xerrors.Errorf("%s: %w", repoURL, ErrUnsupportedScheme)
	}
}
