package builder

import (
	"log/slog"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/aquasecurity/maven-repo-builder/pkg/config"
	"github.com/aquasecurity/maven-repo-builder/pkg/downloader"
	"github.com/aquasecurity/maven-repo-builder/pkg/runner"
	"github.com/aquasecurity/maven-repo-builder/pkg/source/deplist"
	"github.com/aquasecurity/maven-repo-builder/pkg/source/gavlist"
	"github.com/aquasecurity/maven-repo-builder/pkg/source/repository"
	"github.com/aquasecurity/maven-repo-builder/pkg/source/tag"
	sourcetypes "github.com/aquasecurity/maven-repo-builder/pkg/source/types"
)

type ReaderOption struct {
	Runner     runner.Runner
	Downloader *downloader.Downloader
	// HTTPClient is used for Koji calls and HTML listings
	HTTPClient   *retryablehttp.Client
	WorkDir      string
	RemoteLister string
}

// DefaultReaders registers a reader for every source type.
// A source type whose external tool is missing isn't registered, so only that type becomes unusable.
func DefaultReaders(opt ReaderOption) map[config.SourceType]sourcetypes.Reader {
	var lister repository.Lister = repository.NewLftpLister(opt.Runner)
	if opt.RemoteLister == config.HTTPLister {
		lister = repository.NewHTMLLister(opt.HTTPClient)
	} else if _, err := opt.Runner.LookPath("lftp"); err != nil {
		slog.Warn("Unable to find lftp, listing of remote repositories will fail", slog.Any("error", err))
	}

	readers := map[config.SourceType]sourcetypes.Reader{
		config.TagSource:            tag.New(opt.HTTPClient),
		config.RepositorySource:     repository.New(lister),
		config.CoordinateListSource: gavlist.New(opt.Downloader),
	}

	if _, err := opt.Runner.LookPath(deplist.MvnCommand); err != nil {
		slog.Warn("Unable to find maven, dependency-list sources will be unavailable", slog.Any("error", err))
	} else {
		readers[config.DependencyListSource] = deplist.New(deplist.Option{
			Fetcher: opt.Downloader,
			Prober:  opt.Downloader,
			Runner:  opt.Runner,
			WorkDir: opt.WorkDir,
		})
	}
	return readers
}
