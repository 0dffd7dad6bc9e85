package tag

import (
	"context"
	"log/slog"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/xerrors"

	"github.com/aquasecurity/maven-repo-builder/pkg/config"
	"github.com/aquasecurity/maven-repo-builder/pkg/filter"
	"github.com/aquasecurity/maven-repo-builder/pkg/koji"
	sourcetypes "github.com/aquasecurity/maven-repo-builder/pkg/source/types"
	"github.com/aquasecurity/maven-repo-builder/pkg/types"
)

var _ sourcetypes.Reader = (*Reader)(nil)

// gavu groups archives of one GAV stored under one download URL
type gavu struct {
	groupID    string
	artifactID string
	version    string
	url        string
}

// Reader lists artifacts of the latest builds tagged in Koji.
type Reader struct {
	http   *retryablehttp.Client
	logger *slog.Logger
}

func New(client *retryablehttp.Client) *Reader {
	return &Reader{
		http:   client,
		logger: slog.Default().With(slog.String("source", string(config.TagSource))),
	}
}

func (r *Reader) Read(ctx context.Context, src config.Source) (types.ArtifactMap, error) {
	r.logger.Info("Building artifact list from tag", slog.String("tag", src.TagName))
	client := koji.NewClient(r.http, src.KojiURL)
	archives, err := client.LatestMavenArchives(ctx, src.TagName)
	if err != nil {
		return nil, xerrors.Errorf("unable to list archives of tag %s: %w", src.TagName, err)
	}
	return List(archives, src.DownloadRootURL, src.IncludedGAVPatterns)
}

// List maps archives to the download URL of their build.
func List(archives []koji.Archive, downloadRootURL string, gavPatterns []string) (types.ArtifactMap, error) {
	root := strings.TrimSuffix(downloadRootURL, "/") + "/"

	var order []gavu
	exts := make(map[gavu][]string)
	for _, a := range archives {
		key := gavu{
			groupID:    a.GroupID,
			artifactID: a.ArtifactID,
			version:    a.Version,
			url:        root + a.BuildName + "/" + a.BuildVersion + "/" + a.BuildRelease + "/maven/",
		}
		if _, ok := exts[key]; !ok {
			order = append(order, key)
		}
		exts[key] = append(exts[key], a.Type())
	}

	artifacts := make(types.ArtifactMap)
	for _, key := range order {
		for _, artifact := range types.Expand(key.groupID, key.artifactID, key.version, exts[key]) {
			artifacts[artifact] = key.url
		}
	}

	artifacts, err := filter.ByPatterns(artifacts, gavPatterns)
	if err != nil {
		return nil, xerrors.Errorf("filter error: %w", err)
	}
	return artifacts, nil
}
