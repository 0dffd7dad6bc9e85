package gavlist

import (
	"context"
	"log/slog"

	"github.com/aquasecurity/maven-repo-builder/pkg/config"
	sourcetypes "github.com/aquasecurity/maven-repo-builder/pkg/source/types"
	"github.com/aquasecurity/maven-repo-builder/pkg/types"
)

var _ sourcetypes.Reader = (*Reader)(nil)

// Prober checks whether a URL exists
type Prober interface {
	Exists(ctx context.Context, url string) (bool, error)
}

// Reader locates explicitly listed GAVs in candidate repositories.
type Reader struct {
	prober Prober
	logger *slog.Logger
}

func New(prober Prober) *Reader {
	return &Reader{
		prober: prober,
		logger: slog.Default().With(slog.String("source", string(config.CoordinateListSource))),
	}
}

func (r *Reader) Read(ctx context.Context, src config.Source) (types.ArtifactMap, error) {
	r.logger.Info("Building artifact list from list of artifacts", slog.Int("count", len(src.IncludedGAVs)))
	return r.List(ctx, src.RepoURLs, ParseDependencyList(src.IncludedGAVs))
}

// List maps each GAV to the first repository that contains its version directory.
// GAVs that can't be parsed or found are logged and omitted. A root that can't be probed is skipped.
func (r *Reader) List(ctx context.Context, repoURLs, gavs []string) (types.ArtifactMap, error) {
	artifacts := make(types.ArtifactMap)
	for _, gav := range gavs {
		artifact, err := types.ParseGAV(gav)
		if err != nil {
			r.logger.Warn("Skipping artifact", slog.Any("error", err))
			continue
		}

		found := false
		for _, repoURL := range repoURLs {
			ok, err := r.prober.Exists(ctx, repoURL+"/"+artifact.DirPath())
			if err != nil {
				// An unreachable root is a miss, the next root may still have it
				r.logger.Warn("Unable to check artifact", slog.String("artifact", artifact.String()),
					slog.String("url", repoURL), slog.Any("error", err))
				continue
			}
			if ok {
				artifacts[artifact] = repoURL
				found = true
				break
			}
		}
		if !found {
			r.logger.Warn("Artifact not found in any url", slog.String("artifact", artifact.String()))
		}
	}
	return artifacts, nil
}
