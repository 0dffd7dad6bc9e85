package types

import (
	"context"

	"github.com/aquasecurity/maven-repo-builder/pkg/config"
	"github.com/aquasecurity/maven-repo-builder/pkg/types"
)

// Reader lists the artifacts of one configured source
type Reader interface {
	// Read returns artifacts mapped to the URL of the repository root that holds them
	Read(ctx context.Context, src config.Source) (types.ArtifactMap, error)
}
