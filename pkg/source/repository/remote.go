package repository

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/xerrors"

	"github.com/aquasecurity/maven-repo-builder/pkg/runner"
	"github.com/aquasecurity/maven-repo-builder/pkg/types"
)

// ./(groupId path)/(artifactId)/(version)/(filename)
var listingLineRegexp = regexp.MustCompile(`^\./(.+)/([^/]+)/([^/]+)/([^/]+\.[^/.]+)$`)

type gav struct {
	groupID    string
	artifactID string
	version    string
}

// ParseListing turns listing lines into artifacts located at repoURL. Lines that don't look like
// `./group/path/artifactId/version/artifactId-version.ext` are skipped.
func ParseListing(repoURL string, lines []string) types.ArtifactMap {
	var order []gav
	exts := make(map[gav][]string)
	for _, line := range lines {
		m := listingLineRegexp.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		ext := types.ExtensionPattern(m[2], m[3]).FindStringSubmatch(m[4])
		if ext == nil {
			continue
		}
		key := gav{
			groupID:    strings.ReplaceAll(m[1], "/", "."),
			artifactID: m[2],
			version:    m[3],
		}
		if _, ok := exts[key]; !ok {
			order = append(order, key)
		}
		exts[key] = append(exts[key], ext[1])
	}

	artifacts := make(types.ArtifactMap)
	for _, key := range order {
		for _, a := range types.Expand(key.groupID, key.artifactID, key.version, exts[key]) {
			artifacts[a] = repoURL
		}
	}
	return artifacts
}

var _ Lister = (*LftpLister)(nil)

// LftpLister lists remote repositories with `lftp find`. Certificate verification is disabled.
type LftpLister struct {
	runner runner.Runner
}

func NewLftpLister(r runner.Runner) *LftpLister {
	return &LftpLister{runner: r}
}

func (l *LftpLister) List(ctx context.Context, repoURL string) ([]string, error) {
	script := "set ssl:verify-certificate no ; open " + repoURL + " ; find ."
	res, err := l.runner.Run(ctx, "lftp", "-c", script)
	if err != nil {
		return nil, xerrors.Errorf("lftp error: %w", err)
	} else if res.ExitCode != 0 {
		slog.Warn("lftp finished with non-zero exit code", slog.String("url", repoURL), slog.Int("exit_code", res.ExitCode))
	}
	return strings.Split(string(res.Stdout), "\n"), nil
}
