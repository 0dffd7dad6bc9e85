package filter

import (
	"regexp"

	"github.com/samber/lo"
	"golang.org/x/xerrors"

	"github.com/aquasecurity/maven-repo-builder/pkg/types"
)

// ByPatterns keeps artifacts whose GAV matches at least one of the patterns.
// A pattern only has to match a prefix of the GAV. Without patterns the map is returned as is.
func ByPatterns(artifacts types.ArtifactMap, patterns []string) (types.ArtifactMap, error) {
	if len(patterns) == 0 {
		return artifacts, nil
	}

	regexps := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(`^(?:` + p + `)`)
		if err != nil {
			return nil, xerrors.Errorf("invalid GAV pattern %q: %w", p, err)
		}
		regexps = append(regexps, re)
	}

	return lo.PickBy(artifacts, func(a types.Artifact, _ string) bool {
		gav := a.GAV()
		return lo.SomeBy(regexps, func(re *regexp.Regexp) bool {
			return re.MatchString(gav)
		})
	}), nil
}
