package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquasecurity/maven-repo-builder/pkg/filter"
	"github.com/aquasecurity/maven-repo-builder/pkg/types"
)

var (
	mylibJar  = types.NewArtifact("org.example", "mylib", "jar", "1.0")
	mylibPom  = types.NewArtifact("org.example", "mylib-parent", "pom", "1.0")
	commonsIO = types.NewArtifact("commons-io", "commons-io", "jar", "2.11.0")
)

func TestByPatterns(t *testing.T) {
	artifacts := types.ArtifactMap{
		mylibJar:  "file:///repo",
		mylibPom:  "file:///repo",
		commonsIO: "https://repo.example.com/maven2",
	}

	tests := []struct {
		name     string
		patterns []string
		want     types.ArtifactMap
		wantErr  string
	}{
		{
			name: "no patterns",
			want: artifacts,
		},
		{
			name:     "prefix match",
			patterns: []string{`org\.example`},
			want: types.ArtifactMap{
				mylibJar: "file:///repo",
				mylibPom: "file:///repo",
			},
		},
		{
			name:     "pattern is anchored at the start",
			patterns: []string{`mylib`},
			want:     types.ArtifactMap{},
		},
		{
			name:     "any pattern matches",
			patterns: []string{`org\.example:mylib:jar:.*`, `commons-io:`},
			want: types.ArtifactMap{
				mylibJar:  "file:///repo",
				commonsIO: "https://repo.example.com/maven2",
			},
		},
		{
			name:     "invalid pattern",
			patterns: []string{`org\.example(`},
			wantErr:  "invalid GAV pattern",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := filter.ByPatterns(artifacts, tt.patterns)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestByPatternsIdempotent(t *testing.T) {
	artifacts := types.ArtifactMap{
		mylibJar:  "file:///repo",
		mylibPom:  "file:///repo",
		commonsIO: "https://repo.example.com/maven2",
	}
	patterns := []string{`org\.example:mylib:`}

	once, err := filter.ByPatterns(artifacts, patterns)
	require.NoError(t, err)
	twice, err := filter.ByPatterns(once, patterns)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	assert.Len(t, twice, 1)
}
