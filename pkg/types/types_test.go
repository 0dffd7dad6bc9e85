package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquasecurity/maven-repo-builder/pkg/types"
)

func TestParseGAV(t *testing.T) {
	tests := []struct {
		name    string
		gav     string
		want    types.Artifact
		wantErr bool
	}{
		{
			name: "group, artifact and version",
			gav:  "org.example:mylib:1.0",
			want: types.NewArtifact("org.example", "mylib", "jar", "1.0"),
		},
		{
			name: "with type",
			gav:  "org.example:mylib:war:1.0",
			want: types.NewArtifact("org.example", "mylib", "war", "1.0"),
		},
		{
			name: "with classifier",
			gav:  "org.example:mylib:jar:tests:1.0",
			want: types.Artifact{
				GroupID:    "org.example",
				ArtifactID: "mylib",
				Type:       "jar",
				Classifier: "tests",
				Version:    "1.0",
			},
		},
		{
			name:    "missing version",
			gav:     "org.example:mylib",
			wantErr: true,
		},
		{
			name:    "too many segments",
			gav:     "org.example:mylib:jar:tests:1.0:compile",
			wantErr: true,
		},
		{
			name:    "empty segment",
			gav:     "org.example::1.0",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := types.ParseGAV(tt.gav)
			if tt.wantErr {
				var parseErr *types.ParseError
				require.ErrorAs(t, err, &parseErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestArtifactPaths(t *testing.T) {
	a := types.NewArtifact("org.example.sub", "mylib", "jar", "1.0")

	assert.Equal(t, "org/example/sub", a.GroupPath())
	assert.Equal(t, "org/example/sub/mylib/1.0", a.DirPath())
	assert.Equal(t, "mylib-1.0", a.BaseFilename())
	assert.Equal(t, "mylib-1.0.pom", a.PomFilename())
	assert.Equal(t, "org/example/sub/mylib/1.0/mylib-1.0.pom", a.PomFilepath())
	assert.Equal(t, "org.example.sub:mylib:jar:1.0", a.GAV())
	assert.Equal(t, "org.example.sub:mylib", a.GA())
}

func TestArtifactEquality(t *testing.T) {
	m := types.ArtifactMap{
		types.NewArtifact("org.example", "mylib", "jar", "1.0"): "file:///a",
	}
	m[types.NewArtifact("org.example", "mylib", "jar", "1.0")] = "file:///b"
	m[types.NewArtifact("org.example", "mylib", "pom", "1.0")] = "file:///c"

	assert.Len(t, m, 2)
	assert.Equal(t, "file:///b", m[types.NewArtifact("org.example", "mylib", "jar", "1.0")])
}

func TestExpand(t *testing.T) {
	tests := []struct {
		name string
		exts []string
		want []string
	}{
		{
			name: "pom next to jar is dropped",
			exts: []string{"jar", "pom"},
			want: []string{"jar"},
		},
		{
			name: "lone pom is kept",
			exts: []string{"pom"},
			want: []string{"pom"},
		},
		{
			name: "duplicate pom",
			exts: []string{"pom", "pom"},
			want: []string{"pom"},
		},
		{
			name: "several binaries",
			exts: []string{"pom", "jar", "tar.gz"},
			want: []string{"jar", "tar.gz"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := types.Expand("org.example", "mylib", "1.0", tt.exts)
			var exts []string
			for _, a := range got {
				assert.Equal(t, "org.example", a.GroupID)
				assert.Equal(t, "mylib", a.ArtifactID)
				assert.Equal(t, "1.0", a.Version)
				exts = append(exts, a.Type)
			}
			assert.Equal(t, tt.want, exts)
		})
	}
}

func TestExtensionPattern(t *testing.T) {
	re := types.ExtensionPattern("mylib", "1.0")
	tests := []struct {
		fileName string
		want     string
	}{
		{fileName: "mylib-1.0.jar", want: "jar"},
		{fileName: "mylib-1.0.tar.gz", want: "tar.gz"},
		{fileName: "mylib-1.0.pom", want: "pom"},
		{fileName: "mylib-1.0.jar.sha1"},
		{fileName: "mylib-1.0-sources.jar"},
		{fileName: "mylibx1.0.jar"},
	}
	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			m := re.FindStringSubmatch(tt.fileName)
			if tt.want == "" {
				assert.Nil(t, m)
				return
			}
			require.Len(t, m, 2)
			assert.Equal(t, tt.want, m[1])
		})
	}
}
