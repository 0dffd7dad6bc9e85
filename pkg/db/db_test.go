package db_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquasecurity/maven-repo-builder/pkg/dbtest"
	"github.com/aquasecurity/maven-repo-builder/pkg/index"
	"github.com/aquasecurity/maven-repo-builder/pkg/types"
)

func testIndex() *index.Index {
	idx := index.New()
	idx.Add(types.NewArtifact("org.example", "mylib", "jar", "1.0"), 1, "file:///repo")
	idx.Add(types.NewArtifact("org.example", "mylib", "jar", "1.1"), 1, "file:///repo")
	idx.Add(types.NewArtifact("org.example", "mylib", "jar", "1.0"), 3, "https://repo.example.com/maven2")
	idx.Add(types.NewArtifact("javax.servlet", "jstl", "jar", "1.1.0"), 2, "https://download.example.com/jstl/1.1.0/1/maven/")
	return idx
}

func TestSelectPriorities(t *testing.T) {
	tests := []struct {
		name       string
		groupID    string
		artifactID string
		want       index.Priorities
	}{
		{
			name:       "happy path",
			groupID:    "org.example",
			artifactID: "mylib",
			want: index.Priorities{
				1: {"1.0": "file:///repo", "1.1": "file:///repo"},
				3: {"1.0": "https://repo.example.com/maven2"},
			},
		},
		{
			name:       "wrong ArtifactID",
			groupID:    "org.example",
			artifactID: "wrong",
		},
		{
			name:       "wrong GroupID",
			groupID:    "wrong",
			artifactID: "jstl",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbc := dbtest.InitDB(t, testIndex())

			got, err := dbc.SelectPriorities(tt.groupID, tt.artifactID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectIndex(t *testing.T) {
	idx := testIndex()
	dbc := dbtest.InitDB(t, idx)

	// inserting the same index twice keeps one row per cell
	require.NoError(t, dbc.InsertIndex(idx))

	got, err := dbc.SelectIndex()
	require.NoError(t, err)
	assert.Equal(t, idx.Artifacts, got.Artifacts)
}
