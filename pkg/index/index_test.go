package index_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aquasecurity/maven-repo-builder/pkg/index"
	"github.com/aquasecurity/maven-repo-builder/pkg/types"
)

func TestIndex_Add(t *testing.T) {
	idx := index.New()
	idx.Add(types.NewArtifact("org.example", "mylib", "jar", "1.0"), 1, "file:///a")
	idx.Add(types.NewArtifact("org.example", "mylib", "jar", "1.1"), 1, "file:///a")
	idx.Add(types.NewArtifact("org.example", "mylib", "jar", "1.0"), 2, "https://b.example.com")
	// same cell, the last write wins
	idx.Add(types.NewArtifact("org.example", "mylib", "war", "1.0"), 2, "https://c.example.com")
	idx.Add(types.NewArtifact("commons-io", "commons-io", "jar", "2.11.0"), 3, "https://c.example.com")

	assert.Equal(t, map[string]index.Priorities{
		"org.example:mylib": {
			1: {"1.0": "file:///a", "1.1": "file:///a"},
			2: {"1.0": "https://c.example.com"},
		},
		"commons-io:commons-io": {
			3: {"2.11.0": "https://c.example.com"},
		},
	}, idx.Artifacts)

	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, []string{"commons-io:commons-io", "org.example:mylib"}, idx.Keys())
	assert.Equal(t, []int{1, 2, 3}, idx.Priorities())
	assert.Equal(t, index.Versions{"2.11.0": "https://c.example.com"}, idx.Get("commons-io", "commons-io")[3])
	assert.Nil(t, idx.Get("org.example", "missing"))
}

func TestIndex_Merge(t *testing.T) {
	idx := index.New()
	idx.Merge(types.ArtifactMap{
		types.NewArtifact("org.example", "mylib", "jar", "1.0"): "file:///a",
		types.NewArtifact("org.example", "app", "war", "2.0"):   "file:///a",
	}, 4)

	assert.Equal(t, []int{4}, idx.Priorities())
	assert.Equal(t, index.Priorities{4: {"2.0": "file:///a"}}, idx.Get("org.example", "app"))
}

func TestSplitKey(t *testing.T) {
	g, a := index.SplitKey("org.example:mylib")
	assert.Equal(t, "org.example", g)
	assert.Equal(t, "mylib", a)
}

func TestVersions_Keys(t *testing.T) {
	v := index.Versions{"1.1": "file:///a", "1.0": "file:///a", "2.0-SNAPSHOT": "file:///b"}
	assert.Equal(t, []string{"1.0", "1.1", "2.0-SNAPSHOT"}, v.Keys())
	assert.Empty(t, index.Versions{}.Keys())
}
