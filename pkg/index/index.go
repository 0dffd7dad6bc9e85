package index

import (
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/aquasecurity/maven-repo-builder/pkg/types"
)

// Versions maps a version to the URL of the repository root holding it
type Versions map[string]string

// Keys returns sorted versions
func (v Versions) Keys() []string {
	keys := lo.Keys(v)
	sort.Strings(keys)
	return keys
}

// Priorities maps a source priority (1-based declaration order) to versions
type Priorities map[int]Versions

// Index is the unified artifact list:
//
//	"<groupId>:<artifactId>"
//	  L <source priority>
//	     L <version>
//	        L <repository URL>
type Index struct {
	Artifacts map[string]Priorities `json:"artifacts"`
	CreatedAt time.Time             `json:"created_at"`
}

func New() *Index {
	return &Index{
		Artifacts: make(map[string]Priorities),
	}
}

// Add places the artifact under its GA, priority and version. The last write for the same cell wins.
func (idx *Index) Add(artifact types.Artifact, priority int, url string) {
	ga := artifact.GA()
	priorities, ok := idx.Artifacts[ga]
	if !ok {
		priorities = make(Priorities)
		idx.Artifacts[ga] = priorities
	}
	versions, ok := priorities[priority]
	if !ok {
		versions = make(Versions)
		priorities[priority] = versions
	}
	versions[artifact.Version] = url
}

// Merge adds all artifacts of one source
func (idx *Index) Merge(artifacts types.ArtifactMap, priority int) {
	for artifact, url := range artifacts {
		idx.Add(artifact, priority, url)
	}
}

// Get returns locations of the GA, or nil.
func (idx *Index) Get(groupID, artifactID string) Priorities {
	return idx.Artifacts[groupID+":"+artifactID]
}

// Len returns the number of GAs
func (idx *Index) Len() int {
	return len(idx.Artifacts)
}

// Keys returns sorted GAs
func (idx *Index) Keys() []string {
	keys := lo.Keys(idx.Artifacts)
	sort.Strings(keys)
	return keys
}

// Priorities returns the sorted priorities used by any GA
func (idx *Index) Priorities() []int {
	var priorities []int
	for _, p := range idx.Artifacts {
		priorities = append(priorities, lo.Keys(p)...)
	}
	priorities = lo.Uniq(priorities)
	sort.Ints(priorities)
	return priorities
}

// SplitKey splits a GA key into groupId and artifactId
func SplitKey(ga string) (string, string) {
	groupID, artifactID, _ := strings.Cut(ga, ":")
	return groupID, artifactID
}
