package types

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

const (
	// types of files
	JarType = "jar"
	PomType = "pom"
)

// Artifact is a Maven coordinate. It is a comparable value, so it can be used as a map key.
type Artifact struct {
	GroupID    string
	ArtifactID string
	Type       string
	Classifier string
	Version    string
}

// ArtifactMap maps an artifact to the URL of the repository root that holds it.
type ArtifactMap map[Artifact]string

// ParseError is returned when a coordinate string can't be parsed.
type ParseError struct {
	GAV    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid coordinate %q: %s", e.GAV, e.Reason)
}

func NewArtifact(groupID, artifactID, artifactType, version string) Artifact {
	return Artifact{
		GroupID:    groupID,
		ArtifactID: artifactID,
		Type:       artifactType,
		Version:    version,
	}
}

// ParseGAV parses `groupId:artifactId[:type[:classifier]]:version`.
// The type defaults to "jar" when omitted.
func ParseGAV(gav string) (Artifact, error) {
	ss := strings.Split(strings.TrimSpace(gav), ":")
	if len(ss) < 3 {
		return Artifact{}, &ParseError{GAV: gav, Reason: "groupId, artifactId and version are required"}
	} else if len(ss) > 5 {
		return Artifact{}, &ParseError{GAV: gav, Reason: "too many segments"}
	}
	if lo.Contains(ss, "") {
		return Artifact{}, &ParseError{GAV: gav, Reason: "empty segment"}
	}

	a := Artifact{
		GroupID:    ss[0],
		ArtifactID: ss[1],
		Type:       JarType,
		Version:    ss[len(ss)-1],
	}
	if len(ss) >= 4 {
		a.Type = ss[2]
	}
	if len(ss) == 5 {
		a.Classifier = ss[3]
	}
	return a, nil
}

// GAV returns the full coordinate string, e.g. `org.example:mylib:jar:1.0`.
func (a Artifact) GAV() string {
	if a.Classifier != "" {
		return strings.Join([]string{a.GroupID, a.ArtifactID, a.Type, a.Classifier, a.Version}, ":")
	}
	return strings.Join([]string{a.GroupID, a.ArtifactID, a.Type, a.Version}, ":")
}

// GA returns `groupId:artifactId`
func (a Artifact) GA() string {
	return a.GroupID + ":" + a.ArtifactID
}

func (a Artifact) String() string {
	return a.GAV()
}

func (a Artifact) GroupPath() string {
	return strings.ReplaceAll(a.GroupID, ".", "/")
}

// DirPath returns the version directory relative to the repository root.
func (a Artifact) DirPath() string {
	return a.GroupPath() + "/" + a.ArtifactID + "/" + a.Version
}

func (a Artifact) BaseFilename() string {
	return a.ArtifactID + "-" + a.Version
}

func (a Artifact) PomFilename() string {
	return a.BaseFilename() + "." + PomType
}

func (a Artifact) PomFilepath() string {
	return a.DirPath() + "/" + a.PomFilename()
}

// ExtensionPattern returns a pattern matching `artifactId-version.<ext>` file names.
// The first submatch is the extension; `tar.gz`-like double suffixes are kept whole.
func ExtensionPattern(artifactID, version string) *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(artifactID+"-"+version+".") + `((?:tar\.)?[^.]+)$`)
}

// Expand turns extensions observed for one GAV into artifacts.
// A POM accompanying another file is dropped; a lone POM is kept.
func Expand(groupID, artifactID, version string, exts []string) []Artifact {
	exts = lo.Uniq(exts)
	if len(exts) > 1 {
		exts = lo.Without(exts, PomType)
	}
	return lo.Map(exts, func(ext string, _ int) Artifact {
		return NewArtifact(groupID, artifactID, ext, version)
	})
}
