package gavlist

import (
	"regexp"
	"strings"
)

var (
	commentRegexp = regexp.MustCompile(`#.*$`)
	// groupId:artifactId:[type:][classifier:]version[:scope]
	gavRegexp = regexp.MustCompile(`(([\w\-.]+:){2,3}([\w\-.]+:)?([\d][\w\-.]+))(:[\w]*\S)?`)
)

// ParseDependencyList extracts GAVs from `mvn dependency:list` output or a hand-written list.
// Comments and scopes are dropped, lines without a GAV are skipped.
func ParseDependencyList(lines []string) []string {
	var gavs []string
	for _, line := range lines {
		line = strings.TrimSpace(commentRegexp.ReplaceAllString(line, ""))
		if m := gavRegexp.FindStringSubmatch(line); m != nil {
			gavs = append(gavs, m[1])
		}
	}
	return gavs
}
