package repository

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/xerrors"

	"github.com/aquasecurity/maven-repo-builder/pkg/types"
)

// ListLocal walks a local repository. Only leaf directories are treated as version directories.
// A symlinked root is followed, symlinked sub-directories are not walked.
func ListLocal(root string) (types.ArtifactMap, error) {
	// WalkDir doesn't follow a symlinked root
	walkRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, xerrors.Errorf("unable to resolve %s: %w", root, err)
	}

	artifacts := make(types.ArtifactMap)
	err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		} else if !d.IsDir() {
			return nil
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return xerrors.Errorf("unable to read dir %s: %w", path, err)
		}
		if lo.SomeBy(entries, func(e fs.DirEntry) bool { return isDir(path, e) }) {
			return nil
		}

		rel, err := filepath.Rel(walkRoot, path)
		if err != nil {
			return xerrors.Errorf("rel path error: %w", err)
		}
		ss := strings.Split(filepath.ToSlash(rel), "/")
		// groupId/artifactId/version at least
		if len(ss) < 3 {
			return nil
		}
		groupID := strings.Join(ss[:len(ss)-2], ".")
		artifactID := ss[len(ss)-2]
		version := ss[len(ss)-1]

		re := types.ExtensionPattern(artifactID, version)
		var exts []string
		for _, e := range entries {
			if m := re.FindStringSubmatch(e.Name()); m != nil {
				exts = append(exts, m[1])
			}
		}

		for _, a := range types.Expand(groupID, artifactID, version, exts) {
			artifacts[a] = "file://" + root
		}
		return nil
	})
	if err != nil {
		return nil, xerrors.Errorf("walk error: %w", err)
	}
	return artifacts, nil
}

// isDir reports whether the entry is a directory or a symlink to one.
func isDir(parent string, e fs.DirEntry) bool {
	if e.IsDir() {
		return true
	} else if e.Type()&fs.ModeSymlink == 0 {
		return false
	}
	fi, err := os.Stat(filepath.Join(parent, e.Name()))
	return err == nil && fi.IsDir()
}
