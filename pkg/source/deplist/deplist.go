package deplist

import (
	"bufio"
	"context"
	"encoding/xml"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/net/html/charset"
	"golang.org/x/xerrors"

	"github.com/aquasecurity/maven-repo-builder/pkg/config"
	"github.com/aquasecurity/maven-repo-builder/pkg/downloader"
	"github.com/aquasecurity/maven-repo-builder/pkg/runner"
	"github.com/aquasecurity/maven-repo-builder/pkg/source/gavlist"
	sourcetypes "github.com/aquasecurity/maven-repo-builder/pkg/source/types"
	"github.com/aquasecurity/maven-repo-builder/pkg/types"
)

var _ sourcetypes.Reader = (*Reader)(nil)

const (
	MvnCommand = "mvn"

	pomDir    = "poms"
	mvnOutDir = "maven"
)

// Fetcher downloads a file into a local directory
type Fetcher interface {
	Download(ctx context.Context, url, dir string) (string, error)
}

type Option struct {
	Fetcher Fetcher
	Prober  gavlist.Prober
	Runner  runner.Runner
	// WorkDir keeps fetched POM files and maven output
	WorkDir string
}

// Reader resolves dependencies of top-level GAVs with `mvn dependency:list`
// and locates them in the given repositories.
type Reader struct {
	fetcher Fetcher
	runner  runner.Runner
	gavs    *gavlist.Reader
	workDir string
	logger  *slog.Logger
}

type pomXML struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	Packaging  string `xml:"packaging"`
}

func New(opt Option) *Reader {
	return &Reader{
		fetcher: opt.Fetcher,
		runner:  opt.Runner,
		gavs:    gavlist.New(opt.Prober),
		workDir: opt.WorkDir,
		logger:  slog.Default().With(slog.String("source", string(config.DependencyListSource))),
	}
}

func (r *Reader) Read(ctx context.Context, src config.Source) (types.ArtifactMap, error) {
	r.logger.Info("Building artifact list from top level list of GAVs", slog.Int("count", len(src.TopLevelGAVs)))
	artifacts := make(types.ArtifactMap)
	for _, gav := range gavlist.ParseDependencyList(src.TopLevelGAVs) {
		deps, err := r.resolve(ctx, src.RepoURLs, gav)
		if err != nil {
			r.logger.Warn("Skipping artifact", slog.String("gav", gav), slog.Any("error", err))
			continue
		}
		for a, url := range deps {
			artifacts[a] = url
		}
	}
	return artifacts, nil
}

func (r *Reader) resolve(ctx context.Context, repoURLs []string, gav string) (types.ArtifactMap, error) {
	artifact, err := types.ParseGAV(gav)
	if err != nil {
		return nil, err
	}

	pomPath, err := r.fetchPom(ctx, repoURLs, artifact)
	if err != nil {
		return nil, err
	}

	outPath, err := r.dependencyList(ctx, artifact, pomPath)
	if err != nil {
		return nil, err
	}

	lines, err := readLines(outPath)
	if err != nil {
		return nil, err
	}
	return r.gavs.List(ctx, repoURLs, gavlist.ParseDependencyList(lines))
}

// fetchPom downloads the POM file from the first repository that has it.
func (r *Reader) fetchPom(ctx context.Context, repoURLs []string, artifact types.Artifact) (string, error) {
	dir := filepath.Join(r.workDir, pomDir)
	for _, repoURL := range repoURLs {
		pomPath, err := r.fetcher.Download(ctx, repoURL+"/"+artifact.PomFilepath(), dir)
		if errors.Is(err, downloader.ErrNotFound) {
			continue
		} else if err != nil {
			r.logger.Warn("Unable to fetch pom file", slog.String("url", repoURL), slog.Any("error", err))
			continue
		}

		if err = validatePom(pomPath); err != nil {
			r.logger.Warn("Invalid pom file", slog.String("url", repoURL), slog.Any("error", err))
			continue
		}
		return pomPath, nil
	}
	return "", xerrors.Errorf("failed to retrieve pom file for artifact %s", artifact)
}

// dependencyList runs `mvn dependency:list` and returns the path of the saved output.
func (r *Reader) dependencyList(ctx context.Context, artifact types.Artifact, pomPath string) (string, error) {
	dir := filepath.Join(r.workDir, mvnOutDir)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", xerrors.Errorf("unable to create a directory: %w", err)
	}

	res, err := r.runner.Run(ctx, MvnCommand, "dependency:list", "-N", "-f", pomPath)
	if err != nil {
		return "", xerrors.Errorf("maven error: %w", err)
	}

	outPath := filepath.Join(dir, artifact.BaseFilename()+"-maven.out")
	if err = os.WriteFile(outPath, res.Stdout, 0644); err != nil {
		return "", xerrors.Errorf("unable to save maven output: %w", err)
	}

	if res.ExitCode != 0 {
		return "", xerrors.Errorf("maven failed with exit code %d (output: %s)", res.ExitCode, outPath)
	}
	return outPath, nil
}

func validatePom(pomPath string) error {
	f, err := os.Open(pomPath)
	if err != nil {
		return xerrors.Errorf("unable to open pom file: %w", err)
	}
	defer f.Close()

	var pom pomXML
	decoder := xml.NewDecoder(f)
	decoder.CharsetReader = charset.NewReaderLabel
	if err = decoder.Decode(&pom); err != nil {
		return xerrors.Errorf("unable to decode pom file %s: %w", pomPath, err)
	}
	slog.Debug("Fetched pom file", slog.String("path", pomPath), slog.String("packaging", pom.Packaging))
	return nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.Errorf("unable to open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err = scanner.Err(); err != nil {
		return nil, xerrors.Errorf("unable to read %s: %w", path, err)
	}
	return lines, nil
}
