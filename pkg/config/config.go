package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/xerrors"
)

type SourceType string

const (
	TagSource            SourceType = "tag"
	DependencyListSource SourceType = "dependency-list"
	RepositorySource     SourceType = "repository"
	CoordinateListSource SourceType = "coordinate-list"
)

const (
	LftpLister = "lftp"
	HTTPLister = "http"

	envPrefix = "MRB"
)

// aliases of source types used by older configuration files
var aliases = map[SourceType]SourceType{
	"mead-tag":  TagSource,
	"artifacts": CoordinateListSource,
}

// Normalize resolves aliases of source types.
func (t SourceType) Normalize() SourceType {
	if alias, ok := aliases[t]; ok {
		return alias
	}
	return t
}

// Source describes one artifact source. Which fields are used depends on Type.
type Source struct {
	Type SourceType `mapstructure:"type"`

	// tag
	TagName         string `mapstructure:"tag-name"`
	KojiURL         string `mapstructure:"koji-url"`
	DownloadRootURL string `mapstructure:"download-root-url"`

	// repository, dependency-list and coordinate-list
	RepoURLs []string `mapstructure:"repo-url"`

	// dependency-list
	TopLevelGAVs []string `mapstructure:"top-level-gavs"`

	// coordinate-list
	IncludedGAVs []string `mapstructure:"included-gavs"`

	// tag and repository
	IncludedGAVPatterns []string `mapstructure:"included-gav-patterns"`
}

type Config struct {
	// WorkDir keeps fetched POM files and maven output
	WorkDir      string   `mapstructure:"work-dir"`
	RemoteLister string   `mapstructure:"remote-lister"`
	Sources      []Source `mapstructure:"artifact-sources"`
}

// Load reads the configuration file. Flags and `MRB_` environment variables override file values.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetDefault("work-dir", ".")
	v.SetDefault("remote-lister", LftpLister)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, xerrors.Errorf("unable to bind flags: %w", err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, xerrors.Errorf("unable to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, xerrors.Errorf("unable to decode config: %w", err)
	}

	for i := range cfg.Sources {
		cfg.Sources[i].Type = cfg.Sources[i].Type.Normalize()
	}

	switch cfg.RemoteLister {
	case LftpLister, HTTPLister:
	default:
		return Config{}, xerrors.Errorf("unknown remote lister: %s", cfg.RemoteLister)
	}
	return cfg, nil
}
