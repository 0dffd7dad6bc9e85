package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/xerrors"

	"github.com/aquasecurity/maven-repo-builder/pkg/builder"
	"github.com/aquasecurity/maven-repo-builder/pkg/config"
	"github.com/aquasecurity/maven-repo-builder/pkg/db"
	"github.com/aquasecurity/maven-repo-builder/pkg/downloader"
	"github.com/aquasecurity/maven-repo-builder/pkg/fileutil"
	"github.com/aquasecurity/maven-repo-builder/pkg/index"
	"github.com/aquasecurity/maven-repo-builder/pkg/metadata"
	"github.com/aquasecurity/maven-repo-builder/pkg/runner"
)

var (
	rootCmd = &cobra.Command{
		Use:          "maven-repo-builder",
		Short:        "Build a prioritized index of Maven artifacts from configured sources",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelInfo
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List artifacts of all configured sources and export the index",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
)

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "config.yaml", "configuration file")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("work-dir", "", "directory for fetched POM files and maven output")
	rootCmd.PersistentFlags().String("remote-lister", "", "remote repository lister (lftp or http)")

	listCmd.Flags().Bool("progress", false, "show a progress bar")
	listCmd.Flags().StringP("output", "o", "", "write the index as JSON to the file")
	listCmd.Flags().String("db-dir", "", "write the index into a SQLite database in the directory")
	listCmd.Flags().Int("retry", 3, "max retries of repository HTTP requests")
	rootCmd.AddCommand(listCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("%+v", err)
	}
}

func runList(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(path, changedFlags(cmd))
	if err != nil {
		return xerrors.Errorf("config error: %w", err)
	}

	flags := cmd.Flags()
	retry, _ := flags.GetInt("retry")
	d, err := downloader.NewDownloader(downloader.Option{RetryMax: retry})
	if err != nil {
		return xerrors.Errorf("downloader error: %w", err)
	}

	readers := builder.DefaultReaders(builder.ReaderOption{
		Runner:       runner.OSRunner{},
		Downloader:   d,
		HTTPClient:   downloader.NewHTTPClient(0),
		WorkDir:      cfg.WorkDir,
		RemoteLister: cfg.RemoteLister,
	})

	progress, _ := flags.GetBool("progress")
	b := builder.NewBuilder(readers, builder.WithProgress(progress))

	idx, buildErr := b.Build(cmd.Context(), cfg.Sources)
	if idx == nil {
		return xerrors.Errorf("build error: %w", buildErr)
	}
	printSummary(cmd.OutOrStdout(), idx)

	var errs error
	if buildErr != nil {
		errs = multierror.Append(errs, buildErr)
	}

	if output, _ := flags.GetString("output"); output != "" {
		if err = fileutil.WriteJSON(output, idx.Artifacts); err != nil {
			errs = multierror.Append(errs, xerrors.Errorf("json export error: %w", err))
		}
	}

	if dbDir, _ := flags.GetString("db-dir"); dbDir != "" {
		if err = export(dbDir, idx, len(cfg.Sources)); err != nil {
			errs = multierror.Append(errs, xerrors.Errorf("db export error: %w", err))
		}
	}
	return errs
}

// changedFlags returns the config flags explicitly set on the command line.
func changedFlags(cmd *cobra.Command) *pflag.FlagSet {
	fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	cmd.Flags().Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "work-dir", "remote-lister":
			fs.AddFlag(f)
		}
	})
	return fs
}

func printSummary(w io.Writer, idx *index.Index) {
	for _, ga := range idx.Keys() {
		priorities := idx.Get(index.SplitKey(ga))
		for _, p := range idx.Priorities() {
			versions, ok := priorities[p]
			if !ok {
				continue
			}
			for _, v := range versions.Keys() {
				fmt.Fprintf(w, "%s:%s\t%d\t%s\n", ga, v, p, versions[v])
			}
		}
	}
	fmt.Fprintf(w, "%d artifacts indexed\n", idx.Len())
}

// export replaces the database in dbDir with the index. Metadata is written last, so a
// failed export leaves no metadata describing a stale database.
func export(dbDir string, idx *index.Index, sources int) error {
	meta := metadata.New(dbDir)
	if err := meta.Delete(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return xerrors.Errorf("unable to remove the old metadata: %w", err)
	}
	if err := os.Remove(db.Path(dbDir)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return xerrors.Errorf("unable to remove the old db: %w", err)
	}

	dbc, err := db.New(dbDir)
	if err != nil {
		return xerrors.Errorf("db open error: %w", err)
	}
	defer dbc.Close()

	if err = dbc.Init(); err != nil {
		return xerrors.Errorf("db init error: %w", err)
	}
	if err = dbc.InsertIndex(idx); err != nil {
		return xerrors.Errorf("db insert error: %w", err)
	}
	if err = dbc.VacuumDB(); err != nil {
		return xerrors.Errorf("db vacuum error: %w", err)
	}

	meta = metadata.New(dbc.Dir())
	if err = meta.Update(metadata.Metadata{
		Version:   db.SchemaVersion,
		Sources:   sources,
		Artifacts: idx.Len(),
		CreatedAt: idx.CreatedAt,
	}); err != nil {
		return xerrors.Errorf("metadata update error: %w", err)
	}
	slog.Info("Index exported", slog.String("dir", dbc.Dir()))
	return nil
}
