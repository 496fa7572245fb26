// moodle-magnet downloads course files from a Moodle instance through its
// web service API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/pwrtux/moodle-magnet/internal/config"
	"github.com/pwrtux/moodle-magnet/internal/domain/download"
	"github.com/pwrtux/moodle-magnet/internal/domain/dto"
	"github.com/pwrtux/moodle-magnet/internal/domain/observability"
	"github.com/pwrtux/moodle-magnet/internal/domain/service"
	"github.com/pwrtux/moodle-magnet/internal/domain/storage"
	infrahttp "github.com/pwrtux/moodle-magnet/internal/infrastructure/http"
	infraobs "github.com/pwrtux/moodle-magnet/internal/infrastructure/observability"
	infrastorage "github.com/pwrtux/moodle-magnet/internal/infrastructure/storage"
	"github.com/pwrtux/moodle-magnet/internal/infrastructure/storage/adapters/s3"
	"github.com/pwrtux/moodle-magnet/internal/moodle"
	"github.com/pwrtux/moodle-magnet/internal/tui"
	"github.com/pwrtux/moodle-magnet/internal/usecase"
)

var (
	tokenFlag       = flag.String("token", "", "Moodle web service token (or set MOODLE_TOKEN)")
	urlFlag         = flag.String("url", "", "Moodle site URL, e.g. https://moodle.example.edu (or set MOODLE_URL)")
	courseIDFlag    = flag.Int64("cid", 0, "download a single course by id instead of all enrolled courses")
	savePathFlag    = flag.String("save_path", "", "directory the course tree is written to (default current directory)")
	extensionsFlag  = flag.String("ext", "", "comma-separated extension allowlist, e.g. pdf,ipynb (default everything)")
	recentFlag      = flag.Bool("recent", false, "sync recently accessed courses instead of all enrolled ones")
	assignmentsFlag = flag.Bool("assignments", false, "also download assignment intro attachments")
	harvestFlag     = flag.Bool("harvest", false, "scrape extra file links out of section and module descriptions")
	interactiveFlag = flag.Bool("interactive", false, "pick courses in a terminal UI before downloading")
	progressFlag    = flag.Bool("progress", true, "render a per-file progress bar")
)

func init() {
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		name := filepath.Base(os.Args[0])
		fmt.Fprintf(out, "Usage: %s [flags]\n\n", name)
		fmt.Fprintf(out, "Downloads course files from a Moodle instance through its web service API.\n")
		fmt.Fprintf(out, "The token and site URL can also come from the MOODLE_TOKEN and MOODLE_URL\n")
		fmt.Fprintf(out, "environment variables or a .env file.\n\n")
		fmt.Fprintf(out, "Examples:\n")
		fmt.Fprintf(out, "  %s --token=a9f2... --url=https://moodle.example.edu\n", name)
		fmt.Fprintf(out, "  %s --cid=42 --ext=pdf,ipynb --save_path=~/uni\n", name)
		fmt.Fprintf(out, "  %s --interactive --assignments\n\n", name)
		fmt.Fprintf(out, "Flags:\n")
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	os.Exit(run())
}

// run carries the whole CLI lifecycle so exit codes flow out of a single
// place: 0 on success (or user abort), 1 when anything was skipped or the
// sync failed, 2 on configuration errors.
func run() int {
	cfg, err := resolveConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "moodle-magnet: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run with --help for usage.")
		return 2
	}

	if err := observability.Initialize(cfg, &infraobs.Factory{}); err != nil {
		fmt.Fprintf(os.Stderr, "moodle-magnet: failed to initialize observability: %v\n", err)
		return 2
	}
	logger, _ := observability.MustGetObservability("main")

	pipeline, err := buildPipeline(cfg)
	if err != nil {
		logger.Error("Startup failed", "error", err)
		fmt.Fprintf(os.Stderr, "moodle-magnet: %v\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := pipeline.Run(ctx, dto.SyncRequest{})
	if report != nil {
		// An interrupted run still reports what it managed to write.
		renderReport(os.Stdout, report, cfg.Download.SavePath)
	}
	switch {
	case errors.Is(err, usecase.ErrAborted):
		fmt.Println("Aborted, nothing downloaded.")
		return 0
	case err != nil:
		logger.Error("Sync failed", "error", err)
		fmt.Fprintf(os.Stderr, "moodle-magnet: %v\n", err)
		return 1
	}
	return report.ExitCode()
}

// resolveConfig loads the environment configuration and overlays the command
// line on top. An explicitly passed flag wins over the environment; flag
// defaults never clobber env-provided values.
func resolveConfig() (*config.Config, error) {
	cfg, err := config.GetProvider().LoadPartial()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { seen[f.Name] = true })

	if seen["token"] {
		cfg.Moodle.Token = *tokenFlag
	}
	if seen["url"] {
		cfg.Moodle.BaseURL = *urlFlag
	}
	if seen["cid"] {
		cfg.Moodle.CourseID = *courseIDFlag
	}
	if seen["save_path"] {
		cfg.Download.SavePath = *savePathFlag
	}
	if seen["ext"] {
		cfg.Download.Extensions = strings.Split(*extensionsFlag, ",")
	}
	if seen["recent"] {
		cfg.Download.UseRecent = *recentFlag
	}
	if seen["assignments"] {
		cfg.Download.IncludeAssignments = *assignmentsFlag
	}
	if seen["harvest"] {
		cfg.Download.HarvestLinks = *harvestFlag
	}
	if seen["progress"] {
		cfg.Download.Progress = *progressFlag
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildPipeline wires storage, the HTTP stack and the Moodle client into a
// ready-to-run sync pipeline.
func buildPipeline(cfg *config.Config) (*usecase.SyncCourses, error) {
	logger, metrics := observability.MustGetObservability("app")

	if err := storage.Initialize(cfg, infrastorage.NewFactory(logger, metrics)); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	store := storage.MustGetStore()

	archive, err := buildArchive(cfg, logger, metrics)
	if err != nil {
		return nil, err
	}

	httpClient := infrahttp.NewClient(cfg.HTTP, logger, metrics)
	api := moodle.NewClient(cfg.Moodle.BaseURL, cfg.Moodle.Token, httpClient, logger, metrics)
	downloader := service.NewDownloader(httpClient, store, cfg.Moodle.Token,
		cfg.Download.Progress, cfg.Download.MaxFileSize, logger, metrics)

	pipeline := usecase.NewSyncCourses(api, downloader, store, archive, cfg, logger, metrics)
	if *interactiveFlag {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			pipeline = pipeline.WithSelector(tui.PickCourses)
		} else {
			logger.Info("Interactive mode requested without a terminal, downloading all courses")
		}
	}
	return pipeline, nil
}

// buildArchive returns the secondary mirror store, or nil when archiving is
// disabled. When the primary store is already S3 the mirror would point at
// the same bucket, so it is skipped.
func buildArchive(cfg *config.Config, logger observability.Logger, metrics observability.Metrics) (storage.FileStore, error) {
	if !cfg.Storage.ArchiveEnabled || cfg.Storage.Adapter == "s3" {
		return nil, nil
	}
	archive, err := s3.New(cfg, cfg.Storage.ArchiveBucket, logger, metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize archive store: %w", err)
	}
	return archive, nil
}

func renderReport(w io.Writer, report *download.Report, savePath string) {
	for _, c := range report.Courses {
		if c.Skipped() {
			fmt.Fprintf(w, "\n%s: skipped: %v\n", c.Course, c.Err)
			continue
		}
		fmt.Fprintf(w, "\n%s\n", c.Course)
		for _, f := range c.Files {
			if f.Skipped() {
				fmt.Fprintf(w, "  skip %s: %v\n", f.Name, f.Err)
				continue
			}
			fmt.Fprintf(w, "  ok   %s (%s)\n", f.Name, formatBytes(f.Bytes))
		}
	}

	fmt.Fprintf(w, "\nDownloaded %d files (%s) to %s in %s\n",
		report.FilesWritten(), formatBytes(report.BytesWritten()),
		savePath, report.Duration().Truncate(time.Millisecond))
	if report.Failed() {
		fmt.Fprintf(w, "Skipped %d files and %d courses, rerun to retry\n",
			report.SkippedFiles(), report.SkippedCourses())
	}
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
