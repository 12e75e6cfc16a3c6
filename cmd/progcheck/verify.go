package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"progcheck/internal/config"
	perrors "progcheck/internal/errors"
	"progcheck/internal/verify"
)

// sourceExtension marks the program files collected from directories.
const sourceExtension = ".prog"

type fileResult struct {
	path   string
	source string
	report *verify.Report
	err    error
}

func newVerifyCommand(opts *globalOptions) *cobra.Command {
	var (
		jobs       int
		noProgress bool
		strict     bool
	)

	cmd := &cobra.Command{
		Use:   "verify [paths...]",
		Short: "Check that every assertion holds for all inputs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			files, err := collectFiles(args)
			if err != nil {
				return err
			}

			startTime := time.Now()
			var bar *progressbar.ProgressBar
			if len(files) > 1 && !noProgress {
				bar = newProgressBar(cmd.ErrOrStderr(), len(files))
			}
			results, err := verifyFiles(cmd.Context(), cfg, files, jobs, bar)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := printResults(out, results, strict)
			summary := fmt.Sprintf("Checked %d file(s) in %s", len(files), formatDuration(time.Since(startTime)))
			if failed {
				fmt.Fprintln(out, color.RedString(summary))
				return errChecksFailed
			}
			fmt.Fprintln(out, color.GreenString(summary))
			return nil
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "Number of files checked concurrently")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Do not show a progress bar")
	cmd.Flags().BoolVar(&strict, "strict", false, "Treat inconclusive results as failures")
	return cmd
}

// collectFiles expands directories into the program files below them.
// Files named explicitly are kept whatever their extension.
func collectFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		var found []string
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(p) == sourceExtension {
				found = append(found, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("error walking directory %s: %w", path, err)
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

// verifyFiles checks files with at most jobs workers, each file in its own
// session. Results keep the order of files.
func verifyFiles(ctx context.Context, cfg config.Config, files []string, jobs int, bar *progressbar.ProgressBar) ([]fileResult, error) {
	results := make([]fileResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))
	for i, path := range files {
		g.Go(func() error {
			if bar != nil {
				defer bar.Add(1)
			}
			source, err := readSource(path)
			if err != nil {
				return err
			}
			session := verify.NewSession(cfg.NewChecker())
			report, err := session.Verify(ctx, source)
			results[i] = fileResult{path: path, source: source, report: report, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if bar != nil {
		_ = bar.Finish()
	}
	return results, nil
}

func newProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("verifying"),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

// printResults renders every diagnostic followed by one status line per
// file. It reports whether any file failed.
func printResults(w io.Writer, results []fileResult, strict bool) bool {
	failed := false
	for _, r := range results {
		reporter := perrors.NewErrorReporter(r.path, r.source)
		if r.err != nil {
			fmt.Fprint(w, reporter.FormatError(perrors.FromError(r.err)))
			fmt.Fprintf(w, "%s: %s\n", r.path, color.RedString("rejected"))
			failed = true
			continue
		}

		for _, diag := range perrors.FromReport(r.report) {
			fmt.Fprint(w, reporter.FormatError(diag))
		}
		fmt.Fprintf(w, "%s: %s\n", r.path, colorStatus(r.report.Status))
		switch r.report.Status {
		case verify.Violated:
			failed = true
		case verify.Inconclusive:
			failed = failed || strict
		}
	}
	return failed
}

func colorStatus(status verify.Status) string {
	switch status {
	case verify.Verified, verify.Equivalent:
		return color.GreenString(status.String())
	case verify.Violated, verify.NotEquivalent:
		return color.RedString(status.String())
	default:
		return color.YellowString(status.String())
	}
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return fmt.Sprintf("%.2fmin", d.Minutes())
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1000000.0)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000.0)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}
