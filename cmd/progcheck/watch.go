package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"progcheck/internal/config"
	"progcheck/internal/verify"
)

const debounceDelay = 100 * time.Millisecond

func newWatchCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch DIR",
		Short: "Verify program files again whenever they change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return newWatcher(cfg, cmd.OutOrStdout()).run(ctx, args[0], nil)
		},
	}
}

type watcher struct {
	checker  *verify.Checker
	out      io.Writer
	log      commonlog.Logger
	delay    time.Duration
	sessions map[string]*verify.Session
}

func newWatcher(cfg config.Config, out io.Writer) *watcher {
	return &watcher{
		checker:  cfg.NewChecker(),
		out:      out,
		log:      commonlog.GetLogger("progcheck.watch"),
		delay:    debounceDelay,
		sessions: make(map[string]*verify.Session),
	}
}

// run watches dir and its subdirectories until ctx is done. ready, when set,
// is called once every directory is being watched.
func (w *watcher) run(ctx context.Context, dir string, ready func()) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := addTree(fsw, dir); err != nil {
		return fmt.Errorf("error adding directory to watcher: %w", err)
	}

	fmt.Fprintf(w.out, "Watching %s for changes to %s files\n", dir, sourceExtension)
	if ready != nil {
		ready()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 && isDir(event.Name) {
				if err := addTree(fsw, event.Name); err != nil {
					w.log.Errorf("watch: %s", err)
				}
				continue
			}
			w.handleFileEvent(ctx, event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Errorf("watch: %s", err)
		}
	}
}

// addTree watches root and every directory below it.
func addTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (w *watcher) handleFileEvent(ctx context.Context, event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || filepath.Ext(event.Name) != sourceExtension {
		return
	}
	// wait for a while after a change so one save is checked once it is complete
	time.Sleep(w.delay)

	source, err := readSource(event.Name)
	if err != nil {
		w.log.Errorf("watch: %s", err)
		return
	}
	session, ok := w.sessions[event.Name]
	if !ok {
		session = verify.NewSession(w.checker)
		w.sessions[event.Name] = session
	}
	report, err := session.Verify(ctx, source)
	printResults(w.out, []fileResult{{path: event.Name, source: source, report: report, err: err}}, false)
}
