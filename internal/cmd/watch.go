package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/medley/internal/scan"
	"github.com/Iron-Ham/medley/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [root...]",
	Short: "Keep the library synchronized with the filesystem",
	Long: `Watch the given roots (or the configured scan roots) for created,
modified, and deleted files, updating the library as they happen. A dirty
library is saved periodically and once more on shutdown. Stop with Ctrl-C.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	roots := e.scanRoots(args)
	if len(roots) == 0 {
		return fmt.Errorf("no watch roots: pass directories as arguments or set scan.roots in config")
	}

	opts := []scan.Option{scan.WithExclude(e.cfg.Scan.Exclude...)}
	if !e.cfg.Scan.SkipHidden {
		opts = append(opts, scan.WithHidden())
	}

	w, err := watch.New(
		watch.Config{Library: e.lib, Store: e.st, Roots: roots},
		watch.WithLogger(e.log),
		watch.WithSaveInterval(e.cfg.Watch.SaveInterval),
		watch.WithScanner(scan.New(opts...)),
	)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	fmt.Println(titleStyle.Render("Watching"))
	for _, root := range roots {
		fmt.Printf("  %s\n", root)
	}
	fmt.Println(mutedStyle.Render("Press Ctrl-C to stop"))

	<-ctx.Done()

	if err := w.Stop(); err != nil {
		e.log.Warn("watcher shutdown error", "error", err)
	}

	// Final flush so nothing observed during the session is lost.
	if e.lib.Dirty() {
		if err := e.st.Save(e.lib); err != nil {
			fmt.Println(warnStyle.Render("Final save failed; changes will be rediscovered next scan"))
			return err
		}
	}
	fmt.Println(okStyle.Render("Library saved"))

	return nil
}
