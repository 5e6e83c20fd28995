package cmd

import (
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/medley/internal/scan"
	"github.com/Iron-Ham/medley/internal/track"
)

var scanCmd = &cobra.Command{
	Use:   "scan [root...]",
	Short: "Discover tracks under the scan roots",
	Long: `Walk the given roots (or the configured scan roots) and add every
discovered audio file to the library, then save it. Hidden files and
directories are skipped unless configured otherwise, and excluded path
prefixes are never entered.`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	roots := e.scanRoots(args)
	if len(roots) == 0 {
		return fmt.Errorf("no scan roots: pass directories as arguments or set scan.roots in config")
	}
	for i, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return fmt.Errorf("failed to resolve root %s: %w", root, err)
		}
		roots[i] = abs
	}

	opts := []scan.Option{scan.WithExclude(e.cfg.Scan.Exclude...)}
	if !e.cfg.Scan.SkipHidden {
		opts = append(opts, scan.WithHidden())
	}
	scanner := scan.New(opts...)

	var seen, added atomic.Int64

	// One goroutine per root; the library serializes its own mutations.
	var wg conc.WaitGroup
	for _, root := range roots {
		wg.Go(func() {
			log := e.log.WithComponent("scan").With("root", root)
			for path := range scanner.Paths(root) {
				seen.Add(1)
				t, err := track.Load(path)
				if err != nil {
					log.Debug("unloadable file skipped", "path", path, "error", err)
					continue
				}
				added.Add(int64(len(e.lib.Add(t))))
			}
			log.Info("root scanned")
		})
	}
	wg.Wait()

	if e.lib.Dirty() {
		if err := e.st.Save(e.lib); err != nil {
			return fmt.Errorf("failed to save library: %w", err)
		}
	}

	fmt.Println(titleStyle.Render("Scan complete"))
	fmt.Printf("  Roots:   %d\n", len(roots))
	fmt.Printf("  Files:   %d\n", seen.Load())
	fmt.Printf("  Added:   %s\n", okStyle.Render(fmt.Sprintf("%d", added.Load())))
	fmt.Printf("  Library: %d tracks at %s\n", e.lib.Len(), mutedStyle.Render(e.st.Path()))

	return nil
}
