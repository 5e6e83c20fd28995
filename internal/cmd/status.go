package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/medley/internal/track"
	"github.com/Iron-Ham/medley/internal/util"
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the library contents",
	Long:  `Display the persisted library: its size, location, and the tracked files.`,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().IntVarP(&statusLimit, "limit", "n", 20, "maximum number of tracks to list (0 for all)")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	fmt.Println(titleStyle.Render(fmt.Sprintf("Library: %s", e.lib.Name())))
	fmt.Printf("Path:   %s\n", e.st.Path())
	fmt.Printf("Tracks: %d\n", e.lib.Len())
	fmt.Println()

	content := e.lib.Content()
	shown := len(content)
	if statusLimit > 0 && shown > statusLimit {
		shown = statusLimit
	}

	for _, it := range content[:shown] {
		t, ok := it.(*track.Track)
		if !ok {
			continue
		}
		title := util.TruncateANSI(t.Title, 40)
		path := util.ShortenPath(t.Path, 60)
		fmt.Printf("  %-40s %s\n", title, mutedStyle.Render(path))
	}
	if shown < len(content) {
		fmt.Println(mutedStyle.Render(fmt.Sprintf("  ... and %d more", len(content)-shown)))
	}

	return nil
}
