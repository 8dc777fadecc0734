package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/julianstephens/tokumei/internal/constants"
	"github.com/julianstephens/tokumei/internal/models"
	"github.com/julianstephens/tokumei/internal/utils"
)

// ListOptions controls which per-entry details RenderDiaries prints.
type ListOptions struct {
	Title string
	// Empty is printed instead of the list when there are no entries.
	Empty     string
	ShowSaves bool
	ShowSaved bool
	// Full prints whole entries instead of previews.
	Full bool
}

// RenderDiaries writes a plain-text diary list.
func RenderDiaries(w io.Writer, diaries []models.Diary, loc *time.Location, opts ListOptions) {
	if len(diaries) == 0 {
		fmt.Fprintln(w, opts.Empty)
		return
	}

	fmt.Fprintf(w, "%s (%d):\n", opts.Title, len(diaries))
	for _, d := range diaries {
		line := fmt.Sprintf("  [%s] %s", d.ID, formatTime(d.CreatedAt, loc))
		if opts.ShowSaves {
			line += fmt.Sprintf(" - saved %s", plural(d.Saves(), "time", "times"))
		}
		if opts.ShowSaved && d.SavedAt != nil {
			line += fmt.Sprintf(" - kept %s", formatTime(*d.SavedAt, loc))
		}
		fmt.Fprintln(w, line)

		if opts.Full {
			for _, l := range strings.Split(strings.TrimRight(d.Content, "\n"), "\n") {
				fmt.Fprintf(w, "      %s\n", l)
			}
			continue
		}
		fmt.Fprintf(w, "      %s\n", d.Preview(constants.PreviewLength))
	}
}

func formatTime(ts models.Timestamp, loc *time.Location) string {
	if ts.IsZero() {
		return "unknown time"
	}
	return utils.FormatLocal(ts.Time, loc)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
