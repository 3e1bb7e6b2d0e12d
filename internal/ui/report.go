package ui

import (
	"fmt"
	"strings"

	"github.com/danzek/android-sms2csv/androidsms"
)

// RenderReport formats the found / not found summary of a run.
func RenderReport(r *androidsms.Result) string {
	var b strings.Builder
	b.WriteString("\n" + TitleStyle.Render("Found:") + "\n")
	for _, fr := range r.Found() {
		fmt.Fprintf(&b, "  %s %s %s\n", formatMarker(true), fr.Format.Description,
			DimStyle.Render(fmt.Sprintf("(%d files, %d messages)", fr.Files, fr.Stats.Messages)))
	}
	b.WriteString(TitleStyle.Render("Not Found:") + "\n")
	for _, fr := range r.NotFound() {
		fmt.Fprintf(&b, "  %s %s\n", formatMarker(false), DimStyle.Render(fr.Format.Description))
	}
	if len(r.Failures) > 0 {
		b.WriteString(ErrStyle.Render(fmt.Sprintf("%d files failed:", len(r.Failures))) + "\n")
		for _, f := range r.Failures {
			fmt.Fprintf(&b, "  %s %s\n", ErrStyle.Render("!"), f.Err)
		}
	}
	return b.String()
}
