package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/MrSnakeDoc/snote/internal/domain"
	"github.com/MrSnakeDoc/snote/internal/prefs"
)

const dateLayout = "Jan 2, 2006 15:04"

type printer struct {
	out   io.Writer
	prefs prefs.Preferences
}

var (
	bold  = color.New(color.Bold)
	faint = color.New(color.Faint)
	idCol = color.New(color.FgHiYellow, color.Faint)
)

func iconLabel(i domain.Icon) string {
	if i == "" {
		return "-"
	}
	return i.Label()
}

func (p printer) entries(list []*domain.Entry) {
	if len(list) == 0 {
		_, _ = color.New(color.Faint, color.Italic).Fprintln(p.out, " no entries")
		return
	}
	if p.prefs.ViewMode == prefs.ViewGallery {
		p.gallery(list)
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60

	header := []any{bold.Sprint("#"), bold.Sprint("ID"), bold.Sprint("Icon"), bold.Sprint("Title"), bold.Sprint("Date")}
	if !p.prefs.HidePreview {
		header = append(header, bold.Sprint("Preview"))
	}
	tbl.AddRow(header...)

	for _, e := range list {
		row := []any{strconv.FormatInt(e.Index, 10), idCol.Sprint(e.ID), iconLabel(e.Icon), e.Title, e.Date.Local().Format(dateLayout)}
		if !p.prefs.HidePreview {
			row = append(row, e.Preview)
		}
		tbl.AddRow(row...)
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(p.out, tbl)
}

// gallery prints one card per entry.
func (p printer) gallery(list []*domain.Entry) {
	for _, e := range list {
		_, _ = bold.Fprintf(p.out, "%s", e.Title)
		_, _ = faint.Fprintf(p.out, "  #%d  %s  %s\n", e.Index, iconLabel(e.Icon), e.Date.Local().Format(dateLayout))
		if !p.prefs.HidePreview {
			tbl := uitable.New()
			tbl.MaxColWidth = 72
			tbl.Wrap = true
			tbl.AddRow("  ", e.Preview)
			_, _ = fmt.Fprintln(p.out, tbl)
		}
		_, _ = idCol.Fprintln(p.out, "  "+e.ID)
		_, _ = fmt.Fprintln(p.out)
	}
}

func (p printer) entry(e *domain.Entry) {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 80
	tbl.Wrap = true

	tbl.AddRow(bold.Sprint("ID"), e.ID)
	tbl.AddRow(bold.Sprint("Index"), e.Index)
	tbl.AddRow(bold.Sprint("Title"), e.Title)
	tbl.AddRow(bold.Sprint("Icon"), iconLabel(e.Icon))
	tbl.AddRow(bold.Sprint("Created"), e.Date.Local().Format(dateLayout))
	if e.LastUpdated != nil {
		tbl.AddRow(bold.Sprint("Updated"), e.LastUpdated.Local().Format(dateLayout))
	}
	tbl.AddRow(bold.Sprint("Content"), e.Content)
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(p.out, tbl)
}

func (p printer) icons(set *domain.IconSet) {
	used := make(map[domain.Icon]bool, len(set.Used))
	for _, i := range set.Used {
		used[i] = true
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Key"), bold.Sprint("Label"), bold.Sprint("In use"))
	for _, info := range set.Icons {
		inUse := ""
		if used[info.Key] {
			inUse = "yes"
		}
		tbl.AddRow(string(info.Key), info.Label, inUse)
	}
	_, _ = fmt.Fprintln(p.out, tbl)
}

func (p printer) preferences(pr prefs.Preferences) {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("font"), string(pr.Font))
	tbl.AddRow(bold.Sprint("view"), string(pr.ViewMode))
	tbl.AddRow(bold.Sprint("hide-preview"), strconv.FormatBool(pr.HidePreview))
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(p.out, tbl)
}
