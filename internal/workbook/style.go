package workbook

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/xuri/excelize/v2"
)

// styles holds the header and data style ids of one workbook.
type styles struct {
	header int
	data   int
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "right", "bottom"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "000000", Style: 1}
	}
	return borders
}

// ensureStyles registers both styles on first use.
func (wb *Workbook) ensureStyles() (*styles, error) {
	if wb.styles != nil {
		return wb.styles, nil
	}

	header, err := wb.file.NewStyle(&excelize.Style{
		Border: thinBorders(),
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9D9D9"}},
		Font:   &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, err
	}

	data, err := wb.file.NewStyle(&excelize.Style{
		Border:    thinBorders(),
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	wb.styles = &styles{header: header, data: data}
	return wb.styles, nil
}

// textWidth is the display width of the widest line of s. East Asian wide
// characters count double.
func textWidth(s string) int {
	widest := 0
	for _, line := range strings.Split(s, "\n") {
		if w := runewidth.StringWidth(line); w > widest {
			widest = w
		}
	}
	return widest
}

// columnWidths sizes each column from its widest cell plus padding, capped
// at the configured maximum.
func (wb *Workbook) columnWidths(grid [][]string, columns int) []float64 {
	widths := make([]float64, columns)
	for _, row := range grid {
		for i := 0; i < columns && i < len(row); i++ {
			if w := float64(textWidth(row[i])); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		widths[i] += wb.opts.widthPadding
		if widths[i] > wb.opts.maxWidth {
			widths[i] = wb.opts.maxWidth
		}
	}
	return widths
}

func (wb *Workbook) applyWidths(sheet string, grid [][]string, columns int) error {
	for i, w := range wb.columnWidths(grid, columns) {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := wb.file.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	return nil
}
