// Package summary renders the per-run result table as a PNG for the
// Telegram notification.
package summary

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"os"
	"runtime"
	"strings"
	"time"
	"unicode/utf8"

	"idcrenew/internal/runner"

	"github.com/fogleman/gg"
)

// Table styling constants — rendered at 2x scale for Telegram clarity
const (
	cellPaddingX  = 20
	rowHeight     = 64.0
	headerHeight  = 80.0
	fontSize      = 26
	titleFontSz   = 38
	titlePadding  = 100.0
	footerPadding = 70.0
	minColWidth   = 120.0
	maxDetailLen  = 60
)

// Light theme colors
var (
	bgColor         = color.RGBA{R: 245, G: 247, B: 250, A: 255} // Light gray bg
	titleColor      = color.RGBA{R: 30, G: 41, B: 59, A: 255}    // Dark slate
	headerBgColor   = color.RGBA{R: 37, G: 99, B: 235, A: 255}   // Blue
	headerTextColor = color.RGBA{R: 255, G: 255, B: 255, A: 255} // White
	rowEvenColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255} // White
	rowOddColor     = color.RGBA{R: 241, G: 245, B: 249, A: 255} // Subtle blue-gray
	textColor       = color.RGBA{R: 30, G: 41, B: 59, A: 255}    // Dark slate
	successColor    = color.RGBA{R: 22, G: 163, B: 74, A: 255}   // Green
	failureColor    = color.RGBA{R: 220, G: 38, B: 38, A: 255}   // Red
	borderColor     = color.RGBA{R: 203, G: 213, B: 225, A: 255} // Slate border
	footerColor     = color.RGBA{R: 100, G: 116, B: 139, A: 255} // Muted slate
)

// column definition for the table.
type column struct {
	header string
	field  func(r *runner.Result) string
}

// columns defines the table layout; results stay in run order.
var columns = []column{
	{"Account", func(r *runner.Result) string { return r.Email }},
	{"Status", func(r *runner.Result) string { return string(r.Status) }},
	{"Duration", func(r *runner.Result) string { return r.Elapsed.Round(100 * time.Millisecond).String() }},
	{"Detail", func(r *runner.Result) string { return truncate(r.Detail, maxDetailLen) }},
}

// findFont locates a font file across Linux and Windows paths.
func findFont(bold bool) string {
	var candidates []string
	if runtime.GOOS == "windows" {
		winRoot := os.Getenv("WINDIR")
		if winRoot == "" {
			winRoot = `C:\Windows`
		}
		if bold {
			candidates = []string{winRoot + `\Fonts\arialbd.ttf`}
		} else {
			candidates = []string{winRoot + `\Fonts\arial.ttf`}
		}
	} else {
		if bold {
			candidates = []string{
				"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
				"/usr/share/fonts/TTF/DejaVuSans-Bold.ttf",
			}
		} else {
			candidates = []string{
				"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
				"/usr/share/fonts/TTF/DejaVuSans.ttf",
			}
		}
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return candidates[0]
}

// Render draws the run results as a table image and returns PNG bytes.
func Render(results []runner.Result) ([]byte, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("no results to render")
	}

	boldFont := findFont(true)
	regularFont := findFont(false)

	// ---- Step 1: Measure column widths ----
	tmpDC := gg.NewContext(1, 1)
	if err := tmpDC.LoadFontFace(boldFont, fontSize); err != nil {
		return nil, fmt.Errorf("failed to load bold font: %w", err)
	}

	colWidths := make([]float64, len(columns))
	for i, col := range columns {
		w, _ := tmpDC.MeasureString(col.header)
		colWidths[i] = w + cellPaddingX*2
		if colWidths[i] < minColWidth {
			colWidths[i] = minColWidth
		}
	}

	if err := tmpDC.LoadFontFace(regularFont, fontSize); err != nil {
		return nil, fmt.Errorf("failed to load regular font: %w", err)
	}
	for _, r := range results {
		r := r
		for i, col := range columns {
			w, _ := tmpDC.MeasureString(col.field(&r))
			if needed := w + cellPaddingX*2; needed > colWidths[i] {
				colWidths[i] = needed
			}
		}
	}

	// ---- Step 2: Calculate canvas size ----
	var totalWidth float64
	for _, w := range colWidths {
		totalWidth += w
	}
	totalRowHeight := rowHeight * float64(len(results))

	canvasWidth := totalWidth + 80 // 40px margin each side
	canvasHeight := titlePadding + headerHeight + totalRowHeight + footerPadding

	// ---- Step 3: Draw ----
	dc := gg.NewContext(int(canvasWidth), int(canvasHeight))

	dc.SetColor(bgColor)
	dc.Clear()

	// Title
	dc.LoadFontFace(boldFont, titleFontSz)
	dc.SetColor(titleColor)
	title := fmt.Sprintf("56idc Login Summary  —  %s", time.Now().Format("02 Jan 2006, 03:04 PM"))
	dc.DrawStringAnchored(title, canvasWidth/2, titlePadding/2+2, 0.5, 0.5)

	tableX := 40.0
	tableY := titlePadding

	// Header row
	dc.SetColor(headerBgColor)
	dc.DrawRoundedRectangle(tableX, tableY, totalWidth, headerHeight, 16)
	dc.Fill()

	dc.LoadFontFace(boldFont, fontSize)
	dc.SetColor(headerTextColor)
	x := tableX
	for i, col := range columns {
		dc.DrawStringAnchored(col.header, x+colWidths[i]/2, tableY+headerHeight/2, 0.5, 0.5)
		x += colWidths[i]
	}

	// Data rows
	dc.LoadFontFace(regularFont, fontSize)
	curY := tableY + headerHeight

	for rowIdx, r := range results {
		r := r

		if rowIdx%2 == 0 {
			dc.SetColor(rowEvenColor)
		} else {
			dc.SetColor(rowOddColor)
		}
		dc.DrawRectangle(tableX, curY, totalWidth, rowHeight)
		dc.Fill()

		dc.SetColor(borderColor)
		dc.SetLineWidth(0.5)
		dc.DrawLine(tableX, curY+rowHeight, tableX+totalWidth, curY+rowHeight)
		dc.Stroke()

		x := tableX
		for i, col := range columns {
			if col.header == "Status" {
				if r.Status == runner.StatusSuccess {
					dc.SetColor(successColor)
				} else {
					dc.SetColor(failureColor)
				}
			} else {
				dc.SetColor(textColor)
			}
			dc.DrawStringAnchored(col.field(&r), x+cellPaddingX, curY+rowHeight/2, 0, 0.5)
			x += colWidths[i]
		}

		curY += rowHeight
	}

	// Outer table border
	dc.SetColor(borderColor)
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(tableX, tableY, totalWidth, headerHeight+totalRowHeight, 16)
	dc.Stroke()

	// Footer with overall counts
	sum := runner.Summary{Results: results}
	dc.LoadFontFace(regularFont, 24)
	dc.SetColor(footerColor)
	footer := fmt.Sprintf("Succeeded: %d   Failed: %d", sum.Succeeded(), sum.Failed())
	dc.DrawStringAnchored(footer, canvasWidth/2, canvasHeight-28, 0.5, 0.5)

	// ---- Step 4: Encode to PNG ----
	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > maxLen {
		runes := []rune(s)
		return string(runes[:maxLen]) + "…"
	}
	return s
}
