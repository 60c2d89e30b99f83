/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export lays a classified screenplay out on paper.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"screenwriter/internal/fountain"
)

// Page geometry in points. One indent column is one Courier 12pt glyph (0.6em).
const (
	ColumnWidth  = 7.2
	LineHeight   = 12.0
	marginLeft   = 108.0 // 1.5in binding margin
	marginRight  = 72.0
	marginTop    = 72.0
	marginBottom = 72.0
)

var pageSizes = map[string]gofpdf.SizeType{
	"letter": {Wd: 612, Ht: 792},
	"a4":     {Wd: 595.28, Ht: 841.89},
}

// wrapColumns is the text width per element type, in columns.
var wrapColumns = map[fountain.ElementType]int{
	fountain.Header:        60,
	fountain.Action:        60,
	fountain.Character:     38,
	fountain.Dialogue:      35,
	fountain.Parenthetical: 26,
	fountain.Transition:    18,
}

// PDFOptions controls PDF export behavior.
// PageSize is "letter" (default) or "a4". PageNumbers prints "n." top right from page 2 on.
type PDFOptions struct {
	Title       string
	Author      string
	PageSize    string
	PageNumbers bool
}

// WritePDF renders elements to w and returns the number of pages.
// Blank source lines are kept as vertical space using each element's line number.
func WritePDF(w io.Writer, elements []fountain.Element, opt PDFOptions) (int, error) {
	key := strings.ToLower(strings.TrimSpace(opt.PageSize))
	if key == "" {
		key = "letter"
	}
	size, ok := pageSizes[key]
	if !ok {
		return 0, fmt.Errorf("unknown page size %q", opt.PageSize)
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    size,
	})
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(false, marginBottom)
	if opt.Title != "" {
		pdf.SetTitle(opt.Title, true)
	}
	if opt.Author != "" {
		pdf.SetAuthor(opt.Author, true)
	}
	pdf.SetFont("Courier", "", 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pages := 0
	y := 0.0
	newPage := func() {
		pdf.AddPage()
		pages++
		y = marginTop
		if opt.PageNumbers && pages > 1 {
			num := fmt.Sprintf("%d.", pages)
			pdf.Text(size.Wd-marginRight-pdf.GetStringWidth(num), marginTop/2, num)
		}
	}
	bottom := size.Ht - marginBottom

	newPage()
	prevLine := 0
	for _, el := range elements {
		if gap := el.Line - prevLine - 1; gap > 0 && prevLine > 0 {
			y += float64(gap) * LineHeight
		}
		prevLine = el.Line
		x := marginLeft + float64(fountain.Columns(el.Type))*ColumnWidth
		width := float64(wrapColumns[el.Type]) * ColumnWidth
		for _, part := range pdf.SplitLines([]byte(tr(el.Content)), width) {
			if y+LineHeight > bottom {
				newPage()
			}
			// Text draws at the baseline.
			pdf.Text(x, y+LineHeight*0.8, string(part))
			y += LineHeight
		}
	}
	if err := pdf.Output(w); err != nil {
		return pages, fmt.Errorf("write pdf: %w", err)
	}
	return pages, nil
}

// ExportPDF classifies text and writes it as a PDF file at outPath.
func ExportPDF(text, outPath string, opt PDFOptions) (int, error) {
	if strings.TrimSpace(outPath) == "" {
		return 0, fmt.Errorf("output path is required")
	}
	if dir := filepath.Dir(outPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("ensure out dir: %w", err)
		}
	}
	f, err := os.Create(outPath)
	if err != nil {
		return 0, err
	}
	pages, werr := WritePDF(f, fountain.ClassifyText(text), opt)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		_ = os.Remove(outPath)
		return 0, werr
	}
	return pages, nil
}
