// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-lpc/mdb/decode"
	"github.com/jung-kurt/gofpdf"
)

// SavePDF renders the transcript into the named PDF file.
func SavePDF(tr Transcript, out string) error {
	pdf, err := render(tr)
	if err != nil {
		return err
	}
	err = pdf.OutputFileAndClose(out)
	if err != nil {
		return fmt.Errorf("report: could not save PDF %q: %w", out, err)
	}
	return nil
}

// WritePDF renders the transcript as a PDF document to w.
func WritePDF(w io.Writer, tr Transcript) error {
	pdf, err := render(tr)
	if err != nil {
		return err
	}
	err = pdf.Output(w)
	if err != nil {
		return fmt.Errorf("report: could not write PDF: %w", err)
	}
	return nil
}

func render(tr Transcript) (*gofpdf.Fpdf, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("MDB Transcript", false)
	pdf.SetAuthor("mdb-dump", false)
	pdf.SetCreator("mdb-dump", false)
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	addTitle(pdf, "MDB Transcript")
	addCaptureSection(pdf, tr)
	addSummarySection(pdf, Summarize(tr.Annotations))
	addAnnotationsSection(pdf, tr)

	if pdf.Err() {
		return nil, fmt.Errorf("report: could not render PDF: %w", pdf.Error())
	}
	return pdf, nil
}

func addTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)
}

func addCaptureSection(pdf *gofpdf.Fpdf, tr Transcript) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Capture")
	pdf.Ln(8)

	var (
		x = pdf.GetX()
		y = pdf.GetY()
	)

	created := "-"
	if !tr.Created.IsZero() {
		created = tr.Created.UTC().Format(time.RFC3339)
	}

	pdf.SetFont("Helvetica", "", 10)
	items := []struct {
		label string
		value string
	}{
		{"Source", emptyFallback(tr.Source, "-")},
		{"Decoded", created},
		{"Sample rate", strconv.FormatFloat(tr.Rate, 'g', -1, 64) + " Hz"},
		{"Samples", strconv.Itoa(tr.Samples)},
		{"Duration", duration(tr).String()},
		{"Frames", strconv.Itoa(tr.Frames)},
		{"Blocks", strconv.Itoa(tr.Blocks)},
	}
	for _, item := range items {
		pdf.CellFormat(35, 6, item.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(100, 6, item.value, "", 1, "L", false, 0, "")
	}

	if tr.Digest != "" {
		pdf.SetFont("Courier", "", 8)
		pdf.CellFormat(35, 5, "SHA-256", "", 0, "L", false, 0, "")
		pdf.MultiCell(100, 5, tr.Digest, "", "L", false)

		png, err := DigestToQR(tr.Digest, 256)
		if err == nil {
			const name = "digest-qr"
			opts := gofpdf.ImageOptions{ImageType: "PNG"}
			pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
			pdf.ImageOptions(name, x+145, y, 35, 35, false, opts, 0, "")
		}
	}
	pdf.Ln(4)
}

func addSummarySection(pdf *gofpdf.Fpdf, sum Summary) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	items := []struct {
		label string
		value int
	}{
		{"Annotations", sum.Annotations},
		{"Commands", sum.Commands},
		{"Responses", sum.Responses},
		{"ACK", sum.ACK},
		{"NAK", sum.NAK},
		{"Checksum OK", sum.ChecksumOK},
		{"Checksum errors", sum.ChecksumErr},
		{"Malformed", sum.Malformed},
		{"Framing errors", sum.Framing},
		{"Glitches", sum.Glitches},
		{"Incomplete", sum.Incomplete},
	}
	for _, item := range items {
		pdf.CellFormat(50, 6, item.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, strconv.Itoa(item.value), "", 1, "L", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(50, 6, "Overall", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, healthLabel(sum), "", 1, "L", false, 0, "")
	pdf.Ln(4)
}

func addAnnotationsSection(pdf *gofpdf.Fpdf, tr Transcript) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Annotations")
	pdf.Ln(9)

	if len(tr.Annotations) == 0 {
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 6, "No annotations recorded.", "", "L", false)
		return
	}

	headers := []string{"Time", "Samples", "Category", "Field", "Value", "Label"}
	widths := []float64{26, 32, 22, 24, 14, 62}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 9)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 6, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	period := 0.0
	if tr.Rate > 0 {
		period = 1 / tr.Rate
	}

	pdf.SetFont("Courier", "", 8)
	for _, ann := range tr.Annotations {
		value := "-"
		if ann.Kind == decode.Value {
			value = fmt.Sprintf("%02x", ann.Value)
		}
		setCategoryColor(pdf, ann.Category)
		values := []string{
			decode.Time(ann.Start, period).String(),
			fmt.Sprintf("%d-%d", ann.Start, ann.End),
			ann.Category.String(),
			ann.Field.String(),
			value,
			ann.Label,
		}
		renderTableRow(pdf, widths, values, 4.5)
	}
	pdf.SetTextColor(0, 0, 0)
}

func setCategoryColor(pdf *gofpdf.Fpdf, cat decode.Category) {
	switch cat {
	case decode.Error:
		pdf.SetTextColor(200, 0, 0)
	case decode.Warning:
		pdf.SetTextColor(200, 120, 0)
	case decode.Success:
		pdf.SetTextColor(0, 140, 0)
	default:
		pdf.SetTextColor(0, 0, 0)
	}
}

func renderTableRow(pdf *gofpdf.Fpdf, widths []float64, values []string, lineHeight float64) {
	var (
		x0       = pdf.GetX()
		y0       = pdf.GetY()
		maxLines = 1
		cols     = make([][]string, len(values))
	)
	for i, val := range values {
		lines := pdf.SplitText(emptyFallback(val, "-"), widths[i]-2)
		if len(lines) == 0 {
			lines = []string{""}
		}
		cols[i] = lines
		if len(lines) > maxLines {
			maxLines = len(lines)
		}
	}

	height := float64(maxLines) * lineHeight
	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	if y0+height > pageHeight-bottom {
		pdf.AddPage()
		x0, y0 = pdf.GetX(), pdf.GetY()
	}

	x := x0
	for i, lines := range cols {
		pdf.SetXY(x, y0)
		pdf.MultiCell(widths[i], lineHeight, strings.Join(lines, "\n"), "1", "L", false)
		x += widths[i]
	}
	pdf.SetXY(x0, y0+height)
}

func duration(tr Transcript) time.Duration {
	if !(tr.Rate > 0) {
		return 0
	}
	return decode.Time(tr.Samples, 1/tr.Rate)
}

func healthLabel(sum Summary) string {
	if sum.Healthy() {
		return "OK"
	}
	return fmt.Sprintf("%d ERROR(S)", sum.Errors())
}

func emptyFallback(val, fallback string) string {
	if strings.TrimSpace(val) == "" {
		return fallback
	}
	return val
}
