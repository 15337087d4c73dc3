package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfPageWidth  = 210 // A4 width in mm
	pdfMargin     = 10  // Margin in mm
	pdfLineHeight = 5   // Line height in mm
	pdfFontSize   = 8   // small enough for a sha256 line to fit on one row
)

// generatePDF renders every manifest touched by the run into a PDF report.
// The manifests are read back from disk and parsed, so the report shows what
// a verifier would see.
func generatePDF(res *Result, title, outputPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle(title, true)
	pdf.AddPage()

	cellWidth := float64(pdfPageWidth - 2*pdfMargin)

	pdf.SetFont("Helvetica", "B", pdfFontSize+4)
	pdf.MultiCell(cellWidth, pdfLineHeight+2, title, "", "L", false)
	pdf.SetFont("Helvetica", "", pdfFontSize+1)
	pdf.MultiCell(cellWidth, pdfLineHeight, res.Summary, "", "L", false)
	if res.Skipped > 0 {
		pdf.MultiCell(cellWidth, pdfLineHeight, fmt.Sprintf("Skipped files: %d", res.Skipped), "", "L", false)
	}
	pdf.Ln(pdfLineHeight)

	for _, target := range res.Targets {
		pdf.SetFont("Helvetica", "B", pdfFontSize+1)
		pdf.SetTextColor(0, 0, 0)
		pdf.MultiCell(cellWidth, pdfLineHeight, fmt.Sprintf("Manifest: %s", target.Path), "", "L", false)
		pdf.Line(pdfMargin, pdf.GetY(), pdfPageWidth-pdfMargin, pdf.GetY())
		pdf.Ln(pdfLineHeight / 2)

		if err := writeManifestLines(pdf, cellWidth, target.Path); err != nil {
			pdf.SetFont("Courier", "", pdfFontSize)
			pdf.SetTextColor(255, 0, 0)
			pdf.MultiCell(cellWidth, pdfLineHeight, fmt.Sprintf("Error reading manifest: %v", err), "", "L", false)
		}
		pdf.Ln(pdfLineHeight)
	}

	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return fmt.Errorf("failed to save PDF to %s: %w", outputPath, err)
	}
	return nil
}

// writeManifestLines prints each entry of a manifest in a fixed-width font.
// Lines that do not parse are shown in red as they appear in the file.
func writeManifestLines(pdf *gofpdf.Fpdf, cellWidth float64, manifestPath string) error {
	f, err := os.Open(manifestPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	pdf.SetFont("Courier", "", pdfFontSize)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		entry, err := ParseLine(line)
		if err != nil {
			pdf.SetTextColor(255, 0, 0)
			pdf.MultiCell(cellWidth, pdfLineHeight, line, "", "L", false)
			continue
		}
		pdf.SetTextColor(0, 0, 0)
		marker := " "
		if entry.Mode == ModeBinary {
			marker = "*"
		}
		pdf.MultiCell(cellWidth, pdfLineHeight, fmt.Sprintf("%s %s%s", entry.Digest, marker, entry.Label), "", "L", false)
	}
	return scanner.Err()
}
