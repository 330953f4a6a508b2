// Package reporting renders workflow run reports for download.
package reporting

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/jung-kurt/gofpdf"
	"github.com/netscenehq/netscene/internal/core/domain"
)

// PDFExporter renders a WorkflowReport as a printable PDF summary.
type PDFExporter struct{}

// NewPDFExporter creates a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Export generates the PDF for one run report.
func (e *PDFExporter) Export(report domain.WorkflowReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	e.addHeader(pdf, report)
	e.addRunSummary(pdf, report)
	if report.Scene != nil {
		e.addTypeBreakdown(pdf, *report.Scene)
		e.addDeviceTable(pdf, *report.Scene)
	}
	e.addErrors(pdf, report)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) addHeader(pdf *gofpdf.Fpdf, report domain.WorkflowReport) {
	pdf.SetFont("Arial", "B", 22)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 14, "Network Topology Report", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, fmt.Sprintf("Run %s", report.RunID), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6,
		fmt.Sprintf("Generated: %s", report.Finished.Format("2006-01-02 15:04")),
		"", 1, "L", false, 0, "")
	pdf.Ln(6)
}

func (e *PDFExporter) addRunSummary(pdf *gofpdf.Fpdf, report domain.WorkflowReport) {
	r, g, b := statusColor(report.Status)
	pdf.SetFillColor(r, g, b)
	pdf.Rect(20, pdf.GetY(), 170, 18, "F")

	y := pdf.GetY()
	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetXY(25, y+5)
	pdf.CellFormat(60, 8, string(report.Status), "", 0, "L", false, 0, "")

	devices, edges := 0, 0
	if report.Scene != nil {
		devices = len(report.Scene.Devices)
		edges = len(report.Scene.Edges)
	}
	pdf.SetFont("Arial", "", 11)
	pdf.SetXY(90, y+6)
	pdf.CellFormat(95, 6,
		fmt.Sprintf("%d devices, %d links, %d item errors", devices, edges, len(report.Errors)),
		"", 0, "R", false, 0, "")

	pdf.SetY(y + 24)
	pdf.SetTextColor(0, 0, 0)
}

func (e *PDFExporter) addTypeBreakdown(pdf *gofpdf.Fpdf, scene domain.Scene) {
	counts := map[domain.DeviceType]int{}
	for _, d := range scene.Devices {
		counts[d.Type]++
	}
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, string(t))
	}
	sort.Strings(types)

	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 9, "Devices by Type", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, t := range types {
		pdf.CellFormat(60, 6, t, "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", counts[domain.DeviceType(t)]), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)
}

func (e *PDFExporter) addDeviceTable(pdf *gofpdf.Fpdf, scene domain.Scene) {
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 9, "Devices", "", 1, "L", false, 0, "")

	headers := []struct {
		label string
		width float64
	}{
		{"Name", 45}, {"MAC", 40}, {"IP", 30}, {"Vendor", 40}, {"Type", 25},
	}
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, h := range headers {
		pdf.CellFormat(h.width, 7, h.label, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, d := range scene.Devices {
		name := d.Name
		if name == "" {
			name = d.ID
		}
		row := []string{truncate(name, 28), d.MAC, d.IP, truncate(d.VendorName, 24), string(d.Type)}
		for i, cell := range row {
			pdf.CellFormat(headers[i].width, 6, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}

func (e *PDFExporter) addErrors(pdf *gofpdf.Fpdf, report domain.WorkflowReport) {
	if len(report.Errors) == 0 {
		return
	}
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 9, "Item Errors", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	for _, ie := range report.Errors {
		line := fmt.Sprintf("[%s] %s: %s", ie.Step, ie.Item, ie.Message)
		pdf.MultiCell(0, 5, truncate(line, 180), "", "L", false)
	}
}

func statusColor(s domain.RunStatus) (int, int, int) {
	switch s {
	case domain.StatusCompleted:
		return 46, 125, 50
	case domain.StatusFailed:
		return 183, 28, 28
	case domain.StatusCancelled:
		return 230, 145, 20
	default:
		return 100, 100, 100
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
