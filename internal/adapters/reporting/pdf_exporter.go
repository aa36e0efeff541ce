package reporting

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/lcalzada-xor/widsview/internal/core/domain"
	"github.com/lcalzada-xor/widsview/internal/core/ports"
)

// SnapshotReport is the input of a PDF export.
type SnapshotReport struct {
	Title       string
	GeneratedAt time.Time
	GeneratedBy string
	Snapshot    domain.Snapshot
	Stale       bool
	Sightings   []domain.AlertSighting
}

// PDFExporter renders snapshot reports as PDF.
type PDFExporter struct {
	vendors ports.VendorResolver
}

// NewPDFExporter creates an exporter. vendors may be nil.
func NewPDFExporter(vendors ports.VendorResolver) *PDFExporter {
	return &PDFExporter{vendors: vendors}
}

// ExportSnapshot generates the PDF for a snapshot report.
func (e *PDFExporter) ExportSnapshot(ctx context.Context, report SnapshotReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	e.addHeader(pdf, tr, report)
	e.addStatistics(pdf, report.Snapshot.Stats)
	e.addNetworks(ctx, pdf, tr, report.Snapshot.Networks)
	e.addAlerts(pdf, tr, report.Snapshot.Alerts)
	if len(report.Sightings) > 0 {
		e.addSightings(pdf, tr, report.Sightings)
	}
	e.addFooter(pdf, report)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) addHeader(pdf *gofpdf.Fpdf, tr func(string) string, report SnapshotReport) {
	title := report.Title
	if title == "" {
		title = "Wireless Monitoring Snapshot"
	}
	pdf.SetFont("Arial", "B", 22)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 14, tr(title), "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", report.GeneratedAt.Format("2006-01-02 15:04:05")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Snapshot: %s (%s)", report.Snapshot.ID,
		report.Snapshot.ProducedAt.Format("15:04:05")), "", 1, "L", false, 0, "")

	if report.Stale {
		r, g, b := hexRGB(domain.ColorRisk)
		pdf.SetTextColor(r, g, b)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 6, "Feed unavailable: showing the last good snapshot", "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)
}

func (e *PDFExporter) addStatistics(pdf *gofpdf.Fpdf, stats domain.NetworkStats) {
	sectionTitle(pdf, "Overview")

	items := []struct {
		label string
		value int
		color domain.Color
	}{
		{"Total Networks", stats.TotalNetworks, "#0066cc"},
		{"Authorized APs", stats.AuthorizedAPs, domain.ColorSafe},
		{"Rogue APs", stats.RogueAPs, domain.ColorRisk},
		{"Active Clients", stats.ActiveClients, "#0066cc"},
		{"Alerts (24h)", stats.AlertsLast24h, domain.ColorSeverityHigh},
	}

	for i, item := range items {
		x := 20.0
		if i%2 == 1 {
			x = 105.0
		}
		pdf.SetXY(x, pdf.GetY())

		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(50, 7, item.label+":", "", 0, "L", false, 0, "")

		r, g, b := hexRGB(item.color)
		pdf.SetFont("Arial", "B", 11)
		pdf.SetTextColor(r, g, b)
		pdf.CellFormat(35, 7, strconv.Itoa(item.value), "", 0, "R", false, 0, "")

		if i%2 == 1 || i == len(items)-1 {
			pdf.Ln(7)
		}
	}
	pdf.Ln(6)
}

func (e *PDFExporter) addNetworks(ctx context.Context, pdf *gofpdf.Fpdf, tr func(string) string, networks []domain.Network) {
	sectionTitle(pdf, "Networks")

	if len(networks) == 0 {
		emptyLine(pdf, "No networks observed")
		return
	}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 9)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(40, 8, "SSID", "1", 0, "L", true, 0, "")
	pdf.CellFormat(35, 8, "BSSID", "1", 0, "L", true, 0, "")
	pdf.CellFormat(35, 8, "Vendor", "1", 0, "L", true, 0, "")
	pdf.CellFormat(12, 8, "Ch", "1", 0, "C", true, 0, "")
	pdf.CellFormat(18, 8, "Signal", "1", 0, "C", true, 0, "")
	pdf.CellFormat(16, 8, "Enc", "1", 0, "C", true, 0, "")
	pdf.CellFormat(14, 8, "Clients", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 8)
	for _, n := range networks {
		color := domain.ColorSafe
		if n.Suspicious {
			color = domain.ColorRisk
		}
		r, g, b := hexRGB(color)

		pdf.SetTextColor(r, g, b)
		pdf.CellFormat(40, 7, tr(truncate(n.SSID, 24)), "1", 0, "L", false, 0, "")
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(35, 7, n.BSSID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, tr(truncate(e.vendor(ctx, n.BSSID), 20)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(12, 7, strconv.Itoa(n.Channel), "1", 0, "C", false, 0, "")
		pdf.CellFormat(18, 7, fmt.Sprintf("%d dBm", n.SignalStrength), "1", 0, "C", false, 0, "")
		pdf.CellFormat(16, 7, n.Encryption.String(), "1", 0, "C", false, 0, "")
		pdf.CellFormat(14, 7, strconv.Itoa(n.Clients), "1", 1, "C", false, 0, "")
	}
	pdf.Ln(6)
}

func (e *PDFExporter) addAlerts(pdf *gofpdf.Fpdf, tr func(string) string, alerts []domain.Alert) {
	sectionTitle(pdf, "Alerts")

	if len(alerts) == 0 {
		emptyLine(pdf, "No active alerts")
		return
	}

	for _, a := range alerts {
		if pdf.GetY() > 250 {
			pdf.AddPage()
		}

		r, g, b := hexRGB(a.Severity.Color())
		pdf.SetFillColor(r, g, b)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(25, 6, a.Severity.String(), "", 0, "C", true, 0, "")

		pdf.SetFont("Arial", "B", 11)
		pdf.SetTextColor(0, 51, 102)
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("  %s on %s", a.Type, a.Network)), "", 1, "L", false, 0, "")
		pdf.Ln(1)

		pdf.SetFont("Arial", "", 9)
		pdf.SetTextColor(60, 60, 60)
		pdf.MultiCell(0, 5, tr(a.Description), "", "L", false)

		sr, sg, sb := hexRGB(a.Status.Color())
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(sr, sg, sb)
		pdf.CellFormat(0, 5, fmt.Sprintf("%s | %s", a.Status, a.Timestamp.Format("15:04:05")), "", 1, "L", false, 0, "")
		pdf.Ln(3)
	}
}

func (e *PDFExporter) addSightings(pdf *gofpdf.Fpdf, tr func(string) string, sightings []domain.AlertSighting) {
	sectionTitle(pdf, "Session History")

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 9)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(40, 8, "Alert", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 8, "Network", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 8, "First seen", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 8, "Last seen", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 8, "Sightings", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 8)
	for _, s := range sightings {
		pdf.CellFormat(40, 7, s.Type.String(), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, tr(truncate(s.Network, 24)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, s.FirstSeen.Format("15:04:05"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 7, s.LastSeen.Format("15:04:05"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 7, strconv.Itoa(s.Sightings), "1", 1, "C", false, 0, "")
	}
	pdf.Ln(6)
}

func (e *PDFExporter) addFooter(pdf *gofpdf.Fpdf, report SnapshotReport) {
	pdf.SetY(-20)
	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(3)

	by := report.GeneratedBy
	if by == "" {
		by = "widsview"
	}
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated by %s | Snapshot %s", by, shortID(report.Snapshot.ID)), "", 1, "C", false, 0, "")
}

func (e *PDFExporter) vendor(ctx context.Context, bssid string) string {
	if e.vendors == nil {
		return ""
	}
	return e.vendors.Vendor(ctx, bssid)
}

func sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.Ln(2)
}

func emptyLine(pdf *gofpdf.Fpdf, text string) {
	pdf.SetFont("Arial", "I", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 7, text, "", 1, "L", false, 0, "")
	pdf.Ln(5)
}

// hexRGB converts "#rrggbb" to its components. Malformed colours render gray.
func hexRGB(c domain.Color) (r, g, b int) {
	s := string(c)
	if len(s) != 7 || s[0] != '#' {
		return 100, 100, 100
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return 100, 100, 100
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
