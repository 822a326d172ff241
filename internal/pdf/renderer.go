// Package pdf renders accident reports into standalone PDF documents.
// The report font is embedded in every document so the output renders
// identically on devices without the font installed.
package pdf

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/go-pdf/fpdf"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"github.com/dashfault/dashfault-backend/internal/platform/logger"
)

const reportFontName = "report"

// TimelineEvent is one entry of the analysis timeline, already converted
// to video seconds.
type TimelineEvent struct {
	Seconds float64
	Event   string
}

// ReportData carries everything the renderer needs. Text fields are
// treated as opaque data; nothing is interpreted as markup.
type ReportData struct {
	ReportID          string
	Title             string
	AccidentCode      int
	FaultA            int
	FaultB            int
	VehicleADirection string
	VehicleBDirection string
	DamageLocation    string
	Laws              string
	Precedents        string
	Timeline          []TimelineEvent
	CreatedAt         time.Time
}

// Renderer builds report PDFs. It loads the report font once at startup
// and fails fast when the font is missing, since documents without the
// embedded font are not acceptable output.
type Renderer struct {
	log       *logger.Logger
	fontBytes []byte
	chartFace font.Face
}

func NewRenderer(baseLog *logger.Logger) (*Renderer, error) {
	rendererLog := baseLog.With("component", "PDFRenderer")

	fontPath := strings.TrimSpace(os.Getenv("REPORT_FONT_PATH"))
	if fontPath == "" {
		return nil, fmt.Errorf("Env var REPORT_FONT_PATH is empty")
	}
	rendererLog.Info("Loading report font", "font", fontPath)

	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read report font: %w", err)
	}
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report font TTF: %w", err)
	}
	chartFace := truetype.NewFace(parsedFont, &truetype.Options{
		Size:    28,
		DPI:     72,
		Hinting: font.HintingNone,
	})

	return &Renderer{
		log:       rendererLog,
		fontBytes: fontBytes,
		chartFace: chartFace,
	}, nil
}

// Render produces the finished document as bytes. It never reads the
// report back from anywhere; the caller supplies a complete snapshot.
func (r *Renderer) Render(data ReportData) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Accident Analysis Report", true)
	doc.AddUTF8FontFromBytes(reportFontName, "", r.fontBytes)
	doc.AddUTF8FontFromBytes(reportFontName, "B", r.fontBytes)
	doc.SetAutoPageBreak(true, 18)
	doc.AddPage()

	// Header
	doc.SetFont(reportFontName, "B", 20)
	doc.CellFormat(0, 12, "Accident Analysis Report", "", 1, "C", false, 0, "")
	doc.SetFont(reportFontName, "", 9)
	doc.SetTextColor(110, 110, 110)
	doc.CellFormat(0, 6, fmt.Sprintf("Report %s · Generated %s", data.ReportID, data.CreatedAt.Format("2006-01-02 15:04")), "", 1, "C", false, 0, "")
	doc.SetTextColor(0, 0, 0)
	doc.Ln(4)

	// Accident type
	doc.SetFont(reportFontName, "B", 14)
	doc.CellFormat(0, 9, data.Title, "", 1, "L", false, 0, "")
	doc.SetFont(reportFontName, "", 10)
	doc.CellFormat(0, 6, fmt.Sprintf("Accident type code %d", data.AccidentCode), "", 1, "L", false, 0, "")
	doc.Ln(3)

	// Fault ratio chart
	chart, err := r.faultChartPNG(data.FaultA, data.FaultB)
	if err != nil {
		return nil, fmt.Errorf("failed to render fault chart: %w", err)
	}
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	doc.RegisterImageOptionsReader("fault-chart", opts, bytes.NewReader(chart))
	x := (210.0 - 160.0) / 2
	doc.ImageOptions("fault-chart", x, doc.GetY(), 160, 0, true, opts, 0, "")
	doc.Ln(4)

	r.sectionHeader(doc, "Vehicle Movements")
	r.bodyLine(doc, fmt.Sprintf("Vehicle A (yours): %s", data.VehicleADirection))
	r.bodyLine(doc, fmt.Sprintf("Vehicle B (other): %s", data.VehicleBDirection))
	if strings.TrimSpace(data.DamageLocation) != "" {
		r.bodyLine(doc, fmt.Sprintf("Impact location: %s", data.DamageLocation))
	}
	doc.Ln(2)

	if len(data.Timeline) > 0 {
		r.sectionHeader(doc, "Timeline")
		for _, ev := range data.Timeline {
			r.bodyLine(doc, fmt.Sprintf("%.2fs  %s", ev.Seconds, ev.Event))
		}
		doc.Ln(2)
	}

	r.sectionHeader(doc, "Applicable Statutes")
	r.bodyText(doc, data.Laws)
	doc.Ln(2)

	r.sectionHeader(doc, "Related Precedents")
	r.bodyText(doc, data.Precedents)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) sectionHeader(doc *fpdf.Fpdf, title string) {
	doc.SetFont(reportFontName, "B", 12)
	doc.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	doc.SetDrawColor(200, 200, 200)
	y := doc.GetY()
	doc.Line(10, y, 200, y)
	doc.Ln(2)
}

func (r *Renderer) bodyLine(doc *fpdf.Fpdf, text string) {
	doc.SetFont(reportFontName, "", 10)
	doc.CellFormat(0, 6, text, "", 1, "L", false, 0, "")
}

func (r *Renderer) bodyText(doc *fpdf.Fpdf, text string) {
	doc.SetFont(reportFontName, "", 10)
	if strings.TrimSpace(text) == "" {
		text = "None recorded."
	}
	doc.MultiCell(0, 6, text, "", "L", false)
}

// faultChartPNG draws the horizontal fault split bar, vehicle A on the
// left in blue, vehicle B on the right in red.
func (r *Renderer) faultChartPNG(faultA, faultB int) ([]byte, error) {
	const (
		width  = 960
		height = 150
		barTop = 58.0
		barH   = 52.0
	)
	total := faultA + faultB
	if total <= 0 {
		total = 1
	}
	split := float64(width) * float64(faultA) / float64(total)

	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetFontFace(r.chartFace)

	dc.SetColor(color.NRGBA{R: 59, G: 98, B: 227, A: 255})
	dc.DrawRectangle(0, barTop, split, barH)
	dc.Fill()

	dc.SetColor(color.NRGBA{R: 222, G: 70, B: 70, A: 255})
	dc.DrawRectangle(split, barTop, float64(width)-split, barH)
	dc.Fill()

	dc.SetColor(color.NRGBA{R: 40, G: 40, B: 40, A: 255})
	dc.DrawString(fmt.Sprintf("Vehicle A  %d%%", faultA), 8, barTop-16)
	labelB := fmt.Sprintf("Vehicle B  %d%%", faultB)
	tw, _ := dc.MeasureString(labelB)
	dc.DrawString(labelB, float64(width)-tw-8, barTop-16)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode chart PNG: %w", err)
	}
	return buf.Bytes(), nil
}
