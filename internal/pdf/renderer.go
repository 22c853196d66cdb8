// Package pdf renders DocumentModels into branded PDF documents: cover
// page, table of contents with page numbers, section content, checklists,
// and QR-coded regulatory references.
package pdf

import (
	"bytes"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/go-pdf/fpdf"

	"sopforge/internal/compliance"
	"sopforge/internal/core"
)

// Options control branding of the rendered document.
type Options struct {
	// CompanyName appears on the cover and in the footer.
	CompanyName string

	// BrandColor is the accent RGB color. Zero value uses the default
	// navy.
	BrandColor [3]int

	// LogoPath is an optional PNG or JPEG placed on the cover page.
	LogoPath string
}

// Renderer renders documents with fixed branding options.
type Renderer struct {
	opts Options
}

// NewRenderer creates a renderer. Zero options get sensible defaults.
func NewRenderer(opts Options) *Renderer {
	if opts.CompanyName == "" {
		opts.CompanyName = "SOP Forge"
	}
	if opts.BrandColor == [3]int{} {
		opts.BrandColor = [3]int{21, 52, 94}
	}
	return &Renderer{opts: opts}
}

// Render writes the document as a PDF. The table of contents carries real
// page numbers, computed by laying the document out twice: the first pass
// records where each section lands, the second emits the final bytes.
func (r *Renderer) Render(doc *core.DocumentModel, w io.Writer) error {
	_, pages := r.layout(doc, nil)
	pdf, _ := r.layout(doc, pages)
	return pdf.Output(w)
}

// RenderFile renders the document to a file, creating parent directories.
func (r *Renderer) RenderFile(doc *core.DocumentModel, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.Render(doc, f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// layout builds the full document and returns the page each section starts
// on. When sectionPages is nil this is the measuring pass and the TOC shows
// placeholder numbers; page number digits occupy fixed-width cells so both
// passes paginate identically.
func (r *Renderer) layout(doc *core.DocumentModel, sectionPages map[string]int) (*fpdf.Fpdf, map[string]int) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 25)

	br, bg, bb := r.opts.BrandColor[0], r.opts.BrandColor[1], r.opts.BrandColor[2]

	pdf.SetFooterFunc(func() {
		if pdf.PageNo() == 1 {
			return
		}
		pdf.SetY(-18)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 6, r.opts.CompanyName, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	tmpl, _ := compliance.Load(doc.Metadata.TemplateType)
	title := tmpl.DisplayName

	r.coverPage(pdf, doc, title, br, bg, bb)

	ordered := doc.OrderedSections()
	r.tocPage(pdf, ordered, sectionPages, br, bg, bb)

	recorded := make(map[string]int, len(ordered))
	for _, section := range ordered {
		pdf.AddPage()
		recorded[section.Name] = pdf.PageNo()
		r.sectionContent(pdf, section, br, bg, bb)
	}

	r.interactivePages(pdf, doc, br, bg, bb)

	return pdf, recorded
}

func (r *Renderer) coverPage(pdf *fpdf.Fpdf, doc *core.DocumentModel, title string, br, bg, bb int) {
	pdf.AddPage()

	pdf.SetFillColor(br, bg, bb)
	pdf.Rect(0, 0, 210, 70, "F")

	if r.opts.LogoPath != "" {
		if _, err := os.Stat(r.opts.LogoPath); err == nil {
			pdf.ImageOptions(r.opts.LogoPath, 168, 10, 22, 0, false, fpdf.ImageOptions{}, 0, "")
		}
	}

	pdf.SetY(28)
	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetTextColor(255, 255, 255)
	pdf.MultiCell(0, 10, title, "", "L", false)

	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, r.opts.CompanyName, "", 1, "L", false, 0, "")

	pdf.SetY(90)
	pdf.SetTextColor(60, 60, 60)
	pdf.SetFont("Helvetica", "", 10)

	meta := doc.Metadata
	rows := [][2]string{
		{"Version", meta.Version},
		{"Generated", meta.GeneratedAt.Format("2006-01-02 15:04 MST")},
		{"Generation method", string(meta.GenerationMethod)},
		{"Compliance standards", strings.Join(meta.ComplianceStandards, ", ")},
	}
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(45, 7, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 7, row[1], "", "L", false)
	}
}

func (r *Renderer) tocPage(pdf *fpdf.Fpdf, sections []core.SectionRecord, pages map[string]int, br, bg, bb int) {
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(br, bg, bb)
	pdf.CellFormat(0, 10, "Table of Contents", "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetTextColor(40, 40, 40)
	for _, section := range sections {
		page := 0
		if pages != nil {
			page = pages[section.Name]
		}
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(150, 8, section.Name, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, fmt.Sprintf("%d", page), "", 1, "R", false, 0, "")
	}
}

func (r *Renderer) sectionContent(pdf *fpdf.Fpdf, section core.SectionRecord, br, bg, bb int) {
	for _, block := range ParseBlocks(section.Content) {
		switch block.Kind {
		case BlockHeading:
			size := 16.0
			if block.Level >= 3 {
				size = 12
			} else if block.Level == 2 {
				size = 14
			}
			pdf.Ln(2)
			pdf.SetFont("Helvetica", "B", size)
			pdf.SetTextColor(br, bg, bb)
			pdf.MultiCell(0, 8, block.Text, "", "L", false)
			pdf.Ln(1)

		case BlockBullet:
			pdf.SetFont("Helvetica", "", 10)
			pdf.SetTextColor(40, 40, 40)
			pdf.CellFormat(6, 6, "\x95", "", 0, "L", false, 0, "")
			pdf.MultiCell(0, 6, block.Text, "", "L", false)

		case BlockNumbered:
			pdf.SetFont("Helvetica", "", 10)
			pdf.SetTextColor(40, 40, 40)
			pdf.MultiCell(0, 6, block.Text, "", "L", false)

		case BlockCallout:
			pdf.SetFont("Helvetica", "I", 10)
			pdf.SetTextColor(90, 90, 90)
			pdf.SetX(pdf.GetX() + 6)
			pdf.MultiCell(0, 6, block.Text, "", "L", false)
			pdf.Ln(1)

		case BlockCode:
			pdf.SetFont("Courier", "", 9)
			pdf.SetTextColor(60, 60, 60)
			pdf.SetX(pdf.GetX() + 4)
			pdf.MultiCell(0, 5, block.Text, "", "L", false)
			pdf.Ln(2)

		case BlockParagraph:
			pdf.SetFont("Helvetica", "", 10)
			pdf.SetTextColor(40, 40, 40)
			pdf.MultiCell(0, 6, block.Text, "", "L", false)
			pdf.Ln(2)
		}
	}
}

// interactivePages renders checklists and the QR-coded regulatory
// references after the content sections.
func (r *Renderer) interactivePages(pdf *fpdf.Fpdf, doc *core.DocumentModel, br, bg, bb int) {
	var checklists, qrcodes []core.InteractiveElement
	for _, el := range doc.InteractiveElements {
		switch el.Type {
		case core.ElementChecklist:
			checklists = append(checklists, el)
		case core.ElementQRCode:
			qrcodes = append(qrcodes, el)
		}
	}

	for _, cl := range checklists {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 14)
		pdf.SetTextColor(br, bg, bb)
		pdf.CellFormat(0, 10, cl.Section+" Checklist", "", 1, "L", false, 0, "")
		pdf.Ln(2)

		pdf.SetTextColor(40, 40, 40)
		pdf.SetFont("Helvetica", "", 10)
		for _, item := range cl.Items {
			x, y := pdf.GetX(), pdf.GetY()
			pdf.Rect(x, y+1, 4, 4, "D")
			pdf.SetX(x + 8)
			pdf.MultiCell(0, 6, item, "", "L", false)
			pdf.Ln(1)
		}
	}

	if len(qrcodes) == 0 {
		return
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(br, bg, bb)
	pdf.CellFormat(0, 10, "Regulatory References", "", 1, "L", false, 0, "")
	pdf.Ln(4)

	for i, el := range qrcodes {
		if img, err := qrPNG(el.Data); err == nil {
			name := fmt.Sprintf("qr-%d", i)
			opts := fpdf.ImageOptions{ImageType: "PNG"}
			pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img))
			x, y := pdf.GetX(), pdf.GetY()
			pdf.ImageOptions(name, x, y, 24, 24, false, opts, 0, el.Data)
			pdf.SetXY(x+30, y+4)
		}

		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetTextColor(40, 40, 40)
		pdf.CellFormat(0, 6, el.Label, "", 1, "L", false, 0, "")
		pdf.SetX(pdf.GetX() + 30)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(br, bg, bb)
		pdf.CellFormat(0, 6, el.Data, "", 1, "L", false, 0, "")
		pdf.SetY(pdf.GetY() + 18)
	}
}

// qrPNG encodes a URL as a PNG QR code.
func qrPNG(data string) ([]byte, error) {
	code, err := qr.Encode(data, qr.M, qr.Auto)
	if err != nil {
		return nil, err
	}
	code, err = barcode.Scale(code, 192, 192)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, code); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
