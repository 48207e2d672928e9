// Package preview assembles printable documents from a script snapshot. It
// reads only the in-memory document plus the shared image cache, so preview
// generation never issues network requests for thumbnails the card grid has
// already resolved.
package preview

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/sirupsen/logrus"

	"decoupage/api-gateway/internal/imagecache"
	"decoupage/api-gateway/models"
	"decoupage/api-gateway/utils"
)

// Views selectable for export.
const (
	ViewScript    = "script"
	ViewDecoupage = "decoupage"
)

// Options control one export.
type Options struct {
	ProjectName string
	ExportDate  string
	View        string // ViewScript or ViewDecoupage
}

// Generator renders PDF and raster previews.
type Generator struct {
	cache     *imagecache.Cache
	mediaBase string // joined with server-relative imageUrl values
	log       *logrus.Logger
}

// NewGenerator wires the shared image cache and the media base URL.
func NewGenerator(cache *imagecache.Cache, mediaBase string, log *logrus.Logger) *Generator {
	return &Generator{cache: cache, mediaBase: mediaBase, log: log}
}

// thumbHeight is the cached pixel height for print thumbnails.
const thumbHeight = 300

// layout constants, A4 portrait in points.
const (
	pageMargin = 36
	cellPad    = 6
	lineH      = 16
	thumbBoxW  = 120
	thumbBoxH  = 68
)

// PDF renders the requested view into a PDF document.
func (g *Generator) PDF(ctx context.Context, doc models.Document, opts Options) ([]byte, error) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("") // core fonts are cp1252
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()

	title := "ROTEIRO"
	if opts.View == ViewDecoupage {
		title = "DECUPAGEM"
	}
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 22, title, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	g.headerTable(pdf, tr, opts)
	pdf.Ln(10)

	if opts.View == ViewDecoupage {
		g.renderPool(ctx, pdf, tr, doc.Timecodes)
	} else {
		for _, scene := range doc.Script {
			g.renderScene(ctx, pdf, tr, scene)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) headerTable(pdf *gofpdf.Fpdf, tr func(string) string, opts Options) {
	pdf.SetFont("Helvetica", "", 11)
	w := contentWidth(pdf) / 2
	rowFn := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(w, lineH+2, tr(label), "1", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(w, lineH+2, tr(value), "1", 1, "L", false, 0, "")
	}
	rowFn("Nome do projeto", opts.ProjectName)
	rowFn("Data de exportação", opts.ExportDate)
}

func (g *Generator) renderScene(ctx context.Context, pdf *gofpdf.Fpdf, tr func(string) string, scene models.Scene) {
	pdf.SetFillColor(231, 231, 231)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, lineH+6, tr(scene.Name), "1", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	if scene.HasField("description") && scene.Description != "" {
		pdf.CellFormat(0, lineH, tr("Descrição: "+scene.Description), "LR", 1, "L", false, 0, "")
	}
	if scene.HasField("audio") && scene.Audio != "" {
		pdf.CellFormat(0, lineH, tr("Áudio: "+scene.Audio), "LR", 1, "L", false, 0, "")
	}
	if scene.HasField("locution") && scene.Locution != "" {
		pdf.CellFormat(0, lineH, tr("Locução: "+scene.Locution), "LR", 1, "L", false, 0, "")
	}

	if scene.HasField("takes") && len(scene.Timecodes) > 0 {
		pdf.CellFormat(0, lineH, "Takes", "LR", 1, "L", false, 0, "")
		g.renderCards(ctx, pdf, tr, scene.Timecodes)
	}
	if scene.HasField("audios") && len(scene.Audios) > 0 {
		pdf.CellFormat(0, lineH, tr("Áudios"), "LR", 1, "L", false, 0, "")
		g.renderCards(ctx, pdf, tr, scene.Audios)
	}

	pdf.CellFormat(0, 2, "", "LRB", 1, "L", false, 0, "")
	pdf.Ln(8)
}

func (g *Generator) renderPool(ctx context.Context, pdf *gofpdf.Fpdf, tr func(string) string, timecodes []models.Timecode) {
	if len(timecodes) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, lineH, "Nenhum timecode", "", 1, "L", false, 0, "")
		return
	}
	g.renderCards(ctx, pdf, tr, timecodes)
}

// renderCards lays cards out two per row: thumbnail box on the left, in/out,
// type and annotation on the right.
func (g *Generator) renderCards(ctx context.Context, pdf *gofpdf.Fpdf, tr func(string) string, cards []models.Timecode) {
	cardW := contentWidth(pdf) / 2
	_, pageH := pdf.GetPageSize()

	for i := 0; i < len(cards); i += 2 {
		y := pdf.GetY()
		if y+thumbBoxH+cellPad > pageH-pageMargin {
			pdf.AddPage()
			y = pdf.GetY()
		}
		g.renderCard(ctx, pdf, tr, cards[i], pageMargin, y, cardW)
		if i+1 < len(cards) {
			g.renderCard(ctx, pdf, tr, cards[i+1], pageMargin+cardW, y, cardW)
		}
		pdf.SetXY(pageMargin, y+thumbBoxH+cellPad)
	}
}

func (g *Generator) renderCard(ctx context.Context, pdf *gofpdf.Fpdf, tr func(string) string, tc models.Timecode, x, y, w float64) {
	pdf.Rect(x, y, w-cellPad, thumbBoxH, "D")

	if tc.ImageURL != nil && *tc.ImageURL != "" {
		if h, err := g.cache.Resolve(ctx, tc.ID, g.mediaBase+*tc.ImageURL, thumbHeight); err == nil && h.Valid() {
			name := "thumb-" + tc.ID
			opts := gofpdf.ImageOptions{ImageType: "JPG", ReadDpi: false}
			pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(h.Bytes()))
			imgW := float64(thumbBoxW - 2*cellPad)
			imgH := float64(h.Height) * imgW / float64(h.Width)
			if imgH > thumbBoxH-2*cellPad {
				imgH = thumbBoxH - 2*cellPad
				imgW = float64(h.Width) * imgH / float64(h.Height)
			}
			pdf.ImageOptions(name, x+cellPad, y+cellPad, imgW, imgH, false, opts, 0, "")
		}
	}

	textX := x + thumbBoxW
	pdf.SetXY(textX, y+cellPad)
	pdf.SetFont("Helvetica", "B", 9)
	label := tc.Type
	if label == models.TypeUnset {
		label = "?"
	}
	pdf.CellFormat(w-thumbBoxW-cellPad, 12, tr(label), "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(w-thumbBoxW-cellPad, 12,
		utils.FormatTimecode(tc.InTime)+" - "+utils.FormatTimecode(tc.OutTime), "", 2, "L", false, 0, "")
	if tc.Text != "" {
		pdf.SetX(textX)
		pdf.MultiCell(w-thumbBoxW-cellPad, 11, tr(tc.Text), "", "L", false)
	}
}

func contentWidth(pdf *gofpdf.Fpdf) float64 {
	w, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	return w - left - right
}
