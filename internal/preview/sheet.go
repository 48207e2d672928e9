package preview

import (
	"bytes"
	"context"
	"fmt"
	"image"

	_ "image/jpeg"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"decoupage/api-gateway/models"
	"decoupage/api-gateway/utils"
)

// Contact sheet geometry, pixels.
const (
	sheetCols    = 4
	sheetCellW   = 240
	sheetCellH   = 180
	sheetPad     = 12
	sheetTextH   = 36
	sheetHeaderH = 48
)

// ContactSheet renders the unassigned pool as a PNG board: one cell per
// timecode with its thumbnail, type and in/out range. Used for the quick
// preview shown before committing to a full PDF export.
func (g *Generator) ContactSheet(ctx context.Context, doc models.Document, opts Options) ([]byte, error) {
	cards := doc.Timecodes
	rows := (len(cards) + sheetCols - 1) / sheetCols
	if rows == 0 {
		rows = 1
	}

	w := sheetCols*sheetCellW + (sheetCols+1)*sheetPad
	h := sheetHeaderH + rows*sheetCellH + (rows+1)*sheetPad

	dc := gg.NewContext(w, h)
	dc.SetRGB255(242, 242, 242)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetRGB255(14, 11, 25)
	dc.DrawString(sheetHeader(opts), sheetPad, sheetHeaderH/2)

	for i, tc := range cards {
		col := i % sheetCols
		row := i / sheetCols
		x := float64(sheetPad + col*(sheetCellW+sheetPad))
		y := float64(sheetHeaderH + sheetPad + row*(sheetCellH+sheetPad))
		g.drawCell(ctx, dc, tc, x, y)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode contact sheet: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetHeader keeps the same plain separator the card in/out ranges use.
func sheetHeader(opts Options) string {
	return fmt.Sprintf("%s - %s", opts.ProjectName, opts.ExportDate)
}

func (g *Generator) drawCell(ctx context.Context, dc *gg.Context, tc models.Timecode, x, y float64) {
	dc.SetRGB255(255, 255, 255)
	dc.DrawRoundedRectangle(x, y, sheetCellW, sheetCellH, 6)
	dc.Fill()

	imgAreaH := float64(sheetCellH - sheetTextH)
	if tc.ImageURL != nil && *tc.ImageURL != "" {
		if h, err := g.cache.Resolve(ctx, tc.ID, g.mediaBase+*tc.ImageURL, sheetCellH); err == nil && h.Valid() {
			if img, _, derr := image.Decode(bytes.NewReader(h.Bytes())); derr == nil {
				iw := float64(img.Bounds().Dx())
				ih := float64(img.Bounds().Dy())
				scale := imgAreaH / ih
				if iw*scale > sheetCellW {
					scale = sheetCellW / iw
				}
				dc.Push()
				dc.Translate(x, y)
				dc.Scale(scale, scale)
				dc.DrawImage(img, 0, 0)
				dc.Pop()
			}
		}
	}

	dc.SetRGB255(14, 11, 25)
	label := tc.Type
	if label == models.TypeUnset {
		label = "?"
	}
	dc.DrawString(label, x+8, y+imgAreaH+14)
	dc.DrawString(utils.FormatTimecode(tc.InTime)+" - "+utils.FormatTimecode(tc.OutTime), x+8, y+imgAreaH+28)
}
