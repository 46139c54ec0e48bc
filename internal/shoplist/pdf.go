package shoplist

import (
	_ "embed"
	"fmt"
	"io"

	"foodgram/internal/model"

	"github.com/go-pdf/fpdf"
)

// Title heads every rendered PDF shopping list.
const Title = "Shopping list"

// fontFamily names the embedded DejaVu face. Core PDF fonts only cover
// cp1252, which loses Cyrillic ingredient names.
const fontFamily = "DejaVu"

var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	regularFont []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	boldFont []byte
)

// RenderPDF writes items as a single-column A4 document.
func RenderPDF(w io.Writer, items []model.ShoppingItem) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(Title, true)
	pdf.SetCreator("foodgram", true)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddUTF8FontFromBytes(fontFamily, "", regularFont)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", boldFont)
	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", 18)
	pdf.CellFormat(0, 12, Title, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(fontFamily, "", 12)
	if len(items) == 0 {
		pdf.CellFormat(0, 8, "Your shopping cart is empty.", "", 1, "L", false, 0, "")
	}
	for i, item := range items {
		line := fmt.Sprintf("%d. %s", i+1, FormatLine(item))
		pdf.CellFormat(0, 8, line, "", 1, "L", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render shopping list PDF: %w", err)
	}
	return nil
}
