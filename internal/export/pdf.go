package export

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"booking-users/internal/domain"
	"booking-users/internal/feature/user"
)

// PDFFont UTF-8 TrueType 字体；Regular 为空时使用内置 Go 字体。
// Go 字体不含 CJK 字形，需要中日韩显示时配置含 CJK 的 TTF。
type PDFFont struct {
	Regular []byte
	Bold    []byte // 为空时沿用 Regular
}

type PDFOptions struct {
	Title       string
	GeneratedAt time.Time // 写入文档元数据与标题行；相同输入 + 相同时间 → 相同字节
	Compress    bool
	Font        PDFFont
}

const (
	pdfFontFamily = "body"
	pdfFontSize   = 7.0
	pdfLineHeight = 3.6
	pdfHeadHeight = 6.0
	pdfMargin     = 10.0
	pdfCellMargin = 1.0
)

// 列宽 (mm)，横向 A4 可用宽度 277
var pdfColumnWidths = []float64{56, 26, 26, 50, 27, 34, 29, 29}

// WritePDF 分页表格，每页重复表头；超宽单元格折行，行高取最高的单元格
func WritePDF(w io.Writer, users []user.DTO, opts PDFOptions) error {
	if opts.Title == "" {
		opts.Title = "Users"
	}
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now()
	}
	ts := opts.GeneratedAt.UTC()

	pdf := newPDFDoc(opts.Font)
	pdf.SetCompression(opts.Compress)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(ts)
	pdf.SetModificationDate(ts)
	pdf.SetTitle(opts.Title, true)

	pageW, _ := pdf.GetPageSize()
	half := (pageW - 2*pdfMargin) / 2

	pdf.SetHeaderFunc(func() {
		pdf.SetFont(pdfFontFamily, "B", 12)
		pdf.CellFormat(half, 8, pdfSafe(opts.Title), "", 0, "L", false, 0, "")
		pdf.SetFont(pdfFontFamily, "", 8)
		pdf.CellFormat(half, 8, "Generated "+ts.Format(TimeLayout)+" UTC", "", 1, "R", false, 0, "")
		pdf.SetFont(pdfFontFamily, "B", pdfFontSize)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range Header {
			pdf.CellFormat(pdfColumnWidths[i], pdfHeadHeight, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(pdfFontFamily, "", pdfFontSize)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-pdfMargin)
		pdf.SetFont(pdfFontFamily, "", 7)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.SetFont(pdfFontFamily, "", pdfFontSize)
	pdf.AddPage()
	_, pageH := pdf.GetPageSize()
	_, bottom := pdf.GetAutoPageBreak()
	limit := pageH - bottom
	for _, u := range users {
		lines, rowH := layoutRow(pdf, Row(u))
		if pdf.GetY()+rowH > limit {
			pdf.AddPage()
		}
		drawRow(pdf, lines, rowH)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("%w: render pdf: %w", domain.ErrExport, err)
	}
	return nil
}

func newPDFDoc(font PDFFont) *fpdf.Fpdf {
	regular, bold := font.Regular, font.Bold
	if len(regular) == 0 {
		regular, bold = goregular.TTF, gobold.TTF
	}
	if len(bold) == 0 {
		bold = regular
	}
	pdf := fpdf.New("L", "mm", "A4", "")
	// 先登记页数别名，字体子集才会带上数字
	pdf.AliasNbPages("")
	pdf.AddUTF8FontFromBytes(pdfFontFamily, "", regular)
	pdf.AddUTF8FontFromBytes(pdfFontFamily, "B", bold)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetCellMargin(pdfCellMargin)
	pdf.SetAutoPageBreak(true, pdfMargin+5)
	pdf.SetFont(pdfFontFamily, "", pdfFontSize)
	return pdf
}

// layoutRow 每列折行后的文本与行高
func layoutRow(pdf *fpdf.Fpdf, cells []string) ([][]string, float64) {
	lines := make([][]string, len(cells))
	n := 1
	for i, text := range cells {
		lines[i] = wrapText(pdf, pdfSafe(text), pdfColumnWidths[i]-2*pdfCellMargin)
		n = max(n, len(lines[i]))
	}
	return lines, float64(n) * pdfLineHeight
}

func drawRow(pdf *fpdf.Fpdf, lines [][]string, rowH float64) {
	x0, y0 := pdf.GetXY()
	x := x0
	for i, cell := range lines {
		w := pdfColumnWidths[i]
		pdf.Rect(x, y0, w, rowH, "D")
		for j, line := range cell {
			pdf.SetXY(x, y0+float64(j)*pdfLineHeight)
			pdf.CellFormat(w, pdfLineHeight, line, "", 0, "L", false, 0, "")
		}
		x += w
	}
	pdf.SetXY(x0, y0+rowH)
}

// wrapText 按当前字体把 text 切成不超过 width 的行，拼接后等于原文。
// 优先在空格、标点与 CJK 字符之后断行，否则按字符硬断。
func wrapText(pdf *fpdf.Fpdf, text string, width float64) []string {
	if text == "" {
		return []string{""}
	}
	var (
		lines []string
		cur   []rune
		curW  float64
	)
	for _, r := range text {
		rw := pdf.GetStringWidth(string(r))
		for len(cur) > 0 && curW+rw > width {
			cut := len(cur)
			if b := lastBreak(cur); b > 0 {
				cut = b
			}
			lines = append(lines, string(cur[:cut]))
			cur = append([]rune(nil), cur[cut:]...)
			curW = pdf.GetStringWidth(string(cur))
		}
		cur = append(cur, r)
		curW += rw
	}
	return append(lines, string(cur))
}

// lastBreak cur 中最后一个可断点之后的位置；没有则为 0
func lastBreak(cur []rune) int {
	for i := len(cur) - 1; i >= 0; i-- {
		if breaksAfter(cur[i]) {
			return i + 1
		}
	}
	return 0
}

func breaksAfter(r rune) bool {
	switch r {
	case ' ', '_', '-', '.', '@', '/':
		return true
	}
	return unicode.Is(unicode.Han, r) || unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Hangul)
}

// pdfSafe fpdf 的 UTF-8 字体只覆盖 BMP，平面外字符替换为 U+FFFD
func pdfSafe(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 0xFFFF {
			return unicode.ReplacementChar
		}
		return r
	}, s)
}
