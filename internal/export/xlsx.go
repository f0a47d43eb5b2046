package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"booking-users/internal/domain"
	"booking-users/internal/feature/user"
)

const SheetName = "Users"

var xlsxColumnWidths = []float64{38, 16, 16, 30, 18, 30, 20, 20}

// WriteXLSX 单工作表；字符串列为文本单元格，时间列为日期单元格
func WriteXLSX(w io.Writer, users []user.DTO) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheet(f, users); err != nil {
		return fmt.Errorf("%w: build xlsx: %w", domain.ErrExport, err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("%w: write xlsx: %w", domain.ErrExport, err)
	}
	return nil
}

func writeSheet(f *excelize.File, users []user.DTO) error {
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}
	headStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	dateFmt := "yyyy-mm-dd hh:mm:ss"
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return err
	}
	for i, width := range xlsxColumnWidths {
		if err := sw.SetColWidth(i+1, i+1, width); err != nil {
			return err
		}
	}

	head := make([]any, len(Header))
	for i, h := range Header {
		head[i] = excelize.Cell{StyleID: headStyle, Value: h}
	}
	if err := sw.SetRow("A1", head); err != nil {
		return err
	}

	for r, u := range users {
		row := make([]any, 0, len(Header))
		for _, text := range textCells(u) {
			row = append(row, text)
		}
		for _, ts := range []any{u.CreatedAt.UTC(), u.UpdatedAt.UTC()} {
			row = append(row, excelize.Cell{StyleID: dateStyle, Value: ts})
		}
		// 零值时间写空单元格
		if u.CreatedAt.IsZero() {
			row[textColumns] = nil
		}
		if u.UpdatedAt.IsZero() {
			row[textColumns+1] = nil
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	return sw.Flush()
}
