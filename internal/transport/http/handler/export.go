package handler

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"booking-users/internal/export"
	"booking-users/internal/transport/http/ez"
	mdw "booking-users/internal/transport/http/middleware"
)

const (
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

var exportContentTypes = map[string]string{
	FormatCSV:  "text/csv",
	FormatPDF:  "application/pdf",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// renderExport 全量取数并完整渲染到内存，失败时调用方不会写出半截文件
func renderExport(ctx context.Context, dir Directory, opts ExportOptions, format string) (f ez.File, err error) {
	contentType, ok := exportContentTypes[format]
	if !ok {
		return ez.File{}, ez.NotFound(fmt.Sprintf("unsupported export format %q", format))
	}
	var buf bytes.Buffer
	defer func() { mdw.ObserveExport(format, buf.Len(), err) }()

	users, err := dir.ExportAll(ctx)
	if err != nil {
		return ez.File{}, err
	}
	switch format {
	case FormatCSV:
		err = export.WriteCSV(&buf, users)
	case FormatPDF:
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		err = export.WritePDF(&buf, users, export.PDFOptions{
			Title:       opts.Title,
			GeneratedAt: now(),
			Compress:    opts.PDFCompress,
			Font:        opts.PDFFont,
		})
	case FormatXLSX:
		err = export.WriteXLSX(&buf, users)
	}
	if err != nil {
		return ez.File{}, err
	}
	return ez.File{
		Name:        "users." + format,
		ContentType: contentType,
		Data:        buf.Bytes(),
	}, nil
}
