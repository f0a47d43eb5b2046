package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"booking-users/internal/domain"
	"booking-users/internal/feature/user"
)

// WriteCSV 表头 + 每用户一行，行序与输入一致
func WriteCSV(w io.Writer, users []user.DTO) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("%w: write csv header: %w", domain.ErrExport, err)
	}
	for _, u := range users {
		if err := cw.Write(Row(u)); err != nil {
			return fmt.Errorf("%w: write csv row %s: %w", domain.ErrExport, u.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("%w: flush csv: %w", domain.ErrExport, err)
	}
	return nil
}
