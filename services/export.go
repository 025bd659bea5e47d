package services

import (
	"context"
	"fmt"
	"io"

	"coursehub/models"
	"coursehub/repository"

	"github.com/xuri/excelize/v2"
)

// ExportPayments writes the filtered payment listing as a spreadsheet for
// offline admin reporting. The filter's paging is widened so the export
// covers the whole filtered set.
func (s *PaymentService) ExportPayments(ctx context.Context, filter repository.ListFilter, w io.Writer) error {
	filter.Limit = 200
	filter.Offset = 0

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Payments"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{"Payment ID", "Student", "Phone", "Course ID", "Amount", "Currency",
		"Reference", "Status", "Decided At", "Decided By", "Rejection Reason", "Submitted At"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("error building header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("error writing header: %w", err)
		}
	}

	row := 2
	for {
		payments, _, err := s.payments.List(ctx, filter)
		if err != nil {
			return fmt.Errorf("error listing payments for export: %w", err)
		}
		if len(payments) == 0 {
			break
		}

		for i := range payments {
			if err := writePaymentRow(f, sheet, row, &payments[i]); err != nil {
				return err
			}
			row++
		}

		if len(payments) < filter.Limit {
			break
		}
		filter.Offset += filter.Limit
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing spreadsheet: %w", err)
	}
	return nil
}

func writePaymentRow(f *excelize.File, sheet string, row int, p *models.Payment) error {
	resp := p.ToResponse()
	values := []interface{}{
		resp.ID, resp.StudentName, resp.StudentPhone, resp.CourseID, resp.Amount, resp.Currency,
		resp.TransactionReference, resp.Status,
		stringOrEmpty(resp.DecidedAt), stringOrEmpty(resp.DecidedBy), stringOrEmpty(resp.RejectionReason),
		resp.CreatedAt,
	}
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return fmt.Errorf("error building cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("error writing row %d: %w", row, err)
		}
	}
	return nil
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
