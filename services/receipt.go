package services

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"coursehub/models"

	"github.com/jung-kurt/gofpdf"
)

// ReceiptGenerator renders payment receipts as PDF files. Receipts are
// generated on approval and attached to the approval email.
type ReceiptGenerator struct {
	dir string
}

// NewReceiptGenerator creates a generator writing receipts under dir.
func NewReceiptGenerator(dir string) *ReceiptGenerator {
	if dir == "" {
		dir = "uploads/receipts"
	}
	return &ReceiptGenerator{dir: dir}
}

// Generate creates a PDF receipt for an approved payment and returns its
// file path.
func (g *ReceiptGenerator) Generate(p *models.Payment, course *models.Course) (string, error) {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating receipt directory: %w", err)
	}

	decidedAt := time.Now().UTC()
	if p.DecidedAt != nil {
		decidedAt = *p.DecidedAt
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Payment Receipt")
	pdf.Ln(14)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(40, 10, fmt.Sprintf("Student: %s", p.StudentName))
	pdf.Ln(10)
	pdf.Cell(40, 10, fmt.Sprintf("Course: %s", course.Title))
	pdf.Ln(10)
	pdf.Cell(40, 10, fmt.Sprintf("Amount: %.2f %s", p.Amount, p.Currency))
	pdf.Ln(10)
	pdf.Cell(40, 10, fmt.Sprintf("Reference: %s", referenceOf(p)))
	pdf.Ln(10)
	pdf.Cell(40, 10, fmt.Sprintf("Approved on: %s", decidedAt.Format("2006-01-02 15:04 UTC")))
	pdf.Ln(14)
	pdf.Cell(40, 10, "Thank you for your enrollment.")

	fileName := filepath.Join(g.dir, fmt.Sprintf("receipt_%s.pdf", p.ID))
	if err := pdf.OutputFileAndClose(fileName); err != nil {
		return "", fmt.Errorf("error generating receipt PDF: %w", err)
	}

	return fileName, nil
}
