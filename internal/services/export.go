package services

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/havenwelfare/haven-backend/internal/audit"
	"github.com/havenwelfare/haven-backend/internal/auth"
	"github.com/havenwelfare/haven-backend/internal/models"
	"github.com/havenwelfare/haven-backend/internal/repository"
)

const donationSheet = "Donations"

// DonationExportHeader is the first row of the donation workbook.
var DonationExportHeader = []string{
	"Receipt Number",
	"Donation ID",
	"Transaction ID",
	"Patient",
	"Amount",
	"Donor Name",
	"Donor Email",
	"Donor Phone",
	"Status",
	"Admin Remarks",
	"Submitted At",
	"Updated At",
}

var donationColumnWidths = []float64{14, 38, 24, 24, 12, 24, 30, 16, 14, 40, 22, 22}

// ExportDonations renders donations, newest first, as an .xlsx workbook.
func (s *DonationService) ExportDonations(ctx context.Context, id *auth.Identity, status models.DonationStatus) ([]byte, error) {
	if err := auth.Authorize(id, auth.ExportDonations); err != nil {
		return nil, err
	}
	donations, err := s.donations.List(ctx, repository.DonationFilter{Status: status}, 0)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}

	data, err := GenerateDonationWorkbook(donations)
	if err != nil {
		return nil, err
	}

	details := fmt.Sprintf("%d donations", len(donations))
	if status != "" {
		details += ", status: " + string(status)
	}
	s.audit.Record(audit.Actor(id.ID, id.Email, audit.DonationsExported, details))
	return data, nil
}

func GenerateDonationWorkbook(donations []models.Donation) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(donationSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]any, len(DonationExportHeader))
	for i, h := range DonationExportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(donationSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(DonationExportHeader))
	if err != nil {
		return nil, fmt.Errorf("failed to convert column number: %w", err)
	}
	if err := f.SetCellStyle(donationSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	for i, width := range donationColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(donationSheet, col, col, width); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, d := range donations {
		updated := ""
		if d.UpdatedAt != nil {
			updated = d.UpdatedAt.UTC().Format("2006-01-02 15:04:05")
		}
		row := []any{
			ReceiptNumber(d.ID),
			d.ID.String(),
			d.TransactionID,
			d.PatientName,
			d.Amount,
			derefOr(d.DonorName, ""),
			derefOr(d.DonorEmail, ""),
			derefOr(d.DonorPhone, ""),
			string(d.Status),
			derefOr(d.AdminRemarks, ""),
			d.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			updated,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(donationSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
