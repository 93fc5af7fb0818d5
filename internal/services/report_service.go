package services

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/now"
	"github.com/phpdave11/gofpdf"
	"github.com/sirupsen/logrus"
	"github.com/tourdesk/backoffice-api/internal/models"
	"github.com/tourdesk/backoffice-api/internal/utils"
	"github.com/xuri/excelize/v2"
)

// FinanceReader reads a ledger and its totals
type FinanceReader interface {
	ListByTourDate(tourDateID uuid.UUID) ([]models.FinanceRecord, error)
	TotalsByTourDate(tourDateID uuid.UUID) ([]models.CurrencyTotals, error)
	TotalsBetween(from, to time.Time) ([]models.CurrencyTotals, error)
}

// ManifestReader lists the passengers travelling on a tour date
type ManifestReader interface {
	ListManifest(tourDateID uuid.UUID) ([]models.ManifestEntry, error)
}

// OperationReader reads the crew and vehicle of a tour date
type OperationReader interface {
	GetByTourDate(tourDateID uuid.UUID) (*models.TourOperation, error)
}

// ReportService builds finance summaries and printable documents
type ReportService struct {
	tourDates  TourDateStore
	finance    FinanceReader
	manifest   ManifestReader
	operations OperationReader
	locale     string
	logger     *logrus.Logger
}

// NewReportService creates a new ReportService
func NewReportService(tourDates TourDateStore, finance FinanceReader, manifest ManifestReader, operations OperationReader, locale string, logger *logrus.Logger) *ReportService {
	return &ReportService{
		tourDates:  tourDates,
		finance:    finance,
		manifest:   manifest,
		operations: operations,
		locale:     locale,
		logger:     logger,
	}
}

// TourDateSummary returns income, expense and net per currency for one tour date
func (s *ReportService) TourDateSummary(tourDateID uuid.UUID) (*models.FinanceSummary, error) {
	if _, err := s.tourDates.GetByID(tourDateID); err != nil {
		return nil, err
	}
	totals, err := s.finance.TotalsByTourDate(tourDateID)
	if err != nil {
		return nil, err
	}
	return &models.FinanceSummary{
		TourDateID: &tourDateID,
		Totals:     totals,
		Formatted:  s.formatNet(totals),
	}, nil
}

// MonthlySummary returns the totals of every ledger line in the calendar
// month containing day
func (s *ReportService) MonthlySummary(day time.Time) (*models.FinanceSummary, error) {
	month := now.With(day)
	from := month.BeginningOfMonth()
	to := from.AddDate(0, 1, 0)

	totals, err := s.finance.TotalsBetween(from, to)
	if err != nil {
		return nil, err
	}
	last := month.EndOfMonth()
	return &models.FinanceSummary{
		From:      &from,
		To:        &last,
		Totals:    totals,
		Formatted: s.formatNet(totals),
	}, nil
}

func (s *ReportService) formatNet(totals []models.CurrencyTotals) map[string]string {
	out := make(map[string]string, len(totals))
	for _, t := range totals {
		out[t.Currency] = utils.FormatMoney(t.Net, t.Currency, s.locale)
	}
	return out
}

// ============================================================================
// LEDGER EXPORT
// ============================================================================

const ledgerSheet = "Ledger"

// ExportLedger renders a tour date's ledger as an XLSX workbook
func (s *ReportService) ExportLedger(tourDateID uuid.UUID) ([]byte, string, error) {
	td, err := s.tourDates.GetByID(tourDateID)
	if err != nil {
		return nil, "", err
	}
	records, err := s.finance.ListByTourDate(tourDateID)
	if err != nil {
		return nil, "", err
	}
	totals, err := s.finance.TotalsByTourDate(tourDateID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.WithError(err).Warn("Failed to close workbook")
		}
	}()

	if err := f.SetSheetName("Sheet1", ledgerSheet); err != nil {
		return nil, "", fmt.Errorf("failed to name sheet: %w", err)
	}

	headers := []string{"Date", "Type", "Category", "Description", "Amount", "Currency", "Reference"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(ledgerSheet, cell, header)
	}

	for i, rec := range records {
		row := i + 2
		amount := rec.Amount
		if rec.Type == models.FinanceTypeExpense {
			amount = -amount
		}
		f.SetCellValue(ledgerSheet, fmt.Sprintf("A%d", row), rec.TransactionDate.Format("2006-01-02"))
		f.SetCellValue(ledgerSheet, fmt.Sprintf("B%d", row), string(rec.Type))
		f.SetCellValue(ledgerSheet, fmt.Sprintf("C%d", row), rec.Category)
		f.SetCellValue(ledgerSheet, fmt.Sprintf("D%d", row), deref(rec.Description))
		f.SetCellValue(ledgerSheet, fmt.Sprintf("E%d", row), amount)
		f.SetCellValue(ledgerSheet, fmt.Sprintf("F%d", row), rec.Currency)
		if rec.ReferenceID != nil {
			f.SetCellValue(ledgerSheet, fmt.Sprintf("G%d", row), deref(rec.ReferenceType)+" "+rec.ReferenceID.String())
		}
	}

	// one totals row per currency under a blank line
	row := len(records) + 3
	for _, t := range totals {
		f.SetCellValue(ledgerSheet, fmt.Sprintf("A%d", row), "Net")
		f.SetCellValue(ledgerSheet, fmt.Sprintf("B%d", row), fmt.Sprintf("income %.2f", t.Income))
		f.SetCellValue(ledgerSheet, fmt.Sprintf("C%d", row), fmt.Sprintf("expense %.2f", t.Expense))
		f.SetCellValue(ledgerSheet, fmt.Sprintf("E%d", row), t.Net)
		f.SetCellValue(ledgerSheet, fmt.Sprintf("F%d", row), t.Currency)
		row++
	}

	f.SetColWidth(ledgerSheet, "A", "A", 12)
	f.SetColWidth(ledgerSheet, "B", "C", 16)
	f.SetColWidth(ledgerSheet, "D", "D", 40)
	f.SetColWidth(ledgerSheet, "E", "F", 12)
	f.SetColWidth(ledgerSheet, "G", "G", 46)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to write workbook: %w", err)
	}

	filename := fmt.Sprintf("ledger_%s_%s.xlsx", safeFilenamePart(td.TourTitle), td.StartDate.Format("20060102"))
	return buf.Bytes(), filename, nil
}

// ============================================================================
// MANIFEST
// ============================================================================

// ManifestPDF renders the passenger list of a tour date with its crew details
func (s *ReportService) ManifestPDF(tourDateID uuid.UUID) ([]byte, string, error) {
	td, err := s.tourDates.GetByID(tourDateID)
	if err != nil {
		return nil, "", err
	}
	entries, err := s.manifest.ListManifest(tourDateID)
	if err != nil {
		return nil, "", err
	}
	op, err := s.operations.GetByTourDate(tourDateID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, "", err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Passenger Manifest", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr("PASSENGER MANIFEST"))
	pdf.Ln(11)

	pdf.SetFont("Helvetica", "", 11)
	header := []string{
		fmt.Sprintf("Tour      : %s", safe(td.TourTitle, "-")),
		fmt.Sprintf("Dates     : %s - %s", td.StartDate.Format("2006-01-02"), td.EndDate.Format("2006-01-02")),
		fmt.Sprintf("Passengers: %d / %d", len(entries), td.CapacityTotal),
	}
	if op != nil {
		header = append(header,
			fmt.Sprintf("Vehicle   : %s %s", safe(deref(op.VehiclePlate), "-"), deref(op.VehicleInfo)),
			fmt.Sprintf("Guide     : %s %s", safe(deref(op.GuideName), "-"), deref(op.GuidePhone)),
			fmt.Sprintf("Driver    : %s %s", safe(deref(op.DriverName), "-"), deref(op.DriverPhone)),
			fmt.Sprintf("Meeting   : %s", safe(deref(op.MeetingPoint), "-")),
		)
	}
	for _, line := range header {
		pdf.Cell(0, 6, tr(line))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	widths := []float64{10, 60, 18, 32, 36, 60, 61}
	cols := []string{"#", "Name", "Type", "National ID", "Phone", "Pickup", "Booked by"}
	pdf.SetFont("Helvetica", "B", 10)
	for i, col := range cols {
		pdf.CellFormat(widths[i], 7, col, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for i, e := range entries {
		row := []string{
			fmt.Sprintf("%d", i+1),
			e.FullName,
			string(e.PassengerType),
			deref(e.NationalID),
			deref(e.Phone),
			deref(e.PickupPoint),
			e.ClientName + " " + e.ClientPhone,
		}
		for j, v := range row {
			pdf.CellFormat(widths[j], 7, tr(v), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to render manifest: %w", err)
	}

	filename := fmt.Sprintf("manifest_%s_%s.pdf", safeFilenamePart(td.TourTitle), td.StartDate.Format("20060102"))
	return buf.Bytes(), filename, nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "x"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
