package services

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tourdesk/backoffice-api/internal/models"
	"github.com/xuri/excelize/v2"
)

type fakeFinance struct {
	records  []models.FinanceRecord
	totals   []models.CurrencyTotals
	from, to time.Time
}

func (f *fakeFinance) ListByTourDate(uuid.UUID) ([]models.FinanceRecord, error) {
	return f.records, nil
}

func (f *fakeFinance) TotalsByTourDate(uuid.UUID) ([]models.CurrencyTotals, error) {
	return f.totals, nil
}

func (f *fakeFinance) TotalsBetween(from, to time.Time) ([]models.CurrencyTotals, error) {
	f.from, f.to = from, to
	return f.totals, nil
}

type fakeManifest []models.ManifestEntry

func (f fakeManifest) ListManifest(uuid.UUID) ([]models.ManifestEntry, error) {
	return f, nil
}

type fakeOperations map[uuid.UUID]*models.TourOperation

func (f fakeOperations) GetByTourDate(id uuid.UUID) (*models.TourOperation, error) {
	if op, ok := f[id]; ok {
		return op, nil
	}
	return nil, models.ErrNotFound
}

func newReportFixture(t *testing.T) (*ReportService, *fakeFinance, *models.TourDate) {
	t.Helper()
	td := &models.TourDate{
		ID:            uuid.New(),
		TourID:        uuid.New(),
		StartDate:     time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC),
		CapacityTotal: 20,
		TourTitle:     "Cappadocia Balloon Weekend",
	}
	desc := "Reservation payment"
	refType := models.ReferenceTypeBooking
	bookingID := uuid.New()
	finance := &fakeFinance{
		records: []models.FinanceRecord{
			{ID: uuid.New(), TourDateID: td.ID, Type: models.FinanceTypeIncome, Category: "reservation", Amount: 500, Currency: "TRY",
				Description: &desc, TransactionDate: td.StartDate, ReferenceType: &refType, ReferenceID: &bookingID},
			{ID: uuid.New(), TourDateID: td.ID, Type: models.FinanceTypeExpense, Category: "fuel", Amount: 120, Currency: "TRY",
				TransactionDate: td.StartDate},
		},
		totals: []models.CurrencyTotals{{Currency: "TRY", Income: 500, Expense: 120, Net: 380}},
	}
	plate := "50 ABC 123"
	guide := "Elif Kaya"
	ops := fakeOperations{td.ID: {TourDateID: td.ID, VehiclePlate: &plate, GuideName: &guide, Status: models.OperationStatusPlanned}}
	pickup := "Nevsehir otogar"
	manifest := fakeManifest{
		{Passenger: models.Passenger{FullName: "Ayşe Yılmaz", PassengerType: models.PassengerTypeAdult, PickupPoint: &pickup},
			ClientName: "Ayşe Yılmaz", ClientPhone: "+905551234567", BookingStatus: models.BookingStatusConfirmed},
		{Passenger: models.Passenger{FullName: "Can Yılmaz", PassengerType: models.PassengerTypeChild},
			ClientName: "Ayşe Yılmaz", ClientPhone: "+905551234567", BookingStatus: models.BookingStatusConfirmed},
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	svc := NewReportService(fakeTourDates{td.ID: td}, finance, manifest, ops, "en-US", logger)
	return svc, finance, td
}

func TestTourDateSummary(t *testing.T) {
	svc, _, td := newReportFixture(t)

	summary, err := svc.TourDateSummary(td.ID)

	require.NoError(t, err)
	require.Len(t, summary.Totals, 1)
	assert.Equal(t, 380.0, summary.Totals[0].Net)
	assert.Contains(t, summary.Formatted, "TRY")

	_, err = svc.TourDateSummary(uuid.New())
	assert.ErrorIs(t, err, models.ErrTourDateNotFound)
}

func TestMonthlySummary_Window(t *testing.T) {
	svc, finance, _ := newReportFixture(t)

	summary, err := svc.MonthlySummary(time.Date(2026, 2, 17, 15, 4, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), finance.from)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), finance.to)
	assert.Equal(t, 28, summary.To.Day())
}

func TestExportLedger(t *testing.T) {
	svc, _, td := newReportFixture(t)

	data, filename, err := svc.ExportLedger(td.ID)

	require.NoError(t, err)
	assert.Equal(t, "ledger_Cappadocia_Balloon_Weekend_20260601.xlsx", filename)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ledgerSheet)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 3)
	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, "income", rows[1][1])
	assert.Equal(t, "-120", rows[2][4])

	var net []string
	for _, row := range rows {
		if len(row) > 0 && row[0] == "Net" {
			net = row
		}
	}
	require.NotNil(t, net)
	assert.Equal(t, "380", net[4])
	assert.Equal(t, "TRY", net[5])
}

func TestManifestPDF(t *testing.T) {
	svc, _, td := newReportFixture(t)

	data, filename, err := svc.ManifestPDF(td.ID)

	require.NoError(t, err)
	assert.Equal(t, "manifest_Cappadocia_Balloon_Weekend_20260601.pdf", filename)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestSafeFilenamePart(t *testing.T) {
	assert.Equal(t, "Efes_ve_Sirince", safeFilenamePart(" Efes ve Sirince "))
	assert.Equal(t, "x", safeFilenamePart(""))
}
