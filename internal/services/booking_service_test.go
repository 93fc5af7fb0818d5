package services

import (
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tourdesk/backoffice-api/internal/config"
	"github.com/tourdesk/backoffice-api/internal/models"
	"github.com/tourdesk/backoffice-api/internal/pricing"
)

// ============================================================================
// FAKES
// ============================================================================

type fakeTours map[uuid.UUID]*models.Tour

func (f fakeTours) GetByID(id uuid.UUID) (*models.Tour, error) {
	if t, ok := f[id]; ok {
		return t, nil
	}
	return nil, models.ErrTourNotFound
}

type fakeTourDates map[uuid.UUID]*models.TourDate

func (f fakeTourDates) GetByID(id uuid.UUID) (*models.TourDate, error) {
	if td, ok := f[id]; ok {
		return td, nil
	}
	return nil, models.ErrTourDateNotFound
}

type fakePriceGroups map[uuid.UUID]*models.PriceGroup

func (f fakePriceGroups) GetByID(id uuid.UUID) (*models.PriceGroup, error) {
	if pg, ok := f[id]; ok {
		return pg, nil
	}
	return nil, models.ErrPriceGroupNotFound
}

type fakeClients map[uuid.UUID]*models.Client

func (f fakeClients) GetByID(id uuid.UUID) (*models.Client, error) {
	if c, ok := f[id]; ok {
		return c, nil
	}
	return nil, models.ErrClientNotFound
}

// fakeBookings keeps bookings in memory and upserts clients by phone the
// way the database does
type fakeBookings struct {
	bookings map[uuid.UUID]*models.Booking
	byPhone  map[string]*models.Client
	ledger   []models.FinanceRecord
	released int
	reserved int
	failWith error
}

func newFakeBookings() *fakeBookings {
	return &fakeBookings{
		bookings: map[uuid.UUID]*models.Booking{},
		byPhone:  map[string]*models.Client{},
	}
}

func (f *fakeBookings) Create(b *models.Booking, client *models.Client, passengers []models.Passenger, income *models.FinanceRecord) error {
	if f.failWith != nil {
		return f.failWith
	}
	if client != nil {
		if existing, ok := f.byPhone[client.Phone]; ok {
			existing.FullName, existing.Email = client.FullName, client.Email
			client = existing
		} else {
			f.byPhone[client.Phone] = client
		}
		b.ClientID = client.ID
	}
	b.Passengers = passengers
	f.bookings[b.ID] = b
	f.reserved += b.Pax().Total()
	if income != nil {
		income.TourDateID = b.TourDateID
		income.ReferenceID = &b.ID
		f.ledger = append(f.ledger, *income)
	}
	return nil
}

func (f *fakeBookings) GetByID(id uuid.UUID) (*models.Booking, error) {
	if b, ok := f.bookings[id]; ok {
		return b, nil
	}
	return nil, models.ErrBookingNotFound
}

func (f *fakeBookings) List(filter models.BookingFilter) ([]models.Booking, error) {
	out := []models.Booking{}
	for _, b := range f.bookings {
		out = append(out, *b)
	}
	return out, nil
}

func (f *fakeBookings) Update(b *models.Booking, passengers []models.Passenger, paxDelta int) error {
	if passengers != nil {
		b.Passengers = passengers
	}
	f.reserved += paxDelta
	f.bookings[b.ID] = b
	return nil
}

func (f *fakeBookings) Cancel(id uuid.UUID, refund *models.FinanceRecord) error {
	b, ok := f.bookings[id]
	if !ok {
		return models.ErrBookingNotFound
	}
	if b.BookingStatus == models.BookingStatusCancelled {
		return models.ErrBookingAlreadyCancelled
	}
	b.BookingStatus = models.BookingStatusCancelled
	f.released += b.Pax().Total()
	if refund != nil {
		refund.ReferenceID = &id
		f.ledger = append(f.ledger, *refund)
	}
	return nil
}

// ============================================================================
// FIXTURES
// ============================================================================

type bookingFixture struct {
	svc        *BookingService
	store      *fakeBookings
	clients    fakeClients
	tour       *models.Tour
	tourDate   *models.TourDate
	priceGroup *models.PriceGroup
}

func f64(v float64) *float64 { return &v }

func newBookingFixture(model pricing.Model) *bookingFixture {
	tour := &models.Tour{
		ID:           uuid.New(),
		Title:        "Cappadocia Balloon Weekend",
		PricingModel: model,
		Status:       models.TourStatusActive,
		BabyMaxAge:   2,
		ChildMinAge:  3,
		ChildMaxAge:  11,
	}
	pg := &models.PriceGroup{ID: uuid.New(), TourID: tour.ID, Name: "Standard", Currency: "TRY", Status: models.PriceGroupStatusActive}
	if model == pricing.ModelRoomBased {
		maxPax := 4
		pg.PriceSinglePP, pg.PriceDoublePP = f64(150), f64(100)
		pg.PriceChild1, pg.PriceChild2 = f64(40), f64(20)
		pg.MaxPax = &maxPax
	} else {
		pg.PriceAdult, pg.PriceChild, pg.PriceBaby = f64(100), f64(50), f64(30)
	}
	td := &models.TourDate{
		ID:                uuid.New(),
		TourID:            tour.ID,
		PriceGroupID:      pg.ID,
		StartDate:         time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:           time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC),
		CapacityTotal:     20,
		CapacityAvailable: 20,
		Status:            models.TourDateStatusAvailable,
	}

	store := newFakeBookings()
	clients := fakeClients{}
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc := NewBookingService(
		fakeTours{tour.ID: tour},
		fakeTourDates{td.ID: td},
		fakePriceGroups{pg.ID: pg},
		clients,
		store,
		config.BookingConfig{DefaultCurrency: "TRY", CurrencyLocale: "en-US"},
		logger,
	)
	return &bookingFixture{svc: svc, store: store, clients: clients, tour: tour, tourDate: td, priceGroup: pg}
}

func passengers(types ...string) []models.PassengerInput {
	out := make([]models.PassengerInput, len(types))
	for i, t := range types {
		out[i] = models.PassengerInput{FullName: "Passenger " + string(rune('A'+i)), PassengerType: t}
	}
	return out
}

func (f *bookingFixture) request(paid float64, types ...string) *models.CreateBookingRequest {
	return &models.CreateBookingRequest{
		TourDateID: f.tourDate.ID.String(),
		Client:     &models.NewClientInput{FullName: "Ayse Yilmaz", Phone: "05551234567"},
		Passengers: passengers(types...),
		AmountPaid: paid,
	}
}

// ============================================================================
// CREATE
// ============================================================================

func TestCreate_PerPersonTotalAndStatus(t *testing.T) {
	tests := []struct {
		name   string
		paid   float64
		status models.BookingStatus
	}{
		{"fully paid", 250, models.BookingStatusConfirmed},
		{"overpaid", 300, models.BookingStatusConfirmed},
		{"partially paid", 100, models.BookingStatusPending},
		{"nothing paid", 0, models.BookingStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture(pricing.ModelPerPerson)

			b, err := f.svc.Create(nil, f.request(tt.paid, "adult", "adult", "child"))

			require.NoError(t, err)
			assert.Equal(t, 250.0, b.TotalAmount)
			assert.Equal(t, tt.status, b.BookingStatus)
			assert.Equal(t, 2, b.PaxAdult)
			assert.Equal(t, 1, b.PaxChild)
			assert.Equal(t, "TRY", b.Currency)
			assert.Equal(t, 100.0, b.PricingSnapshot.Adult)
			assert.Equal(t, 3, f.store.reserved)
		})
	}
}

func TestCreate_IncomeLineOnlyWhenPaid(t *testing.T) {
	f := newBookingFixture(pricing.ModelPerPerson)
	actor := uuid.New()

	b, err := f.svc.Create(&actor, f.request(80, "adult"))
	require.NoError(t, err)

	require.Len(t, f.store.ledger, 1)
	line := f.store.ledger[0]
	assert.Equal(t, models.FinanceTypeIncome, line.Type)
	assert.Equal(t, models.FinanceCategoryReservation, line.Category)
	assert.Equal(t, 80.0, line.Amount)
	assert.Equal(t, b.ID, *line.ReferenceID)
	assert.Equal(t, models.ReferenceTypeBooking, *line.ReferenceType)
	assert.Equal(t, actor, *line.CreatedBy)

	_, err = f.svc.Create(nil, f.request(0, "adult"))
	require.NoError(t, err)
	assert.Len(t, f.store.ledger, 1)
}

func TestCreate_PricingOverride(t *testing.T) {
	f := newBookingFixture(pricing.ModelPerPerson)
	req := f.request(0, "adult", "baby")
	req.Pricing = &pricing.UnitPrices{Adult: 90, Child: 45, Baby: 10}

	b, err := f.svc.Create(nil, req)

	require.NoError(t, err)
	assert.Equal(t, 100.0, b.TotalAmount)
	assert.Equal(t, "TRY", b.PricingSnapshot.Currency)
}

func TestCreate_NegativePricingOverrideRejected(t *testing.T) {
	f := newBookingFixture(pricing.ModelPerPerson)
	req := f.request(0, "adult", "adult")
	req.Pricing = &pricing.UnitPrices{Adult: -50}

	_, err := f.svc.Create(nil, req)

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "pricing.adult", verr.Field)
	assert.Empty(t, f.store.bookings)
	assert.Zero(t, f.store.reserved)
}

func TestCreate_RoomBasedKeepsExactTotal(t *testing.T) {
	f := newBookingFixture(pricing.ModelRoomBased)
	req := f.request(0, "adult", "adult", "child", "child", "adult")
	req.Rooms = []pricing.Room{{Adults: 2, Children: 2}, {Adults: 1}}

	b, err := f.svc.Create(nil, req)

	require.NoError(t, err)
	// 2x100 + 40 + 20 + 150
	assert.Equal(t, 410.0, b.TotalAmount)
	require.NotNil(t, b.PricingSnapshot.Quote)
	assert.Len(t, b.PricingSnapshot.Quote.Lines, 2)
	assert.Equal(t, req.Rooms, b.PricingSnapshot.Rooms)
	assert.Equal(t, pricing.ModelRoomBased, b.PricingSnapshot.PricingModel)
	assert.Equal(t, 0.0, b.PricingSnapshot.Child)
}

func TestCreate_RoomBasedValidation(t *testing.T) {
	f := newBookingFixture(pricing.ModelRoomBased)

	_, err := f.svc.Create(nil, f.request(0, "adult"))
	assert.True(t, models.IsValidation(err), "rooms are required")

	req := f.request(0, "adult", "adult", "adult")
	req.Rooms = []pricing.Room{{Adults: 3}}
	_, err = f.svc.Create(nil, req)
	assert.True(t, models.IsValidation(err), "triple tier is not configured")

	req = f.request(0, "adult", "adult")
	req.Rooms = []pricing.Room{{Adults: 1, Children: 1}}
	_, err = f.svc.Create(nil, req)
	assert.True(t, models.IsValidation(err), "roster must match the rooms")

	assert.Empty(t, f.store.bookings)
}

func TestCreate_TourDateErrors(t *testing.T) {
	f := newBookingFixture(pricing.ModelPerPerson)

	req := f.request(0, "adult")
	req.TourDateID = uuid.NewString()
	_, err := f.svc.Create(nil, req)
	assert.ErrorIs(t, err, models.ErrTourDateNotFound)

	f.tourDate.Status = models.TourDateStatusCancelled
	_, err = f.svc.Create(nil, f.request(0, "adult"))
	assert.ErrorIs(t, err, models.ErrTourDateClosed)
}

func TestCreate_ClientResolution(t *testing.T) {
	t.Run("same client for every phone spelling", func(t *testing.T) {
		f := newBookingFixture(pricing.ModelPerPerson)
		ids := map[uuid.UUID]bool{}

		for _, phone := range []string{"5551234567", "05551234567", "905551234567"} {
			req := f.request(0, "adult")
			req.Client.Phone = phone
			b, err := f.svc.Create(nil, req)
			require.NoError(t, err)
			ids[b.ClientID] = true
		}

		assert.Len(t, ids, 1)
		assert.Contains(t, f.store.byPhone, "+905551234567")
	})

	t.Run("existing client id", func(t *testing.T) {
		f := newBookingFixture(pricing.ModelPerPerson)
		client := &models.Client{ID: uuid.New(), FullName: "Mehmet Demir", Phone: "+905550000000"}
		f.clients[client.ID] = client
		id := client.ID.String()

		req := f.request(0, "adult")
		req.Client = nil
		req.ClientID = &id
		b, err := f.svc.Create(nil, req)

		require.NoError(t, err)
		assert.Equal(t, client.ID, b.ClientID)
		assert.Empty(t, f.store.byPhone)
	})

	t.Run("unknown client id", func(t *testing.T) {
		f := newBookingFixture(pricing.ModelPerPerson)
		id := uuid.NewString()
		req := f.request(0, "adult")
		req.ClientID = &id

		_, err := f.svc.Create(nil, req)
		assert.ErrorIs(t, err, models.ErrClientNotFound)
	})

	t.Run("missing client", func(t *testing.T) {
		f := newBookingFixture(pricing.ModelPerPerson)
		req := f.request(0, "adult")
		req.Client = nil

		_, err := f.svc.Create(nil, req)
		assert.True(t, models.IsValidation(err))
	})

	t.Run("invalid phone", func(t *testing.T) {
		f := newBookingFixture(pricing.ModelPerPerson)
		req := f.request(0, "adult")
		req.Client.Phone = "123"

		_, err := f.svc.Create(nil, req)
		assert.True(t, models.IsValidation(err))
	})
}

func TestCreate_BirthDateMustMatchType(t *testing.T) {
	f := newBookingFixture(pricing.ModelPerPerson)
	req := f.request(0, "adult", "child")
	birth := "2019-07-15" // 6 on departure
	req.Passengers[1].BirthDate = &birth

	_, err := f.svc.Create(nil, req)
	require.NoError(t, err)

	req = f.request(0, "adult", "baby")
	req.Passengers[1].BirthDate = &birth
	_, err = f.svc.Create(nil, req)
	assert.True(t, models.IsValidation(err))
}

func TestCreate_StoreFailurePropagates(t *testing.T) {
	f := newBookingFixture(pricing.ModelPerPerson)
	f.store.failWith = models.ErrInsufficientCapacity

	_, err := f.svc.Create(nil, f.request(0, "adult"))

	assert.ErrorIs(t, err, models.ErrInsufficientCapacity)
	assert.Empty(t, f.store.bookings)
}

func TestAgeOn(t *testing.T) {
	day := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 6, ageOn(time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC), day))
	assert.Equal(t, 5, ageOn(time.Date(2020, 6, 2, 0, 0, 0, 0, time.UTC), day))
	assert.Equal(t, 0, ageOn(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), day))
}

// ============================================================================
// QUOTE / WIZARD
// ============================================================================

func TestQuote_NormalizesRooms(t *testing.T) {
	f := newBookingFixture(pricing.ModelRoomBased)

	resp, err := f.svc.Quote(&models.QuoteRequest{
		TourDateID: f.tourDate.ID.String(),
		Rooms:      []pricing.Room{{Adults: 3, Children: 3}},
	})

	require.NoError(t, err)
	assert.Equal(t, pricing.Room{Adults: 2, Children: 2}, resp.Rooms[0])
	assert.Equal(t, 2, resp.MaxAdults)
	assert.Equal(t, 4, resp.MaxPax)
	assert.Equal(t, 260.0, resp.Quote.Total)
	assert.NotEmpty(t, resp.FormattedTotal)
}

func TestPlanPassengers(t *testing.T) {
	f := newBookingFixture(pricing.ModelPerPerson)

	w, err := f.svc.PlanPassengers(&models.WizardPassengersRequest{
		TourDateID: f.tourDate.ID.String(),
		Rooms:      []pricing.Room{{Adults: 1, Babies: 1}},
	})

	require.NoError(t, err)
	assert.Equal(t, StepPassengerDetails, w.Step)
	require.Len(t, w.Passengers, 2)
	assert.Equal(t, "adult", w.Passengers[0].PassengerType)
	assert.Equal(t, "baby", w.Passengers[1].PassengerType)
}

// ============================================================================
// UPDATE / CANCEL
// ============================================================================

func TestUpdate_AmountPaidRederivesStatus(t *testing.T) {
	f := newBookingFixture(pricing.ModelPerPerson)
	b, err := f.svc.Create(nil, f.request(0, "adult", "adult"))
	require.NoError(t, err)
	require.Equal(t, models.BookingStatusPending, b.BookingStatus)

	b, err = f.svc.Update(nil, b.ID, &models.UpdateBookingRequest{AmountPaid: f64(200)})

	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, b.BookingStatus)
}

func TestUpdate_ReplacePassengersRecomputesTotal(t *testing.T) {
	f := newBookingFixture(pricing.ModelPerPerson)
	b, err := f.svc.Create(nil, f.request(200, "adult", "adult"))
	require.NoError(t, err)
	require.Equal(t, models.BookingStatusConfirmed, b.BookingStatus)

	roster := passengers("adult", "adult", "child")
	b, err = f.svc.Update(nil, b.ID, &models.UpdateBookingRequest{Passengers: &roster})

	require.NoError(t, err)
	assert.Equal(t, 250.0, b.TotalAmount)
	assert.Equal(t, models.BookingStatusPending, b.BookingStatus)
	assert.Len(t, b.Passengers, 3)
	assert.Equal(t, 3, f.store.reserved)
	assert.Equal(t, []pricing.Room{{Adults: 2, Children: 1}}, b.PricingSnapshot.Rooms)
	require.NotNil(t, b.PricingSnapshot.Quote)
	assert.Equal(t, 250.0, b.PricingSnapshot.Quote.Total)
}

func TestUpdate_RoomBasedRosterKeepsComposition(t *testing.T) {
	f := newBookingFixture(pricing.ModelRoomBased)
	req := f.request(0, "adult", "adult")
	req.Rooms = []pricing.Room{{Adults: 2}}
	b, err := f.svc.Create(nil, req)
	require.NoError(t, err)

	roster := passengers("adult")
	_, err = f.svc.Update(nil, b.ID, &models.UpdateBookingRequest{Passengers: &roster})
	assert.True(t, models.IsValidation(err))

	roster = passengers("adult", "adult")
	roster[0].FullName = "Renamed"
	b, err = f.svc.Update(nil, b.ID, &models.UpdateBookingRequest{Passengers: &roster})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", b.Passengers[0].FullName)
	assert.Equal(t, 200.0, b.TotalAmount)
}

func TestUpdate_CancelledStatusRoutesToCancel(t *testing.T) {
	f := newBookingFixture(pricing.ModelPerPerson)
	b, err := f.svc.Create(nil, f.request(0, "adult", "adult", "adult"))
	require.NoError(t, err)

	status := string(models.BookingStatusCancelled)
	b, err = f.svc.Update(nil, b.ID, &models.UpdateBookingRequest{BookingStatus: &status})

	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, b.BookingStatus)
	assert.Equal(t, 3, f.store.released)

	notes := "late edit"
	_, err = f.svc.Update(nil, b.ID, &models.UpdateBookingRequest{Notes: &notes})
	assert.ErrorIs(t, err, models.ErrBookingAlreadyCancelled)
}

func TestCancel_ReleasesOnce(t *testing.T) {
	f := newBookingFixture(pricing.ModelPerPerson)
	b, err := f.svc.Create(nil, f.request(0, "adult", "adult", "child"))
	require.NoError(t, err)

	require.NoError(t, f.svc.Cancel(nil, b.ID, nil))
	err = f.svc.Cancel(nil, b.ID, nil)

	assert.ErrorIs(t, err, models.ErrBookingAlreadyCancelled)
	assert.Equal(t, 3, f.store.released)
	assert.Empty(t, f.store.ledger)
}

func TestCancel_Refund(t *testing.T) {
	f := newBookingFixture(pricing.ModelPerPerson)
	b, err := f.svc.Create(nil, f.request(100, "adult"))
	require.NoError(t, err)

	err = f.svc.Cancel(nil, b.ID, &models.CancelBookingRequest{RefundAmount: 150})
	assert.True(t, models.IsValidation(err))

	reason := "client ill"
	err = f.svc.Cancel(nil, b.ID, &models.CancelBookingRequest{RefundAmount: 60, Reason: &reason})
	require.NoError(t, err)

	require.Len(t, f.store.ledger, 2)
	refund := f.store.ledger[1]
	assert.Equal(t, models.FinanceTypeExpense, refund.Type)
	assert.Equal(t, models.FinanceCategoryRefund, refund.Category)
	assert.Equal(t, 60.0, refund.Amount)
	assert.Contains(t, *refund.Description, reason)
}
