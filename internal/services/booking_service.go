package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tourdesk/backoffice-api/internal/config"
	"github.com/tourdesk/backoffice-api/internal/models"
	"github.com/tourdesk/backoffice-api/internal/pricing"
	"github.com/tourdesk/backoffice-api/internal/utils"
	"github.com/tourdesk/backoffice-api/pkg/validator"
)

// TourStore reads tours
type TourStore interface {
	GetByID(id uuid.UUID) (*models.Tour, error)
}

// TourDateStore reads tour dates
type TourDateStore interface {
	GetByID(id uuid.UUID) (*models.TourDate, error)
}

// PriceGroupStore reads price groups
type PriceGroupStore interface {
	GetByID(id uuid.UUID) (*models.PriceGroup, error)
}

// ClientStore reads clients
type ClientStore interface {
	GetByID(id uuid.UUID) (*models.Client, error)
}

// BookingStore persists bookings together with their side effects
type BookingStore interface {
	Create(booking *models.Booking, client *models.Client, passengers []models.Passenger, income *models.FinanceRecord) error
	GetByID(id uuid.UUID) (*models.Booking, error)
	List(filter models.BookingFilter) ([]models.Booking, error)
	Update(booking *models.Booking, passengers []models.Passenger, paxDelta int) error
	Cancel(id uuid.UUID, refund *models.FinanceRecord) error
}

// BookingService prices, creates, edits and cancels bookings
type BookingService struct {
	tours       TourStore
	tourDates   TourDateStore
	priceGroups PriceGroupStore
	clients     ClientStore
	bookings    BookingStore
	phone       *validator.PhoneValidator
	config      config.BookingConfig
	logger      *logrus.Logger
}

// NewBookingService creates a new BookingService
func NewBookingService(
	tours TourStore,
	tourDates TourDateStore,
	priceGroups PriceGroupStore,
	clients ClientStore,
	bookings BookingStore,
	cfg config.BookingConfig,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		tours:       tours,
		tourDates:   tourDates,
		priceGroups: priceGroups,
		clients:     clients,
		bookings:    bookings,
		phone:       validator.NewPhoneValidator(),
		config:      cfg,
		logger:      logger,
	}
}

// bookingContext is everything pricing needs about a tour date
type bookingContext struct {
	tourDate   *models.TourDate
	tour       *models.Tour
	priceGroup *models.PriceGroup
	group      pricing.Group
}

func (s *BookingService) loadContext(tourDateID uuid.UUID) (*bookingContext, error) {
	td, err := s.tourDates.GetByID(tourDateID)
	if err != nil {
		return nil, err
	}
	tour, err := s.tours.GetByID(td.TourID)
	if err != nil {
		return nil, err
	}
	pg, err := s.priceGroups.GetByID(td.PriceGroupID)
	if err != nil {
		return nil, err
	}
	group := pg.PricingGroup(tour.PricingModel)
	if group.Currency == "" {
		group.Currency = s.config.DefaultCurrency
	}
	return &bookingContext{tourDate: td, tour: tour, priceGroup: pg, group: group}, nil
}

func parseID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, models.NewValidationError(field, "must be a valid uuid")
	}
	return id, nil
}

// ============================================================================
// QUOTE / WIZARD
// ============================================================================

// Quote normalizes the rooms against the tour date's price group and prices them
func (s *BookingService) Quote(req *models.QuoteRequest) (*models.QuoteResponse, error) {
	tourDateID, err := parseID("tour_date_id", req.TourDateID)
	if err != nil {
		return nil, err
	}
	bc, err := s.loadContext(tourDateID)
	if err != nil {
		return nil, err
	}

	rooms := make([]pricing.Room, len(req.Rooms))
	for i, r := range req.Rooms {
		rooms[i] = pricing.Normalize(bc.group, r)
	}
	quote := pricing.Calculate(bc.group, rooms)

	return &models.QuoteResponse{
		Rooms:          rooms,
		Quote:          quote,
		UnitPrices:     pricing.ToUnitPrices(bc.group, quote, pricing.CountRooms(rooms)),
		MaxAdults:      pricing.MaxAdults(bc.group),
		MaxPax:         bc.group.MaxPax,
		FormattedTotal: utils.FormatMoney(quote.Total, quote.Currency, s.config.CurrencyLocale),
	}, nil
}

// PlanPassengers runs the wizard's room selection step server side and
// returns the passenger roster to fill in
func (s *BookingService) PlanPassengers(req *models.WizardPassengersRequest) (*BookingWizard, error) {
	tourDateID, err := parseID("tour_date_id", req.TourDateID)
	if err != nil {
		return nil, err
	}
	bc, err := s.loadContext(tourDateID)
	if err != nil {
		return nil, err
	}

	w := NewBookingWizard()
	for _, r := range req.Rooms {
		w.Rooms = append(w.Rooms, pricing.Normalize(bc.group, r))
	}
	w.Passengers = req.Passengers
	if err := w.Next(); err != nil {
		return nil, err
	}
	return w, nil
}

// ============================================================================
// CREATE
// ============================================================================

// Create resolves the client, prices the roster and stores the booking
// with its passengers, capacity reservation and income line in one
// transaction
func (s *BookingService) Create(actorID *uuid.UUID, req *models.CreateBookingRequest) (*models.Booking, error) {
	tourDateID, err := parseID("tour_date_id", req.TourDateID)
	if err != nil {
		return nil, err
	}
	bc, err := s.loadContext(tourDateID)
	if err != nil {
		return nil, err
	}
	if !bc.tourDate.IsBookable() {
		return nil, models.ErrTourDateClosed
	}

	booking := &models.Booking{
		ID:         uuid.New(),
		TourDateID: bc.tourDate.ID,
		TourID:     bc.tourDate.TourID,
		AmountPaid: pricing.Round(req.AmountPaid),
		Notes:      req.Notes,
		CreatedBy:  actorID,
	}

	client, err := s.resolveClient(booking, req)
	if err != nil {
		return nil, err
	}

	passengers, err := s.buildPassengers(bc, booking.ID, req.Passengers)
	if err != nil {
		return nil, err
	}
	counts := models.CountPassengers(passengers)

	snapshot, total, err := s.price(bc, counts, req.Rooms, req.Pricing)
	if err != nil {
		return nil, err
	}
	if len(req.Rooms) > 0 {
		if err := checkRoster(snapshot.Rooms, passengers); err != nil {
			return nil, err
		}
	}

	booking.PaxAdult, booking.PaxChild, booking.PaxBaby = counts.Adults, counts.Children, counts.Babies
	booking.PricingSnapshot = snapshot
	booking.TotalAmount = total
	booking.Currency = snapshot.Currency
	booking.BookingStatus = models.DeriveBookingStatus(booking.AmountPaid, booking.TotalAmount)

	var income *models.FinanceRecord
	if booking.AmountPaid > 0 {
		income = s.ledgerLine(models.FinanceTypeIncome, models.FinanceCategoryReservation,
			booking.AmountPaid, booking.Currency, "Reservation payment", actorID)
	}

	if err := s.bookings.Create(booking, client, passengers, income); err != nil {
		s.logger.WithFields(logrus.Fields{
			"tour_date_id": booking.TourDateID,
			"pax":          counts.Total(),
			"error":        err.Error(),
		}).Warn("Booking was not created")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":   booking.ID,
		"tour_date_id": booking.TourDateID,
		"client_id":    booking.ClientID,
		"pax":          counts.Total(),
		"total":        booking.TotalAmount,
		"paid":         booking.AmountPaid,
		"status":       booking.BookingStatus,
	}).Info("Booking created")

	return s.bookings.GetByID(booking.ID)
}

// resolveClient sets booking.ClientID for an existing client, or returns
// the client to upsert by phone inside the booking transaction
func (s *BookingService) resolveClient(booking *models.Booking, req *models.CreateBookingRequest) (*models.Client, error) {
	if req.ClientID != nil && *req.ClientID != "" {
		id, err := parseID("client_id", *req.ClientID)
		if err != nil {
			return nil, err
		}
		client, err := s.clients.GetByID(id)
		if err != nil {
			return nil, err
		}
		booking.ClientID = client.ID
		return nil, nil
	}

	if req.Client == nil {
		return nil, models.NewValidationError("client", "either client_id or client is required")
	}
	if req.Client.FullName == "" {
		return nil, models.NewValidationError("client.full_name", "is required")
	}
	phone, err := s.phone.Validate(req.Client.Phone)
	if err != nil {
		return nil, models.NewValidationError("client.phone", err.Error())
	}
	return &models.Client{
		ID:       uuid.New(),
		FullName: req.Client.FullName,
		Phone:    phone,
		Email:    req.Client.Email,
	}, nil
}

func (s *BookingService) buildPassengers(bc *bookingContext, bookingID uuid.UUID, inputs []models.PassengerInput) ([]models.Passenger, error) {
	if len(inputs) == 0 {
		return nil, models.NewValidationError("passengers", "at least one passenger is required")
	}

	passengers := make([]models.Passenger, 0, len(inputs))
	for i, in := range inputs {
		p, err := in.ToPassenger(bookingID, i)
		if err != nil {
			return nil, err
		}
		if p.Phone != nil {
			normalized := s.phone.Normalize(*p.Phone)
			p.Phone = &normalized
		}
		if p.BirthDate != nil {
			age := ageOn(*p.BirthDate, bc.tourDate.StartDate)
			if want := bc.tour.ClassifyAge(age); want != p.PassengerType {
				return nil, models.NewValidationError(
					fmt.Sprintf("passengers[%d].passenger_type", i),
					fmt.Sprintf("age %d on departure is priced as %s", age, want))
			}
		}
		passengers = append(passengers, p)
	}
	return passengers, nil
}

// price builds the booking's pricing snapshot and total.
// Room-based prices always come from the rooms. Per-person prices come
// from the price group unless the caller supplies an override tuple.
func (s *BookingService) price(bc *bookingContext, counts pricing.Counts, rooms []pricing.Room, override *pricing.UnitPrices) (models.PricingSnapshot, float64, error) {
	g := bc.group
	snapshot := models.PricingSnapshot{PricingModel: g.Model, PriceGroupID: &bc.priceGroup.ID}

	for i, r := range rooms {
		if r.Pax() == 0 {
			return snapshot, 0, models.NewValidationError(fmt.Sprintf("rooms[%d]", i), "room is empty")
		}
		if n := pricing.Normalize(g, r); n != r {
			return snapshot, 0, models.NewValidationError(fmt.Sprintf("rooms[%d]", i), fmt.Sprintf(
				"occupancy not allowed by price group, closest is %d adult, %d child, %d baby",
				n.Adults, n.Children, n.Babies))
		}
	}

	if g.Model == pricing.ModelRoomBased {
		if len(rooms) == 0 {
			return snapshot, 0, models.NewValidationError("rooms", "required for room based tours")
		}
		quote := pricing.Calculate(g, rooms)
		unit := pricing.ToUnitPrices(g, quote, counts)
		snapshot.Adult, snapshot.Child, snapshot.Baby, snapshot.Currency = unit.Adult, unit.Child, unit.Baby, unit.Currency
		snapshot.Rooms = rooms
		snapshot.Quote = &quote
		return snapshot, quote.Total, nil
	}

	unit := pricing.ToUnitPrices(g, pricing.Quote{}, counts)
	if override != nil {
		if err := checkUnitPrices(*override); err != nil {
			return snapshot, 0, err
		}
		unit = *override
		if unit.Currency == "" {
			unit.Currency = g.Currency
		}
	}
	g.Adult, g.Child, g.Baby, g.Currency = unit.Adult, unit.Child, unit.Baby, unit.Currency

	if len(rooms) == 0 {
		rooms = []pricing.Room{{Adults: counts.Adults, Children: counts.Children, Babies: counts.Babies}}
	}
	quote := pricing.Calculate(g, rooms)

	snapshot.Adult, snapshot.Child, snapshot.Baby, snapshot.Currency = unit.Adult, unit.Child, unit.Baby, unit.Currency
	snapshot.Rooms = rooms
	snapshot.Quote = &quote
	return snapshot, unit.Total(counts), nil
}

func checkUnitPrices(u pricing.UnitPrices) error {
	switch {
	case u.Adult < 0:
		return models.NewValidationError("pricing.adult", "must not be negative")
	case u.Child < 0:
		return models.NewValidationError("pricing.child", "must not be negative")
	case u.Baby < 0:
		return models.NewValidationError("pricing.baby", "must not be negative")
	}
	return nil
}

// repriceRoster rebuilds a per-person snapshot for a new head count, keeping
// the unit prices the booking was made with.
func repriceRoster(snapshot *models.PricingSnapshot, counts pricing.Counts) float64 {
	unit := snapshot.UnitPrices()
	g := pricing.Group{
		Model:    pricing.ModelPerPerson,
		Adult:    unit.Adult,
		Child:    unit.Child,
		Baby:     unit.Baby,
		Currency: unit.Currency,
	}
	rooms := []pricing.Room{{Adults: counts.Adults, Children: counts.Children, Babies: counts.Babies}}
	quote := pricing.Calculate(g, rooms)
	snapshot.Rooms = rooms
	snapshot.Quote = &quote
	return unit.Total(counts)
}

func (s *BookingService) ledgerLine(kind models.FinanceType, category string, amount float64, currency, description string, actorID *uuid.UUID) *models.FinanceRecord {
	refType := models.ReferenceTypeBooking
	return &models.FinanceRecord{
		ID:              uuid.New(),
		Type:            kind,
		Category:        category,
		Amount:          pricing.Round(amount),
		Currency:        currency,
		Description:     &description,
		TransactionDate: time.Now(),
		ReferenceType:   &refType,
		CreatedBy:       actorID,
	}
}

// ageOn returns the age in whole years on the given day
func ageOn(birth, day time.Time) int {
	age := day.Year() - birth.Year()
	if day.Month() < birth.Month() || (day.Month() == birth.Month() && day.Day() < birth.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// ============================================================================
// READ
// ============================================================================

// Get returns a booking with its passengers
func (s *BookingService) Get(id uuid.UUID) (*models.Booking, error) {
	return s.bookings.GetByID(id)
}

// List returns bookings matching the filter
func (s *BookingService) List(filter models.BookingFilter) ([]models.Booking, error) {
	return s.bookings.List(filter)
}

// ============================================================================
// UPDATE / CANCEL
// ============================================================================

// Update applies a partial update. A cancelled status is routed through
// Cancel so capacity is released exactly once.
func (s *BookingService) Update(actorID *uuid.UUID, id uuid.UUID, req *models.UpdateBookingRequest) (*models.Booking, error) {
	if req.BookingStatus != nil && models.BookingStatus(*req.BookingStatus) == models.BookingStatusCancelled {
		if err := s.Cancel(actorID, id, &models.CancelBookingRequest{}); err != nil {
			return nil, err
		}
		return s.bookings.GetByID(id)
	}

	booking, err := s.bookings.GetByID(id)
	if err != nil {
		return nil, err
	}
	if booking.BookingStatus == models.BookingStatusCancelled {
		return nil, models.ErrBookingAlreadyCancelled
	}

	before := booking.Pax()
	moneyChanged := false
	var passengers []models.Passenger

	if req.Passengers != nil {
		bc, err := s.loadContext(booking.TourDateID)
		if err != nil {
			return nil, err
		}
		passengers, err = s.buildPassengers(bc, booking.ID, *req.Passengers)
		if err != nil {
			return nil, err
		}
		counts := models.CountPassengers(passengers)

		if booking.PricingSnapshot.PricingModel == pricing.ModelRoomBased {
			if counts != before {
				return nil, models.NewValidationError("passengers", "room based bookings keep their room composition")
			}
		} else {
			booking.PaxAdult, booking.PaxChild, booking.PaxBaby = counts.Adults, counts.Children, counts.Babies
			total := repriceRoster(&booking.PricingSnapshot, counts)
			if total != booking.TotalAmount {
				booking.TotalAmount = total
				moneyChanged = true
			}
		}
	}

	if req.AmountPaid != nil {
		paid := pricing.Round(*req.AmountPaid)
		if paid != booking.AmountPaid {
			booking.AmountPaid = paid
			moneyChanged = true
		}
	}
	if req.Notes != nil {
		booking.Notes = req.Notes
	}

	switch {
	case req.BookingStatus != nil:
		booking.BookingStatus = models.BookingStatus(*req.BookingStatus)
	case moneyChanged:
		booking.BookingStatus = models.DeriveBookingStatus(booking.AmountPaid, booking.TotalAmount)
	}

	paxDelta := booking.Pax().Total() - before.Total()
	if err := s.bookings.Update(booking, passengers, paxDelta); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"status":     booking.BookingStatus,
		"pax_delta":  paxDelta,
		"roster":     passengers != nil,
	}).Info("Booking updated")

	return s.bookings.GetByID(id)
}

// Cancel moves a booking to cancelled and releases its seats. A positive
// refund amount is written to the ledger as an expense.
func (s *BookingService) Cancel(actorID *uuid.UUID, id uuid.UUID, req *models.CancelBookingRequest) error {
	var refund *models.FinanceRecord
	if req != nil && req.RefundAmount > 0 {
		booking, err := s.bookings.GetByID(id)
		if err != nil {
			return err
		}
		amount := pricing.Round(req.RefundAmount)
		if amount > booking.AmountPaid {
			return models.NewValidationError("refund_amount", "cannot exceed the amount paid")
		}
		description := "Refund on cancellation"
		if req.Reason != nil && *req.Reason != "" {
			description += ": " + *req.Reason
		}
		refund = s.ledgerLine(models.FinanceTypeExpense, models.FinanceCategoryRefund,
			amount, booking.Currency, description, actorID)
	}

	if err := s.bookings.Cancel(id, refund); err != nil {
		return err
	}

	fields := logrus.Fields{"booking_id": id}
	if refund != nil {
		fields["refund"] = refund.Amount
	}
	s.logger.WithFields(fields).Info("Booking cancelled")
	return nil
}
