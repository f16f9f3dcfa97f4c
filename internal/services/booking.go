package services

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/hireplatform/hire-backend/internal/models"
	"github.com/hireplatform/hire-backend/internal/storage"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrNotAuthorized   = errors.New("actor is not a party to this booking")
	ErrSlotConflict    = errors.New("this time slot is already booked")
	ErrAlreadyRated    = errors.New("booking has already been rated")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
)

// StateError reports an illegal transition together with the booking's
// current status, so callers can render a precise message. Nothing mutates
// when it is returned.
type StateError struct {
	Op      string
	Current string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("booking cannot be %s (status: %s)", e.Op, e.Current)
}

// ValidationError carries field-scoped messages from booking validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("booking validation failed: %d field error(s)", len(e.Fields))
}

// Prefix match only; text after the HH:MM-HH:MM window has always been
// accepted, and stored slots carry it through conflict checks verbatim.
var timeSlotPattern = regexp.MustCompile(`^\d{2}:\d{2}-\d{2}:\d{2}`)

// BookingService drives the booking lifecycle:
// pending -> confirmed -> completed, with cancellation from either
// non-terminal state and single-shot rating after completion.
type BookingService struct {
	store   storage.Store
	ratings *RatingService
	logger  *zap.Logger
}

// NewBookingService builds the lifecycle service.
func NewBookingService(store storage.Store, ratings *RatingService, logger *zap.Logger) *BookingService {
	return &BookingService{store: store, ratings: ratings, logger: logger}
}

// HasConflict reports whether the provider already holds this exact slot on
// this date in a pending or confirmed booking. Slot equality is an exact
// label match.
func (s *BookingService) HasConflict(providerID uint, date time.Time, timeSlot string) (bool, error) {
	return s.store.HasBookingConflict(providerID, date, timeSlot)
}

// Validate checks a booking request and returns every violation keyed by
// field. Missing required fields short-circuit the rest; all later checks
// are collected together.
func (s *BookingService) Validate(req models.BookingRequest) (bool, map[string]string) {
	fieldErrors := make(map[string]string)

	required := map[string]bool{
		"customer_id":  req.CustomerID != 0,
		"provider_id":  req.ProviderID != 0,
		"category_id":  req.CategoryID != 0,
		"address_id":   req.AddressID != 0,
		"booking_date": req.BookingDate != "",
		"time_slot":    req.TimeSlot != "",
	}
	for field, present := range required {
		if !present {
			fieldErrors[field] = field + " is required"
		}
	}
	if len(fieldErrors) > 0 {
		s.logger.Warn("booking validation failed, missing required fields",
			zap.Int("count", len(fieldErrors)))
		return false, fieldErrors
	}

	bookingDate, err := time.ParseInLocation(models.BookingDateLayout, req.BookingDate, time.Local)
	dateOK := err == nil
	if err != nil {
		fieldErrors["booking_date"] = "invalid date format (use YYYY-MM-DD)"
	} else {
		now := time.Now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
		// Same-day bookings are rejected; the date must be strictly ahead.
		if !bookingDate.After(today) {
			fieldErrors["booking_date"] = "booking date must be in the future"
		}
	}

	slotOK := timeSlotPattern.MatchString(req.TimeSlot)
	if !slotOK {
		fieldErrors["time_slot"] = "invalid time slot format (use HH:MM-HH:MM)"
	}

	if dateOK && slotOK {
		conflict, err := s.HasConflict(req.ProviderID, bookingDate, req.TimeSlot)
		if err != nil {
			s.logger.Error("conflict check failed", zap.Error(err))
			fieldErrors["time_slot"] = "error checking availability"
		} else if conflict {
			fieldErrors["time_slot"] = "this time slot is already booked"
		}
	}

	return len(fieldErrors) == 0, fieldErrors
}

// Create validates the request and stores a new pending booking. No payment
// exists at this point.
func (s *BookingService) Create(req models.BookingRequest) (*models.Booking, error) {
	if valid, fieldErrors := s.Validate(req); !valid {
		return nil, &ValidationError{Fields: fieldErrors}
	}

	bookingDate, err := time.ParseInLocation(models.BookingDateLayout, req.BookingDate, time.Local)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{
			"booking_date": "invalid date format (use YYYY-MM-DD)",
		}}
	}

	booking := &models.Booking{
		CustomerID:  req.CustomerID,
		ProviderID:  req.ProviderID,
		CategoryID:  req.CategoryID,
		AddressID:   req.AddressID,
		BookingDate: bookingDate,
		TimeSlot:    req.TimeSlot,
		Status:      models.BookingStatusPending,
	}
	created, err := s.store.CreateBooking(booking)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			// Lost the slot between validation and commit.
			return nil, ErrSlotConflict
		}
		return nil, err
	}

	s.logger.Info("booking created",
		zap.Uint("booking_id", created.ID),
		zap.Uint("provider_id", created.ProviderID),
		zap.String("time_slot", created.TimeSlot))
	return created, nil
}

// Get loads one booking.
func (s *BookingService) Get(bookingID uint) (*models.Booking, error) {
	booking, err := s.store.GetBooking(bookingID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return booking, nil
}

// Confirm moves a pending booking to confirmed. It is driven by payment
// capture, never called directly by users.
func (s *BookingService) Confirm(bookingID uint) error {
	booking, err := s.Get(bookingID)
	if err != nil {
		return err
	}
	if !models.CanTransition(booking.Status, models.BookingStatusConfirmed) {
		return &StateError{Op: "confirmed", Current: booking.Status}
	}
	booking.Status = models.BookingStatusConfirmed
	if err := s.store.UpdateBooking(booking); err != nil {
		return err
	}
	s.logger.Info("booking confirmed", zap.Uint("booking_id", bookingID))
	return nil
}

// Complete marks a confirmed booking as done. Only the assigned provider may
// do this.
func (s *BookingService) Complete(bookingID, providerID uint) error {
	booking, err := s.Get(bookingID)
	if err != nil {
		return err
	}
	if booking.ProviderID != providerID {
		return ErrNotAuthorized
	}
	if !models.CanTransition(booking.Status, models.BookingStatusCompleted) {
		return &StateError{Op: "completed", Current: booking.Status}
	}
	booking.Status = models.BookingStatusCompleted
	if err := s.store.UpdateBooking(booking); err != nil {
		return err
	}
	s.logger.Info("booking completed", zap.Uint("booking_id", bookingID))
	return nil
}

// Cancel cancels a pending or confirmed booking on behalf of the assigned
// customer or provider. A successful payment on the booking is marked
// refunded in the same operation; this is bookkeeping only, no gateway call.
func (s *BookingService) Cancel(bookingID uint, actorRole string, actorID uint) error {
	booking, err := s.Get(bookingID)
	if err != nil {
		return err
	}

	switch actorRole {
	case models.SubjectCustomer:
		if booking.CustomerID != actorID {
			return ErrNotAuthorized
		}
	case models.SubjectProvider:
		if booking.ProviderID != actorID {
			return ErrNotAuthorized
		}
	default:
		return ErrNotAuthorized
	}

	if !models.CanTransition(booking.Status, models.BookingStatusCancelled) {
		return &StateError{Op: "cancelled", Current: booking.Status}
	}

	booking.Status = models.BookingStatusCancelled
	if err := s.store.UpdateBooking(booking); err != nil {
		return err
	}

	payment, err := s.store.GetPaymentByBooking(bookingID)
	if err == nil && payment.Status == models.PaymentStatusSuccessful {
		payment.Status = models.PaymentStatusRefunded
		if err := s.store.UpdatePayment(payment); err != nil {
			return err
		}
		s.logger.Info("payment refunded on cancel",
			zap.Uint("booking_id", bookingID), zap.String("transaction_id", payment.TransactionID))
	} else if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	s.logger.Info("booking cancelled",
		zap.Uint("booking_id", bookingID), zap.String("by", actorRole))
	return nil
}

// Rate attaches a one-time rating (1-5) and optional comment to a completed
// booking, then recomputes the provider's average.
func (s *BookingService) Rate(bookingID, customerID uint, rating int, comment string) error {
	booking, err := s.Get(bookingID)
	if err != nil {
		return err
	}
	if booking.CustomerID != customerID {
		return ErrNotAuthorized
	}
	if booking.Status != models.BookingStatusCompleted {
		return &StateError{Op: "rated", Current: booking.Status}
	}
	if booking.Rating != nil {
		return ErrAlreadyRated
	}
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}

	booking.Rating = &rating
	booking.RatingComment = comment
	if err := s.store.UpdateBooking(booking); err != nil {
		return err
	}

	if _, _, err := s.ratings.Recompute(booking.ProviderID); err != nil {
		return err
	}

	s.logger.Info("booking rated",
		zap.Uint("booking_id", bookingID), zap.Int("rating", rating))
	return nil
}

// AvailableSlots lists the provider's free slot labels on a date. An
// unavailable or unknown provider has no free slots.
func (s *BookingService) AvailableSlots(providerID uint, date time.Time) ([]string, error) {
	provider, err := s.store.GetProvider(providerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []string{}, nil
		}
		return nil, err
	}
	if !provider.IsAvailable {
		return []string{}, nil
	}

	active, err := s.store.GetActiveBookings(providerID, date)
	if err != nil {
		return nil, err
	}
	booked := make(map[string]bool, len(active))
	for _, b := range active {
		booked[b.TimeSlot] = true
	}

	available := make([]string, 0, len(models.DayTimeSlots))
	for _, slot := range models.DayTimeSlots {
		if !booked[slot] {
			available = append(available, slot)
		}
	}
	return available, nil
}
