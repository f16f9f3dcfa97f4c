package services

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hireplatform/hire-backend/internal/models"
	"github.com/hireplatform/hire-backend/internal/storage"
)

type bookingEnv struct {
	store    *storage.MemoryStore
	bookings *BookingService
	payments *PaymentService
	ratings  *RatingService
	customer *models.Customer
	provider *models.Provider
	category *models.ServiceCategory
	address  *models.Address
}

func newBookingEnv(t *testing.T) *bookingEnv {
	t.Helper()
	store := storage.NewMemoryStore()
	logger := zap.NewNop()

	ratings := NewRatingService(store, logger)
	bookings := NewBookingService(store, ratings, logger)
	payments := NewPaymentService(store, bookings, logger)

	customer, err := store.CreateCustomer(&models.Customer{
		Email: "customer@example.com", Phone: "+911111111111",
		FirstName: "Asha", LastName: "Rao", IsVerified: true,
	})
	if err != nil {
		t.Fatalf("CreateCustomer returned error: %v", err)
	}
	provider, err := store.CreateProvider(&models.Provider{
		Email: "provider@example.com", Phone: "+912222222222",
		FirstName: "Ravi", LastName: "Kumar",
		IsAvailable: true, IsVerified: true,
	})
	if err != nil {
		t.Fatalf("CreateProvider returned error: %v", err)
	}
	category, err := store.CreateCategory(&models.ServiceCategory{
		Name: "Plumbing", Description: "Pipes and fittings",
	})
	if err != nil {
		t.Fatalf("CreateCategory returned error: %v", err)
	}
	if _, err := store.CreateProviderCategory(&models.ProviderCategory{
		ProviderID: provider.ID, CategoryID: category.ID, PriceRate: 500,
	}); err != nil {
		t.Fatalf("CreateProviderCategory returned error: %v", err)
	}
	address, err := store.CreateAddress(&models.Address{
		CustomerID: &customer.ID,
		Line:       "12 MG Road", City: "Bengaluru", State: "Karnataka", PostalCode: "560001",
	})
	if err != nil {
		t.Fatalf("CreateAddress returned error: %v", err)
	}

	return &bookingEnv{
		store: store, bookings: bookings, payments: payments, ratings: ratings,
		customer: customer, provider: provider, category: category, address: address,
	}
}

func futureDate(days int) string {
	return time.Now().AddDate(0, 0, days).Format(models.BookingDateLayout)
}

func (e *bookingEnv) request(date, slot string) models.BookingRequest {
	return models.BookingRequest{
		CustomerID:  e.customer.ID,
		ProviderID:  e.provider.ID,
		CategoryID:  e.category.ID,
		AddressID:   e.address.ID,
		BookingDate: date,
		TimeSlot:    slot,
	}
}

func (e *bookingEnv) mustCreate(t *testing.T, date, slot string) *models.Booking {
	t.Helper()
	booking, err := e.bookings.Create(e.request(date, slot))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	return booking
}

func TestBookingLifecycle(t *testing.T) {
	env := newBookingEnv(t)

	booking := env.mustCreate(t, futureDate(7), "09:00-10:00")
	if booking.Status != models.BookingStatusPending {
		t.Fatalf("new booking status = %q, want pending", booking.Status)
	}

	payment, err := env.payments.Process(booking.ID, "credit_card")
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if payment.Status != models.PaymentStatusSuccessful {
		t.Errorf("payment status = %q, want successful", payment.Status)
	}
	if payment.Amount != 500 {
		t.Errorf("payment amount = %f, want the offering price 500", payment.Amount)
	}
	if payment.TransactionID == "" {
		t.Error("payment has no transaction id")
	}

	booking, _ = env.bookings.Get(booking.ID)
	if booking.Status != models.BookingStatusConfirmed {
		t.Fatalf("status after payment = %q, want confirmed", booking.Status)
	}

	if err := env.bookings.Complete(booking.ID, env.provider.ID); err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	booking, _ = env.bookings.Get(booking.ID)
	if booking.Status != models.BookingStatusCompleted {
		t.Fatalf("status after completion = %q, want completed", booking.Status)
	}

	if err := env.bookings.Rate(booking.ID, env.customer.ID, 5, "great work"); err != nil {
		t.Fatalf("Rate returned error: %v", err)
	}
	provider, _ := env.store.GetProvider(env.provider.ID)
	if provider.AvgRating == nil || *provider.AvgRating != 5.0 {
		t.Errorf("provider average = %v, want 5.0", provider.AvgRating)
	}
}

func TestValidateMissingFields(t *testing.T) {
	env := newBookingEnv(t)

	valid, fieldErrors := env.bookings.Validate(models.BookingRequest{})
	if valid {
		t.Fatal("empty request validated")
	}
	for _, field := range []string{"customer_id", "provider_id", "category_id", "address_id", "booking_date", "time_slot"} {
		if _, ok := fieldErrors[field]; !ok {
			t.Errorf("missing error for required field %q", field)
		}
	}
}

func TestValidateDate(t *testing.T) {
	env := newBookingEnv(t)

	tests := []struct {
		name string
		date string
	}{
		{"malformed", "07-05-2026"},
		{"yesterday", futureDate(-1)},
		{"today", futureDate(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, fieldErrors := env.bookings.Validate(env.request(tt.date, "09:00-10:00"))
			if valid {
				t.Fatal("request validated")
			}
			if _, ok := fieldErrors["booking_date"]; !ok {
				t.Errorf("no booking_date error, got %v", fieldErrors)
			}
		})
	}

	if valid, fieldErrors := env.bookings.Validate(env.request(futureDate(1), "09:00-10:00")); !valid {
		t.Errorf("tomorrow rejected: %v", fieldErrors)
	}
}

func TestValidateTimeSlotFormat(t *testing.T) {
	env := newBookingEnv(t)

	for _, slot := range []string{"9am-10am", "09:00", "", "0900-1000"} {
		valid, fieldErrors := env.bookings.Validate(env.request(futureDate(7), slot))
		if valid {
			t.Errorf("slot %q validated", slot)
			continue
		}
		if _, ok := fieldErrors["time_slot"]; !ok {
			t.Errorf("slot %q: no time_slot error, got %v", slot, fieldErrors)
		}
	}

	// The pattern matches a prefix, so trailing text after the window passes.
	if valid, fieldErrors := env.bookings.Validate(env.request(futureDate(7), "10:00-11:00 sharp")); !valid {
		t.Errorf("slot with trailing text rejected: %v", fieldErrors)
	}
}

func TestCreateRejectsConflictingSlot(t *testing.T) {
	env := newBookingEnv(t)
	date := futureDate(7)

	env.mustCreate(t, date, "10:00-11:00")

	_, err := env.bookings.Create(env.request(date, "10:00-11:00"))
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if _, ok := validationErr.Fields["time_slot"]; !ok {
		t.Errorf("conflict not reported under time_slot: %v", validationErr.Fields)
	}

	// Same slot on another day is fine.
	if _, err := env.bookings.Create(env.request(futureDate(8), "10:00-11:00")); err != nil {
		t.Errorf("same slot next day rejected: %v", err)
	}
}

func TestCancelledSlotBecomesBookable(t *testing.T) {
	env := newBookingEnv(t)
	date := futureDate(7)

	booking := env.mustCreate(t, date, "11:00-12:00")
	if err := env.bookings.Cancel(booking.ID, models.SubjectCustomer, env.customer.ID); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}

	if _, err := env.bookings.Create(env.request(date, "11:00-12:00")); err != nil {
		t.Errorf("slot freed by cancellation rejected: %v", err)
	}
}

func TestCompleteAuthorization(t *testing.T) {
	env := newBookingEnv(t)
	booking := env.mustCreate(t, futureDate(7), "09:00-10:00")

	// Pending bookings cannot complete even for the right provider.
	var stateErr *StateError
	if err := env.bookings.Complete(booking.ID, env.provider.ID); !errors.As(err, &stateErr) {
		t.Fatalf("completing pending booking: err = %v, want StateError", err)
	}
	if stateErr.Current != models.BookingStatusPending {
		t.Errorf("StateError.Current = %q, want pending", stateErr.Current)
	}

	if _, err := env.payments.Process(booking.ID, "credit_card"); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if err := env.bookings.Complete(booking.ID, env.provider.ID+99); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("wrong provider: err = %v, want ErrNotAuthorized", err)
	}
	if err := env.bookings.Complete(booking.ID, env.provider.ID); err != nil {
		t.Errorf("assigned provider blocked: %v", err)
	}
}

func TestCancelRefundsSuccessfulPayment(t *testing.T) {
	env := newBookingEnv(t)
	booking := env.mustCreate(t, futureDate(7), "09:00-10:00")
	if _, err := env.payments.Process(booking.ID, "paypal"); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	if err := env.bookings.Cancel(booking.ID, models.SubjectProvider, env.provider.ID); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}

	booking, _ = env.bookings.Get(booking.ID)
	if booking.Status != models.BookingStatusCancelled {
		t.Errorf("status = %q, want cancelled", booking.Status)
	}
	payment, err := env.store.GetPaymentByBooking(booking.ID)
	if err != nil {
		t.Fatalf("GetPaymentByBooking returned error: %v", err)
	}
	if payment.Status != models.PaymentStatusRefunded {
		t.Errorf("payment status = %q, want refunded", payment.Status)
	}
}

func TestCancelLeavesNonSuccessfulPaymentAlone(t *testing.T) {
	env := newBookingEnv(t)
	booking := env.mustCreate(t, futureDate(7), "09:00-10:00")

	if _, err := env.store.CreatePayment(&models.Payment{
		BookingID: booking.ID, Amount: 500, PaymentMethod: "credit_card",
		TransactionID: "HIRE-failed-1", Status: models.PaymentStatusFailed,
	}); err != nil {
		t.Fatalf("CreatePayment returned error: %v", err)
	}

	if err := env.bookings.Cancel(booking.ID, models.SubjectCustomer, env.customer.ID); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	payment, _ := env.store.GetPaymentByBooking(booking.ID)
	if payment.Status != models.PaymentStatusFailed {
		t.Errorf("payment status = %q, want failed left untouched", payment.Status)
	}
}

func TestCancelAuthorizationAndTerminalStates(t *testing.T) {
	env := newBookingEnv(t)
	booking := env.mustCreate(t, futureDate(7), "09:00-10:00")

	if err := env.bookings.Cancel(booking.ID, models.SubjectCustomer, env.customer.ID+99); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("stranger customer: err = %v, want ErrNotAuthorized", err)
	}
	if err := env.bookings.Cancel(booking.ID, "admin", env.customer.ID); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("unknown role: err = %v, want ErrNotAuthorized", err)
	}

	if _, err := env.payments.Process(booking.ID, "credit_card"); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if err := env.bookings.Complete(booking.ID, env.provider.ID); err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}

	var stateErr *StateError
	if err := env.bookings.Cancel(booking.ID, models.SubjectCustomer, env.customer.ID); !errors.As(err, &stateErr) {
		t.Fatalf("cancelling completed booking: err = %v, want StateError", err)
	}
	if stateErr.Current != models.BookingStatusCompleted {
		t.Errorf("StateError.Current = %q, want completed", stateErr.Current)
	}
}

func (e *bookingEnv) completedBooking(t *testing.T, date, slot string) *models.Booking {
	t.Helper()
	booking := e.mustCreate(t, date, slot)
	if _, err := e.payments.Process(booking.ID, "credit_card"); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if err := e.bookings.Complete(booking.ID, e.provider.ID); err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	return booking
}

func TestRateRules(t *testing.T) {
	env := newBookingEnv(t)
	pending := env.mustCreate(t, futureDate(7), "09:00-10:00")

	var stateErr *StateError
	if err := env.bookings.Rate(pending.ID, env.customer.ID, 5, ""); !errors.As(err, &stateErr) {
		t.Errorf("rating pending booking: err = %v, want StateError", err)
	}

	done := env.completedBooking(t, futureDate(7), "10:00-11:00")

	if err := env.bookings.Rate(done.ID, env.customer.ID+99, 5, ""); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("stranger rating: err = %v, want ErrNotAuthorized", err)
	}
	for _, bad := range []int{0, -1, 6} {
		if err := env.bookings.Rate(done.ID, env.customer.ID, bad, ""); !errors.Is(err, ErrInvalidRating) {
			t.Errorf("rating %d: err = %v, want ErrInvalidRating", bad, err)
		}
	}

	if err := env.bookings.Rate(done.ID, env.customer.ID, 4, "solid"); err != nil {
		t.Fatalf("Rate returned error: %v", err)
	}
	if err := env.bookings.Rate(done.ID, env.customer.ID, 5, "changed my mind"); !errors.Is(err, ErrAlreadyRated) {
		t.Errorf("second rating: err = %v, want ErrAlreadyRated", err)
	}
}

func TestRatingAverageRoundsToTwoDecimals(t *testing.T) {
	env := newBookingEnv(t)

	first := env.completedBooking(t, futureDate(7), "09:00-10:00")
	second := env.completedBooking(t, futureDate(7), "10:00-11:00")
	third := env.completedBooking(t, futureDate(7), "11:00-12:00")

	for i, rating := range map[uint]int{first.ID: 5, second.ID: 4, third.ID: 4} {
		if err := env.bookings.Rate(i, env.customer.ID, rating, ""); err != nil {
			t.Fatalf("Rate returned error: %v", err)
		}
	}

	provider, _ := env.store.GetProvider(env.provider.ID)
	if provider.AvgRating == nil {
		t.Fatal("provider still unrated")
	}
	if *provider.AvgRating != 4.33 {
		t.Errorf("average = %v, want 4.33", *provider.AvgRating)
	}
}

func TestRecomputeWithNoRatingsResetsToUnrated(t *testing.T) {
	env := newBookingEnv(t)

	avg, count, err := env.ratings.Recompute(env.provider.ID)
	if err != nil {
		t.Fatalf("Recompute returned error: %v", err)
	}
	if avg != nil || count != 0 {
		t.Errorf("avg = %v count = %d, want nil and 0", avg, count)
	}
	provider, _ := env.store.GetProvider(env.provider.ID)
	if provider.AvgRating != nil {
		t.Errorf("provider average = %v, want nil", *provider.AvgRating)
	}
}

func TestAvailableSlots(t *testing.T) {
	env := newBookingEnv(t)
	date := time.Now().AddDate(0, 0, 7)

	slots, err := env.bookings.AvailableSlots(env.provider.ID, date)
	if err != nil {
		t.Fatalf("AvailableSlots returned error: %v", err)
	}
	if len(slots) != len(models.DayTimeSlots) {
		t.Fatalf("free provider has %d slots, want %d", len(slots), len(models.DayTimeSlots))
	}

	env.mustCreate(t, date.Format(models.BookingDateLayout), "13:00-14:00")
	slots, _ = env.bookings.AvailableSlots(env.provider.ID, date)
	if len(slots) != len(models.DayTimeSlots)-1 {
		t.Errorf("after one booking %d slots remain, want %d", len(slots), len(models.DayTimeSlots)-1)
	}
	for _, slot := range slots {
		if slot == "13:00-14:00" {
			t.Error("booked slot still listed as available")
		}
	}

	// Unavailable providers expose no slots at all.
	env.provider.IsAvailable = false
	if err := env.store.UpdateProvider(env.provider); err != nil {
		t.Fatalf("UpdateProvider returned error: %v", err)
	}
	slots, _ = env.bookings.AvailableSlots(env.provider.ID, date)
	if len(slots) != 0 {
		t.Errorf("unavailable provider has %d slots, want 0", len(slots))
	}
}

// confirmFailStore makes booking status writes fail on demand, leaving every
// other operation on the embedded store intact.
type confirmFailStore struct {
	*storage.MemoryStore
	failUpdateBooking bool
}

func (s *confirmFailStore) UpdateBooking(booking *models.Booking) error {
	if s.failUpdateBooking {
		return errors.New("write failed")
	}
	return s.MemoryStore.UpdateBooking(booking)
}

func TestPaymentRolledBackWhenConfirmationFails(t *testing.T) {
	store := &confirmFailStore{MemoryStore: storage.NewMemoryStore()}
	logger := zap.NewNop()
	ratings := NewRatingService(store, logger)
	bookings := NewBookingService(store, ratings, logger)
	payments := NewPaymentService(store, bookings, logger)

	provider, err := store.CreateProvider(&models.Provider{
		Email: "p@example.com", Phone: "+911111111111", IsAvailable: true, IsVerified: true,
	})
	if err != nil {
		t.Fatalf("CreateProvider returned error: %v", err)
	}
	if _, err := store.CreateProviderCategory(&models.ProviderCategory{
		ProviderID: provider.ID, CategoryID: 1, PriceRate: 500,
	}); err != nil {
		t.Fatalf("CreateProviderCategory returned error: %v", err)
	}
	booking, err := store.CreateBooking(&models.Booking{
		CustomerID: 1, ProviderID: provider.ID, CategoryID: 1, AddressID: 1,
		BookingDate: time.Now().AddDate(0, 0, 7), TimeSlot: "09:00-10:00",
	})
	if err != nil {
		t.Fatalf("CreateBooking returned error: %v", err)
	}

	store.failUpdateBooking = true
	if _, err := payments.Process(booking.ID, "credit_card"); err == nil {
		t.Fatal("Process succeeded despite failed confirmation")
	}

	// The capture was rolled back with the confirmation.
	if _, err := store.GetPaymentByBooking(booking.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("orphaned payment on unconfirmed booking: err = %v, want ErrNotFound", err)
	}

	// With writes healthy again the capture goes through whole.
	store.failUpdateBooking = false
	if _, err := payments.Process(booking.ID, "credit_card"); err != nil {
		t.Fatalf("Process returned error after recovery: %v", err)
	}
	stored, _ := bookings.Get(booking.ID)
	if stored.Status != models.BookingStatusConfirmed {
		t.Errorf("status = %q, want confirmed", stored.Status)
	}
}

func TestPaymentRejections(t *testing.T) {
	env := newBookingEnv(t)
	booking := env.mustCreate(t, futureDate(7), "09:00-10:00")

	if _, err := env.payments.Process(booking.ID, "cash"); !errors.Is(err, ErrInvalidPaymentMethod) {
		t.Errorf("bad method: err = %v, want ErrInvalidPaymentMethod", err)
	}

	if _, err := env.payments.Process(booking.ID, "credit_card"); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	// The booking is confirmed now, a second capture must fail.
	if _, err := env.payments.Process(booking.ID, "credit_card"); err == nil {
		t.Error("second capture succeeded")
	}
}
