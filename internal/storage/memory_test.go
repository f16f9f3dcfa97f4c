package storage

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hireplatform/hire-backend/internal/models"
)

func TestCustomerUniqueness(t *testing.T) {
	store := NewMemoryStore()

	if _, err := store.CreateCustomer(&models.Customer{
		Email: "a@example.com", Phone: "+911111111111",
	}); err != nil {
		t.Fatalf("CreateCustomer returned error: %v", err)
	}

	if _, err := store.CreateCustomer(&models.Customer{
		Email: "a@example.com", Phone: "+912222222222",
	}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate email: err = %v, want ErrDuplicate", err)
	}
	if _, err := store.CreateCustomer(&models.Customer{
		Email: "b@example.com", Phone: "+911111111111",
	}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate phone: err = %v, want ErrDuplicate", err)
	}
}

func TestOfferingUniquePerProviderAndCategory(t *testing.T) {
	store := NewMemoryStore()

	offering := &models.ProviderCategory{ProviderID: 1, CategoryID: 2, PriceRate: 100}
	if _, err := store.CreateProviderCategory(offering); err != nil {
		t.Fatalf("CreateProviderCategory returned error: %v", err)
	}
	if _, err := store.CreateProviderCategory(&models.ProviderCategory{
		ProviderID: 1, CategoryID: 2, PriceRate: 200,
	}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate offering: err = %v, want ErrDuplicate", err)
	}
	// Same provider in another category is a separate listing.
	if _, err := store.CreateProviderCategory(&models.ProviderCategory{
		ProviderID: 1, CategoryID: 3, PriceRate: 100,
	}); err != nil {
		t.Errorf("second category rejected: %v", err)
	}
}

func TestGetNotFoundSentinels(t *testing.T) {
	store := NewMemoryStore()

	if _, err := store.GetCustomer(1); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetCustomer: err = %v, want ErrNotFound", err)
	}
	if _, err := store.GetProviderByEmail("nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetProviderByEmail: err = %v, want ErrNotFound", err)
	}
	if _, err := store.GetBooking(1); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetBooking: err = %v, want ErrNotFound", err)
	}
	if _, err := store.GetPaymentByBooking(1); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPaymentByBooking: err = %v, want ErrNotFound", err)
	}
}

func TestBookingConflictDetection(t *testing.T) {
	store := NewMemoryStore()
	date := time.Now().AddDate(0, 0, 3)

	booking, err := store.CreateBooking(&models.Booking{
		CustomerID: 1, ProviderID: 1, CategoryID: 1, AddressID: 1,
		BookingDate: date, TimeSlot: "09:00-10:00",
	})
	if err != nil {
		t.Fatalf("CreateBooking returned error: %v", err)
	}

	conflict, err := store.HasBookingConflict(1, date, "09:00-10:00")
	if err != nil {
		t.Fatalf("HasBookingConflict returned error: %v", err)
	}
	if !conflict {
		t.Error("active booking not reported as conflict")
	}

	// Other provider, other slot and other day are all free.
	for _, tc := range []struct {
		name       string
		providerID uint
		date       time.Time
		slot       string
	}{
		{"other provider", 2, date, "09:00-10:00"},
		{"other slot", 1, date, "10:00-11:00"},
		{"other day", 1, date.AddDate(0, 0, 1), "09:00-10:00"},
	} {
		conflict, _ := store.HasBookingConflict(tc.providerID, tc.date, tc.slot)
		if conflict {
			t.Errorf("%s reported as conflict", tc.name)
		}
	}

	// Cancelled bookings release the slot.
	booking.Status = models.BookingStatusCancelled
	if err := store.UpdateBooking(booking); err != nil {
		t.Fatalf("UpdateBooking returned error: %v", err)
	}
	if conflict, _ := store.HasBookingConflict(1, date, "09:00-10:00"); conflict {
		t.Error("cancelled booking still holds the slot")
	}
}

func TestCreateBookingConcurrentSameSlot(t *testing.T) {
	store := NewMemoryStore()
	date := time.Now().AddDate(0, 0, 3)

	const attempts = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(customerID uint) {
			defer wg.Done()
			_, err := store.CreateBooking(&models.Booking{
				CustomerID: customerID, ProviderID: 1, CategoryID: 1, AddressID: 1,
				BookingDate: date, TimeSlot: "14:00-15:00",
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}(uint(i + 1))
	}
	wg.Wait()

	if succeeded != 1 {
		t.Errorf("%d concurrent creates won the slot, want exactly 1", succeeded)
	}
}

func TestGetLatestUnusedOTPOrdering(t *testing.T) {
	store := NewMemoryStore()
	base := time.Now().UTC()

	old := &models.OTP{
		SubjectID: 1, SubjectType: models.SubjectCustomer,
		Code: "111111", ExpiresAt: base.Add(10 * time.Minute), CreatedAt: base.Add(-time.Minute),
	}
	newer := &models.OTP{
		SubjectID: 1, SubjectType: models.SubjectCustomer,
		Code: "222222", ExpiresAt: base.Add(10 * time.Minute), CreatedAt: base,
	}
	used := &models.OTP{
		SubjectID: 1, SubjectType: models.SubjectCustomer,
		Code: "333333", IsUsed: true, ExpiresAt: base.Add(10 * time.Minute), CreatedAt: base.Add(time.Minute),
	}
	for _, o := range []*models.OTP{old, newer, used} {
		if _, err := store.CreateOTP(o); err != nil {
			t.Fatalf("CreateOTP returned error: %v", err)
		}
	}

	got, err := store.GetLatestUnusedOTP(1, models.SubjectCustomer)
	if err != nil {
		t.Fatalf("GetLatestUnusedOTP returned error: %v", err)
	}
	if got.Code != "222222" {
		t.Errorf("latest unused code = %q, want the newer unused record", got.Code)
	}

	if _, err := store.GetLatestUnusedOTP(2, models.SubjectCustomer); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown subject: err = %v, want ErrNotFound", err)
	}
}

func TestDeleteExpiredOTPs(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now().UTC()

	for _, o := range []*models.OTP{
		{SubjectID: 1, SubjectType: models.SubjectCustomer, Code: "111111", ExpiresAt: now.Add(-time.Hour)},
		{SubjectID: 2, SubjectType: models.SubjectProvider, Code: "222222", ExpiresAt: now.Add(-time.Minute)},
		{SubjectID: 3, SubjectType: models.SubjectCustomer, Code: "333333", ExpiresAt: now.Add(time.Hour)},
	} {
		if _, err := store.CreateOTP(o); err != nil {
			t.Fatalf("CreateOTP returned error: %v", err)
		}
	}

	removed, err := store.DeleteExpiredOTPs()
	if err != nil {
		t.Fatalf("DeleteExpiredOTPs returned error: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed %d records, want 2", removed)
	}
	if _, err := store.GetLatestUnusedOTP(3, models.SubjectCustomer); err != nil {
		t.Errorf("live record was removed: %v", err)
	}
}

func TestPaymentUniquePerBooking(t *testing.T) {
	store := NewMemoryStore()

	if _, err := store.CreatePayment(&models.Payment{
		BookingID: 1, Amount: 500, PaymentMethod: "credit_card",
		TransactionID: "HIRE-1", Status: models.PaymentStatusSuccessful,
	}); err != nil {
		t.Fatalf("CreatePayment returned error: %v", err)
	}

	if _, err := store.CreatePayment(&models.Payment{
		BookingID: 1, Amount: 500, PaymentMethod: "credit_card",
		TransactionID: "HIRE-2", Status: models.PaymentStatusSuccessful,
	}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("second payment for booking: err = %v, want ErrDuplicate", err)
	}
	if _, err := store.CreatePayment(&models.Payment{
		BookingID: 2, Amount: 500, PaymentMethod: "credit_card",
		TransactionID: "HIRE-1", Status: models.PaymentStatusSuccessful,
	}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("reused transaction id: err = %v, want ErrDuplicate", err)
	}
}

func TestTopRatedProviders(t *testing.T) {
	store := NewMemoryStore()

	mk := func(email, phone string, rating *float64, verified bool) {
		if _, err := store.CreateProvider(&models.Provider{
			Email: email, Phone: phone, AvgRating: rating, IsVerified: verified,
		}); err != nil {
			t.Fatalf("CreateProvider returned error: %v", err)
		}
	}
	r1, r2, r3 := 3.5, 4.8, 4.9
	mk("a@example.com", "1", &r1, true)
	mk("b@example.com", "2", &r2, true)
	mk("c@example.com", "3", nil, true)
	mk("d@example.com", "4", &r3, false)

	top, err := store.GetTopRatedProviders(5)
	if err != nil {
		t.Fatalf("GetTopRatedProviders returned error: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("got %d providers, want 2 (rated and verified only)", len(top))
	}
	if *top[0].AvgRating != 4.8 || *top[1].AvgRating != 3.5 {
		t.Errorf("order = %v, %v; want best first", *top[0].AvgRating, *top[1].AvgRating)
	}
}
