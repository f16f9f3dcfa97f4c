package storage

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hireplatform/hire-backend/internal/models"
)

// MemoryStore holds all data in memory. Used for tests and for running the
// API without a database (USE_MEMORY_STORE=true).
type MemoryStore struct {
	customers  map[uint]*models.Customer
	providers  map[uint]*models.Provider
	categories map[uint]*models.ServiceCategory
	offerings  map[uint]*models.ProviderCategory
	addresses  map[uint]*models.Address
	bookings   map[uint]*models.Booking
	payments   map[uint]*models.Payment
	otps       map[uint]*models.OTP

	customerMu sync.RWMutex
	providerMu sync.RWMutex
	categoryMu sync.RWMutex
	offeringMu sync.RWMutex
	addressMu  sync.RWMutex
	bookingMu  sync.RWMutex
	paymentMu  sync.RWMutex
	otpMu      sync.RWMutex

	customerCounter uint
	providerCounter uint
	categoryCounter uint
	offeringCounter uint
	addressCounter  uint
	bookingCounter  uint
	paymentCounter  uint
	otpCounter      uint
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		customers:  make(map[uint]*models.Customer),
		providers:  make(map[uint]*models.Provider),
		categories: make(map[uint]*models.ServiceCategory),
		offerings:  make(map[uint]*models.ProviderCategory),
		addresses:  make(map[uint]*models.Address),
		bookings:   make(map[uint]*models.Booking),
		payments:   make(map[uint]*models.Payment),
		otps:       make(map[uint]*models.OTP),
	}
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// Customer operations

func (m *MemoryStore) CreateCustomer(customer *models.Customer) (*models.Customer, error) {
	m.customerMu.Lock()
	defer m.customerMu.Unlock()

	for _, c := range m.customers {
		if c.Email == customer.Email || c.Phone == customer.Phone {
			return nil, fmt.Errorf("customer email or phone: %w", ErrDuplicate)
		}
	}

	m.customerCounter++
	customer.ID = m.customerCounter
	customer.CreatedAt = time.Now()
	m.customers[customer.ID] = customer
	return customer, nil
}

func (m *MemoryStore) GetCustomer(id uint) (*models.Customer, error) {
	m.customerMu.RLock()
	defer m.customerMu.RUnlock()

	customer, exists := m.customers[id]
	if !exists {
		return nil, fmt.Errorf("customer %d: %w", id, ErrNotFound)
	}
	return customer, nil
}

func (m *MemoryStore) GetCustomerByEmail(email string) (*models.Customer, error) {
	m.customerMu.RLock()
	defer m.customerMu.RUnlock()

	for _, c := range m.customers {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, fmt.Errorf("customer %q: %w", email, ErrNotFound)
}

func (m *MemoryStore) GetCustomerByPhone(phone string) (*models.Customer, error) {
	m.customerMu.RLock()
	defer m.customerMu.RUnlock()

	for _, c := range m.customers {
		if c.Phone == phone {
			return c, nil
		}
	}
	return nil, fmt.Errorf("customer %q: %w", phone, ErrNotFound)
}

func (m *MemoryStore) UpdateCustomer(customer *models.Customer) error {
	m.customerMu.Lock()
	defer m.customerMu.Unlock()

	if _, exists := m.customers[customer.ID]; !exists {
		return fmt.Errorf("customer %d: %w", customer.ID, ErrNotFound)
	}
	m.customers[customer.ID] = customer
	return nil
}

func (m *MemoryStore) DeleteCustomer(id uint) error {
	m.customerMu.Lock()
	defer m.customerMu.Unlock()

	if _, exists := m.customers[id]; !exists {
		return fmt.Errorf("customer %d: %w", id, ErrNotFound)
	}
	delete(m.customers, id)
	return nil
}

// Provider operations

func (m *MemoryStore) CreateProvider(provider *models.Provider) (*models.Provider, error) {
	m.providerMu.Lock()
	defer m.providerMu.Unlock()

	for _, p := range m.providers {
		if p.Email == provider.Email || p.Phone == provider.Phone {
			return nil, fmt.Errorf("provider email or phone: %w", ErrDuplicate)
		}
	}

	m.providerCounter++
	provider.ID = m.providerCounter
	provider.CreatedAt = time.Now()
	m.providers[provider.ID] = provider
	return provider, nil
}

func (m *MemoryStore) GetProvider(id uint) (*models.Provider, error) {
	m.providerMu.RLock()
	defer m.providerMu.RUnlock()

	provider, exists := m.providers[id]
	if !exists {
		return nil, fmt.Errorf("provider %d: %w", id, ErrNotFound)
	}
	return provider, nil
}

func (m *MemoryStore) GetProviderByEmail(email string) (*models.Provider, error) {
	m.providerMu.RLock()
	defer m.providerMu.RUnlock()

	for _, p := range m.providers {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, fmt.Errorf("provider %q: %w", email, ErrNotFound)
}

func (m *MemoryStore) GetProviderByPhone(phone string) (*models.Provider, error) {
	m.providerMu.RLock()
	defer m.providerMu.RUnlock()

	for _, p := range m.providers {
		if p.Phone == phone {
			return p, nil
		}
	}
	return nil, fmt.Errorf("provider %q: %w", phone, ErrNotFound)
}

func (m *MemoryStore) GetProvidersByIDs(ids []uint) ([]*models.Provider, error) {
	m.providerMu.RLock()
	defer m.providerMu.RUnlock()

	providers := make([]*models.Provider, 0, len(ids))
	for _, id := range ids {
		if p, exists := m.providers[id]; exists {
			providers = append(providers, p)
		}
	}
	return providers, nil
}

func (m *MemoryStore) GetTopRatedProviders(limit int) ([]*models.Provider, error) {
	m.providerMu.RLock()
	defer m.providerMu.RUnlock()

	var rated []*models.Provider
	for _, p := range m.providers {
		if p.IsVerified && p.AvgRating != nil {
			rated = append(rated, p)
		}
	}
	sort.SliceStable(rated, func(i, j int) bool {
		return *rated[i].AvgRating > *rated[j].AvgRating
	})
	if limit > 0 && len(rated) > limit {
		rated = rated[:limit]
	}
	return rated, nil
}

func (m *MemoryStore) UpdateProvider(provider *models.Provider) error {
	m.providerMu.Lock()
	defer m.providerMu.Unlock()

	if _, exists := m.providers[provider.ID]; !exists {
		return fmt.Errorf("provider %d: %w", provider.ID, ErrNotFound)
	}
	m.providers[provider.ID] = provider
	return nil
}

func (m *MemoryStore) DeleteProvider(id uint) error {
	m.providerMu.Lock()
	defer m.providerMu.Unlock()

	if _, exists := m.providers[id]; !exists {
		return fmt.Errorf("provider %d: %w", id, ErrNotFound)
	}
	delete(m.providers, id)
	return nil
}

// Service category operations

func (m *MemoryStore) CreateCategory(category *models.ServiceCategory) (*models.ServiceCategory, error) {
	m.categoryMu.Lock()
	defer m.categoryMu.Unlock()

	for _, c := range m.categories {
		if c.Name == category.Name {
			return nil, fmt.Errorf("category %q: %w", category.Name, ErrDuplicate)
		}
	}

	m.categoryCounter++
	category.ID = m.categoryCounter
	m.categories[category.ID] = category
	return category, nil
}

func (m *MemoryStore) GetCategory(id uint) (*models.ServiceCategory, error) {
	m.categoryMu.RLock()
	defer m.categoryMu.RUnlock()

	category, exists := m.categories[id]
	if !exists {
		return nil, fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	return category, nil
}

func (m *MemoryStore) GetCategories() ([]*models.ServiceCategory, error) {
	m.categoryMu.RLock()
	defer m.categoryMu.RUnlock()

	categories := make([]*models.ServiceCategory, 0, len(m.categories))
	for _, c := range m.categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories, nil
}

// Provider offering operations

func (m *MemoryStore) CreateProviderCategory(offering *models.ProviderCategory) (*models.ProviderCategory, error) {
	m.offeringMu.Lock()
	defer m.offeringMu.Unlock()

	for _, o := range m.offerings {
		if o.ProviderID == offering.ProviderID && o.CategoryID == offering.CategoryID {
			return nil, fmt.Errorf("offering provider=%d category=%d: %w",
				offering.ProviderID, offering.CategoryID, ErrDuplicate)
		}
	}

	m.offeringCounter++
	offering.ID = m.offeringCounter
	m.offerings[offering.ID] = offering
	return offering, nil
}

func (m *MemoryStore) GetOfferingsByCategory(categoryID uint) ([]*models.ProviderCategory, error) {
	m.offeringMu.RLock()
	defer m.offeringMu.RUnlock()

	var offerings []*models.ProviderCategory
	for _, o := range m.offerings {
		if o.CategoryID == categoryID {
			offerings = append(offerings, o)
		}
	}
	sort.Slice(offerings, func(i, j int) bool { return offerings[i].ID < offerings[j].ID })
	return offerings, nil
}

func (m *MemoryStore) GetOfferingsByProvider(providerID uint) ([]*models.ProviderCategory, error) {
	m.offeringMu.RLock()
	defer m.offeringMu.RUnlock()

	var offerings []*models.ProviderCategory
	for _, o := range m.offerings {
		if o.ProviderID == providerID {
			offerings = append(offerings, o)
		}
	}
	sort.Slice(offerings, func(i, j int) bool { return offerings[i].ID < offerings[j].ID })
	return offerings, nil
}

func (m *MemoryStore) GetOffering(providerID, categoryID uint) (*models.ProviderCategory, error) {
	m.offeringMu.RLock()
	defer m.offeringMu.RUnlock()

	for _, o := range m.offerings {
		if o.ProviderID == providerID && o.CategoryID == categoryID {
			return o, nil
		}
	}
	return nil, fmt.Errorf("offering provider=%d category=%d: %w", providerID, categoryID, ErrNotFound)
}

// Address operations

func (m *MemoryStore) CreateAddress(address *models.Address) (*models.Address, error) {
	m.addressMu.Lock()
	defer m.addressMu.Unlock()

	m.addressCounter++
	address.ID = m.addressCounter
	m.addresses[address.ID] = address
	return address, nil
}

func (m *MemoryStore) GetAddress(id uint) (*models.Address, error) {
	m.addressMu.RLock()
	defer m.addressMu.RUnlock()

	address, exists := m.addresses[id]
	if !exists {
		return nil, fmt.Errorf("address %d: %w", id, ErrNotFound)
	}
	return address, nil
}

func (m *MemoryStore) GetAddressesByCustomer(customerID uint) ([]*models.Address, error) {
	m.addressMu.RLock()
	defer m.addressMu.RUnlock()

	var addresses []*models.Address
	for _, a := range m.addresses {
		if a.CustomerID != nil && *a.CustomerID == customerID {
			addresses = append(addresses, a)
		}
	}
	sort.Slice(addresses, func(i, j int) bool { return addresses[i].ID < addresses[j].ID })
	return addresses, nil
}

func (m *MemoryStore) GetPrimaryProviderAddress(providerID uint) (*models.Address, error) {
	m.addressMu.RLock()
	defer m.addressMu.RUnlock()

	var best *models.Address
	for _, a := range m.addresses {
		if a.ProviderID != nil && *a.ProviderID == providerID {
			if best == nil || a.ID < best.ID {
				best = a
			}
		}
	}
	if best == nil {
		return nil, fmt.Errorf("provider %d address: %w", providerID, ErrNotFound)
	}
	return best, nil
}

func (m *MemoryStore) UpdateAddress(address *models.Address) error {
	m.addressMu.Lock()
	defer m.addressMu.Unlock()

	if _, exists := m.addresses[address.ID]; !exists {
		return fmt.Errorf("address %d: %w", address.ID, ErrNotFound)
	}
	m.addresses[address.ID] = address
	return nil
}

// Booking operations

func (m *MemoryStore) CreateBooking(booking *models.Booking) (*models.Booking, error) {
	m.bookingMu.Lock()
	defer m.bookingMu.Unlock()

	// Re-check the slot inside the write lock so two serialized creates
	// cannot both land on it.
	for _, b := range m.bookings {
		if b.ProviderID == booking.ProviderID && b.IsActive() &&
			sameDay(b.BookingDate, booking.BookingDate) && b.TimeSlot == booking.TimeSlot {
			return nil, fmt.Errorf("slot %s: %w", booking.TimeSlot, ErrDuplicate)
		}
	}

	m.bookingCounter++
	booking.ID = m.bookingCounter
	booking.CreatedAt = time.Now()
	if booking.Status == "" {
		booking.Status = models.BookingStatusPending
	}
	m.bookings[booking.ID] = booking
	return booking, nil
}

func (m *MemoryStore) GetBooking(id uint) (*models.Booking, error) {
	m.bookingMu.RLock()
	defer m.bookingMu.RUnlock()

	booking, exists := m.bookings[id]
	if !exists {
		return nil, fmt.Errorf("booking %d: %w", id, ErrNotFound)
	}
	return booking, nil
}

func (m *MemoryStore) UpdateBooking(booking *models.Booking) error {
	m.bookingMu.Lock()
	defer m.bookingMu.Unlock()

	if _, exists := m.bookings[booking.ID]; !exists {
		return fmt.Errorf("booking %d: %w", booking.ID, ErrNotFound)
	}
	m.bookings[booking.ID] = booking
	return nil
}

func (m *MemoryStore) GetBookingsByCustomer(customerID uint) ([]*models.Booking, error) {
	m.bookingMu.RLock()
	defer m.bookingMu.RUnlock()

	var bookings []*models.Booking
	for _, b := range m.bookings {
		if b.CustomerID == customerID {
			bookings = append(bookings, b)
		}
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].ID < bookings[j].ID })
	return bookings, nil
}

func (m *MemoryStore) GetBookingsByProvider(providerID uint) ([]*models.Booking, error) {
	m.bookingMu.RLock()
	defer m.bookingMu.RUnlock()

	var bookings []*models.Booking
	for _, b := range m.bookings {
		if b.ProviderID == providerID {
			bookings = append(bookings, b)
		}
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].ID < bookings[j].ID })
	return bookings, nil
}

func (m *MemoryStore) GetActiveBookings(providerID uint, date time.Time) ([]*models.Booking, error) {
	m.bookingMu.RLock()
	defer m.bookingMu.RUnlock()

	var bookings []*models.Booking
	for _, b := range m.bookings {
		if b.ProviderID == providerID && b.IsActive() && sameDay(b.BookingDate, date) {
			bookings = append(bookings, b)
		}
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].ID < bookings[j].ID })
	return bookings, nil
}

func (m *MemoryStore) HasBookingConflict(providerID uint, date time.Time, timeSlot string) (bool, error) {
	m.bookingMu.RLock()
	defer m.bookingMu.RUnlock()

	for _, b := range m.bookings {
		if b.ProviderID == providerID && b.IsActive() &&
			sameDay(b.BookingDate, date) && b.TimeSlot == timeSlot {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) GetRatedCompletedBookings(providerID uint) ([]*models.Booking, error) {
	m.bookingMu.RLock()
	defer m.bookingMu.RUnlock()

	var bookings []*models.Booking
	for _, b := range m.bookings {
		if b.ProviderID == providerID && b.Status == models.BookingStatusCompleted && b.Rating != nil {
			bookings = append(bookings, b)
		}
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].ID < bookings[j].ID })
	return bookings, nil
}

func (m *MemoryStore) GetActiveBookingsOnDate(date time.Time) ([]*models.Booking, error) {
	m.bookingMu.RLock()
	defer m.bookingMu.RUnlock()

	var bookings []*models.Booking
	for _, b := range m.bookings {
		if b.IsActive() && sameDay(b.BookingDate, date) {
			bookings = append(bookings, b)
		}
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].ID < bookings[j].ID })
	return bookings, nil
}

// Payment operations

func (m *MemoryStore) CreatePayment(payment *models.Payment) (*models.Payment, error) {
	m.paymentMu.Lock()
	defer m.paymentMu.Unlock()

	for _, p := range m.payments {
		if p.BookingID == payment.BookingID {
			return nil, fmt.Errorf("payment for booking %d: %w", payment.BookingID, ErrDuplicate)
		}
		if p.TransactionID == payment.TransactionID {
			return nil, fmt.Errorf("transaction %q: %w", payment.TransactionID, ErrDuplicate)
		}
	}

	m.paymentCounter++
	payment.ID = m.paymentCounter
	payment.CreatedAt = time.Now()
	payment.UpdatedAt = payment.CreatedAt
	m.payments[payment.ID] = payment
	return payment, nil
}

func (m *MemoryStore) GetPaymentByBooking(bookingID uint) (*models.Payment, error) {
	m.paymentMu.RLock()
	defer m.paymentMu.RUnlock()

	for _, p := range m.payments {
		if p.BookingID == bookingID {
			return p, nil
		}
	}
	return nil, fmt.Errorf("payment for booking %d: %w", bookingID, ErrNotFound)
}

func (m *MemoryStore) UpdatePayment(payment *models.Payment) error {
	m.paymentMu.Lock()
	defer m.paymentMu.Unlock()

	if _, exists := m.payments[payment.ID]; !exists {
		return fmt.Errorf("payment %d: %w", payment.ID, ErrNotFound)
	}
	payment.UpdatedAt = time.Now()
	m.payments[payment.ID] = payment
	return nil
}

func (m *MemoryStore) DeletePayment(id uint) error {
	m.paymentMu.Lock()
	defer m.paymentMu.Unlock()

	if _, exists := m.payments[id]; !exists {
		return fmt.Errorf("payment %d: %w", id, ErrNotFound)
	}
	delete(m.payments, id)
	return nil
}

// OTP operations

func (m *MemoryStore) CreateOTP(otp *models.OTP) (*models.OTP, error) {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	m.otpCounter++
	otp.ID = m.otpCounter
	if otp.CreatedAt.IsZero() {
		otp.CreatedAt = time.Now().UTC()
	}
	m.otps[otp.ID] = otp
	return otp, nil
}

func (m *MemoryStore) GetLatestUnusedOTP(subjectID uint, subjectType string) (*models.OTP, error) {
	m.otpMu.RLock()
	defer m.otpMu.RUnlock()

	var latest *models.OTP
	for _, o := range m.otps {
		if o.SubjectID != subjectID || o.SubjectType != subjectType || o.IsUsed {
			continue
		}
		if latest == nil || o.CreatedAt.After(latest.CreatedAt) ||
			(o.CreatedAt.Equal(latest.CreatedAt) && o.ID > latest.ID) {
			latest = o
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("otp for %s %d: %w", subjectType, subjectID, ErrNotFound)
	}
	return latest, nil
}

func (m *MemoryStore) UpdateOTP(otp *models.OTP) error {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	if _, exists := m.otps[otp.ID]; !exists {
		return fmt.Errorf("otp %d: %w", otp.ID, ErrNotFound)
	}
	m.otps[otp.ID] = otp
	return nil
}

func (m *MemoryStore) DeleteExpiredOTPs() (int64, error) {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	now := time.Now().UTC()
	var removed int64
	for id, o := range m.otps {
		if now.After(o.ExpiresAt) {
			delete(m.otps, id)
			removed++
		}
	}
	return removed, nil
}
