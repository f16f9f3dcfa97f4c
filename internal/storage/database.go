package storage

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/hireplatform/hire-backend/internal/models"
)

// DatabaseStore is the PostgreSQL-backed Store.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore wraps a connected gorm.DB.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func translate(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: %w", what, ErrDuplicate)
	}
	return err
}

// dateOnly strips the time component so date columns compare by day.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Customer operations

func (s *DatabaseStore) CreateCustomer(customer *models.Customer) (*models.Customer, error) {
	if err := s.db.Create(customer).Error; err != nil {
		return nil, translate(err, "create customer")
	}
	return customer, nil
}

func (s *DatabaseStore) GetCustomer(id uint) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db.First(&customer, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("customer %d", id))
	}
	return &customer, nil
}

func (s *DatabaseStore) GetCustomerByEmail(email string) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db.Where("email = ?", email).First(&customer).Error; err != nil {
		return nil, translate(err, "customer by email")
	}
	return &customer, nil
}

func (s *DatabaseStore) GetCustomerByPhone(phone string) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db.Where("phone = ?", phone).First(&customer).Error; err != nil {
		return nil, translate(err, "customer by phone")
	}
	return &customer, nil
}

func (s *DatabaseStore) UpdateCustomer(customer *models.Customer) error {
	return translate(s.db.Save(customer).Error, fmt.Sprintf("update customer %d", customer.ID))
}

func (s *DatabaseStore) DeleteCustomer(id uint) error {
	return translate(s.db.Delete(&models.Customer{}, id).Error, fmt.Sprintf("delete customer %d", id))
}

// Provider operations

func (s *DatabaseStore) CreateProvider(provider *models.Provider) (*models.Provider, error) {
	if err := s.db.Create(provider).Error; err != nil {
		return nil, translate(err, "create provider")
	}
	return provider, nil
}

func (s *DatabaseStore) GetProvider(id uint) (*models.Provider, error) {
	var provider models.Provider
	if err := s.db.First(&provider, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("provider %d", id))
	}
	return &provider, nil
}

func (s *DatabaseStore) GetProviderByEmail(email string) (*models.Provider, error) {
	var provider models.Provider
	if err := s.db.Where("email = ?", email).First(&provider).Error; err != nil {
		return nil, translate(err, "provider by email")
	}
	return &provider, nil
}

func (s *DatabaseStore) GetProviderByPhone(phone string) (*models.Provider, error) {
	var provider models.Provider
	if err := s.db.Where("phone = ?", phone).First(&provider).Error; err != nil {
		return nil, translate(err, "provider by phone")
	}
	return &provider, nil
}

func (s *DatabaseStore) GetProvidersByIDs(ids []uint) ([]*models.Provider, error) {
	var providers []*models.Provider
	if err := s.db.Where("id IN ?", ids).Find(&providers).Error; err != nil {
		return nil, err
	}
	return providers, nil
}

func (s *DatabaseStore) GetTopRatedProviders(limit int) ([]*models.Provider, error) {
	var providers []*models.Provider
	q := s.db.Where("avg_rating IS NOT NULL AND is_verified = ?", true).
		Order("avg_rating DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&providers).Error; err != nil {
		return nil, err
	}
	return providers, nil
}

func (s *DatabaseStore) UpdateProvider(provider *models.Provider) error {
	return translate(s.db.Save(provider).Error, fmt.Sprintf("update provider %d", provider.ID))
}

func (s *DatabaseStore) DeleteProvider(id uint) error {
	return translate(s.db.Delete(&models.Provider{}, id).Error, fmt.Sprintf("delete provider %d", id))
}

// Service category operations

func (s *DatabaseStore) CreateCategory(category *models.ServiceCategory) (*models.ServiceCategory, error) {
	if err := s.db.Create(category).Error; err != nil {
		return nil, translate(err, "create category")
	}
	return category, nil
}

func (s *DatabaseStore) GetCategory(id uint) (*models.ServiceCategory, error) {
	var category models.ServiceCategory
	if err := s.db.First(&category, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("category %d", id))
	}
	return &category, nil
}

func (s *DatabaseStore) GetCategories() ([]*models.ServiceCategory, error) {
	var categories []*models.ServiceCategory
	if err := s.db.Order("id").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// Provider offering operations

func (s *DatabaseStore) CreateProviderCategory(offering *models.ProviderCategory) (*models.ProviderCategory, error) {
	if err := s.db.Create(offering).Error; err != nil {
		return nil, translate(err, "create offering")
	}
	return offering, nil
}

func (s *DatabaseStore) GetOfferingsByCategory(categoryID uint) ([]*models.ProviderCategory, error) {
	var offerings []*models.ProviderCategory
	if err := s.db.Where("category_id = ?", categoryID).Order("id").Find(&offerings).Error; err != nil {
		return nil, err
	}
	return offerings, nil
}

func (s *DatabaseStore) GetOfferingsByProvider(providerID uint) ([]*models.ProviderCategory, error) {
	var offerings []*models.ProviderCategory
	if err := s.db.Where("provider_id = ?", providerID).Order("id").Find(&offerings).Error; err != nil {
		return nil, err
	}
	return offerings, nil
}

func (s *DatabaseStore) GetOffering(providerID, categoryID uint) (*models.ProviderCategory, error) {
	var offering models.ProviderCategory
	err := s.db.Where("provider_id = ? AND category_id = ?", providerID, categoryID).
		First(&offering).Error
	if err != nil {
		return nil, translate(err, "offering")
	}
	return &offering, nil
}

// Address operations

func (s *DatabaseStore) CreateAddress(address *models.Address) (*models.Address, error) {
	if err := s.db.Create(address).Error; err != nil {
		return nil, translate(err, "create address")
	}
	return address, nil
}

func (s *DatabaseStore) GetAddress(id uint) (*models.Address, error) {
	var address models.Address
	if err := s.db.First(&address, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("address %d", id))
	}
	return &address, nil
}

func (s *DatabaseStore) GetAddressesByCustomer(customerID uint) ([]*models.Address, error) {
	var addresses []*models.Address
	if err := s.db.Where("customer_id = ?", customerID).Order("id").Find(&addresses).Error; err != nil {
		return nil, err
	}
	return addresses, nil
}

func (s *DatabaseStore) GetPrimaryProviderAddress(providerID uint) (*models.Address, error) {
	var address models.Address
	err := s.db.Where("provider_id = ?", providerID).Order("id").First(&address).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("provider %d address", providerID))
	}
	return &address, nil
}

func (s *DatabaseStore) UpdateAddress(address *models.Address) error {
	return translate(s.db.Save(address).Error, fmt.Sprintf("update address %d", address.ID))
}

// Booking operations

// CreateBooking re-runs the slot conflict check inside a transaction so two
// concurrent creates cannot both commit the same provider/date/slot.
func (s *DatabaseStore) CreateBooking(booking *models.Booking) (*models.Booking, error) {
	booking.BookingDate = dateOnly(booking.BookingDate)
	if booking.Status == "" {
		booking.Status = models.BookingStatusPending
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.Booking{}).
			Where("provider_id = ? AND booking_date = ? AND time_slot = ? AND status IN ?",
				booking.ProviderID, booking.BookingDate, booking.TimeSlot,
				[]string{models.BookingStatusPending, models.BookingStatusConfirmed}).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("slot %s: %w", booking.TimeSlot, ErrDuplicate)
		}
		return tx.Create(booking).Error
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *DatabaseStore) GetBooking(id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.First(&booking, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("booking %d", id))
	}
	return &booking, nil
}

func (s *DatabaseStore) UpdateBooking(booking *models.Booking) error {
	return translate(s.db.Save(booking).Error, fmt.Sprintf("update booking %d", booking.ID))
}

func (s *DatabaseStore) GetBookingsByCustomer(customerID uint) ([]*models.Booking, error) {
	var bookings []*models.Booking
	if err := s.db.Where("customer_id = ?", customerID).Order("id").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (s *DatabaseStore) GetBookingsByProvider(providerID uint) ([]*models.Booking, error) {
	var bookings []*models.Booking
	if err := s.db.Where("provider_id = ?", providerID).Order("id").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (s *DatabaseStore) GetActiveBookings(providerID uint, date time.Time) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := s.db.Where("provider_id = ? AND booking_date = ? AND status IN ?",
		providerID, dateOnly(date),
		[]string{models.BookingStatusPending, models.BookingStatusConfirmed}).
		Order("id").Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (s *DatabaseStore) HasBookingConflict(providerID uint, date time.Time, timeSlot string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Booking{}).
		Where("provider_id = ? AND booking_date = ? AND time_slot = ? AND status IN ?",
			providerID, dateOnly(date), timeSlot,
			[]string{models.BookingStatusPending, models.BookingStatusConfirmed}).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *DatabaseStore) GetRatedCompletedBookings(providerID uint) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := s.db.Where("provider_id = ? AND status = ? AND rating IS NOT NULL",
		providerID, models.BookingStatusCompleted).
		Order("id").Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (s *DatabaseStore) GetActiveBookingsOnDate(date time.Time) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := s.db.Where("booking_date = ? AND status IN ?",
		dateOnly(date),
		[]string{models.BookingStatusPending, models.BookingStatusConfirmed}).
		Order("id").Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// Payment operations

func (s *DatabaseStore) CreatePayment(payment *models.Payment) (*models.Payment, error) {
	if err := s.db.Create(payment).Error; err != nil {
		return nil, translate(err, "create payment")
	}
	return payment, nil
}

func (s *DatabaseStore) GetPaymentByBooking(bookingID uint) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.Where("booking_id = ?", bookingID).First(&payment).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("payment for booking %d", bookingID))
	}
	return &payment, nil
}

func (s *DatabaseStore) UpdatePayment(payment *models.Payment) error {
	return translate(s.db.Save(payment).Error, fmt.Sprintf("update payment %d", payment.ID))
}

func (s *DatabaseStore) DeletePayment(id uint) error {
	return translate(s.db.Delete(&models.Payment{}, id).Error, fmt.Sprintf("delete payment %d", id))
}

// OTP operations

func (s *DatabaseStore) CreateOTP(otp *models.OTP) (*models.OTP, error) {
	if err := s.db.Create(otp).Error; err != nil {
		return nil, translate(err, "create otp")
	}
	return otp, nil
}

func (s *DatabaseStore) GetLatestUnusedOTP(subjectID uint, subjectType string) (*models.OTP, error) {
	var otp models.OTP
	err := s.db.Where("subject_id = ? AND subject_type = ? AND is_used = ?",
		subjectID, subjectType, false).
		Order("created_at DESC").
		First(&otp).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("otp for %s %d", subjectType, subjectID))
	}
	return &otp, nil
}

func (s *DatabaseStore) UpdateOTP(otp *models.OTP) error {
	return translate(s.db.Save(otp).Error, fmt.Sprintf("update otp %d", otp.ID))
}

func (s *DatabaseStore) DeleteExpiredOTPs() (int64, error) {
	res := s.db.Where("expires_at < ?", time.Now().UTC()).Delete(&models.OTP{})
	return res.RowsAffected, res.Error
}
