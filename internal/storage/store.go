package storage

import (
	"errors"
	"time"

	"github.com/hireplatform/hire-backend/internal/models"
)

// Sentinel errors shared by every Store implementation. Callers decide how to
// surface them; the store never invents default entities.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Store is the persistence collaborator the core operates through.
type Store interface {
	// Customer operations
	CreateCustomer(customer *models.Customer) (*models.Customer, error)
	GetCustomer(id uint) (*models.Customer, error)
	GetCustomerByEmail(email string) (*models.Customer, error)
	GetCustomerByPhone(phone string) (*models.Customer, error)
	UpdateCustomer(customer *models.Customer) error
	DeleteCustomer(id uint) error

	// Provider operations
	CreateProvider(provider *models.Provider) (*models.Provider, error)
	GetProvider(id uint) (*models.Provider, error)
	GetProviderByEmail(email string) (*models.Provider, error)
	GetProviderByPhone(phone string) (*models.Provider, error)
	GetProvidersByIDs(ids []uint) ([]*models.Provider, error)
	GetTopRatedProviders(limit int) ([]*models.Provider, error)
	UpdateProvider(provider *models.Provider) error
	DeleteProvider(id uint) error

	// Service category operations
	CreateCategory(category *models.ServiceCategory) (*models.ServiceCategory, error)
	GetCategory(id uint) (*models.ServiceCategory, error)
	GetCategories() ([]*models.ServiceCategory, error)

	// Provider offering operations
	CreateProviderCategory(offering *models.ProviderCategory) (*models.ProviderCategory, error)
	GetOfferingsByCategory(categoryID uint) ([]*models.ProviderCategory, error)
	GetOfferingsByProvider(providerID uint) ([]*models.ProviderCategory, error)
	GetOffering(providerID, categoryID uint) (*models.ProviderCategory, error)

	// Address operations
	CreateAddress(address *models.Address) (*models.Address, error)
	GetAddress(id uint) (*models.Address, error)
	GetAddressesByCustomer(customerID uint) ([]*models.Address, error)
	GetPrimaryProviderAddress(providerID uint) (*models.Address, error)
	UpdateAddress(address *models.Address) error

	// Booking operations
	CreateBooking(booking *models.Booking) (*models.Booking, error)
	GetBooking(id uint) (*models.Booking, error)
	UpdateBooking(booking *models.Booking) error
	GetBookingsByCustomer(customerID uint) ([]*models.Booking, error)
	GetBookingsByProvider(providerID uint) ([]*models.Booking, error)
	GetActiveBookings(providerID uint, date time.Time) ([]*models.Booking, error)
	HasBookingConflict(providerID uint, date time.Time, timeSlot string) (bool, error)
	GetRatedCompletedBookings(providerID uint) ([]*models.Booking, error)
	GetActiveBookingsOnDate(date time.Time) ([]*models.Booking, error)

	// Payment operations
	CreatePayment(payment *models.Payment) (*models.Payment, error)
	GetPaymentByBooking(bookingID uint) (*models.Payment, error)
	UpdatePayment(payment *models.Payment) error
	DeletePayment(id uint) error

	// OTP operations
	CreateOTP(otp *models.OTP) (*models.OTP, error)
	GetLatestUnusedOTP(subjectID uint, subjectType string) (*models.OTP, error)
	UpdateOTP(otp *models.OTP) error
	DeleteExpiredOTPs() (int64, error)
}
