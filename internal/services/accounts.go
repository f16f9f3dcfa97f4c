package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hireplatform/hire-backend/internal/models"
	"github.com/hireplatform/hire-backend/internal/storage"
	"github.com/hireplatform/hire-backend/internal/utils"
)

var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrPhoneTaken         = errors.New("phone number is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidPrice       = errors.New("price rate must be positive")
	ErrOfferingExists     = errors.New("provider already offers this category")
)

const geocodeTimeout = 5 * time.Second

// AccountService handles registration, login, phone verification, addresses
// and provider offerings for both account types.
type AccountService struct {
	store    storage.Store
	otp      *OTPService
	geocoder Geocoder
	logger   *zap.Logger
}

// NewAccountService builds the account service. geocoder may be nil, in
// which case addresses are stored without coordinates.
func NewAccountService(store storage.Store, otp *OTPService, geocoder Geocoder, logger *zap.Logger) *AccountService {
	return &AccountService{store: store, otp: otp, geocoder: geocoder, logger: logger}
}

// emailInUse checks both account tables; an email identifies one person on
// the whole platform, not one per role.
func (s *AccountService) emailInUse(email string) (bool, error) {
	if _, err := s.store.GetCustomerByEmail(email); err == nil {
		return true, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return false, err
	}
	if _, err := s.store.GetProviderByEmail(email); err == nil {
		return true, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return false, err
	}
	return false, nil
}

func (s *AccountService) phoneInUse(phone string) (bool, error) {
	if _, err := s.store.GetCustomerByPhone(phone); err == nil {
		return true, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return false, err
	}
	if _, err := s.store.GetProviderByPhone(phone); err == nil {
		return true, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return false, err
	}
	return false, nil
}

func (s *AccountService) checkIdentity(email, phone string) error {
	taken, err := s.emailInUse(email)
	if err != nil {
		return err
	}
	if taken {
		return ErrEmailTaken
	}
	taken, err = s.phoneInUse(phone)
	if err != nil {
		return err
	}
	if taken {
		return ErrPhoneTaken
	}
	return nil
}

// RegisterCustomer creates an unverified customer account and sends a
// verification code to its phone. A fatal delivery fault (bad or unreachable
// number) rolls the account back; an advisory fault leaves the account in
// place and is returned as smsWarning.
func (s *AccountService) RegisterCustomer(reg models.CustomerRegistration) (customer *models.Customer, smsWarning error, err error) {
	if err := s.checkIdentity(reg.Email, reg.Phone); err != nil {
		return nil, nil, err
	}

	hash, err := utils.HashPassword(reg.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	customer, err = s.store.CreateCustomer(&models.Customer{
		Email:        reg.Email,
		Phone:        reg.Phone,
		PasswordHash: hash,
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, nil, ErrEmailTaken
		}
		return nil, nil, err
	}

	code, issueErr := s.otp.Issue(customer.ID, models.SubjectCustomer, customer.Phone)
	if code == "" && issueErr != nil {
		// Undeliverable number, scrap the account so the user can retry.
		if delErr := s.store.DeleteCustomer(customer.ID); delErr != nil {
			s.logger.Error("rollback after failed OTP delivery",
				zap.Uint("customer_id", customer.ID), zap.Error(delErr))
		}
		return nil, nil, issueErr
	}

	s.logger.Info("customer registered",
		zap.Uint("customer_id", customer.ID), zap.String("email", customer.Email))
	return customer, issueErr, nil
}

// RegisterProvider creates an unverified provider account, mirroring
// RegisterCustomer's delivery-fault handling.
func (s *AccountService) RegisterProvider(reg models.ProviderRegistration) (provider *models.Provider, smsWarning error, err error) {
	if err := s.checkIdentity(reg.Email, reg.Phone); err != nil {
		return nil, nil, err
	}

	hash, err := utils.HashPassword(reg.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	provider, err = s.store.CreateProvider(&models.Provider{
		Email:                reg.Email,
		Phone:                reg.Phone,
		PasswordHash:         hash,
		FirstName:            reg.FirstName,
		LastName:             reg.LastName,
		VerificationDocument: reg.VerificationDocument,
		ExperienceYears:      reg.ExperienceYears,
		IsAvailable:          true,
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, nil, ErrEmailTaken
		}
		return nil, nil, err
	}

	code, issueErr := s.otp.Issue(provider.ID, models.SubjectProvider, provider.Phone)
	if code == "" && issueErr != nil {
		if delErr := s.store.DeleteProvider(provider.ID); delErr != nil {
			s.logger.Error("rollback after failed OTP delivery",
				zap.Uint("provider_id", provider.ID), zap.Error(delErr))
		}
		return nil, nil, issueErr
	}

	s.logger.Info("provider registered",
		zap.Uint("provider_id", provider.ID), zap.String("email", provider.Email))
	return provider, issueErr, nil
}

// Login checks credentials for the given role and returns a signed token.
// Password checking runs even for unknown emails so timing does not reveal
// which part failed.
func (s *AccountService) Login(email, password, role string) (string, error) {
	var (
		id   uint
		hash string
	)
	switch role {
	case models.SubjectCustomer:
		customer, err := s.store.GetCustomerByEmail(email)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				utils.CheckPassword(dummyHash, password)
				return "", ErrInvalidCredentials
			}
			return "", err
		}
		id, hash = customer.ID, customer.PasswordHash
	case models.SubjectProvider:
		provider, err := s.store.GetProviderByEmail(email)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				utils.CheckPassword(dummyHash, password)
				return "", ErrInvalidCredentials
			}
			return "", err
		}
		id, hash = provider.ID, provider.PasswordHash
	default:
		return "", ErrInvalidCredentials
	}

	if !utils.CheckPassword(hash, password) {
		return "", ErrInvalidCredentials
	}
	return utils.CreateToken(id, role)
}

// dummyHash is a bcrypt digest of a throwaway string, compared against when
// the email does not exist.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// VerifyAccount checks the submitted code against the subject's latest OTP
// and, on success, marks the account verified.
func (s *AccountService) VerifyAccount(subjectID uint, subjectType, code string) (bool, error) {
	ok, err := s.otp.Verify(subjectID, subjectType, code)
	if err != nil || !ok {
		return false, err
	}

	switch subjectType {
	case models.SubjectCustomer:
		customer, err := s.store.GetCustomer(subjectID)
		if err != nil {
			return false, err
		}
		customer.IsVerified = true
		if err := s.store.UpdateCustomer(customer); err != nil {
			return false, err
		}
	case models.SubjectProvider:
		provider, err := s.store.GetProvider(subjectID)
		if err != nil {
			return false, err
		}
		provider.IsVerified = true
		if err := s.store.UpdateProvider(provider); err != nil {
			return false, err
		}
	default:
		return false, ErrAccountNotFound
	}

	s.logger.Info("account verified",
		zap.Uint("subject_id", subjectID), zap.String("subject_type", subjectType))
	return true, nil
}

// ResendOTP issues a fresh code for an existing unverified account.
func (s *AccountService) ResendOTP(subjectID uint, subjectType string) error {
	var phone string
	switch subjectType {
	case models.SubjectCustomer:
		customer, err := s.store.GetCustomer(subjectID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return ErrAccountNotFound
			}
			return err
		}
		phone = customer.Phone
	case models.SubjectProvider:
		provider, err := s.store.GetProvider(subjectID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return ErrAccountNotFound
			}
			return err
		}
		phone = provider.Phone
	default:
		return ErrAccountNotFound
	}

	code, err := s.otp.Issue(subjectID, subjectType, phone)
	if code == "" && err != nil {
		return err
	}
	if err != nil {
		s.logger.Warn("OTP resent with delivery warning",
			zap.Uint("subject_id", subjectID), zap.Error(err))
	}
	return nil
}

// AddCustomerAddress stores an address for the customer, geocoding it when a
// geocoder is configured. Geocoding failures are logged and swallowed; the
// address is still usable, just without proximity scoring.
func (s *AccountService) AddCustomerAddress(customerID uint, address *models.Address) (*models.Address, error) {
	if _, err := s.store.GetCustomer(customerID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	address.CustomerID = &customerID
	address.ProviderID = nil
	s.geocodeAddress(address)
	return s.store.CreateAddress(address)
}

// AddProviderAddress stores the provider's service address.
func (s *AccountService) AddProviderAddress(providerID uint, address *models.Address) (*models.Address, error) {
	if _, err := s.store.GetProvider(providerID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	address.ProviderID = &providerID
	address.CustomerID = nil
	s.geocodeAddress(address)
	return s.store.CreateAddress(address)
}

func (s *AccountService) geocodeAddress(address *models.Address) {
	if s.geocoder == nil || address.HasCoordinates() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), geocodeTimeout)
	defer cancel()
	lat, lng, err := s.geocoder.Geocode(ctx, address.FullAddress())
	if err != nil {
		s.logger.Warn("geocoding failed, storing address without coordinates",
			zap.String("address", address.FullAddress()), zap.Error(err))
		return
	}
	address.Latitude = &lat
	address.Longitude = &lng
}

// AddOffering lists a provider in a category at a price. One listing per
// provider and category.
func (s *AccountService) AddOffering(providerID, categoryID uint, priceRate float64) (*models.ProviderCategory, error) {
	if priceRate <= 0 {
		return nil, ErrInvalidPrice
	}
	if _, err := s.store.GetProvider(providerID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if _, err := s.store.GetCategory(categoryID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetOffering(providerID, categoryID); err == nil {
		return nil, ErrOfferingExists
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	offering, err := s.store.CreateProviderCategory(&models.ProviderCategory{
		ProviderID: providerID,
		CategoryID: categoryID,
		PriceRate:  priceRate,
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrOfferingExists
		}
		return nil, err
	}

	s.logger.Info("offering added",
		zap.Uint("provider_id", providerID),
		zap.Uint("category_id", categoryID),
		zap.Float64("price_rate", priceRate))
	return offering, nil
}

// SetAvailability flips the provider's availability flag.
func (s *AccountService) SetAvailability(providerID uint, available bool) error {
	provider, err := s.store.GetProvider(providerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	provider.IsAvailable = available
	return s.store.UpdateProvider(provider)
}
