package services

import (
	"errors"

	"go.uber.org/zap"

	"github.com/hireplatform/hire-backend/internal/models"
	"github.com/hireplatform/hire-backend/internal/storage"
	"github.com/hireplatform/hire-backend/internal/utils"
)

var (
	ErrInvalidPaymentMethod = errors.New("unsupported payment method")
	ErrPaymentExists        = errors.New("booking already has a payment")
	ErrNoOfferingPrice      = errors.New("provider has no price for this category")
)

const transactionPrefix = "HIRE"

// PaymentService captures simulated payments for pending bookings. There is
// no gateway behind it; capture always succeeds once the inputs check out.
type PaymentService struct {
	store    storage.Store
	bookings *BookingService
	logger   *zap.Logger
}

// NewPaymentService builds the capture service.
func NewPaymentService(store storage.Store, bookings *BookingService, logger *zap.Logger) *PaymentService {
	return &PaymentService{store: store, bookings: bookings, logger: logger}
}

func validMethod(method string) bool {
	for _, m := range models.PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}

// Process captures payment for a pending booking and confirms it. The amount
// is the provider's listed rate for the booked category; one payment per
// booking.
func (s *PaymentService) Process(bookingID uint, method string) (*models.Payment, error) {
	if !validMethod(method) {
		return nil, ErrInvalidPaymentMethod
	}

	booking, err := s.bookings.Get(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingStatusPending {
		return nil, &StateError{Op: "paid", Current: booking.Status}
	}

	if _, err := s.store.GetPaymentByBooking(bookingID); err == nil {
		return nil, ErrPaymentExists
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	offering, err := s.store.GetOffering(booking.ProviderID, booking.CategoryID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoOfferingPrice
		}
		return nil, err
	}

	payment := &models.Payment{
		BookingID:     bookingID,
		Amount:        offering.PriceRate,
		PaymentMethod: method,
		Status:        models.PaymentStatusSuccessful,
		TransactionID: utils.GenerateTransactionID(transactionPrefix),
	}
	created, err := s.store.CreatePayment(payment)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrPaymentExists
		}
		return nil, err
	}

	// Capture and confirmation are one unit of work; a failed confirmation
	// must not leave a successful payment on a pending booking.
	if err := s.bookings.Confirm(bookingID); err != nil {
		if delErr := s.store.DeletePayment(created.ID); delErr != nil {
			s.logger.Error("payment rollback after failed confirmation",
				zap.Uint("booking_id", bookingID), zap.Error(delErr))
		}
		return nil, err
	}

	s.logger.Info("payment captured",
		zap.Uint("booking_id", bookingID),
		zap.Float64("amount", created.Amount),
		zap.String("transaction_id", created.TransactionID))
	return created, nil
}
