package services

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hireplatform/hire-backend/internal/models"
	"github.com/hireplatform/hire-backend/internal/storage"
	"github.com/hireplatform/hire-backend/internal/utils"
)

// otpTTL is how long an issued code stays valid.
const otpTTL = 10 * time.Minute

// OTPService issues and verifies one-time passcodes gating account
// activation.
type OTPService struct {
	store    storage.Store
	sender   Sender
	testMode bool
	logger   *zap.Logger
}

// NewOTPService wires the OTP flow. A nil sender degrades to test mode:
// codes are generated, persisted and returned without any delivery attempt.
func NewOTPService(store storage.Store, sender Sender, testMode bool, logger *zap.Logger) *OTPService {
	return &OTPService{store: store, sender: sender, testMode: testMode, logger: logger}
}

// Issue generates a 6-digit code for the subject, attempts delivery, and
// persists a verification record whenever a code was produced.
//
// Return contract (mirrors the delivery-fault taxonomy):
//   - code != "", err == nil: delivered, or test mode.
//   - code != "", err != nil: advisory fault; the record exists and the
//     caller may proceed, surfacing the warning.
//   - code == "", err != nil: fatal fault; no record was created and the
//     caller must roll back the pending registration.
func (s *OTPService) Issue(subjectID uint, subjectType, phoneNumber string) (string, error) {
	code, err := utils.GenerateSecureOTP()
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}

	deliveryErr := s.deliver(phoneNumber, code)
	if deliveryErr != nil {
		if errors.Is(deliveryErr, ErrInvalidPhoneNumber) || errors.Is(deliveryErr, ErrPhoneUnreachable) {
			s.logger.Warn("otp delivery rejected",
				zap.String("phone", phoneNumber), zap.Error(deliveryErr))
			return "", deliveryErr
		}
		// Advisory: never lose a generated code over a provider-side fault.
		s.logger.Warn("otp delivery degraded, continuing with generated code",
			zap.String("subject_type", subjectType), zap.Uint("subject_id", subjectID),
			zap.Error(deliveryErr))
	}

	record := &models.OTP{
		SubjectID:   subjectID,
		SubjectType: subjectType,
		Code:        code,
		IsUsed:      false,
		ExpiresAt:   time.Now().UTC().Add(otpTTL),
	}
	if _, err := s.store.CreateOTP(record); err != nil {
		return "", fmt.Errorf("failed to store OTP record: %w", err)
	}

	return code, deliveryErr
}

func (s *OTPService) deliver(phoneNumber, code string) error {
	if s.testMode || s.sender == nil {
		s.logger.Info("otp test mode, skipping delivery")
		return nil
	}
	body := fmt.Sprintf("Your HIRE Platform verification code is: %s", code)
	return s.sender.Send(phoneNumber, body)
}

// Verify checks the entered code against the most recently issued unused
// record for the subject. A match consumes the record; a used or expired
// record never validates again.
func (s *OTPService) Verify(subjectID uint, subjectType, enteredCode string) (bool, error) {
	if enteredCode == "" {
		return false, nil
	}

	record, err := s.store.GetLatestUnusedOTP(subjectID, subjectType)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("no active otp for subject",
				zap.String("subject_type", subjectType), zap.Uint("subject_id", subjectID))
			return false, nil
		}
		return false, err
	}

	if record.Code != enteredCode {
		return false, nil
	}
	if record.IsExpired() {
		return false, nil
	}

	record.IsUsed = true
	if err := s.store.UpdateOTP(record); err != nil {
		return false, fmt.Errorf("failed to consume OTP record: %w", err)
	}
	return true, nil
}
