package jobs

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hireplatform/hire-backend/internal/services"
	"github.com/hireplatform/hire-backend/internal/storage"
)

const (
	otpCleanupInterval = time.Hour
	reminderHour       = 18
)

// MaintenanceJob runs the scheduled housekeeping: expired-OTP cleanup and
// next-day booking reminders.
type MaintenanceJob struct {
	store  storage.Store
	sender services.Sender
	logger *zap.Logger
	stop   chan struct{}
}

// NewMaintenanceJob creates the job scheduler. sender may be nil, in which
// case reminders are skipped.
func NewMaintenanceJob(store storage.Store, sender services.Sender, logger *zap.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		store:  store,
		sender: sender,
		logger: logger,
		stop:   make(chan struct{}),
	}
}

// Start launches the scheduled jobs.
func (j *MaintenanceJob) Start() {
	j.logger.Info("starting scheduled maintenance jobs")
	go j.runOTPCleanup()
	go j.runBookingReminders()
}

// Stop halts all scheduled jobs.
func (j *MaintenanceJob) Stop() {
	close(j.stop)
	j.logger.Info("stopped scheduled maintenance jobs")
}

func (j *MaintenanceJob) runOTPCleanup() {
	ticker := time.NewTicker(otpCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed, err := j.store.DeleteExpiredOTPs()
			if err != nil {
				j.logger.Error("OTP cleanup failed", zap.Error(err))
				continue
			}
			if removed > 0 {
				j.logger.Info("expired OTPs removed", zap.Int64("count", removed))
			}
		case <-j.stop:
			return
		}
	}
}

// runBookingReminders wakes at the reminder hour each day and texts every
// customer with an active booking tomorrow.
func (j *MaintenanceJob) runBookingReminders() {
	for {
		now := time.Now()
		nextRun := time.Date(now.Year(), now.Month(), now.Day(), reminderHour, 0, 0, 0, now.Location())
		if !nextRun.After(now) {
			nextRun = nextRun.AddDate(0, 0, 1)
		}

		timer := time.NewTimer(nextRun.Sub(now))
		select {
		case <-timer.C:
			j.sendBookingReminders()
		case <-j.stop:
			timer.Stop()
			return
		}
	}
}

func (j *MaintenanceJob) sendBookingReminders() {
	if j.sender == nil {
		return
	}

	tomorrow := time.Now().AddDate(0, 0, 1)
	bookings, err := j.store.GetActiveBookingsOnDate(tomorrow)
	if err != nil {
		j.logger.Error("reminder lookup failed", zap.Error(err))
		return
	}

	sent := 0
	for _, booking := range bookings {
		customer, err := j.store.GetCustomer(booking.CustomerID)
		if err != nil {
			j.logger.Warn("reminder skipped, customer missing",
				zap.Uint("booking_id", booking.ID), zap.Error(err))
			continue
		}
		provider, err := j.store.GetProvider(booking.ProviderID)
		if err != nil {
			j.logger.Warn("reminder skipped, provider missing",
				zap.Uint("booking_id", booking.ID), zap.Error(err))
			continue
		}

		body := fmt.Sprintf("Reminder: your booking with %s is tomorrow at %s.",
			provider.FullName(), booking.TimeSlot)
		if err := j.sender.Send(customer.Phone, body); err != nil {
			j.logger.Warn("reminder delivery failed",
				zap.Uint("booking_id", booking.ID), zap.Error(err))
			continue
		}
		sent++
	}

	if len(bookings) > 0 {
		j.logger.Info("booking reminders sent",
			zap.Int("sent", sent), zap.Int("due", len(bookings)))
	}
}
