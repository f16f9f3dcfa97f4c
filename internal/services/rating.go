package services

import (
	"math"

	"go.uber.org/zap"

	"github.com/hireplatform/hire-backend/internal/storage"
)

// RatingService recomputes provider averages from rated completed bookings.
type RatingService struct {
	store  storage.Store
	logger *zap.Logger
}

// NewRatingService builds the aggregation service.
func NewRatingService(store storage.Store, logger *zap.Logger) *RatingService {
	return &RatingService{store: store, logger: logger}
}

// Recompute recalculates the provider's average rating over all rated
// completed bookings, rounded to two decimals, and persists it. With no
// rated bookings the average resets to unrated (nil). Returns the new
// average and the number of ratings it covers.
func (s *RatingService) Recompute(providerID uint) (*float64, int, error) {
	provider, err := s.store.GetProvider(providerID)
	if err != nil {
		return nil, 0, err
	}

	rated, err := s.store.GetRatedCompletedBookings(providerID)
	if err != nil {
		return nil, 0, err
	}

	if len(rated) == 0 {
		provider.AvgRating = nil
		if err := s.store.UpdateProvider(provider); err != nil {
			return nil, 0, err
		}
		return nil, 0, nil
	}

	sum := 0
	for _, b := range rated {
		sum += *b.Rating
	}
	avg := math.Round(float64(sum)/float64(len(rated))*100) / 100

	provider.AvgRating = &avg
	if err := s.store.UpdateProvider(provider); err != nil {
		return nil, 0, err
	}

	s.logger.Info("provider rating recomputed",
		zap.Uint("provider_id", providerID),
		zap.Float64("avg_rating", avg),
		zap.Int("rating_count", len(rated)))
	return &avg, len(rated), nil
}
