package services

import (
	"sort"

	"go.uber.org/zap"

	"github.com/hireplatform/hire-backend/internal/models"
	"github.com/hireplatform/hire-backend/internal/storage"
)

// DefaultMatchLimit is how many providers a search returns when the caller
// does not ask for a specific count.
const DefaultMatchLimit = 5

// Scoring weights. The composite score is additive; the proximity bonus can
// push it past 100 and that is deliberate, rankings depend on it.
const (
	ratingWeight       = 40.0
	neutralRatingScore = 20.0
	experiencePerYear  = 3.0
	maxExperienceScore = 30.0
	priceWeight        = 30.0
	proximityNearKm    = 5.0
	proximityMidKm     = 10.0
	proximityFarKm     = 20.0
	proximityNearBonus = 15.0
	proximityMidBonus  = 10.0
	proximityFarBonus  = 5.0
)

// MatchingService ranks providers for a customer's service request.
type MatchingService struct {
	store  storage.Store
	logger *zap.Logger
}

// NewMatchingService builds a matcher over the given store.
func NewMatchingService(store storage.Store, logger *zap.Logger) *MatchingService {
	return &MatchingService{store: store, logger: logger}
}

// ScoreProvider computes the composite desirability score of one provider for
// a request in the given category. avgPrice is the market mean price for the
// category; pass 0 when unknown to skip the price term. Missing data (no
// rating, no coordinates, no offering) contributes neutrally, never as a
// penalty.
func (s *MatchingService) ScoreProvider(provider *models.Provider, customerAddress *models.Address, categoryID uint, avgPrice float64) float64 {
	score := 0.0

	// Rating term (0-40), neutral default for unrated providers.
	if provider.AvgRating != nil {
		score += (*provider.AvgRating / 5.0) * ratingWeight
	} else {
		score += neutralRatingScore
	}

	// Experience term (0-30).
	experience := float64(provider.ExperienceYears) * experiencePerYear
	if experience > maxExperienceScore {
		experience = maxExperienceScore
	}
	score += experience

	// Price competitiveness term (0-30), only when the provider offers the
	// category and a market average is known. The two branches disagree at
	// ratio=1; that quirk is load-bearing for existing rankings, keep it.
	if avgPrice > 0 {
		if offering, err := s.store.GetOffering(provider.ID, categoryID); err == nil {
			ratio := offering.PriceRate / avgPrice
			if ratio < 1 {
				score += priceWeight * (1 - ratio/2)
			} else {
				priceScore := priceWeight * (2 - ratio)
				if priceScore < 0 {
					priceScore = 0
				}
				score += priceScore
			}
		}
	}

	// Proximity bonus (0-15), only when both sides are geocoded.
	if customerAddress != nil && customerAddress.HasCoordinates() {
		if providerAddress, err := s.store.GetPrimaryProviderAddress(provider.ID); err == nil && providerAddress.HasCoordinates() {
			distanceKm := CalculateDistance(
				*customerAddress.Latitude, *customerAddress.Longitude,
				*providerAddress.Latitude, *providerAddress.Longitude,
			)
			switch {
			case distanceKm < proximityNearKm:
				score += proximityNearBonus
			case distanceKm < proximityMidKm:
				score += proximityMidBonus
			case distanceKm < proximityFarKm:
				score += proximityFarBonus
			}
		}
	}

	return score
}

// FindMatchingProviders returns up to limit providers for the category,
// best score first. Only available, verified providers qualify; an empty
// category yields an empty list, not an error.
func (s *MatchingService) FindMatchingProviders(customerAddress *models.Address, categoryID uint, limit int) ([]*models.Provider, error) {
	if limit <= 0 {
		limit = DefaultMatchLimit
	}

	offerings, err := s.store.GetOfferingsByCategory(categoryID)
	if err != nil {
		return nil, err
	}
	if len(offerings) == 0 {
		s.logger.Info("no offerings for category", zap.Uint("category_id", categoryID))
		return []*models.Provider{}, nil
	}

	// One market average across every offering of the category, shared by
	// all scored providers.
	var totalPrice float64
	providerIDs := make([]uint, 0, len(offerings))
	for _, o := range offerings {
		totalPrice += o.PriceRate
		providerIDs = append(providerIDs, o.ProviderID)
	}
	avgPrice := totalPrice / float64(len(offerings))

	providers, err := s.store.GetProvidersByIDs(providerIDs)
	if err != nil {
		return nil, err
	}

	type scoredProvider struct {
		provider *models.Provider
		score    float64
	}
	var scored []scoredProvider
	for _, p := range providers {
		if !p.IsAvailable || !p.IsVerified {
			continue
		}
		scored = append(scored, scoredProvider{
			provider: p,
			score:    s.ScoreProvider(p, customerAddress, categoryID, avgPrice),
		})
	}
	if len(scored) == 0 {
		s.logger.Info("no available and verified providers for category",
			zap.Uint("category_id", categoryID))
		return []*models.Provider{}, nil
	}

	// Stable keeps enumeration order on equal scores.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	matched := make([]*models.Provider, len(scored))
	for i, sp := range scored {
		matched[i] = sp.provider
	}

	s.logger.Info("matched providers",
		zap.Uint("category_id", categoryID), zap.Int("count", len(matched)))
	return matched, nil
}
