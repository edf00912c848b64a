package services

import (
	"context"
	"math"
	"time"

	"github.com/sony/gobreaker"
	"github.com/zatekoja/courtside/internal/domain/entities"
	"github.com/zatekoja/courtside/internal/domain/repositories"
	"github.com/zatekoja/courtside/internal/infrastructure/observability"
)

const (
	BaseWeight = 1.0
	MaxWeight  = 6.0

	VerifiedBookingMultiplier = 3.0
	FrequentVisitorMultiplier = 1.5
	ImageUploadMultiplier     = 2.0

	// FrequentVisitorVisits is the visit count from which the visitor bonus applies
	FrequentVisitorVisits = 3
)

// Weight bonus names reported in a breakdown
const (
	BonusVerifiedBooking = "verified_booking"
	BonusFrequentVisitor = "frequent_visitor"
	BonusImageUpload     = "image_upload"
)

// WeightBreakdown explains how a weight was reached
type WeightBreakdown struct {
	UserID           string   `json:"user_id"`
	PlaceID          string   `json:"place_id"`
	Weight           float64  `json:"weight"`
	VerifiedBookings int      `json:"verified_bookings"`
	Visits           int      `json:"visits"`
	ImageUploads     int      `json:"image_uploads"`
	Bonuses          []string `json:"bonuses"`
	// Degraded is set when the ledger could not be read and the floor weight was used
	Degraded bool `json:"degraded"`
}

// ComputeWeight derives a credibility weight from one user's interactions at
// one place. Each bonus is applied at most once and the result is clamped to
// [BaseWeight, MaxWeight].
func ComputeWeight(interactions []*entities.Interaction) float64 {
	return tally(interactions).Weight
}

func tally(interactions []*entities.Interaction) *WeightBreakdown {
	b := &WeightBreakdown{Bonuses: []string{}}
	for _, interaction := range interactions {
		if interaction == nil {
			continue
		}
		switch interaction.Type {
		case entities.InteractionTypeVerifiedBooking:
			b.VerifiedBookings++
		case entities.InteractionTypeVisit:
			b.Visits++
		case entities.InteractionTypeImageUpload:
			b.ImageUploads++
		}
	}

	weight := BaseWeight
	if b.VerifiedBookings > 0 {
		weight *= VerifiedBookingMultiplier
		b.Bonuses = append(b.Bonuses, BonusVerifiedBooking)
	}
	if b.Visits >= FrequentVisitorVisits {
		weight *= FrequentVisitorMultiplier
		b.Bonuses = append(b.Bonuses, BonusFrequentVisitor)
	}
	if b.ImageUploads > 0 {
		weight *= ImageUploadMultiplier
		b.Bonuses = append(b.Bonuses, BonusImageUpload)
	}
	b.Weight = math.Max(BaseWeight, math.Min(MaxWeight, weight))
	return b
}

// WeightService computes weights from the interaction ledger. Every call reads
// the ledger; nothing is cached between calls.
type WeightService struct {
	interactions repositories.InteractionRepository
	breaker      *gobreaker.CircuitBreaker
	metrics      *observability.Metrics
}

// NewWeightService creates a new weight service. Reads go through a circuit
// breaker so a failing store degrades to the floor weight without waiting on
// every request.
func NewWeightService(interactions repositories.InteractionRepository, metrics *observability.Metrics) *WeightService {
	return &WeightService{
		interactions: interactions,
		metrics:      metrics,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "interaction-ledger",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     10 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

// Weight returns the user's current weight for a place. It never fails.
func (s *WeightService) Weight(ctx context.Context, userID, placeID string) float64 {
	return s.Breakdown(ctx, userID, placeID).Weight
}

// Breakdown returns the weight together with the counts behind it
func (s *WeightService) Breakdown(ctx context.Context, userID, placeID string) *WeightBreakdown {
	ctx, span := observability.StartSpan(ctx, "WeightService.Breakdown")
	defer span.End()

	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.interactions.ListByUserAndPlace(ctx, userID, placeID)
	})
	if err != nil {
		observability.RecordError(span, err)
		s.fallback(ctx, err, placeID)
		return &WeightBreakdown{
			UserID:   userID,
			PlaceID:  placeID,
			Weight:   BaseWeight,
			Bonuses:  []string{},
			Degraded: true,
		}
	}

	b := tally(result.([]*entities.Interaction))
	b.UserID = userID
	b.PlaceID = placeID
	return b
}

// Weights returns the weights of several users at one place from a single
// ledger read. Users with no interactions get BaseWeight.
func (s *WeightService) Weights(ctx context.Context, placeID string, userIDs []string) map[string]float64 {
	weights := make(map[string]float64, len(userIDs))
	for _, id := range userIDs {
		weights[id] = BaseWeight
	}
	if len(userIDs) == 0 {
		return weights
	}

	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.interactions.ListByPlaceForUsers(ctx, placeID, userIDs)
	})
	if err != nil {
		s.fallback(ctx, err, placeID)
		return weights
	}

	byUser := make(map[string][]*entities.Interaction, len(userIDs))
	for _, interaction := range result.([]*entities.Interaction) {
		byUser[interaction.UserID] = append(byUser[interaction.UserID], interaction)
	}
	for userID, interactions := range byUser {
		if _, ok := weights[userID]; ok {
			weights[userID] = ComputeWeight(interactions)
		}
	}
	return weights
}

func (s *WeightService) fallback(ctx context.Context, err error, placeID string) {
	observability.LoggerFromContext(ctx).Warn().
		Err(err).
		Str("place_id", placeID).
		Str("breaker_state", s.breaker.State().String()).
		Msg("interaction ledger unavailable, using floor weight")
	observability.RecordWeightFallback(ctx, s.metrics)
}
