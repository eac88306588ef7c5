package recommender

import (
	"fmt"

	"wardrobeapi/idgen"

	"github.com/rs/zerolog"
)

// DefaultOccasion is used when a request names no occasion.
const DefaultOccasion = "daily"

// Engine runs the recommendation pipeline. It holds no mutable state and is
// safe for concurrent use.
type Engine struct {
	logger zerolog.Logger
	nextID func() string
}

type Option func(*Engine)

func WithIDGenerator(next func() string) Option {
	return func(e *Engine) {
		e.nextID = next
	}
}

//nolint:gocritic // zerolog.Logger is passed by value
func NewEngine(logger zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		logger: logger.With().Str("component", "recommender").Logger(),
		nextID: idgen.OutfitID,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recommend turns an inventory snapshot plus weather, occasion and style level
// into at most MaxResults ranked outfits. Every "nothing to show" outcome is
// reported through Result.Reason; the only error is an out-of-range style level.
func (e *Engine) Recommend(inventory []ClothingItem, w Weather, occasion string, level int) (Result, error) {
	if level < MinStyleLevel || level > MaxStyleLevel {
		return Result{}, fmt.Errorf("%w: got %d", ErrInvalidStyleLevel, level)
	}
	if occasion == "" {
		occasion = DefaultOccasion
	}
	season := SeasonFor(w.TemperatureC)
	result := Result{Outfits: []RankedOutfit{}, Season: season}

	if len(inventory) < 2 {
		result.Reason = ReasonInsufficientInventory
		result.Message = "Not enough clothes in the wardrobe to build an outfit"
		return result, nil
	}

	prepared := make([]*PreparedItem, 0, len(inventory))
	for _, item := range inventory {
		p := Prepare(item)
		if p.Malformed {
			result.MalformedAttributes++
			e.logger.Warn().Uint("clothing_id", item.ID).Msg("unparsable tag field, recovered by splitting")
		}
		prepared = append(prepared, p)
	}

	eligible := FilterEligible(prepared, season, occasion, level)
	e.logger.Debug().Int("inventory", len(prepared)).Int("eligible", len(eligible)).Str("season", string(season)).Msg("filtered inventory")
	if len(eligible) < 2 {
		result.Reason = ReasonNoEligibleItems
		result.Message = fmt.Sprintf("No clothes suit %s and the %s occasion", season, CanonicalTag(occasion))
		return result, nil
	}

	candidates := GenerateCombinations(eligible, w.TemperatureC)
	result.CandidateCount = len(candidates)
	if len(candidates) == 0 {
		result.Reason = ReasonNoViableCombinations
		result.Message = "Could not form an outfit from the eligible clothes"
		return result, nil
	}

	scored := make([]ScoredOutfit, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, ScoredOutfit{Outfit: c, Score: ScoreOutfit(c, w, occasion, level)})
	}

	ranked := Rank(scored)
	if len(ranked) == 0 {
		result.Reason = ReasonBelowThreshold
		result.Message = fmt.Sprintf("No outfit reached the minimum score of %.0f", AdmissionThreshold)
		return result, nil
	}

	for _, r := range ranked {
		items := make([]ClothingItem, 0, len(r.Outfit.Items))
		for _, it := range r.Outfit.Items {
			items = append(items, it.Item)
		}
		result.Outfits = append(result.Outfits, RankedOutfit{
			ID:          e.nextID(),
			Items:       items,
			Score:       r.Score,
			Explanation: Explain(r.Outfit, w, r.Score, level),
		})
	}
	result.Reason = ReasonOK
	e.logger.Info().Int("candidates", len(candidates)).Int("surfaced", len(result.Outfits)).Msg("recommendation ready")
	return result, nil
}
