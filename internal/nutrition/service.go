package nutrition

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"foodsync/internal/cache"
	"foodsync/internal/core"
	"foodsync/internal/llm"
	"foodsync/internal/metrics"

	"go.uber.org/zap"
)

// ErrMealsUnavailable wraps any failure of the meal generator.
var ErrMealsUnavailable = errors.New("meal suggestions unavailable")

// Cache is the subset of the Redis client used to memoize analyses.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) error
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
}

// ProfileView is what GET /nutrition/profile answers.
type ProfileView struct {
	HasProfile bool              `json:"hasProfile"`
	Profile    *BiometricProfile `json:"profile"`
}

// Analysis is a set of targets plus generated meal ideas.
type Analysis struct {
	Targets
	LunchSuggestions  []llm.MealSuggestion `json:"lunchSuggestions"`
	DinnerSuggestions []llm.MealSuggestion `json:"dinnerSuggestions"`
}

type AnalyzeResult struct {
	Analysis        Analysis `json:"analysis"`
	FridgeItemCount int      `json:"fridgeItemCount"`
	Cached          bool     `json:"cached"`
}

type Service struct {
	repo      Repository
	members   core.MembershipChecker
	inventory core.InventoryReader
	meals     llm.Client
	cache     Cache
	cacheTTL  time.Duration
	log       *zap.Logger
}

// NewService wires the nutrition use cases. cache may be nil, in which case
// every analysis calls the model.
func NewService(
	repo Repository,
	members core.MembershipChecker,
	inventory core.InventoryReader,
	meals llm.Client,
	cache Cache,
	cacheTTL time.Duration,
	log *zap.Logger,
) *Service {
	return &Service{
		repo:      repo,
		members:   members,
		inventory: inventory,
		meals:     meals,
		cache:     cache,
		cacheTTL:  cacheTTL,
		log:       log,
	}
}

func (s *Service) GetProfile(ctx context.Context, userID int64) (ProfileView, error) {
	p, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return ProfileView{}, err
	}
	b, err := p.Biometrics()
	if err != nil {
		return ProfileView{HasProfile: false}, nil
	}
	return ProfileView{HasProfile: true, Profile: &b}, nil
}

// UpdateProfile validates and stores a full profile and returns the targets
// it implies.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, p BiometricProfile) (Targets, error) {
	targets, err := Calculate(p)
	if err != nil {
		return Targets{}, err
	}
	if err := s.repo.SaveProfile(ctx, userID, p); err != nil {
		return Targets{}, err
	}
	s.log.Info("nutrition profile updated", zap.Int64("userID", userID), zap.String("goal", string(p.Goal)))
	return targets, nil
}

func (s *Service) profile(ctx context.Context, userID int64) (BiometricProfile, error) {
	p, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return BiometricProfile{}, err
	}
	return p.Biometrics()
}

func (s *Service) Targets(ctx context.Context, userID int64) (Targets, error) {
	b, err := s.profile(ctx, userID)
	if err != nil {
		return Targets{}, err
	}
	return Calculate(b)
}

// Analyze computes the caller's targets and asks the model for lunches and
// dinners that use what the family has in the fridge.
func (s *Service) Analyze(ctx context.Context, userID, familyID int64) (*AnalyzeResult, error) {
	b, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := core.RequireMember(ctx, s.members, familyID, userID); err != nil {
		return nil, fmt.Errorf("not a member of this family: %w", err)
	}

	targets, err := Calculate(b)
	if err != nil {
		return nil, err
	}

	ingredients, err := s.inventory.Ingredients(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("load fridge: %w", err)
	}
	for i := range ingredients {
		if ingredients[i].Name == "" {
			ingredients[i].Name = "Inconnu"
		}
	}

	key := analysisKey(userID, familyID, b, ingredients)
	if s.cache != nil {
		var cached Analysis
		err := s.cache.GetJSON(ctx, key, &cached)
		switch {
		case err == nil:
			metrics.AnalysisCacheHits.WithLabelValues("hit").Inc()
			return &AnalyzeResult{Analysis: cached, FridgeItemCount: len(ingredients), Cached: true}, nil
		case errors.Is(err, cache.ErrMiss):
			metrics.AnalysisCacheHits.WithLabelValues("miss").Inc()
		default:
			s.log.Warn("analysis cache read failed", zap.Error(err))
		}
	}

	plan, err := s.meals.GenerateMeals(ctx, llm.MealRequest{
		Weight:        b.Weight,
		Height:        b.Height,
		Age:           b.Age,
		Gender:        string(b.Gender),
		ActivityLevel: string(b.ActivityLevel),
		Goal:          string(b.Goal),
		Calories:      targets.DailyCalorieTarget,
		Proteins:      targets.DailyProteinTarget,
		Carbs:         targets.DailyCarbsTarget,
		Fats:          targets.DailyFatsTarget,
		Ingredients:   ingredients,
	})
	if err != nil {
		s.log.Error("meal generation failed",
			zap.Int64("userID", userID),
			zap.Int64("familyID", familyID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrMealsUnavailable, err)
	}

	analysis := Analysis{
		Targets:           targets,
		LunchSuggestions:  nonNilMeals(plan.Lunch),
		DinnerSuggestions: nonNilMeals(plan.Dinner),
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if err := s.cache.SetJSON(ctx, key, analysis, s.cacheTTL); err != nil {
			s.log.Warn("analysis cache write failed", zap.Error(err))
		}
	}

	return &AnalyzeResult{Analysis: analysis, FridgeItemCount: len(ingredients)}, nil
}

// analysisKey changes whenever the profile or the fridge content changes.
func analysisKey(userID, familyID int64, b BiometricProfile, ingredients []core.FridgeIngredient) string {
	h := sha256.New()
	_ = json.NewEncoder(h).Encode(b)
	_ = json.NewEncoder(h).Encode(ingredients)
	return fmt.Sprintf("nutrition:analysis:%d:%d:%s", userID, familyID, hex.EncodeToString(h.Sum(nil))[:16])
}

func nonNilMeals(m []llm.MealSuggestion) []llm.MealSuggestion {
	if m == nil {
		return []llm.MealSuggestion{}
	}
	return m
}
