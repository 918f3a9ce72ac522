package nutrition

import (
	"context"
	"errors"
	"testing"
	"time"

	"foodsync/internal/cache"
	"foodsync/internal/config"
	"foodsync/internal/core"
	"foodsync/internal/llm"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticMembers map[[2]int64]bool

func (m staticMembers) IsMember(_ context.Context, familyID, userID int64) (bool, error) {
	return m[[2]int64{familyID, userID}], nil
}

type staticInventory map[int64][]core.FridgeIngredient

func (s staticInventory) Ingredients(_ context.Context, familyID int64) ([]core.FridgeIngredient, error) {
	// copy so callers cannot mutate the fixture
	return append([]core.FridgeIngredient(nil), s[familyID]...), nil
}

// fakeMeals records requests and answers with a fixed plan.
type fakeMeals struct {
	calls []llm.MealRequest
	err   error
}

func (f *fakeMeals) GenerateMeals(_ context.Context, req llm.MealRequest) (llm.MealPlan, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return llm.MealPlan{}, f.err
	}
	return llm.MealPlan{
		Lunch:  []llm.MealSuggestion{{Name: "Omelette", Type: "lunch", Calories: 450}},
		Dinner: []llm.MealSuggestion{{Name: "Soupe", Type: "dinner", Calories: 380}},
	}, nil
}

func (f *fakeMeals) ParseReceipt(context.Context, []byte, string, time.Time) ([]llm.ReceiptItem, error) {
	return nil, errors.New("not used")
}

func (f *fakeMeals) ParseReceiptText(context.Context, string, time.Time) ([]llm.ReceiptItem, error) {
	return nil, errors.New("not used")
}

var refProfile = reference()

type fixture struct {
	svc   *Service
	repo  *InMemoryRepository
	meals *fakeMeals
	redis *miniredis.Miniredis
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := cache.NewRedis(config.RedisConfig{Address: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := NewInMemoryRepository()
	meals := &fakeMeals{}
	inv := staticInventory{1: {{Name: "Oeufs", Quantity: 6}, {Name: "", Quantity: 1}}}
	svc := NewService(repo, staticMembers{{1, 10}: true}, inv, meals, rdb, time.Minute, zap.NewNop())
	return fixture{svc: svc, repo: repo, meals: meals, redis: mr}
}

func TestGetProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.svc.GetProfile(ctx, 10)
	require.NoError(t, err)
	assert.False(t, view.HasProfile)
	assert.Nil(t, view.Profile)

	w := 70.0
	f.repo.Put(10, Profile{Weight: &w})
	view, err = f.svc.GetProfile(ctx, 10)
	require.NoError(t, err)
	assert.False(t, view.HasProfile)

	_, err = f.svc.UpdateProfile(ctx, 10, refProfile)
	require.NoError(t, err)
	view, err = f.svc.GetProfile(ctx, 10)
	require.NoError(t, err)
	assert.True(t, view.HasProfile)
	require.NotNil(t, view.Profile)
	assert.Equal(t, refProfile, *view.Profile)
}

func TestUpdateProfile_RejectsOutOfDomain(t *testing.T) {
	f := newFixture(t)
	bad := refProfile
	bad.Weight = 301

	_, err := f.svc.UpdateProfile(context.Background(), 10, bad)
	assert.ErrorIs(t, err, ErrInvalidDomain)

	view, err := f.svc.GetProfile(context.Background(), 10)
	require.NoError(t, err)
	assert.False(t, view.HasProfile)
}

func TestTargets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Targets(ctx, 10)
	assert.ErrorIs(t, err, ErrIncompleteProfile)

	f.repo.Put(10, FromBiometrics(refProfile))
	targets, err := f.svc.Targets(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1979, targets.DailyCalorieTarget)
	assert.Equal(t, 124, targets.DailyProteinTarget)
}

func TestAnalyze(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.repo.Put(10, FromBiometrics(refProfile))

	res, err := f.svc.Analyze(ctx, 10, 1)
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, 2, res.FridgeItemCount)
	assert.Equal(t, 1979, res.Analysis.DailyCalorieTarget)
	require.Len(t, res.Analysis.LunchSuggestions, 1)
	assert.Equal(t, "Omelette", res.Analysis.LunchSuggestions[0].Name)

	require.Len(t, f.meals.calls, 1)
	req := f.meals.calls[0]
	assert.Equal(t, 1979, req.Calories)
	assert.Equal(t, "male", req.Gender)
	assert.Equal(t, "Inconnu", req.Ingredients[1].Name)

	// second call is served from Redis
	res, err = f.svc.Analyze(ctx, 10, 1)
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, 1979, res.Analysis.DailyCalorieTarget)
	assert.Len(t, f.meals.calls, 1)

	// a profile change invalidates the cached entry
	changed := refProfile
	changed.Goal = GoalLoseWeight
	_, err = f.svc.UpdateProfile(ctx, 10, changed)
	require.NoError(t, err)
	res, err = f.svc.Analyze(ctx, 10, 1)
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, 1583, res.Analysis.DailyCalorieTarget)
	assert.Len(t, f.meals.calls, 2)
}

func TestAnalyze_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Analyze(ctx, 10, 1)
	var incomplete *IncompleteProfileError
	require.ErrorAs(t, err, &incomplete)
	assert.Len(t, incomplete.Missing, 6)

	f.repo.Put(10, FromBiometrics(refProfile))
	f.repo.Put(20, FromBiometrics(refProfile))
	_, err = f.svc.Analyze(ctx, 20, 1)
	assert.ErrorIs(t, err, core.ErrForbidden)

	f.meals.err = llm.ErrProvider
	_, err = f.svc.Analyze(ctx, 10, 1)
	assert.ErrorIs(t, err, ErrMealsUnavailable)
}

func TestAnalyze_RedisDownStillAnswers(t *testing.T) {
	f := newFixture(t)
	f.repo.Put(10, FromBiometrics(refProfile))
	f.redis.Close()

	res, err := f.svc.Analyze(context.Background(), 10, 1)
	require.NoError(t, err)
	assert.False(t, res.Cached)
}
