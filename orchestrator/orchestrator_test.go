package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/planmesh/core"
	"github.com/hupe1980/planmesh/internal/testutil"
	"github.com/hupe1980/planmesh/memory"
	"github.com/hupe1980/planmesh/preference"
	"github.com/hupe1980/planmesh/router"
	"github.com/hupe1980/planmesh/session"
)

var fixedNow = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

type fixture struct {
	agents   *testutil.MockAgents
	sessions *session.InMemoryStore
	prefs    *preference.Store
	conv     *memory.InMemoryStore
	orch     *Orchestrator
}

func newFixture() *fixture {
	f := &fixture{
		agents:   testutil.NewMockAgents(),
		sessions: session.NewInMemoryStore(),
		prefs:    preference.NewInMemoryStore(),
		conv:     memory.NewInMemoryStore(),
	}
	r := router.New(f.agents.Agents(), func(o *router.Options) { o.Now = func() time.Time { return fixedNow } })
	f.orch = New(r, func(o *Options) {
		o.Sessions = f.sessions
		o.Preferences = f.prefs
		o.Conversations = f.conv
	})
	return f
}

func TestProcessMessage_MealPlanNewSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.prefs.SavePreference(ctx, "u1", "diet", "vegetarian"))

	plan := testutil.MealPlan("u1", 5, 3)
	f.agents.Meal.On("GenerateMealPlan", mock.Anything, "u1", 5, map[string]any{"diet": "vegetarian"}).Return(plan, nil)

	resp, err := f.orch.ProcessMessage(ctx, "u1", "Create a 5-day vegetarian meal plan", "")
	require.NoError(t, err)
	assert.Equal(t, core.IntentMealPlanning, resp.Intent)
	assert.Equal(t, "✓ Created a 5-day meal plan with 5 meals using 3 recipes.", resp.Response)
	assert.Same(t, plan, resp.Data)
	assert.False(t, resp.RequiresClarification)
	require.NotEmpty(t, resp.SessionID)

	sess, err := f.sessions.Get(ctx, resp.SessionID)
	require.NoError(t, err)
	require.Len(t, sess.Messages, 2)
	assert.Equal(t, core.RoleUser, sess.Messages[0].Role)
	assert.Equal(t, "Create a 5-day vegetarian meal plan", sess.Messages[0].Content)
	assert.Equal(t, core.RoleAssistant, sess.Messages[1].Role)
	assert.Equal(t, resp.Response, sess.Messages[1].Content)
	assert.Equal(t, map[string]any{"diet": "vegetarian"}, sess.Metadata[MetadataPreferences])

	conv, err := f.conv.Get(ctx, resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, plan.PlanID, conv.LastMealPlan.PlanID)
	f.agents.AssertExpectations(t)
}

func TestProcessMessage_PreferencesSnapshotOnlyAtCreation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.prefs.SavePreference(ctx, "u1", "diet", "vegan"))

	f.agents.Meal.On("GenerateMealPlan", mock.Anything, "u1", 7, map[string]any{"diet": "vegan"}).Return(testutil.MealPlan("u1", 7, 7), nil).Once()
	first, err := f.orch.ProcessMessage(ctx, "u1", "plan my meals", "")
	require.NoError(t, err)

	require.NoError(t, f.prefs.SavePreference(ctx, "u1", "diet", "keto"))
	f.agents.Meal.On("GenerateMealPlan", mock.Anything, "u1", 7, map[string]any{"diet": "keto"}).Return(testutil.MealPlan("u1", 7, 7), nil).Once()
	_, err = f.orch.ProcessMessage(ctx, "u1", "plan my meals", first.SessionID)
	require.NoError(t, err)

	sess, _ := f.sessions.Get(ctx, first.SessionID)
	assert.Equal(t, map[string]any{"diet": "vegan"}, sess.Metadata[MetadataPreferences])
	assert.Len(t, sess.Messages, 4)
	f.agents.AssertExpectations(t)
}

func TestProcessMessage_AmbiguousDoesNotUpdateSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.agents.Meal.On("GenerateMealPlan", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(testutil.MealPlan("u1", 7, 7), nil)

	first, err := f.orch.ProcessMessage(ctx, "u1", "plan my meals", "")
	require.NoError(t, err)

	resp, err := f.orch.ProcessMessage(ctx, "u1", "hello there", first.SessionID)
	require.NoError(t, err)
	assert.Equal(t, core.IntentAmbiguous, resp.Intent)
	assert.Equal(t, ClarificationText, resp.Response)
	assert.True(t, resp.RequiresClarification)
	assert.Nil(t, resp.Data)
	assert.Equal(t, first.SessionID, resp.SessionID)

	sess, _ := f.sessions.Get(ctx, first.SessionID)
	assert.Len(t, sess.Messages, 2)
}

func TestProcessMessage_UnknownSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.orch.ProcessMessage(ctx, "u1", "plan my meals", "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrSessionNotFound))
	var nf *core.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "missing", nf.ID)

	other, err := f.sessions.Create(ctx, "u2", nil)
	require.NoError(t, err)
	_, err = f.orch.ProcessMessage(ctx, "u1", "plan my meals", other.ID)
	assert.True(t, errors.Is(err, core.ErrSessionNotFound))
}

func TestProcessMessage_RequiresUser(t *testing.T) {
	_, err := newFixture().orch.ProcessMessage(context.Background(), "", "plan my meals", "")
	assert.True(t, core.IsValidation(err))
}

func TestProcessMessage_ShoppingUsesPreviousMealPlan(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	plan := testutil.MealPlan("u1", 3, 3)
	f.agents.Meal.On("GenerateMealPlan", mock.Anything, "u1", 3, mock.Anything).Return(plan, nil)
	list := testutil.ShoppingList("u1", 42.5, "produce", "dairy")
	f.agents.Shopping.On("GenerateShoppingList", mock.Anything, "u1", mock.MatchedBy(func(p *core.MealPlan) bool {
		return p.PlanID == plan.PlanID
	}), mock.Anything).Return(list, nil)

	first, err := f.orch.ProcessMessage(ctx, "u1", "meal plan for 3 days", "")
	require.NoError(t, err)

	resp, err := f.orch.ProcessMessage(ctx, "u1", "now a grocery list please", first.SessionID)
	require.NoError(t, err)
	assert.Equal(t, core.IntentShopping, resp.Intent)
	assert.Equal(t, "✓ Generated shopping list with 2 items across 2 categories. Estimated total: $42.50", resp.Response)
	f.agents.AssertExpectations(t)
}

func TestProcessMessage_ShoppingWithoutMealPlan(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp, err := f.orch.ProcessMessage(ctx, "u1", "buy groceries", "")
	require.NoError(t, err)
	assert.Equal(t, core.IntentShopping, resp.Intent)
	assert.Contains(t, resp.Response, "meal plan first")
	assert.Nil(t, resp.Data)

	sess, _ := f.sessions.Get(ctx, resp.SessionID)
	assert.Len(t, sess.Messages, 2, "failed routes are still recorded")
}

func TestProcessMessage_TravelSummary(t *testing.T) {
	f := newFixture()
	start := time.Date(2026, 4, 9, 0, 0, 0, 0, time.UTC)
	f.agents.Travel.On("PlanTrip", mock.Anything, "u1", mock.MatchedBy(func(req core.TripRequest) bool {
		return req.Destination == "Tokyo" && req.StartDate.Equal(start) && req.Budget == 2000
	}), mock.Anything).Return(testutil.TripPlan("u1", "Tokyo", start, start.AddDate(0, 0, 7), "Hotel Sakura", 1800), nil)

	resp, err := f.orch.ProcessMessage(context.Background(), "u1", "Plan a trip to Tokyo for 5 days", "")
	require.NoError(t, err)
	assert.Equal(t, core.IntentTravel, resp.Intent)
	assert.Equal(t, "✓ Planned 8-day trip to Tokyo. Accommodation: Hotel Sakura. Estimated cost: $1800.00", resp.Response)
	f.agents.AssertExpectations(t)
}

func TestProcessMessage_MultiDomainRemembersMealPlanForNextTurn(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	plan := testutil.MealPlan("u1", 3, 2)
	f.agents.Meal.On("GenerateMealPlan", mock.Anything, "u1", 3, mock.Anything).Return(plan, nil).Once()

	resp, err := f.orch.ProcessMessage(ctx, "u1", "Plan 3 days of meals and shop for groceries", "")
	require.NoError(t, err)
	assert.Equal(t, core.IntentMultiDomain, resp.Intent)
	assert.Equal(t, "✓ Completed multiple tasks:\n  - Generated 3-day meal plan", resp.Response)
	subs, ok := resp.Data.([]core.RouteResult)
	require.True(t, ok)
	require.Len(t, subs, 2)
	assert.False(t, subs[1].Success, "no chaining within a turn")

	f.agents.Shopping.On("GenerateShoppingList", mock.Anything, "u1", mock.Anything, mock.Anything).
		Return(testutil.ShoppingList("u1", 10, "produce"), nil).Once()
	next, err := f.orch.ProcessMessage(ctx, "u1", "shopping list now", resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, core.IntentShopping, next.Intent)
	assert.Contains(t, next.Response, "✓ Generated shopping list with 1 items")
	f.agents.AssertExpectations(t)
}

func TestProcessMessage_AgentFailureIsSummarized(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.agents.Meal.On("GenerateMealPlan", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("recipe source unavailable"))

	resp, err := f.orch.ProcessMessage(ctx, "u1", "meal plan", "")
	require.NoError(t, err)
	assert.Equal(t, "Error processing request: meal agent: recipe source unavailable", resp.Response)

	conv, _ := f.conv.Get(ctx, resp.SessionID)
	assert.False(t, conv.HasMealPlan())
}

func TestProcessMessage_SerialisesSameSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.agents.Meal.On("GenerateMealPlan", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(testutil.MealPlan("u1", 7, 7), nil)

	first, err := f.orch.ProcessMessage(ctx, "u1", "meal plan 0", "")
	require.NoError(t, err)

	const n = 20
	var wg sync.WaitGroup
	for i := 1; i <= n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := f.orch.ProcessMessage(ctx, "u1", fmt.Sprintf("meal plan %d", i), first.SessionID); err != nil {
				t.Errorf("process: %v", err)
			}
		}(i)
	}
	wg.Wait()

	sess, _ := f.sessions.Get(ctx, first.SessionID)
	require.Len(t, sess.Messages, 2*(n+1))
	for i := 0; i < len(sess.Messages); i += 2 {
		assert.Equal(t, core.RoleUser, sess.Messages[i].Role)
		assert.Equal(t, core.RoleAssistant, sess.Messages[i+1].Role)
	}
	assert.Equal(t, 0, f.orch.locks.size())
}

func TestOrchestrator_SessionPassThroughs(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.agents.Meal.On("GenerateMealPlan", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(testutil.MealPlan("u1", 7, 7), nil)

	resp, err := f.orch.ProcessMessage(ctx, "u1", "meal plan", "")
	require.NoError(t, err)

	history, err := f.orch.History(ctx, resp.SessionID)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	list, err := f.orch.ListSessions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, resp.SessionID, list[0].ID)

	require.NoError(t, f.orch.CloseSession(ctx, resp.SessionID))
	_, err = f.orch.History(ctx, resp.SessionID)
	assert.True(t, errors.Is(err, core.ErrSessionNotFound))
	_, err = f.orch.Session(ctx, resp.SessionID)
	assert.True(t, errors.Is(err, core.ErrSessionNotFound))

	conv, _ := f.conv.Get(ctx, resp.SessionID)
	assert.False(t, conv.HasMealPlan())
}

func TestKeyLock_ReleasesEntries(t *testing.T) {
	k := newKeyLock()
	unlockA := k.Lock("a")
	unlockB := k.Lock("b")
	assert.Equal(t, 2, k.size())
	unlockA()
	unlockB()
	assert.Equal(t, 0, k.size())
}

type failingConversations struct {
	*memory.InMemoryStore
}

func (failingConversations) RememberMealPlan(context.Context, string, *core.MealPlan) error {
	return errors.New("disk full")
}

func TestProcessMessage_RememberFailureLeavesSessionUntouched(t *testing.T) {
	f := newFixture()
	r := router.New(f.agents.Agents(), func(o *router.Options) { o.Now = func() time.Time { return fixedNow } })
	orch := New(r, func(o *Options) {
		o.Sessions = f.sessions
		o.Preferences = f.prefs
		o.Conversations = failingConversations{memory.NewInMemoryStore()}
	})
	ctx := context.Background()
	sess, err := f.sessions.Create(ctx, "u1", nil)
	require.NoError(t, err)

	f.agents.Meal.On("GenerateMealPlan", mock.Anything, "u1", 3, mock.Anything).Return(testutil.MealPlan("u1", 3, 2), nil)

	_, err = orch.ProcessMessage(ctx, "u1", "meal plan for 3 days", sess.ID)
	require.ErrorContains(t, err, "remember meal plan")

	got, err := f.sessions.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Messages)
}
