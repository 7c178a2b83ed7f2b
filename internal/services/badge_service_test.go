package services

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"visualverse/internal/cache"
	"visualverse/internal/config"
	"visualverse/internal/events"
	"visualverse/internal/models"
	"visualverse/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ===============================
// IN-MEMORY FAKES
// ===============================

type fakeBadgeRepo struct {
	badges map[int64]*models.Badge
	nextID int64
}

func newFakeBadgeRepo(badges ...*models.Badge) *fakeBadgeRepo {
	repo := &fakeBadgeRepo{badges: make(map[int64]*models.Badge), nextID: 1}
	for _, b := range badges {
		repo.Create(context.Background(), b)
	}
	return repo
}

func (r *fakeBadgeRepo) Create(_ context.Context, badge *models.Badge) error {
	badge.ID = r.nextID
	r.nextID++
	r.badges[badge.ID] = badge
	return nil
}

func (r *fakeBadgeRepo) GetByID(_ context.Context, id int64) (*models.Badge, error) {
	return r.badges[id], nil
}

func (r *fakeBadgeRepo) GetByName(_ context.Context, name string) (*models.Badge, error) {
	for _, b := range r.badges {
		if b.Name == name {
			return b, nil
		}
	}
	return nil, nil
}

func (r *fakeBadgeRepo) GetActiveByCriteriaType(_ context.Context, criteriaType models.CriteriaType) ([]*models.Badge, error) {
	var out []*models.Badge
	for _, b := range r.badges {
		if b.IsActive && b.CriteriaType == criteriaType {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Threshold < out[j].Threshold })
	return out, nil
}

func (r *fakeBadgeRepo) ListActive(_ context.Context, filter repositories.BadgeFilter) ([]*models.Badge, error) {
	var out []*models.Badge
	for _, b := range r.badges {
		if !b.IsActive {
			continue
		}
		if filter.Category != "" && b.Category != filter.Category {
			continue
		}
		if filter.Rarity != "" && b.Rarity != filter.Rarity {
			continue
		}
		if filter.CriteriaType != "" && b.CriteriaType != filter.CriteriaType {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeBadgeRepo) CountActive(_ context.Context) (int, error) {
	count := 0
	for _, b := range r.badges {
		if b.IsActive {
			count++
		}
	}
	return count, nil
}

func (r *fakeBadgeRepo) SetActive(_ context.Context, id int64, active bool) error {
	if b, ok := r.badges[id]; ok {
		b.IsActive = active
	}
	return nil
}

type ledgerKey struct{ userID, badgeID int64 }

// fakeLedger mirrors the real upsert semantics: progress fields are
// overwritten on every call, unlock state is never touched by the
// upsert, and the returned row carries the pre-call unlock state.
type fakeLedger struct {
	rows         map[ledgerKey]*models.UserBadge
	nextID       int64
	failUpsertOn map[int64]error // badgeID -> error
	failUnlockOn map[int64]error
	raceUnlockOn map[int64]bool // simulate a concurrent winner
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		rows:         make(map[ledgerKey]*models.UserBadge),
		nextID:       1,
		failUpsertOn: make(map[int64]error),
		failUnlockOn: make(map[int64]error),
		raceUnlockOn: make(map[int64]bool),
	}
}

func (l *fakeLedger) UpsertProgress(_ context.Context, userID, badgeID int64, current, target int) (*models.UserBadge, error) {
	if err := l.failUpsertOn[badgeID]; err != nil {
		return nil, err
	}
	key := ledgerKey{userID, badgeID}
	row, ok := l.rows[key]
	if !ok {
		row = &models.UserBadge{
			ID:        l.nextID,
			UserID:    userID,
			BadgeID:   badgeID,
			CreatedAt: time.Now(),
		}
		l.nextID++
		l.rows[key] = row
	}
	row.Progress = models.ClampProgress(current, target)
	row.LastUpdated = time.Now()
	copied := *row

	// Another evaluation unlocks the row between this upsert and the
	// caller's Unlock attempt
	if l.raceUnlockOn[badgeID] && !row.IsUnlocked {
		now := time.Now()
		row.IsUnlocked = true
		row.UnlockedAt = &now
		row.Progress = models.ClampProgress(row.Progress.Target, row.Progress.Target)
	}
	return &copied, nil
}

func (l *fakeLedger) Unlock(_ context.Context, userID, badgeID int64) (*models.UserBadge, bool, error) {
	if err := l.failUnlockOn[badgeID]; err != nil {
		return nil, false, err
	}
	key := ledgerKey{userID, badgeID}
	row, ok := l.rows[key]
	if !ok {
		return nil, false, fmt.Errorf("no progress row for user %d badge %d", userID, badgeID)
	}
	won := !row.IsUnlocked
	if won {
		now := time.Now()
		row.IsUnlocked = true
		row.UnlockedAt = &now
		row.Progress = models.ClampProgress(row.Progress.Target, row.Progress.Target)
		row.LastUpdated = now
	}
	copied := *row
	return &copied, won, nil
}

func (l *fakeLedger) GetByUserAndBadge(_ context.Context, userID, badgeID int64) (*models.UserBadge, error) {
	if row, ok := l.rows[ledgerKey{userID, badgeID}]; ok {
		copied := *row
		return &copied, nil
	}
	return nil, nil
}

func (l *fakeLedger) GetUserProgress(_ context.Context, userID int64) ([]*models.UserBadge, error) {
	var out []*models.UserBadge
	for key, row := range l.rows {
		if key.userID == userID {
			copied := *row
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BadgeID < out[j].BadgeID })
	return out, nil
}

func (l *fakeLedger) GetUnlocked(_ context.Context, userID int64) ([]*models.UserBadge, error) {
	rows, _ := l.GetUserProgress(context.Background(), userID)
	var out []*models.UserBadge
	for _, row := range rows {
		if row.IsUnlocked {
			out = append(out, row)
		}
	}
	return out, nil
}

func (l *fakeLedger) GetProgressSummary(_ context.Context, userID int64) (*models.BadgeProgressSummary, error) {
	rows, _ := l.GetUserProgress(context.Background(), userID)
	summary := &models.BadgeProgressSummary{Total: len(rows)}
	for _, row := range rows {
		switch {
		case row.IsUnlocked:
			summary.Unlocked++
		case row.Progress.Current > 0:
			summary.InProgress++
		default:
			summary.NotStarted++
		}
	}
	return summary, nil
}

type fakeActivityRepo struct {
	counters models.ActivityCounters
	err      error
	calls    int
}

func (r *fakeActivityRepo) GetCounters(_ context.Context, _ int64) (*models.ActivityCounters, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	copied := r.counters
	return &copied, nil
}

type fakeUserRepo struct {
	users        map[int64]*models.User
	refreshCalls int
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[int64]*models.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	user.ID = int64(len(r.users) + 1)
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) UpdateStreak(_ context.Context, userID int64, streakDays int, lastActive time.Time) error {
	if u, ok := r.users[userID]; ok {
		u.StreakDays = streakDays
		u.LastActiveDate = &lastActive
	}
	return nil
}

func (r *fakeUserRepo) AddPoints(_ context.Context, userID int64, points int) error {
	if u, ok := r.users[userID]; ok {
		u.TotalPoints += points
	}
	return nil
}

func (r *fakeUserRepo) RefreshBadgeStats(_ context.Context, userID int64) (*models.BadgeStats, error) {
	r.refreshCalls++
	if u, ok := r.users[userID]; ok {
		return &u.BadgeStats, nil
	}
	return &models.BadgeStats{}, nil
}

func (r *fakeUserRepo) GetBadgeStats(_ context.Context, userID int64) (*models.BadgeStats, error) {
	if u, ok := r.users[userID]; ok {
		return &u.BadgeStats, nil
	}
	return nil, fmt.Errorf("user %d not found", userID)
}

// ===============================
// FIXTURE
// ===============================

type badgeServiceFixture struct {
	svc      BadgeService
	badges   *fakeBadgeRepo
	ledger   *fakeLedger
	activity *fakeActivityRepo
	users    *fakeUserRepo
	bus      events.EventBus
}

func newBadgeServiceFixture(t *testing.T, badges ...*models.Badge) *badgeServiceFixture {
	t.Helper()

	badgeRepo := newFakeBadgeRepo(badges...)
	ledger := newFakeLedger()
	activity := &fakeActivityRepo{}
	users := newFakeUserRepo(&models.User{ID: 1, Username: "ada"})

	cacheInstance, err := cache.New(&config.CacheConfig{Provider: "memory", DefaultTTL: time.Minute}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { cacheInstance.Close() })
	bus := events.NewMemoryBus(zap.NewNop())

	return &badgeServiceFixture{
		svc:      NewBadgeService(badgeRepo, ledger, activity, users, cacheInstance, bus, zap.NewNop()),
		badges:   badgeRepo,
		ledger:   ledger,
		activity: activity,
		users:    users,
		bus:      bus,
	}
}

func doodleBadge(name string, threshold int) *models.Badge {
	return &models.Badge{
		Name:         name,
		Description:  name,
		Icon:         "palette",
		Category:     models.BadgeCategoryAchievement,
		CriteriaType: models.CriteriaDoodlesCompleted,
		Threshold:    threshold,
		Timeframe:    models.TimeframeLifetime,
		Rarity:       models.RarityCommon,
		Points:       10,
		IsActive:     true,
	}
}

// ===============================
// EVALUATION TESTS
// ===============================

func TestCheckCriteriaProgressWithoutUnlock(t *testing.T) {
	f := newBadgeServiceFixture(t, doodleBadge("Doodle Enthusiast", 5))
	f.activity.counters.DoodlesCompleted = 3

	unlocked, err := f.svc.CheckCriteria(context.Background(), 1, models.CriteriaDoodlesCompleted)
	require.NoError(t, err)
	assert.Empty(t, unlocked)

	row, err := f.ledger.GetByUserAndBadge(context.Background(), 1, 1)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, 3, row.Progress.Current)
	assert.Equal(t, 5, row.Progress.Target)
	assert.Equal(t, 60, row.Progress.Percentage)
	assert.False(t, row.IsUnlocked)
	assert.Nil(t, row.UnlockedAt)
	assert.Zero(t, f.users.refreshCalls)
}

func TestCheckCriteriaFirstCrossingUnlocks(t *testing.T) {
	f := newBadgeServiceFixture(t, doodleBadge("Doodle Enthusiast", 5))
	f.activity.counters.DoodlesCompleted = 5

	unlocked, err := f.svc.CheckCriteria(context.Background(), 1, models.CriteriaDoodlesCompleted)
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "Doodle Enthusiast", unlocked[0].Badge.Name)
	assert.True(t, unlocked[0].UserBadge.IsUnlocked)
	require.NotNil(t, unlocked[0].UserBadge.UnlockedAt)
	assert.Equal(t, 100, unlocked[0].UserBadge.Progress.Percentage)
	assert.Equal(t, 1, f.users.refreshCalls)
}

func TestCheckCriteriaIsIdempotent(t *testing.T) {
	f := newBadgeServiceFixture(t, doodleBadge("Doodle Enthusiast", 5))
	f.activity.counters.DoodlesCompleted = 7

	first, err := f.svc.CheckCriteria(context.Background(), 1, models.CriteriaDoodlesCompleted)
	require.NoError(t, err)
	require.Len(t, first, 1)
	unlockedAt := *first[0].UserBadge.UnlockedAt

	// Same counter, run again: nothing newly unlocked, timestamp stable
	second, err := f.svc.CheckCriteria(context.Background(), 1, models.CriteriaDoodlesCompleted)
	require.NoError(t, err)
	assert.Empty(t, second)

	row, _ := f.ledger.GetByUserAndBadge(context.Background(), 1, 1)
	assert.True(t, row.IsUnlocked)
	assert.Equal(t, unlockedAt, *row.UnlockedAt)
}

func TestCheckCriteriaCounterRegressionKeepsUnlock(t *testing.T) {
	f := newBadgeServiceFixture(t, doodleBadge("Doodle Enthusiast", 5))
	f.activity.counters.DoodlesCompleted = 5

	_, err := f.svc.CheckCriteria(context.Background(), 1, models.CriteriaDoodlesCompleted)
	require.NoError(t, err)

	// Counter regresses (e.g. doodles deleted): progress follows the
	// counter down but the unlock is permanent.
	f.activity.counters.DoodlesCompleted = 3
	unlocked, err := f.svc.CheckCriteria(context.Background(), 1, models.CriteriaDoodlesCompleted)
	require.NoError(t, err)
	assert.Empty(t, unlocked)

	row, _ := f.ledger.GetByUserAndBadge(context.Background(), 1, 1)
	assert.Equal(t, 3, row.Progress.Current)
	assert.Equal(t, 60, row.Progress.Percentage)
	assert.True(t, row.IsUnlocked)
	require.NotNil(t, row.UnlockedAt)
}

func TestCheckCriteriaClampsOvershoot(t *testing.T) {
	f := newBadgeServiceFixture(t, doodleBadge("First Steps", 1))
	f.activity.counters.DoodlesCompleted = 40

	unlocked, err := f.svc.CheckCriteria(context.Background(), 1, models.CriteriaDoodlesCompleted)
	require.NoError(t, err)
	require.Len(t, unlocked, 1)

	row, _ := f.ledger.GetByUserAndBadge(context.Background(), 1, 1)
	assert.Equal(t, 1, row.Progress.Current)
	assert.Equal(t, 100, row.Progress.Percentage)
}

func TestCheckCriteriaMultipleThresholds(t *testing.T) {
	f := newBadgeServiceFixture(t,
		doodleBadge("First Steps", 1),
		doodleBadge("Doodle Enthusiast", 5),
		doodleBadge("Doodle Master", 25),
	)
	f.activity.counters.DoodlesCompleted = 5

	unlocked, err := f.svc.CheckCriteria(context.Background(), 1, models.CriteriaDoodlesCompleted)
	require.NoError(t, err)
	require.Len(t, unlocked, 2)
	assert.Equal(t, "First Steps", unlocked[0].Badge.Name)
	assert.Equal(t, "Doodle Enthusiast", unlocked[1].Badge.Name)

	// The 25-threshold badge tracks partial progress
	row, _ := f.ledger.GetByUserAndBadge(context.Background(), 1, 3)
	require.NotNil(t, row)
	assert.Equal(t, 5, row.Progress.Current)
	assert.Equal(t, 20, row.Progress.Percentage)
	assert.False(t, row.IsUnlocked)
}

func TestCheckCriteriaSkipsInactiveBadges(t *testing.T) {
	inactive := doodleBadge("Retired", 1)
	inactive.IsActive = false
	f := newBadgeServiceFixture(t, inactive, doodleBadge("First Steps", 1))
	f.activity.counters.DoodlesCompleted = 3

	unlocked, err := f.svc.CheckCriteria(context.Background(), 1, models.CriteriaDoodlesCompleted)
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "First Steps", unlocked[0].Badge.Name)

	row, _ := f.ledger.GetByUserAndBadge(context.Background(), 1, 1)
	assert.Nil(t, row, "inactive badge must not get a progress row")
}

func TestCheckCriteriaUnknownType(t *testing.T) {
	f := newBadgeServiceFixture(t)
	_, err := f.svc.CheckCriteria(context.Background(), 1, models.CriteriaType("bogus"))
	svcErr, ok := IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", svcErr.Type)
}

func TestCheckCriteriaPartialFailureKeepsSiblings(t *testing.T) {
	f := newBadgeServiceFixture(t,
		doodleBadge("First Steps", 1),
		doodleBadge("Doodle Enthusiast", 5),
	)
	f.activity.counters.DoodlesCompleted = 5
	f.ledger.failUpsertOn[1] = fmt.Errorf("connection reset")

	unlocked, err := f.svc.CheckCriteria(context.Background(), 1, models.CriteriaDoodlesCompleted)

	// The healthy badge still unlocked; the failure is reported
	require.Len(t, unlocked, 1)
	assert.Equal(t, "Doodle Enthusiast", unlocked[0].Badge.Name)

	var batchErr *PartialBatchError
	require.ErrorAs(t, err, &batchErr)
	require.Len(t, batchErr.Failures, 1)
	assert.Equal(t, int64(1), batchErr.Failures[0].BadgeID)

	// Retry with the fault cleared converges
	delete(f.ledger.failUpsertOn, 1)
	retried, err := f.svc.CheckCriteria(context.Background(), 1, models.CriteriaDoodlesCompleted)
	require.NoError(t, err)
	require.Len(t, retried, 1)
	assert.Equal(t, "First Steps", retried[0].Badge.Name)
}

func TestCheckCriteriaLostUnlockRaceNotReported(t *testing.T) {
	f := newBadgeServiceFixture(t, doodleBadge("First Steps", 1))
	f.activity.counters.DoodlesCompleted = 1
	f.ledger.raceUnlockOn[1] = true

	unlocked, err := f.svc.CheckCriteria(context.Background(), 1, models.CriteriaDoodlesCompleted)
	require.NoError(t, err)
	assert.Empty(t, unlocked, "the winning evaluation owns the announcement")
	assert.Zero(t, f.users.refreshCalls)

	row, _ := f.ledger.GetByUserAndBadge(context.Background(), 1, 1)
	assert.True(t, row.IsUnlocked)
}

func TestCheckCriteriaPublishesUnlockEvent(t *testing.T) {
	f := newBadgeServiceFixture(t, doodleBadge("First Steps", 1))
	f.activity.counters.DoodlesCompleted = 1

	received := make(chan events.Event, 1)
	f.bus.Subscribe(events.EventBadgeUnlocked, func(_ context.Context, e events.Event) error {
		received <- e
		return nil
	})

	_, err := f.svc.CheckCriteria(context.Background(), 1, models.CriteriaDoodlesCompleted)
	require.NoError(t, err)

	select {
	case e := <-received:
		unlockEvent, ok := e.(*events.BadgeUnlockedEvent)
		require.True(t, ok)
		assert.Equal(t, "First Steps", unlockEvent.BadgeName)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a badge.unlocked event")
	}
}

// ===============================
// CHECK-ALL TESTS
// ===============================

func TestCheckAllBadgesMergesCategories(t *testing.T) {
	likeBadge := &models.Badge{
		Name: "Community Favorite", Description: "x", Icon: "heart",
		Category: models.BadgeCategorySocial, CriteriaType: models.CriteriaLikesReceived,
		Threshold: 10, Rarity: models.RarityCommon, IsActive: true,
	}
	f := newBadgeServiceFixture(t, doodleBadge("First Steps", 1), likeBadge)
	f.activity.counters.DoodlesCompleted = 2
	f.activity.counters.LikesReceived = 12

	result, err := f.svc.CheckAllBadges(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalNewlyUnlocked)
	assert.Len(t, result.Results[models.CriteriaDoodlesCompleted], 1)
	assert.Len(t, result.Results[models.CriteriaLikesReceived], 1)
	assert.Empty(t, result.Results[models.CriteriaDaysStreak])

	// One counter snapshot for the whole run
	assert.Equal(t, 1, f.activity.calls)
	// One summary refresh for the whole run
	assert.Equal(t, 1, f.users.refreshCalls)
}

func TestCheckAllBadgesZeroActivity(t *testing.T) {
	likeBadge := &models.Badge{
		Name: "Community Favorite", Description: "x", Icon: "heart",
		Category: models.BadgeCategorySocial, CriteriaType: models.CriteriaLikesReceived,
		Threshold: 10, Rarity: models.RarityCommon, IsActive: true,
	}
	f := newBadgeServiceFixture(t, doodleBadge("First Steps", 1), likeBadge)

	result, err := f.svc.CheckAllBadges(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, result.TotalNewlyUnlocked)
	assert.Empty(t, result.NewlyUnlocked)
	for _, criteria := range models.AllCriteriaTypes {
		assert.Empty(t, result.Results[criteria])
	}

	// Rows exist at zero progress, nothing unlocked, no summary refresh
	rows, err := f.ledger.GetUserProgress(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Zero(t, row.Progress.Current)
		assert.Zero(t, row.Progress.Percentage)
		assert.False(t, row.IsUnlocked)
	}
	assert.Zero(t, f.users.refreshCalls)
}

func TestCheckAllBadgesCategoryFailureIsolated(t *testing.T) {
	likeBadge := &models.Badge{
		Name: "Community Favorite", Description: "x", Icon: "heart",
		Category: models.BadgeCategorySocial, CriteriaType: models.CriteriaLikesReceived,
		Threshold: 10, Rarity: models.RarityCommon, IsActive: true,
	}
	f := newBadgeServiceFixture(t, doodleBadge("First Steps", 1), likeBadge)
	f.activity.counters.DoodlesCompleted = 1
	f.activity.counters.LikesReceived = 10
	f.ledger.failUpsertOn[2] = fmt.Errorf("connection reset")

	result, err := f.svc.CheckAllBadges(context.Background(), 1)
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.TotalNewlyUnlocked)
	assert.Len(t, result.Results[models.CriteriaDoodlesCompleted], 1)
	assert.Empty(t, result.Results[models.CriteriaLikesReceived])
}

// ===============================
// SUMMARY AND AWARD TESTS
// ===============================

func TestGetUserSummary(t *testing.T) {
	f := newBadgeServiceFixture(t,
		doodleBadge("First Steps", 1),
		doodleBadge("Doodle Enthusiast", 5),
		doodleBadge("Doodle Master", 25),
	)
	f.activity.counters.DoodlesCompleted = 5
	_, err := f.svc.CheckCriteria(context.Background(), 1, models.CriteriaDoodlesCompleted)
	require.NoError(t, err)

	summary, err := f.svc.GetUserSummary(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Breakdown.Unlocked)
	assert.Equal(t, 1, summary.Breakdown.InProgress)
	assert.Equal(t, 3, summary.Breakdown.Total)
}

func TestAwardBadgeForcesUnlock(t *testing.T) {
	f := newBadgeServiceFixture(t, doodleBadge("Doodle Master", 25))

	awarded, err := f.svc.AwardBadge(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.True(t, awarded.IsUnlocked)
	assert.Equal(t, 25, awarded.Progress.Current)
	assert.Equal(t, 100, awarded.Progress.Percentage)
	assert.Equal(t, 1, f.users.refreshCalls)

	// Awarding again is a no-op and does not refresh twice
	again, err := f.svc.AwardBadge(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.True(t, again.IsUnlocked)
	assert.Equal(t, 1, f.users.refreshCalls)
}

func TestAwardBadgeUnknownBadge(t *testing.T) {
	f := newBadgeServiceFixture(t)
	_, err := f.svc.AwardBadge(context.Background(), 1, 99)
	svcErr, ok := IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", svcErr.Type)
}

// ===============================
// CATALOG TESTS
// ===============================

func TestCreateBadgeValidation(t *testing.T) {
	f := newBadgeServiceFixture(t)

	tests := []struct {
		name string
		req  *CreateBadgeRequest
	}{
		{"zero threshold", &CreateBadgeRequest{
			Name: "Bad", Description: "x", Icon: "star",
			Category: "achievement", CriteriaType: models.CriteriaDoodlesCompleted, Threshold: 0,
		}},
		{"negative threshold", &CreateBadgeRequest{
			Name: "Bad", Description: "x", Icon: "star",
			Category: "achievement", CriteriaType: models.CriteriaDoodlesCompleted, Threshold: -5,
		}},
		{"unknown criteria", &CreateBadgeRequest{
			Name: "Bad", Description: "x", Icon: "star",
			Category: "achievement", CriteriaType: "bogus", Threshold: 1,
		}},
		{"bad category", &CreateBadgeRequest{
			Name: "Bad", Description: "x", Icon: "star",
			Category: "winning", CriteriaType: models.CriteriaDoodlesCompleted, Threshold: 1,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateBadge(context.Background(), tt.req)
			svcErr, ok := IsServiceError(err)
			require.True(t, ok)
			assert.Equal(t, "VALIDATION_ERROR", svcErr.Type)
		})
	}
}

func TestCreateBadgeDefaultsAndConflict(t *testing.T) {
	f := newBadgeServiceFixture(t)

	badge, err := f.svc.CreateBadge(context.Background(), &CreateBadgeRequest{
		Name: "First Steps", Description: "Complete your first doodle", Icon: "palette",
		Category: "achievement", CriteriaType: models.CriteriaDoodlesCompleted, Threshold: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TimeframeLifetime, badge.Timeframe)
	assert.Equal(t, models.RarityCommon, badge.Rarity)
	assert.True(t, badge.IsActive)

	_, err = f.svc.CreateBadge(context.Background(), &CreateBadgeRequest{
		Name: "First Steps", Description: "duplicate", Icon: "palette",
		Category: "achievement", CriteriaType: models.CriteriaDoodlesCompleted, Threshold: 1,
	})
	svcErr, ok := IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "CONFLICT", svcErr.Type)
}

func TestSetBadgeActive(t *testing.T) {
	f := newBadgeServiceFixture(t, doodleBadge("First Steps", 1))
	f.activity.counters.DoodlesCompleted = 1

	retired, err := f.svc.SetBadgeActive(context.Background(), 1, false)
	require.NoError(t, err)
	assert.False(t, retired.IsActive)

	// Retired badges drop out of listing and evaluation
	listed, err := f.svc.ListBadges(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, listed)

	unlocked, err := f.svc.CheckCriteria(context.Background(), 1, models.CriteriaDoodlesCompleted)
	require.NoError(t, err)
	assert.Empty(t, unlocked)

	restored, err := f.svc.SetBadgeActive(context.Background(), 1, true)
	require.NoError(t, err)
	assert.True(t, restored.IsActive)

	unlocked, err = f.svc.CheckCriteria(context.Background(), 1, models.CriteriaDoodlesCompleted)
	require.NoError(t, err)
	assert.Len(t, unlocked, 1)
}

func TestSetBadgeActiveUnknownBadge(t *testing.T) {
	f := newBadgeServiceFixture(t)
	_, err := f.svc.SetBadgeActive(context.Background(), 42, false)
	svcErr, ok := IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", svcErr.Type)
}

func TestListBadgesFiltering(t *testing.T) {
	likeBadge := &models.Badge{
		Name: "Community Favorite", Description: "x", Icon: "heart",
		Category: models.BadgeCategorySocial, CriteriaType: models.CriteriaLikesReceived,
		Threshold: 10, Rarity: models.RarityCommon, IsActive: true,
	}
	f := newBadgeServiceFixture(t, doodleBadge("First Steps", 1), likeBadge)

	all, err := f.svc.ListBadges(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	social, err := f.svc.ListBadges(context.Background(), &ListBadgesRequest{Category: models.BadgeCategorySocial})
	require.NoError(t, err)
	require.Len(t, social, 1)
	assert.Equal(t, "Community Favorite", social[0].Name)
}
