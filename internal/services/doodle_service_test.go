package services

import (
	"context"
	"database/sql"
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

type likeKey struct{ doodleID, userID int64 }

type fakeDoodleRepo struct {
	doodles map[int64]*models.Doodle
	likes   map[likeKey]bool
	nextID  int64
}

func newFakeDoodleRepo(doodles ...*models.Doodle) *fakeDoodleRepo {
	repo := &fakeDoodleRepo{
		doodles: make(map[int64]*models.Doodle),
		likes:   make(map[likeKey]bool),
		nextID:  1,
	}
	for _, d := range doodles {
		repo.Create(context.Background(), d)
	}
	return repo
}

func (r *fakeDoodleRepo) Create(_ context.Context, doodle *models.Doodle) error {
	doodle.ID = r.nextID
	r.nextID++
	doodle.CreatedAt = time.Now()
	r.doodles[doodle.ID] = doodle
	return nil
}

func (r *fakeDoodleRepo) GetByID(_ context.Context, id int64) (*models.Doodle, error) {
	if d, ok := r.doodles[id]; ok {
		copied := *d
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeDoodleRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.doodles[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.doodles, id)
	return nil
}

func (r *fakeDoodleRepo) List(_ context.Context, _ models.PaginationParams) (*models.PaginatedResponse[*models.Doodle], error) {
	return &models.PaginatedResponse[*models.Doodle]{}, nil
}

func (r *fakeDoodleRepo) GetByUserID(_ context.Context, _ int64, _ models.PaginationParams) (*models.PaginatedResponse[*models.Doodle], error) {
	return &models.PaginatedResponse[*models.Doodle]{}, nil
}

func (r *fakeDoodleRepo) GetByChallengeID(_ context.Context, _ int64, _ models.PaginationParams) (*models.PaginatedResponse[*models.Doodle], error) {
	return &models.PaginatedResponse[*models.Doodle]{}, nil
}

func (r *fakeDoodleRepo) AddLike(_ context.Context, doodleID, userID int64) error {
	key := likeKey{doodleID, userID}
	if r.likes[key] {
		return repositories.ErrAlreadyLiked
	}
	r.likes[key] = true
	r.doodles[doodleID].Likes++
	return nil
}

func (r *fakeDoodleRepo) RemoveLike(_ context.Context, doodleID, userID int64) error {
	key := likeKey{doodleID, userID}
	if r.likes[key] {
		delete(r.likes, key)
		r.doodles[doodleID].Likes--
	}
	return nil
}

func (r *fakeDoodleRepo) UpsertRating(_ context.Context, rating *models.DoodleRating) error {
	d := r.doodles[rating.DoodleID]
	d.Rating = float64(rating.Rating)
	d.RatingCount++
	return nil
}

type fakeChallengeRepo struct {
	challenges map[int64]*models.Challenge
}

func (r *fakeChallengeRepo) Create(_ context.Context, challenge *models.Challenge) error {
	challenge.ID = int64(len(r.challenges) + 1)
	r.challenges[challenge.ID] = challenge
	return nil
}

func (r *fakeChallengeRepo) GetByID(_ context.Context, id int64) (*models.Challenge, error) {
	return r.challenges[id], nil
}

func (r *fakeChallengeRepo) ListActive(_ context.Context, _ models.PaginationParams) (*models.PaginatedResponse[*models.Challenge], error) {
	return &models.PaginatedResponse[*models.Challenge]{}, nil
}

// fakeFileService records deletions
type fakeFileService struct {
	deleted []string
}

func (f *fakeFileService) UploadImage(_ context.Context, _ *UploadImageRequest) (*UploadImageResult, error) {
	return &UploadImageResult{URL: "https://example.test/img.png", PublicID: "img"}, nil
}

func (f *fakeFileService) DeleteImage(_ context.Context, publicID string) error {
	f.deleted = append(f.deleted, publicID)
	return nil
}

// ===============================
// FIXTURE
// ===============================

type doodleServiceFixture struct {
	svc      DoodleService
	doodles  *fakeDoodleRepo
	users    *fakeUserRepo
	activity *fakeActivityRepo
	files    *fakeFileService
}

func newDoodleServiceFixture(t *testing.T, badges []*models.Badge, doodles ...*models.Doodle) *doodleServiceFixture {
	t.Helper()

	badgeRepo := newFakeBadgeRepo(badges...)
	ledger := newFakeLedger()
	activity := &fakeActivityRepo{}
	userRepo := newFakeUserRepo(
		&models.User{ID: 1, Username: "ada", Role: models.RoleStudent, IsActive: true},
		&models.User{ID: 2, Username: "grace", Role: models.RoleStudent, IsActive: true},
		&models.User{ID: 3, Username: "root", Role: models.RoleAdmin, IsActive: true},
	)
	doodleRepo := newFakeDoodleRepo(doodles...)
	challengeRepo := &fakeChallengeRepo{challenges: map[int64]*models.Challenge{
		1: {ID: 1, Title: "Draw a B-tree", Points: 20, IsActive: true},
	}}
	files := &fakeFileService{}

	cacheInstance, err := cache.New(&config.CacheConfig{Provider: "memory", DefaultTTL: time.Minute}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { cacheInstance.Close() })
	bus := events.NewMemoryBus(zap.NewNop())

	badgeSvc := NewBadgeService(badgeRepo, ledger, activity, userRepo, cacheInstance, bus, zap.NewNop())
	userSvc := NewUserService(userRepo, zap.NewNop())

	return &doodleServiceFixture{
		svc:      NewDoodleService(doodleRepo, challengeRepo, userRepo, badgeSvc, userSvc, files, bus, zap.NewNop()),
		doodles:  doodleRepo,
		users:    userRepo,
		activity: activity,
		files:    files,
	}
}

func sampleDoodle(authorID int64) *models.Doodle {
	return &models.Doodle{
		UserID:      authorID,
		ChallengeID: 1,
		Title:       "B-tree split",
		ImageURL:    "https://res.cloudinary.com/demo/image/upload/v1718000000/visualverse/2026/08/user_1/btree.png",
		IsPublic:    true,
	}
}

// ===============================
// DELETION TESTS
// ===============================

func TestDeleteDoodleByAuthor(t *testing.T) {
	f := newDoodleServiceFixture(t, nil, sampleDoodle(1))

	require.NoError(t, f.svc.DeleteDoodle(context.Background(), 1, 1))

	gone, err := f.doodles.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, gone)
	assert.Equal(t, []string{"visualverse/2026/08/user_1/btree"}, f.files.deleted)
}

func TestDeleteDoodleByAdmin(t *testing.T) {
	f := newDoodleServiceFixture(t, nil, sampleDoodle(1))

	require.NoError(t, f.svc.DeleteDoodle(context.Background(), 1, 3))

	gone, _ := f.doodles.GetByID(context.Background(), 1)
	assert.Nil(t, gone)
}

func TestDeleteDoodleForbiddenForStranger(t *testing.T) {
	f := newDoodleServiceFixture(t, nil, sampleDoodle(1))

	err := f.svc.DeleteDoodle(context.Background(), 1, 2)
	svcErr, ok := IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "FORBIDDEN", svcErr.Type)

	still, _ := f.doodles.GetByID(context.Background(), 1)
	assert.NotNil(t, still)
	assert.Empty(t, f.files.deleted)
}

func TestDeleteDoodleUnknown(t *testing.T) {
	f := newDoodleServiceFixture(t, nil)

	err := f.svc.DeleteDoodle(context.Background(), 99, 1)
	svcErr, ok := IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", svcErr.Type)
}

func TestCloudinaryPublicID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"versioned upload", "https://res.cloudinary.com/demo/image/upload/v123/visualverse/u1/pic.png", "visualverse/u1/pic"},
		{"no version segment", "https://res.cloudinary.com/demo/image/upload/visualverse/u1/pic.jpg", "visualverse/u1/pic"},
		{"foreign host", "https://example.test/static/pic.png", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cloudinaryPublicID(tt.url))
		})
	}
}

// ===============================
// ENGAGEMENT TESTS
// ===============================

func TestLikeDoodleRejectsSelfAndDuplicates(t *testing.T) {
	f := newDoodleServiceFixture(t, nil, sampleDoodle(1))

	_, err := f.svc.LikeDoodle(context.Background(), 1, 1)
	svcErr, ok := IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "BUSINESS_ERROR", svcErr.Type)

	_, err = f.svc.LikeDoodle(context.Background(), 1, 2)
	require.NoError(t, err)

	_, err = f.svc.LikeDoodle(context.Background(), 1, 2)
	svcErr, ok = IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "CONFLICT", svcErr.Type)
}

func TestRateDoodleSkipsCheckWhenNeverPerfect(t *testing.T) {
	f := newDoodleServiceFixture(t, nil, sampleDoodle(1))

	unlocked, err := f.svc.RateDoodle(context.Background(), &RateDoodleRequest{
		DoodleID: 1, RatedByID: 2, Rating: 3,
	})
	require.NoError(t, err)
	assert.Empty(t, unlocked)
	// The average never reached the perfect floor, so no counters moved
	assert.Zero(t, f.activity.calls)
}

func TestRateDoodleRunsCheckWhenPerfect(t *testing.T) {
	perfectBadge := &models.Badge{
		Name: "Crowd Pleaser", Description: "x", Icon: "star",
		Category: models.BadgeCategorySkill, CriteriaType: models.CriteriaPerfectRatings,
		Threshold: 1, Rarity: models.RarityCommon, IsActive: true,
	}
	f := newDoodleServiceFixture(t, []*models.Badge{perfectBadge}, sampleDoodle(1))
	f.activity.counters.PerfectRatings = 1

	unlocked, err := f.svc.RateDoodle(context.Background(), &RateDoodleRequest{
		DoodleID: 1, RatedByID: 2, Rating: 5,
	})
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "Crowd Pleaser", unlocked[0].Badge.Name)
}
