package services

import (
	"context"
	"testing"
	"time"

	"visualverse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newUserServiceFixture(user *models.User) (UserService, *fakeUserRepo) {
	repo := newFakeUserRepo()
	if user != nil {
		repo.users[user.ID] = user
	}
	return NewUserService(repo, zap.NewNop()), repo
}

func daysAgo(days int) *time.Time {
	t := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -days)
	return &t
}

func TestRecordActivityStartsStreak(t *testing.T) {
	svc, repo := newUserServiceFixture(&models.User{ID: 1, Username: "ada"})

	streak, err := svc.RecordActivity(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, streak)
	assert.Equal(t, 1, repo.users[1].StreakDays)
	require.NotNil(t, repo.users[1].LastActiveDate)
}

func TestRecordActivitySameDayIsNoop(t *testing.T) {
	svc, repo := newUserServiceFixture(&models.User{
		ID: 1, Username: "ada", StreakDays: 4, LastActiveDate: daysAgo(0),
	})

	streak, err := svc.RecordActivity(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 4, streak)
	assert.Equal(t, 4, repo.users[1].StreakDays)
}

func TestRecordActivityConsecutiveDayExtends(t *testing.T) {
	svc, repo := newUserServiceFixture(&models.User{
		ID: 1, Username: "ada", StreakDays: 4, LastActiveDate: daysAgo(1),
	})

	streak, err := svc.RecordActivity(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 5, streak)
	assert.Equal(t, 5, repo.users[1].StreakDays)
}

func TestRecordActivityGapResets(t *testing.T) {
	svc, repo := newUserServiceFixture(&models.User{
		ID: 1, Username: "ada", StreakDays: 30, LastActiveDate: daysAgo(3),
	})

	streak, err := svc.RecordActivity(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, streak)
	assert.Equal(t, 1, repo.users[1].StreakDays)
}

func TestRecordActivityUnknownUser(t *testing.T) {
	svc, _ := newUserServiceFixture(nil)

	_, err := svc.RecordActivity(context.Background(), 42)
	svcErr, ok := IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", svcErr.Type)
}

func TestUpdateProfilePartialOverwrite(t *testing.T) {
	svc, _ := newUserServiceFixture(&models.User{
		ID: 1, Username: "ada", FirstName: "Ada", LastName: "Lovelace", Bio: "original",
	})

	updated, err := svc.UpdateProfile(context.Background(), 1, &UpdateProfileRequest{
		Bio:        "drawing my way through graph theory",
		SkillLevel: "advanced",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", updated.FirstName, "empty fields stay untouched")
	assert.Equal(t, "drawing my way through graph theory", updated.Bio)
	assert.Equal(t, "advanced", updated.SkillLevel)
}

func TestUpdateProfileRejectsBadSkillLevel(t *testing.T) {
	svc, _ := newUserServiceFixture(&models.User{ID: 1, Username: "ada"})

	_, err := svc.UpdateProfile(context.Background(), 1, &UpdateProfileRequest{SkillLevel: "grandmaster"})
	svcErr, ok := IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", svcErr.Type)
}

func TestAddPoints(t *testing.T) {
	svc, repo := newUserServiceFixture(&models.User{ID: 1, Username: "ada", TotalPoints: 10})

	require.NoError(t, svc.AddPoints(context.Background(), 1, 15))
	assert.Equal(t, 25, repo.users[1].TotalPoints)

	err := svc.AddPoints(context.Background(), 1, 0)
	svcErr, ok := IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", svcErr.Type)
}
