package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCriteriaTypeValid(t *testing.T) {
	for _, criteria := range AllCriteriaTypes {
		assert.True(t, criteria.Valid(), "%s should be valid", criteria)
	}
	assert.False(t, CriteriaType("").Valid())
	assert.False(t, CriteriaType("doodles").Valid())
	assert.False(t, CriteriaType("DOODLES_COMPLETED").Valid())
}

func TestActivityCountersDispatch(t *testing.T) {
	counters := &ActivityCounters{
		DoodlesCompleted:       1,
		ChallengesParticipated: 2,
		LikesReceived:          3,
		DaysStreak:             4,
		PerfectRatings:         5,
		CommunityContributor:   6,
	}

	want := map[CriteriaType]int{
		CriteriaDoodlesCompleted:       1,
		CriteriaChallengesParticipated: 2,
		CriteriaLikesReceived:          3,
		CriteriaDaysStreak:             4,
		CriteriaPerfectRatings:         5,
		CriteriaCommunityContributor:   6,
	}
	for criteria, value := range want {
		got, ok := counters.Counter(criteria)
		assert.True(t, ok)
		assert.Equal(t, value, got, "counter for %s", criteria)
	}

	got, ok := counters.Counter(CriteriaType("bogus"))
	assert.False(t, ok)
	assert.Zero(t, got)
}
