package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileRecordActivity(t *testing.T) {
	t.Parallel()

	day1 := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)

	testCases := []struct {
		name       string
		profile    Profile
		added      int
		repeated   int
		now        time.Time
		wantStreak int
		wantStat   DailyStat
		wantStats  int
	}{
		{
			name:       "first activity starts streak",
			profile:    NewProfile("Ann", LevelB1),
			added:      1,
			now:        day1,
			wantStreak: 1,
			wantStat:   DailyStat{Date: "2024-05-10", AddedCount: 1},
			wantStats:  1,
		},
		{
			name: "same day keeps streak and accumulates",
			profile: Profile{
				Name: "Ann", Level: LevelB1, Streak: 4, LastActiveDate: "2024-05-10",
				Stats: []DailyStat{{Date: "2024-05-10", AddedCount: 2, RepeatedCount: 3}},
			},
			repeated:   5,
			now:        day1.Add(6 * time.Hour),
			wantStreak: 4,
			wantStat:   DailyStat{Date: "2024-05-10", AddedCount: 2, RepeatedCount: 8},
			wantStats:  1,
		},
		{
			name: "consecutive day extends streak",
			profile: Profile{
				Name: "Ann", Level: LevelB1, Streak: 4, LastActiveDate: "2024-05-09",
				Stats: []DailyStat{{Date: "2024-05-09", RepeatedCount: 3}},
			},
			repeated:   2,
			now:        day1,
			wantStreak: 5,
			wantStat:   DailyStat{Date: "2024-05-10", RepeatedCount: 2},
			wantStats:  2,
		},
		{
			name: "gap restarts streak",
			profile: Profile{
				Name: "Ann", Level: LevelB1, Streak: 9, LastActiveDate: "2024-05-01",
				Stats: []DailyStat{{Date: "2024-05-01", RepeatedCount: 1}},
			},
			repeated:   1,
			now:        day1,
			wantStreak: 1,
			wantStat:   DailyStat{Date: "2024-05-10", RepeatedCount: 1},
			wantStats:  2,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			before := len(tc.profile.Stats)
			got := tc.profile.RecordActivity(tc.added, tc.repeated, tc.now)

			assert.Equal(t, tc.wantStreak, got.Streak)
			assert.Equal(t, "2024-05-10", got.LastActiveDate)
			assert.Len(t, got.Stats, tc.wantStats)
			assert.Equal(t, tc.wantStat, got.StatFor(tc.now))
			assert.Len(t, tc.profile.Stats, before, "input profile must not be modified")
			require.NoError(t, got.Validate())
		})
	}
}

func TestProfileRecordActivityDoesNotShareStats(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	p := Profile{
		Name: "Ann", Level: LevelB1, Streak: 1, LastActiveDate: "2024-05-10",
		Stats: []DailyStat{{Date: "2024-05-10", RepeatedCount: 1}},
	}

	_ = p.RecordActivity(0, 10, now)

	assert.Equal(t, 1, p.Stats[0].RepeatedCount)
}

func TestProfileEffectiveStreak(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	p := Profile{Name: "Ann", Level: LevelB1, Streak: 3}

	p.LastActiveDate = "2024-05-10"
	assert.Equal(t, 3, p.EffectiveStreak(now))

	p.LastActiveDate = "2024-05-09"
	assert.Equal(t, 3, p.EffectiveStreak(now))

	p.LastActiveDate = "2024-05-07"
	assert.Zero(t, p.EffectiveStreak(now))
}

func TestProfileRecentStats(t *testing.T) {
	t.Parallel()

	p := NewProfile("", "")
	assert.Equal(t, DefaultProfileName, p.Name)
	assert.Equal(t, DefaultLevel, p.Level)
	assert.Empty(t, p.RecentStats(7))

	for day := 1; day <= 9; day++ {
		p.Stats = append(p.Stats, DailyStat{Date: time.Date(2024, 5, day, 0, 0, 0, 0, time.UTC).Format(DateLayout)})
	}

	recent := p.RecentStats(7)
	require.Len(t, recent, 7)
	assert.Equal(t, "2024-05-03", recent[0].Date)
	assert.Equal(t, "2024-05-09", recent[6].Date)
}

func TestProfileValidate(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, Profile{Level: LevelB1}.Validate(), ErrProfileNameEmpty)
	assert.ErrorIs(t, Profile{Name: "a", Level: "X"}.Validate(), ErrInvalidLevel)
	assert.ErrorIs(t, Profile{Name: "a", Level: LevelA1, LastActiveDate: "10/05/2024"}.Validate(), ErrInvalidDate)
	assert.ErrorIs(t, Profile{
		Name: "a", Level: LevelA1, Stats: []DailyStat{{Date: "2024-05-10", AddedCount: -1}},
	}.Validate(), ErrValidation)
}
