// Package xp holds the leveling table and XP award rules.
package xp

import "github.com/mahmouddattiaa/Focus-Ritual-App-sub003/internal/types"

// levelThresholds[i] is the cumulative XP required to reach level i+1.
// Level 1 starts at zero.
var levelThresholds = []int{
	0,     // 1
	100,   // 2
	250,   // 3
	450,   // 4
	700,   // 5
	1000,  // 6
	1400,  // 7
	1900,  // 8
	2500,  // 9
	3200,  // 10
	4000,  // 11
	5000,  // 12
	6200,  // 13
	7600,  // 14
	9200,  // 15
	11000, // 16
	13000, // 17
	15500, // 18
	18500, // 19
	22000, // 20
}

const habitCompletionXp = 15

// Level returns the level for a cumulative XP total. Totals beyond the
// table cap at the highest level.
func Level(total int) int {
	if total < 0 {
		return 1
	}

	level := 1
	for i, threshold := range levelThresholds {
		if total < threshold {
			break
		}
		level = i + 1
	}

	return level
}

// NextLevelAt returns the cumulative XP needed for the next level, or
// -1 if the total is already at the table cap.
func NextLevelAt(total int) int {
	for _, threshold := range levelThresholds {
		if total < threshold {
			return threshold
		}
	}

	return -1
}

// SessionAward returns the XP granted for a completed focus session.
// Break sessions earn nothing; work sessions earn one point per
// minute, rounded down.
func SessionAward(kind string, durationSeconds int) int {
	if kind != types.SessionKindWork || durationSeconds <= 0 {
		return 0
	}

	return durationSeconds / 60
}

// HabitAward returns the XP granted for completing a habit once.
func HabitAward() int {
	return habitCompletionXp
}
