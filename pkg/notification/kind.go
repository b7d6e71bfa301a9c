package notification

import "fmt"

// Kind identifies one of the known notification types. The set is closed:
// an unrecognised kind is a permanent delivery failure because the mapping
// to a template is static and cannot succeed on retry.
type Kind string

const (
	KindChallengeNew          Kind = "challenge_new"
	KindChallengeJoined       Kind = "challenge_joined"
	KindChallengeStartingSoon Kind = "challenge_starting_soon"
	KindDailyTaskReminder     Kind = "daily_task_reminder"
	KindChallengeCompleted    Kind = "challenge_completed"
	KindDailyCheckin          Kind = "daily_checkin"
	KindWeeklyCheckin         Kind = "weekly_checkin"
	KindMealReminder          Kind = "meal_reminder"
	KindAchievementUnlocked   Kind = "achievement_unlocked"
	KindDailyTaskCreated      Kind = "daily_task_created"
)

// Kinds returns all known notification kinds
func Kinds() []Kind {
	return []Kind{
		KindChallengeNew,
		KindChallengeJoined,
		KindChallengeStartingSoon,
		KindDailyTaskReminder,
		KindChallengeCompleted,
		KindDailyCheckin,
		KindWeeklyCheckin,
		KindMealReminder,
		KindAchievementUnlocked,
		KindDailyTaskCreated,
	}
}

// ParseKind validates a string tag against the closed kind set
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	switch k {
	case KindChallengeNew, KindChallengeJoined, KindChallengeStartingSoon,
		KindDailyTaskReminder, KindChallengeCompleted, KindDailyCheckin,
		KindWeeklyCheckin, KindMealReminder, KindAchievementUnlocked,
		KindDailyTaskCreated:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

func (k Kind) String() string {
	return string(k)
}
