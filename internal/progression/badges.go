package progression

// Badge identifiers. Identifiers are opaque strings; unknown ones already on a
// user are carried along untouched.
const (
	BadgeFirstQuest = "first_quest"
	BadgeLevel5     = "level_5"
	BadgeStrength5  = "strength_5"
)

// EvaluateBadges checks the fixed rule set against a post-level-up user snapshot
// and returns the full badge set plus the newly unlocked ids. Rules fire
// independently and only ever append; existing badges are never revoked, so the
// set is monotonic. Re-evaluating a met condition is a no-op.
func EvaluateBadges(current []string, completedCount, level, strength int) (all []string, added []string) {
	all = append(all, current...)

	has := make(map[string]bool, len(current))
	for _, b := range current {
		has[b] = true
	}
	unlock := func(id string, met bool) {
		if met && !has[id] {
			all = append(all, id)
			added = append(added, id)
			has[id] = true
		}
	}

	unlock(BadgeFirstQuest, completedCount == 1)
	unlock(BadgeLevel5, level >= 5)
	unlock(BadgeStrength5, strength >= 5)
	return all, added
}
