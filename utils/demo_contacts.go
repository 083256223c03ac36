package utils

import (
	"hash/fnv"
	"strings"

	"coliseumAPI/internal/types/contact"
)

const maxDemoMatches = 3

var demoActivities = []string{"running", "lifting", "cycling", "yoga", "hiit", "swimming", "boxing"}

// DemoMatches fabricates stable fitness stats for up to three named contacts. The
// same contact always yields the same numbers.
func DemoMatches(contacts []contact.Contact) []contact.Match {
	var out []contact.Match
	for _, c := range contacts {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}

		h := fnv.New32a()
		h.Write([]byte(strings.ToLower(name)))
		sum := h.Sum32()

		out = append(out, contact.Match{
			User: contact.RegisteredUser{
				ID:          "demo-" + strings.ToLower(strings.Join(NameTokens(name), "-")),
				DisplayName: name,
			},
			ContactName: name,
			MatchedBy:   contact.MatchedByDemo,
			Demo: &contact.DemoStats{
				WorkoutsPerWeek:  2 + int(sum%5),
				CurrentStreak:    1 + int((sum/7)%30),
				FavoriteActivity: demoActivities[int((sum/11)%uint32(len(demoActivities)))],
				ChallengesWon:    int((sum / 13) % 12),
			},
		})
		if len(out) == maxDemoMatches {
			break
		}
	}
	return out
}
