package contact

// Contact is one address-book entry uploaded for a scan. Never persisted.
type Contact struct {
	Name   string   `json:"name"`
	Emails []string `json:"emails"`
	Phones []string `json:"phones"`
}

// RegisteredUser is the read-only view of an account the matcher works with.
type RegisteredUser struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	DisplayName string `json:"displayName"`
}

type MatchSource string

const (
	MatchedByEmail         MatchSource = "email"
	MatchedByPhone         MatchSource = "phone"
	MatchedByNameFromEmail MatchSource = "name_from_email"
	MatchedByDemo          MatchSource = "demo"
)

type Match struct {
	User        RegisteredUser `json:"user"`
	ContactName string         `json:"contactName"`
	MatchedBy   MatchSource    `json:"matchedBy"`
	Score       int            `json:"score,omitempty"`
	Demo        *DemoStats     `json:"demo,omitempty"`
}

// DemoStats are fabricated figures shown when a scan finds nobody.
type DemoStats struct {
	WorkoutsPerWeek  int    `json:"workoutsPerWeek"`
	CurrentStreak    int    `json:"currentStreak"`
	FavoriteActivity string `json:"favoriteActivity"`
	ChallengesWon    int    `json:"challengesWon"`
}

type ScanRequest struct {
	PermissionGranted bool      `json:"permissionGranted"`
	Contacts          []Contact `json:"contacts"`
	Demo              bool      `json:"demo"`
}

type ScanResult struct {
	Matches       []Match `json:"matches"`
	FailedBatches int     `json:"failedBatches"`
	Scanned       int     `json:"scanned"`
}
