package utils

import (
	"strings"
)

const (
	ScoreExact          = 100
	ScoreFirstAndLast   = 90
	ScoreAllTokens      = 80
	ScoreSingleExact    = 70
	ScoreFirstOrLast    = 60
	ScoreSingleContains = 50

	// MinAcceptedScore is the lowest score treated as a match.
	MinAcceptedScore = 50

	shortNameBonus  = 10
	shortNameLength = 20
)

// ScoreContactName rates how well a contact's name fits a candidate name derived
// from an email address. 0 means no relation.
func ScoreContactName(candidate, contactName string) int {
	cand := NameTokens(candidate)
	con := NameTokens(contactName)
	if len(cand) == 0 || len(con) == 0 {
		return 0
	}

	score := 0
	contactFirst, contactLast := con[0], con[len(con)-1]

	switch {
	case strings.Join(cand, " ") == strings.Join(con, " "):
		score = ScoreExact
	case len(cand) >= 2:
		first, last := cand[0], cand[len(cand)-1]
		switch {
		case first == contactFirst && last == contactLast:
			score = ScoreFirstAndLast
		case allPresent(cand, con):
			score = ScoreAllTokens
		case first == contactFirst || last == contactLast:
			score = ScoreFirstOrLast
		}
	default:
		token := cand[0]
		switch {
		case token == contactFirst || token == contactLast:
			score = ScoreSingleExact
		case strings.Contains(strings.Join(con, " "), token):
			score = ScoreSingleContains
		}
	}

	if score > 0 && len(strings.TrimSpace(contactName)) < shortNameLength {
		score += shortNameBonus
	}
	if score > ScoreExact {
		score = ScoreExact
	}
	return score
}

func allPresent(tokens, in []string) bool {
	set := make(map[string]bool, len(in))
	for _, t := range in {
		set[t] = true
	}
	for _, t := range tokens {
		if !set[t] {
			return false
		}
	}
	return true
}
