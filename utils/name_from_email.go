package utils

import (
	"strings"
	"unicode"

	"github.com/gosimple/unidecode"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var honorifics = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "miss": true, "dr": true, "prof": true, "sir": true,
	"jr": true, "sr": true, "ii": true, "iii": true, "iv": true, "phd": true, "md": true,
}

// Local parts that describe a mailbox, not a person.
var genericTokens = map[string]bool{
	"info": true, "admin": true, "contact": true, "support": true, "hello": true, "hi": true,
	"mail": true, "email": true, "user": true, "test": true, "noreply": true, "no": true,
	"reply": true, "office": true, "team": true, "sales": true, "official": true, "real": true,
	"the": true, "me": true, "my": true, "its": true, "iam": true, "gym": true, "fit": true,
	"fitness": true, "workout": true, "business": true, "work": true, "home": true, "personal": true,
}

var titleCaser = cases.Title(language.English)

// NameTokens lower-cases, transliterates and splits a name into letter runs, dropping honorifics.
func NameTokens(name string) []string {
	fields := strings.FieldsFunc(strings.ToLower(unidecode.Unidecode(name)), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if honorifics[f] {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// NameFromEmail guesses a display name from the local part of an address:
// "john.smith123@mail.com" becomes "John Smith". Returns "" when nothing usable remains.
func NameFromEmail(email string) string {
	local, _, found := strings.Cut(strings.TrimSpace(email), "@")
	if !found || local == "" {
		return ""
	}
	local, _, _ = strings.Cut(local, "+")

	var kept []string
	for _, token := range NameTokens(local) {
		if len(token) < 2 || genericTokens[token] {
			continue
		}
		kept = append(kept, token)
	}
	if len(kept) == 0 {
		return ""
	}
	return titleCaser.String(strings.Join(kept, " "))
}
