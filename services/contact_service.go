package services

import (
	"context"
	"fmt"
	"sort"

	"coliseumAPI/internal/docstore"
	"coliseumAPI/internal/metrics"
	"coliseumAPI/internal/types/contact"
	"coliseumAPI/internal/user"
	"coliseumAPI/utils"

	"go.uber.org/zap"
)

// UserDirectory is the part of the users collection the matcher reads.
type UserDirectory interface {
	FindByEmails(ctx context.Context, emails []string) ([]user.User, error)
	FindByPhones(ctx context.Context, last10 []string) ([]user.User, error)
	EachUser(ctx context.Context, fn func(user.User) error) error
}

type ContactService struct {
	directory UserDirectory
	log       *zap.SugaredLogger
}

func NewContactService(directory UserDirectory, log *zap.SugaredLogger) *ContactService {
	return &ContactService{directory: directory, log: log}
}

// strategyRun tracks batch outcomes of one matching strategy.
type strategyRun struct {
	name    contact.MatchSource
	batches int
	failed  int
}

func (r strategyRun) allFailed() bool {
	return r.batches > 0 && r.failed == r.batches
}

type scan struct {
	caller  contact.RegisteredUser
	matched map[string]bool
	matches []contact.Match
}

func (sc *scan) add(u user.User, contactName string, by contact.MatchSource, score int) {
	if u.ID == "" || u.ID == sc.caller.ID || sc.matched[u.ID] {
		return
	}
	sc.matched[u.ID] = true
	sc.matches = append(sc.matches, contact.Match{
		User:        u.Registered(),
		ContactName: contactName,
		MatchedBy:   by,
		Score:       score,
	})
}

// ScanContacts correlates an address-book snapshot with registered accounts. Email
// matches win over phone matches, which win over the name heuristic. A failing
// batch is skipped; the scan only fails when a strategy lost every batch and
// nothing matched at all.
func (s *ContactService) ScanContacts(ctx context.Context, caller contact.RegisteredUser, req *contact.ScanRequest) (*contact.ScanResult, error) {
	if !req.PermissionGranted {
		return nil, ErrPermissionDenied
	}

	sc := &scan{caller: caller, matched: make(map[string]bool)}
	callerEmail := utils.NormalizeEmail(caller.Email)
	callerPhone := utils.PhoneLast10(caller.Phone)

	byEmail := make(map[string]string)
	byPhone := make(map[string]string)
	for _, c := range req.Contacts {
		for _, raw := range c.Emails {
			email := utils.NormalizeEmail(raw)
			if email == "" || email == callerEmail {
				continue
			}
			if _, seen := byEmail[email]; !seen {
				byEmail[email] = c.Name
			}
		}
		for _, raw := range c.Phones {
			last10 := utils.PhoneLast10(raw)
			if last10 == "" || last10 == callerPhone {
				continue
			}
			if _, seen := byPhone[last10]; !seen {
				byPhone[last10] = c.Name
			}
		}
	}

	runs := []strategyRun{
		s.matchBatched(ctx, sc, contact.MatchedByEmail, byEmail, s.directory.FindByEmails,
			func(u user.User) string { return utils.NormalizeEmail(u.Email) }),
		s.matchBatched(ctx, sc, contact.MatchedByPhone, byPhone, s.directory.FindByPhones,
			func(u user.User) string { return utils.PhoneLast10(u.Phone) }),
		s.matchByName(ctx, sc, req.Contacts),
	}

	failedBatches := 0
	for _, run := range runs {
		failedBatches += run.failed
		if run.allFailed() && len(sc.matches) == 0 {
			return nil, fmt.Errorf("contact scan failed: every %s lookup failed", run.name)
		}
	}

	for _, m := range sc.matches {
		metrics.ContactMatches.WithLabelValues(string(m.MatchedBy)).Inc()
	}

	matches := sc.matches
	if len(matches) == 0 && req.Demo {
		matches = utils.DemoMatches(req.Contacts)
		metrics.ContactMatches.WithLabelValues(string(contact.MatchedByDemo)).Add(float64(len(matches)))
	}
	if matches == nil {
		matches = []contact.Match{}
	}

	s.log.Infow("Contacts scanned",
		"user", caller.ID,
		"contacts", len(req.Contacts),
		"matches", len(matches),
		"failedBatches", failedBatches,
	)

	return &contact.ScanResult{
		Matches:       matches,
		FailedBatches: failedBatches,
		Scanned:       len(req.Contacts),
	}, nil
}

func (s *ContactService) matchBatched(
	ctx context.Context,
	sc *scan,
	by contact.MatchSource,
	lookup map[string]string,
	find func(ctx context.Context, values []string) ([]user.User, error),
	key func(u user.User) string,
) strategyRun {
	run := strategyRun{name: by}

	values := make([]string, 0, len(lookup))
	for v := range lookup {
		values = append(values, v)
	}
	sort.Strings(values)

	for _, batch := range docstore.Batches(values, docstore.MaxInValues) {
		run.batches++
		users, err := find(ctx, batch)
		if err != nil {
			run.failed++
			s.log.Warnw("Contact scan: batch failed", "strategy", by, "size", len(batch), "error", err)
			continue
		}
		for _, u := range users {
			contactName, ok := lookup[key(u)]
			if !ok {
				continue
			}
			sc.add(u, contactName, by, 0)
		}
	}
	return run
}

// matchByName scores every contact against the name guessed from each unmatched
// user's email and keeps the best one at or above the acceptance threshold.
func (s *ContactService) matchByName(ctx context.Context, sc *scan, contacts []contact.Contact) strategyRun {
	run := strategyRun{name: contact.MatchedByNameFromEmail, batches: 1}
	if len(contacts) == 0 {
		return strategyRun{name: contact.MatchedByNameFromEmail}
	}

	// A failed page ends the walk; matches from earlier pages are kept.
	err := s.directory.EachUser(ctx, func(u user.User) error {
		if u.ID == sc.caller.ID || sc.matched[u.ID] {
			return nil
		}
		candidate := utils.NameFromEmail(u.Email)
		if candidate == "" {
			return nil
		}

		bestScore, bestName := 0, ""
		for _, c := range contacts {
			if score := utils.ScoreContactName(candidate, c.Name); score > bestScore {
				bestScore, bestName = score, c.Name
			}
		}
		if bestScore >= utils.MinAcceptedScore {
			sc.add(u, bestName, contact.MatchedByNameFromEmail, bestScore)
		}
		return nil
	})
	if err != nil {
		run.failed++
		s.log.Warnw("Contact scan: user listing failed", "error", err)
	}
	return run
}
