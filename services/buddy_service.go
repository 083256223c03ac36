package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"coliseumAPI/internal/docstore"
	"coliseumAPI/internal/metrics"
	"coliseumAPI/internal/types/buddy"
	"coliseumAPI/internal/types/notification"
	"coliseumAPI/internal/user"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	buddyRequestsCollection = "buddy_requests"

	maxEncouragementLength = 280
)

func buddiesCollection(userID string) string {
	return usersCollection + "/" + userID + "/buddies"
}

// UserLookup resolves a user id to its profile document.
type UserLookup interface {
	GetUser(ctx context.Context, userID string) (*user.User, error)
}

// EventPublisher receives post-commit facts. Publish never fails the caller.
type EventPublisher interface {
	Publish(ctx context.Context, ev notification.Event)
}

type BuddyService struct {
	store  docstore.Store
	users  UserLookup
	events EventPublisher
	log    *zap.SugaredLogger
	now    func() time.Time
}

func NewBuddyService(store docstore.Store, users UserLookup, events EventPublisher, log *zap.SugaredLogger) *BuddyService {
	return &BuddyService{store: store, users: users, events: events, log: log, now: time.Now}
}

// SendRequest creates a pending request from the caller to req.ToUserID and
// notifies the recipient once it is stored.
func (s *BuddyService) SendRequest(ctx context.Context, fromUserID string, req *buddy.SendRequest) (*buddy.Request, error) {
	toUserID := strings.TrimSpace(req.ToUserID)
	if toUserID == "" {
		return nil, ErrInvalidRecipient
	}
	if toUserID == fromUserID {
		return nil, ErrSelfRequest
	}

	source := req.Source
	if source != buddy.MatchedByContactScan {
		source = buddy.MatchedByBuddyRequest
	}

	from, err := s.users.GetUser(ctx, fromUserID)
	if err != nil {
		return nil, err
	}
	to, err := s.users.GetUser(ctx, toUserID)
	if err != nil {
		return nil, err
	}

	already, err := s.IsBuddy(ctx, fromUserID, toUserID)
	if err != nil {
		return nil, err
	}
	if already {
		metrics.BuddyRequests.WithLabelValues("rejected").Inc()
		return nil, ErrAlreadyBuddies
	}

	pending, err := s.pendingBetween(ctx, fromUserID, toUserID)
	if err != nil {
		return nil, err
	}
	if pending {
		metrics.BuddyRequests.WithLabelValues("rejected").Inc()
		return nil, ErrRequestAlreadyPending
	}

	request := &buddy.Request{
		FromUserID:    from.ID,
		FromUserName:  from.Name(),
		FromUserEmail: from.Email,
		ToUserID:      to.ID,
		ToUserName:    to.Name(),
		ToUserEmail:   to.Email,
		Status:        buddy.StatusPending,
		Source:        source,
		CreatedAt:     s.now(),
	}

	id, err := s.store.Create(ctx, buddyRequestsCollection, request)
	if err != nil {
		return nil, fmt.Errorf("failed to create buddy request: %w", err)
	}
	request.ID = id
	metrics.BuddyRequests.WithLabelValues("sent").Inc()

	s.events.Publish(ctx, notification.Event{
		Type:        notification.TypeBuddyRequest,
		RecipientID: to.ID,
		SenderName:  request.FromUserName,
	})

	return request, nil
}

// pendingBetween checks both directions so crossed requests are also suppressed.
func (s *BuddyService) pendingBetween(ctx context.Context, a, b string) (bool, error) {
	for _, pair := range [][2]string{{a, b}, {b, a}} {
		snaps, err := s.store.Query(ctx, docstore.Query{
			Collection: buddyRequestsCollection,
			Filters: []docstore.Filter{
				docstore.Eq("fromUserId", pair[0]),
				docstore.Eq("toUserId", pair[1]),
				docstore.Eq("status", string(buddy.StatusPending)),
			},
			Limit: 1,
		})
		if err != nil {
			return false, fmt.Errorf("failed to check pending requests: %w", err)
		}
		if len(snaps) > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (s *BuddyService) getRequest(ctx context.Context, requestID string) (*buddy.Request, error) {
	snap, err := s.store.Get(ctx, buddyRequestsCollection, requestID)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get buddy request: %w", err)
	}
	return decodeRequest(snap)
}

func decodeRequest(snap docstore.Snapshot) (*buddy.Request, error) {
	var r buddy.Request
	if err := snap.DataTo(&r); err != nil {
		return nil, fmt.Errorf("failed to decode buddy request %s: %w", snap.ID(), err)
	}
	r.ID = snap.ID()
	return &r, nil
}

// Respond answers a pending request. Only the recipient may answer and an answered
// request is never changed again, even under concurrent answers. Accepting materializes the requester in the
// accepter's own buddies collection.
func (s *BuddyService) Respond(ctx context.Context, callerID, requestID string, accept bool) (*buddy.Request, error) {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.ToUserID != callerID {
		return nil, ErrNotRecipient
	}
	if request.Status != buddy.StatusPending {
		return request, ErrRequestNotPending
	}

	status := buddy.StatusDeclined
	if accept {
		status = buddy.StatusAccepted
	}
	respondedAt := s.now()

	// Guarded on the pending status so concurrent answers cannot both land.
	err = s.store.UpdateIf(ctx, buddyRequestsCollection, request.ID,
		docstore.Eq("status", string(buddy.StatusPending)),
		map[string]any{
			"status":      string(status),
			"respondedAt": respondedAt,
		})
	if errors.Is(err, docstore.ErrPreconditionFailed) {
		current, getErr := s.getRequest(ctx, request.ID)
		if getErr != nil {
			return nil, getErr
		}
		return current, ErrRequestNotPending
	}
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update buddy request: %w", err)
	}
	request.Status = status
	request.RespondedAt = &respondedAt
	metrics.BuddyRequests.WithLabelValues(string(status)).Inc()

	if accept {
		confirmed := buddy.Confirmed{
			BuddyUserID: request.FromUserID,
			Name:        request.FromUserName,
			Email:       request.FromUserEmail,
			AddedAt:     respondedAt,
			MatchedBy:   request.Source,
		}
		if confirmed.MatchedBy == "" {
			confirmed.MatchedBy = buddy.MatchedByBuddyRequest
		}
		// The accepted request already records the relationship, so listing still
		// finds it if this write is lost.
		if err := s.store.Set(ctx, buddiesCollection(callerID), request.FromUserID, confirmed); err != nil {
			s.log.Errorw("Respond: failed to materialize buddy",
				"request", request.ID, "owner", callerID, "buddy", request.FromUserID, "error", err)
		}
	}

	s.events.Publish(ctx, notification.Event{
		Type:        notification.TypeBuddyRequestResponse,
		RecipientID: request.FromUserID,
		SenderName:  request.ToUserName,
		Accepted:    accept,
	})

	return request, nil
}

func (s *BuddyService) queryRequests(ctx context.Context, field, userID string, status buddy.RequestStatus) ([]buddy.Request, error) {
	snaps, err := s.store.Query(ctx, docstore.Query{
		Collection: buddyRequestsCollection,
		Filters: []docstore.Filter{
			docstore.Eq(field, userID),
			docstore.Eq("status", string(status)),
		},
		OrderByDesc: "createdAt",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query buddy requests: %w", err)
	}

	requests := make([]buddy.Request, 0, len(snaps))
	for _, snap := range snaps {
		r, err := decodeRequest(snap)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *r)
	}
	return requests, nil
}

// ListConfirmed unions the caller's own buddies collection with accepted requests
// in either direction, one entry per counterpart, sorted by name.
func (s *BuddyService) ListConfirmed(ctx context.Context, userID string) ([]buddy.Confirmed, error) {
	snaps, err := s.store.Query(ctx, docstore.Query{Collection: buddiesCollection(userID)})
	if err != nil {
		return nil, fmt.Errorf("failed to list buddies: %w", err)
	}

	seen := make(map[string]bool)
	confirmed := make([]buddy.Confirmed, 0, len(snaps))
	for _, snap := range snaps {
		var c buddy.Confirmed
		if err := snap.DataTo(&c); err != nil {
			return nil, fmt.Errorf("failed to decode buddy %s: %w", snap.ID(), err)
		}
		if c.BuddyUserID == "" {
			c.BuddyUserID = snap.ID()
		}
		if seen[c.BuddyUserID] {
			continue
		}
		seen[c.BuddyUserID] = true
		confirmed = append(confirmed, c)
	}

	for _, field := range []string{"fromUserId", "toUserId"} {
		requests, err := s.queryRequests(ctx, field, userID, buddy.StatusAccepted)
		if err != nil {
			return nil, err
		}
		for _, r := range requests {
			id, name, email := r.Counterpart(userID)
			if seen[id] {
				continue
			}
			seen[id] = true

			addedAt := r.CreatedAt
			if r.RespondedAt != nil {
				addedAt = *r.RespondedAt
			}
			matchedBy := r.Source
			if matchedBy == "" {
				matchedBy = buddy.MatchedByBuddyRequest
			}
			confirmed = append(confirmed, buddy.Confirmed{
				BuddyUserID: id,
				Name:        name,
				Email:       email,
				AddedAt:     addedAt,
				MatchedBy:   matchedBy,
			})
		}
	}

	sort.SliceStable(confirmed, func(i, j int) bool {
		return strings.ToLower(confirmed[i].Name) < strings.ToLower(confirmed[j].Name)
	})
	return confirmed, nil
}

// ListPending returns the caller's outgoing requests still awaiting an answer.
func (s *BuddyService) ListPending(ctx context.Context, userID string) ([]buddy.Request, error) {
	return s.queryRequests(ctx, "fromUserId", userID, buddy.StatusPending)
}

// ListIncoming returns requests waiting for the caller to answer.
func (s *BuddyService) ListIncoming(ctx context.Context, userID string) ([]buddy.Request, error) {
	return s.queryRequests(ctx, "toUserId", userID, buddy.StatusPending)
}

// LoadLists fetches the three lists concurrently. Any failure fails the load.
func (s *BuddyService) LoadLists(ctx context.Context, userID string) (*buddy.Lists, error) {
	lists := &buddy.Lists{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		confirmed, err := s.ListConfirmed(gctx, userID)
		lists.Confirmed = confirmed
		return err
	})
	g.Go(func() error {
		pending, err := s.ListPending(gctx, userID)
		lists.Pending = pending
		return err
	})
	g.Go(func() error {
		incoming, err := s.ListIncoming(gctx, userID)
		lists.Incoming = incoming
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lists, nil
}

// IsBuddy checks the owner's buddies collection and accepted requests in both
// directions, since each side only materializes its own copy.
func (s *BuddyService) IsBuddy(ctx context.Context, userID, otherID string) (bool, error) {
	_, err := s.store.Get(ctx, buddiesCollection(userID), otherID)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, docstore.ErrNotFound) {
		return false, fmt.Errorf("failed to check buddy: %w", err)
	}

	for _, pair := range [][2]string{{userID, otherID}, {otherID, userID}} {
		snaps, err := s.store.Query(ctx, docstore.Query{
			Collection: buddyRequestsCollection,
			Filters: []docstore.Filter{
				docstore.Eq("fromUserId", pair[0]),
				docstore.Eq("toUserId", pair[1]),
				docstore.Eq("status", string(buddy.StatusAccepted)),
			},
			Limit: 1,
		})
		if err != nil {
			return false, fmt.Errorf("failed to check buddy: %w", err)
		}
		if len(snaps) > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (s *BuddyService) Encourage(ctx context.Context, fromUserID, buddyUserID, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return ErrEmptyMessage
	}
	if len([]rune(message)) > maxEncouragementLength {
		return fmt.Errorf("%w: at most %d characters", ErrMessageTooLong, maxEncouragementLength)
	}

	ok, err := s.IsBuddy(ctx, fromUserID, buddyUserID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotBuddies
	}

	from, err := s.users.GetUser(ctx, fromUserID)
	if err != nil {
		return err
	}

	s.events.Publish(ctx, notification.Event{
		Type:        notification.TypeEncouragement,
		RecipientID: buddyUserID,
		SenderName:  from.Name(),
		Text:        message,
	})
	return nil
}
