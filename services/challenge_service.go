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
	"coliseumAPI/internal/types/challenge"
	"coliseumAPI/internal/types/notification"
	"coliseumAPI/internal/types/wallet"

	"go.uber.org/zap"
)

const challengesCollection = "challenges"

type BuddyChecker interface {
	IsBuddy(ctx context.Context, userID, otherID string) (bool, error)
}

type WalletConnector interface {
	IsConnected(ctx context.Context, userID string) (bool, error)
	Connect(ctx context.Context, userID, address string) (*wallet.Wallet, error)
}

type ChallengeService struct {
	store   docstore.Store
	users   UserLookup
	buddies BuddyChecker
	wallets WalletConnector
	events  EventPublisher
	log     *zap.SugaredLogger
	now     func() time.Time
}

func NewChallengeService(
	store docstore.Store,
	users UserLookup,
	buddies BuddyChecker,
	wallets WalletConnector,
	events EventPublisher,
	log *zap.SugaredLogger,
) *ChallengeService {
	return &ChallengeService{
		store:   store,
		users:   users,
		buddies: buddies,
		wallets: wallets,
		events:  events,
		log:     log,
		now:     time.Now,
	}
}

// PreviewWager derives the figures shown before a crypto challenge is sent. It uses
// the same computation as CreateChallenge.
func (s *ChallengeService) PreviewWager(in challenge.WagerInput) (*challenge.CryptoWager, error) {
	return challenge.NewCryptoWager(in)
}

// CreateChallenge validates the input, requires a buddy relationship and, for
// crypto challenges, a connected wallet. When the wallet is missing it connects
// the supplied address and retries the creation exactly once.
func (s *ChallengeService) CreateChallenge(ctx context.Context, callerID string, req *challenge.CreateChallengeRequest) (*challenge.Challenge, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, ErrEmptyDescription
	}
	toUserID := strings.TrimSpace(req.ToUserID)
	if toUserID == "" || toUserID == callerID {
		return nil, ErrInvalidRecipient
	}

	var wager *challenge.CryptoWager
	if req.Wager != nil {
		w, err := challenge.NewCryptoWager(*req.Wager)
		if err != nil {
			return nil, err
		}
		wager = w
	}

	ok, err := s.buddies.IsBuddy(ctx, callerID, toUserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotBuddies
	}

	from, err := s.users.GetUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	to, err := s.users.GetUser(ctx, toUserID)
	if err != nil {
		return nil, err
	}

	reward := strings.TrimSpace(req.Reward)
	if reward == "" {
		reward = challenge.DefaultReward
	}

	createdAt := s.now()
	c := &challenge.Challenge{
		From:        from.ID,
		FromName:    from.Name(),
		To:          to.ID,
		ToName:      to.Name(),
		Description: description,
		Reward:      reward,
		Status:      challenge.StatusPending,
		Type:        challenge.TypeFitness,
		CreatedAt:   createdAt,
		DueDate:     createdAt.Add(challenge.DueHorizon),
	}
	if wager != nil {
		c.Type = challenge.TypeCrypto
		c.Wager = wager
	}

	err = s.createOnce(ctx, c)
	if errors.Is(err, ErrWalletNotConnected) {
		if _, connErr := s.wallets.Connect(ctx, callerID, req.WalletAddress); connErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrWalletNotConnected, connErr)
		}
		err = s.createOnce(ctx, c)
	}
	if err != nil {
		return nil, err
	}

	metrics.ChallengesCreated.WithLabelValues(string(c.Type)).Inc()
	s.log.Infow("Challenge created", "id", c.ID, "from", c.From, "to", c.To, "type", c.Type)

	s.events.Publish(ctx, notification.Event{
		Type:        notification.TypeChallenge,
		RecipientID: c.To,
		SenderName:  c.FromName,
		Text:        c.Description,
	})
	return c, nil
}

func (s *ChallengeService) createOnce(ctx context.Context, c *challenge.Challenge) error {
	if c.Type == challenge.TypeCrypto {
		connected, err := s.wallets.IsConnected(ctx, c.From)
		if err != nil {
			return err
		}
		if !connected {
			return ErrWalletNotConnected
		}
	}

	id, err := s.store.Create(ctx, challengesCollection, c)
	if err != nil {
		return fmt.Errorf("failed to create challenge: %w", err)
	}
	c.ID = id
	return nil
}

// ListChallenges returns challenges the user sent or received, newest first.
func (s *ChallengeService) ListChallenges(ctx context.Context, userID string) ([]challenge.Challenge, error) {
	seen := make(map[string]bool)
	var out []challenge.Challenge

	for _, field := range []string{"from", "to"} {
		snaps, err := s.store.Query(ctx, docstore.Query{
			Collection: challengesCollection,
			Filters:    []docstore.Filter{docstore.Eq(field, userID)},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list challenges: %w", err)
		}
		for _, snap := range snaps {
			if seen[snap.ID()] {
				continue
			}
			var c challenge.Challenge
			if err := snap.DataTo(&c); err != nil {
				return nil, fmt.Errorf("failed to decode challenge %s: %w", snap.ID(), err)
			}
			c.ID = snap.ID()
			seen[c.ID] = true
			out = append(out, c)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if out == nil {
		out = []challenge.Challenge{}
	}
	return out, nil
}
