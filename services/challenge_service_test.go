package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"coliseumAPI/internal/docstore"
	"coliseumAPI/internal/types/challenge"
	"coliseumAPI/internal/types/notification"
	"coliseumAPI/internal/types/wallet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBuddies struct{ ok bool }

func (f fakeBuddies) IsBuddy(ctx context.Context, userID, otherID string) (bool, error) {
	return f.ok, nil
}

type fakeWallet struct {
	connected      bool
	connectErr     error
	isConnectedHit int
	connectHit     int
}

func (f *fakeWallet) IsConnected(ctx context.Context, userID string) (bool, error) {
	f.isConnectedHit++
	return f.connected, nil
}

func (f *fakeWallet) Connect(ctx context.Context, userID, address string) (*wallet.Wallet, error) {
	f.connectHit++
	if f.connectErr != nil {
		return nil, f.connectErr
	}
	f.connected = true
	return &wallet.Wallet{Address: address, Connected: true}, nil
}

type challengeFixture struct {
	store  *docstore.MemoryStore
	wallet *fakeWallet
	events *recordingPublisher
	svc    *ChallengeService
}

func newChallengeFixture(t *testing.T, buddies bool) *challengeFixture {
	t.Helper()
	store := docstore.NewMemoryStore()
	seedUser(t, store, "alice", "Alice", "alice@example.com", "")
	seedUser(t, store, "bob", "Bob", "bob@example.com", "")

	f := &challengeFixture{store: store, wallet: &fakeWallet{}, events: &recordingPublisher{}}
	f.svc = NewChallengeService(store, NewUserService(store, testLogger()), fakeBuddies{ok: buddies}, f.wallet, f.events, testLogger())
	f.svc.now = func() time.Time { return baseTime }
	return f
}

func TestCreateFitnessChallenge(t *testing.T) {
	f := newChallengeFixture(t, true)

	c, err := f.svc.CreateChallenge(context.Background(), "alice", &challenge.CreateChallengeRequest{
		ToUserID:    "bob",
		Description: "  100 pushups before Friday ",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "alice", c.From)
	assert.Equal(t, "bob", c.To)
	assert.Equal(t, "100 pushups before Friday", c.Description)
	assert.Equal(t, challenge.DefaultReward, c.Reward)
	assert.Equal(t, challenge.StatusPending, c.Status)
	assert.Equal(t, challenge.TypeFitness, c.Type)
	assert.Nil(t, c.Wager)
	assert.Equal(t, baseTime.Add(7*24*time.Hour), c.DueDate)
	assert.Zero(t, f.wallet.isConnectedHit, "fitness challenges never touch the wallet")

	events := f.events.Events()
	require.Len(t, events, 1)
	assert.Equal(t, notification.TypeChallenge, events[0].Type)
	assert.Equal(t, "bob", events[0].RecipientID)
	assert.Equal(t, "Alice", events[0].SenderName)
	assert.Equal(t, "100 pushups before Friday", events[0].Text)
}

func TestCreateChallengeRejectsBeforePersistence(t *testing.T) {
	f := newChallengeFixture(t, true)
	ctx := context.Background()

	_, err := f.svc.CreateChallenge(ctx, "alice", &challenge.CreateChallengeRequest{ToUserID: "bob", Description: " "})
	assert.ErrorIs(t, err, ErrEmptyDescription)

	_, err = f.svc.CreateChallenge(ctx, "alice", &challenge.CreateChallengeRequest{ToUserID: "alice", Description: "run"})
	assert.ErrorIs(t, err, ErrInvalidRecipient)

	for _, amount := range []challenge.Amount{"0", "-5", "1001", "abc", ""} {
		_, err := f.svc.CreateChallenge(ctx, "alice", &challenge.CreateChallengeRequest{
			ToUserID:    "bob",
			Description: "plank-off",
			Wager:       &challenge.WagerInput{Amount: amount, Token: challenge.TokenSOL},
		})
		assert.ErrorIs(t, err, challenge.ErrInvalidWager, "amount %q", amount)
	}

	assert.Equal(t, 0, f.store.Count(challengesCollection))
	assert.Zero(t, f.wallet.isConnectedHit)
	assert.Zero(t, f.wallet.connectHit)
	assert.Empty(t, f.events.Events())
}

func TestCreateChallengeRequiresBuddy(t *testing.T) {
	f := newChallengeFixture(t, false)

	_, err := f.svc.CreateChallenge(context.Background(), "alice", &challenge.CreateChallengeRequest{
		ToUserID:    "bob",
		Description: "run 5k",
	})
	assert.ErrorIs(t, err, ErrNotBuddies)
	assert.Equal(t, 0, f.store.Count(challengesCollection))
}

func TestCreateCryptoChallengeConnectsWalletAndRetriesOnce(t *testing.T) {
	f := newChallengeFixture(t, true)

	c, err := f.svc.CreateChallenge(context.Background(), "alice", &challenge.CreateChallengeRequest{
		ToUserID:      "bob",
		Description:   "sub 25 minute 5k",
		Reward:        "Loser buys smoothies",
		Wager:         &challenge.WagerInput{Amount: "100", Token: "sol"},
		WalletAddress: "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, f.wallet.connectHit)
	assert.Equal(t, 2, f.wallet.isConnectedHit)
	assert.Equal(t, 1, f.store.Count(challengesCollection))

	assert.Equal(t, challenge.TypeCrypto, c.Type)
	assert.Equal(t, "Loser buys smoothies", c.Reward)
	require.NotNil(t, c.Wager)
	assert.Equal(t, challenge.TokenSOL, c.Wager.Token)
	assert.Equal(t, 7, c.Wager.ExpiryDays)
	assert.InDelta(t, 20.0, c.Wager.BonusPool, 1e-9)
	assert.InDelta(t, 5.0, c.Wager.PlatformFee, 1e-9)
	assert.InDelta(t, 215.0, c.Wager.WinnerPayout, 1e-9)
}

func TestCreateCryptoChallengeWithConnectedWallet(t *testing.T) {
	f := newChallengeFixture(t, true)
	f.wallet.connected = true

	_, err := f.svc.CreateChallenge(context.Background(), "alice", &challenge.CreateChallengeRequest{
		ToUserID:    "bob",
		Description: "most steps this week",
		Wager:       &challenge.WagerInput{Amount: "1", Token: challenge.TokenUSDC, ExpiryDays: 30},
	})
	require.NoError(t, err)
	assert.Zero(t, f.wallet.connectHit)
	assert.Equal(t, 1, f.wallet.isConnectedHit)
}

func TestCreateCryptoChallengeConnectFailure(t *testing.T) {
	f := newChallengeFixture(t, true)
	f.wallet.connectErr = errors.New("user closed the wallet prompt")

	_, err := f.svc.CreateChallenge(context.Background(), "alice", &challenge.CreateChallengeRequest{
		ToUserID:    "bob",
		Description: "max deadlift",
		Wager:       &challenge.WagerInput{Amount: "50", Token: challenge.TokenBONK},
	})
	assert.ErrorIs(t, err, ErrWalletNotConnected)
	assert.Equal(t, 1, f.wallet.connectHit)
	assert.Equal(t, 0, f.store.Count(challengesCollection))
	assert.Empty(t, f.events.Events())
}

type failingNotifier struct{ calls chan notification.Event }

func (f failingNotifier) Notify(ctx context.Context, ev notification.Event) error {
	f.calls <- ev
	return errors.New("fcm unavailable")
}

func TestChallengeSurvivesNotificationFailure(t *testing.T) {
	store := docstore.NewMemoryStore()
	seedUser(t, store, "alice", "Alice", "alice@example.com", "")
	seedUser(t, store, "bob", "Bob", "bob@example.com", "")

	notifier := failingNotifier{calls: make(chan notification.Event, 1)}
	dispatcher := NewNotificationDispatcher(notifier, 1, testLogger())
	svc := NewChallengeService(store, NewUserService(store, testLogger()), fakeBuddies{ok: true}, &fakeWallet{}, dispatcher, testLogger())

	c, err := svc.CreateChallenge(context.Background(), "alice", &challenge.CreateChallengeRequest{ToUserID: "bob", Description: "burpees"})
	require.NoError(t, err)
	dispatcher.Stop()

	ev := <-notifier.calls
	assert.Equal(t, notification.TypeChallenge, ev.Type)

	_, err = store.Get(context.Background(), challengesCollection, c.ID)
	assert.NoError(t, err)
}

func TestListChallengesNewestFirst(t *testing.T) {
	f := newChallengeFixture(t, true)
	ctx := context.Background()
	seedUser(t, f.store, "carol", "Carol", "carol@example.com", "")

	times := []time.Time{baseTime, baseTime.Add(time.Hour), baseTime.Add(2 * time.Hour)}
	pairs := [][2]string{{"alice", "bob"}, {"bob", "alice"}, {"bob", "carol"}}
	for i, pair := range pairs {
		f.svc.now = func() time.Time { return times[i] }
		_, err := f.svc.CreateChallenge(ctx, pair[0], &challenge.CreateChallengeRequest{ToUserID: pair[1], Description: "squats"})
		require.NoError(t, err)
	}

	list, err := f.svc.ListChallenges(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "bob", list[0].From)
	assert.Equal(t, "alice", list[1].From)
}

func TestPreviewWagerMatchesCreation(t *testing.T) {
	f := newChallengeFixture(t, true)

	preview, err := f.svc.PreviewWager(challenge.WagerInput{Amount: "100", Token: challenge.TokenUSDC})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, preview.BonusPool, 1e-9)
	assert.InDelta(t, 195.0, preview.WinnerPayout, 1e-9)
}
