package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"coliseumAPI/internal/docstore"
	"coliseumAPI/internal/types/wallet"

	"github.com/mr-tron/base58"
	"go.uber.org/zap"
)

const walletsCollection = "wallets"

// WalletService is the funding channel a crypto wager requires.
type WalletService struct {
	store docstore.Store
	log   *zap.SugaredLogger
	now   func() time.Time
}

func NewWalletService(store docstore.Store, log *zap.SugaredLogger) *WalletService {
	return &WalletService{store: store, log: log, now: time.Now}
}

func (s *WalletService) IsConnected(ctx context.Context, userID string) (bool, error) {
	w, err := s.GetWallet(ctx, userID)
	if errors.Is(err, docstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return w.Connected && w.Address != "", nil
}

func (s *WalletService) GetWallet(ctx context.Context, userID string) (*wallet.Wallet, error) {
	snap, err := s.store.Get(ctx, walletsCollection, userID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	var w wallet.Wallet
	if err := snap.DataTo(&w); err != nil {
		return nil, fmt.Errorf("failed to decode wallet: %w", err)
	}
	return &w, nil
}

// Connect records a Solana style base58 address for the user.
func (s *WalletService) Connect(ctx context.Context, userID, address string) (*wallet.Wallet, error) {
	address = strings.TrimSpace(address)
	if !ValidWalletAddress(address) {
		return nil, ErrInvalidWalletAddress
	}

	w := &wallet.Wallet{Address: address, Connected: true, ConnectedAt: s.now()}
	if err := s.store.Set(ctx, walletsCollection, userID, w); err != nil {
		return nil, fmt.Errorf("failed to connect wallet: %w", err)
	}
	s.log.Infow("Wallet connected", "user", userID)
	return w, nil
}

// ValidWalletAddress reports whether address decodes as base58 to a 32 byte public key.
func ValidWalletAddress(address string) bool {
	key, err := base58.Decode(address)
	return err == nil && len(key) == 32
}
