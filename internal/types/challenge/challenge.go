package challenge

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusExpired   Status = "expired"
	StatusDeclined  Status = "declined"
)

type Type string

const (
	TypeFitness Type = "fitness"
	TypeCrypto  Type = "crypto"
)

type Token string

const (
	TokenUSDC Token = "USDC"
	TokenSOL  Token = "SOL"
	TokenBONK Token = "BONK"
)

const (
	// DueHorizon is how long the recipient has to complete a challenge.
	DueHorizon = 7 * 24 * time.Hour

	DefaultReward     = "Bragging rights"
	DefaultExpiryDays = 7
)

var (
	ErrInvalidWager = errors.New("invalid wager")

	minWager    = decimal.NewFromInt(1)
	maxWager    = decimal.NewFromInt(1000)
	platformFee = decimal.RequireFromString("0.025")

	tokenBonus = map[Token]decimal.Decimal{
		TokenUSDC: decimal.Zero,
		TokenSOL:  decimal.RequireFromString("0.10"),
		TokenBONK: decimal.RequireFromString("0.25"),
	}

	allowedExpiryDays = map[int]bool{1: true, 3: true, 7: true, 14: true, 30: true}

	plainAmount = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)
)

const maxAmountLength = 16

// Challenge is the challenges/{id} document.
type Challenge struct {
	ID          string       `json:"id" firestore:"-"`
	From        string       `json:"from" firestore:"from"`
	FromName    string       `json:"fromName" firestore:"fromName"`
	To          string       `json:"to" firestore:"to"`
	ToName      string       `json:"toName" firestore:"toName"`
	Description string       `json:"challenge" firestore:"challenge"`
	Reward      string       `json:"reward" firestore:"reward"`
	Status      Status       `json:"status" firestore:"status"`
	Type        Type         `json:"type" firestore:"type"`
	Wager       *CryptoWager `json:"wager,omitempty" firestore:"wager,omitempty"`
	CreatedAt   time.Time    `json:"createdAt" firestore:"createdAt"`
	DueDate     time.Time    `json:"dueDate" firestore:"dueDate"`
}

// CryptoWager is embedded in crypto challenges. Only Amount, Token and ExpiryDays are
// inputs; the rest is always recomputed by NewCryptoWager.
type CryptoWager struct {
	Amount       float64 `json:"amount" firestore:"amount"`
	Token        Token   `json:"token" firestore:"token"`
	ExpiryDays   int     `json:"expiryDays" firestore:"expiryDays"`
	BonusPercent float64 `json:"bonusPercent" firestore:"bonusPercent"`
	TotalPot     float64 `json:"totalPot" firestore:"totalPot"`
	PlatformFee  float64 `json:"platformFee" firestore:"platformFee"`
	BonusPool    float64 `json:"bonusPool" firestore:"bonusPool"`
	WinnerPayout float64 `json:"winnerPayout" firestore:"winnerPayout"`
}

// Amount is the raw wager amount as typed by the user. It accepts both JSON numbers
// and strings so that non-numeric input reaches validation instead of failing decode.
type Amount string

func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a number or string")
	}
	*a = Amount(n.String())
	return nil
}

type WagerInput struct {
	Amount     Amount `json:"amount"`
	Token      Token  `json:"token"`
	ExpiryDays int    `json:"expiryDays,omitempty"`
}

type CreateChallengeRequest struct {
	ToUserID      string      `json:"toUserId"`
	Description   string      `json:"challenge"`
	Reward        string      `json:"reward,omitempty"`
	Wager         *WagerInput `json:"wager,omitempty"`
	WalletAddress string      `json:"walletAddress,omitempty"`
}

// BonusPercent returns the fixed bonus share for a supported token.
func BonusPercent(token Token) (decimal.Decimal, bool) {
	pct, ok := tokenBonus[token]
	return pct, ok
}

// ParseAmount validates a raw wager amount against the closed interval [1, 1000].
// Only plain decimals with at most two fractional digits are accepted, so the
// stored amount is exactly the one the figures derive from.
func ParseAmount(raw Amount) (decimal.Decimal, error) {
	value := strings.TrimSpace(string(raw))
	if value == "" {
		return decimal.Zero, fmt.Errorf("%w: amount is required", ErrInvalidWager)
	}
	if len(value) > maxAmountLength || !plainAmount.MatchString(value) {
		return decimal.Zero, fmt.Errorf("%w: amount %q is not a number with at most 2 decimals", ErrInvalidWager, value)
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %q is not a number", ErrInvalidWager, value)
	}
	if amount.LessThan(minWager) || amount.GreaterThan(maxWager) {
		return decimal.Zero, fmt.Errorf("%w: amount must be between %s and %s", ErrInvalidWager, minWager, maxWager)
	}
	return amount, nil
}

// NewCryptoWager validates the input and derives pot, fee, bonus and payout from
// amount and token alone.
func NewCryptoWager(in WagerInput) (*CryptoWager, error) {
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return nil, err
	}

	token := Token(strings.ToUpper(strings.TrimSpace(string(in.Token))))
	bonus, ok := BonusPercent(token)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported token %q", ErrInvalidWager, in.Token)
	}

	expiry := in.ExpiryDays
	if expiry == 0 {
		expiry = DefaultExpiryDays
	}
	if !allowedExpiryDays[expiry] {
		return nil, fmt.Errorf("%w: expiryDays must be one of 1, 3, 7, 14 or 30", ErrInvalidWager)
	}

	totalPot := amount.Mul(decimal.NewFromInt(2))
	fee := totalPot.Mul(platformFee)
	bonusPool := totalPot.Mul(bonus)
	payout := totalPot.Add(bonusPool).Sub(fee)

	return &CryptoWager{
		Amount:       amount.InexactFloat64(),
		Token:        token,
		ExpiryDays:   expiry,
		BonusPercent: bonus.InexactFloat64(),
		TotalPot:     totalPot.Round(2).InexactFloat64(),
		PlatformFee:  fee.Round(2).InexactFloat64(),
		BonusPool:    bonusPool.Round(2).InexactFloat64(),
		WinnerPayout: payout.Round(2).InexactFloat64(),
	}, nil
}
