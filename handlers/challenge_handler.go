package handlers

import (
	"context"
	"net/http"
	"time"

	"coliseumAPI/internal/types/challenge"
	"coliseumAPI/internal/types/wallet"
	"coliseumAPI/services"

	"go.uber.org/zap"
)

type ChallengeHandler struct {
	challengeService *services.ChallengeService
	walletService    *services.WalletService
	log              *zap.SugaredLogger
}

func NewChallengeHandler(challengeService *services.ChallengeService, walletService *services.WalletService, log *zap.SugaredLogger) *ChallengeHandler {
	return &ChallengeHandler{challengeService: challengeService, walletService: walletService, log: log}
}

// POST /api/v1/challenges
func (h *ChallengeHandler) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := requireClerkID(w, r)
	if !ok {
		return
	}

	var req challenge.CreateChallengeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	created, err := h.challengeService.CreateChallenge(ctx, clerkID, &req)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to create challenge")
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

// POST /api/v1/challenges/wager-preview
func (h *ChallengeHandler) PreviewWager(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireClerkID(w, r); !ok {
		return
	}

	var req challenge.WagerInput
	if !decodeBody(w, r, &req) {
		return
	}

	preview, err := h.challengeService.PreviewWager(req)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to preview wager")
		return
	}
	respondWithJSON(w, http.StatusOK, preview)
}

// GET /api/v1/challenges
func (h *ChallengeHandler) ListChallenges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := requireClerkID(w, r)
	if !ok {
		return
	}

	list, err := h.challengeService.ListChallenges(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to list challenges")
		return
	}
	respondWithJSON(w, http.StatusOK, list)
}

// POST /api/v1/wallet/connect
func (h *ChallengeHandler) ConnectWallet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := requireClerkID(w, r)
	if !ok {
		return
	}

	var req wallet.ConnectRequest
	if !decodeBody(w, r, &req) {
		return
	}

	connected, err := h.walletService.Connect(ctx, clerkID, req.Address)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to connect wallet")
		return
	}
	respondWithJSON(w, http.StatusOK, connected)
}
