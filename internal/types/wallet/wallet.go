package wallet

import "time"

// Wallet is the wallets/{userId} document.
type Wallet struct {
	Address     string    `json:"address" firestore:"address"`
	Connected   bool      `json:"connected" firestore:"connected"`
	ConnectedAt time.Time `json:"connectedAt" firestore:"connectedAt"`
}

type ConnectRequest struct {
	Address string `json:"address"`
}
