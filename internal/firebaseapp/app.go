// Package firebaseapp builds the single firebase.App shared by Firestore, Storage
// and Messaging.
package firebaseapp

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"coliseumAPI/internal/config"

	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// New prefers base64 credentials from the environment and falls back to a
// service account file. With neither, application default credentials are used.
func New(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*firebase.App, error) {
	var opts []option.ClientOption

	switch {
	case cfg.FirebaseCredentialsJSON != "":
		decoded, err := base64.StdEncoding.DecodeString(cfg.FirebaseCredentialsJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to decode FIREBASE_CREDENTIALS_JSON: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON(decoded))
		log.Info("Firebase: using credentials from FIREBASE_CREDENTIALS_JSON")
	case cfg.FirebaseCredentialsFile != "":
		if _, err := os.Stat(cfg.FirebaseCredentialsFile); err != nil {
			return nil, fmt.Errorf("firebase credentials file %s: %w", cfg.FirebaseCredentialsFile, err)
		}
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentialsFile))
		log.Infow("Firebase: using credentials file", "path", cfg.FirebaseCredentialsFile)
	default:
		log.Warn("Firebase: no explicit credentials, falling back to application default")
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.FirebaseProjectID,
		StorageBucket: cfg.StorageBucket,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	return app, nil
}
