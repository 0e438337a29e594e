package config

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/firestore"
	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"civiclens-be/logger"
)

// FirebaseClients bundles the admin SDK handles the server uses.
// Bucket is nil when no storage bucket is configured.
type FirebaseClients struct {
	App       *firebase.App
	Auth      *auth.Client
	Firestore *firestore.Client
	Bucket    *gcs.BucketHandle
}

// CredentialOption picks the credential source in order: service-account JSON,
// split project/email/key variables, credentials file, application default.
func (f FirebaseConfig) CredentialOption() (option.ClientOption, string, error) {
	switch {
	case f.ServiceAccountJSON != "":
		return option.WithCredentialsJSON([]byte(f.ServiceAccountJSON)), "service-account-json", nil
	case f.ClientEmail != "" && f.PrivateKey != "":
		if f.ProjectID == "" {
			return nil, "", fmt.Errorf("FIREBASE_PROJECT_ID is required with FIREBASE_CLIENT_EMAIL")
		}
		raw, err := json.Marshal(map[string]string{
			"type":         "service_account",
			"project_id":   f.ProjectID,
			"client_email": f.ClientEmail,
			"private_key":  f.PrivateKey,
			"token_uri":    "https://oauth2.googleapis.com/token",
		})
		if err != nil {
			return nil, "", err
		}
		return option.WithCredentialsJSON(raw), "split-env", nil
	case f.CredentialsFile != "":
		return option.WithCredentialsFile(f.CredentialsFile), "credentials-file", nil
	}
	return nil, "application-default", nil
}

// NewFirebase initializes the admin SDK. Storage is optional; Firestore and Auth are not.
func NewFirebase(ctx context.Context, cfg FirebaseConfig) (*FirebaseClients, error) {
	credOpt, source, err := cfg.CredentialOption()
	if err != nil {
		return nil, err
	}
	var opts []option.ClientOption
	if credOpt != nil {
		opts = append(opts, credOpt)
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.ProjectID,
		StorageBucket: cfg.StorageBucket,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth: %w", err)
	}

	firestoreClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore: %w", err)
	}

	clients := &FirebaseClients{
		App:       app,
		Auth:      authClient,
		Firestore: firestoreClient,
	}

	if cfg.StorageBucket != "" {
		storageClient, err := app.Storage(ctx)
		if err != nil {
			_ = firestoreClient.Close()
			return nil, fmt.Errorf("firebase storage: %w", err)
		}
		if clients.Bucket, err = storageClient.DefaultBucket(); err != nil {
			_ = firestoreClient.Close()
			return nil, fmt.Errorf("firebase storage bucket: %w", err)
		}
	}

	logger.Log.WithFields(logrus.Fields{
		"projectId":   cfg.ProjectID,
		"bucket":      cfg.StorageBucket,
		"credentials": source,
	}).Info("Firebase initialized")

	return clients, nil
}

func (f *FirebaseClients) Close() error {
	return f.Firestore.Close()
}
