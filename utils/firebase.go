// utils/firebase.go
package utils

import (
	"context"
	"log"

	"servswap/config"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

var (
	FirebaseApp     *firebase.App
	FirebaseAuth    *auth.Client
	FCMClient       *messaging.Client
	FirestoreClient *firestore.Client
)

// FirebaseInit initializes the Firebase App with its Auth and Messaging clients,
// plus Firestore when realtime mirroring is enabled.
func FirebaseInit() {
	ctx := context.Background()
	opt := option.WithCredentialsFile(config.AppConfig.FirebaseCredentialsPath)

	var fbConfig *firebase.Config
	projectID := config.FirebaseProjectID()
	if projectID != "" || config.AppConfig.FirebaseBucket != "" {
		fbConfig = &firebase.Config{
			ProjectID:     projectID,
			StorageBucket: config.AppConfig.FirebaseBucket,
		}
	}

	app, err := firebase.NewApp(ctx, fbConfig, opt)
	if err != nil {
		log.Fatalf("firebase: error initializing app: %v", err)
	}
	FirebaseApp = app

	authClient, err := app.Auth(ctx)
	if err != nil {
		log.Fatalf("firebase: error getting Auth client: %v", err)
	}
	FirebaseAuth = authClient

	fcm, err := app.Messaging(ctx)
	if err != nil {
		log.Fatalf("firebase: error getting Messaging client: %v", err)
	}
	FCMClient = fcm

	if config.AppConfig.FirestoreEnabled {
		fs, err := app.Firestore(ctx)
		if err != nil {
			log.Fatalf("firebase: error getting Firestore client: %v", err)
		}
		FirestoreClient = fs
	}
}

// FirebaseClose releases long-lived Firebase connections.
func FirebaseClose() {
	if FirestoreClient != nil {
		_ = FirestoreClient.Close()
	}
}
