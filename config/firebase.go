package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// ServiceAccount holds the identifying fields of a Google service account key.
type ServiceAccount struct {
	ClientEmail string `json:"client_email"`
	ProjectID   string `json:"project_id"`
}

// LoadServiceAccount reads a service account JSON key from path.
func LoadServiceAccount(path string) (*ServiceAccount, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account: %w", err)
	}
	var sa ServiceAccount
	if err := json.Unmarshal(raw, &sa); err != nil {
		return nil, fmt.Errorf("parse service account: %w", err)
	}
	if sa.ProjectID == "" {
		return nil, fmt.Errorf("service account %s has no project_id", path)
	}
	return &sa, nil
}

// FirebaseProjectID returns FIREBASE_PROJECT_ID, or the project of the
// credentials file when it is unset. Firestore cannot start without one.
func FirebaseProjectID() string {
	if AppConfig.FirebaseProjectID != "" {
		return AppConfig.FirebaseProjectID
	}
	if AppConfig.FirebaseCredentialsPath == "" {
		return ""
	}
	sa, err := LoadServiceAccount(AppConfig.FirebaseCredentialsPath)
	if err != nil {
		return ""
	}
	return sa.ProjectID
}
