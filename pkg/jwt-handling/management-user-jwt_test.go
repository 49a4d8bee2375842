package jwthandling

import (
	"testing"
	"time"
)

const testSignKey = "test-sign-key"

func TestManagementUserToken(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		token, err := GenerateNewManagementUserToken(time.Minute, "user1", "inst1", false, map[string]string{"surveyEditor": "true"}, testSignKey)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		claims, err := ValidateManagementUserToken(token, testSignKey)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if claims.ID != "user1" || claims.InstanceID != "inst1" || !claims.CanEditSurveys() {
			t.Errorf("unexpected claims: %+v", claims)
		}
	})

	t.Run("wrong key", func(t *testing.T) {
		token, _ := GenerateNewManagementUserToken(time.Minute, "user1", "inst1", true, nil, testSignKey)
		if _, err := ValidateManagementUserToken(token, "other-key"); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("expired", func(t *testing.T) {
		token, _ := GenerateNewManagementUserToken(-time.Minute, "user1", "inst1", true, nil, testSignKey)
		if _, err := ValidateManagementUserToken(token, testSignKey); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("user without editor role", func(t *testing.T) {
		token, _ := GenerateNewManagementUserToken(time.Minute, "user1", "inst1", false, nil, testSignKey)
		claims, err := ValidateManagementUserToken(token, testSignKey)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if claims.CanEditSurveys() {
			t.Error("unexpected editor permission")
		}
	})
}
