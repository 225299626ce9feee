package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestJWTManager_GenerateAndValidate_Success(t *testing.T) {
	secret := "test-secret-at-least-32-chars-long-for-security"
	issuer := "internlog-test"
	ttl := 15 * time.Minute

	manager := NewJWTManager(secret, issuer, ttl)
	userID := uuid.New()

	token, err := manager.GenerateAccessToken(userID, "student")
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	validatedID, role, err := manager.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken failed: %v", err)
	}
	if validatedID != userID {
		t.Errorf("expected userID %s, got %s", userID, validatedID)
	}
	if role != "student" {
		t.Errorf("expected role 'student', got %q", role)
	}
}

func TestJWTManager_GenerateAndValidate_SupervisorRole(t *testing.T) {
	secret := "test-secret-at-least-32-chars-long-for-security"
	manager := NewJWTManager(secret, "internlog-test", 15*time.Minute)
	userID := uuid.New()

	token, err := manager.GenerateAccessToken(userID, "supervisor")
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	_, role, err := manager.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken failed: %v", err)
	}
	if role != "supervisor" {
		t.Errorf("expected role 'supervisor', got %q", role)
	}
}

func TestJWTManager_ValidateAccessToken_Expired(t *testing.T) {
	secret := "test-secret-at-least-32-chars-long-for-security"
	manager := NewJWTManager(secret, "internlog-test", -1*time.Hour)
	userID := uuid.New()

	token, err := manager.GenerateAccessToken(userID, "student")
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	_, _, err = manager.ValidateAccessToken(token)
	if err == nil {
		t.Fatal("expected error for expired token, got nil")
	}
	if !strings.Contains(err.Error(), "expired") && !strings.Contains(err.Error(), "parse token") {
		t.Errorf("expected expiry-related error, got: %v", err)
	}
}

func TestJWTManager_ValidateAccessToken_WrongSecret(t *testing.T) {
	manager1 := NewJWTManager("test-secret-at-least-32-chars-long-for-security", "internlog-test", 15*time.Minute)
	manager2 := NewJWTManager("different-secret-32-chars-long-for-security!!", "internlog-test", 15*time.Minute)
	userID := uuid.New()

	token, err := manager1.GenerateAccessToken(userID, "student")
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	if _, _, err := manager2.ValidateAccessToken(token); err == nil {
		t.Fatal("expected error for token signed with a different secret")
	}
}

func TestJWTManager_ValidateAccessToken_WrongIssuer(t *testing.T) {
	secret := "test-secret-at-least-32-chars-long-for-security"
	manager1 := NewJWTManager(secret, "issuer-a", 15*time.Minute)
	manager2 := NewJWTManager(secret, "issuer-b", 15*time.Minute)
	userID := uuid.New()

	token, err := manager1.GenerateAccessToken(userID, "student")
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	if _, _, err := manager2.ValidateAccessToken(token); err == nil {
		t.Fatal("expected error for wrong issuer")
	}
}

func TestJWTManager_ValidateAccessToken_Empty(t *testing.T) {
	manager := NewJWTManager("test-secret-at-least-32-chars-long-for-security", "internlog-test", 15*time.Minute)

	if _, _, err := manager.ValidateAccessToken(""); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestJWTManager_ValidateAccessToken_Garbage(t *testing.T) {
	manager := NewJWTManager("test-secret-at-least-32-chars-long-for-security", "internlog-test", 15*time.Minute)

	if _, _, err := manager.ValidateAccessToken("not.a.jwt"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}
