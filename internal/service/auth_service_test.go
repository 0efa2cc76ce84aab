package service

import (
	"errors"
	"testing"

	"pdf-to-qr-products/internal/domain"
)

// MockSupabaseClient for testing
type MockSupabaseClient struct {
	users map[string]*domain.SupabaseUser
	calls int
}

func NewMockSupabaseClient() *MockSupabaseClient {
	return &MockSupabaseClient{
		users: map[string]*domain.SupabaseUser{
			"valid-token": {ID: "user-123", Email: "test@example.com"},
			"no-id-token": {Email: "ghost@example.com"},
		},
	}
}

func (m *MockSupabaseClient) Initialize() error {
	return nil
}

func (m *MockSupabaseClient) ValidateToken(token string) (*domain.SupabaseUser, error) {
	m.calls++
	if user, ok := m.users[token]; ok {
		return user, nil
	}
	return nil, errors.New("token validation failed")
}

func TestAuthService_ValidateToken(t *testing.T) {
	client := NewMockSupabaseClient()
	service := NewAuthService(client, NewMockLogger())

	user, err := service.ValidateToken("valid-token")
	if err != nil {
		t.Fatalf("Expected no error for valid token, got %v", err)
	}
	if user.ID != "user-123" {
		t.Errorf("Expected user ID 'user-123', got '%s'", user.ID)
	}
	if user.Email != "test@example.com" {
		t.Errorf("Expected user email 'test@example.com', got '%s'", user.Email)
	}

	_, err = service.ValidateToken("invalid-token")
	if !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
	if err.Error() != "invalid token: token validation failed" {
		t.Errorf("Unexpected error message '%s'", err.Error())
	}
}

func TestAuthService_EmptyTokenSkipsProvider(t *testing.T) {
	client := NewMockSupabaseClient()
	service := NewAuthService(client, NewMockLogger())

	if _, err := service.ValidateToken("   "); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("Expected ErrInvalidToken, got %v", err)
	}
	if client.calls != 0 {
		t.Fatalf("Expected provider not to be called, got %d calls", client.calls)
	}
}

func TestAuthService_UserWithoutID(t *testing.T) {
	service := NewAuthService(NewMockSupabaseClient(), NewMockLogger())

	if _, err := service.ValidateToken("no-id-token"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("Expected ErrInvalidToken, got %v", err)
	}
}
