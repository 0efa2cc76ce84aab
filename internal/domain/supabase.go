package domain

type SupabaseClient interface {
	Initialize() error
	ValidateToken(token string) (*SupabaseUser, error)
}
