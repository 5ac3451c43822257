package port

import "context"

type AuthResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Authenticator validates a caller-supplied token. A Success=false result is a
// rejection, not a transport failure.
type Authenticator interface {
	Validate(ctx context.Context, token string) (AuthResult, error)
}

type AssetStore interface {
	Upload(ctx context.Context, data []byte, filename string) (string, error)
}
