package repository

// TokenRepository persists the bearer token between runs.
// Load returns an empty string when nothing is stored.
type TokenRepository interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}
