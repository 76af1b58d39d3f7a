package core

// User is the current authenticated account as reported by the identity
// provider. The cache only needs the opaque identifier for owner scoping;
// name and email are display data.
type User struct {
	ID        string
	Name      string
	Email     string
	AvatarURL string
}
