package remote

import (
	"context"

	"github.com/Carlos-Bolano/Pocka/internal/core"
)

// StaticIdentity resolves a fixed user, typically configured from the
// environment for headless deployments. A zero value resolves to no user.
type StaticIdentity struct {
	user *core.User
}

// NewStaticIdentity builds an identity for the given user. Pass empty id
// to model a signed-out session.
func NewStaticIdentity(id, name, email string) *StaticIdentity {
	if id == "" {
		return &StaticIdentity{}
	}
	return &StaticIdentity{user: &core.User{ID: id, Name: name, Email: email}}
}

func (s *StaticIdentity) CurrentUser(_ context.Context) (*core.User, error) {
	if s.user == nil {
		return nil, nil
	}
	cp := *s.user
	return &cp, nil
}
