package owner

import (
	"context"
	"errors"
)

type contextKey string

var userKey = contextKey("owner")

// Owner is the authenticated user who triggered a self test, kept around
// for attribution in logs and events
type Owner struct {
	Name string
}

// ToCtx creates a context containing the owner
func (u *Owner) ToCtx(in context.Context) context.Context {
	return context.WithValue(in, userKey, *u)
}

// FromJWT creates an owner from JWT claims
func FromJWT(claims map[string]interface{}) (*Owner, error) {
	val, ok := claims["owner"]
	if !ok {
		return nil, errors.New("Missing owner in JWT claims")
	}

	name, ok := val.(string)
	if !ok {
		return nil, errors.New("JWT owner claim is not a string")
	}

	return &Owner{
		Name: name,
	}, nil
}

// FromCtx extracts an owner from a context
func FromCtx(ctx context.Context) (*Owner, error) {
	u, ok := ctx.Value(userKey).(Owner)
	if !ok {
		return nil, errors.New("No owner in this context")
	}

	return &u, nil
}
