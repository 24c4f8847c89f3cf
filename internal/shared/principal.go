package shared

import (
	"context"
	"strconv"
)

// Principal identifies the actor an access check runs on behalf of.
type Principal struct {
	UserID int64
	Role   string
}

// PrincipalFromContext derives the principal from the request session.
// Returns false when no authenticated user is attached.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	sess := SessionFromContext(ctx)
	if sess == nil || sess.User() == "" {
		return Principal{}, false
	}
	id, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil {
		return Principal{}, false
	}
	return Principal{UserID: id, Role: sess.Role()}, true
}
