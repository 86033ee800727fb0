package policies

import (
	"context"
	"io"

	domainuser "stayhub/internal/domain/user"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// UserInfo is what a signed access token carries about its holder.
type UserInfo struct {
	ID        domainuser.ID
	Firstname string
	Lastname  string
	Email     string
	Role      domainuser.Role
}

type TokenIssuer interface {
	Issue(info UserInfo) (string, error)
	Parse(token string) (UserInfo, error)
}

// ImageStore keeps uploaded listing images and returns their public URL.
type ImageStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
}
