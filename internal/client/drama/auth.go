package drama

import (
	"context"
	"fmt"
	"net/http"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c *Client) SignIn(ctx context.Context, username, password string) (Session, error) {
	var session Session
	body := credentials{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/signin", "", body, &session); err != nil {
		return Session{}, fmt.Errorf("failed to sign in: %w", err)
	}

	return session, nil
}

func (c *Client) SignUp(ctx context.Context, username, password string) (Session, error) {
	var session Session
	body := credentials{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/signup", "", body, &session); err != nil {
		return Session{}, fmt.Errorf("failed to sign up: %w", err)
	}

	return session, nil
}

type tempCredentials struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	ExpireTime int    `json:"expireTime"`
}

// RegisterTemp creates a guest account that the upstream expires after
// expireDays days.
func (c *Client) RegisterTemp(ctx context.Context, username, password string, expireDays int) (TempSession, error) {
	var session TempSession
	body := tempCredentials{Username: username, Password: password, ExpireTime: expireDays}
	if err := c.do(ctx, http.MethodPost, "/register/temp", "", body, &session); err != nil {
		return TempSession{}, fmt.Errorf("failed to register temp user: %w", err)
	}

	return session, nil
}
