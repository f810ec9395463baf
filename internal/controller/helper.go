package controller

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

func (c *controller) generateTimeBasedId() string {
	return strconv.FormatInt(time.Now().UnixNano(), 36)
}

func (c *controller) getQueryParam(r *http.Request, key string) (string, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return "", fmt.Errorf("%s was not provided", key)
	}

	return value, nil
}

// getBearerToken extracts the upstream session token for proxied calls.
// An empty return means the request is unauthenticated.
func (c *controller) getBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(auth, "Bearer ")
	if !found {
		return ""
	}

	return token
}
