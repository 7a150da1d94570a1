// services/session.go — identity provider client + session values
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"time"
)

// Session identifies one signed-in agent for the duration of a call chain.
// It is passed explicitly to every store operation that needs one, so two
// logical sessions never interfere through shared state.
type Session struct {
	AgentID   string `json:"agent_id"`
	Email     string `json:"email,omitempty"`
	Username  string `json:"username"`
	Anonymous bool   `json:"anonymous"`
}

// IdentityProvider is the external auth service this layer delegates to.
// It owns credentials and user ids; we only mirror the resulting identity
// into the agents table.
type IdentityProvider interface {
	Register(email, password string) (string, error)
	RegisterAnonymous() (string, error)
	Authenticate(email, password string) (string, error)
}

// HTTPIdentityProvider calls the provider's REST endpoints.
type HTTPIdentityProvider struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewHTTPIdentityProvider(baseURL, token string) *HTTPIdentityProvider {
	return &HTTPIdentityProvider{
		BaseURL: baseURL,
		Token:   token,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type identityResponse struct {
	UserID string `json:"user_id"`
}

func (c *HTTPIdentityProvider) post(path string, reqBody map[string]any) (string, error) {
	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequest("POST", fmt.Sprintf("%s%s", c.BaseURL, path), bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: identity provider unreachable: %v", ErrNoConnection, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		// fall through to decode
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusConflict || resp.StatusCode == http.StatusBadRequest:
		log.Printf("IdentityProvider %s returned %d: %s", path, resp.StatusCode, string(body))
		return "", fmt.Errorf("%w: provider rejected request (%d)", ErrAuth, resp.StatusCode)
	default:
		log.Printf("IdentityProvider %s returned %d: %s", path, resp.StatusCode, string(body))
		return "", fmt.Errorf("%w: provider returned %d", ErrNoConnection, resp.StatusCode)
	}

	var out identityResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}

	return out.UserID, nil
}

func (c *HTTPIdentityProvider) Register(email, password string) (string, error) {
	return c.post("/auth/register", map[string]any{
		"email":    email,
		"password": password,
	})
}

func (c *HTTPIdentityProvider) RegisterAnonymous() (string, error) {
	return c.post("/auth/anonymous", map[string]any{})
}

func (c *HTTPIdentityProvider) Authenticate(email, password string) (string, error) {
	return c.post("/auth/token", map[string]any{
		"email":    email,
		"password": password,
	})
}

const callsignAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// randomCallsign builds the username for anonymous sign-ins: "Agent_" plus
// nine base-36 characters. Collisions are treated as negligible and are not
// deduplicated.
func randomCallsign() string {
	b := make([]byte, 9)
	for i := range b {
		b[i] = callsignAlphabet[rand.Intn(len(callsignAlphabet))]
	}
	return "Agent_" + string(b)
}
