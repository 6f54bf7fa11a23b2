package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/bladehq/bladehub/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
)

const defaultIdentityToolkitURL = "https://identitytoolkit.googleapis.com/v1"

// IdentityToolkitProvider implements IdentityProvider against the
// google identity toolkit REST API, the same backend the blade web
// client authenticates with.
type IdentityToolkitProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewIdentityToolkitProvider(apiKey string, httpClient *http.Client) *IdentityToolkitProvider {
	return &IdentityToolkitProvider{
		baseURL:    defaultIdentityToolkitURL,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

type identityToolkitAccount struct {
	LocalID     string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl"`
}

func (p *IdentityToolkitProvider) SignInWithPassword(ctx context.Context, email, password string) (Profile, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "identity.signInWithPassword")
	defer span.End()

	return p.accountsCall(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
}

func (p *IdentityToolkitProvider) SignUpWithPassword(ctx context.Context, email, password string) (Profile, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "identity.signUpWithPassword")
	defer span.End()

	return p.accountsCall(ctx, "accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
}

func (p *IdentityToolkitProvider) SignInWithFederatedToken(ctx context.Context, idToken string) (Profile, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "identity.signInWithFederatedToken")
	defer span.End()

	return p.accountsCall(ctx, "accounts:signInWithIdp", map[string]any{
		"postBody":            "id_token=" + url.QueryEscape(idToken) + "&providerId=google.com",
		"requestUri":          "http://localhost",
		"returnSecureToken":   true,
		"returnIdpCredential": true,
	})
}

func (p *IdentityToolkitProvider) SendPasswordReset(ctx context.Context, email string) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "identity.sendPasswordReset")
	defer span.End()

	_, err := p.accountsCall(ctx, "accounts:sendOobCode", map[string]any{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	})
	return err
}

func (p *IdentityToolkitProvider) accountsCall(ctx context.Context, endpoint string, payload map[string]any) (Profile, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Profile{}, fmt.Errorf("marshal identity request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/%s?key=%s", p.baseURL, endpoint, url.QueryEscape(p.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return Profile{}, fmt.Errorf("create identity request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("identity http client do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return Profile{}, fmt.Errorf("read identity response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(respBytes, &errResp); err != nil {
			log.Tracef("identity toolkit %s: non-json error response", endpoint)
		}
		return Profile{}, &AuthError{Code: errResp.Error.Message}
	}

	var account identityToolkitAccount
	if err := json.Unmarshal(respBytes, &account); err != nil {
		return Profile{}, fmt.Errorf("unmarshal identity response: %w", err)
	}
	return Profile{
		UID:      account.LocalID,
		Name:     account.DisplayName,
		Email:    account.Email,
		PhotoURL: account.PhotoURL,
	}, nil
}
