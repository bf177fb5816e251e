package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/salestracker/internal/config"
)

// Client exposes the email/password operations of the identity provider.
type Client interface {
	SignUp(ctx context.Context, email, password string) (*Account, error)
	SignIn(ctx context.Context, email, password string) (*Account, error)
}

// Account is the identity the provider returns on success.
type Account struct {
	UID     string `json:"localId"`
	Email   string `json:"email"`
	IDToken string `json:"idToken"`
}

// RejectedError is returned when the provider answers with an error payload.
// Message is the provider text, e.g. "EMAIL_EXISTS".
type RejectedError struct {
	Status  int
	Code    int
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("identity api error: code=%d, message=%s", e.Code, e.Message)
}

// IsRejected reports whether err is a provider rejection and returns it.
func IsRejected(err error) (*RejectedError, bool) {
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return rejected, true
	}
	return nil, false
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
	apiKey     string
}

// NewClient builds an identity client from configuration.
func NewClient(cfg config.IdentityConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &APIClient{
		httpClient: restyClient,
		apiKey:     cfg.APIKey,
	}
}

type credentialsRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignUp creates an account.
func (c *APIClient) SignUp(ctx context.Context, email, password string) (*Account, error) {
	return c.post(ctx, "/accounts:signUp", email, password)
}

// SignIn verifies credentials.
func (c *APIClient) SignIn(ctx context.Context, email, password string) (*Account, error) {
	return c.post(ctx, "/accounts:signInWithPassword", email, password)
}

func (c *APIClient) post(ctx context.Context, path, email, password string) (*Account, error) {
	result := new(Account)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(credentialsRequest{Email: email, Password: password, ReturnSecureToken: true}).
		SetResult(result).
		SetError(apiErr).
		Post(path)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", path, err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		rejected := &RejectedError{Status: resp.StatusCode(), Code: resp.StatusCode()}
		if apiErr.Error.Code != 0 {
			rejected.Code = apiErr.Error.Code
		}
		rejected.Message = apiErr.Error.Message
		if rejected.Message == "" {
			rejected.Message = http.StatusText(resp.StatusCode())
		}
		return nil, rejected
	}

	return result, nil
}
