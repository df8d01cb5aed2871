package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"
)

// Identity is what an identity provider vouches for.
type Identity struct {
	AccountID string
	Email     string
	Name      string
	Image     string
}

type IdentityProvider interface {
	Validate(ctx context.Context, token string) (Identity, error)
}

var errInvalidProviderToken = errors.New("identity provider rejected the token")

var httpClient = &http.Client{Timeout: 10 * time.Second}

func fetchJSON(ctx context.Context, endpoint string, into any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errInvalidProviderToken
	}
	return json.NewDecoder(resp.Body).Decode(into)
}

// Google checks id tokens against the tokeninfo endpoint.
type Google struct {
	Endpoint string
}

func (g Google) Validate(ctx context.Context, token string) (Identity, error) {
	endpoint := g.Endpoint
	if endpoint == "" {
		endpoint = "https://oauth2.googleapis.com/tokeninfo"
	}
	var data struct {
		Sub     string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := fetchJSON(ctx, endpoint+"?id_token="+url.QueryEscape(token), &data); err != nil {
		return Identity{}, err
	}
	if data.Email == "" || data.Name == "" {
		return Identity{}, errors.New("missing email or name")
	}
	return Identity{AccountID: data.Sub, Email: data.Email, Name: data.Name, Image: data.Picture}, nil
}

// Facebook checks access tokens against the Graph API.
type Facebook struct {
	Endpoint string
}

func (f Facebook) Validate(ctx context.Context, token string) (Identity, error) {
	endpoint := f.Endpoint
	if endpoint == "" {
		endpoint = "https://graph.facebook.com/me"
	}
	var data struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture struct {
			Data struct {
				URL string `json:"url"`
			} `json:"data"`
		} `json:"picture"`
	}
	if err := fetchJSON(ctx, endpoint+"?fields=id,name,email,picture&access_token="+url.QueryEscape(token), &data); err != nil {
		return Identity{}, err
	}
	if data.Email == "" || data.Name == "" {
		return Identity{}, errors.New("missing email or name")
	}
	return Identity{AccountID: data.ID, Email: data.Email, Name: data.Name, Image: data.Picture.Data.URL}, nil
}
