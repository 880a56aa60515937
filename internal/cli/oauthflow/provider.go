package oauthflow

import (
	"net/http"
	"net/url"
)

// Provider describes one supported identity provider. The callback
// state machine is identical for all of them; only the authorize URL
// and the cosmetic copy differ.
type Provider struct {
	Name        string // short name, also the backend exchange path segment
	DisplayName string
	ClientID    string

	AuthorizeEndpoint string
	Scope             string // empty when the provider does not take one
	ResponseType      string // e.g. "code"; empty when implied

	// SuccessStatus is the backend status that counts as a completed
	// exchange; anything else is a failure.
	SuccessStatus int

	CallbackPath string
}

// Github returns the Github code-grant provider
func Github(clientID string) Provider {
	return Provider{
		Name:              "github",
		DisplayName:       "Github",
		ClientID:          clientID,
		AuthorizeEndpoint: "https://github.com/login/oauth/authorize",
		Scope:             "user user:email",
		SuccessStatus:     http.StatusOK,
		CallbackPath:      "/auth/github/callback",
	}
}

// Kakao returns the Kakao provider
func Kakao(clientID string) Provider {
	return Provider{
		Name:              "kakao",
		DisplayName:       "Kakao",
		ClientID:          clientID,
		AuthorizeEndpoint: "https://kauth.kakao.com/oauth/authorize",
		ResponseType:      "code",
		SuccessStatus:     http.StatusOK,
		CallbackPath:      "/auth/kakao/callback",
	}
}

// AuthorizeURL builds the browser URL that starts the consent flow.
// The provider redirects back to redirectURI with a ?code parameter.
func (p Provider) AuthorizeURL(redirectURI string) string {
	params := url.Values{}
	params.Set("client_id", p.ClientID)
	if p.Scope != "" {
		params.Set("scope", p.Scope)
	}
	if p.ResponseType != "" {
		params.Set("response_type", p.ResponseType)
	}
	if redirectURI != "" {
		params.Set("redirect_uri", redirectURI)
	}
	return p.AuthorizeEndpoint + "?" + params.Encode()
}
