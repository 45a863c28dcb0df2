package confluence

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Auth picks the authentication scheme: basic auth when both fields are set, a bearer token
// (personal access token) when only Token is.
type Auth struct {
	Username string
	Token    string
}

// NewAPI builds a client rooted at endpoint, e.g. https://ORG.atlassian.net/wiki for Confluence
// Cloud or https://confluence.example.com for a self-hosted instance.
func NewAPI(endpoint string, auth Auth) (*API, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("confluence: configure your Confluence URL with --endpoint-url")
	}
	if auth.Token == "" {
		return nil, fmt.Errorf("confluence: auth secret is empty, please check your settings")
	}

	u, err := url.ParseRequestURI(endpoint)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't parse REST API URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("confluence: URL %q should start with https:// or http://", endpoint)
	}

	// endpoints are resolved relative to the base, so it has to look like a directory.
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	a := &API{
		BaseURI:  u,
		token:    auth.Token,
		username: auth.Username,
	}
	a.Client = &http.Client{}

	return a, nil
}

type API struct {
	// Root of the Confluence instance, always with a trailing slash.
	BaseURI *url.URL

	// An HTTP client - you can substitute VCR or whatnot.
	Client *http.Client

	// Auth info
	username, token string
}

// WebURL turns a relative _links.webui value into something a browser can open.
func (a *API) WebURL(webui string) string {
	return strings.TrimSuffix(a.BaseURI.String(), "/") + webui
}
