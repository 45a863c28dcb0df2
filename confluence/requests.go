package confluence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

var (
	expandMetadata  = []string{"space", "version"}
	expandBody      = []string{"body.storage", "space", "version"}
	expandAncestors = []string{"space", "version", "ancestors"}
)

func (api *API) GetContentByID(ctx context.Context, opts GetContentQuery) (*Content, error) {
	ep, err := api.getContentByIDEndpoint(opts)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't get content endpoint: %w", err)
	}

	body, err := api.request(ctx, http.MethodGet, ep, nil)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't get content %d: %w", opts.ID, err)
	}

	var content Content

	if err := json.Unmarshal(body, &content); err != nil {
		return nil, fmt.Errorf("confluence: couldn't parse json response: %w", err)
	}

	return &content, nil
}

// GetPage fetches title, space and version but no body.
func (api *API) GetPage(ctx context.Context, id uint64) (*Content, error) {
	return api.GetContentByID(ctx, GetContentQuery{ID: id, Expand: expandMetadata})
}

// GetPageWithBody also fetches the storage-format body.
func (api *API) GetPageWithBody(ctx context.Context, id uint64) (*Content, error) {
	return api.GetContentByID(ctx, GetContentQuery{ID: id, Expand: expandBody})
}

// GetPageWithAncestors also fetches the chain of parent pages.
func (api *API) GetPageWithAncestors(ctx context.Context, id uint64) (*Content, error) {
	return api.GetContentByID(ctx, GetContentQuery{ID: id, Expand: expandAncestors})
}

// UpdatePage replaces title and body of a page in one new version.
func (api *API) UpdatePage(ctx context.Context, update UpdateContent) (*Content, error) {
	ep, err := api.getContentByIDEndpoint(GetContentQuery{ID: update.ID})
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't get content endpoint: %w", err)
	}

	if update.Type == "" {
		update.Type = "page"
	}
	if update.Body.Storage != nil && update.Body.Storage.Representation == "" {
		update.Body.Storage.Representation = "storage"
	}

	payload, err := json.Marshal(update)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't encode update: %w", err)
	}

	body, err := api.request(ctx, http.MethodPut, ep, payload)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't update content %d: %w", update.ID, err)
	}

	var content Content
	if err := json.Unmarshal(body, &content); err != nil {
		return nil, fmt.Errorf("confluence: couldn't parse json response: %w", err)
	}

	return &content, nil
}

func (api *API) getSpaces(ctx context.Context, opts SpacesQuery) (*AllSpaces, error) {
	ep, err := api.getSpaceEndpoint(opts)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't get spaces endpoint: %w", err)
	}

	body, err := api.request(ctx, http.MethodGet, ep, nil)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't perform request: %w", err)
	}

	var allSpaces AllSpaces

	if err := json.Unmarshal(body, &allSpaces); err != nil {
		return nil, fmt.Errorf("confluence: couldn't parse json response: %w", err)
	}

	return &allSpaces, nil
}

// CurrentUser return current user information
func (api *API) CurrentUser(ctx context.Context) (*User, error) {
	ep, err := api.getCurrentUserEndpoint()
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't get current user endpoint: %w", err)
	}

	body, err := api.request(ctx, http.MethodGet, ep, nil)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't query current user: %w", err)
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("confluence: couldn't parse json response: %w", err)
	}

	return &user, nil
}

func (api *API) request(ctx context.Context, method string, url *url.URL, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't instantiate http request: %w", err)
	}

	req.Header.Add("Accept", "application/json, */*")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// if user & token are not set, do not add authorization header
	if api.username != "" && api.token != "" {
		req.SetBasicAuth(api.username, api.token)
	} else if api.token != "" {
		req.Header.Set("Authorization", "Bearer "+api.token)
	}

	response, err := api.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		response.Body.Close()
		return nil, fmt.Errorf("%w: couldn't read http response body: %w", ErrNetwork, err)
	}

	if err := response.Body.Close(); err != nil {
		return nil, fmt.Errorf("confluence: couldn't close response body: %w", err)
	}

	switch response.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusPartialContent, http.StatusNoContent, http.StatusResetContent:
		return body, nil
	}

	return nil, newStatusError(response, url.String(), body)
}
