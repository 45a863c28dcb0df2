package confluence

// See https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-users/#api-wiki-rest-api-user-current-get
type User struct {
	Type        string `json:"type"`
	Username    string `json:"username"`
	UserKey     string `json:"userKey"`
	AccountID   string `json:"accountId"`
	AccountType string `json:"accountType"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// See https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-space/#api-wiki-rest-api-space-get
type Space struct {
	ID     int64  `json:"id,omitempty"`
	Key    string `json:"key,omitempty"`
	Name   string `json:"name,omitempty"`
	Type   string `json:"type,omitempty"`
	Status string `json:"status,omitempty"`
}

// Content is a v1 content object.  Which fields are filled in depends on what was asked for in
// GetContentQuery.Expand; Space, Version, Body and Ancestors are all optional.
//
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-content/#api-wiki-rest-api-content-id-get
type Content struct {
	ID     string `json:"id,omitempty"`
	Type   string `json:"type,omitempty"`   // page, blogpost, ...
	Status string `json:"status,omitempty"` // current, trashed, draft, historical
	Title  string `json:"title,omitempty"`

	Space   *Space   `json:"space,omitempty"`
	Version *Version `json:"version,omitempty"`
	Body    *Body    `json:"body,omitempty"`

	// Ordered from the top-level page of the space down to the immediate parent.
	Ancestors []Content `json:"ancestors,omitempty"`

	Links struct {
		WebUI  string `json:"webui,omitempty"`
		TinyUI string `json:"tinyui,omitempty"`
		Base   string `json:"base,omitempty"`
	} `json:"_links"`
}

// StorageValue returns the storage-format body, or false if it wasn't returned.
func (c *Content) StorageValue() (string, bool) {
	if c == nil || c.Body == nil || c.Body.Storage == nil {
		return "", false
	}
	return c.Body.Storage.Value, true
}

// VersionNumber returns 0 when the version wasn't expanded.
func (c *Content) VersionNumber() int {
	if c == nil || c.Version == nil {
		return 0
	}
	return c.Version.Number
}

// Version defines the content version number
// the version number is used for updating content
type Version struct {
	When      string `json:"when,omitempty"`
	Message   string `json:"message,omitempty"`
	Number    int    `json:"number"`
	MinorEdit bool   `json:"minorEdit"`
}

// Body holds the storage information
type Body struct {
	Storage *Storage `json:"storage,omitempty"`
	View    *Storage `json:"view,omitempty"`
}

// Storage defines the storage information
type Storage struct {
	Value          string `json:"value"`
	Representation string `json:"representation"`
}

// UpdateContent is the payload for PUT /rest/api/content/{id}.  Version.Number has to be one more
// than the version currently on the server, otherwise Confluence answers 409.
type UpdateContent struct {
	ID      uint64  `json:"-"`
	Type    string  `json:"type"`
	Title   string  `json:"title"`
	Body    Body    `json:"body"`
	Version Version `json:"version"`
}
