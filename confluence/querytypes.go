package confluence

// GetContentQuery defines the query parameters for:
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-content/#api-wiki-rest-api-content-id-get
type GetContentQuery struct {
	ID uint64 `url:"-"` // ID of the content; required

	// Which parts of the content to include: space, version, ancestors, body.storage, ...
	Expand  []string `url:"expand,omitempty,comma"`
	Status  []string `url:"status,omitempty,comma"` // current, trashed, draft, historical
	Version int      `url:"version,omitempty"`      // retrieve a previously published version
}

// SpacesQuery defines the query parameters for:
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-space/#api-wiki-rest-api-space-get
type SpacesQuery struct {
	Keys   []string `url:"spaceKey,omitempty"`
	Type   string   `url:"type,omitempty"`   // Valid values: "global" or "personal"
	Status string   `url:"status,omitempty"` // current, archived

	// v1 paginates with offsets.  The 'next' link in '_links' carries the start of the next
	// set of results.
	Start int `url:"start,omitempty"`
	Limit int `url:"limit,omitempty"` // page limit; default 25
}
