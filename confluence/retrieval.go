package confluence

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// ListAllSpaces walks every page of the space listing and returns the spaces keyed by space key.
func (api *API) ListAllSpaces(ctx context.Context, includePersonal bool) (map[string]Space, error) {
	spaces := map[string]Space{}

	query := SpacesQuery{
		Limit: 50,
	}

	if !includePersonal {
		// The `type` parameter may be "global", "personal", or nothing at all for both.  We only
		// set it if we _do not_ intend to include personal spaces in our query.
		query.Type = "global"
	}

	for {
		allspaces, err := api.getSpacesWithTimeout(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("confluence: couldn't list spaces: %w", err)
		}

		for _, space := range allspaces.Results {
			spaces[space.Key] = space
		}

		if allspaces.Links.Next == "" {
			break
		}

		q, err := url.Parse(allspaces.Links.Next)
		if err != nil {
			return nil, fmt.Errorf("confluence: couldn't parse _links.next: %w", err)
		}
		start, err := strconv.Atoi(q.Query().Get("start"))
		if err != nil {
			return nil, fmt.Errorf("confluence: expected parameter 'start' in %q: %w", allspaces.Links.Next, err)
		}
		if start <= query.Start {
			return nil, fmt.Errorf("confluence: pagination didn't advance past %d", query.Start)
		}
		query.Start = start
	}

	return spaces, nil
}

func (api *API) getSpacesWithTimeout(ctx context.Context, query SpacesQuery) (*AllSpaces, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return api.getSpaces(ctx, query)
}
