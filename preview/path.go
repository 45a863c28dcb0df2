package preview

import (
	"strings"

	"github.com/toothbrush/confluence-copier/confluence"
)

const (
	pathSeparator = " > "
	unknownSpace  = "Unknown Space"
	untitledPage  = "Untitled Page"
)

// HierarchyPath is the breadcrumb for page: space, then the ancestors from the top of the space
// down to the immediate parent, then the page itself.  Ancestors are whatever page carries, so a
// page fetched without them gives just space and title.
func HierarchyPath(page *confluence.Content) string {
	if page == nil {
		return untitledPage
	}

	var crumbs []string
	if page.Space != nil {
		crumbs = append(crumbs, spaceName(page.Space))
	}
	for _, ancestor := range page.Ancestors {
		if ancestor.Title != "" {
			crumbs = append(crumbs, ancestor.Title)
		}
	}
	crumbs = append(crumbs, pageTitle(page))

	return strings.Join(crumbs, pathSeparator)
}

func spaceName(space *confluence.Space) string {
	switch {
	case space.Name != "":
		return space.Name
	case space.Key != "":
		return space.Key
	default:
		return unknownSpace
	}
}

func pageTitle(page *confluence.Content) string {
	if page.Title == "" {
		return untitledPage
	}
	return page.Title
}
