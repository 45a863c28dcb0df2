// Package render turns a page's storage-format body into Markdown, for showing a page in the
// terminal or previewing what a copy is about to write.
package render

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	mdplugin "github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
	"github.com/toothbrush/confluence-copier/confluence"
	"github.com/toothbrush/confluence-copier/preview"
	"gopkg.in/yaml.v3"
)

// Header ends up as the YAML front matter of a Document.
type Header struct {
	Title     string   `yaml:"title"`
	ID        int      `yaml:"id"`
	Version   int      `yaml:"version,omitempty"`
	Space     string   `yaml:"space,omitempty"`
	Path      string   `yaml:"path"`
	Ancestors []string `yaml:"ancestors,omitempty"`
	URL       string   `yaml:"url,omitempty"`
}

// ToMarkdown converts storage-format HTML.  Relative links get base's scheme and host so they
// still work outside of Confluence; base may be nil, in which case links are left alone.
func ToMarkdown(base *url.URL, storageHTML string) (string, error) {
	domain := ""
	scheme := "https"
	if base != nil {
		domain = base.Host
		scheme = base.Scheme
	}

	// md.NewConverter only takes a hostname, not a base URL, so the scheme has to be patched in
	// here.  Otherwise this is md.DefaultGetAbsoluteURL.
	opt := &md.Options{
		GetAbsoluteURL: func(selec *goquery.Selection, rawURL string, domain string) string {
			if domain == "" {
				return rawURL
			}

			u, err := url.Parse(rawURL)
			if err != nil {
				return rawURL
			}
			if u.Scheme == "data" {
				// inline image
				return rawURL
			}
			if u.Scheme == "" {
				u.Scheme = scheme
			}
			if u.Host == "" {
				u.Host = domain
			}
			return u.String()
		},
	}

	converter := md.NewConverter(domain, true, opt)
	// tables
	converter.Use(mdplugin.GitHubFlavored())

	markdown, err := converter.ConvertString(storageHTML)
	if err != nil {
		return "", fmt.Errorf("render: failed to convert to Markdown: %w", err)
	}
	return markdown, nil
}

// Document renders page, which must have been fetched with its body, as Markdown with a front
// matter header.  Ancestors are used for the header when present.
func Document(base *url.URL, page *confluence.Content) (string, error) {
	storage, ok := page.StorageValue()
	if !ok {
		return "", fmt.Errorf("render: page %s was fetched without a body", page.ID)
	}

	markdown, err := ToMarkdown(base, storage)
	if err != nil {
		return "", err
	}

	header, err := NewHeader(base, page)
	if err != nil {
		return "", err
	}

	yamlHeader, err := yaml.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("render: couldn't marshal header YAML: %w", err)
	}

	return fmt.Sprintf("---\n%s\n---\n%s\n", strings.TrimSpace(string(yamlHeader)), markdown), nil
}

func NewHeader(base *url.URL, page *confluence.Content) (Header, error) {
	id, err := strconv.Atoi(page.ID)
	if err != nil {
		return Header{}, fmt.Errorf("render: object ID %q not an int: %w", page.ID, err)
	}

	header := Header{
		Title:   page.Title,
		ID:      id,
		Version: page.VersionNumber(),
		Path:    preview.HierarchyPath(page),
	}
	if page.Space != nil {
		header.Space = page.Space.Key
	}
	for _, ancestor := range page.Ancestors {
		if ancestor.Title != "" {
			header.Ancestors = append(header.Ancestors, ancestor.Title)
		}
	}
	if base != nil && page.Links.WebUI != "" {
		header.URL = strings.TrimSuffix(base.String(), "/") + page.Links.WebUI
	}

	return header, nil
}
