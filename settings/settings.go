// Package settings loads and saves the connection settings (Confluence URL and credentials) as a
// small JSON file in the user's config directory.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/toothbrush/confluence-copier/confluence"
)

type AuthMode string

const (
	// AuthBasic sends Username and Secret as HTTP basic auth.
	AuthBasic AuthMode = "basic"
	// AuthToken sends APIKey as a bearer token.
	AuthToken AuthMode = "token"
)

const (
	// EnvPath overrides the location of the settings file.
	EnvPath = "CONFLUENCE_COPIER_SETTINGS"

	appDir   = "confluence-copier"
	fileName = "settings.json"
)

// Settings are tagged for the file (`json`), for display (`yaml`) and with the command line
// flag the value feeds into (`flag`).
type Settings struct {
	EndpointURL  string   `json:"endpointUrl" yaml:"endpoint-url" flag:"endpoint-url"`
	AuthMode     AuthMode `json:"authMode" yaml:"auth-mode" flag:"auth-mode"`
	Username     string   `json:"username" yaml:"username,omitempty" flag:"username"`
	Secret       string   `json:"secret" yaml:"secret,omitempty" flag:"secret"`
	APIKey       string   `json:"apiKey" yaml:"api-key,omitempty" flag:"api-key"`
	AuthTokenCmd []string `json:"authTokenCmd,omitempty" yaml:"auth-token-cmd,omitempty" flag:"auth-token-cmd"`
}

func Defaults() Settings {
	return Settings{AuthMode: AuthBasic}
}

// ValidationError is a problem the user has to fix in their settings (or input) before anything
// is sent to Confluence.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks the settings hold everything the selected auth mode needs.
func (s Settings) Validate() error {
	if strings.TrimSpace(s.EndpointURL) == "" {
		return &ValidationError{Message: "Please configure your Confluence URL first (--endpoint-url or `config save`)."}
	}

	switch s.AuthMode {
	case AuthToken:
		if strings.TrimSpace(s.APIKey) == "" {
			return &ValidationError{Message: "Please configure your API key in the settings."}
		}
	case AuthBasic, "":
		if strings.TrimSpace(s.Username) == "" || strings.TrimSpace(s.Secret) == "" {
			return &ValidationError{Message: "Please configure your username and password in the settings."}
		}
	default:
		return &ValidationError{Message: fmt.Sprintf("Unknown auth mode %q, expected %q or %q.", s.AuthMode, AuthBasic, AuthToken)}
	}

	return nil
}

// Configured is Validate for callers that only need a yes or no, such as the preview loop which
// silently does nothing until the user has set things up.
func (s Settings) Configured() bool {
	return s.Validate() == nil
}

// Auth maps the settings onto the client's auth scheme.
func (s Settings) Auth() confluence.Auth {
	if s.AuthMode == AuthToken {
		return confluence.Auth{Token: s.APIKey}
	}
	return confluence.Auth{Username: s.Username, Token: s.Secret}
}

// BaseURL is the endpoint without trailing slashes, which is what the web UI links hang off.
func (s Settings) BaseURL() string {
	return strings.TrimRight(strings.TrimSpace(s.EndpointURL), "/")
}

// HistoryURL points at the page history view of the given page.
func (s Settings) HistoryURL(id fmt.Stringer) string {
	return fmt.Sprintf("%s/pages/viewpage.action?pageId=%s&showVersions=true",
		s.BaseURL(), url.QueryEscape(id.String()))
}

// Redacted returns a copy that is safe to print.
func (s Settings) Redacted() Settings {
	mask := func(v string) string {
		if v == "" {
			return ""
		}
		return "********"
	}
	s.Secret = mask(s.Secret)
	s.APIKey = mask(s.APIKey)
	return s
}

// Store reads and writes one settings file.
type Store struct {
	Path string
}

// DefaultPath is $CONFLUENCE_COPIER_SETTINGS if set, otherwise settings.json in the per-user
// config directory (~/.config on Linux, ~/Library/Application Support on macOS, %AppData% on
// Windows).
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvPath); p != "" {
		return homedir.Expand(p)
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("settings: couldn't find user config directory: %w", err)
	}
	return filepath.Join(dir, appDir, fileName), nil
}

// NewStore expands ~ in path; an empty path means DefaultPath.
func NewStore(path string) (Store, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return Store{}, err
		}
		return Store{Path: p}, nil
	}

	expanded, err := homedir.Expand(path)
	if err != nil {
		return Store{}, fmt.Errorf("settings: unable to expand homedir: %w", err)
	}
	return Store{Path: expanded}, nil
}

// Load never fails: a missing or unreadable file gives you the defaults.
func (s Store) Load() Settings {
	loaded, err := s.read()
	if err != nil {
		return Defaults()
	}
	return loaded
}

// Exists reports whether there is a settings file to load.
func (s Store) Exists() bool {
	_, err := os.Stat(s.Path)
	return !errors.Is(err, os.ErrNotExist)
}

func (s Store) read() (Settings, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return Settings{}, err
	}

	loaded := Defaults()
	if err := json.Unmarshal(raw, &loaded); err != nil {
		return Settings{}, err
	}
	if loaded.AuthMode == "" {
		loaded.AuthMode = AuthBasic
	}
	return loaded, nil
}

// Save writes the settings as indented JSON, creating the directory if needed.  The file holds
// secrets, so it is only readable by the user.
func (s Store) Save(settings Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("settings: couldn't create directory for %s: %w", s.Path, err)
	}

	raw, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("settings: couldn't encode settings: %w", err)
	}

	if err := os.WriteFile(s.Path, raw, 0o600); err != nil {
		return fmt.Errorf("settings: couldn't write %s: %w", s.Path, err)
	}
	return nil
}
