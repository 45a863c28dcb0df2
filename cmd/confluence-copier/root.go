/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"reflect"
	"strings"

	"github.com/fatih/structs"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/toothbrush/confluence-copier/confluence"
	"github.com/toothbrush/confluence-copier/settings"
	"gopkg.in/dnaeon/go-vcr.v3/cassette"
	"gopkg.in/dnaeon/go-vcr.v3/recorder"
)

var (
	// Store the result of binding cobra flags
	SettingsPath string
	Debug        bool
	WithVCR      bool

	EndpointURL string
	AuthMode    string
	Username    string
	Secret      string
	APIKey      string
	// Command to run to retrieve the secret (basic auth) or API key (token auth)
	AuthTokenCmd []string

	// Where settings were actually read from, after defaults and ~ expansion.
	SettingsActual string
	ParsedSettings settings.Settings

	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
)

var rootUsage = strings.TrimSpace(`
Copy the body of one Confluence page onto another.  Pages can be given as a numeric page ID or
pasted straight from the browser: both .../pages/<id>/Title and ...?pageId=<id> links work.

Connection settings live in a small JSON file (see "config which"); any of them can be overridden
with flags, and "config save" writes the flags you pass back to that file.
`)

var rootCmd = &cobra.Command{
	Use:           "confluence-copier",
	Short:         "Copy Confluence page content from one page to another",
	Long:          rootUsage,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()

		if err := initializeConfig(cmd); err != nil {
			return fmt.Errorf("confluence-copier: failed to initialise config: %w", err)
		}
		return nil
	},
}

func init() {
	// Define cobra flags, the default value has the lowest (least significant) precedence
	rootCmd.PersistentFlags().StringVar(&SettingsPath, "settings", "", "settings file location (default: settings.json in your user config dir, respects "+settings.EnvPath+")")
	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "display debug output")
	rootCmd.PersistentFlags().BoolVar(&WithVCR, "with-vcr", false, "record Confluence responses to fixtures/ and replay them on later runs")

	rootCmd.PersistentFlags().StringVar(&EndpointURL, "endpoint-url", "", "your Confluence base URL, e.g. https://ORG.atlassian.net/wiki")
	rootCmd.PersistentFlags().StringVar(&AuthMode, "auth-mode", string(settings.AuthBasic), "how to authenticate: basic (username and secret) or token (API key)")
	rootCmd.PersistentFlags().StringVar(&Username, "username", "", "your Atlassian username, for basic auth")
	rootCmd.PersistentFlags().StringVar(&Secret, "secret", "", "password or API token, for basic auth")
	rootCmd.PersistentFlags().StringVar(&APIKey, "api-key", "", "personal access token, for token auth")
	rootCmd.PersistentFlags().StringSliceVar(&AuthTokenCmd, "auth-token-cmd", []string{}, "shell command that prints the secret or API key, if you'd rather not store it")
}

func setupLogging() {
	level := zerolog.InfoLevel
	if Debug {
		level = zerolog.DebugLevel
	}
	logger = logger.Level(level)
}

func initializeConfig(cmd *cobra.Command) error {
	store, err := settings.NewStore(SettingsPath)
	if err != nil {
		return err
	}
	SettingsActual = store.Path

	if !store.Exists() {
		logger.Debug().Str("path", SettingsActual).Msg("no settings file, using flags only")
	}
	// a broken file reads as defaults, same as a missing one
	ParsedSettings = store.Load()

	if err := bindFlags(cmd, ParsedSettings); err != nil {
		return fmt.Errorf("confluence-copier: failed to bind flags: %w", err)
	}

	return nil
}

// Apply each value from the settings file to its flag, unless the flag was given explicitly.
func bindFlags(cmd *cobra.Command, s settings.Settings) error {
	for _, field := range structs.Fields(s) {
		key := field.Tag("flag")
		if key == "" {
			return fmt.Errorf("confluence-copier: could not retrieve struct tag 'flag' for %s", field.Name())
		}
		if flag := cmd.Flag(key); flag == nil {
			continue
		}
		if cmd.Flags().Changed(key) {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			// AuthMode is a named string type, so no plain type assertion here
			v := reflect.ValueOf(field.Value()).String()
			if v != "" {
				if err := cmd.Flags().Set(key, v); err != nil {
					return fmt.Errorf("confluence-copier: bad value for %s: %w", key, err)
				}
			}

		case reflect.Slice:
			ss, ok := field.Value().([]string)
			if !ok {
				return fmt.Errorf("confluence-copier: found unrecognised field: %s", field.Name())
			}
			for _, v := range ss {
				// yes, repeatedly calling Set() appends to the slice...
				if err := cmd.Flags().Set(key, v); err != nil {
					return fmt.Errorf("confluence-copier: bad value for %s: %w", key, err)
				}
			}

		default:
			return fmt.Errorf("confluence-copier: found unrecognised field: %s", field.Name())
		}
	}

	return nil
}

// flagSettings are the settings as given, file plus flags.  Nothing is executed.
func flagSettings() settings.Settings {
	return settings.Settings{
		EndpointURL:  EndpointURL,
		AuthMode:     settings.AuthMode(AuthMode),
		Username:     Username,
		Secret:       Secret,
		APIKey:       APIKey,
		AuthTokenCmd: AuthTokenCmd,
	}
}

// effectiveSettings are flagSettings with the credential filled in from auth-token-cmd, if one
// is configured and the credential is missing.
func effectiveSettings() (settings.Settings, error) {
	s := flagSettings()
	if len(s.AuthTokenCmd) == 0 {
		return s, nil
	}

	needsToken := (s.AuthMode == settings.AuthToken && s.APIKey == "") ||
		(s.AuthMode != settings.AuthToken && s.Secret == "")
	if !needsToken {
		return s, nil
	}

	tokenCmdOutput, err := exec.Command(s.AuthTokenCmd[0], s.AuthTokenCmd[1:]...).Output()
	if err != nil {
		return s, fmt.Errorf("confluence-copier: couldn't execute auth-token-cmd '%v': %w", s.AuthTokenCmd, err)
	}
	token := strings.TrimSpace(strings.Split(string(tokenCmdOutput), "\n")[0])

	if s.AuthMode == settings.AuthToken {
		s.APIKey = token
	} else {
		s.Secret = token
	}
	return s, nil
}

// connect validates the settings and builds an API client.  Call the returned stop function when
// done; it flushes the VCR cassette if --with-vcr is on.
func connect(cassetteName string) (*confluence.API, settings.Settings, func(), error) {
	noop := func() {}

	s, err := effectiveSettings()
	if err != nil {
		return nil, s, noop, err
	}
	if err := s.Validate(); err != nil {
		return nil, s, noop, err
	}

	api, err := confluence.NewAPI(s.EndpointURL, s.Auth())
	if err != nil {
		return nil, s, noop, fmt.Errorf("confluence-copier: couldn't instantiate Confluence API: %w", err)
	}

	if !WithVCR {
		return api, s, noop, nil
	}

	r, err := newRecorder(cassetteName)
	if err != nil {
		return nil, s, noop, err
	}
	api.Client = r.GetDefaultClient()

	return api, s, func() {
		if err := r.Stop(); err != nil {
			logger.Warn().Err(err).Msg("couldn't save go-vcr cassette")
		}
	}, nil
}

func newRecorder(name string) (*recorder.Recorder, error) {
	opts := &recorder.Options{
		CassetteName:       "fixtures/" + name,
		Mode:               recorder.ModeReplayWithNewEpisodes,
		SkipRequestLatency: true,
		RealTransport:      http.DefaultTransport,
	}

	r, err := recorder.NewWithOptions(opts)
	if err != nil {
		return nil, fmt.Errorf("confluence-copier: couldn't set up go-vcr recording: %w", err)
	}

	// Add a hook which removes Authorization headers from all requests
	hook := func(i *cassette.Interaction) error {
		delete(i.Request.Headers, "Authorization")
		return nil
	}
	r.AddHook(hook, recorder.AfterCaptureHook)
	r.SetReplayableInteractions(true)

	return r, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("confluence-copier: execution error: %w", err)
	}

	return nil
}
