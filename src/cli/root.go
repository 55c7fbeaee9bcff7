// Package cli implements the notectl command tree.
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"notes-app/src/client"
	"notes-app/src/view"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	keyServer         = "server"
	keySessionFile    = "session_file"
	keyTheme          = "settings.theme"
	keyFontSize       = "settings.font_size"
	keyCompactMode    = "settings.compact_mode"
	keyDefaultSection = "settings.default_section"
)

// app is the state shared by every subcommand of one invocation
type app struct {
	v          *viper.Viper
	cfgFile    string
	verbose    bool
	httpClient *http.Client
	log        *logrus.Logger
}

// NewRootCmd builds the notectl command tree
func NewRootCmd() *cobra.Command {
	a := &app{
		v:          viper.New(),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        logrus.New(),
	}

	root := &cobra.Command{
		Use:           "notectl",
		Short:         "Terminal client for the notes API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.log.SetOutput(cmd.ErrOrStderr())
			a.log.SetLevel(logrus.WarnLevel)
			if a.verbose {
				a.log.SetLevel(logrus.DebugLevel)
			}
			return a.loadConfig()
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default $HOME/.notectl.yaml)")
	root.PersistentFlags().String("server", "", "notes API base URL")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	_ = a.v.BindPFlag(keyServer, root.PersistentFlags().Lookup("server"))

	root.AddCommand(
		a.loginCmd(),
		a.registerCmd(),
		a.logoutCmd(),
		a.listCmd(),
		a.showCmd(),
		a.newCmd(),
		a.editCmd(),
		a.rmCmd(),
		a.restoreCmd(),
		a.favCmd(),
		a.purgeCmd(),
		a.tagsCmd(),
		a.settingsCmd(),
	)
	return root
}

// Execute runs notectl and returns the process exit code
func Execute() int {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return 1
	}
	return 0
}

func (a *app) loadConfig() error {
	a.v.SetEnvPrefix("NOTECTL")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	defaults := view.DefaultSettings()
	a.v.SetDefault(keyServer, "http://localhost:5000")
	a.v.SetDefault(keyTheme, string(defaults.Theme))
	a.v.SetDefault(keyFontSize, string(defaults.FontSize))
	a.v.SetDefault(keyCompactMode, defaults.CompactMode)
	a.v.SetDefault(keyDefaultSection, string(defaults.DefaultSection))

	if sessionPath, err := client.DefaultSessionPath(); err == nil {
		a.v.SetDefault(keySessionFile, sessionPath)
	}

	path, err := a.configPath()
	if err != nil {
		return err
	}
	a.v.SetConfigFile(path)
	a.v.SetConfigType("yaml")

	if err := a.v.ReadInConfig(); err != nil {
		// 設定ファイルが無ければデフォルト値で動く
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}
	a.log.WithField("config", path).Debug("config loaded")
	return nil
}

func (a *app) configPath() (string, error) {
	if a.cfgFile != "" {
		return a.cfgFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home dir: %w", err)
	}
	return filepath.Join(home, ".notectl.yaml"), nil
}

func (a *app) sessionStore() *client.SessionStore {
	return client.NewSessionStore(a.v.GetString(keySessionFile))
}

func (a *app) settings() view.Settings {
	return view.Settings{
		Theme:          view.Theme(a.v.GetString(keyTheme)),
		FontSize:       view.FontSize(a.v.GetString(keyFontSize)),
		CompactMode:    a.v.GetBool(keyCompactMode),
		DefaultSection: view.Section(a.v.GetString(keyDefaultSection)),
	}
}

// client builds an API client from the saved session; a 401 destroys the session file
func (a *app) client() (*client.Client, error) {
	store := a.sessionStore()
	session, err := store.Load()
	if err != nil {
		if errors.Is(err, client.ErrNoSession) {
			return nil, errors.New("not logged in, run `notectl login` first")
		}
		return nil, err
	}

	return client.New(session,
		client.WithHTTPClient(a.httpClient),
		client.WithExpiryHandler(func() {
			if err := store.Clear(); err != nil {
				a.log.WithError(err).Warn("failed to clear expired session")
			}
		}),
	), nil
}
