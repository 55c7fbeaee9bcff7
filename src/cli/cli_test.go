package cli_test

import (
	"bytes"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"notes-app/src/cli"
	"notes-app/src/config"
	"notes-app/src/infrastructure/repository"
	"notes-app/src/interface/handler"
	"notes-app/src/logger"
	"notes-app/src/routes"
	"notes-app/src/service"
	"notes-app/src/usecase"
	"notes-app/src/validator"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	server  string
	cfgFile string
	session string
}

func setup(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.Log.SetOutput(io.Discard)
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	cfg := &config.Config{Auth: config.AuthConfig{JWTSecret: "cli-test", JWTExpiresIn: time.Hour, BcryptCost: 4}}
	v := validator.NewCustomValidator()
	authService := service.NewAuthService(repository.NewMemoryUserRepository(), service.NewJWTService(cfg.Auth), 4)

	r := gin.New()
	routes.SetupRoutes(r, routes.Dependencies{
		Config:      cfg,
		NoteHandler: handler.NewNoteHandler(usecase.NewNoteUsecase(repository.NewMemoryNoteRepository()), v, quiet),
		AuthHandler: handler.NewAuthHandler(authService, v, quiet),
		AuthService: authService,
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	e := &env{
		server:  srv.URL,
		cfgFile: filepath.Join(dir, "notectl.yaml"),
		session: filepath.Join(dir, "session.json"),
	}
	t.Setenv("NOTECTL_SESSION_FILE", e.session)
	return e
}

// run は1回のnotectl起動を再現する
func (e *env) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := cli.NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append(args, "--config", e.cfgFile, "--server", e.server))
	err := root.Execute()
	return out.String(), err
}

func (e *env) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, "", args...)
	require.NoError(t, err, out)
	return out
}

func createdID(t *testing.T, out string) string {
	t.Helper()
	const prefix = "Note created: "
	idx := strings.Index(out, prefix)
	require.GreaterOrEqual(t, idx, 0, out)
	return strings.TrimSpace(out[idx+len(prefix):])
}

func TestCLI_NoteLifecycle(t *testing.T) {
	e := setup(t)

	out := e.mustRun(t, "register", "--username", "alice", "--email", "alice@example.com", "--password", "secret1")
	assert.Contains(t, out, "alice")
	_, err := os.Stat(e.session)
	require.NoError(t, err)

	groceries := createdID(t, e.mustRun(t, "new", "--title", "Groceries", "--body", "milk\neggs", "--tag", "Personal"))
	standup := createdID(t, e.mustRun(t, "new", "--title", "Standup", "--body", "sync with the team", "--tag", "Work,Ideas"))

	out = e.mustRun(t, "list")
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "Standup")
	assert.Contains(t, out, "milk eggs")

	out = e.mustRun(t, "tags")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "All", lines[0])
	assert.ElementsMatch(t, []string{"Personal", "Work", "Ideas"}, lines[1:])

	out = e.mustRun(t, "list", "--tag", "Work")
	assert.Contains(t, out, "Standup")
	assert.NotContains(t, out, "Groceries")

	out = e.mustRun(t, "list", "--search", "MILK")
	assert.Contains(t, out, "Groceries")
	assert.NotContains(t, out, "Standup")

	out = e.mustRun(t, "fav", standup)
	assert.Contains(t, out, "Added to favorites")
	out = e.mustRun(t, "list", "--section", "favorites")
	assert.Contains(t, out, "Standup")
	assert.NotContains(t, out, "Groceries")

	e.mustRun(t, "edit", groceries, "--title", "Weekly groceries", "--clear-tags")
	out = e.mustRun(t, "show", groceries)
	assert.Contains(t, out, "Weekly groceries")
	assert.Contains(t, out, "milk")

	out = e.mustRun(t, "rm", groceries)
	assert.Contains(t, out, "Note moved to trash")
	out = e.mustRun(t, "list", "--section", "trash")
	assert.Contains(t, out, "Weekly groceries")

	_, err = e.run(t, "", "fav", groceries)
	assert.ErrorContains(t, err, "restore it first")
	_, err = e.run(t, "", "purge", standup)
	assert.ErrorContains(t, err, "only notes in the trash")

	e.mustRun(t, "restore", groceries)
	e.mustRun(t, "rm", groceries)
	out = e.mustRun(t, "purge", groceries)
	assert.Contains(t, out, "Note permanently deleted")

	out = e.mustRun(t, "list", "--section", "trash")
	assert.Contains(t, out, "No notes in trash")

	_, err = e.run(t, "", "show", groceries)
	assert.Error(t, err)
}

func TestCLI_LoginPromptAndLogout(t *testing.T) {
	e := setup(t)
	e.mustRun(t, "register", "--username", "bob", "--email", "bob@example.com", "--password", "secret1")
	e.mustRun(t, "logout")

	_, err := e.run(t, "", "list")
	assert.ErrorContains(t, err, "not logged in")

	out, err := e.run(t, "bob@example.com\nsecret1\n", "login")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Logged in as bob")

	_, err = e.run(t, "", "login", "--email", "bob@example.com", "--password", "wrong-password")
	assert.Error(t, err)
}

func TestCLI_ListRejectsUnknownValues(t *testing.T) {
	e := setup(t)
	e.mustRun(t, "register", "--username", "carol", "--email", "carol@example.com", "--password", "secret1")

	_, err := e.run(t, "", "list", "--section", "archive")
	assert.ErrorContains(t, err, "unknown section")

	_, err = e.run(t, "", "list", "--sort", "size")
	assert.ErrorContains(t, err, "unknown sort key")

	_, err = e.run(t, "", "edit", "x", "--tag", "a", "--clear-tags")
	assert.ErrorContains(t, err, "mutually exclusive")
}

func TestCLI_Settings(t *testing.T) {
	e := setup(t)

	out := e.mustRun(t, "settings")
	assert.Contains(t, out, "dark")

	e.mustRun(t, "settings", "--theme", "light", "--compact", "--default-section", "favorites")
	raw, err := os.ReadFile(e.cfgFile)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "theme: light")
	assert.Contains(t, string(raw), "default_section: favorites")

	out = e.mustRun(t, "settings")
	assert.Contains(t, out, "light")
	assert.Contains(t, out, "favorites")

	_, err = e.run(t, "", "settings", "--font-size", "huge")
	assert.ErrorContains(t, err, "unknown font size")
}
