package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/onboarding/internal/client/config"
	"github.com/dmitrijs2005/onboarding/internal/logging"
	srvconfig "github.com/dmitrijs2005/onboarding/internal/server/config"
	"github.com/dmitrijs2005/onboarding/internal/server/httpapi"
	"github.com/dmitrijs2005/onboarding/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/onboarding/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	t        *testing.T
	api      *httptest.Server
	uploads  *atomic.Int32
	dbPath   string
	imageDir string
}

func newEnv(t *testing.T) *env {
	t.Helper()

	uploads := &atomic.Int32{}
	s3 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			_, _ = io.Copy(io.Discard, r.Body)
			uploads.Add(1)
		}
	}))
	t.Cleanup(s3.Close)

	cfg := &srvconfig.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "cli-test"
	cfg.S3BaseEndpoint = s3.URL

	rm := repomanager.NewMemoryRepositoryManager()
	router := httpapi.NewRouter(cfg, logging.Nop(), httpapi.Deps{
		Auth:   services.NewUserService(rm, cfg, logging.Nop()),
		Forms:  services.NewFormService(rm, logging.Nop()),
		Images: services.NewImageService(rm, cfg),
		Store:  rm,
	})
	apiSrv := httptest.NewServer(router)
	t.Cleanup(apiSrv.Close)

	old := isTerminal
	isTerminal = func(int) bool { return false }
	t.Cleanup(func() { isTerminal = old })

	dir := t.TempDir()
	return &env{
		t:        t,
		api:      apiSrv,
		uploads:  uploads,
		dbPath:   filepath.Join(dir, "session.db"),
		imageDir: dir,
	}
}

// run executes one onboard invocation with stdin and returns stdout.
func (e *env) run(stdin string, args ...string) (string, error) {
	e.t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.AutosaveDelay = 20 * time.Millisecond

	var out, errOut bytes.Buffer
	root := NewRootCommand(cfg, strings.NewReader(stdin), &out, &errOut)
	root.SetArgs(append([]string{"--server", e.api.URL, "--session-db", e.dbPath}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *env) pngFile() string {
	e.t.Helper()
	path := filepath.Join(e.imageDir, "me.png")
	img := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	require.NoError(e.t, os.WriteFile(path, img, 0o600))
	return path
}

func TestCLI_SignupMeLogoutLogin(t *testing.T) {
	e := newEnv(t)

	out, err := e.run("secret1\n", "signup", "--name", "Ann", "--email", "ann@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome, Ann!")

	out, err = e.run("", "me")
	require.NoError(t, err)
	assert.Contains(t, out, "ann@example.com")

	out, err = e.run("", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out.")

	_, err = e.run("", "me")
	assert.ErrorContains(t, err, "onboard login")

	out, err = e.run("ann@example.com\nsecret1\n", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as ann@example.com.")

	_, err = e.run("wrong-password\n", "login", "--email", "ann@example.com")
	assert.Error(t, err)
}

func TestCLI_SignupPromptsForMissingValues(t *testing.T) {
	e := newEnv(t)

	out, err := e.run("Bob\nbob@example.com\nsecret1\n", "signup")
	require.NoError(t, err)
	assert.Contains(t, out, "Name: ")
	assert.Contains(t, out, "Email: ")
	assert.Contains(t, out, "Welcome, Bob!")
}

func TestCLI_WizardFullRun(t *testing.T) {
	e := newEnv(t)
	_, err := e.run("secret1\n", "signup", "--name", "A", "--email", "a@x.com")
	require.NoError(t, err)

	script := strings.Join([]string{
		"yourName=A",
		":next", // incomplete
		"yourUsername=a",
		"describesYou=Student",
		"location=india",
		"howDoYouKnowUs=friend",
		":next",
		"mainGoal=Get a Good Job",
		":next",
		":next",
		"selectedSkills=Go, SQL",
		":next",
		"jobSeeking=yes",
		"profileImage=" + e.pngFile(),
		":next",
	}, "\n") + "\n"

	out, err := e.run(script, "wizard")
	require.NoError(t, err)
	assert.Contains(t, out, "Step 1 of 5")
	assert.Contains(t, out, "step 1 is incomplete")
	assert.Contains(t, out, "Step 5 of 5")
	assert.Contains(t, out, "Form submitted. Thank you!")
	assert.Equal(t, int32(1), e.uploads.Load())

	out, err = e.run("", "form", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Go, SQL")
	assert.Contains(t, out, "Get a Good Job")
	assert.Contains(t, out, "users/")
	assert.Contains(t, out, "Submitted at")

	out, err = e.run("", "form", "image-url")
	require.NoError(t, err)
	assert.Contains(t, out, "X-Amz-Signature")
}

func TestCLI_WizardResumesAndNavigates(t *testing.T) {
	e := newEnv(t)
	_, err := e.run("secret1\n", "signup", "--name", "A", "--email", "a@x.com")
	require.NoError(t, err)

	out, err := e.run("mainGoal=Others\n:goto 2\nmainGoal=Others\n:quit\n", "wizard")
	require.NoError(t, err)
	assert.Contains(t, out, "error:")
	assert.Contains(t, out, "Progress saved. Bye!")

	script := strings.Join([]string{
		":goto 9",
		":goto x",
		":goto 2",
		":show",
		":back",
		":bogus",
		"location=mars",
		"noequals",
		":quit",
	}, "\n") + "\n"
	out, err = e.run(script, "wizard")
	require.NoError(t, err)
	assert.Contains(t, out, "= Others")
	assert.Contains(t, out, "usage: :goto N")
	assert.Contains(t, out, "unknown command :bogus")
	assert.Contains(t, out, "expected field=value")
	assert.Contains(t, out, "location: must be one of")
}

func TestCLI_WizardAutosavesInBackground(t *testing.T) {
	e := newEnv(t)
	_, err := e.run("secret1\n", "signup", "--name", "A", "--email", "a@x.com")
	require.NoError(t, err)

	pr, pw := io.Pipe()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.AutosaveDelay = 10 * time.Millisecond

	var out bytes.Buffer
	root := NewRootCommand(cfg, pr, &out, io.Discard)
	root.SetArgs([]string{"--server", e.api.URL, "--session-db", e.dbPath, "wizard"})

	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(context.Background()) }()

	_, err = io.WriteString(pw, "yourName=Autosaved\n")
	require.NoError(t, err)

	// the value reaches the server without :next or :quit
	require.Eventually(t, func() bool {
		show, err := e.run("", "form", "show")
		return err == nil && strings.Contains(show, "Autosaved")
	}, 3*time.Second, 20*time.Millisecond)

	require.NoError(t, pw.Close())
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("wizard did not exit on EOF")
	}
}

func TestCLI_WizardRequiresSession(t *testing.T) {
	e := newEnv(t)
	_, err := e.run("", "wizard")
	assert.ErrorContains(t, err, "onboard login")
}

func TestCLI_Health(t *testing.T) {
	e := newEnv(t)
	out, err := e.run("", "health")
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)
}

func TestCLI_HelpNeedsNoSession(t *testing.T) {
	e := newEnv(t)
	out, err := e.run("", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "wizard")
	assert.NoFileExists(t, e.dbPath)
}
