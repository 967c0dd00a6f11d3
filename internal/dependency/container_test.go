package dependency

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fnrelay/gateway/internal/agent"
	"fnrelay/gateway/internal/config"
	"fnrelay/gateway/internal/registry"
)

type answerReasoner string

func (a answerReasoner) ChooseAction(context.Context, string, registry.Catalog, []agent.Step) (agent.Action, error) {
	return agent.Action{FinalAnswer: string(a)}, nil
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Secret = "s3cret"
	cfg.HookBackend = config.HookBackendMemory
	return cfg
}

func TestNewWiresServer(t *testing.T) {
	c, err := New(testConfig(), Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close(context.Background()) })

	names := map[string]bool{}
	for _, fn := range c.Registry().ListVisible() {
		names[fn.Name] = true
	}
	assert.True(t, names["sum_numbers"])
	assert.True(t, names["recall"])

	req := httptest.NewRequest(http.MethodGet, "/api/functions/", nil)
	req.Header.Set("X-Account-Id", "acct")
	req.Header.Set("X-Signature", c.Signer().Sign("acct"))
	w := httptest.NewRecorder()
	c.Server().Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewWithoutSecretFails(t *testing.T) {
	cfg := testConfig()
	cfg.Secret = ""
	_, err := New(cfg, Options{})
	assert.Error(t, err)
}

func TestNewRejectsMissingHostBuiltins(t *testing.T) {
	cfg := testConfig()
	cfg.BuiltinCategories = "text"
	_, err := New(cfg, Options{})
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestNewUsesReasonerOverride(t *testing.T) {
	c, err := New(testConfig(), Options{Reasoner: answerReasoner("hello")})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/agent/chat", nil)
	req.Body = http.NoBody
	req.Header.Set("X-Account-Id", "acct")
	req.Header.Set("X-Signature", c.Signer().Sign("acct"))
	w := httptest.NewRecorder()
	c.Server().Handler().ServeHTTP(w, req)
	// No instruction in the body.
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFileBackendUsesDataDir(t *testing.T) {
	cfg := testConfig()
	cfg.HookBackend = config.HookBackendFile
	cfg.DataDir = t.TempDir()
	c, err := New(cfg, Options{})
	require.NoError(t, err)
	assert.NoError(t, c.Close(context.Background()))
}
