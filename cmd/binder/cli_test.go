package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeScryfall(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("q") {
		case "set:fin":
			fmt.Fprint(w, `{"object":"list","has_more":false,"data":[
				{"id":"fin-2","name":"Tifa Lockhart","set":"fin","set_name":"Final Fantasy","collector_number":"20","rarity":"rare","layout":"normal"},
				{"id":"fin-1","name":"Moogle","set":"fin","set_name":"Final Fantasy","collector_number":"3","rarity":"common","layout":"normal"}]}`)
		case "set:fic":
			fmt.Fprint(w, `{"object":"list","has_more":false,"data":[
				{"id":"fic-1","name":"Sephiroth","set":"fic","set_name":"Final Fantasy Commander","collector_number":"1","rarity":"mythic","layout":"normal"}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"object":"error","code":"not_found","status":404,"details":"no cards"}`)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func writeConfig(t *testing.T, apiURL string, sets string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf(`[catalog]
set_codes = [%s]
api_base_url = %q
page_timeout = "5s"
rate_limit = "1ms"

[storage]
db_path = %q

[images]
cache_dir = %q
`, sets, apiURL, filepath.Join(dir, "binder.db"), filepath.Join(dir, "images"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgPath, verbose = "", false

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestList_GroupsAndFilters(t *testing.T) {
	cfgFile := writeConfig(t, fakeScryfall(t).URL, `"fin", "fic"`)

	out, err := execute(t, "--config", cfgFile, "list")
	require.NoError(t, err)

	assert.Contains(t, out, "Total: 3 cartas")
	common := strings.Index(out, "Rareza: common (0 de 1)")
	rare := strings.Index(out, "Rareza: rare (0 de 1)")
	mythic := strings.Index(out, "Rareza: mythic (0 de 1)")
	require.True(t, common >= 0 && rare > common && mythic > rare, out)

	out, err = execute(t, "--config", cfgFile, "list", "--set", "Final Fantasy Commander")
	require.NoError(t, err)
	assert.Contains(t, out, "Sephiroth")
	assert.NotContains(t, out, "Moogle")
}

func TestToggle_PersistsAcrossRuns(t *testing.T) {
	cfgFile := writeConfig(t, fakeScryfall(t).URL, `"fin"`)

	out, err := execute(t, "--config", cfgFile, "toggle", "fin-1")
	require.NoError(t, err)
	assert.Equal(t, "fin-1: la tengo\n", out)

	out, err = execute(t, "--config", cfgFile, "list", "--owned", "owned")
	require.NoError(t, err)
	assert.Contains(t, out, "Rareza: common (1 de 1)")
	assert.Contains(t, out, "[x]")
	assert.NotContains(t, out, "Tifa")

	out, err = execute(t, "--config", cfgFile, "toggle", "fin-1")
	require.NoError(t, err)
	assert.Equal(t, "fin-1: no la tengo\n", out)
}

func TestList_LoadFailure(t *testing.T) {
	cfgFile := writeConfig(t, fakeScryfall(t).URL, `"fin", "nope"`)

	_, err := execute(t, "--config", cfgFile, "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog load failed")
}

func TestList_BadOwnershipFlag(t *testing.T) {
	cfgFile := writeConfig(t, fakeScryfall(t).URL, `"fin"`)

	_, err := execute(t, "--config", cfgFile, "list", "--owned", "sometimes")
	assert.Error(t, err)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	out, err := execute(t, "--config", path, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "set_codes")

	_, err = execute(t, "--config", path, "config", "init")
	assert.Error(t, err)

	_, err = execute(t, "--config", path, "config", "init", "--force")
	assert.NoError(t, err)
}

func TestInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = 0\n"), 0o644))

	_, err := execute(t, "--config", path, "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestBackup_CreateListRestore(t *testing.T) {
	cfgFile := writeConfig(t, fakeScryfall(t).URL, `"fin"`)

	_, err := execute(t, "--config", cfgFile, "toggle", "fin-1")
	require.NoError(t, err)

	out, err := execute(t, "--config", cfgFile, "backup", "create")
	require.NoError(t, err)
	backupPath := strings.TrimSpace(out)
	assert.FileExists(t, backupPath)

	out, err = execute(t, "--config", cfgFile, "backup", "list")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Base(backupPath))

	_, err = execute(t, "--config", cfgFile, "toggle", "fin-1")
	require.NoError(t, err)

	_, err = execute(t, "--config", cfgFile, "backup", "restore", backupPath)
	require.NoError(t, err)

	out, err = execute(t, "--config", cfgFile, "list", "--owned", "owned")
	require.NoError(t, err)
	assert.Contains(t, out, "Moogle")
}

func TestVersionFlag(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "binder version dev")
}
