package installer

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mclang-up/internal/config"
	"mclang-up/internal/logger"
	"mclang-up/internal/runner"
)

func archiveManifest(source string) config.Manifest {
	m := config.Default()
	m.Components = []config.Component{{
		Name:            "libmc",
		Archive:         source,
		StripComponents: 1,
		SkipBuild:       true,
		Stdlib:          ".",
	}}
	return m
}

func TestInstallComponentFromLocalArchive(t *testing.T) {
	env := newTestEnv()
	require.NoError(t, afero.WriteFile(env.fs, "/dl/libmc.tar.gz", tarGz(t, []entry{
		{name: "libmc-1.0/std/io.mcl", body: "io", mode: 0o644},
	}), 0o644))
	m := archiveManifest("/dl/libmc.tar.gz")
	in := NewInstaller(logger.Discard(), env.runner, env.fs, m)
	cfg := config.InstallConfig{Root: testRoot, Branch: "stable"}

	require.NoError(t, in.InstallComponent(cfg, m.Components[0]))

	assert.Empty(t, env.runner.calls)
	assert.Equal(t, "io", readFile(t, env.fs, filepath.Join(testRoot, "components", "libmc", "std", "io.mcl")))
}

func TestInstallComponentFromURL(t *testing.T) {
	payload := zipped(t, []entry{{name: "libmc-main/std/io.mcl", body: "io"}})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	env := newTestEnv()
	m := archiveManifest(srv.URL + "/archive/main.zip")
	in := NewInstaller(logger.Discard(), env.runner, env.fs, m)
	in.HTTPClient = srv.Client()
	cfg := config.InstallConfig{Root: testRoot, Branch: "stable"}

	require.NoError(t, in.InstallComponent(cfg, m.Components[0]))

	assert.Equal(t, "io", readFile(t, env.fs, filepath.Join(testRoot, "components", "libmc", "std", "io.mcl")))
	leftover, err := afero.Exists(env.fs, filepath.Join(testRoot, "components", ".libmc-download.zip"))
	require.NoError(t, err)
	assert.False(t, leftover)
}

func TestInstallComponentCleansUpFailedDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Promise more than is sent so the transfer breaks off midway
		w.Header().Set("Content-Length", "4096")
		_, _ = w.Write([]byte("PK\x03\x04 truncated"))
	}))
	defer srv.Close()

	env := newTestEnv()
	m := archiveManifest(srv.URL + "/archive/main.zip")
	in := NewInstaller(logger.Discard(), env.runner, env.fs, m)
	in.HTTPClient = srv.Client()
	cfg := config.InstallConfig{Root: testRoot, Branch: "stable"}
	require.NoError(t, env.fs.MkdirAll(cfg.ComponentsDir(), 0o755))

	err := in.InstallComponent(cfg, m.Components[0])

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unpack libmc")
	leftover, err := afero.Exists(env.fs, filepath.Join(testRoot, "components", ".libmc-download.zip"))
	require.NoError(t, err)
	assert.False(t, leftover)
}

func TestUpdateComponentReplacesArchiveContents(t *testing.T) {
	env := newTestEnv()
	require.NoError(t, afero.WriteFile(env.fs, "/dl/libmc.tar.gz", tarGz(t, []entry{
		{name: "libmc-1.1/std/io.mcl", body: "io v2", mode: 0o644},
	}), 0o644))
	stale := filepath.Join(testRoot, "components", "libmc", "std", "removed.mcl")
	require.NoError(t, afero.WriteFile(env.fs, stale, []byte("old"), 0o644))
	m := archiveManifest("/dl/libmc.tar.gz")
	in := NewInstaller(logger.Discard(), env.runner, env.fs, m)
	cfg := config.InstallConfig{Root: testRoot, Branch: "stable"}

	require.NoError(t, in.UpdateComponent(cfg, m.Components[0]))

	assert.Equal(t, "io v2", readFile(t, env.fs, filepath.Join(testRoot, "components", "libmc", "std", "io.mcl")))
	gone, err := afero.Exists(env.fs, stale)
	require.NoError(t, err)
	assert.False(t, gone)
}

func TestInstallComponentVerboseInheritsOutput(t *testing.T) {
	env := newTestEnv()
	m := config.Default()
	in := NewInstaller(logger.Discard(), env.runner, env.fs, m)
	cfg := config.InstallConfig{Root: testRoot, Branch: "dev", Verbose: true}

	require.NoError(t, in.InstallComponent(cfg, m.Components[0]))

	require.Len(t, env.runner.calls, 2)
	for _, c := range env.runner.calls {
		assert.Equal(t, runner.ModeInherit, c.Mode)
	}
}

func TestInstallComponentSkipsBuild(t *testing.T) {
	env := newTestEnv()
	m := config.Default()
	libmc, err := m.Select("libmc")
	require.NoError(t, err)
	in := NewInstaller(logger.Discard(), env.runner, env.fs, m)

	require.NoError(t, in.InstallComponent(config.InstallConfig{Root: testRoot, Branch: "stable"}, libmc[0]))

	assert.Equal(t, []string{"components: git clone -b stable https://github.com/mc-lang/libmc.git libmc"}, env.runner.commands())
}

func TestIsURL(t *testing.T) {
	assert.True(t, isURL("https://example.com/a.zip"))
	assert.True(t, isURL("http://localhost:8080/a.tar.gz"))
	assert.False(t, isURL("/tmp/a.zip"))
	assert.False(t, isURL("file:///tmp/a.zip"))
	assert.False(t, isURL("libmc.zip"))
}
