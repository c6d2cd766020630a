package main

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	ggcrregistry "github.com/google/go-containerregistry/pkg/registry"
	"github.com/google/go-containerregistry/pkg/v1/random"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/lucas-albers-lz4/kubedeps/pkg/exitcodes"
)

const manifestDir = "/manifests"

// setupManifests installs an in-memory file system holding files under manifestDir.
func setupManifests(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(manifestDir, 0o755))
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, filepath.Join(manifestDir, name), []byte(content), 0o644))
	}
	t.Cleanup(SetFs(fs))
	return fs
}

func readManifest(t *testing.T, fs afero.Fs, name string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, filepath.Join(manifestDir, name))
	require.NoError(t, err)
	return string(data)
}

// run executes a fresh command tree so flag values never leak between tests.
func run(args ...string) (string, error) {
	return executeCommand(newRootCmd(), args...)
}

func requireExitCode(t *testing.T, err error, want int) {
	t.Helper()
	require.Error(t, err)
	code, ok := exitcodes.IsExitCodeError(err)
	require.True(t, ok, "expected an exit code error, got %v", err)
	require.Equal(t, want, code, "unexpected exit code for %v", err)
}

// startRegistry serves an in-memory registry, optionally behind basic auth,
// and returns its host.
func startRegistry(t *testing.T, username, password string) string {
	t.Helper()
	inner := ggcrregistry.New()

	handler := inner
	if username != "" {
		handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, p, ok := r.BasicAuth()
			if !ok || u != username || p != password {
				w.Header().Set("WWW-Authenticate", `Basic realm="test"`)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			inner.ServeHTTP(w, r)
		})
	}

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return strings.TrimPrefix(server.URL, "http://")
}

// pushImage pushes a random image to host/repository:tag and returns its digest.
func pushImage(t *testing.T, host, repository, tag string, auth authn.Authenticator) string {
	t.Helper()
	img, err := random.Image(128, 1)
	require.NoError(t, err)

	ref, err := name.NewTag(host+"/"+repository+":"+tag, name.Insecure)
	require.NoError(t, err)
	require.NoError(t, remote.Write(ref, img, remote.WithAuth(auth)))

	digest, err := img.Digest()
	require.NoError(t, err)
	return digest.String()
}
