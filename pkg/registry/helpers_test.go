package registry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	ggcrregistry "github.com/google/go-containerregistry/pkg/registry"
	v1 "github.com/google/go-containerregistry/pkg/v1"
	"github.com/google/go-containerregistry/pkg/v1/random"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/stretchr/testify/require"
)

const (
	testUser     = "ci"
	testPassword = "s3cret"
)

// newTestRegistry starts an in-memory registry. With a username set, every
// request must carry matching basic auth.
func newTestRegistry(t *testing.T, username, password string) (*httptest.Server, string) {
	t.Helper()
	inner := ggcrregistry.New()

	handler := inner
	if username != "" {
		handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, p, ok := r.BasicAuth()
			if !ok || u != username || p != password {
				w.Header().Set("WWW-Authenticate", `Basic realm="test"`)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"errors":[{"code":"UNAUTHORIZED","message":"authentication required"}]}`))
				return
			}
			inner.ServeHTTP(w, r)
		})
	}

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, strings.TrimPrefix(server.URL, "http://")
}

// pushRandom pushes a random image to host/repository:tag and returns its digest.
func pushRandom(t *testing.T, host, repository, tag string, auth authn.Authenticator) v1.Hash {
	t.Helper()
	img, err := random.Image(256, 1)
	require.NoError(t, err)

	ref, err := name.NewTag(host+"/"+repository+":"+tag, name.Insecure)
	require.NoError(t, err)
	require.NoError(t, remote.Write(ref, img, remote.WithAuth(auth)))

	digest, err := img.Digest()
	require.NoError(t, err)
	return digest
}
