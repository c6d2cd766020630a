package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucas-albers-lz4/kubedeps/pkg/credentials"
)

func remoteOf(t *testing.T, c Client) *RemoteClient {
	t.Helper()
	if cc, ok := c.(*CachingClient); ok {
		c = cc.inner
	}
	rc, ok := c.(*RemoteClient)
	require.True(t, ok, "unexpected client type %T", c)
	return rc
}

func TestFactoryDefaultRegistry(t *testing.T) {
	f := NewFactory(FactoryConfig{
		Credentials: credentials.NewFinder([]credentials.Credential{
			{Type: credentials.TypeDockerRegistry, Host: "index.docker.io", Username: "ignored"},
		}),
	})

	first, err := f.ClientFor("")
	require.NoError(t, err)
	for _, host := range []string{"docker.io", "registry.hub.docker.com", "index.docker.io"} {
		c, err := f.ClientFor(host)
		require.NoError(t, err)
		assert.Same(t, first, c, host)
	}

	rc := remoteOf(t, first)
	assert.Equal(t, "index.docker.io", rc.Host())
	assert.Equal(t, authn.Anonymous, rc.auth)
}

func TestFactoryOneClientPerHost(t *testing.T) {
	f := NewFactory(FactoryConfig{})

	a, err := f.ClientFor("quay.io")
	require.NoError(t, err)
	b, err := f.ClientFor(" quay.io ")
	require.NoError(t, err)
	c, err := f.ClientFor("ghcr.io")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	_, cached := a.(*CachingClient)
	assert.True(t, cached)
}

func TestFactoryDisableCache(t *testing.T) {
	f := NewFactory(FactoryConfig{DisableCache: true})
	c, err := f.ClientFor("quay.io")
	require.NoError(t, err)
	_, ok := c.(*RemoteClient)
	assert.True(t, ok)
}

func TestFactoryInvalidHost(t *testing.T) {
	f := NewFactory(FactoryConfig{})
	_, err := f.ClientFor("bad host")
	assert.True(t, errors.Is(err, ErrInvalidHost), "got %v", err)
}

func TestFactoryUsesCredentials(t *testing.T) {
	_, host := newTestRegistry(t, testUser, testPassword)
	pushRandom(t, host, "private/app", "2.0", &authn.Basic{Username: testUser, Password: testPassword})

	withCreds := NewFactory(FactoryConfig{
		Credentials: credentials.NewFinder([]credentials.Credential{
			{Type: credentials.TypeDockerRegistry, Host: host, Username: testUser, Password: testPassword},
		}),
		InsecureRegistries: []string{host},
	})
	client, err := withCreds.ClientFor(host)
	require.NoError(t, err)
	assert.Len(t, remoteOf(t, client).nameOpt, 1)

	tags, err := client.ListTags(context.Background(), "private/app")
	require.NoError(t, err)
	assert.Equal(t, []string{"2.0"}, tags)

	without := NewFactory(FactoryConfig{InsecureRegistries: []string{host}})
	client, err = without.ClientFor(host)
	require.NoError(t, err)
	_, err = client.ListTags(context.Background(), "private/app")
	assert.True(t, errors.Is(err, ErrUnauthorized), "got %v", err)
}
