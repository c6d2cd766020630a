package registry

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/v1/remote/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteClientAnonymous(t *testing.T) {
	_, host := newTestRegistry(t, "", "")
	d1 := pushRandom(t, host, "myreg/ubuntu", "17.04", authn.Anonymous)
	d2 := pushRandom(t, host, "myreg/ubuntu", "17.10", authn.Anonymous)

	client, err := NewRemoteClient(host, Options{Insecure: true})
	require.NoError(t, err)
	assert.Equal(t, host, client.Host())

	ctx := context.Background()

	tags, err := client.ListTags(ctx, "myreg/ubuntu")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"17.04", "17.10"}, tags)

	digest, err := client.DigestFor(ctx, "myreg/ubuntu", "17.04")
	require.NoError(t, err)
	assert.Equal(t, d1.String(), digest)

	digest, err = client.DigestFor(ctx, "myreg/ubuntu", "17.10")
	require.NoError(t, err)
	assert.Equal(t, d2.String(), digest)

	_, err = client.DigestFor(ctx, "myreg/ubuntu", "missing")
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)

	_, err = client.ListTags(ctx, "myreg/unknown")
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
}

func TestRemoteClientBasicAuth(t *testing.T) {
	_, host := newTestRegistry(t, testUser, testPassword)
	digest := pushRandom(t, host, "private/app", "1.0", &authn.Basic{Username: testUser, Password: testPassword})
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		client, err := NewRemoteClient(host, Options{Username: testUser, Password: testPassword, Insecure: true})
		require.NoError(t, err)

		tags, err := client.ListTags(ctx, "private/app")
		require.NoError(t, err)
		assert.Equal(t, []string{"1.0"}, tags)

		got, err := client.DigestFor(ctx, "private/app", "1.0")
		require.NoError(t, err)
		assert.Equal(t, digest.String(), got)
	})

	t.Run("anonymous is unauthorized", func(t *testing.T) {
		client, err := NewRemoteClient(host, Options{Insecure: true})
		require.NoError(t, err)

		_, err = client.ListTags(ctx, "private/app")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnauthorized), "got %v", err)
		assert.False(t, errors.Is(err, ErrNotFound))

		var reqErr *ErrRequest
		require.True(t, errors.As(err, &reqErr))
		assert.Equal(t, host, reqErr.Host)
		assert.Equal(t, OpListTags, reqErr.Op)
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		client, err := NewRemoteClient(host, Options{Username: testUser, Password: "wrong", Insecure: true})
		require.NoError(t, err)

		_, err = client.DigestFor(ctx, "private/app", "1.0")
		assert.True(t, errors.Is(err, ErrUnauthorized), "got %v", err)
	})
}

func TestNewRemoteClientInvalidHost(t *testing.T) {
	_, err := NewRemoteClient("bad host/x", Options{})
	assert.True(t, errors.Is(err, ErrInvalidHost), "got %v", err)
}

func TestClassify(t *testing.T) {
	client, err := NewRemoteClient("quay.io", Options{})
	require.NoError(t, err)

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "401", err: &transport.Error{StatusCode: http.StatusUnauthorized}, want: ErrUnauthorized},
		{name: "403", err: &transport.Error{StatusCode: http.StatusForbidden}, want: ErrUnauthorized},
		{
			name: "denied code",
			err:  &transport.Error{StatusCode: http.StatusBadRequest, Errors: []transport.Diagnostic{{Code: transport.DeniedErrorCode}}},
			want: ErrUnauthorized,
		},
		{name: "404", err: &transport.Error{StatusCode: http.StatusNotFound}, want: ErrNotFound},
		{
			name: "manifest unknown code",
			err:  &transport.Error{StatusCode: http.StatusBadRequest, Errors: []transport.Diagnostic{{Code: transport.ManifestUnknownErrorCode}}},
			want: ErrNotFound,
		},
		{name: "server error", err: &transport.Error{StatusCode: http.StatusInternalServerError}},
		{name: "plain error", err: errors.New("connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := client.classify(OpDigest, "acme/app:1", tt.err)
			require.Error(t, got)
			assert.True(t, errors.Is(got, tt.err))
			if tt.want == nil {
				assert.False(t, errors.Is(got, ErrNotFound))
				assert.False(t, errors.Is(got, ErrUnauthorized))
				return
			}
			assert.True(t, errors.Is(got, tt.want))
			assert.Contains(t, got.Error(), "quay.io/acme/app:1")
		})
	}
}
