package registry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/google/go-containerregistry/pkg/v1/remote/transport"

	"github.com/lucas-albers-lz4/kubedeps/pkg/log"
)

// DefaultRequestTimeout bounds a single registry round trip.
const DefaultRequestTimeout = 30 * time.Second

// Operation names used in ErrRequest.
const (
	OpListTags = "list tags"
	OpDigest   = "fetch digest"
)

// Options configures a RemoteClient.
type Options struct {
	Username string
	Password string
	// Insecure talks plain HTTP to the registry.
	Insecure bool
	// RequestTimeout bounds each round trip; zero means DefaultRequestTimeout.
	RequestTimeout time.Duration
	// Transport overrides the HTTP transport, mainly for tests.
	Transport http.RoundTripper
}

// RemoteClient implements Client with go-containerregistry.
type RemoteClient struct {
	host    string
	auth    authn.Authenticator
	timeout time.Duration
	nameOpt []name.Option
	rt      http.RoundTripper
}

// NewRemoteClient returns a client for host. Basic auth is used when
// opts carries a username or password, anonymous access otherwise.
func NewRemoteClient(host string, opts Options) (*RemoteClient, error) {
	c := &RemoteClient{
		host:    host,
		auth:    authn.Anonymous,
		timeout: opts.RequestTimeout,
		rt:      opts.Transport,
	}
	if c.timeout <= 0 {
		c.timeout = DefaultRequestTimeout
	}
	if opts.Username != "" || opts.Password != "" {
		c.auth = &authn.Basic{Username: opts.Username, Password: opts.Password}
	}
	if opts.Insecure {
		c.nameOpt = append(c.nameOpt, name.Insecure)
	}

	if _, err := name.NewRegistry(host, c.nameOpt...); err != nil {
		return nil, WrapHost(host, err)
	}
	return c, nil
}

// Host returns the registry host this client talks to.
func (c *RemoteClient) Host() string {
	return c.host
}

// ListTags implements Client.
func (c *RemoteClient) ListTags(ctx context.Context, repository string) ([]string, error) {
	repo, err := c.repository(OpListTags, repository)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	tags, err := remote.List(repo, c.remoteOptions(ctx)...)
	if err != nil {
		return nil, c.classify(OpListTags, repository, err)
	}
	log.Debug("Listed tags", "host", c.host, "repository", repository, "count", len(tags))
	return tags, nil
}

// DigestFor implements Client.
func (c *RemoteClient) DigestFor(ctx context.Context, repository, tag string) (string, error) {
	repo, err := c.repository(OpDigest, repository)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	desc, err := remote.Head(repo.Tag(tag), c.remoteOptions(ctx)...)
	if err != nil {
		return "", c.classify(OpDigest, repository+":"+tag, err)
	}
	return desc.Digest.String(), nil
}

func (c *RemoteClient) repository(op, repository string) (name.Repository, error) {
	repo, err := name.NewRepository(c.host+"/"+repository, c.nameOpt...)
	if err != nil {
		return name.Repository{}, WrapRequest(op, c.host, repository, nil, err)
	}
	return repo, nil
}

func (c *RemoteClient) remoteOptions(ctx context.Context) []remote.Option {
	opts := []remote.Option{remote.WithContext(ctx), remote.WithAuth(c.auth)}
	if c.rt != nil {
		opts = append(opts, remote.WithTransport(c.rt))
	}
	return opts
}

// classify maps go-containerregistry transport errors onto ErrNotFound and ErrUnauthorized.
func (c *RemoteClient) classify(op, repository string, err error) error {
	var terr *transport.Error
	if !errors.As(err, &terr) {
		return WrapRequest(op, c.host, repository, nil, err)
	}

	switch {
	case terr.StatusCode == http.StatusUnauthorized || terr.StatusCode == http.StatusForbidden,
		hasCode(terr, transport.UnauthorizedErrorCode, transport.DeniedErrorCode):
		return WrapRequest(op, c.host, repository, ErrUnauthorized, err)
	case terr.StatusCode == http.StatusNotFound,
		hasCode(terr, transport.ManifestUnknownErrorCode, transport.NameUnknownErrorCode):
		return WrapRequest(op, c.host, repository, ErrNotFound, err)
	default:
		return WrapRequest(op, c.host, repository, nil, err)
	}
}

func hasCode(terr *transport.Error, codes ...transport.ErrorCode) bool {
	for _, d := range terr.Errors {
		for _, code := range codes {
			if d.Code == code {
				return true
			}
		}
	}
	return false
}
