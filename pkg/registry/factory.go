package registry

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/go-containerregistry/pkg/name"

	"github.com/lucas-albers-lz4/kubedeps/pkg/credentials"
	"github.com/lucas-albers-lz4/kubedeps/pkg/image"
	"github.com/lucas-albers-lz4/kubedeps/pkg/log"
)

// FactoryConfig configures a Factory.
type FactoryConfig struct {
	// Credentials is consulted for every non-default registry host. May be nil.
	Credentials *credentials.Finder
	// InsecureRegistries are hosts reached over plain HTTP.
	InsecureRegistries []string
	RequestTimeout     time.Duration
	// DisableCache returns bare clients instead of CachingClient decorators.
	DisableCache bool
	Transport    http.RoundTripper
}

// Factory builds one Client per registry host and reuses it for the life of the run.
type Factory struct {
	cfg      FactoryConfig
	insecure map[string]struct{}

	mu      sync.Mutex
	clients map[string]Client
}

// NewFactory returns a Factory for cfg.
func NewFactory(cfg FactoryConfig) *Factory {
	insecure := make(map[string]struct{}, len(cfg.InsecureRegistries))
	for _, host := range cfg.InsecureRegistries {
		insecure[strings.TrimSpace(host)] = struct{}{}
	}
	return &Factory{
		cfg:      cfg,
		insecure: insecure,
		clients:  make(map[string]Client),
	}
}

// ClientFor implements Provider. The default registry is always accessed
// anonymously; other hosts use the credentials found for the exact host.
func (f *Factory) ClientFor(registry string) (Client, error) {
	host := strings.TrimSpace(registry)
	isDefault := image.IsDefaultRegistry(host)
	if isDefault {
		host = name.DefaultRegistry
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if client, ok := f.clients[host]; ok {
		return client, nil
	}

	opts := Options{
		RequestTimeout: f.cfg.RequestTimeout,
		Transport:      f.cfg.Transport,
	}
	if _, ok := f.insecure[host]; ok {
		opts.Insecure = true
	}
	if !isDefault {
		if cred, ok := f.cfg.Credentials.ForRegistry(host); ok {
			opts.Username = cred.Username
			opts.Password = cred.Password
		}
	}

	remoteClient, err := NewRemoteClient(host, opts)
	if err != nil {
		return nil, err
	}

	var client Client = remoteClient
	if !f.cfg.DisableCache {
		client = NewCachingClient(remoteClient)
	}
	f.clients[host] = client

	log.Debug("Created registry client",
		"host", host, "authenticated", opts.Username != "" || opts.Password != "", "insecure", opts.Insecure)
	return client, nil
}
