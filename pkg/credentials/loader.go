package credentials

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"

	"github.com/lucas-albers-lz4/kubedeps/pkg/fileutil"
	"github.com/lucas-albers-lz4/kubedeps/pkg/log"
)

// LoadFile reads a credentials file from fsys. Username and password values
// may reference environment variables as $VAR or ${VAR}.
//
// Example:
//
//	credentials:
//	  - type: docker_registry
//	    host: registry-host.io:5000
//	    username: ci
//	    password: ${REGISTRY_PASSWORD}
func LoadFile(fsys afero.Fs, path string) ([]Credential, error) {
	fsys = fileutil.OrDefault(fsys)

	if !fileutil.IsYAMLFile(path) {
		return nil, WrapCredentialsExtension(path)
	}

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, WrapCredentialsFileNotExist(path, err)
		}
		return nil, WrapCredentialsFileRead(path, err)
	}

	var file File
	if err := yaml.UnmarshalStrict(data, &file); err != nil {
		return nil, WrapCredentialsFileParse(path, err)
	}

	for i := range file.Credentials {
		c := &file.Credentials[i]
		c.Type = strings.TrimSpace(c.Type)
		c.Host = strings.TrimSpace(c.Host)
		c.Registry = strings.TrimSpace(c.Registry)
		c.Username = os.ExpandEnv(c.Username)
		c.Password = os.ExpandEnv(c.Password)

		if c.Type == "" {
			return nil, WrapInvalidCredential(path, i, "missing type")
		}
		if c.Type == TypeDockerRegistry && c.HostName() == "" {
			return nil, WrapInvalidCredential(path, i, "missing host")
		}
		if c.Password != "" && c.Username == "" {
			return nil, WrapInvalidCredential(path, i, "password without username")
		}
	}

	log.Debug("Loaded credentials file", "path", path, "entries", len(file.Credentials))
	return file.Credentials, nil
}
