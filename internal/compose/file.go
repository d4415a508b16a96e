package compose

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/lite-lake/infra-swarmops/internal/constants"
	"github.com/lite-lake/infra-swarmops/internal/domain"
	"gopkg.in/yaml.v3"
)

func NewFile() *File {
	return &File{
		Version:  constants.ComposeVersion,
		Services: make(map[string]*Service),
		Networks: make(map[string]*Network),
		Volumes:  make(map[string]*Volume),
		Secrets:  make(map[string]*Secret),
	}
}

func (f *File) AddExternalNetwork(name string) {
	f.Networks[name] = &Network{External: true, Name: name}
}

func (f *File) AddOverlayNetwork(name string) {
	f.Networks[name] = &Network{Driver: "overlay", Attachable: true}
}

func (f *File) AddExternalVolume(name string) {
	f.Volumes[name] = &Volume{External: true, Name: name}
}

func (f *File) AddExternalSecret(name string) {
	f.Secrets[name] = &Secret{External: true, Name: name}
}

func (f *File) ServiceNames() []string {
	names := make([]string, 0, len(f.Services))
	for n := range f.Services {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Validate checks that every service has an image and that every network,
// named volume and secret it references is declared at the top level.
func (f *File) Validate() error {
	if f.Version != constants.ComposeVersion {
		return fmt.Errorf("%w: version %q, want %q", domain.ErrInvalidCompose, f.Version, constants.ComposeVersion)
	}
	if len(f.Services) == 0 {
		return fmt.Errorf("%w: no services", domain.ErrInvalidCompose)
	}
	for _, name := range f.ServiceNames() {
		svc := f.Services[name]
		if svc.Image == "" {
			return fmt.Errorf("%w: service %s has no image", domain.ErrInvalidCompose, name)
		}
		for _, n := range svc.Networks {
			if _, ok := f.Networks[n]; !ok {
				return fmt.Errorf("%w: service %s uses undeclared network %s", domain.ErrInvalidCompose, name, n)
			}
		}
		for _, v := range svc.Volumes {
			source, ok := namedVolume(v)
			if !ok {
				continue
			}
			if _, declared := f.Volumes[source]; !declared {
				return fmt.Errorf("%w: service %s uses undeclared volume %s", domain.ErrInvalidCompose, name, source)
			}
		}
		for _, s := range svc.Secrets {
			if _, ok := f.Secrets[s]; !ok {
				return fmt.Errorf("%w: service %s uses undeclared secret %s", domain.ErrInvalidCompose, name, s)
			}
		}
	}
	return nil
}

// namedVolume returns the source of a short volume spec unless it is a bind mount.
func namedVolume(spec string) (string, bool) {
	source, _, found := strings.Cut(spec, ":")
	if !found || source == "" {
		return "", false
	}
	if strings.HasPrefix(source, "/") || strings.HasPrefix(source, ".") || strings.HasPrefix(source, "~") {
		return "", false
	}
	return source, true
}

func Marshal(f *File) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidCompose, err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func Unmarshal(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidCompose, err)
	}
	return &f, nil
}

func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
