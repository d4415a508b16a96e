package state

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/lite-lake/infra-swarmops/internal/constants"
	"github.com/lite-lake/infra-swarmops/internal/domain"
	"github.com/lite-lake/infra-swarmops/internal/domain/repository"
)

var _ repository.StateRepository = (*FileStore)(nil)

type FileStore struct {
	path  string
	flock *flock.Flock
}

func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:  path,
		flock: flock.New(path + ".lock"),
	}
}

// PathFor returns <configDir>/deployments/<env>/state.yaml.
func PathFor(configDir, env string) string {
	return filepath.Join(configDir, constants.DeploymentsDir, env, constants.StateFileName)
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) lock() error {
	if err := os.MkdirAll(filepath.Dir(s.path), constants.DirPermissionOwner); err != nil {
		return fmt.Errorf("creating state dir: %w", domain.WrapOp("create state dir", domain.ErrStateWriteFailed))
	}
	if err := s.flock.Lock(); err != nil {
		return fmt.Errorf("acquiring lock: %w", err)
	}
	return nil
}

func (s *FileStore) Load(_ context.Context) (*repository.DeploymentState, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.flock.Unlock()
	return s.read()
}

func (s *FileStore) Save(_ context.Context, state *repository.DeploymentState) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.flock.Unlock()
	return s.write(state)
}

func (s *FileStore) Update(_ context.Context, fn func(*repository.DeploymentState) error) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.flock.Unlock()

	state, err := s.read()
	if err != nil {
		return err
	}
	if err := fn(state); err != nil {
		return err
	}
	return s.write(state)
}

func (s *FileStore) read() (*repository.DeploymentState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return repository.NewDeploymentState(), nil
		}
		return nil, fmt.Errorf("reading state file %s: %w", s.path, domain.WrapOp("read state file", domain.ErrStateReadFailed))
	}

	state := repository.NewDeploymentState()
	if err := yaml.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("parsing state file %s: %w", s.path, domain.WrapOp("parse state file", domain.ErrStateSerializeFail))
	}
	if state.Deployments == nil {
		state.Deployments = make(map[string]*repository.Deployment)
	}
	return state, nil
}

func (s *FileStore) write(state *repository.DeploymentState) error {
	data, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshaling state for %s: %w", s.path, domain.WrapOp("marshal state", domain.ErrStateSerializeFail))
	}

	tmpPath := filepath.Join(filepath.Dir(s.path), "."+filepath.Base(s.path)+".tmp")
	if err := os.WriteFile(tmpPath, data, constants.FilePermissionOwnerRW); err != nil {
		return fmt.Errorf("writing temp state file %s: %w", tmpPath, domain.WrapOp("write temp state file", domain.ErrStateWriteFailed))
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming state file from %s to %s: %w", tmpPath, s.path, domain.WrapOp("rename state file", domain.ErrStateWriteFailed))
	}
	return nil
}
