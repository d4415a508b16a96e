package transport

import (
	"fmt"
	"os"

	"github.com/lite-lake/infra-swarmops/internal/constants"
	"github.com/lite-lake/infra-swarmops/internal/domain"
	"github.com/lite-lake/infra-swarmops/internal/domain/contract"
	"github.com/lite-lake/infra-swarmops/internal/domain/entity"
	"github.com/lite-lake/infra-swarmops/internal/infrastructure/localexec"
	"github.com/lite-lake/infra-swarmops/internal/infrastructure/logger"
	"github.com/lite-lake/infra-swarmops/internal/infrastructure/ssh"
)

// Dialer opens a HostClient for a configured host.
type Dialer func(host *entity.Host, secrets map[string]string) (contract.HostClient, error)

// Connect returns a local runner for local hosts and an SSH client otherwise.
func Connect(host *entity.Host, secrets map[string]string) (contract.HostClient, error) {
	if host.Local {
		logger.Debug("using local runner", "host", host.Name)
		return localexec.NewRunner(), nil
	}

	password, err := host.SSH.Password.Resolve(secrets)
	if err != nil {
		return nil, domain.WrapEntity("host", host.Name, fmt.Errorf("resolve ssh password: %w", err))
	}

	logger.Debug("connecting over ssh", "host", host.Name, "addr", host.SSH.Host, "port", host.SSH.GetPort(), "user", host.SSH.User)
	client, err := ssh.NewClient(ssh.Options{
		Host:     host.SSH.Host,
		Port:     host.SSH.GetPort(),
		User:     host.SSH.User,
		Password: password,
		KeyFile:  host.SSH.KeyFile,
	})
	if err != nil {
		return nil, domain.WrapEntity("host", host.Name, err)
	}
	return client, nil
}

// SyncContent writes content to a local temp file and installs it at remotePath.
func SyncContent(client contract.HostClient, content []byte, remotePath, perm string) error {
	tmpFile, err := os.CreateTemp("", constants.TempFilePattern)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(content); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	return client.UploadFileSudoWithPerm(tmpFile.Name(), remotePath, perm)
}
