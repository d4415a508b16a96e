package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidName      = errors.New("invalid name")
	ErrInvalidIP        = errors.New("invalid IP address")
	ErrInvalidPort      = errors.New("invalid port")
	ErrInvalidDomain    = errors.New("invalid domain")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrInvalidType      = errors.New("invalid type")
	ErrEmptyValue       = errors.New("empty value")
	ErrRequired         = errors.New("required field missing")
	ErrMissingSecret    = errors.New("missing secret reference")
	ErrMissingReference = errors.New("missing reference")
	ErrHostnameConflict = errors.New("hostname conflict")
	ErrResourceConflict = errors.New("resource name conflict")
	ErrLockoutRisk      = errors.New("configuration would lock out the operator")

	ErrSSHConnectFailed   = errors.New("SSH connection failed")
	ErrSSHSessionFailed   = errors.New("SSH session creation failed")
	ErrSSHHostKeyMismatch = errors.New("SSH host key mismatch")
	ErrSSHFileTransfer    = errors.New("SSH file transfer failed")
	ErrCommandFailed      = errors.New("command execution failed")

	ErrConfigParseFailed = errors.New("config parse failed")
	ErrConfigNotFound    = errors.New("config not found")
	ErrConfigNotLoaded   = errors.New("config not loaded")

	ErrStateReadFailed    = errors.New("state read failed")
	ErrStateWriteFailed   = errors.New("state write failed")
	ErrStateSerializeFail = errors.New("state serialization failed")

	ErrDockerUnavailable = errors.New("docker engine unavailable")
	ErrSwarmInactive     = errors.New("swarm mode is not active")
	ErrSwarmInitFailed   = errors.New("swarm init failed")
	ErrVolumeCheckFailed = errors.New("volume check failed")
	ErrVolumeCreate      = errors.New("volume create failed")
	ErrSecretCheckFailed = errors.New("secret check failed")
	ErrSecretCreate      = errors.New("secret create failed")
	ErrSecretRemove      = errors.New("secret remove failed")
	ErrSecretInUse       = errors.New("secret is in use by a service")
	ErrNetworkCheck      = errors.New("network check failed")
	ErrNetworkCreate     = errors.New("network create failed")
	ErrStackDeployFailed = errors.New("stack deploy failed")
	ErrStackRemoveFailed = errors.New("stack remove failed")
	ErrStackNotFound     = errors.New("stack not found")

	ErrUnknownStackKind = errors.New("unknown stack kind")
	ErrInvalidCompose   = errors.New("invalid compose file")
	ErrProvisionStep    = errors.New("provision step failed")
	ErrUnknownStep      = errors.New("unknown provision step")

	ErrDNSError            = errors.New("DNS operation failed")
	ErrDNSRecordNotFound   = errors.New("DNS record not found")
	ErrDNSDomainNotFound   = errors.New("DNS domain not found")
	ErrUnsupportedProvider = errors.New("unsupported DNS provider")
	ErrMissingCredential   = errors.New("missing credential")
)

func RequiredField(field string) error {
	return fmt.Errorf("%w: %s", ErrRequired, field)
}

func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

func WrapEntity(entity, name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s[%s]: %w", entity, name, err)
}

// OpError carries the remote command output next to the failing operation.
type OpError struct {
	Op     string
	Stderr string
	Cause  error
}

func (e *OpError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s: %v, stderr: %s", e.Op, e.Cause, e.Stderr)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *OpError) Unwrap() error {
	return e.Cause
}

func NewOpError(op string, cause error) error {
	return &OpError{Op: op, Cause: cause}
}

func NewCommandError(op, stderr string, cause error) error {
	return &OpError{Op: op, Stderr: stderr, Cause: fmt.Errorf("%w: %w", ErrCommandFailed, cause)}
}
