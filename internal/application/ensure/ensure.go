package ensure

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/lite-lake/infra-swarmops/internal/constants"
	"github.com/lite-lake/infra-swarmops/internal/domain"
	"github.com/lite-lake/infra-swarmops/internal/domain/contract"
	"github.com/lite-lake/infra-swarmops/internal/infrastructure/logger"
)

type Kind string

const (
	KindVolume  Kind = "volume"
	KindSecret  Kind = "secret"
	KindNetwork Kind = "network"
	KindSwarm   Kind = "swarm"
)

type Action string

const (
	ActionExists    Action = "exists"
	ActionCreated   Action = "created"
	ActionRotated   Action = "rotated"
	ActionGenerated Action = "generated"
)

// Result reports what an ensure call did. Value is only set for generated
// secrets so the caller can show it once.
type Result struct {
	Kind   Kind
	Name   string
	Action Action
	Value  string
}

func (r Result) String() string {
	return fmt.Sprintf("%s %s: %s", r.Kind, r.Name, r.Action)
}

func (r Result) Changed() bool {
	return r.Action != ActionExists
}

type SecretRequest struct {
	Name     string
	Value    string
	Generate bool
	Rotate   bool
	Labels   map[string]string
}

type Ensurer struct {
	engine   contract.Engine
	generate func() (string, error)
}

func New(engine contract.Engine) *Ensurer {
	return &Ensurer{engine: engine, generate: GenerateSecret}
}

// Labels marks objects created for a stack.
func Labels(stack string) map[string]string {
	labels := map[string]string{constants.ManagedByLabel: constants.ManagedByValue}
	if stack != "" {
		labels[constants.StackLabel] = stack
	}
	return labels
}

// GenerateSecret returns a random URL-safe value.
func GenerateSecret() (string, error) {
	buf := make([]byte, constants.GeneratedSecretLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func (e *Ensurer) EnsureSwarm(ctx context.Context, advertiseAddr string) (Result, error) {
	res := Result{Kind: KindSwarm, Name: "swarm", Action: ActionExists}
	info, err := e.engine.Info(ctx)
	if err != nil {
		return res, err
	}
	if info.SwarmActive {
		return res, nil
	}
	if err := e.engine.SwarmInit(ctx, advertiseAddr); err != nil {
		return res, err
	}
	res.Action = ActionCreated
	return res, nil
}

func (e *Ensurer) EnsureNetwork(ctx context.Context, name string, labels map[string]string) (Result, error) {
	res := Result{Kind: KindNetwork, Name: name, Action: ActionExists}
	exists, err := e.engine.NetworkExists(ctx, name)
	if err != nil {
		return res, err
	}
	if exists {
		return res, nil
	}
	if err := e.engine.CreateNetwork(ctx, name, labels); err != nil {
		if e.createdElsewhere(ctx, e.engine.NetworkExists, name) {
			return res, nil
		}
		return res, err
	}
	res.Action = ActionCreated
	return res, nil
}

func (e *Ensurer) EnsureVolume(ctx context.Context, name string, labels map[string]string) (Result, error) {
	res := Result{Kind: KindVolume, Name: name, Action: ActionExists}
	exists, err := e.engine.VolumeExists(ctx, name)
	if err != nil {
		return res, err
	}
	if exists {
		return res, nil
	}
	if err := e.engine.CreateVolume(ctx, name, labels); err != nil {
		if e.createdElsewhere(ctx, e.engine.VolumeExists, name) {
			return res, nil
		}
		return res, err
	}
	res.Action = ActionCreated
	return res, nil
}

// EnsureSecret creates a missing secret and leaves an existing one alone
// unless Rotate is set, in which case it is removed and recreated.
func (e *Ensurer) EnsureSecret(ctx context.Context, req SecretRequest) (Result, error) {
	res := Result{Kind: KindSecret, Name: req.Name, Action: ActionExists}
	exists, err := e.engine.SecretExists(ctx, req.Name)
	if err != nil {
		return res, err
	}
	if exists && !req.Rotate {
		return res, nil
	}

	value, generated, err := e.secretValue(req)
	if err != nil {
		return res, err
	}

	if exists {
		logger.Warn("rotating secret, services using it must be redeployed", "secret", req.Name)
		if err := e.engine.RemoveSecret(ctx, req.Name); err != nil {
			return res, err
		}
	}

	if err := e.engine.CreateSecret(ctx, req.Name, value, req.Labels); err != nil {
		if !exists && e.createdElsewhere(ctx, e.engine.SecretExists, req.Name) {
			return res, nil
		}
		return res, err
	}

	switch {
	case exists:
		res.Action = ActionRotated
	case generated:
		res.Action = ActionGenerated
	default:
		res.Action = ActionCreated
	}
	if generated {
		res.Value = value
	}
	return res, nil
}

func (e *Ensurer) secretValue(req SecretRequest) (string, bool, error) {
	if req.Value != "" {
		return req.Value, false, nil
	}
	if !req.Generate {
		return "", false, fmt.Errorf("%w: %s has no value", domain.ErrMissingSecret, req.Name)
	}
	v, err := e.generate()
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// createdElsewhere re-checks after a failed create in case another
// deployment won the race.
func (e *Ensurer) createdElsewhere(ctx context.Context, exists func(context.Context, string) (bool, error), name string) bool {
	ok, err := exists(ctx, name)
	if err == nil && ok {
		logger.Debug("object appeared after failed create", "name", name)
		return true
	}
	return false
}
