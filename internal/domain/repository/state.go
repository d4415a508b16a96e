package repository

import (
	"context"
	"sort"
	"time"
)

type StateRepository interface {
	Load(ctx context.Context) (*DeploymentState, error)
	Save(ctx context.Context, state *DeploymentState) error
	// Update runs fn on the current state and saves it under one lock.
	Update(ctx context.Context, fn func(*DeploymentState) error) error
}

// Deployment records the last successful `docker stack deploy` of a stack.
type Deployment struct {
	ID          string    `yaml:"id"`
	Stack       string    `yaml:"stack"`
	Kind        string    `yaml:"kind"`
	Host        string    `yaml:"host"`
	ComposeHash string    `yaml:"compose_sha256"`
	ComposePath string    `yaml:"compose_path"`
	Volumes     []string  `yaml:"volumes,omitempty"`
	Secrets     []string  `yaml:"secrets,omitempty"`
	DeployedAt  time.Time `yaml:"deployed_at"`
}

type DeploymentState struct {
	Deployments map[string]*Deployment `yaml:"deployments"`
}

func NewDeploymentState() *DeploymentState {
	return &DeploymentState{Deployments: make(map[string]*Deployment)}
}

func (s *DeploymentState) Record(d *Deployment) {
	if s.Deployments == nil {
		s.Deployments = make(map[string]*Deployment)
	}
	s.Deployments[d.Stack] = d
}

func (s *DeploymentState) Forget(stack string) bool {
	if _, ok := s.Deployments[stack]; !ok {
		return false
	}
	delete(s.Deployments, stack)
	return true
}

func (s *DeploymentState) Sorted() []*Deployment {
	out := make([]*Deployment, 0, len(s.Deployments))
	for _, d := range s.Deployments {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Stack < out[j].Stack })
	return out
}
