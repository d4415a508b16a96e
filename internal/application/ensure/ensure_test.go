package ensure

import (
	"context"
	"errors"
	"testing"

	"github.com/lite-lake/infra-swarmops/internal/domain"
	"github.com/lite-lake/infra-swarmops/internal/domain/contract"
)

type fakeEngine struct {
	swarmActive bool
	volumes     map[string]bool
	secrets     map[string]string
	networks    map[string]bool

	inUse        bool
	createErr    error
	raceOnCreate bool
	calls        []string
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		volumes:  make(map[string]bool),
		secrets:  make(map[string]string),
		networks: make(map[string]bool),
	}
}

func (f *fakeEngine) Info(context.Context) (*contract.EngineInfo, error) {
	return &contract.EngineInfo{ServerVersion: "28.5.2", SwarmActive: f.swarmActive}, nil
}

func (f *fakeEngine) SwarmInit(context.Context, string) error {
	f.calls = append(f.calls, "swarm init")
	f.swarmActive = true
	return nil
}

func (f *fakeEngine) VolumeExists(_ context.Context, name string) (bool, error) {
	return f.volumes[name], nil
}

func (f *fakeEngine) CreateVolume(_ context.Context, name string, _ map[string]string) error {
	f.calls = append(f.calls, "volume create "+name)
	if f.raceOnCreate {
		f.volumes[name] = true
		return errors.New("volume already exists")
	}
	if f.createErr != nil {
		return f.createErr
	}
	f.volumes[name] = true
	return nil
}

func (f *fakeEngine) SecretExists(_ context.Context, name string) (bool, error) {
	_, ok := f.secrets[name]
	return ok, nil
}

func (f *fakeEngine) CreateSecret(_ context.Context, name, value string, _ map[string]string) error {
	f.calls = append(f.calls, "secret create "+name)
	if f.createErr != nil {
		return f.createErr
	}
	f.secrets[name] = value
	return nil
}

func (f *fakeEngine) RemoveSecret(_ context.Context, name string) error {
	f.calls = append(f.calls, "secret rm "+name)
	if f.inUse {
		return domain.ErrSecretInUse
	}
	delete(f.secrets, name)
	return nil
}

func (f *fakeEngine) NetworkExists(_ context.Context, name string) (bool, error) {
	return f.networks[name], nil
}

func (f *fakeEngine) CreateNetwork(_ context.Context, name string, _ map[string]string) error {
	f.calls = append(f.calls, "network create "+name)
	f.networks[name] = true
	return nil
}

func (f *fakeEngine) DeployStack(context.Context, string, string) error { return nil }
func (f *fakeEngine) RemoveStack(context.Context, string) error { return nil }
func (f *fakeEngine) StackServices(context.Context, string) ([]contract.ServiceStatus, error) {
	return nil, nil
}
func (f *fakeEngine) Close() error { return nil }

func TestEnsureSecret(t *testing.T) {
	tests := []struct {
		name       string
		existing   map[string]string
		req        SecretRequest
		inUse      bool
		wantAction Action
		wantErr    error
		wantValue  string
		wantCalls  int
	}{
		{
			name:       "existing secret is kept",
			existing:   map[string]string{"pg_password": "old"},
			req:        SecretRequest{Name: "pg_password", Value: "new"},
			wantAction: ActionExists,
			wantValue:  "old",
		},
		{
			name:       "missing secret is created",
			req:        SecretRequest{Name: "pg_password", Value: "new"},
			wantAction: ActionCreated,
			wantValue:  "new",
			wantCalls:  1,
		},
		{
			name:       "missing secret is generated",
			req:        SecretRequest{Name: "pg_password", Generate: true},
			wantAction: ActionGenerated,
			wantValue:  "generated-value",
			wantCalls:  1,
		},
		{
			name:    "missing secret without value",
			req:     SecretRequest{Name: "pg_password"},
			wantErr: domain.ErrMissingSecret,
		},
		{
			name:       "rotation replaces value",
			existing:   map[string]string{"pg_password": "old"},
			req:        SecretRequest{Name: "pg_password", Value: "new", Rotate: true},
			wantAction: ActionRotated,
			wantValue:  "new",
			wantCalls:  2,
		},
		{
			name:      "rotation blocked while in use",
			existing:  map[string]string{"pg_password": "old"},
			req:       SecretRequest{Name: "pg_password", Value: "new", Rotate: true},
			inUse:     true,
			wantErr:   domain.ErrSecretInUse,
			wantValue: "old",
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := newFakeEngine()
			for k, v := range tt.existing {
				eng.secrets[k] = v
			}
			eng.inUse = tt.inUse
			e := New(eng)
			e.generate = func() (string, error) { return "generated-value", nil }

			res, err := e.EnsureSecret(context.Background(), tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("EnsureSecret() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("EnsureSecret() unexpected error = %v", err)
			} else if res.Action != tt.wantAction {
				t.Errorf("Action = %s, want %s", res.Action, tt.wantAction)
			}

			if got := eng.secrets[tt.req.Name]; got != tt.wantValue {
				t.Errorf("stored value = %q, want %q", got, tt.wantValue)
			}
			if len(eng.calls) != tt.wantCalls {
				t.Errorf("engine calls = %v, want %d", eng.calls, tt.wantCalls)
			}
			if tt.wantAction == ActionGenerated && res.Value != "generated-value" {
				t.Errorf("generated value not reported: %+v", res)
			}
			if tt.wantAction != ActionGenerated && res.Value != "" {
				t.Errorf("value reported for non-generated secret: %+v", res)
			}
		})
	}
}

func TestEnsureVolume(t *testing.T) {
	eng := newFakeEngine()
	e := New(eng)

	res, err := e.EnsureVolume(context.Background(), "pg_data", Labels("pg"))
	if err != nil || res.Action != ActionCreated {
		t.Fatalf("first EnsureVolume() = %+v, %v", res, err)
	}
	res, err = e.EnsureVolume(context.Background(), "pg_data", Labels("pg"))
	if err != nil || res.Action != ActionExists {
		t.Fatalf("second EnsureVolume() = %+v, %v", res, err)
	}
	if len(eng.calls) != 1 {
		t.Errorf("volume created %d times", len(eng.calls))
	}
}

func TestEnsureVolume_LostRace(t *testing.T) {
	eng := newFakeEngine()
	eng.raceOnCreate = true

	res, err := New(eng).EnsureVolume(context.Background(), "pg_data", nil)
	if err != nil {
		t.Fatalf("EnsureVolume() error = %v", err)
	}
	if res.Action != ActionExists {
		t.Errorf("Action = %s, want exists", res.Action)
	}
}

func TestEnsureVolume_CreateFails(t *testing.T) {
	eng := newFakeEngine()
	eng.createErr = domain.ErrVolumeCreate

	_, err := New(eng).EnsureVolume(context.Background(), "pg_data", nil)
	if !errors.Is(err, domain.ErrVolumeCreate) {
		t.Errorf("EnsureVolume() error = %v, want ErrVolumeCreate", err)
	}
	if len(eng.calls) != 1 {
		t.Errorf("create attempted %d times, want exactly one", len(eng.calls))
	}
}

func TestEnsureSwarm(t *testing.T) {
	eng := newFakeEngine()
	e := New(eng)

	res, err := e.EnsureSwarm(context.Background(), "10.0.0.1")
	if err != nil || res.Action != ActionCreated {
		t.Fatalf("EnsureSwarm() = %+v, %v", res, err)
	}
	res, err = e.EnsureSwarm(context.Background(), "10.0.0.1")
	if err != nil || res.Action != ActionExists {
		t.Fatalf("EnsureSwarm() second call = %+v, %v", res, err)
	}
}

func TestEnsureNetwork(t *testing.T) {
	eng := newFakeEngine()
	eng.networks["main-proxy"] = true

	res, err := New(eng).EnsureNetwork(context.Background(), "main-proxy", nil)
	if err != nil || res.Action != ActionExists || res.Changed() {
		t.Fatalf("EnsureNetwork() = %+v, %v", res, err)
	}
}

func TestGenerateSecret(t *testing.T) {
	a, err := GenerateSecret()
	if err != nil {
		t.Fatalf("GenerateSecret() error = %v", err)
	}
	b, _ := GenerateSecret()
	if a == b {
		t.Error("two generated secrets should differ")
	}
	if len(a) != 43 {
		t.Errorf("len = %d, want 43", len(a))
	}
}

func TestLabels(t *testing.T) {
	l := Labels("pg")
	if l["io.swarmops.managed-by"] != "swarmops" || l["io.swarmops.stack"] != "pg" {
		t.Errorf("Labels() = %v", l)
	}
	if _, ok := Labels("")["io.swarmops.stack"]; ok {
		t.Error("empty stack should not set the stack label")
	}
}
