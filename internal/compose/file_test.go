package compose

import (
	"errors"
	"strings"
	"testing"

	"github.com/lite-lake/infra-swarmops/internal/domain"
)

func validFile() *File {
	f := NewFile()
	f.AddExternalNetwork("main-proxy")
	f.AddExternalVolume("postgres_data")
	f.AddExternalSecret("postgres_password")
	f.Services["postgres"] = &Service{
		Image:    "postgres:16",
		Volumes:  []string{"postgres_data:/var/lib/postgresql/data", "/etc/localtime:/etc/localtime:ro"},
		Secrets:  []string{"postgres_password"},
		Networks: []string{"main-proxy"},
	}
	return f
}

func TestFile_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *File)
		wantErr bool
	}{
		{name: "valid", mutate: func(f *File) {}},
		{name: "wrong version", mutate: func(f *File) { f.Version = "3" }, wantErr: true},
		{name: "no services", mutate: func(f *File) { f.Services = map[string]*Service{} }, wantErr: true},
		{name: "missing image", mutate: func(f *File) { f.Services["postgres"].Image = "" }, wantErr: true},
		{name: "undeclared network", mutate: func(f *File) { delete(f.Networks, "main-proxy") }, wantErr: true},
		{name: "undeclared volume", mutate: func(f *File) { delete(f.Volumes, "postgres_data") }, wantErr: true},
		{name: "undeclared secret", mutate: func(f *File) { delete(f.Secrets, "postgres_password") }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFile()
			tt.mutate(f)
			err := f.Validate()
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidCompose) {
					t.Errorf("Validate() error = %v, want ErrInvalidCompose", err)
				}
			} else if err != nil {
				t.Errorf("Validate() unexpected error = %v", err)
			}
		})
	}
}

func TestMarshal(t *testing.T) {
	data, err := Marshal(validFile())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	out := string(data)

	for _, want := range []string{
		`version: "3.8"`,
		"main-proxy:\n    external: true\n    name: main-proxy",
		"postgres_data:\n    external: true",
		"postgres_password:\n    external: true",
		"  postgres:\n    image: postgres:16",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	parsed, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if err := parsed.Validate(); err != nil {
		t.Errorf("round-tripped file invalid: %v", err)
	}
}

func TestHash_Stable(t *testing.T) {
	a, _ := Marshal(validFile())
	b, _ := Marshal(validFile())
	if Hash(a) != Hash(b) {
		t.Error("identical files should hash identically")
	}
	if len(Hash(a)) != 64 {
		t.Errorf("unexpected hash length %d", len(Hash(a)))
	}
}

func TestTraefikLabels(t *testing.T) {
	labels := TraefikLabels(Route{Name: "pgadmin", Host: "pgadmin.example.com", Port: 80, Middlewares: []string{"a", "b"}})

	want := map[string]string{
		"traefik.enable":                                         "true",
		"traefik.docker.network":                                 "main-proxy",
		"traefik.http.routers.pgadmin.rule":                      "Host(`pgadmin.example.com`)",
		"traefik.http.routers.pgadmin.entrypoints":               "websecure",
		"traefik.http.routers.pgadmin.tls.certresolver":          "letsencryptresolver",
		"traefik.http.routers.pgadmin.middlewares":               "a,b",
		"traefik.http.services.pgadmin.loadbalancer.server.port": "80",
	}
	for k, v := range want {
		if labels[k] != v {
			t.Errorf("label %s = %q, want %q", k, labels[k], v)
		}
	}
}

func TestEscapeDollar(t *testing.T) {
	if got := EscapeDollar("admin:$2y$05$abc"); got != "admin:$$2y$$05$$abc" {
		t.Errorf("EscapeDollar() = %q", got)
	}
}
