package stacks

import (
	"net/url"

	"github.com/lite-lake/infra-swarmops/internal/compose"
	"github.com/lite-lake/infra-swarmops/internal/constants"
	"github.com/lite-lake/infra-swarmops/internal/domain/entity"
)

const evolutionImage = "atendai/evolution-api:v2.2.3"

type evolution struct{ base }

func newEvolution() *evolution {
	return &evolution{base{
		kind:        "evolution",
		description: "Evolution API (WhatsApp gateway)",
		inputs: []Input{
			{Key: "api_key", Label: "Global API key", Required: true, Sensitive: true},
			{Key: "database_host", Label: "Postgres host", Default: "postgres_postgres", Required: true},
			{Key: "database_user", Label: "Postgres user", Default: "postgres", Required: true},
			{Key: "database_password", Label: "Postgres password", Required: true, Sensitive: true},
			{Key: "database_name", Label: "Postgres database", Default: "evolution", Required: true},
			{Key: "redis_host", Label: "Redis host", Default: "redis_redis", Required: true},
			{Key: "redis_password", Label: "Redis password", Sensitive: true},
		},
		volumes: []string{"instances"},
	}}
}

func (e *evolution) Build(s *entity.Stack, v Values) (*compose.File, error) {
	if err := requireDomain(s); err != nil {
		return nil, err
	}
	db := url.URL{
		Scheme:   "postgresql",
		User:     url.UserPassword(v.Get("database_user"), v.Get("database_password")),
		Host:     v.Get("database_host") + ":5432",
		Path:     "/" + v.Get("database_name"),
		RawQuery: "schema=public",
	}
	cache := url.URL{Scheme: "redis", Host: v.Get("redis_host") + ":6379", Path: "/6"}
	if pw := v.Get("redis_password"); pw != "" {
		cache.User = url.UserPassword("", pw)
	}

	f := newFile(e, s)
	f.Services[s.Name] = &compose.Service{
		Image: evolutionImage,
		Environment: map[string]string{
			"SERVER_URL":                      "https://" + s.Domain,
			"AUTHENTICATION_API_KEY":          compose.EscapeDollar(v.Get("api_key")),
			"DATABASE_ENABLED":                "true",
			"DATABASE_PROVIDER":               "postgresql",
			"DATABASE_CONNECTION_URI":         compose.EscapeDollar(db.String()),
			"DATABASE_CONNECTION_CLIENT_NAME": s.Name,
			"CACHE_REDIS_ENABLED":             "true",
			"CACHE_REDIS_URI":                 compose.EscapeDollar(cache.String()),
			"CACHE_REDIS_PREFIX_KEY":          s.Name,
			"CACHE_LOCAL_ENABLED":             "false",
		},
		Volumes:  []string{s.ResourceName("instances") + ":/evolution/instances"},
		Networks: []string{constants.ProxyNetwork},
		Deploy: &compose.Deploy{
			Mode:     "replicated",
			Replicas: replicas(s.GetReplicas()),
			Labels: compose.TraefikLabels(compose.Route{
				Name: s.Name,
				Host: s.Domain,
				Port: 8080,
			}),
			RestartPolicy: restartOnFailure(),
		},
	}
	return f, nil
}
