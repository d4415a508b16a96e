package compose

import (
	"fmt"
	"strings"

	"github.com/lite-lake/infra-swarmops/internal/constants"
)

const (
	EntrypointWeb       = "web"
	EntrypointWebSecure = "websecure"
	CertResolver        = "letsencryptresolver"
)

// Route is one Traefik router publishing a service port on a hostname.
// Service overrides the target service, e.g. api@internal for the dashboard.
type Route struct {
	Name        string
	Host        string
	Port        int
	Service     string
	Middlewares []string
}

// TraefikLabels renders the deploy labels Traefik's swarm provider reads.
func TraefikLabels(routes ...Route) map[string]string {
	labels := map[string]string{
		"traefik.enable":         "true",
		"traefik.docker.network": constants.ProxyNetwork,
		"traefik.swarm.network":  constants.ProxyNetwork,
	}
	for _, r := range routes {
		router := "traefik.http.routers." + r.Name
		labels[router+".rule"] = fmt.Sprintf("Host(`%s`)", r.Host)
		labels[router+".entrypoints"] = EntrypointWebSecure
		labels[router+".tls"] = "true"
		labels[router+".tls.certresolver"] = CertResolver
		service := r.Name
		if r.Service != "" {
			service = r.Service
		}
		labels[router+".service"] = service
		if len(r.Middlewares) > 0 {
			labels[router+".middlewares"] = strings.Join(r.Middlewares, ",")
		}
		if r.Port > 0 {
			labels["traefik.http.services."+r.Name+".loadbalancer.server.port"] = fmt.Sprint(r.Port)
		}
	}
	return labels
}

// EscapeDollar doubles "$" so docker stack deploy does not interpolate it.
func EscapeDollar(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}

func MergeLabels(dst map[string]string, src map[string]string) map[string]string {
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
