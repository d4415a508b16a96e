package compose

type HealthCheck struct {
	Test        []string `yaml:"test,omitempty"`
	Interval    string   `yaml:"interval,omitempty"`
	Timeout     string   `yaml:"timeout,omitempty"`
	Retries     int      `yaml:"retries,omitempty"`
	StartPeriod string   `yaml:"start_period,omitempty"`
}

type ResourceLimits struct {
	Cpus   string `yaml:"cpus,omitempty"`
	Memory string `yaml:"memory,omitempty"`
}

type Resources struct {
	Limits       *ResourceLimits `yaml:"limits,omitempty"`
	Reservations *ResourceLimits `yaml:"reservations,omitempty"`
}

type Placement struct {
	Constraints []string `yaml:"constraints,omitempty"`
}

type RestartPolicy struct {
	Condition   string `yaml:"condition,omitempty"`
	Delay       string `yaml:"delay,omitempty"`
	MaxAttempts int    `yaml:"max_attempts,omitempty"`
}

type Deploy struct {
	Mode          string            `yaml:"mode,omitempty"`
	Replicas      *int              `yaml:"replicas,omitempty"`
	Placement     *Placement        `yaml:"placement,omitempty"`
	Labels        map[string]string `yaml:"labels,omitempty"`
	RestartPolicy *RestartPolicy    `yaml:"restart_policy,omitempty"`
	Resources     *Resources        `yaml:"resources,omitempty"`
}

// Port uses the long syntax so host-mode publishing can be expressed.
type Port struct {
	Target    int    `yaml:"target"`
	Published int    `yaml:"published"`
	Protocol  string `yaml:"protocol,omitempty"`
	Mode      string `yaml:"mode,omitempty"`
}

type Service struct {
	Image       string            `yaml:"image"`
	Command     []string          `yaml:"command,omitempty"`
	Entrypoint  []string          `yaml:"entrypoint,omitempty"`
	Hostname    string            `yaml:"hostname,omitempty"`
	Environment map[string]string `yaml:"environment,omitempty"`
	Ports       []Port            `yaml:"ports,omitempty"`
	Volumes     []string          `yaml:"volumes,omitempty"`
	Secrets     []string          `yaml:"secrets,omitempty"`
	Networks    []string          `yaml:"networks,omitempty"`
	HealthCheck *HealthCheck      `yaml:"healthcheck,omitempty"`
	Deploy      *Deploy           `yaml:"deploy,omitempty"`
}

type Network struct {
	External   bool   `yaml:"external,omitempty"`
	Name       string `yaml:"name,omitempty"`
	Driver     string `yaml:"driver,omitempty"`
	Attachable bool   `yaml:"attachable,omitempty"`
}

type Volume struct {
	External bool   `yaml:"external,omitempty"`
	Name     string `yaml:"name,omitempty"`
}

type Secret struct {
	External bool   `yaml:"external,omitempty"`
	Name     string `yaml:"name,omitempty"`
}

type File struct {
	Version  string              `yaml:"version"`
	Services map[string]*Service `yaml:"services"`
	Networks map[string]*Network `yaml:"networks,omitempty"`
	Volumes  map[string]*Volume  `yaml:"volumes,omitempty"`
	Secrets  map[string]*Secret  `yaml:"secrets,omitempty"`
}
