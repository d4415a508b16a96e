package constants

const (
	ProxyNetwork       = "main-proxy"
	ComposeVersion     = "3.8"
	RemoteStackDir     = "/opt/swarmops/stacks"
	RemoteComposeFile  = "docker-compose.yml"
	TempFilePattern    = "swarmops-*.yml"
	RemoteTempFileFmt  = "/tmp/swarmops-%d-%d"
	DeploymentsDir     = "deployments"
	StateFileName      = "state.yaml"
	ComposeFileSuffix  = ".compose.yaml"
	ManagedByLabel     = "io.swarmops.managed-by"
	ManagedByValue     = "swarmops"
	StackLabel         = "io.swarmops.stack"
	DefaultSSHPort     = 22
	MaxPortNumber      = 65535
	DefaultDNSTTL      = 600
	GeneratedSecretLen = 32
)

const (
	FilePermissionOwnerRW  = 0600
	FilePermissionReadable = 0644
	DirPermissionOwner     = 0750
)
