package contract

// Runner executes shell commands on a host, over SSH or locally.
type Runner interface {
	Run(cmd string) (stdout, stderr string, err error)
	RunWithStdin(stdin string, cmd string) (stdout, stderr string, err error)
}

// HostClient is a Runner that can also place files on the host.
type HostClient interface {
	Runner
	MkdirAllSudoWithPerm(path, perm string) error
	UploadFileSudoWithPerm(localPath, remotePath, perm string) error
	Close() error
}
