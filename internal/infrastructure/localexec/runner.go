package localexec

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/lite-lake/infra-swarmops/internal/domain"
	"github.com/lite-lake/infra-swarmops/internal/domain/contract"
	"github.com/lite-lake/infra-swarmops/internal/infrastructure/logger"
	"github.com/lite-lake/infra-swarmops/internal/infrastructure/ssh"
)

// Runner executes commands on this machine through bash, mirroring the SSH client.
type Runner struct {
	shell string
}

func NewRunner() *Runner {
	return &Runner{shell: "bash"}
}

func (r *Runner) command(cmd string) *exec.Cmd {
	return exec.Command(r.shell, "-c", cmd)
}

func (r *Runner) Run(cmd string) (stdout, stderr string, err error) {
	return r.RunWithStdin("", cmd)
}

func (r *Runner) RunWithStdin(stdin string, cmd string) (stdout, stderr string, err error) {
	logger.Debug("exec", "cmd", redact(cmd))

	c := r.command(cmd)
	var stdoutBuf, stderrBuf bytes.Buffer
	c.Stdout = &stdoutBuf
	c.Stderr = &stderrBuf
	if stdin != "" {
		c.Stdin = strings.NewReader(stdin)
	}
	err = c.Run()
	return stdoutBuf.String(), stderrBuf.String(), err
}

func (r *Runner) MkdirAllSudoWithPerm(path, perm string) error {
	cmd := fmt.Sprintf("sudo mkdir -p %s && sudo chmod %s %s", ssh.ShellEscape(path), ssh.ShellEscape(perm), ssh.ShellEscape(path))
	if _, stderr, err := r.Run(cmd); err != nil {
		return domain.NewCommandError("sudo mkdir", stderr, err)
	}
	return nil
}

func (r *Runner) UploadFileSudoWithPerm(localPath, remotePath, perm string) error {
	cmd := fmt.Sprintf("sudo install -o root -g root -m %s %s %s", ssh.ShellEscape(perm), ssh.ShellEscape(localPath), ssh.ShellEscape(remotePath))
	if _, stderr, err := r.Run(cmd); err != nil {
		return domain.NewCommandError("sudo install", stderr, err)
	}
	return nil
}

func (r *Runner) Close() error {
	return nil
}

// redact keeps the first word of a command so passwords passed inline never reach the log.
func redact(cmd string) string {
	if i := strings.IndexByte(cmd, ' '); i > 0 {
		return cmd[:i] + " ..."
	}
	return cmd
}

var _ contract.HostClient = (*Runner)(nil)
