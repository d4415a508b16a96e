package ssh

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/lite-lake/infra-swarmops/internal/constants"
	"github.com/lite-lake/infra-swarmops/internal/domain"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const dialTimeout = 15 * time.Second

var uploadSeq atomic.Int64

type Options struct {
	Host           string
	Port           int
	User           string
	Password       string
	KeyFile        string
	KnownHostsPath string
}

type Client struct {
	client *ssh.Client
	user   string
}

func NewClient(opts Options) (*Client, error) {
	knownHosts := opts.KnownHostsPath
	if knownHosts == "" {
		knownHosts = filepath.Join(homeDir(), ".ssh", "known_hosts")
	}

	hostKeyCallback, err := createHostKeyCallback(knownHosts)
	if err != nil {
		return nil, fmt.Errorf("failed to create host key callback: %w", err)
	}

	auth, err := authMethods(opts)
	if err != nil {
		return nil, err
	}

	config := &ssh.ClientConfig{
		User:            opts.User,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
		Timeout:         dialTimeout,
	}

	port := opts.Port
	if port == 0 {
		port = constants.DefaultSSHPort
	}
	addr := net.JoinHostPort(opts.Host, fmt.Sprint(port))
	client, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrSSHConnectFailed, addr, err)
	}

	return &Client{client: client, user: opts.User}, nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

func authMethods(opts Options) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod
	if opts.KeyFile != "" {
		signer, err := loadSigner(opts.KeyFile, opts.Password)
		if err != nil {
			return nil, err
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}
	if opts.Password != "" {
		methods = append(methods, ssh.Password(opts.Password))
	}
	if len(methods) == 0 {
		return nil, domain.RequiredField("ssh password or key_file")
	}
	return methods, nil
}

// loadSigner parses a private key; the password doubles as its passphrase.
func loadSigner(path, passphrase string) (ssh.Signer, error) {
	if strings.HasPrefix(path, "~/") {
		path = filepath.Join(homeDir(), path[2:])
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file %s: %w", path, err)
	}
	signer, err := ssh.ParsePrivateKey(data)
	if err == nil {
		return signer, nil
	}
	var missing *ssh.PassphraseMissingError
	if passphrase != "" && errors.As(err, &missing) {
		return ssh.ParsePrivateKeyWithPassphrase(data, []byte(passphrase))
	}
	return nil, fmt.Errorf("parse key file %s: %w", path, err)
}

func createHostKeyCallback(knownHostsPath string) (ssh.HostKeyCallback, error) {
	if _, err := os.Stat(knownHostsPath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(knownHostsPath), 0700); err != nil {
			return nil, err
		}
		if err := os.WriteFile(knownHostsPath, []byte{}, 0600); err != nil {
			return nil, err
		}
	}

	callback, err := knownhosts.New(knownHostsPath)
	if err != nil {
		return nil, err
	}

	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		err := callback(hostname, remote, key)
		if err == nil {
			return nil
		}

		keyErr, ok := err.(*knownhosts.KeyError)
		if !ok {
			return err
		}

		if len(keyErr.Want) > 0 {
			return fmt.Errorf("%w for %s: possible MITM attack", domain.ErrSSHHostKeyMismatch, hostname)
		}

		addresses := []string{knownhosts.Normalize(hostname)}
		if remote != nil {
			if r := knownhosts.Normalize(remote.String()); r != addresses[0] {
				addresses = append(addresses, r)
			}
		}
		f, err := os.OpenFile(knownHostsPath, os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return fmt.Errorf("failed to open known_hosts: %w", err)
		}
		defer f.Close()
		if _, err := fmt.Fprintln(f, knownhosts.Line(addresses, key)); err != nil {
			return fmt.Errorf("failed to write to known_hosts: %w", err)
		}
		return nil
	}, nil
}

func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func (c *Client) Run(cmd string) (stdout, stderr string, err error) {
	session, err := c.client.NewSession()
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", domain.ErrSSHSessionFailed, err)
	}
	defer session.Close()

	var stdoutBuf, stderrBuf bytes.Buffer
	session.Stdout = &stdoutBuf
	session.Stderr = &stderrBuf

	err = session.Run(cmd)
	return stdoutBuf.String(), stderrBuf.String(), err
}

func (c *Client) RunWithStdin(stdin string, cmd string) (stdout, stderr string, err error) {
	session, err := c.client.NewSession()
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", domain.ErrSSHSessionFailed, err)
	}
	defer session.Close()

	var stdoutBuf, stderrBuf bytes.Buffer
	session.Stdout = &stdoutBuf
	session.Stderr = &stderrBuf

	stdinPipe, err := session.StdinPipe()
	if err != nil {
		return "", "", fmt.Errorf("failed to get stdin pipe: %w", err)
	}

	if err := session.Start(cmd); err != nil {
		return "", "", fmt.Errorf("failed to start command: %w", err)
	}

	_, err = io.WriteString(stdinPipe, stdin)
	if err != nil {
		stdinPipe.Close()
		return "", "", fmt.Errorf("failed to write to stdin: %w", err)
	}
	stdinPipe.Close()

	err = session.Wait()
	return stdoutBuf.String(), stderrBuf.String(), err
}

func (c *Client) MkdirAllSudoWithPerm(path, perm string) error {
	cmd := fmt.Sprintf("sudo mkdir -p %s && sudo chown %s:%s %s && sudo chmod %s %s",
		ShellEscape(path), ShellEscape(c.user), ShellEscape(c.user), ShellEscape(path), ShellEscape(perm), ShellEscape(path))
	_, stderr, err := c.Run(cmd)
	if err != nil {
		return domain.NewCommandError("sudo mkdir", stderr, err)
	}
	return nil
}

// UploadFileSudoWithPerm copies through /tmp over SFTP and moves the file into place with sudo.
func (c *Client) UploadFileSudoWithPerm(localPath, remotePath, perm string) error {
	sftpClient, err := c.newSFTPClient()
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSSHFileTransfer, err)
	}
	defer sftpClient.Close()

	localFile, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open local file: %w", err)
	}
	defer localFile.Close()

	tmpPath := fmt.Sprintf(constants.RemoteTempFileFmt, os.Getpid(), uploadSeq.Add(1))
	tmpFile, err := sftpClient.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", domain.ErrSSHFileTransfer, tmpPath, err)
	}
	if _, err := io.Copy(tmpFile, localFile); err != nil {
		tmpFile.Close()
		return fmt.Errorf("%w: copy: %w", domain.ErrSSHFileTransfer, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("%w: close: %w", domain.ErrSSHFileTransfer, err)
	}

	cmd := fmt.Sprintf("sudo mv %s %s && sudo chown root:root %s && sudo chmod %s %s",
		ShellEscape(tmpPath), ShellEscape(remotePath), ShellEscape(remotePath), ShellEscape(perm), ShellEscape(remotePath))
	_, stderr, err := c.Run(cmd)
	if err != nil {
		c.Run("rm -f " + ShellEscape(tmpPath))
		return domain.NewCommandError("sudo mv", stderr, err)
	}
	return nil
}

func (c *Client) FileExists(path string) (bool, error) {
	sftpClient, err := c.newSFTPClient()
	if err != nil {
		return false, err
	}
	defer sftpClient.Close()

	_, err = sftpClient.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *Client) newSFTPClient() (sftpClient, error) {
	return newSFTP(c.client)
}

type sftpClient interface {
	Create(path string) (sftpFile, error)
	Stat(path string) (os.FileInfo, error)
	Close() error
}

type sftpFile interface {
	io.Writer
	io.Closer
}
