package remote

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Source is a file on a remote host, written user@host:path
type Source struct {
	User string
	Host string
	Path string
}

func (s Source) String() string {
	return fmt.Sprintf("%s@%s:%s", s.User, s.Host, s.Path)
}

// ParseSource recognises user@host:path. Anything else is reported as not
// remote so callers can treat it as a local path.
func ParseSource(s string) (Source, bool) {
	at := strings.Index(s, "@")
	if at <= 0 {
		return Source{}, false
	}
	colon := strings.Index(s[at:], ":")
	if colon < 0 {
		return Source{}, false
	}
	colon += at

	src := Source{User: s[:at], Host: s[at+1 : colon], Path: s[colon+1:]}
	if src.Host == "" || src.Path == "" || strings.ContainsAny(src.User, "/:") {
		return Source{}, false
	}
	return src, true
}

// Client represents an SSH client
type Client struct {
	Host   string
	User   string
	client *ssh.Client
}

// NewClient creates a new SSH client. An empty keyPath falls back to
// ~/.ssh/id_rsa and then ~/.ssh/id_ed25519.
func NewClient(user, host, keyPath string) (*Client, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	key, err := readKey(home, keyPath)
	if err != nil {
		return nil, err
	}

	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	knownHostsPath := filepath.Join(home, ".ssh", "known_hosts")
	hostKeyCallback, err := knownhosts.New(knownHostsPath)
	if err != nil {
		// no known_hosts file
		hostKeyCallback = ssh.InsecureIgnoreHostKey()
	}

	config := &ssh.ClientConfig{
		User: user,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(signer),
		},
		HostKeyCallback: hostKeyCallback,
	}

	addr := host
	if !strings.Contains(host, ":") {
		addr = fmt.Sprintf("%s:22", host)
	}
	client, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s@%s: %w", user, host, err)
	}

	return &Client{
		Host:   host,
		User:   user,
		client: client,
	}, nil
}

func readKey(home, keyPath string) ([]byte, error) {
	if keyPath != "" {
		key, err := os.ReadFile(keyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read SSH key: %w", err)
		}
		return key, nil
	}

	key, err := os.ReadFile(filepath.Join(home, ".ssh", "id_rsa"))
	if err != nil {
		key, err = os.ReadFile(filepath.Join(home, ".ssh", "id_ed25519"))
		if err != nil {
			return nil, fmt.Errorf("failed to read SSH key: %w", err)
		}
	}
	return key, nil
}

// Close closes the SSH connection
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// ReadFile returns the contents of path on the remote host
func (c *Client) ReadFile(ctx context.Context, path string) ([]byte, error) {
	out, err := c.execute(ctx, "cat -- "+Quote(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s on %s: %w", path, c.Host, err)
	}
	return out, nil
}

// execute runs a command and returns its stdout. The session is closed if
// ctx is cancelled first.
func (c *Client) execute(ctx context.Context, command string) ([]byte, error) {
	session, err := c.client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	done := make(chan error, 1)
	go func() { done <- session.Run(command) }()

	select {
	case <-ctx.Done():
		_ = session.Close()
		return nil, ctx.Err()
	case err := <-done:
		if err != nil {
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return nil, fmt.Errorf("%w: %s", err, msg)
			}
			return nil, err
		}
	}
	return stdout.Bytes(), nil
}

// Fetch dials src's host, reads src.Path and closes the connection
func Fetch(ctx context.Context, src Source, keyPath string) ([]byte, error) {
	client, err := NewClient(src.User, src.Host, keyPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Close() }()
	return client.ReadFile(ctx, src.Path)
}

// Quote wraps s in single quotes for a POSIX shell
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
