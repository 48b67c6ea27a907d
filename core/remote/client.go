package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/user"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

// Output is the captured result of one command.
type Output struct {
	Stdout     []string `json:"stdout"`
	Stderr     []string `json:"stderr"`
	ExitStatus int      `json:"exit_status"`
}

// Executor runs a single command on a host and returns its output.
type Executor interface {
	Run(ctx context.Context, host, command string) (*Output, error)
}

// Client opens one SSH connection per command. It is safe for sequential use.
type Client struct {
	cfg         Config
	logger      *zap.Logger
	auth        []ssh.AuthMethod
	currentUser string
	agentConn   net.Conn
	timeout     time.Duration
}

// NewClient prepares the authentication methods described by cfg.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 60
	}
	if cfg.Port <= 0 {
		cfg.Port = 22
	}

	c := &Client{
		cfg:     cfg,
		logger:  logger,
		timeout: time.Duration(timeout) * time.Second,
	}

	if u, err := user.Current(); err == nil {
		c.currentUser = u.Username
	}

	if cfg.UseAgent {
		if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
			conn, err := net.Dial("unix", sock)
			if err != nil {
				logger.Warn("SSH agent unavailable", zap.String("socket", sock), zap.Error(err))
			} else {
				c.agentConn = conn
				c.auth = append(c.auth, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
			}
		}
	}

	if cfg.KeyFile != "" {
		pem, err := os.ReadFile(cfg.KeyFile)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to read SSH key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to parse SSH key %s: %w", cfg.KeyFile, err)
		}
		c.auth = append(c.auth, ssh.PublicKeys(signer))
	}

	if cfg.Password != "" {
		password := cfg.Password
		c.auth = append(c.auth,
			ssh.Password(password),
			ssh.KeyboardInteractive(func(_, _ string, questions []string, _ []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range answers {
					answers[i] = password
				}
				return answers, nil
			}),
		)
	}

	return c, nil
}

// Close releases the agent connection, if any.
func (c *Client) Close() error {
	if c.agentConn != nil {
		err := c.agentConn.Close()
		c.agentConn = nil
		return err
	}
	return nil
}

// Run executes command on host and captures stdout and stderr as lines.
// A non-zero exit status is reported in Output, not as an error.
func (c *Client) Run(ctx context.Context, host, command string) (*Output, error) {
	var stdout, stderr bytes.Buffer

	status, err := c.exec(ctx, host, command, &stdout, &stderr)
	if err != nil {
		return nil, err
	}

	return &Output{
		Stdout:     splitLines(stdout.String()),
		Stderr:     splitLines(stderr.String()),
		ExitStatus: status,
	}, nil
}

// Stream executes command on host and copies its output to the writers as it
// arrives, each line prefixed with a green (stdout) or red (stderr) marker.
// It returns the exit status of the command.
func (c *Client) Stream(ctx context.Context, host, command string, stdout, stderr io.Writer) (int, error) {
	out := newMarkerWriter(stdout, "\033[1;32m*\033[0m ")
	errOut := newMarkerWriter(stderr, "\033[1;31m*\033[0m ")

	status, err := c.exec(ctx, host, command, out, errOut)
	out.Flush()
	errOut.Flush()
	return status, err
}

func (c *Client) exec(ctx context.Context, host, command string, stdout, stderr io.Writer) (int, error) {
	client, login, err := c.connect(ctx, host)
	if err != nil {
		return 0, err
	}
	defer client.Close()

	stop := context.AfterFunc(ctx, func() { client.Close() })
	defer stop()

	session, err := client.NewSession()
	if err != nil {
		return 0, &TransportError{Host: host, User: login, Err: err}
	}
	defer session.Close()

	session.Stdout = stdout
	session.Stderr = stderr

	c.logger.Debug("Running remote command", zap.String("host", host), zap.String("user", login), zap.String("command", command))

	err = session.Run(command)
	if err == nil {
		return 0, nil
	}

	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitStatus(), nil
	}
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}
	return 0, &TransportError{Host: host, User: login, Err: err}
}

// connect dials host and logs in with the first candidate user that authenticates.
func (c *Client) connect(ctx context.Context, host string) (*ssh.Client, string, error) {
	addr := net.JoinHostPort(c.hostname(host), strconv.Itoa(c.cfg.Port))

	for _, login := range c.candidates(host) {
		client, err := c.dial(ctx, addr, login)
		if err == nil {
			return client, login, nil
		}
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		if isAuthFailure(err) {
			c.logger.Debug("SSH login refused", zap.String("host", host), zap.String("user", login))
			continue
		}
		return nil, "", &TransportError{Host: host, Err: err}
	}

	return nil, "", &TransportError{Host: host, Err: ErrAuth}
}

func (c *Client) dial(ctx context.Context, addr, login string) (*ssh.Client, error) {
	dialer := &net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	// The deadline covers the handshake only.
	_ = conn.SetDeadline(time.Now().Add(c.timeout))

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, &ssh.ClientConfig{
		User:            login,
		Auth:            c.auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         c.timeout,
	})
	if err != nil {
		conn.Close()
		return nil, err
	}
	_ = conn.SetDeadline(time.Time{})

	return ssh.NewClient(sshConn, chans, reqs), nil
}

// candidates lists the users to try for host, without duplicates.
func (c *Client) candidates(host string) []string {
	var users []string
	seen := make(map[string]bool)
	add := func(u string) {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		users = append(users, u)
	}

	add(c.currentUser)
	for _, u := range c.cfg.Users {
		add(u)
	}
	for _, entry := range c.cfg.HostUsers {
		prefix, u, ok := strings.Cut(entry, "=")
		if ok && prefix != "" && strings.HasPrefix(host, prefix) {
			add(u)
		}
	}
	return users
}

func (c *Client) hostname(host string) string {
	if c.cfg.Domain == "" || strings.Contains(host, ".") {
		return host
	}
	return host + "." + strings.TrimPrefix(c.cfg.Domain, ".")
}

func isAuthFailure(err error) bool {
	return strings.Contains(err.Error(), "unable to authenticate")
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}

// markerWriter prefixes every complete line written through it.
type markerWriter struct {
	w       io.Writer
	marker  string
	pending []byte
}

func newMarkerWriter(w io.Writer, marker string) *markerWriter {
	return &markerWriter{w: w, marker: marker}
}

func (m *markerWriter) Write(p []byte) (int, error) {
	m.pending = append(m.pending, p...)
	for {
		i := bytes.IndexByte(m.pending, '\n')
		if i < 0 {
			break
		}
		if _, err := fmt.Fprintf(m.w, "%s%s\n", m.marker, m.pending[:i]); err != nil {
			return 0, err
		}
		m.pending = m.pending[i+1:]
	}
	return len(p), nil
}

// Flush writes a trailing partial line, if any.
func (m *markerWriter) Flush() {
	if len(m.pending) > 0 {
		fmt.Fprintf(m.w, "%s%s\n", m.marker, m.pending)
		m.pending = nil
	}
}
