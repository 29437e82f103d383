package session

import (
	"bytes"
	"io"
	"net"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/rtstat-tools/rtstat/pkg/util"
)

// DefaultSSHPort is used when the caller passes port 0.
const DefaultSSHPort = 22

// SSHConn runs the router CLI over an SSH shell with a PTY. The routers
// that expose their CLI on SSH present the same Username/Password prompts
// and `{user}=>` framing as on telnet, so the session protocol on top is
// identical.
type SSHConn struct {
	client  *ssh.Client
	session *ssh.Session
	stdin   io.WriteCloser
	timeout time.Duration

	buf     []byte
	chunks  chan []byte
	readErr chan error
	err     error // sticky stream error from the reader goroutine
}

// DialSSH connects to host:port (port 0 means 22) and opens a shell.
func DialSSH(host string, port int, user, pass string, timeout time.Duration) (*SSHConn, error) {
	if port == 0 {
		port = DefaultSSHPort
	}
	config := &ssh.ClientConfig{
		User: user,
		Auth: []ssh.AuthMethod{
			ssh.Password(pass),
		},
		// Home gateways regenerate host keys on factory reset; there is
		// nothing stable to pin.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	client, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return nil, err
	}

	sess, err := client.NewSession()
	if err != nil {
		client.Close()
		return nil, err
	}

	stdin, err := sess.StdinPipe()
	if err != nil {
		sess.Close()
		client.Close()
		return nil, err
	}
	stdout, err := sess.StdoutPipe()
	if err != nil {
		sess.Close()
		client.Close()
		return nil, err
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          1, // the session protocol expects command echo
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}
	if err := sess.RequestPty("vt100", 24, 80, modes); err != nil {
		sess.Close()
		client.Close()
		return nil, err
	}
	if err := sess.Shell(); err != nil {
		sess.Close()
		client.Close()
		return nil, err
	}

	util.Debugf("ssh: connected to %s", addr)
	c := &SSHConn{
		client:  client,
		session: sess,
		stdin:   stdin,
		timeout: timeout,
		chunks:  make(chan []byte, 8),
		readErr: make(chan error, 1),
	}
	go c.pump(stdout)
	return c, nil
}

func (c *SSHConn) pump(r io.Reader) {
	for {
		chunk := make([]byte, 4096)
		n, err := r.Read(chunk)
		if n > 0 {
			c.chunks <- chunk[:n]
		}
		if err != nil {
			c.readErr <- err
			return
		}
	}
}

// ReadUntil reads until marker appears, returning everything up to and
// including it. Fails with os.ErrDeadlineExceeded once the timeout passes.
func (c *SSHConn) ReadUntil(marker string) (string, error) {
	timer := time.NewTimer(c.timeout)
	defer timer.Stop()
	for {
		if data, ok := c.take(marker); ok {
			return data, nil
		}
		if c.err != nil {
			return "", c.err
		}
		select {
		case chunk := <-c.chunks:
			c.buf = append(c.buf, chunk...)
		case err := <-c.readErr:
			c.err = err
		case <-timer.C:
			util.Debugf("ssh: read until %q timed out with %d byte(s) pending",
				marker, len(c.buf))
			return "", os.ErrDeadlineExceeded
		}
	}
}

// Write sends s on the shell's stdin.
func (c *SSHConn) Write(s string) error {
	_, err := io.WriteString(c.stdin, s)
	return err
}

// Close shuts the shell session and the SSH connection.
func (c *SSHConn) Close() error {
	c.session.Close()
	return c.client.Close()
}

func (c *SSHConn) take(marker string) (string, bool) {
	i := bytes.Index(c.buf, []byte(marker))
	if i < 0 {
		return "", false
	}
	end := i + len(marker)
	data := string(c.buf[:end])
	c.buf = append(c.buf[:0], c.buf[end:]...)
	return data, true
}
