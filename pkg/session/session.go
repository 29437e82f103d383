// Package session drives a router's line-oriented command prompt over a
// byte-stream transport: login handshake, prompt-framed command execution,
// command-group navigation, and guaranteed teardown.
package session

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rtstat-tools/rtstat/pkg/util"
)

// Transport is a reliable ordered byte stream with prompt-oriented reads.
// ReadUntil blocks until the marker text has been received and returns
// everything read including the marker; it fails once the transport's
// configured timeout passes or the stream closes first.
type Transport interface {
	ReadUntil(marker string) (string, error)
	Write(s string) error
	Close() error
}

const (
	lineEnding       = "\r\n"
	usernamePrompt   = "Username : "
	passwordPrompt   = "Password : "
	upCommand        = ".."
	logoutCommand    = "exit"
	keepaliveCommand = "help"

	// deeper than any command group tree on supported devices
	maxGroupDepth = 4
)

// Session is an authenticated connection to one router CLI. It owns the
// transport exclusively. Not safe for concurrent use; a poll is strictly
// sequential.
type Session struct {
	transport Transport
	username  string
	connected bool // handshake progressed far enough that a logout is owed
	closed    bool
	log       *logrus.Entry
}

// Open performs the login handshake over t and returns a ready session.
// On failure the transport is closed before returning; on success the
// caller owns the session and must Close it on every exit path.
func Open(t Transport, username, password string) (*Session, error) {
	s := &Session{
		transport: t,
		username:  username,
		log:       util.WithField("session", username),
	}
	if err := s.login(password); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Session) login(password string) error {
	if _, err := s.read("login", usernamePrompt); err != nil {
		return err
	}
	if err := s.write("login", s.username+lineEnding); err != nil {
		return err
	}
	if _, err := s.read("login", passwordPrompt); err != nil {
		return err
	}
	if err := s.write("login", password+lineEnding); err != nil {
		return err
	}
	s.connected = true

	// skip the login banner up to the first top-level prompt
	if _, err := s.read("login", s.prompt()+"=>"); err != nil {
		return err
	}
	s.log.Debug("session ready")
	return nil
}

// prompt returns the bare prompt marker: the username wrapped in braces.
// The device renders `{user}=>` at top level and `{user}[group]=>` inside
// a command group, so the braced name alone delimits command output.
func (s *Session) prompt() string {
	return "{" + s.username + "}"
}

// Send writes a command and returns the sanitized text the device emitted
// between the command's echo and the next prompt. Empty for commands that
// produce no output, e.g. entering a command group. After a failed Send the
// session is in an unknown state and must be closed, not reused.
func (s *Session) Send(command string) (string, error) {
	op := fmt.Sprintf("send %q", command)
	if err := s.write(op, command+lineEnding); err != nil {
		return "", err
	}
	// the device echoes the command; discard up to the end of that line
	if _, err := s.read(op, lineEnding); err != nil {
		return "", err
	}
	return s.read(op, s.prompt())
}

// ResetLevel navigates back to the top-level command group from any depth.
// The up-command is a no-op at top level, so overshooting is harmless.
func (s *Session) ResetLevel() error {
	for i := 0; i < maxGroupDepth; i++ {
		if _, err := s.Send(upCommand); err != nil {
			return err
		}
	}
	return nil
}

// Keepalive issues a harmless command so an external scheduler can hold
// the connection open between polls.
func (s *Session) Keepalive() error {
	_, err := s.Send(keepaliveCommand)
	return err
}

// Username returns the name the session authenticated as.
func (s *Session) Username() string {
	return s.username
}

// Close logs out and releases the transport. Safe to call more than once;
// teardown runs exactly once. The logout is fire-and-forget so its own
// failure cannot mask an error that got the session here.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.connected {
		if err := s.transport.Write(logoutCommand + lineEnding); err != nil {
			s.log.Debugf("logout write failed: %v", err)
		}
	}
	return s.transport.Close()
}

func (s *Session) read(op, marker string) (string, error) {
	data, err := s.transport.ReadUntil(marker)
	if err != nil {
		return "", util.NewProtocolError(op, fmt.Sprintf("waiting for %q", marker), err)
	}
	return util.Sanitize(strings.TrimSuffix(data, marker)), nil
}

func (s *Session) write(op, text string) error {
	if err := s.transport.Write(text); err != nil {
		return util.NewProtocolError(op, "write failed", err)
	}
	return nil
}
