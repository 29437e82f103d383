package session

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/rtstat-tools/rtstat/pkg/util"
)

// fakeTransport serves scripted device output. Reads consume from out;
// writes are recorded and may append a scripted reply to out. A marker
// that never appears behaves like a read timeout.
type fakeTransport struct {
	out     string
	replies map[string]string
	writes  []string
	closes  int
}

func (f *fakeTransport) ReadUntil(marker string) (string, error) {
	if i := strings.Index(f.out, marker); i >= 0 {
		data := f.out[:i+len(marker)]
		f.out = f.out[i+len(marker):]
		return data, nil
	}
	return "", os.ErrDeadlineExceeded
}

func (f *fakeTransport) Write(s string) error {
	f.writes = append(f.writes, s)
	if r, ok := f.replies[s]; ok {
		f.out += r
	}
	return nil
}

func (f *fakeTransport) Close() error {
	f.closes++
	return nil
}

// loginScript fakes a device that walks through the standard handshake.
func loginScript(user, pass string) *fakeTransport {
	return &fakeTransport{
		out: "\r\nSpeedTouch Gateway\r\nUsername : ",
		replies: map[string]string{
			user + "\r\n": "Password : ",
			pass + "\r\n": "login banner\r\n{" + user + "}=>",
		},
	}
}

func TestOpenHandshake(t *testing.T) {
	f := loginScript("Administrator", "secret")
	s, err := Open(f, "Administrator", "secret")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if got := f.writes; len(got) != 2 || got[0] != "Administrator\r\n" || got[1] != "secret\r\n" {
		t.Errorf("handshake writes = %q, want username and password lines", got)
	}
	if s.Username() != "Administrator" {
		t.Errorf("Username() = %q", s.Username())
	}
	if f.closes != 0 {
		t.Errorf("transport closed %d time(s) during handshake", f.closes)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestOpenEmptyDefaultPassword(t *testing.T) {
	// the factory default password is empty: the password line is just CRLF
	f := loginScript("Administrator", "")
	s, err := Open(f, "Administrator", "")
	if err != nil {
		t.Fatalf("Open with empty password failed: %v", err)
	}
	if got := f.writes[1]; got != "\r\n" {
		t.Errorf("password write = %q, want bare line terminator", got)
	}
	s.Close()
}

func TestOpenNoUsernamePrompt(t *testing.T) {
	f := &fakeTransport{out: "login: "}
	_, err := Open(f, "Administrator", "")
	if err == nil {
		t.Fatal("Open succeeded without a Username prompt")
	}
	if !errors.Is(err, util.ErrProtocol) {
		t.Errorf("error = %v, want ErrProtocol", err)
	}
	if f.closes != 1 {
		t.Errorf("transport closed %d time(s), want exactly 1", f.closes)
	}
	for _, w := range f.writes {
		if strings.HasPrefix(w, "exit") {
			t.Error("logout sent although handshake never completed")
		}
	}
}

func TestOpenFailsAfterPasswordStillLogsOut(t *testing.T) {
	f := loginScript("Administrator", "pw")
	// drop the post-password prompt so the final handshake read times out
	f.replies["pw\r\n"] = "garbage with no prompt"
	_, err := Open(f, "Administrator", "pw")
	if !errors.Is(err, util.ErrProtocol) {
		t.Fatalf("error = %v, want ErrProtocol", err)
	}
	if f.closes != 1 {
		t.Errorf("transport closed %d time(s), want exactly 1", f.closes)
	}
	last := f.writes[len(f.writes)-1]
	if last != "exit\r\n" {
		t.Errorf("last write = %q, want fire-and-forget logout", last)
	}
}

func TestSend(t *testing.T) {
	f := loginScript("Administrator", "")
	f.replies["xdsl info\r\n"] = "xdsl info\r\nModem state: Showtime\r\nxDSL Type: VDSL2\r\n{Administrator}=>"
	s, err := Open(f, "Administrator", "")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	out, err := s.Send("xdsl info")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	want := "Modem state: Showtime\nxDSL Type: VDSL2\n"
	if out != want {
		t.Errorf("Send output = %q, want %q", out, want)
	}
}

func TestSendTimeoutThenTeardownOnce(t *testing.T) {
	f := loginScript("Administrator", "")
	s, err := Open(f, "Administrator", "")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	// no scripted reply for the command: the prompt never reappears
	_, err = s.Send("xdsl info")
	if !errors.Is(err, util.ErrProtocol) {
		t.Fatalf("error = %v, want ErrProtocol", err)
	}

	if err := s.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	last := f.writes[len(f.writes)-1]
	if last != "exit\r\n" {
		t.Errorf("last write = %q, want logout", last)
	}
	if f.closes != 1 {
		t.Errorf("transport closed %d time(s), want 1", f.closes)
	}

	// Close is idempotent; teardown must not run twice
	s.Close()
	if f.closes != 1 {
		t.Errorf("transport closed %d time(s) after second Close, want 1", f.closes)
	}
}

func TestResetLevel(t *testing.T) {
	f := loginScript("Administrator", "")
	f.replies["..\r\n"] = "..\r\n{Administrator}=>"
	s, err := Open(f, "Administrator", "")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	if err := s.ResetLevel(); err != nil {
		t.Fatalf("ResetLevel failed: %v", err)
	}
	ups := 0
	for _, w := range f.writes {
		if w == "..\r\n" {
			ups++
		}
	}
	if ups != maxGroupDepth {
		t.Errorf("sent %d up-commands, want %d", ups, maxGroupDepth)
	}
}

func TestKeepalive(t *testing.T) {
	f := loginScript("Administrator", "")
	f.replies["help\r\n"] = "help\r\nAvailable commands\r\n{Administrator}=>"
	s, err := Open(f, "Administrator", "")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	if err := s.Keepalive(); err != nil {
		t.Errorf("Keepalive failed: %v", err)
	}
}
