package session

import (
	"bytes"
	"net"
	"strconv"
	"time"

	"github.com/rtstat-tools/rtstat/pkg/util"
)

// Telnet command bytes (RFC 854)
const (
	telnetSE   = 240
	telnetSB   = 250
	telnetWILL = 251
	telnetWONT = 252
	telnetDO   = 253
	telnetDONT = 254
	telnetIAC  = 255
)

// DefaultTelnetPort is used when the caller passes port 0.
const DefaultTelnetPort = 23

// TelnetConn is a minimal telnet client transport. It refuses every option
// the server negotiates (DO -> WONT, WILL -> DONT), strips IAC sequences
// from the data stream, and applies the configured timeout as a deadline on
// each ReadUntil.
type TelnetConn struct {
	conn    net.Conn
	timeout time.Duration
	raw     []byte // received bytes not yet decoded (may end mid-sequence)
	buf     []byte // decoded data available to ReadUntil
}

// DialTelnet connects to host:port (port 0 means 23).
func DialTelnet(host string, port int, timeout time.Duration) (*TelnetConn, error) {
	if port == 0 {
		port = DefaultTelnetPort
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, err
	}
	util.Debugf("telnet: connected to %s", addr)
	return NewTelnetConn(conn, timeout), nil
}

// NewTelnetConn wraps an established connection. Exposed so tests can drive
// the decoder over an in-memory pipe.
func NewTelnetConn(conn net.Conn, timeout time.Duration) *TelnetConn {
	return &TelnetConn{conn: conn, timeout: timeout}
}

// ReadUntil reads until marker appears in the decoded stream, returning
// everything up to and including it. Partial data accumulated before a
// timeout is not returned, only logged.
func (c *TelnetConn) ReadUntil(marker string) (string, error) {
	deadline := time.Now().Add(c.timeout)
	for {
		if data, ok := c.take(marker); ok {
			return data, nil
		}
		if err := c.conn.SetReadDeadline(deadline); err != nil {
			return "", err
		}
		chunk := make([]byte, 4096)
		n, err := c.conn.Read(chunk)
		if n > 0 {
			c.decode(chunk[:n])
		}
		if err != nil {
			if data, ok := c.take(marker); ok {
				return data, nil
			}
			util.Debugf("telnet: read until %q failed with %d byte(s) pending: %v",
				marker, len(c.buf), err)
			return "", err
		}
	}
}

// Write sends s, doubling any literal IAC bytes.
func (c *TelnetConn) Write(s string) error {
	data := bytes.ReplaceAll([]byte(s), []byte{telnetIAC}, []byte{telnetIAC, telnetIAC})
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return err
	}
	_, err := c.conn.Write(data)
	return err
}

// Close releases the underlying connection.
func (c *TelnetConn) Close() error {
	return c.conn.Close()
}

// take cuts and returns the decoded data through marker, if present.
func (c *TelnetConn) take(marker string) (string, bool) {
	i := bytes.Index(c.buf, []byte(marker))
	if i < 0 {
		return "", false
	}
	end := i + len(marker)
	data := string(c.buf[:end])
	c.buf = append(c.buf[:0], c.buf[end:]...)
	return data, true
}

// decode appends chunk to the pending raw bytes and moves everything that
// is plain data into buf, answering or discarding IAC sequences. A sequence
// split across chunks stays in raw until its remainder arrives.
func (c *TelnetConn) decode(chunk []byte) {
	c.raw = append(c.raw, chunk...)
	i := 0
	for i < len(c.raw) {
		if c.raw[i] != telnetIAC {
			c.buf = append(c.buf, c.raw[i])
			i++
			continue
		}
		n := c.consumeIAC(c.raw[i:])
		if n == 0 {
			break // incomplete sequence, wait for more bytes
		}
		i += n
	}
	c.raw = append(c.raw[:0], c.raw[i:]...)
}

// consumeIAC handles one IAC sequence at the start of data, returning the
// number of bytes consumed, or 0 if the sequence is incomplete.
func (c *TelnetConn) consumeIAC(data []byte) int {
	if len(data) < 2 {
		return 0
	}
	switch cmd := data[1]; cmd {
	case telnetIAC:
		// escaped literal 0xFF
		c.buf = append(c.buf, telnetIAC)
		return 2
	case telnetDO, telnetDONT, telnetWILL, telnetWONT:
		if len(data) < 3 {
			return 0
		}
		c.refuse(cmd, data[2])
		return 3
	case telnetSB:
		// skip subnegotiation through IAC SE
		for j := 2; j+1 < len(data); j++ {
			if data[j] == telnetIAC && data[j+1] == telnetSE {
				return j + 2
			}
		}
		return 0
	default:
		return 2
	}
}

// refuse answers an option request negatively: DO -> WONT, WILL -> DONT.
// DONT and WONT need no answer. Write failures surface on the next read.
func (c *TelnetConn) refuse(cmd, opt byte) {
	var reply byte
	switch cmd {
	case telnetDO:
		reply = telnetWONT
	case telnetWILL:
		reply = telnetDONT
	default:
		return
	}
	if _, err := c.conn.Write([]byte{telnetIAC, reply, opt}); err != nil {
		util.Debugf("telnet: option refusal failed: %v", err)
	}
}
