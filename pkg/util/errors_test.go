package util

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestProtocolErrorUnwrap(t *testing.T) {
	err := NewProtocolError("login", "waiting for \"Username : \"", io.EOF)
	if !errors.Is(err, ErrProtocol) {
		t.Error("ProtocolError does not unwrap to ErrProtocol")
	}
	if errors.Is(err, ErrDataFormat) {
		t.Error("ProtocolError unexpectedly matches ErrDataFormat")
	}
	if !strings.Contains(err.Error(), "login") {
		t.Errorf("Error() = %q, want it to mention the operation", err.Error())
	}
	if !strings.Contains(err.Error(), "EOF") {
		t.Errorf("Error() = %q, want it to include the underlying error", err.Error())
	}
}

func TestDataFormatErrorUnwrap(t *testing.T) {
	err := NewDataFormatError("xdsl info", "Modem state")
	if !errors.Is(err, ErrDataFormat) {
		t.Error("DataFormatError does not unwrap to ErrDataFormat")
	}
	if errors.Is(err, ErrProtocol) {
		t.Error("DataFormatError unexpectedly matches ErrProtocol")
	}
	msg := err.Error()
	if !strings.Contains(msg, "xdsl info") || !strings.Contains(msg, "Modem state") {
		t.Errorf("Error() = %q, want command and key named", msg)
	}
}
