package busio

import (
	"errors"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"

	"github.com/thread-tools/wpanbus/internal/wpan"
)

func TestClassifyCallError_DaemonErrorReplyIsProtocol(t *testing.T) {
	err := classifyCallError("PropGet", "/org/wpantund/wpan0",
		dbus.Error{Name: "org.wpantund.v1.Error.InvalidArgument"})

	assert.ErrorIs(t, err, wpan.ErrProtocol)
	assert.NotErrorIs(t, err, wpan.ErrTransport)
}

func TestClassifyCallError_ConnectionFaultIsTransport(t *testing.T) {
	err := classifyCallError("PropGet", "/org/wpantund/wpan0",
		errors.New("connection closed by peer"))

	assert.ErrorIs(t, err, wpan.ErrTransport)
}
