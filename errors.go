package pcie

import (
	"errors"

	"github.com/pcie-go/pcie-go/internal/ackhandler"
)

var (
	// ErrLinkDown is returned by Send while the link is not trained.
	ErrLinkDown = errors.New("link is not up")
	// ErrInvalidPayloadSize is returned by Send when the payload is empty or
	// exceeds Config.MaxPayloadBytes.
	ErrInvalidPayloadSize = errors.New("invalid payload size")
	// ErrRetryBufferFull is returned by Send when no retry buffer slot is
	// available. The caller must stall until acknowledgments free space.
	ErrRetryBufferFull = ackhandler.ErrRetryBufferFull
	// ErrLinkClosed is returned by operations on a closed Link.
	ErrLinkClosed = errors.New("link is closed")
)
