package protocol

// DefaultRetryBufferDepth is the number of retry buffer slots used when the
// Config doesn't specify one.
const DefaultRetryBufferDepth = 64

// DefaultTrainingTimeout is the number of ticks the LTSSM waits in a training
// state for a partner response before falling back to Detect.
const DefaultTrainingTimeout = 1024

// DefaultNFTS is the number of fast training sequence ticks required to exit
// L0s.
const DefaultNFTS = 16

// DefaultSkipInterval is the number of transmitted symbols between two SKP
// ordered sets. Real links schedule one every 1180 to 1538 symbols; the
// default keeps clock compensation observable in short simulations.
const DefaultSkipInterval = 1180

// DefaultReplayTimeout is the number of ticks the transmit engine waits for
// acknowledgment progress before replaying everything outstanding.
const DefaultReplayTimeout = 4096

// MaxLanes is the widest supported link.
const MaxLanes = 32

// DefaultMaxPayloadBytes is the TLP payload limit used when the Config
// doesn't specify one.
const DefaultMaxPayloadBytes = 256

// MaxPayloadBytes is the largest TLP payload the link accepts.
const MaxPayloadBytes = 4096
