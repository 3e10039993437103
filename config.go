package pcie

import (
	"errors"

	"github.com/pcie-go/pcie-go/internal/protocol"
	"github.com/pcie-go/pcie-go/logging"
)

// Clone clones a Config
func (c *Config) Clone() *Config {
	copy := *c
	return &copy
}

func validateConfig(config *Config) error {
	if config == nil {
		return nil
	}
	if config.MaxSpeed > protocol.Gen2 {
		return errors.New("invalid value for Config.MaxSpeed")
	}
	if config.MaxPayloadBytes < 0 || config.MaxPayloadBytes > protocol.MaxPayloadBytes {
		return errors.New("invalid value for Config.MaxPayloadBytes")
	}
	if d := config.RetryBufferDepth; d != 0 && (d < 2 || d&(d-1) != 0) {
		return errors.New("invalid value for Config.RetryBufferDepth")
	}
	if config.TrainingTimeout < 0 {
		return errors.New("invalid value for Config.TrainingTimeout")
	}
	if config.NFTS < 0 {
		return errors.New("invalid value for Config.NFTS")
	}
	return nil
}

// populateConfig populates fields in the Config with their default values, if none are set
// it may be called with nil
func populateConfig(config *Config) *Config {
	if config == nil {
		config = &Config{}
	}
	maxSpeed := config.MaxSpeed
	if maxSpeed == 0 {
		maxSpeed = protocol.Gen1
	}
	lanes := config.Lanes
	if lanes == 0 {
		lanes = 1
	}
	maxPayloadBytes := config.MaxPayloadBytes
	if maxPayloadBytes == 0 {
		maxPayloadBytes = protocol.DefaultMaxPayloadBytes
	}
	retryBufferDepth := config.RetryBufferDepth
	if retryBufferDepth == 0 {
		retryBufferDepth = protocol.DefaultRetryBufferDepth
	}
	trainingTimeout := config.TrainingTimeout
	if trainingTimeout == 0 {
		trainingTimeout = protocol.DefaultTrainingTimeout
	}
	nfts := config.NFTS
	if nfts == 0 {
		nfts = protocol.DefaultNFTS
	}
	skipInterval := config.SkipInterval
	if skipInterval == 0 {
		skipInterval = protocol.DefaultSkipInterval
	}
	replayTimeout := config.ReplayTimeout
	if replayTimeout == 0 {
		replayTimeout = protocol.DefaultReplayTimeout
	}
	tracer := config.Tracer
	if tracer == nil {
		tracer = logging.NullTracer
	}

	return &Config{
		MaxSpeed:          maxSpeed,
		Lanes:             lanes,
		MaxPayloadBytes:   maxPayloadBytes,
		RetryBufferDepth:  retryBufferDepth,
		TrainingTimeout:   trainingTimeout,
		NFTS:              nfts,
		SkipInterval:      skipInterval,
		ReplayTimeout:     replayTimeout,
		EnableL0s:         config.EnableL0s,
		EnableL1:          config.EnableL1,
		EnableL2:          config.EnableL2,
		DetailedSubstates: config.DetailedSubstates,
		Tracer:            tracer,
	}
}
