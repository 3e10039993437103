package eventlog

import (
	"time"

	"github.com/francoispqt/gojay"

	"github.com/pcie-go/pcie-go/logging"
)

type category uint8

const (
	categoryLink category = iota
	categoryDLL
)

func (c category) String() string {
	switch c {
	case categoryLink:
		return "link"
	case categoryDLL:
		return "dll"
	default:
		panic("unknown event category")
	}
}

type eventDetails interface {
	Category() category
	Name() string
	gojay.MarshalerJSONObject
}

type event struct {
	RelativeTime time.Duration
	eventDetails
}

var _ gojay.MarshalerJSONArray = event{}

func (e event) IsNil() bool { return false }
func (e event) MarshalJSONArray(enc *gojay.Encoder) {
	enc.Float64(float64(e.RelativeTime.Nanoseconds()) / 1e6)
	enc.String(e.Category().String())
	enc.String(e.Name())
	enc.Object(e.eventDetails)
}

type eventLinkStateUpdated struct {
	Old logging.LinkState
	New logging.LinkState
}

var _ eventDetails = &eventLinkStateUpdated{}

func (e eventLinkStateUpdated) Category() category { return categoryLink }
func (e eventLinkStateUpdated) Name() string       { return "state_updated" }
func (e eventLinkStateUpdated) IsNil() bool        { return false }

func (e eventLinkStateUpdated) MarshalJSONObject(enc *gojay.Encoder) {
	enc.StringKey("old", e.Old.String())
	enc.StringKey("new", e.New.String())
}

type eventLinkSpeedUpdated struct {
	Speed logging.Speed
}

var _ eventDetails = &eventLinkSpeedUpdated{}

func (e eventLinkSpeedUpdated) Category() category { return categoryLink }
func (e eventLinkSpeedUpdated) Name() string       { return "speed_updated" }
func (e eventLinkSpeedUpdated) IsNil() bool        { return false }

func (e eventLinkSpeedUpdated) MarshalJSONObject(enc *gojay.Encoder) {
	enc.StringKey("speed", e.Speed.String())
}

type eventPacketSent struct {
	SeqNum logging.SequenceNumber
	Size   int
	Replay bool
}

var _ eventDetails = &eventPacketSent{}

func (e eventPacketSent) Category() category { return categoryDLL }
func (e eventPacketSent) Name() string       { return "packet_sent" }
func (e eventPacketSent) IsNil() bool        { return false }

func (e eventPacketSent) MarshalJSONObject(enc *gojay.Encoder) {
	enc.Uint32Key("seq", uint32(e.SeqNum))
	enc.IntKey("size", e.Size)
	enc.BoolKeyOmitEmpty("replay", e.Replay)
}

type eventPacketReceived struct {
	SeqNum logging.SequenceNumber
	Size   int
}

var _ eventDetails = &eventPacketReceived{}

func (e eventPacketReceived) Category() category { return categoryDLL }
func (e eventPacketReceived) Name() string       { return "packet_received" }
func (e eventPacketReceived) IsNil() bool        { return false }

func (e eventPacketReceived) MarshalJSONObject(enc *gojay.Encoder) {
	enc.Uint32Key("seq", uint32(e.SeqNum))
	enc.IntKey("size", e.Size)
}

type eventPacketDelivered struct {
	SeqNum logging.SequenceNumber
	Size   int
}

var _ eventDetails = &eventPacketDelivered{}

func (e eventPacketDelivered) Category() category { return categoryDLL }
func (e eventPacketDelivered) Name() string       { return "packet_delivered" }
func (e eventPacketDelivered) IsNil() bool        { return false }

func (e eventPacketDelivered) MarshalJSONObject(enc *gojay.Encoder) {
	enc.Uint32Key("seq", uint32(e.SeqNum))
	enc.IntKey("size", e.Size)
}

type eventPacketAcknowledged struct {
	SeqNum logging.SequenceNumber
}

var _ eventDetails = &eventPacketAcknowledged{}

func (e eventPacketAcknowledged) Category() category { return categoryDLL }
func (e eventPacketAcknowledged) Name() string       { return "packet_acknowledged" }
func (e eventPacketAcknowledged) IsNil() bool        { return false }

func (e eventPacketAcknowledged) MarshalJSONObject(enc *gojay.Encoder) {
	enc.Uint32Key("seq", uint32(e.SeqNum))
}

type eventPacketDropped struct {
	SeqNum  logging.SequenceNumber
	Size    int
	Trigger string
}

var _ eventDetails = &eventPacketDropped{}

func (e eventPacketDropped) Category() category { return categoryDLL }
func (e eventPacketDropped) Name() string       { return "packet_dropped" }
func (e eventPacketDropped) IsNil() bool        { return false }

func (e eventPacketDropped) MarshalJSONObject(enc *gojay.Encoder) {
	enc.Uint32Key("seq", uint32(e.SeqNum))
	enc.IntKey("size", e.Size)
	enc.StringKey("trigger", e.Trigger)
}

type eventControlPacket struct {
	Sent   bool
	Type   logging.DLLPType
	SeqNum logging.SequenceNumber
}

var _ eventDetails = &eventControlPacket{}

func (e eventControlPacket) Category() category { return categoryDLL }
func (e eventControlPacket) Name() string {
	if e.Sent {
		return "control_packet_sent"
	}
	return "control_packet_received"
}
func (e eventControlPacket) IsNil() bool { return false }

func (e eventControlPacket) MarshalJSONObject(enc *gojay.Encoder) {
	enc.StringKey("type", e.Type.String())
	enc.Uint32Key("seq", uint32(e.SeqNum))
}

type eventControlPacketDropped struct {
	Trigger string
}

var _ eventDetails = &eventControlPacketDropped{}

func (e eventControlPacketDropped) Category() category { return categoryDLL }
func (e eventControlPacketDropped) Name() string       { return "control_packet_dropped" }
func (e eventControlPacketDropped) IsNil() bool        { return false }

func (e eventControlPacketDropped) MarshalJSONObject(enc *gojay.Encoder) {
	enc.StringKey("trigger", e.Trigger)
}

type eventRetryBufferUpdated struct {
	Length int
}

var _ eventDetails = &eventRetryBufferUpdated{}

func (e eventRetryBufferUpdated) Category() category { return categoryDLL }
func (e eventRetryBufferUpdated) Name() string       { return "retry_buffer_updated" }
func (e eventRetryBufferUpdated) IsNil() bool        { return false }

func (e eventRetryBufferUpdated) MarshalJSONObject(enc *gojay.Encoder) {
	enc.IntKey("length", e.Length)
}
