// Package metrics exposes link events as Prometheus metrics.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pcie-go/pcie-go/logging"
)

const metricNamespace = "pcie"

var (
	stateTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "link_state_transitions_total",
			Help:      "LTSSM state transitions",
		},
		[]string{"state"},
	)
	packetsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "packets_sent_total",
			Help:      "data packets handed to the framer",
		},
		[]string{"kind"},
	)
	packetsReceived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "packets_received_total",
			Help:      "data packets passing the CRC check",
		},
	)
	packetsDelivered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "packets_delivered_total",
			Help:      "data packets delivered to the transaction layer",
		},
	)
	packetsAcknowledged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "packets_acknowledged_total",
			Help:      "data packets released from the retry buffer",
		},
	)
	packetsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "packets_dropped_total",
			Help:      "data packets dropped",
		},
		[]string{"reason"},
	)
	dllpsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "control_packets_sent_total",
			Help:      "control packets sent",
		},
		[]string{"type"},
	)
	dllpsReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "control_packets_received_total",
			Help:      "control packets received",
		},
		[]string{"type"},
	)
	dllpsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "control_packets_dropped_total",
			Help:      "control packets dropped",
		},
		[]string{"reason"},
	)
	retryBufferEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: metricNamespace,
			Name:      "retry_buffer_entries",
			Help:      "unacknowledged packets in the retry buffer",
		},
	)
	linkSpeed = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: metricNamespace,
			Name:      "link_speed_generation",
			Help:      "negotiated link speed generation",
		},
	)
)

// NewTracer creates a new tracer using the default Prometheus registerer.
func NewTracer() logging.Tracer {
	return NewTracerWithRegisterer(prometheus.DefaultRegisterer)
}

// NewTracerWithRegisterer creates a new tracer using a given Prometheus registerer.
func NewTracerWithRegisterer(registerer prometheus.Registerer) logging.Tracer {
	for _, c := range [...]prometheus.Collector{
		stateTransitions,
		packetsSent,
		packetsReceived,
		packetsDelivered,
		packetsAcknowledged,
		packetsDropped,
		dllpsSent,
		dllpsReceived,
		dllpsDropped,
		retryBufferEntries,
		linkSpeed,
	} {
		if err := registerer.Register(c); err != nil {
			if ok := errors.As(err, &prometheus.AlreadyRegisteredError{}); !ok {
				panic(err)
			}
		}
	}
	return &tracer{}
}

type tracer struct{}

var _ logging.Tracer = &tracer{}

func (t *tracer) UpdatedLinkState(_, new logging.LinkState) {
	stateTransitions.WithLabelValues(new.String()).Inc()
}

func (t *tracer) UpdatedLinkSpeed(s logging.Speed) {
	linkSpeed.Set(float64(s))
}

func (t *tracer) SentTLP(_ logging.SequenceNumber, _ int) {
	packetsSent.WithLabelValues("data").Inc()
}

func (t *tracer) ReplayedTLP(_ logging.SequenceNumber, _ int) {
	packetsSent.WithLabelValues("replay").Inc()
}

func (t *tracer) ReceivedTLP(_ logging.SequenceNumber, _ int) {
	packetsReceived.Inc()
}

func (t *tracer) DeliveredTLP(_ logging.SequenceNumber, _ int) {
	packetsDelivered.Inc()
}

func (t *tracer) AcknowledgedTLP(_ logging.SequenceNumber) {
	packetsAcknowledged.Inc()
}

func (t *tracer) SentDLLP(typ logging.DLLPType, _ logging.SequenceNumber) {
	dllpsSent.WithLabelValues(typ.String()).Inc()
}

func (t *tracer) ReceivedDLLP(typ logging.DLLPType, _ logging.SequenceNumber) {
	dllpsReceived.WithLabelValues(typ.String()).Inc()
}

func (t *tracer) DroppedTLP(_ logging.SequenceNumber, _ int, reason logging.PacketDropReason) {
	packetsDropped.WithLabelValues(reason.String()).Inc()
}

func (t *tracer) DroppedDLLP(reason logging.PacketDropReason) {
	dllpsDropped.WithLabelValues(reason.String()).Inc()
}

func (t *tracer) UpdatedRetryBuffer(length int) {
	retryBufferEntries.Set(float64(length))
}

func (t *tracer) Close() {}
