package regions

import (
	"errors"
	"log"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics agrupa as métricas Prometheus do servidor.
type Metrics struct {
	RegionsServed   *prometheus.CounterVec
	ChecksumReplies *prometheus.CounterVec
	Clients         prometheus.Gauge
}

// NewMetrics cria as métricas e as registra em reg (nil = não exporta).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RegionsServed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voxelstream_server",
			Name:      "regions_served_total",
			Help:      "Regiões entregues, por origem.",
		}, []string{"source"}),
		ChecksumReplies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voxelstream_server",
			Name:      "checksum_replies_total",
			Help:      "Respostas de verificação de checksum, por resultado.",
		}, []string{"match"}),
		Clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxelstream_server",
			Name:      "clients",
			Help:      "Conexões websocket abertas.",
		}),
	}

	if reg == nil {
		return m
	}
	m.RegionsServed = register(reg, m.RegionsServed)
	m.ChecksumReplies = register(reg, m.ChecksumReplies)
	m.Clients = register(reg, m.Clients)
	return m
}

// register devolve o coletor já registrado quando houver duplicata.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	err := reg.Register(c)
	if err == nil {
		return c
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing
		}
	}
	log.Printf("[Regions] Não foi possível registrar métrica: %v", err)
	return c
}
