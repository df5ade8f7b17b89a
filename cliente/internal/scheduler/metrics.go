package scheduler

import (
	"errors"
	"log"

	"github.com/prometheus/client_golang/prometheus"
)

// Tipos de job, usados como label nas métricas e nos logs.
const (
	KindDecompress = "decompress"
	KindMesh       = "mesh"
)

// Metrics agrupa as métricas Prometheus do pool.
type Metrics struct {
	JobsCompleted   *prometheus.CounterVec
	MeshJobsDropped prometheus.Counter
	SubmitContended *prometheus.CounterVec
	QueueDepth      *prometheus.GaugeVec
	JobSeconds      *prometheus.HistogramVec
}

// NewMetrics cria as métricas e as registra em reg. Com reg nil as métricas
// funcionam normalmente, só não são exportadas.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		JobsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voxelstream",
			Name:      "jobs_completed_total",
			Help:      "Jobs concluídos pelos workers.",
		}, []string{"kind"}),
		MeshJobsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxelstream",
			Name:      "mesh_jobs_dropped_total",
			Help:      "Jobs de malha descartados por estarem longe demais do observador.",
		}),
		SubmitContended: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voxelstream",
			Name:      "submit_contended_total",
			Help:      "Submissões recusadas porque o lock estava ocupado.",
		}, []string{"kind"}),
		QueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "voxelstream",
			Name:      "queue_depth",
			Help:      "Itens aguardando em cada fila.",
		}, []string{"kind"}),
		JobSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "voxelstream",
			Name:      "job_seconds",
			Help:      "Duração dos jobs, sem contar a espera na fila.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"kind"}),
	}

	if reg == nil {
		return m
	}
	m.JobsCompleted = register(reg, m.JobsCompleted)
	m.MeshJobsDropped = register(reg, m.MeshJobsDropped)
	m.SubmitContended = register(reg, m.SubmitContended)
	m.QueueDepth = register(reg, m.QueueDepth)
	m.JobSeconds = register(reg, m.JobSeconds)
	return m
}

// register registra c em reg. Se já houver um coletor igual registrado
// (pool recriado no mesmo processo), devolve o existente para que as
// métricas continuem exportadas.
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
	log.Printf("[Scheduler] Não foi possível registrar métrica: %v", err)
	return c
}
