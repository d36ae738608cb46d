package storage

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	kvOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cookbook_kv_operations_total",
			Help: "Key-value operations by op, key and result.",
		},
		[]string{"op", "key", "result"},
	)

	kvValueBytes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cookbook_kv_value_bytes",
			Help: "Size of the last value written per key.",
		},
		[]string{"key"},
	)
)

func init() {
	prometheus.MustRegister(kvOps, kvValueBytes)
}

type instrumentedKV struct {
	next KV
}

// Instrumented wraps a KV with prometheus counters.
func Instrumented(next KV) KV {
	return &instrumentedKV{next: next}
}

func (k *instrumentedKV) Get(ctx context.Context, key string) (string, bool, error) {
	value, found, err := k.next.Get(ctx, key)
	switch {
	case err != nil:
		kvOps.WithLabelValues("get", key, "error").Inc()
	case !found:
		kvOps.WithLabelValues("get", key, "miss").Inc()
	default:
		kvOps.WithLabelValues("get", key, "hit").Inc()
	}
	return value, found, err
}

func (k *instrumentedKV) Set(ctx context.Context, key string, value string) error {
	if err := k.next.Set(ctx, key, value); err != nil {
		kvOps.WithLabelValues("set", key, "error").Inc()
		return err
	}
	kvOps.WithLabelValues("set", key, "ok").Inc()
	kvValueBytes.WithLabelValues(key).Set(float64(len(value)))
	return nil
}

func (k *instrumentedKV) Delete(ctx context.Context, key string) error {
	if err := k.next.Delete(ctx, key); err != nil {
		kvOps.WithLabelValues("delete", key, "error").Inc()
		return err
	}
	kvOps.WithLabelValues("delete", key, "ok").Inc()
	kvValueBytes.DeleteLabelValues(key)
	return nil
}

func (k *instrumentedKV) Close() error {
	return k.next.Close()
}
