package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// once 用来保证指标只注册一次。
	// Prometheus 的 registry 不允许重复注册同名指标，否则会直接 panic。
	once sync.Once

	// LinksCreatedTotal：累计创建的短链数（Counter）。
	LinksCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "clck_links_created_total",
			Help: "Total number of short links created.",
		},
	)

	// ResolvesTotal：按结果分类的 resolve 次数。
	//
	// labels：
	// - outcome：ok / not_found / expired / limit_reached / inactive
	ResolvesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clck_resolves_total",
			Help: "Total number of resolve attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// LinksEvictedTotal：被 cleanup 回收的短链数。
	LinksEvictedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "clck_links_evicted_total",
			Help: "Total number of short links evicted by cleanup.",
		},
	)

	// ReaperErrorsTotal：清理循环中被捕获的异常数。
	ReaperErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "clck_reaper_errors_total",
			Help: "Total number of panics recovered in the reaper loop.",
		},
	)
)

// Init 注册指标：只允许注册一次（否则 panic: duplicate metrics collector registration）
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			LinksCreatedTotal,
			ResolvesTotal,
			LinksEvictedTotal,
			ReaperErrorsTotal,
		)
	})
}
