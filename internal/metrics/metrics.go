// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// HTTPミドルウェア、コンテンツサービス、認証サービスから利用する。
type MetricsCollector interface {
	RecordHTTPRequest(method, route string, statusCode int, duration time.Duration)
	RecordContentMutation(kind, op string)
	RecordLoginAttempt(success bool)
	RecordSessionsSwept(count int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests  *prometheus.CounterVec
	httpLatency   *prometheus.HistogramVec
	mutations     *prometheus.CounterVec
	loginAttempts *prometheus.CounterVec
	sessionsSwept prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_http_requests_total",
			Help: "ルート・ステータスコード別のHTTPリクエスト数",
		}, []string{"method", "route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portfolio_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_content_mutations_total",
			Help: "レコード種別・操作別のコンテンツ更新数",
		}, []string{"kind", "op"}),
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_login_attempts_total",
			Help: "管理者ログイン試行数",
		}, []string{"result"}),
		sessionsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portfolio_sessions_swept_total",
			Help: "期限切れで削除されたセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.mutations,
		c.loginAttempts,
		c.sessionsSwept,
	)

	return c
}

// RecordHTTPRequest はリクエスト数と処理時間を記録する。
// routeにはchiのルートパターンを渡し、ラベルの種類が増えすぎないようにする。
func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordContentMutation はコンテンツの作成・更新・削除を記録する。
func (c *Collector) RecordContentMutation(kind, op string) {
	c.mutations.WithLabelValues(kind, op).Inc()
}

// RecordLoginAttempt はログイン試行の結果を記録する。
func (c *Collector) RecordLoginAttempt(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	c.loginAttempts.WithLabelValues(result).Inc()
}

// RecordSessionsSwept は掃除ジョブで削除したセッション数を記録する。
func (c *Collector) RecordSessionsSwept(count int64) {
	c.sessionsSwept.Add(float64(count))
}

// Nop は何も記録しないMetricsCollector。テストやメトリクス無効時に使う。
type Nop struct{}

func (Nop) RecordHTTPRequest(string, string, int, time.Duration) {}
func (Nop) RecordContentMutation(string, string)                 {}
func (Nop) RecordLoginAttempt(bool)                              {}
func (Nop) RecordSessionsSwept(int64)                            {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = Nop{}
)
