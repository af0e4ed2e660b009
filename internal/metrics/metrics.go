// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 認証操作の結果ラベル
const (
	ResultSuccess       = "success"
	ResultValidation    = "validation"
	ResultProviderError = "provider_error"
	ResultError         = "error"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層・ミドルウェア・ワーカーから利用する。
type MetricsCollector interface {
	RecordRegistration(result string)
	RecordLogin(result string)
	RecordLogout(result string)
	RecordProviderError(code string)
	RecordLastLoginUpdate(success bool)
	RecordProfileLoad(success bool)
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordSessionsCleaned(count int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	registrations    *prometheus.CounterVec
	logins           *prometheus.CounterVec
	logouts          *prometheus.CounterVec
	providerErrors   *prometheus.CounterVec
	lastLoginUpdates *prometheus.CounterVec
	profileLoads     *prometheus.CounterVec
	httpStatus       *prometheus.CounterVec
	requestLatency   prometheus.Histogram
	sessionsCleaned  prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "accountdash_registrations_total",
			Help: "アカウント登録の試行数（結果別）",
		}, []string{"result"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "accountdash_logins_total",
			Help: "サインインの試行数（結果別）",
		}, []string{"result"}),
		logouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "accountdash_logouts_total",
			Help: "サインアウトの試行数（結果別）",
		}, []string{"result"}),
		providerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "accountdash_provider_errors_total",
			Help: "プロバイダーエラーコード別の失敗数",
		}, []string{"code"}),
		lastLoginUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "accountdash_last_login_updates_total",
			Help: "最終ログイン日時の更新数（結果別）",
		}, []string{"result"}),
		profileLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "accountdash_profile_loads_total",
			Help: "プロフィール読み込み数（結果別）",
		}, []string{"result"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "accountdash_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "accountdash_request_latency_seconds",
			Help:    "HTTPリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		sessionsCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "accountdash_sessions_cleaned_total",
			Help: "削除された期限切れセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.registrations,
		c.logins,
		c.logouts,
		c.providerErrors,
		c.lastLoginUpdates,
		c.profileLoads,
		c.httpStatus,
		c.requestLatency,
		c.sessionsCleaned,
	)

	return c
}

// RecordRegistration はアカウント登録の結果を記録する。
func (c *Collector) RecordRegistration(result string) {
	c.registrations.WithLabelValues(result).Inc()
}

// RecordLogin はサインインの結果を記録する。
func (c *Collector) RecordLogin(result string) {
	c.logins.WithLabelValues(result).Inc()
}

// RecordLogout はサインアウトの結果を記録する。
func (c *Collector) RecordLogout(result string) {
	c.logouts.WithLabelValues(result).Inc()
}

// RecordProviderError はプロバイダーエラーコードを記録する。
func (c *Collector) RecordProviderError(code string) {
	c.providerErrors.WithLabelValues(code).Inc()
}

// RecordLastLoginUpdate は最終ログイン日時の更新結果を記録する。
func (c *Collector) RecordLastLoginUpdate(success bool) {
	c.lastLoginUpdates.WithLabelValues(boolResult(success)).Inc()
}

// RecordProfileLoad はプロフィール読み込みの結果を記録する。
func (c *Collector) RecordProfileLoad(success bool) {
	c.profileLoads.WithLabelValues(boolResult(success)).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエストのレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordSessionsCleaned は削除されたセッション数を記録する。
func (c *Collector) RecordSessionsCleaned(count int64) {
	c.sessionsCleaned.Add(float64(count))
}

func boolResult(success bool) string {
	if success {
		return ResultSuccess
	}
	return ResultError
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// NopCollector は何も記録しないMetricsCollector。テストやメトリクス無効時に使用する。
type NopCollector struct{}

func (NopCollector) RecordRegistration(string)          {}
func (NopCollector) RecordLogin(string)                 {}
func (NopCollector) RecordLogout(string)                {}
func (NopCollector) RecordProviderError(string)         {}
func (NopCollector) RecordLastLoginUpdate(bool)         {}
func (NopCollector) RecordProfileLoad(bool)             {}
func (NopCollector) RecordHTTPStatus(int)               {}
func (NopCollector) RecordRequestLatency(time.Duration) {}
func (NopCollector) RecordSessionsCleaned(int64)        {}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
var _ MetricsCollector = NopCollector{}
