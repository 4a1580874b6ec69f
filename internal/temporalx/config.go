package temporalx

import (
	"strings"
	"time"

	"github.com/yungbote/shelfmind-backend/internal/platform/envutil"
)

type Config struct {
	Address   string
	Namespace string
	TaskQueue string

	ClientCertPath string
	ClientKeyPath  string
	ClientCAPath   string

	// TrendingCron schedules the trending refresh workflow (standard cron, UTC).
	TrendingCron string

	AutoRegisterNamespace bool
	NamespaceRetention    time.Duration

	DialTimeout    time.Duration
	DialMaxWait    time.Duration
	DialBackoff    time.Duration
	DialBackoffMax time.Duration
}

func LoadConfig() Config {
	return Config{
		Address:   strings.TrimSpace(envutil.String("TEMPORAL_ADDRESS", "")),
		Namespace: stringsOr(envutil.String("TEMPORAL_NAMESPACE", ""), "shelfmind"),
		TaskQueue: stringsOr(envutil.String("TEMPORAL_TASK_QUEUE", ""), "shelfmind"),

		ClientCertPath: strings.TrimSpace(envutil.String("TEMPORAL_CLIENT_CERT_PATH", "")),
		ClientKeyPath:  strings.TrimSpace(envutil.String("TEMPORAL_CLIENT_KEY_PATH", "")),
		ClientCAPath:   strings.TrimSpace(envutil.String("TEMPORAL_CLIENT_CA_PATH", "")),

		TrendingCron: stringsOr(envutil.String("TRENDING_CRON", ""), "0 3 * * *"),

		AutoRegisterNamespace: envutil.Bool("TEMPORAL_AUTO_REGISTER_NAMESPACE", false),
		NamespaceRetention:    envutil.Duration("TEMPORAL_NAMESPACE_RETENTION_DAYS", 24*time.Hour, 7*24*time.Hour),

		DialTimeout:    envutil.Duration("TEMPORAL_DIAL_TIMEOUT_SECONDS", time.Second, 5*time.Second),
		DialMaxWait:    envutil.Duration("TEMPORAL_DIAL_MAX_WAIT_SECONDS", time.Second, 60*time.Second),
		DialBackoff:    envutil.Duration("TEMPORAL_DIAL_BACKOFF_MS", time.Millisecond, 250*time.Millisecond),
		DialBackoffMax: envutil.Duration("TEMPORAL_DIAL_BACKOFF_MAX_MS", time.Millisecond, 5*time.Second),
	}
}

// Enabled reports whether a Temporal frontend is configured.
func (c Config) Enabled() bool { return c.Address != "" }

func (c Config) mTLS() bool {
	return c.ClientCertPath != "" || c.ClientKeyPath != "" || c.ClientCAPath != ""
}

func stringsOr(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}
