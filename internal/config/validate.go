package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}

	if !c.RateLimit.Disabled && (c.RateLimit.PerMinute <= 0 || c.RateLimit.SubmitPerMinute <= 0) {
		return fmt.Errorf("rate_limit: per_minute and submit_per_minute must be > 0 when enabled")
	}

	if c.CORS.AllowCredentials && originListHasWildcard(c.CORS.AllowedOrigins) {
		return fmt.Errorf("cors: allow_credentials cannot be combined with a wildcard allowed_origins")
	}

	if err := c.Sync.validate(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	if !c.WebSocket.Disabled && c.WebSocket.PingInterval >= c.WebSocket.PongWait {
		return fmt.Errorf("websocket: ping_interval (%s) must be shorter than pong_wait (%s)",
			c.WebSocket.PingInterval, c.WebSocket.PongWait)
	}
	if !c.WebSocket.Disabled && (c.WebSocket.SendBuffer <= 0 || c.WebSocket.MaxConnsPerUser <= 0) {
		return fmt.Errorf("websocket: send_buffer and max_conns_per_user must be > 0")
	}

	return nil
}

func (s *SyncConfig) validate() error {
	if s.Workers <= 0 {
		return fmt.Errorf("workers must be > 0 (got %d)", s.Workers)
	}
	if s.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be > 0 (got %s)", s.PollInterval)
	}
	if s.TaskLease <= 0 {
		return fmt.Errorf("task_lease must be > 0 (got %s)", s.TaskLease)
	}
	if s.MaxAttempts <= 0 {
		return fmt.Errorf("max_attempts must be > 0 (got %d)", s.MaxAttempts)
	}
	if s.RetryInitial <= 0 || s.RetryMax < s.RetryInitial {
		return fmt.Errorf("retry_initial must be > 0 and <= retry_max (got %s, %s)", s.RetryInitial, s.RetryMax)
	}
	if s.LatestVersionsTTL <= 0 {
		return fmt.Errorf("latest_versions_ttl must be > 0 (got %s)", s.LatestVersionsTTL)
	}
	if s.CacheSize <= 0 {
		return fmt.Errorf("cache_size must be > 0 (got %d)", s.CacheSize)
	}
	if s.MaxChangesPerBatch <= 0 {
		return fmt.Errorf("max_changes_per_batch must be > 0 (got %d)", s.MaxChangesPerBatch)
	}
	if s.ProcessBatchSize <= 0 {
		return fmt.Errorf("process_batch_size must be > 0 (got %d)", s.ProcessBatchSize)
	}
	if s.DefaultPullLimit <= 0 || s.DefaultPullLimit > s.MaxPullLimit {
		return fmt.Errorf("default_pull_limit must be in 1..max_pull_limit (got %d, max %d)", s.DefaultPullLimit, s.MaxPullLimit)
	}
	return nil
}

func originListHasWildcard(origins string) bool {
	for _, o := range strings.Split(origins, ",") {
		if strings.TrimSpace(o) == "*" {
			return true
		}
	}
	return false
}
