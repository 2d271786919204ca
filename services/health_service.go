package services

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"schoolleave_go/config"
	"schoolleave_go/database"
)

const (
	overallStatusOK       = "ok"
	overallStatusDegraded = "degraded"
	overallStatusCritical = "critical"

	dependencyStatusUp       = "up"
	dependencyStatusDown     = "down"
	dependencyStatusDisabled = "disabled"

	defaultServiceName  = "School Leave API"
	defaultVersion      = "1.0.0"
	defaultProbeTimeout = 1500 * time.Millisecond
)

// HealthService aggregates application health information for reporting endpoints.
type HealthService struct {
	serviceName string
	version     string
	startTime   time.Time
	timeout     time.Duration
}

// HealthReport represents the JSON response for health endpoints.
type HealthReport struct {
	Status        string             `json:"status"`
	Service       string             `json:"service"`
	Version       string             `json:"version"`
	Environment   string             `json:"environment"`
	Time          time.Time          `json:"time"`
	UptimeSeconds float64            `json:"uptime_seconds"`
	Dependencies  []DependencyStatus `json:"dependencies"`
	Goroutines    int                `json:"goroutines"`
	GoVersion     string             `json:"go_version"`
}

// DependencyStatus captures the health of a single external dependency.
type DependencyStatus struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// NewHealthService creates a new HealthService with sensible defaults.
func NewHealthService(serviceName, version string) *HealthService {
	if strings.TrimSpace(serviceName) == "" {
		serviceName = defaultServiceName
	}
	if strings.TrimSpace(version) == "" {
		version = defaultVersion
	}
	return &HealthService{
		serviceName: serviceName,
		version:     version,
		startTime:   time.Now(),
		timeout:     defaultProbeTimeout,
	}
}

// GetHealthReport collects the current health information.
func (s *HealthService) GetHealthReport() HealthReport {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	env := ""
	if config.AppConfig != nil {
		env = config.AppConfig.AppEnv
	}

	report := HealthReport{
		Status:      overallStatusOK,
		Service:     s.serviceName,
		Version:     s.version,
		Environment: env,
		Time:        time.Now().UTC(),
		Goroutines:  runtime.NumGoroutine(),
		GoVersion:   runtime.Version(),
	}
	report.UptimeSeconds = time.Since(s.startTime).Seconds()

	dbDep := s.checkDatabase(ctx)
	report.Dependencies = append(report.Dependencies, dbDep)
	if dbDep.Status == dependencyStatusDown {
		report.Status = overallStatusCritical
	}

	redisDep := s.checkRedis(ctx)
	report.Dependencies = append(report.Dependencies, redisDep)
	if redisDep.Status == dependencyStatusDown && report.Status == overallStatusOK {
		report.Status = overallStatusDegraded
	}

	return report
}

// HTTPStatusForOverall maps a health status to an HTTP status code.
func (s *HealthService) HTTPStatusForOverall(status string) int {
	if status == overallStatusCritical {
		return 503
	}
	return 200
}

func (s *HealthService) checkDatabase(ctx context.Context) DependencyStatus {
	dep := DependencyStatus{Name: "mysql"}
	if database.DB == nil {
		dep.Status = dependencyStatusDown
		dep.Error = "database connection not initialised"
		return dep
	}

	sqlDB, err := database.DB.DB()
	if err != nil {
		dep.Status = dependencyStatusDown
		dep.Error = err.Error()
		return dep
	}

	start := time.Now()
	if err := sqlDB.PingContext(ctx); err != nil {
		dep.Status = dependencyStatusDown
		dep.Error = err.Error()
		return dep
	}
	dep.LatencyMs = time.Since(start).Milliseconds()
	dep.Status = dependencyStatusUp
	return dep
}

func (s *HealthService) checkRedis(ctx context.Context) DependencyStatus {
	dep := DependencyStatus{Name: "redis"}
	rc := database.GetRedisClient()
	if rc == nil {
		dep.Status = dependencyStatusDisabled
		return dep
	}

	start := time.Now()
	if err := rc.Ping(ctx).Err(); err != nil {
		dep.Status = dependencyStatusDown
		dep.Error = fmt.Sprintf("ping failed: %v", err)
		return dep
	}
	dep.LatencyMs = time.Since(start).Milliseconds()
	dep.Status = dependencyStatusUp
	return dep
}
