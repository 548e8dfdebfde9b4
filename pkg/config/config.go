package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Planner  PlannerConfig
	Scoring  ScoringConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// PlannerConfig governs the combination generator surface.
type PlannerConfig struct {
	DefaultMaxResults int
	MaxResultsCeiling int
	ResultTTL         time.Duration
	CacheEnabled      bool
	CacheTTL          time.Duration
	// LatestEndAppliesOnline extends the latest-end filter to meetings of
	// online sections. Off by default: online sections have no commute, so
	// a hard end-of-day cutoff only binds in-person attendance.
	LatestEndAppliesOnline bool
}

// ScoringConfig holds the slider rescaling constants. The ceilings are the
// coefficient reached when a slider sits at 100; the defaults make the
// default sliders (80/50/40/30) reproduce +100 per free day, +2 per late
// minute, -0.5 per gap minute and -0.3 per spread minute.
type ScoringConfig struct {
	BaselineStartMinute int
	FreeDayCeiling      float64
	LateStartCeiling    float64
	GapCeiling          float64
	SpreadCeiling       float64
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Planner = PlannerConfig{
		DefaultMaxResults:      v.GetInt("PLANNER_DEFAULT_MAX_RESULTS"),
		MaxResultsCeiling:      v.GetInt("PLANNER_MAX_RESULTS_CEILING"),
		ResultTTL:              parseDuration(v.GetString("PLANNER_RESULT_TTL"), 30*time.Minute),
		CacheEnabled:           v.GetBool("PLANNER_CACHE_ENABLED"),
		CacheTTL:               parseDuration(v.GetString("PLANNER_CACHE_TTL"), 10*time.Minute),
		LatestEndAppliesOnline: v.GetBool("PLANNER_LATEST_END_APPLIES_ONLINE"),
	}

	cfg.Scoring = ScoringConfig{
		BaselineStartMinute: v.GetInt("SCORING_BASELINE_START_MINUTE"),
		FreeDayCeiling:      v.GetFloat64("SCORING_FREE_DAY_CEILING"),
		LateStartCeiling:    v.GetFloat64("SCORING_LATE_START_CEILING"),
		GapCeiling:          v.GetFloat64("SCORING_GAP_CEILING"),
		SpreadCeiling:       v.GetFloat64("SCORING_SPREAD_CEILING"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "uniplanner")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("PLANNER_DEFAULT_MAX_RESULTS", 1000)
	v.SetDefault("PLANNER_MAX_RESULTS_CEILING", 5000)
	v.SetDefault("PLANNER_RESULT_TTL", "30m")
	v.SetDefault("PLANNER_CACHE_ENABLED", false)
	v.SetDefault("PLANNER_CACHE_TTL", "10m")
	v.SetDefault("PLANNER_LATEST_END_APPLIES_ONLINE", false)

	v.SetDefault("SCORING_BASELINE_START_MINUTE", 480)
	v.SetDefault("SCORING_FREE_DAY_CEILING", 125.0)
	v.SetDefault("SCORING_LATE_START_CEILING", 4.0)
	v.SetDefault("SCORING_GAP_CEILING", 1.25)
	v.SetDefault("SCORING_SPREAD_CEILING", 1.0)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
