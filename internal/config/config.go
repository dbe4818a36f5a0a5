package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/practice-coach/backend/internal/models"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	WeightingRecency    = "recency"
	WeightingDifficulty = "difficulty"
)

type Config struct {
	Port            string
	LogMode         string
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	DefaultK        int

	Database DatabaseConfig
	Scoring  ScoringConfig
}

type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
}

// DSN returns the connection string for the configured driver.
func (c DatabaseConfig) DSN() string {
	if c.Driver == DriverSQLite {
		return c.SQLitePath
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// ScoringConfig holds the tunables of skill estimation and ranking.
type ScoringConfig struct {
	HalfLifeDays        float64
	ClampFutureAttempts bool
	Weighting           string
	DifficultyWeights   map[models.Difficulty]float64
	UnseenSkill         float64
	DifficultyBonus     map[models.Difficulty]float64
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:    getEnv("PORT", "8080"),
		LogMode: getEnv("LOG_MODE", "dev"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS",
			"http://localhost:5173,http://127.0.0.1:5173")),
		Database: DatabaseConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "coach_user"),
			Password:   getEnv("DB_PASSWORD", "coach_password"),
			Name:       getEnv("DB_NAME", "practice_coach"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "app.db"),
		},
	}

	var err error
	if cfg.ShutdownTimeout, err = getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.DefaultK, err = getEnvInt("DEFAULT_RECOMMEND_K", 5); err != nil {
		return nil, err
	}

	sc := &cfg.Scoring
	if sc.HalfLifeDays, err = getEnvFloat("RECENCY_HALF_LIFE_DAYS", 30); err != nil {
		return nil, err
	}
	if sc.HalfLifeDays <= 0 {
		return nil, fmt.Errorf("config: RECENCY_HALF_LIFE_DAYS must be positive, got %v", sc.HalfLifeDays)
	}
	if sc.ClampFutureAttempts, err = getEnvBool("CLAMP_FUTURE_ATTEMPTS", true); err != nil {
		return nil, err
	}
	if sc.UnseenSkill, err = getEnvFloat("UNSEEN_SKILL", 0.5); err != nil {
		return nil, err
	}
	if sc.UnseenSkill < 0 || sc.UnseenSkill > 1 {
		return nil, fmt.Errorf("config: UNSEEN_SKILL must be within [0,1], got %v", sc.UnseenSkill)
	}
	sc.Weighting = strings.ToLower(getEnv("SKILL_WEIGHTING", WeightingRecency))
	if sc.Weighting != WeightingRecency && sc.Weighting != WeightingDifficulty {
		return nil, fmt.Errorf("config: SKILL_WEIGHTING must be %q or %q, got %q",
			WeightingRecency, WeightingDifficulty, sc.Weighting)
	}
	if sc.DifficultyWeights, err = ParseDifficultyTable(getEnv("DIFFICULTY_WEIGHTS", "1:1.0,2:1.5,3:2.0")); err != nil {
		return nil, fmt.Errorf("config: DIFFICULTY_WEIGHTS: %w", err)
	}
	if sc.DifficultyBonus, err = ParseDifficultyTable(getEnv("DIFFICULTY_BONUS", "1:0.10,2:0.05,3:0")); err != nil {
		return nil, fmt.Errorf("config: DIFFICULTY_BONUS: %w", err)
	}

	if cfg.Database.Driver != DriverPostgres && cfg.Database.Driver != DriverSQLite {
		return nil, fmt.Errorf("config: DB_DRIVER must be %q or %q, got %q",
			DriverPostgres, DriverSQLite, cfg.Database.Driver)
	}

	return cfg, nil
}

// ParseDifficultyTable parses "1:0.10,2:0.05,3:0" into difficulty -> value.
func ParseDifficultyTable(s string) (map[models.Difficulty]float64, error) {
	table := make(map[models.Difficulty]float64)
	for _, entry := range splitList(s) {
		key, value, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("entry %q is not difficulty:value", entry)
		}
		d, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("entry %q: invalid difficulty: %w", entry, err)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("entry %q: invalid value: %w", entry, err)
		}
		table[models.Difficulty(d)] = v
	}
	return table, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not an integer: %w", key, v, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not a number: %w", key, v, err)
	}
	return f, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s=%q is not a boolean: %w", key, v, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not a valid duration: %w", key, v, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
