package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App           App           `mapstructure:",squash"`
	Server        Server        `mapstructure:",squash"`
	Database      Database      `mapstructure:",squash"`
	Import        Import        `mapstructure:",squash"`
	Retry         Retry         `mapstructure:",squash"`
	UploadCleanup UploadCleanup `mapstructure:",squash"`
	Quality       Quality       `mapstructure:",squash"`
	SecretKey     string        `mapstructure:"secret_key"`
}

type Server struct {
	Host           string   `mapstructure:"host"`
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

type Database struct {
	DSN          string `mapstructure:"-"`
	Driver       string `mapstructure:"database_driver"`
	Password     string `mapstructure:"database_password"`
	URL          string `mapstructure:"database_url"`
	User         string `mapstructure:"database_user"`
	MaxOpenConns int    `mapstructure:"database_max_open_conns"`
	MaxIdleConns int    `mapstructure:"database_max_idle_conns"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

// Import controla o recebimento e o processamento dos arquivos enviados
type Import struct {
	UploadDir    string `mapstructure:"import_upload_dir"`
	MaxUploadMB  int64  `mapstructure:"import_max_upload_mb"`
	SummaryEvery int    `mapstructure:"import_summary_every"`
}

// Retry define a política de novas tentativas das operações no banco
type Retry struct {
	Attempts int           `mapstructure:"retry_attempts"`
	Factor   float64       `mapstructure:"retry_factor"`
	MinDelay time.Duration `mapstructure:"retry_min_delay"`
	MaxDelay time.Duration `mapstructure:"retry_max_delay"`
	Jitter   bool          `mapstructure:"retry_jitter"`
	Timeout  time.Duration `mapstructure:"retry_timeout"`
}

type UploadCleanup struct {
	CronSchedule string        `mapstructure:"upload_cleanup_cron"`
	MaxAge       time.Duration `mapstructure:"upload_cleanup_max_age"`
	Enabled      bool          `mapstructure:"upload_cleanup_enabled"`
}

// Quality guarda sobrescritas por tipo de fonte no formato "tipo=valor"
type Quality struct {
	MaturityDays      []string `mapstructure:"quality_maturity_days"`
	VarianceThreshold []string `mapstructure:"quality_variance_threshold"`
}

// MaturityDaysBySource converte QUALITY_MATURITY_DAYS em um mapa tipo -> dias
func (q Quality) MaturityDaysBySource() map[string]int {
	out := make(map[string]int)
	for key, value := range parsePairs(q.MaturityDays) {
		days, err := strconv.Atoi(value)
		if err != nil || days <= 0 {
			logrus.Warnf("Valor inválido em QUALITY_MATURITY_DAYS para %s: %s", key, value)
			continue
		}
		out[key] = days
	}
	return out
}

// VarianceThresholdBySource converte QUALITY_VARIANCE_THRESHOLD em um mapa tipo -> percentual
func (q Quality) VarianceThresholdBySource() map[string]float64 {
	out := make(map[string]float64)
	for key, value := range parsePairs(q.VarianceThreshold) {
		threshold, err := strconv.ParseFloat(value, 64)
		if err != nil || threshold < 0 {
			logrus.Warnf("Valor inválido em QUALITY_VARIANCE_THRESHOLD para %s: %s", key, value)
			continue
		}
		out[key] = threshold
	}
	return out
}

func parsePairs(items []string) map[string]string {
	pairs := make(map[string]string, len(items))
	for _, item := range items {
		key, value, ok := strings.Cut(strings.TrimSpace(item), "=")
		if !ok || key == "" {
			continue
		}
		pairs[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return pairs
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:4001")

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/traffic?sslmode=disable")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 10) // Pool limitado, compartilhado entre importações
	viper.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)

	viper.SetDefault("SECRET_KEY", "your_secret_key")

	viper.SetDefault("IMPORT_UPLOAD_DIR", filepath.Join(os.TempDir(), "traffic-imports"))
	viper.SetDefault("IMPORT_MAX_UPLOAD_MB", 50)
	viper.SetDefault("IMPORT_SUMMARY_EVERY", 100) // Resumo a cada 100 linhas

	viper.SetDefault("RETRY_ATTEMPTS", 3)
	viper.SetDefault("RETRY_FACTOR", 2)
	viper.SetDefault("RETRY_MIN_DELAY", "200ms")
	viper.SetDefault("RETRY_MAX_DELAY", "5s")
	viper.SetDefault("RETRY_JITTER", true)
	viper.SetDefault("RETRY_TIMEOUT", "30s")

	viper.SetDefault("UPLOAD_CLEANUP_CRON", "*/30 * * * *") // A cada 30 minutos
	viper.SetDefault("UPLOAD_CLEANUP_MAX_AGE", "6h")
	viper.SetDefault("UPLOAD_CLEANUP_ENABLED", true)

	viper.SetDefault("QUALITY_MATURITY_DAYS", "")
	viper.SetDefault("QUALITY_VARIANCE_THRESHOLD", "")

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
