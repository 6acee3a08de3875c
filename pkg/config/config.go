package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	JWT      JWTConfig
	Storage  StorageConfig
	DB       DBConfig
	Fetch    FetchConfig
	Grouping GroupingConfig
	Ingest   IngestConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host           string
	Port           int
	BodyLimitMB    int
	SwaggerEnabled bool
	SwaggerFile    string
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// Drivers de almacenamiento de lotes.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// StorageConfig selecciona dónde se guardan los lotes procesados.
type StorageConfig struct {
	Driver string // memory | postgres
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// FetchConfig parámetros de descarga de documentos.
type FetchConfig struct {
	TimeoutSeconds int
	MaxBytes       int64
	RequirePDF     bool // rechaza respuestas que no empiezan con %PDF
	UserAgent      string
}

// Timeout devuelve el timeout por descarga como time.Duration.
func (c FetchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GroupingConfig opciones del motor de agrupación.
type GroupingConfig struct {
	HoldingMerge bool // valor por defecto cuando la petición no lo indica
}

// IngestConfig describe cómo leer la planilla del ERP.
type IngestConfig struct {
	Preset          string   // waba | portal
	CurrencyFormat  string   // pt-BR | neutral | auto
	DocumentPrefix  string   // sobrescribe el prefijo de columnas de documentos del preset
	DocumentColumns []string // sobrescribe las columnas de documentos del preset
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, HTTP_PORT, JWT_SECRET, FETCH_TIMEOUT_SECONDS, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "cobranzas-api"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		HTTP: HTTPConfig{
			Host:           getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:           getInt(v, "HTTP_PORT", 8080),
			BodyLimitMB:    getInt(v, "HTTP_BODY_LIMIT_MB", 32),
			SwaggerEnabled: getBool(v, "SWAGGER_ENABLED", true),
			SwaggerFile:    getString(v, "SWAGGER_FILE", "./docs/swagger.json"),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "cobranzas-api"),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(getString(v, "STORAGE_DRIVER", StorageMemory)),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "cobranzas"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		Fetch: FetchConfig{
			TimeoutSeconds: getInt(v, "FETCH_TIMEOUT_SECONDS", 15),
			MaxBytes:       int64(getInt(v, "FETCH_MAX_BYTES", 25<<20)),
			RequirePDF:     getBool(v, "FETCH_REQUIRE_PDF", true),
			UserAgent:      getString(v, "FETCH_USER_AGENT", "cobranzas-api/1.0"),
		},
		Grouping: GroupingConfig{
			HoldingMerge: getBool(v, "GROUPING_HOLDING_MERGE", true),
		},
		Ingest: IngestConfig{
			Preset:          strings.ToLower(getString(v, "INGEST_PRESET", "waba")),
			CurrencyFormat:  getString(v, "INGEST_CURRENCY_FORMAT", "pt-BR"),
			DocumentPrefix:  getString(v, "INGEST_DOCUMENT_PREFIX", ""),
			DocumentColumns: splitList(getString(v, "INGEST_DOCUMENT_COLUMNS", "")),
		},
	}

	if cfg.Storage.Driver != StorageMemory && cfg.Storage.Driver != StoragePostgres {
		return nil, fmt.Errorf("config: STORAGE_DRIVER desconocido %q (usar memory o postgres)", cfg.Storage.Driver)
	}
	if cfg.Fetch.TimeoutSeconds <= 0 {
		return nil, fmt.Errorf("config: FETCH_TIMEOUT_SECONDS debe ser mayor que cero")
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		b, err := strconv.ParseBool(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			return def
		}
		return b
	}
	return def
}

// splitList separa una lista por comas descartando entradas vacías.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
