package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App      AppConfig
	DB       DBConfig
	HTTP     HTTPConfig
	Redis    RedisConfig
	Storage  StorageConfig
	Tax      TaxConfig
	Shop     ShopConfig
	GST      GSTConfig
	WhatsApp WhatsAppConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// DBConfig configuración de persistencia.
// Driver "memory" usa colecciones en memoria (desarrollo local sin PostgreSQL).
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	Driver      string // postgres | memory
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string

	MaxConns               int
	MinConns               int
	MaxConnLifetimeMinutes int
	MaxConnIdleMinutes     int
	// ForceIPv4 marca conexiones solo por tcp4 (contenedores sin ruta IPv6).
	ForceIPv4 bool
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

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig configuración del lock distribuido por número de factura.
// Addr vacío = lock en proceso (una sola instancia).
// LockTTLSeconds es el plazo si el proceso muere con el lock tomado; mientras vive, el lock se renueva solo.
type RedisConfig struct {
	Addr           string
	LockTTLSeconds int
}

// StorageConfig límites de almacenamiento y rutas de artefactos.
type StorageConfig struct {
	MaxMB       float64 // umbral del guardián de cuota
	PurgeDays   int     // antigüedad mínima de los registros purgables
	InvoicesDir string  // directorio de PDFs (servido en /invoices)
	LedgerPath  string  // libro Excel con el historial
	LedgerSheet string
}

// TaxConfig política de cálculo de impuestos.
type TaxConfig struct {
	MissingHSNPolicy string // reject | zero
	RatesCSV         string // tarifas precargadas con DB_DRIVER=memory (hsn,cgst,sgst)
}

// ShopConfig datos del emisor impresos en el PDF.
type ShopConfig struct {
	Name      string
	Address   string
	GSTIN     string
	StateName string
	StateCode string
}

// GSTConfig API externa de consulta de GSTIN.
type GSTConfig struct {
	APIURL          string
	APIKey          string
	CacheTTLMinutes int // cache Redis de consultas exitosas; 0 la desactiva
}

// WhatsAppConfig credenciales de WhatsApp Cloud API.
type WhatsAppConfig struct {
	APIURL        string
	PhoneNumberID string
	Token         string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, STORAGE_MAX_MB, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo .env o config.env; se ignora el error si no existe
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig()

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "gst-billing-api"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			Driver:      getString(v, "DB_DRIVER", "postgres"),
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "gst_billing"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),

			MaxConns:               getInt(v, "DB_MAX_CONNS", 10),
			MinConns:               getInt(v, "DB_MIN_CONNS", 1),
			MaxConnLifetimeMinutes: getInt(v, "DB_MAX_CONN_LIFETIME_MINUTES", 60),
			MaxConnIdleMinutes:     getInt(v, "DB_MAX_CONN_IDLE_MINUTES", 30),
			ForceIPv4:              getBool(v, "DB_FORCE_IPV4", false),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 5000),
		},
		Redis: RedisConfig{
			Addr:           getString(v, "REDIS_ADDR", ""),
			LockTTLSeconds: getInt(v, "LOCK_TTL_SECONDS", 30),
		},
		Storage: StorageConfig{
			MaxMB:       getFloat(v, "STORAGE_MAX_MB", 450),
			PurgeDays:   getInt(v, "STORAGE_PURGE_DAYS", 30),
			InvoicesDir: getString(v, "INVOICES_DIR", "invoices"),
			LedgerPath:  getString(v, "LEDGER_PATH", "invoices/invoice_history.xlsx"),
			LedgerSheet: getString(v, "LEDGER_SHEET", "Invoice History"),
		},
		Tax: TaxConfig{
			MissingHSNPolicy: getString(v, "TAX_MISSING_HSN_POLICY", "reject"),
			RatesCSV:         getString(v, "HSN_RATES_CSV", ""),
		},
		Shop: ShopConfig{
			Name:      getString(v, "SHOP_NAME", ""),
			Address:   getString(v, "SHOP_ADDRESS", ""),
			GSTIN:     getString(v, "SHOP_GSTIN", ""),
			StateName: getString(v, "SHOP_STATE_NAME", ""),
			StateCode: getString(v, "SHOP_STATE_CODE", ""),
		},
		GST: GSTConfig{
			APIURL:          getString(v, "GST_API_URL", "https://www.knowyourgst.com/developers/gstincall/"),
			APIKey:          getString(v, "GST_API_KEY", ""),
			CacheTTLMinutes: getInt(v, "GST_CACHE_TTL_MINUTES", 1440),
		},
		WhatsApp: WhatsAppConfig{
			APIURL:        getString(v, "WHATSAPP_API_URL", "https://graph.facebook.com/v19.0"),
			PhoneNumberID: getString(v, "WHATSAPP_PHONE_NUMBER_ID", ""),
			Token:         getString(v, "WHATSAPP_TOKEN", ""),
		},
	}

	if cfg.DB.Driver != "postgres" && cfg.DB.Driver != "memory" {
		return nil, fmt.Errorf("DB_DRIVER inválido: %q (postgres | memory)", cfg.DB.Driver)
	}
	if cfg.Tax.MissingHSNPolicy != "reject" && cfg.Tax.MissingHSNPolicy != "zero" {
		return nil, fmt.Errorf("TAX_MISSING_HSN_POLICY inválido: %q (reject | zero)", cfg.Tax.MissingHSNPolicy)
	}
	if cfg.DB.MaxConns < 1 || cfg.DB.MinConns < 0 || cfg.DB.MinConns > cfg.DB.MaxConns {
		return nil, fmt.Errorf("DB_MIN_CONNS/DB_MAX_CONNS inválidos: %d/%d", cfg.DB.MinConns, cfg.DB.MaxConns)
	}
	if cfg.Redis.LockTTLSeconds < 1 {
		return nil, fmt.Errorf("LOCK_TTL_SECONDS debe ser positivo")
	}
	if cfg.Storage.MaxMB <= 0 {
		return nil, fmt.Errorf("STORAGE_MAX_MB debe ser positivo")
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
			n, err := strconv.Atoi(v.GetString(key))
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

func getFloat(v *viper.Viper, key string, def float64) float64 {
	if v.IsSet(key) {
		if s, ok := v.Get(key).(string); ok {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return def
			}
			return f
		}
		return v.GetFloat64(key)
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		if s, ok := v.Get(key).(string); ok {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return def
			}
			return b
		}
		return v.GetBool(key)
	}
	return def
}
