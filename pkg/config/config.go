package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	DB      DBConfig
	HTTP    HTTPConfig
	Monitor MonitorConfig
	Engine  EngineConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// DBConfig configuración de la base SQLite embebida.
type DBConfig struct {
	Path string // ruta al archivo .db; la tabla ya migrada es responsabilidad del instalador
}

// HTTPConfig configuración del servidor HTTP principal.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MonitorConfig listener secundario para métricas Prometheus y el hub de
// eventos por websocket (dashboards).
type MonitorConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c MonitorConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// EngineConfig tunables del motor transaccional de facturación.
type EngineConfig struct {
	BillPrefix string // prefijo del número de factura visible (ej. "INV")

	RateLimit  int           // operaciones de creación permitidas por ventana
	RateWindow time.Duration // tamaño de la ventana deslizante

	QueueSize        int           // capacidad de la cola FIFO del serializador
	AdmissionTimeout time.Duration // espera máxima para que una operación encolada arranque
	InterOpDelay     time.Duration // pausa entre operaciones consecutivas del escritor

	TxAttempts   int           // reintentos de la transacción completa ante contención
	TxBackoff    time.Duration // backoff inicial (exponencial) entre reintentos
	BillAttempts int           // intentos de regeneración del número de factura por colisión

	MaxItems        int    // líneas máximas por factura
	MaxInvoiceValue string // techo del valor total de una factura (decimal como string)
	NotesMaxLength  int    // longitud máxima de las notas libres
	MaxNameLength   int    // longitud máxima del nombre de producto en una línea
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_PATH, HTTP_PORT, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	// Bind de variables de entorno
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "steel-pos"),
		},
		DB: DBConfig{
			Path: getString(v, "DB_PATH", "steel-pos.db"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Monitor: MonitorConfig{
			Host: getString(v, "MONITOR_HOST", "0.0.0.0"),
			Port: getInt(v, "MONITOR_PORT", 9091),
		},
		Engine: EngineConfig{
			BillPrefix:       getString(v, "ENGINE_BILL_PREFIX", "INV"),
			RateLimit:        getInt(v, "ENGINE_RATE_LIMIT", 60),
			RateWindow:       time.Duration(getInt(v, "ENGINE_RATE_WINDOW_SECONDS", 60)) * time.Second,
			QueueSize:        getInt(v, "ENGINE_QUEUE_SIZE", 256),
			AdmissionTimeout: time.Duration(getInt(v, "ENGINE_ADMISSION_TIMEOUT_SECONDS", 30)) * time.Second,
			InterOpDelay:     time.Duration(getInt(v, "ENGINE_INTER_OP_DELAY_MS", 25)) * time.Millisecond,
			TxAttempts:       getInt(v, "ENGINE_TX_ATTEMPTS", 3),
			TxBackoff:        time.Duration(getInt(v, "ENGINE_TX_BACKOFF_MS", 100)) * time.Millisecond,
			BillAttempts:     getInt(v, "ENGINE_BILL_ATTEMPTS", 10),
			MaxItems:         getInt(v, "ENGINE_MAX_ITEMS", 100),
			MaxInvoiceValue:  getString(v, "ENGINE_MAX_INVOICE_VALUE", "10000000"),
			NotesMaxLength:   getInt(v, "ENGINE_NOTES_MAX_LENGTH", 500),
			MaxNameLength:    getInt(v, "ENGINE_MAX_NAME_LENGTH", 200),
		},
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
			if n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key))); err == nil {
				return n
			}
			// Valor ilegible en el entorno: conservar el default en lugar de 0.
			return def
		default:
			return v.GetInt(key)
		}
	}
	return def
}
