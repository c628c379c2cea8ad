package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del terminal.
type Config struct {
	API       APIConfig       `yaml:"api"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`

	// Credentials nunca vienen del YAML: solo del entorno, leídas una
	// vez en Load. No se loguean nunca.
	Credentials Credentials `yaml:"-"`
}

// APIConfig contiene los base URLs de las APIs y el RPC de Polygon.
type APIConfig struct {
	CLOBBase   string `yaml:"clob_base"`
	GammaBase  string `yaml:"gamma_base"`
	DataBase   string `yaml:"data_base"`
	PolygonRPC string `yaml:"polygon_rpc"`
}

// DiscoveryConfig controla la paginación y el enriquecimiento concurrente.
type DiscoveryConfig struct {
	PageSize      int `yaml:"page_size"`
	EnrichWorkers int `yaml:"enrich_workers"`
}

// StorageConfig controla dónde se persiste el journal de órdenes.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Credentials son las credenciales de trading, consumidas una sola vez al
// arrancar. PrivateKey firma órdenes; ProxyAddress es la wallet proxy de
// Polymarket que custodia los fondos (vacía = operar como EOA).
type Credentials struct {
	PrivateKey   string
	ProxyAddress string
}

// Configured devuelve true si hay clave de firma: sin ella el terminal
// arranca en modo solo lectura.
func (c Credentials) Configured() bool {
	return c.PrivateKey != ""
}

// Wallet devuelve la dirección cuyo estado se reconcilia: la proxy si
// existe, si no la variable WALLET_ADDRESS para consultas read-only.
func (c Credentials) Wallet() string {
	if c.ProxyAddress != "" {
		return c.ProxyAddress
	}
	return os.Getenv("WALLET_ADDRESS")
}

// Load carga la configuración desde el archivo YAML y el archivo .env si
// existe. Si el YAML no existe se usan los defaults: el terminal funciona
// sin archivo de configuración.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	var cfg Config
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	cfg.Credentials = Credentials{
		PrivateKey:   os.Getenv("PRIVATE_KEY"),
		ProxyAddress: os.Getenv("PROXY_ADDRESS"),
	}

	return &cfg, nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("POLYGON_RPC"); v != "" {
		cfg.API.PolygonRPC = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.API.CLOBBase == "" {
		cfg.API.CLOBBase = "https://clob.polymarket.com"
	}
	if cfg.API.GammaBase == "" {
		cfg.API.GammaBase = "https://gamma-api.polymarket.com"
	}
	if cfg.API.DataBase == "" {
		cfg.API.DataBase = "https://data-api.polymarket.com"
	}
	if cfg.API.PolygonRPC == "" {
		cfg.API.PolygonRPC = "https://polygon-rpc.com"
	}
	if cfg.Discovery.PageSize <= 0 {
		cfg.Discovery.PageSize = 100
	}
	if cfg.Discovery.EnrichWorkers <= 0 {
		cfg.Discovery.EnrichWorkers = 8
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "polyterm.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
