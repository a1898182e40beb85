package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/kasuganosora/cardpack/cache"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig      `mapstructure:"server"`
	Database DatabaseConfig    `mapstructure:"database"`
	Cache    cache.CacheConfig `mapstructure:"cache"`
	Storage  StorageConfig     `mapstructure:"storage"`
	Game     GameConfig        `mapstructure:"game"`
	Security SecurityConfig    `mapstructure:"security"`
}

type ServerConfig struct {
	Port  int  `mapstructure:"port"`
	Debug bool `mapstructure:"debug"`
}

type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"` // sqlite | mysql
	SQLitePath   string        `mapstructure:"sqlite_path"`
	MySQLDSN     string        `mapstructure:"mysql_dsn"`
	MySQLMaxOpen int           `mapstructure:"mysql_max_open"`
	MySQLMaxIdle int           `mapstructure:"mysql_max_idle"`
	MySQLMaxLife time.Duration `mapstructure:"mysql_max_life"`
}

// StorageConfig selects where the profile document lives.
type StorageConfig struct {
	Backend    string `mapstructure:"backend"` // db | cache
	ProfileKey string `mapstructure:"profile_key"`
}

type RarityConfig struct {
	Name   string  `mapstructure:"name"`
	Weight float64 `mapstructure:"weight"`
}

type EconomyConfig struct {
	PerPackReward int `mapstructure:"per_pack_reward"`
	CardPrice     int `mapstructure:"card_price"`
	PackPrice     int `mapstructure:"pack_price"`
	BulkPackPrice int `mapstructure:"bulk_pack_price"`
	BulkPackCount int `mapstructure:"bulk_pack_count"`
}

type GameConfig struct {
	MaxPacks         int            `mapstructure:"max_packs"`
	PackCooldown     time.Duration  `mapstructure:"pack_cooldown"`
	CardsPerPack     int            `mapstructure:"cards_per_pack"`
	TickInterval     time.Duration  `mapstructure:"tick_interval"`
	CatalogPath      string         `mapstructure:"catalog_path"` // empty = embedded catalog
	Rarities         []RarityConfig `mapstructure:"rarities"`     // declared order, lowest first
	Economy          EconomyConfig  `mapstructure:"economy"`
	BackpackPageSize int            `mapstructure:"backpack_page_size"`
}

// RarityNames returns the configured rarity order.
func (g GameConfig) RarityNames() []string {
	names := make([]string, len(g.Rarities))
	for i, r := range g.Rarities {
		names[i] = r.Name
	}
	return names
}

type SecurityConfig struct {
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// defaultRarities is the shipped drop table.
var defaultRarities = []map[string]any{
	{"name": "common", "weight": 35},
	{"name": "regular", "weight": 25},
	{"name": "uncommon", "weight": 18},
	{"name": "rare", "weight": 11},
	{"name": "epic", "weight": 5},
	{"name": "legendary", "weight": 3.5},
	{"name": "prismatic", "weight": 1},
	{"name": "supreme", "weight": 0.5},
}

// Load reads config from the given YAML file path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	return decode(v)
}

// Default returns the configuration with every default applied and no file.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := decode(v)
	if err != nil {
		panic(err) // defaults are static
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/cardpack.db")
	v.SetDefault("database.mysql_max_open", 10)
	v.SetDefault("database.mysql_max_idle", 2)
	v.SetDefault("database.mysql_max_life", "1h")
	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("cache.local_pubsub_buf", 256)
	v.SetDefault("storage.backend", "db")
	v.SetDefault("storage.profile_key", "default")
	v.SetDefault("game.max_packs", 5)
	v.SetDefault("game.pack_cooldown", "1h")
	v.SetDefault("game.cards_per_pack", 5)
	v.SetDefault("game.tick_interval", "1s")
	v.SetDefault("game.catalog_path", "")
	v.SetDefault("game.rarities", defaultRarities)
	v.SetDefault("game.economy.per_pack_reward", 10)
	v.SetDefault("game.economy.card_price", 15)
	v.SetDefault("game.economy.pack_price", 50)
	v.SetDefault("game.economy.bulk_pack_price", 200)
	v.SetDefault("game.economy.bulk_pack_count", 5)
	v.SetDefault("game.backpack_page_size", 30)
	v.SetDefault("security.rate_limit_rps", 20)
	v.SetDefault("security.rate_limit_burst", 40)
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

var ErrInvalid = errors.New("config: invalid")

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []string
	add := func(format string, args ...any) { errs = append(errs, fmt.Sprintf(format, args...)) }

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		add("server.port %d out of range", c.Server.Port)
	}
	switch c.Database.Mode {
	case "sqlite":
		if c.Database.SQLitePath == "" {
			add("database.sqlite_path is required for sqlite mode")
		}
	case "mysql":
		if c.Database.MySQLDSN == "" {
			add("database.mysql_dsn is required for mysql mode")
		}
	default:
		add("database.mode %q must be sqlite or mysql", c.Database.Mode)
	}
	switch c.Storage.Backend {
	case "db", "cache":
	default:
		add("storage.backend %q must be db or cache", c.Storage.Backend)
	}
	if strings.TrimSpace(c.Storage.ProfileKey) == "" {
		add("storage.profile_key is required")
	}

	g := c.Game
	if g.MaxPacks <= 0 {
		add("game.max_packs must be >= 1")
	}
	if g.PackCooldown <= 0 {
		add("game.pack_cooldown must be > 0")
	}
	if g.CardsPerPack <= 0 {
		add("game.cards_per_pack must be >= 1")
	}
	if g.TickInterval <= 0 {
		add("game.tick_interval must be > 0")
	}
	if g.BackpackPageSize <= 0 {
		add("game.backpack_page_size must be >= 1")
	}
	if len(g.Rarities) == 0 {
		add("game.rarities must not be empty")
	}
	seen := make(map[string]bool, len(g.Rarities))
	for i, r := range g.Rarities {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			add("game.rarities[%d].name is required", i)
			continue
		}
		if seen[name] {
			add("game.rarities[%d] %q declared twice", i, name)
		}
		seen[name] = true
		if math.IsNaN(r.Weight) || math.IsInf(r.Weight, 0) || r.Weight < 0 {
			add("game.rarities[%d] %q weight must be a finite value >= 0", i, name)
		}
	}
	e := g.Economy
	if e.PerPackReward < 0 {
		add("game.economy.per_pack_reward must be >= 0")
	}
	for _, f := range []struct {
		name string
		v    int
	}{
		{"card_price", e.CardPrice},
		{"pack_price", e.PackPrice},
		{"bulk_pack_price", e.BulkPackPrice},
		{"bulk_pack_count", e.BulkPackCount},
	} {
		if f.v <= 0 {
			add("game.economy.%s must be >= 1", f.name)
		}
	}
	if c.Security.RateLimitRPS <= 0 {
		add("security.rate_limit_rps must be > 0")
	}
	if c.Security.RateLimitBurst <= 0 {
		add("security.rate_limit_burst must be >= 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  - %s", ErrInvalid, strings.Join(errs, "\n  - "))
	}
	return nil
}
