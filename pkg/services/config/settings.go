package config

import (
	"fmt"
	"strings"

	"github.com/de-tools/bonus-atlas/pkg/services/growth"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const envPrefix = "BONUS"

type Settings struct {
	Growth    GrowthSettings    `mapstructure:"growth"`
	Retrieval RetrievalSettings `mapstructure:"retrieval"`
	Store     StoreSettings     `mapstructure:"store"`
	Server    ServerSettings    `mapstructure:"server"`
}

type GrowthSettings struct {
	SupplierID string        `mapstructure:"supplier_id" validate:"required"`
	Schedule   []BandSetting `mapstructure:"schedule" validate:"dive"`
}

type BandSetting struct {
	Tier       int     `mapstructure:"tier" validate:"gte=1"`
	MinPercent float64 `mapstructure:"min_percent"`
	Rate       float64 `mapstructure:"rate" validate:"gte=0"`
}

type RetrievalSettings struct {
	PageSize int `mapstructure:"page_size" validate:"gte=1"`
}

type StoreSettings struct {
	ProfilesPath string `mapstructure:"profiles_path" validate:"required"`
	Profile      string `mapstructure:"profile" validate:"required"`
}

type ServerSettings struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port" validate:"gte=1,lte=65535"`
}

// LoadSettings reads the engine settings file. Every key can be overridden
// from the environment, e.g. BONUS_GROWTH_SUPPLIER_ID.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	v.SetDefault("growth.supplier_id", "")
	v.SetDefault("retrieval.page_size", 1000)
	v.SetDefault("store.profiles_path", "bonus-profiles.ini")
	v.SetDefault("store.profile", "local")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if err := validator.New().Struct(s); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return &s, nil
}

// GrowthSchedule converts the configured bands, falling back to the default
// schedule when none are set.
func (s *Settings) GrowthSchedule() growth.Schedule {
	if len(s.Growth.Schedule) == 0 {
		return growth.DefaultSchedule()
	}
	schedule := make(growth.Schedule, 0, len(s.Growth.Schedule))
	for _, b := range s.Growth.Schedule {
		schedule = append(schedule, growth.Band{
			Tier:       b.Tier,
			MinPercent: decimal.NewFromFloat(b.MinPercent),
			Rate:       decimal.NewFromFloat(b.Rate),
		})
	}
	return schedule
}
