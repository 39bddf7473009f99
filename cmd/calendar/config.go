package main

import (
	"fmt"
	"strings"

	"github.com/evanpr/kalender/internal/holiday"
	"github.com/evanpr/kalender/internal/logger"
	"github.com/evanpr/kalender/internal/rabbit"
	internalhttp "github.com/evanpr/kalender/internal/server/http"
	"github.com/evanpr/kalender/internal/storagebuilder"
	"github.com/spf13/viper"
)

const envConfigPrefix = "$env:"

type QueuesConfig struct {
	Inbound  string
	Outbound string
	Notify   string
}

type Config struct {
	HTTPServer         internalhttp.Config
	Logger             logger.Config
	Storage            storagebuilder.Config
	Rabbit             rabbit.Config
	Queues             QueuesConfig
	Holiday            holiday.Config
	HolidayRefreshSpec string
}

func NewConfig(configFile string) (Config, error) {
	config := Config{}
	viper.SetConfigFile(configFile)

	viper.SetDefault("httpServer.host", "127.0.0.1")
	viper.SetDefault("httpServer.port", "8005")
	viper.SetDefault("logger.level", "WARN")
	viper.SetDefault("storage.storageType", "memory")
	viper.SetDefault("rabbit.host", "127.0.0.1")
	viper.SetDefault("rabbit.port", "5672")
	viper.SetDefault("rabbit.user", "user")
	viper.SetDefault("rabbit.password", "pass")
	viper.SetDefault("queues.inbound", "calendar.events.in")
	viper.SetDefault("queues.outbound", "calendar.events.out")
	viper.SetDefault("queues.notify", "calendar.notify")
	viper.SetDefault("holiday.countryCode", "ID")
	viper.SetDefault("holidayRefreshSpec", "0 3 * * *")

	err := viper.ReadInConfig()
	if err != nil {
		return config, fmt.Errorf("failed to read config %q: %w", configFile, err)
	}
	keys := viper.AllKeys()
	for _, key := range keys {
		env := viper.GetString(key)
		if strings.HasPrefix(env, envConfigPrefix) {
			err := viper.BindEnv(key, env[len(envConfigPrefix):])
			if err != nil {
				return Config{}, fmt.Errorf("failed to prepare config: %w", err)
			}
		}
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return config, fmt.Errorf("unable to decode into config struct: %w", err)
	}
	return config, nil
}
