package config

import "github.com/spf13/viper"

type Config struct {
	App struct {
		Env      string
		Timezone string
	} `mapstructure:"app"`

	HTTP struct {
		Addr string
	} `mapstructure:"http"`

	Storage struct {
		// Driver is badger, postgres or memory.
		Driver string
		// Path is the badger data directory.
		Path string
		// DSN is the postgres connection string.
		DSN string
	} `mapstructure:"storage"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	// Telegram enables the optional low-stock alerts when both fields are set.
	Telegram struct {
		Token  string
		ChatID int64 `mapstructure:"chat_id"`
	} `mapstructure:"telegram"`
}

func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	v.SetDefault("app.env", "dev")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("storage.driver", "badger")
	v.SetDefault("storage.path", "data")

	var c Config
	if err := v.ReadInConfig(); err != nil {
		return c, err
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, nil
}
