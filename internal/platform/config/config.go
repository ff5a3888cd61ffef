package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	platformstrings "regform/pkg/platform/strings"
)

// Server captures process-level configuration.
type Server struct {
	Addr            string
	Store           string
	DBPath          string
	DatabaseURL     string
	AllowedOrigins  []string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	LogLevel        string
	LogFormat       string
}

// EnvPrefix namespaces every variable, e.g. REGFORM_ADDR.
const EnvPrefix = "REGFORM"

// FromEnv builds a Server config from the environment so main stays lean. A
// .env file in the working directory is loaded first when present; real
// environment variables win over it.
func FromEnv() Server {
	_ = godotenv.Load()
	return fromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("addr", ":3000")
	v.SetDefault("store", "sqlite")
	v.SetDefault("db_path", "users.db")
	v.SetDefault("database_url", "")
	v.SetDefault("cors_origins", "*")
	v.SetDefault("request_timeout", 30*time.Second)
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	return v
}

func fromViper(v *viper.Viper) Server {
	addr := v.GetString("addr")
	// PORT is honoured for hosts that only set a port.
	if port := os.Getenv("PORT"); port != "" && os.Getenv(EnvPrefix+"_ADDR") == "" {
		addr = ":" + port
	}

	return Server{
		Addr:            addr,
		Store:           strings.ToLower(v.GetString("store")),
		DBPath:          v.GetString("db_path"),
		DatabaseURL:     v.GetString("database_url"),
		AllowedOrigins:  platformstrings.SplitList(v.GetString("cors_origins"), ","),
		RequestTimeout:  v.GetDuration("request_timeout"),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		LogLevel:        v.GetString("log_level"),
		LogFormat:       v.GetString("log_format"),
	}
}
