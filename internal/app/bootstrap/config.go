package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the full runtime configuration, loaded from flags, environment
// variables and an optional .env file, in that precedence order.
type Config struct {
	Env      string
	HTTPPort int

	MongoURI      string
	MongoDatabase string

	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration

	AllowedOrigins []string
	FlagCacheTTL   time.Duration

	SeedAdminEmail    string
	SeedAdminPassword string
	SeedAdminName     string
}

// LoadConfig reads configuration. A missing .env file is not an error.
func LoadConfig(args []string) (*Config, error) {
	_ = godotenv.Load()

	fs := pflag.NewFlagSet("schoolapi", pflag.ContinueOnError)
	fs.String("env", "dev", "runtime environment (dev or prod)")
	fs.Int("http-port", 8080, "HTTP listen port")
	fs.String("mongo-uri", "mongodb://localhost:27017", "MongoDB connection URI")
	fs.String("mongo-database", "schoolapi", "MongoDB database name")
	fs.String("jwt-secret", "", "HS256 signing secret")
	fs.String("jwt-issuer", "schoolapi", "JWT issuer claim")
	fs.Duration("jwt-ttl", 24*time.Hour, "JWT lifetime")
	fs.StringSlice("allowed-origins", nil, "production CORS allow-list")
	fs.Duration("flag-cache-ttl", 5*time.Minute, "feature flag cache TTL")
	fs.String("seed-admin-email", "", "bootstrap super admin email")
	fs.String("seed-admin-password", "", "bootstrap super admin password")
	fs.String("seed-admin-name", "Administrator", "bootstrap super admin display name")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}
	v.SetEnvPrefix("SCHOOLAPI")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Env:               v.GetString("env"),
		HTTPPort:          v.GetInt("http-port"),
		MongoURI:          v.GetString("mongo-uri"),
		MongoDatabase:     v.GetString("mongo-database"),
		JWTSecret:         v.GetString("jwt-secret"),
		JWTIssuer:         v.GetString("jwt-issuer"),
		JWTTTL:            v.GetDuration("jwt-ttl"),
		AllowedOrigins:    v.GetStringSlice("allowed-origins"),
		FlagCacheTTL:      v.GetDuration("flag-cache-ttl"),
		SeedAdminEmail:    v.GetString("seed-admin-email"),
		SeedAdminPassword: v.GetString("seed-admin-password"),
		SeedAdminName:     v.GetString("seed-admin-name"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt-secret is required")
	}
	if cfg.Env == "prod" && len(cfg.AllowedOrigins) == 0 {
		return nil, fmt.Errorf("allowed-origins is required in prod")
	}
	return cfg, nil
}
