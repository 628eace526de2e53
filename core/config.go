package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host                      string
		Port                      string
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		// PendingLoginTimeout bounds how long a password-checked login may wait
		// for its OTP before the whole login must be restarted.
		PendingLoginTimeout time.Duration
		ShutdownTimeout     time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	Config struct {
		Debug    bool
		TestMode bool
		Env      string

		AppName          string
		SecretKey        string
		FrontendBaseURL  string
		DefaultFromEmail string
		EmailOutboxDir   string

		// EmailVerificationTimeout is how long a verification link stays valid.
		EmailVerificationTimeout time.Duration

		SendgridAPIKey string
		RollbarToken   string
		Build          string

		// Admin account seeded at startup when both values are set.
		AdminEmail    string
		AdminPassword string

		Server   ServerConfig
		Database DatabaseConfig
	}
)

func (c *ServerConfig) Address() string { return c.Host + ":" + c.Port }

func (c *DatabaseConfig) Address() string { return c.Host + ":" + c.Port }

// FromEmailAddress is the sender identity used on all outgoing mail.
func (c *Config) FromEmailAddress() mail.Address {
	return mail.Address{Name: c.AppName, Address: c.DefaultFromEmail}
}

// NewConfig loads configuration from defaults, an optional config/.env.<env> file
// and environment variables (prefixed with the current ENV name).
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "EduReach")
	v.SetDefault("secretKey", "x#2b!fv8z)qj&0u$ms^79e(w5ydhc4l_k6t+g1r3napo=i-%@*")
	v.SetDefault("frontendBaseURL", "http://localhost:8000")
	v.SetDefault("defaultFromEmail", "no-reply@edureach.local")
	v.SetDefault("emailOutboxDir", filepath.Join("instance", "outbox"))
	v.SetDefault("emailVerificationTimeout", 3*24*time.Hour)
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("build", "dev")
	v.SetDefault("adminEmail", "")
	v.SetDefault("adminPassword", "")

	v.SetDefault("serverHost", "0.0.0.0")
	v.SetDefault("serverPort", "8000")
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("pendingLoginTimeout", 15*time.Minute)
	v.SetDefault("shutdownTimeout", 5*time.Second)

	v.SetDefault("databaseEngine", "postgres")
	v.SetDefault("databaseHost", "localhost")
	v.SetDefault("databasePort", "5432")
	v.SetDefault("databaseName", "edureach")
	v.SetDefault("databaseUser", "")
	v.SetDefault("databasePassword", "")
	v.SetDefault("databaseAdminUser", "")
	v.SetDefault("databaseAdminPassword", "")
	v.SetDefault("databaseDisableTLS", true)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Debug:                    v.GetBool("debug"),
		TestMode:                 v.GetBool("testMode"),
		Env:                      env,
		AppName:                  v.GetString("appName"),
		SecretKey:                v.GetString("secretKey"),
		FrontendBaseURL:          strings.TrimRight(v.GetString("frontendBaseURL"), "/"),
		DefaultFromEmail:         v.GetString("defaultFromEmail"),
		EmailOutboxDir:           v.GetString("emailOutboxDir"),
		EmailVerificationTimeout: v.GetDuration("emailVerificationTimeout"),
		SendgridAPIKey:           v.GetString("sendgridApiKey"),
		RollbarToken:             v.GetString("rollbarToken"),
		Build:                    v.GetString("build"),
		AdminEmail:               v.GetString("adminEmail"),
		AdminPassword:            v.GetString("adminPassword"),
		Server: ServerConfig{
			Host:                      v.GetString("serverHost"),
			Port:                      v.GetString("serverPort"),
			JWTExpirationDelta:        v.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("jwtRefreshExpirationDelta"),
			PendingLoginTimeout:       v.GetDuration("pendingLoginTimeout"),
			ShutdownTimeout:           v.GetDuration("shutdownTimeout"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("databaseEngine"),
			Host:          v.GetString("databaseHost"),
			Port:          v.GetString("databasePort"),
			Name:          v.GetString("databaseName"),
			User:          v.GetString("databaseUser"),
			Password:      v.GetString("databasePassword"),
			AdminUser:     v.GetString("databaseAdminUser"),
			AdminPassword: v.GetString("databaseAdminPassword"),
			DisableTLS:    v.GetBool("databaseDisableTLS"),
		},
	}
}
