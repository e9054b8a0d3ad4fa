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

// DefaultBackendURL is the origin of the hosted attendance API.
const DefaultBackendURL = "https://attendance-app1-3yv3.onrender.com"

type (
	Config struct {
		AppName        string
		Env            string
		Build          string
		Debug          bool
		TestMode       bool
		RollbarToken   string
		SendgridAPIKey string

		Server  ServerConfig
		Backend BackendConfig
		Report  ReportConfig

		defaultFromEmail string
	}

	ServerConfig struct {
		Host            string
		Address         string
		DebugAddress    string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
		DisableReqLogs  bool
		// TemplatesDir, when set, makes the web app read its templates from disk
		// and reload them on change instead of using the embedded copies.
		TemplatesDir string
	}

	BackendConfig struct {
		BaseURL string
		// Timeout of 0 leaves the transport's own behaviour untouched.
		Timeout time.Duration
	}

	ReportConfig struct {
		Recipient string
		Schedule  string // cron spec
		Weekly    bool
	}
)

// NewConfig loads the configuration for the current ENV (DEV by default).
// Values come from defaults, then config/.env.<env> if it exists, then the environment:
// the key "backend.baseURL" is read from e.g. DEV_BACKEND_BASEURL.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("appName", "Mahudhurio")
	conf.SetDefault("build", "dev")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("sendgridApiKey", "")
	conf.SetDefault("defaultFromEmail", "Mahudhurio <noreply@localhost>")

	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.address", ":8000")
	conf.SetDefault("server.debugAddress", ":4000")
	conf.SetDefault("server.readTimeout", 5*time.Second)
	conf.SetDefault("server.writeTimeout", 30*time.Second)
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.disableReqLogs", false)
	conf.SetDefault("server.templatesDir", "")

	conf.SetDefault("backend.baseURL", DefaultBackendURL)
	conf.SetDefault("backend.timeout", time.Duration(0))

	conf.SetDefault("report.recipient", "")
	conf.SetDefault("report.schedule", "0 18 * * 0") // sundays, 18:00
	conf.SetDefault("report.weekly", false)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	if wd, err := os.Getwd(); err == nil {
		dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
			}
		} else if !os.IsNotExist(err) {
			log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
		}
	}
	conf.AutomaticEnv()

	return &Config{
		AppName:        conf.GetString("appName"),
		Env:            env,
		Build:          conf.GetString("build"),
		Debug:          conf.GetBool("debug"),
		TestMode:       conf.GetBool("testMode"),
		RollbarToken:   conf.GetString("rollbarToken"),
		SendgridAPIKey: conf.GetString("sendgridApiKey"),
		Server: ServerConfig{
			Host:            conf.GetString("server.host"),
			Address:         conf.GetString("server.address"),
			DebugAddress:    conf.GetString("server.debugAddress"),
			ReadTimeout:     conf.GetDuration("server.readTimeout"),
			WriteTimeout:    conf.GetDuration("server.writeTimeout"),
			ShutdownTimeout: conf.GetDuration("server.shutdownTimeout"),
			DisableReqLogs:  conf.GetBool("server.disableReqLogs"),
			TemplatesDir:    conf.GetString("server.templatesDir"),
		},
		Backend: BackendConfig{
			BaseURL: strings.TrimRight(conf.GetString("backend.baseURL"), "/"),
			Timeout: conf.GetDuration("backend.timeout"),
		},
		Report: ReportConfig{
			Recipient: conf.GetString("report.recipient"),
			Schedule:  conf.GetString("report.schedule"),
			Weekly:    conf.GetBool("report.weekly"),
		},
		defaultFromEmail: conf.GetString("defaultFromEmail"),
	}
}

func (c *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(c.defaultFromEmail)
	if err != nil {
		return mail.Address{Name: c.AppName, Address: "noreply@" + c.Server.Host}
	}
	return *addr
}

// ReportRecipient returns the address analytics reports are mailed to, if any.
func (c *Config) ReportRecipient() (mail.Address, bool) {
	if c.Report.Recipient == "" {
		return mail.Address{}, false
	}
	addr, err := mail.ParseAddress(c.Report.Recipient)
	if err != nil {
		return mail.Address{}, false
	}
	return *addr, true
}
