package configs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Env struct {
		CurrentEnv string `yaml:"current_env"`
	} `yaml:"env"`

	DB struct {
		Driver   string `yaml:"driver"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"dbname"`
		Migrate  bool   `yaml:"migrate"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `yaml:"redis_addr"`
		Password string `yaml:"redis_password"`
		DB       int    `yaml:"redis_db"`
	} `yaml:"redis"`

	Mail struct {
		EmailAPIKey  string `yaml:"email_api_key"`
		SenderEmail  string `yaml:"sender_email"`
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     string `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_username"`
		SMTPPassword string `yaml:"smtp_password"`
	} `yaml:"mail"`

	SMS struct {
		GatewayURL string `yaml:"gateway_url"`
		APIKey     string `yaml:"api_key"`
		SenderID   string `yaml:"sender_id"`
	} `yaml:"sms"`
}

// Load reads the environment-specific YAML file and expands ${VAR}
// placeholders from the process environment, falling back to .env.
func Load(env string) (*Config, error) {
	_ = godotenv.Load()

	configFile := "dev.yml"
	if env == "production" {
		configFile = "prod.yml"
	}

	configPath := filepath.Join("internal", "configs", configFile)
	if override := os.Getenv("CONFIG_PATH"); override != "" {
		configPath = override
	}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", configPath, err)
	}
	defer file.Close()

	var cfg Config
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", configPath, err)
	}

	expandConfig(&cfg)
	if cfg.Env.CurrentEnv == "" {
		cfg.Env.CurrentEnv = env
	}

	return &cfg, nil
}

// SQLDriver returns the configured driver, defaulting to MySQL. sqlite3 is
// supported for single-process local development.
func (c *Config) SQLDriver() string {
	if c.DB.Driver == "" {
		return "mysql"
	}
	return c.DB.Driver
}

// SQLDSN builds the DSN for the configured driver. For MySQL, parseTime is
// required so DATETIME columns scan into time.Time.
func (c *Config) SQLDSN() string {
	if c.SQLDriver() == "sqlite3" {
		return fmt.Sprintf("file:%s?_foreign_keys=on", c.DB.Name)
	}
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?parseTime=true&multiStatements=true",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name,
	)
}

func expandConfig(cfg *Config) {
	cfg.DB.User = os.ExpandEnv(cfg.DB.User)
	cfg.DB.Password = os.ExpandEnv(cfg.DB.Password)
	cfg.Redis.Password = os.ExpandEnv(cfg.Redis.Password)
	cfg.Mail.EmailAPIKey = os.ExpandEnv(cfg.Mail.EmailAPIKey)
	cfg.Mail.SMTPPassword = os.ExpandEnv(cfg.Mail.SMTPPassword)
	cfg.SMS.APIKey = os.ExpandEnv(cfg.SMS.APIKey)
}
