// Package app ties configuration and construction of the course bot together.
package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/aisistems/coursebot/core/config"
	"github.com/aisistems/coursebot/core/database"
)

// CourseConfig describes the product being sold and its surrounding links.
type CourseConfig struct {
	GroupChatID      int64  `yaml:"group_chat_id" envconfig:"COURSE_GROUP_CHAT_ID"`
	Price            string `yaml:"price" envconfig:"COURSE_PRICE"`
	Currency         string `yaml:"currency" envconfig:"COURSE_CURRENCY"`
	Description      string `yaml:"description" envconfig:"COURSE_DESCRIPTION"`
	ReturnURL        string `yaml:"return_url" envconfig:"COURSE_RETURN_URL"`
	SiteURL          string `yaml:"site_url" envconfig:"COURSE_SITE_URL"`
	PrivacyURL       string `yaml:"privacy_url" envconfig:"PRIVACY_URL"`
	DataPolicyURL    string `yaml:"data_policy_url" envconfig:"DATA_POLICY_URL"`
	SupportExtra     string `yaml:"support_extra" envconfig:"SUPPORT_TEXT_EXTRA"`
	WelcomeImagePath string `yaml:"welcome_image_path" envconfig:"WELCOME_IMAGE_PATH"`
	OfferFilePath    string `yaml:"offer_file_path" envconfig:"OFFER_FILE_PATH"`
}

// YooKassaConfig carries gateway credentials. Both values empty means
// payments are switched off and the bot runs in showcase mode.
type YooKassaConfig struct {
	ShopID     string `yaml:"shop_id" envconfig:"YOOKASSA_SHOP_ID"`
	SecretKey  string `yaml:"secret_key" envconfig:"YOOKASSA_SECRET_KEY"`
	APIBaseURL string `yaml:"api_base_url" envconfig:"YOOKASSA_API_BASE_URL"`
}

// TimeoutsConfig bounds external calls, in milliseconds in YAML for
// consistency with rate limiting.
type TimeoutsConfig struct {
	DBMS             int `yaml:"db_ms" envconfig:"TIMEOUT_DB_MS"`
	EditMS           int `yaml:"edit_ms" envconfig:"TIMEOUT_EDIT_MS"`
	GatewayMS        int `yaml:"gateway_ms" envconfig:"TIMEOUT_GATEWAY_MS"`
	BroadcastDelayMS int `yaml:"broadcast_delay_ms" envconfig:"BROADCAST_DELAY_MS"`
}

// DB returns the database call deadline.
func (t TimeoutsConfig) DB() time.Duration { return msOrDefault(t.DBMS, 6*time.Second) }

// Edit returns the message edit deadline.
func (t TimeoutsConfig) Edit() time.Duration { return msOrDefault(t.EditMS, 6*time.Second) }

// Gateway returns the payment gateway call deadline.
func (t TimeoutsConfig) Gateway() time.Duration { return msOrDefault(t.GatewayMS, 12*time.Second) }

// BroadcastDelay returns the pause between broadcast sends.
func (t TimeoutsConfig) BroadcastDelay() time.Duration {
	return msOrDefault(t.BroadcastDelayMS, 50*time.Millisecond)
}

func msOrDefault(ms int, def time.Duration) time.Duration {
	if ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

// Config is the full application configuration.
type Config struct {
	Core     coreconfig.Config `yaml:"core"`
	Database database.Config   `yaml:"database"`
	Course   CourseConfig      `yaml:"course"`
	YooKassa YooKassaConfig    `yaml:"yookassa"`
	Timeouts TimeoutsConfig    `yaml:"timeouts"`

	// AdminIDs accepts a comma or semicolon separated list of Telegram ids.
	AdminIDs string `yaml:"admin_ids" envconfig:"ADMIN_IDS"`

	// HTTPPort is where the health and debug endpoints listen.
	HTTPPort int `yaml:"http_port" envconfig:"HTTP_PORT"`

	adminSet map[int64]struct{}
}

// HTTPAddr returns the listen address of the auxiliary HTTP server.
func (c *Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// Load reads YAML configuration, overlays environment variables and validates.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates required values and fills defaults.
func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Core); err != nil {
		return err
	}

	if c.Course.GroupChatID == 0 {
		return fmt.Errorf("course.group_chat_id is required")
	}
	if strings.TrimSpace(c.Course.Price) == "" {
		c.Course.Price = "1000.00"
	}
	if strings.TrimSpace(c.Course.Currency) == "" {
		c.Course.Currency = "RUB"
	}
	if strings.TrimSpace(c.Course.Description) == "" {
		c.Course.Description = "Доступ к курсу «Telegram-бот за вечер»"
	}

	if c.HTTPPort <= 0 {
		c.HTTPPort = 8081
	}

	ids, err := parseAdminIDs(c.AdminIDs)
	if err != nil {
		return err
	}
	c.adminSet = ids
	return nil
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Core
}

// PaymentsEnabled reports whether gateway credentials are present.
func (c *Config) PaymentsEnabled() bool {
	return strings.TrimSpace(c.YooKassa.ShopID) != "" && strings.TrimSpace(c.YooKassa.SecretKey) != ""
}

// IsAdmin reports whether the given Telegram id belongs to an administrator.
func (c *Config) IsAdmin(userID int64) bool {
	_, ok := c.adminSet[userID]
	return ok
}

// Admins returns the configured administrator ids.
func (c *Config) Admins() []int64 {
	out := make([]int64, 0, len(c.adminSet))
	for id := range c.adminSet {
		out = append(out, id)
	}
	return out
}

func parseAdminIDs(raw string) (map[int64]struct{}, error) {
	set := make(map[int64]struct{})
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';'
	})
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		id, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid admin id %q: %w", f, err)
		}
		set[id] = struct{}{}
	}
	return set, nil
}
