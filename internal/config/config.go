package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		WeRead
		Notion
		Covers
		HTTP
		Log
		Sync

		listErr error
	}

	WeRead struct {
		Cookie  string
		BaseURL string // Web host, used for the session bootstrap and reader links
		APIURL  string
	}
	Notion struct {
		Token        string
		DatabaseID   string
		APIURL       string
		Version      string
		PaceInterval time.Duration // Minimum interval between API calls
	}
	Covers struct {
		Dir        string
		Ref        string // Git ref of the repository hosting downloaded covers
		Repository string // owner/name
	}
	HTTP struct {
		Timeout time.Duration
	}
	Log struct {
		Level string
		JSON  bool
	}
	Sync struct {
		Styles   []int  // Highlight style allow-list; empty means all
		Colors   []int  // Highlight color allow-list; empty means all
		Schedule string // Cron format: "0 */6 * * *" = every 6 hours
	}
)

// NewConfig reads the configuration from the environment through v.
// Allow-lists that fail to parse are reported by Validate.
func NewConfig(v *viper.Viper) *Config {
	v.AutomaticEnv()
	v.SetDefault("weread_base_url", "https://weread.qq.com")
	v.SetDefault("weread_api_url", "https://i.weread.qq.com")
	v.SetDefault("notion_api_url", "https://api.notion.com/v1")
	v.SetDefault("notion_version", "2022-06-28")
	v.SetDefault("notion_pace_interval", "300ms")
	v.SetDefault("http_timeout", "30s")
	v.SetDefault("cover_dir", "cover")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
	v.SetDefault("sync_schedule", "0 */6 * * *") // Every 6 hours

	styles, stylesErr := ParseIntList(v.GetString("STYLES"))
	colors, colorsErr := ParseIntList(v.GetString("COLORS"))

	return &Config{
		WeRead: WeRead{
			Cookie:  v.GetString("WEREAD_COOKIE"),
			BaseURL: v.GetString("WEREAD_BASE_URL"),
			APIURL:  v.GetString("WEREAD_API_URL"),
		},
		Notion: Notion{
			Token:        v.GetString("NOTION_TOKEN"),
			DatabaseID:   v.GetString("DATABASE_ID"),
			APIURL:       v.GetString("NOTION_API_URL"),
			Version:      v.GetString("NOTION_VERSION"),
			PaceInterval: v.GetDuration("NOTION_PACE_INTERVAL"),
		},
		Covers: Covers{
			Dir:        v.GetString("COVER_DIR"),
			Ref:        v.GetString("REF"),
			Repository: v.GetString("REPOSITORY"),
		},
		HTTP: HTTP{
			Timeout: v.GetDuration("HTTP_TIMEOUT"),
		},
		Log: Log{
			Level: v.GetString("LOG_LEVEL"),
			JSON:  v.GetBool("LOG_JSON"),
		},
		Sync: Sync{
			Styles:   styles,
			Colors:   colors,
			Schedule: v.GetString("SYNC_SCHEDULE"),
		},
		listErr: errors.Join(wrapList("STYLES", stylesErr), wrapList("COLORS", colorsErr)),
	}
}

// Validate reports missing credentials and malformed values.
func (c *Config) Validate() error {
	var errs []error
	if c.listErr != nil {
		errs = append(errs, c.listErr)
	}
	if c.WeRead.Cookie == "" {
		errs = append(errs, errors.New("weread cookie is required (WEREAD_COOKIE)"))
	}
	if c.Notion.Token == "" {
		errs = append(errs, errors.New("notion token is required (NOTION_TOKEN)"))
	}
	if c.Notion.DatabaseID == "" {
		errs = append(errs, errors.New("notion database id is required (DATABASE_ID)"))
	}
	if c.Notion.PaceInterval < 0 {
		errs = append(errs, fmt.Errorf("notion pace interval must not be negative, got %s", c.Notion.PaceInterval))
	}
	if c.HTTP.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("http timeout must be positive, got %s", c.HTTP.Timeout))
	}
	return errors.Join(errs...)
}

// ParseIntList parses a comma or space separated list of integers.
// An empty string yields a nil list.
func ParseIntList(s string) ([]int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) == 0 {
		return nil, nil
	}
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", f)
		}
		out = append(out, n)
	}
	return out, nil
}

func wrapList(name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", name, err)
}
