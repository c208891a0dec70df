package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/username/staff-attendance/internal/attendance"
	"github.com/username/staff-attendance/internal/employee"
	"github.com/username/staff-attendance/internal/shift"
)

// EnvPrefix prefixes environment overrides, e.g. STAFF_ATTENDANCE_SERVER_JWT_SECRET
const EnvPrefix = "STAFF_ATTENDANCE"

// Config represents application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Roster   RosterConfig   `mapstructure:"roster"`
}

// AppConfig holds business settings
type AppConfig struct {
	UTCOffsetHours int    `mapstructure:"utc_offset_hours"`
	WorkTag        string `mapstructure:"work_tag"` // Stamped on records created by clock-in
	MinYear        int    `mapstructure:"min_year"`
	MaxYear        int    `mapstructure:"max_year"`
}

// StorageConfig selects and configures the database
type StorageConfig struct {
	Driver     string         `mapstructure:"driver"` // "sqlite" or "postgres"
	SQLitePath string         `mapstructure:"sqlite_path"`
	Postgres   PostgresConfig `mapstructure:"postgres"`
}

// PostgresConfig represents PostgreSQL connection settings
type PostgresConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	Name            string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxConns        int    `mapstructure:"max_conns"`
	MinConns        int    `mapstructure:"min_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime string `mapstructure:"conn_max_idle_time"`
}

// CalendarConfig represents holiday calendar configuration
type CalendarConfig struct {
	ExtraHolidaysFile string `mapstructure:"extra_holidays_file"` // Optional "YYYY-MM-DD name" lines
}

// ServerConfig represents HTTP API configuration
type ServerConfig struct {
	ListenAddr      string   `mapstructure:"listen_addr"`
	JWTSecret       string   `mapstructure:"jwt_secret"`
	TokenTTL        string   `mapstructure:"token_ttl"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	ShutdownTimeout string   `mapstructure:"shutdown_timeout"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"` // Empty logs to stderr
	Level string `mapstructure:"level"`
}

// RosterConfig lists the staff created at startup
type RosterConfig struct {
	Members []MemberConfig `mapstructure:"members"`
}

// MemberConfig represents one roster entry
type MemberConfig struct {
	ID          string      `mapstructure:"id"`
	DisplayName string      `mapstructure:"display_name"`
	Password    string      `mapstructure:"password"` // Plain text or bcrypt hash
	Department  string      `mapstructure:"department"`
	Role        string      `mapstructure:"role"`
	Shift       ShiftConfig `mapstructure:"shift"`
}

// ShiftConfig represents a member's default shift
type ShiftConfig struct {
	Start string `mapstructure:"start"`
	End   string `mapstructure:"end"`
	Skip  string `mapstructure:"skip"` // sh, sun, sun-holi, sat, sat-holi or empty
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.utc_offset_hours", 9)
	v.SetDefault("app.work_tag", "Academy")
	v.SetDefault("app.min_year", 2024)
	v.SetDefault("app.max_year", 2030)
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.sqlite_path", "attendance.db")
	v.SetDefault("storage.postgres.host", "localhost")
	v.SetDefault("storage.postgres.port", 5432)
	v.SetDefault("storage.postgres.user", "")
	v.SetDefault("storage.postgres.password", "")
	v.SetDefault("storage.postgres.name", "staff_attendance")
	v.SetDefault("storage.postgres.ssl_mode", "disable")
	v.SetDefault("calendar.extra_holidays_file", "")
	v.SetDefault("server.listen_addr", ":8080")
	v.SetDefault("server.jwt_secret", "")
	v.SetDefault("server.token_ttl", "12h")
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
}

// Load loads configuration from file, a .env file and the environment
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.staff-attendance")
		v.AddConfigPath("/etc/staff-attendance")
	}

	// Read environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.ExpandEnvVars()

	// Validate config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.UTCOffsetHours < -12 || c.App.UTCOffsetHours > 14 {
		return fmt.Errorf("app.utc_offset_hours must be between -12 and 14")
	}
	if c.App.MinYear > c.App.MaxYear {
		return fmt.Errorf("app.min_year must not exceed app.max_year")
	}

	switch c.Storage.Driver {
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("storage.sqlite_path is required for sqlite driver")
		}
	case "postgres":
		if c.Storage.Postgres.Host == "" || c.Storage.Postgres.Name == "" {
			return fmt.Errorf("storage.postgres.host and storage.postgres.name are required for postgres driver")
		}
	default:
		return fmt.Errorf("storage.driver must be 'sqlite' or 'postgres', got '%s'", c.Storage.Driver)
	}

	seen := make(map[string]bool, len(c.Roster.Members))
	for i, m := range c.Roster.Members {
		if m.ID == "" {
			return fmt.Errorf("roster.members[%d].id is required", i)
		}
		if seen[m.ID] {
			return fmt.Errorf("roster.members[%d]: duplicate id %q", i, m.ID)
		}
		seen[m.ID] = true

		if !employee.Role(m.Role).IsValid() {
			return fmt.Errorf("roster.members[%d].role must be 'admin' or 'staff', got '%s'", i, m.Role)
		}
		if m.Password == "" {
			return fmt.Errorf("roster.members[%d].password is required", i)
		}
		if _, err := shift.ParseTemplate(m.ID, m.Shift.Start, m.Shift.End, m.Shift.Skip); err != nil {
			return fmt.Errorf("roster.members[%d].shift: %w", i, err)
		}
	}

	return nil
}

// ValidateForServe checks the settings only the HTTP server needs
func (c *Config) ValidateForServe() error {
	if len(c.Server.JWTSecret) < 32 {
		return fmt.Errorf("server.jwt_secret must be at least 32 characters")
	}
	if _, err := time.ParseDuration(c.Server.TokenTTL); c.Server.TokenTTL != "" && err != nil {
		return fmt.Errorf("server.token_ttl: %w", err)
	}
	return nil
}

// Members returns the roster as employee bootstrap input
func (c *Config) Members() []employee.Member {
	out := make([]employee.Member, 0, len(c.Roster.Members))
	for _, m := range c.Roster.Members {
		displayName := m.DisplayName
		if displayName == "" {
			displayName = m.ID
		}
		out = append(out, employee.Member{
			ID:          m.ID,
			DisplayName: displayName,
			Password:    m.Password,
			Department:  m.Department,
			Role:        employee.Role(m.Role),
		})
	}
	return out
}

// ShiftTemplates returns every member's default shift
func (c *Config) ShiftTemplates() ([]shift.Template, error) {
	out := make([]shift.Template, 0, len(c.Roster.Members))
	for _, m := range c.Roster.Members {
		t, err := shift.ParseTemplate(m.ID, m.Shift.Start, m.Shift.End, m.Shift.Skip)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Location returns the business timezone
func (c *AppConfig) Location() *time.Location {
	return attendance.FixedZone(c.UTCOffsetHours)
}

// GetTokenTTL returns login token lifetime
func (c *ServerConfig) GetTokenTTL() time.Duration {
	if c.TokenTTL == "" {
		return 12 * time.Hour
	}
	duration, err := time.ParseDuration(c.TokenTTL)
	if err != nil {
		return 12 * time.Hour
	}
	return duration
}

// GetShutdownTimeout returns how long in-flight requests get on shutdown
func (c *ServerConfig) GetShutdownTimeout() time.Duration {
	if c.ShutdownTimeout == "" {
		return 10 * time.Second
	}
	duration, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return duration
}

// DSN returns the connection URL used by pgx and golang-migrate
func (p PostgresConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     p.Host + ":" + strconv.Itoa(p.Port),
		Path:     "/" + p.Name,
		RawQuery: url.Values{"sslmode": []string{p.SSLMode}}.Encode(),
	}
	return u.String()
}

// GetConnMaxLifetime returns the pool connection lifetime, zero for the driver default
func (p PostgresConfig) GetConnMaxLifetime() time.Duration {
	return parseDurationOrZero(p.ConnMaxLifetime)
}

// GetConnMaxIdleTime returns the pool idle timeout, zero for the driver default
func (p PostgresConfig) GetConnMaxIdleTime() time.Duration {
	return parseDurationOrZero(p.ConnMaxIdleTime)
}

func parseDurationOrZero(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

// ExpandEnvVars expands environment variables in config strings
func (c *Config) ExpandEnvVars() {
	c.Server.JWTSecret = os.ExpandEnv(c.Server.JWTSecret)
	c.Storage.Postgres.Password = os.ExpandEnv(c.Storage.Postgres.Password)
	for i := range c.Roster.Members {
		c.Roster.Members[i].Password = os.ExpandEnv(c.Roster.Members[i].Password)
	}
}
