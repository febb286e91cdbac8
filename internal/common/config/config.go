package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct shared by the
// concierge API and the fulfillment worker.
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Tracing     TracingConfig     `mapstructure:"tracing"`
	AWS         AWSConfig         `mapstructure:"aws"`
	Dialog      DialogConfig      `mapstructure:"dialog"`
	Queue       QueueConfig       `mapstructure:"queue"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Search      SearchConfig      `mapstructure:"search"`
	Records     RecordsConfig     `mapstructure:"records"`
	Notify      NotifyConfig      `mapstructure:"notify"`
	Relay       RelayConfig       `mapstructure:"relay"`
	Fulfillment FulfillmentConfig `mapstructure:"fulfillment"`
	Camunda     CamundaConfig     `mapstructure:"camunda"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int `mapstructure:"write_timeout"` // milliseconds
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TracingConfig enables span export. An empty JaegerEndpoint keeps spans
// in-process only.
type TracingConfig struct {
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

type AWSConfig struct {
	Region string `mapstructure:"region"`
}

// --- Conversation ---

// DialogConfig holds the intent names and slot allow-lists. The allow-lists are
// data so supporting another cuisine or borough is a config change.
type DialogConfig struct {
	DiningIntent   string   `mapstructure:"dining_intent"`
	GreetingIntent string   `mapstructure:"greeting_intent"`
	ThankYouIntent string   `mapstructure:"thank_you_intent"`
	Locations      []string `mapstructure:"locations"`
	LocationLabel  string   `mapstructure:"location_label"`
	Cuisines       []string `mapstructure:"cuisines"`
	MinPartySize   int      `mapstructure:"min_party_size"`
	MaxPartySize   int      `mapstructure:"max_party_size"`
	TimeZone       string   `mapstructure:"time_zone"`
}

// Location resolves TimeZone. An empty zone means UTC; loading rejects
// unknown zones, so the UTC fallback only covers hand-built configs.
func (d DialogConfig) Location() *time.Location {
	if d.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(d.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type RelayConfig struct {
	BotID            string `mapstructure:"bot_id"`
	BotAliasID       string `mapstructure:"bot_alias_id"`
	LocaleID         string `mapstructure:"locale_id"`
	DefaultSessionID string `mapstructure:"default_session_id"`
	Timeout          int    `mapstructure:"timeout"` // milliseconds
}

// --- Pipeline ---

type QueueConfig struct {
	Driver            string `mapstructure:"driver"` // sqs | redis
	SQSURL            string `mapstructure:"sqs_url"`
	RedisKeyPrefix    string `mapstructure:"redis_key_prefix"`
	VisibilityTimeout int    `mapstructure:"visibility_timeout"` // milliseconds
	ReceiveWait       int    `mapstructure:"receive_wait"`       // seconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SearchConfig struct {
	Index        string `mapstructure:"index"`
	CuisineField string `mapstructure:"cuisine_field"`
	IDField      string `mapstructure:"id_field"`
	MaxResults   int    `mapstructure:"max_results"`
}

type RecordsConfig struct {
	Driver        string      `mapstructure:"driver"` // dynamodb | postgres
	DynamoDBTable string      `mapstructure:"dynamodb_table"`
	PostgresTable string      `mapstructure:"postgres_table"`
	Cache         CacheConfig `mapstructure:"cache"`
}

type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
	TTL     int  `mapstructure:"ttl"` // milliseconds
}

type NotifyConfig struct {
	Provider  string `mapstructure:"provider"` // ses | sns
	FromEmail string `mapstructure:"from_email"`
	TopicARN  string `mapstructure:"topic_arn"`
}

type FulfillmentConfig struct {
	Trigger      string `mapstructure:"trigger"`       // ticker | zeebe
	PollInterval int    `mapstructure:"poll_interval"` // milliseconds
	Concurrency  int    `mapstructure:"concurrency"`
	MaxPerTick   int    `mapstructure:"max_per_tick"`
	SampleSize   int    `mapstructure:"sample_size"`
	CallTimeout  int    `mapstructure:"call_timeout"` // milliseconds
	HealthPort   int    `mapstructure:"health_port"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	TaskType       string `mapstructure:"task_type"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}
