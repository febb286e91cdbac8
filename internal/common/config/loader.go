package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata" // zone lookups must not depend on the host's zoneinfo

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	QueueDriverSQS   = "sqs"
	QueueDriverRedis = "redis"

	RecordsDriverDynamoDB = "dynamodb"
	RecordsDriverPostgres = "postgres"

	NotifyProviderSES = "ses"
	NotifyProviderSNS = "sns"

	TriggerTicker = "ticker"
	TriggerZeebe  = "zeebe"

	// MaxSampleSize bounds the suggestions in one notification.
	MaxSampleSize = 3
)

// Load reads configs/config.yaml, merges configs/config.<APP_ENVIRONMENT>.yaml
// on top, then applies environment overrides and defaults.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // env overlay is optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	// queue.sqs_url -> QUEUE_SQS_URL
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads the first .env found walking up to the module root.
func loadEnvFile() {
	paths := []string{".env", "../.env", "../../.env", "../../../.env"}
	if root := findProjectRoot(); root != "" {
		paths = append(paths, filepath.Join(root, ".env"))
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err == nil {
			return
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnvVars resolves ${VAR} placeholders left in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok || !strings.Contains(strVal, "$") {
			continue
		}
		if expanded := os.ExpandEnv(strVal); expanded != strVal && expanded != "" {
			v.Set(key, expanded)
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "dining-concierge"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.AWS.Region == "" {
		cfg.AWS.Region = "us-east-1"
	}

	d := &cfg.Dialog
	if d.DiningIntent == "" {
		d.DiningIntent = "DiningSuggestionsIntent"
	}
	if d.GreetingIntent == "" {
		d.GreetingIntent = "GreetingIntent"
	}
	if d.ThankYouIntent == "" {
		d.ThankYouIntent = "ThankYouIntent"
	}
	if len(d.Locations) == 0 {
		d.Locations = []string{"manhattan", "new york", "new york city", "nyc"}
	}
	if d.LocationLabel == "" {
		d.LocationLabel = "Manhattan"
	}
	if len(d.Cuisines) == 0 {
		d.Cuisines = []string{"american", "chinese", "indian", "italian", "japanese", "mexican", "thai"}
	}
	if d.MinPartySize == 0 {
		d.MinPartySize = 1
	}
	if d.MaxPartySize == 0 {
		d.MaxPartySize = 20
	}
	if d.TimeZone == "" {
		d.TimeZone = "America/New_York"
	}

	if cfg.Relay.LocaleID == "" {
		cfg.Relay.LocaleID = "en_US"
	}
	if cfg.Relay.DefaultSessionID == "" {
		cfg.Relay.DefaultSessionID = "web-user"
	}
	if cfg.Relay.Timeout == 0 {
		cfg.Relay.Timeout = 5000
	}

	if cfg.Queue.Driver == "" {
		cfg.Queue.Driver = QueueDriverSQS
	}
	if cfg.Queue.RedisKeyPrefix == "" {
		cfg.Queue.RedisKeyPrefix = "dining:requests"
	}
	if cfg.Queue.VisibilityTimeout == 0 {
		cfg.Queue.VisibilityTimeout = 30000
	}

	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.Search.Index == "" {
		cfg.Search.Index = "restaurants"
	}
	if cfg.Search.CuisineField == "" {
		cfg.Search.CuisineField = "Cuisine"
	}
	if cfg.Search.IDField == "" {
		cfg.Search.IDField = "RestaurantID"
	}
	if cfg.Search.MaxResults == 0 {
		cfg.Search.MaxResults = 50
	}

	if cfg.Records.Driver == "" {
		cfg.Records.Driver = RecordsDriverDynamoDB
	}
	if cfg.Records.DynamoDBTable == "" {
		cfg.Records.DynamoDBTable = "yelp-restaurants"
	}
	if cfg.Records.PostgresTable == "" {
		cfg.Records.PostgresTable = "restaurants"
	}
	if cfg.Records.Cache.TTL == 0 {
		cfg.Records.Cache.TTL = 3600000
	}

	if cfg.Notify.Provider == "" {
		cfg.Notify.Provider = NotifyProviderSES
	}

	f := &cfg.Fulfillment
	if f.Trigger == "" {
		f.Trigger = TriggerTicker
	}
	if f.PollInterval == 0 {
		f.PollInterval = 60000
	}
	if f.Concurrency == 0 {
		f.Concurrency = 1
	}
	if f.MaxPerTick == 0 {
		f.MaxPerTick = 1
	}
	if f.SampleSize == 0 {
		f.SampleSize = 3
	}
	if f.CallTimeout == 0 {
		f.CallTimeout = 5000
	}
	if f.HealthPort == 0 {
		f.HealthPort = 8081
	}

	if cfg.Camunda.TaskType == "" {
		cfg.Camunda.TaskType = "dining-suggestions.fulfill"
	}
	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}
}

// validateConfig checks the settings both binaries depend on: the dialog
// rules and the request queue.
func validateConfig(cfg *Config) error {
	if cfg.Dialog.MinPartySize < 1 || cfg.Dialog.MinPartySize > cfg.Dialog.MaxPartySize {
		return fmt.Errorf("dialog.min_party_size must be between 1 and dialog.max_party_size")
	}
	if cfg.Dialog.TimeZone != "" {
		if _, err := time.LoadLocation(cfg.Dialog.TimeZone); err != nil {
			return fmt.Errorf("dialog.time_zone %q is not a known zone: %w", cfg.Dialog.TimeZone, err)
		}
	}

	switch cfg.Queue.Driver {
	case QueueDriverSQS:
		if cfg.Queue.SQSURL == "" {
			return fmt.Errorf("queue.sqs_url is required for the sqs driver")
		}
	case QueueDriverRedis:
		if cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required for the redis queue")
		}
	default:
		return fmt.Errorf("queue.driver %q is not supported", cfg.Queue.Driver)
	}
	return nil
}

// ValidateFulfillment checks the settings only the fulfillment worker uses:
// search, record store, notifier and trigger.
func (c *Config) ValidateFulfillment() error {
	if len(c.Database.Elasticsearch.Addresses) == 0 {
		return fmt.Errorf("database.elasticsearch.addresses is required")
	}

	switch c.Records.Driver {
	case RecordsDriverDynamoDB:
	case RecordsDriverPostgres:
		if c.Database.Postgres.Host == "" || c.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.host and database are required for the postgres record store")
		}
	default:
		return fmt.Errorf("records.driver %q is not supported", c.Records.Driver)
	}
	if c.Records.Cache.Enabled && c.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when records.cache is enabled")
	}

	switch c.Notify.Provider {
	case NotifyProviderSES:
		if c.Notify.FromEmail == "" {
			return fmt.Errorf("notify.from_email is required for ses")
		}
	case NotifyProviderSNS:
		if c.Notify.TopicARN == "" {
			return fmt.Errorf("notify.topic_arn is required for sns")
		}
	default:
		return fmt.Errorf("notify.provider %q is not supported", c.Notify.Provider)
	}

	switch c.Fulfillment.Trigger {
	case TriggerTicker:
	case TriggerZeebe:
		if c.Camunda.BrokerAddress == "" {
			return fmt.Errorf("camunda.broker_address is required for the zeebe trigger")
		}
	default:
		return fmt.Errorf("fulfillment.trigger %q is not supported", c.Fulfillment.Trigger)
	}
	if c.Fulfillment.SampleSize < 1 || c.Fulfillment.SampleSize > MaxSampleSize {
		return fmt.Errorf("fulfillment.sample_size must be between 1 and %d", MaxSampleSize)
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
