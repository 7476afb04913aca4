package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Server     ServerConfig     `yaml:"server"`
	RabbitMQ   RabbitMQConfig   `yaml:"rabbitmq"`
	Extractor  ExtractorConfig  `yaml:"extractor"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Ingest     IngestConfig     `yaml:"ingest"`
	LogLevel   string           `yaml:"log_level"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

type ServerConfig struct {
	Address string `yaml:"address"`
	APIKey  string `yaml:"api_key"`
}

// RabbitMQConfig configures the optional accepted-post event publisher.
// An empty URL disables publishing.
type RabbitMQConfig struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
	QueueName  string `yaml:"queue_name"`
}

type ExtractorConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

type SummarizerConfig struct {
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"api_key"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"max_retries"`
	MinWords    int           `yaml:"min_words"`
	TargetWords int           `yaml:"target_words"`
}

type IngestConfig struct {
	MaxPostsPerRun int           `yaml:"max_posts_per_run"`
	InsertDelay    time.Duration `yaml:"insert_delay"`
	FeedTimeout    time.Duration `yaml:"feed_timeout"`
	MinWords       int           `yaml:"min_words"`
	CreatedBy      string        `yaml:"created_by"`
	PostStatus     string        `yaml:"post_status"`
	Interval       time.Duration `yaml:"interval"`
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "news_ingest"
	}
	if c.RabbitMQ.RoutingKey == "" {
		c.RabbitMQ.RoutingKey = "posts"
	}
	if c.RabbitMQ.QueueName == "" {
		c.RabbitMQ.QueueName = "cms_posts"
	}
	if c.Extractor.BaseURL == "" {
		c.Extractor.BaseURL = "https://api.diffbot.com/v3/article"
	}
	if c.Extractor.Timeout == 0 {
		c.Extractor.Timeout = 30 * time.Second
	}
	if c.Summarizer.BaseURL == "" {
		c.Summarizer.BaseURL = "https://api.openai.com/v1"
	}
	if c.Summarizer.Model == "" {
		c.Summarizer.Model = "gpt-4o-mini"
	}
	if c.Summarizer.Timeout == 0 {
		c.Summarizer.Timeout = 60 * time.Second
	}
	if c.Summarizer.MaxRetries == 0 {
		c.Summarizer.MaxRetries = 4
	}
	if c.Summarizer.MinWords == 0 {
		c.Summarizer.MinWords = 50
	}
	if c.Summarizer.TargetWords == 0 {
		c.Summarizer.TargetWords = 60
	}
	if c.Ingest.MaxPostsPerRun == 0 {
		c.Ingest.MaxPostsPerRun = 3
	}
	if c.Ingest.InsertDelay == 0 {
		c.Ingest.InsertDelay = 12 * time.Second
	}
	if c.Ingest.FeedTimeout == 0 {
		c.Ingest.FeedTimeout = 15 * time.Second
	}
	if c.Ingest.MinWords == 0 {
		c.Ingest.MinWords = 50
	}
	if c.Ingest.CreatedBy == "" {
		c.Ingest.CreatedBy = "system"
	}
	if c.Ingest.PostStatus == "" {
		c.Ingest.PostStatus = "published"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
