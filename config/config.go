package config

import (
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/viper"
)

// Config carries every external dependency the services need. Components never
// read the environment themselves; everything is resolved here once.
type Config struct {
	App        App         `yaml:"app"`
	Server     Server      `yaml:"server"`
	DB         *sql.DB     `yaml:"db"`
	Queue      *RabbitMQ   `yaml:"rabbitmq"`
	Storage    *minio.Core `yaml:"storage"`
	S3         S3          `yaml:"s3"`
	LiveKit    LiveKit     `yaml:"livekit"`
	OpenAI     OpenAI      `yaml:"openai"`
	PublicBase string      `yaml:"public_base_url"`
}

type App struct {
	Environment string `yaml:"environment"`
	Host        string `yaml:"host"`
	Protocol    string `yaml:"protocol"`
}

type Server struct {
	HttpPort string `yaml:"http_port"`
}

// S3 is shared between the multipart uploader and the egress output config:
// the media server writes recording segments with these same credentials.
type S3 struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_access_key"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type LiveKit struct {
	URL       string `yaml:"url"`
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
}

type OpenAI struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type RabbitMQ struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	User string `json:"user"`
	Pass string `json:"pass"`
	Kind string `json:"kind"`
}

func Load(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", viper.GetString("postgresql_host"))
	if err != nil {
		return nil, err
	}

	rabbitmq := &RabbitMQ{
		Host: viper.GetString("rabbitmq_host"),
		Port: viper.GetInt("rabbitmq_port"),
		User: viper.GetString("rabbitmq_user"),
		Pass: viper.GetString("rabbitmq_pass"),
		Kind: viper.GetString("rabbitmq_kind"),
	}

	s3 := S3{
		Endpoint:  viper.GetString("s3.endpoint"),
		Region:    viper.GetString("s3.region"),
		Bucket:    viper.GetString("s3.bucket"),
		AccessKey: viper.GetString("s3.access_id"),
		SecretKey: viper.GetString("s3.secret_access_key"),
		UseSSL:    viper.GetBool("s3.use_ssl"),
	}

	storage, err := minio.NewCore(s3.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(s3.AccessKey, s3.SecretKey, ""),
		Secure: s3.UseSSL,
		Region: s3.Region,
	})
	if err != nil {
		return nil, err
	}

	return &Config{
		App: App{
			Environment: viper.GetString("app.environment"),
			Host:        viper.GetString("app.host"),
			Protocol:    viper.GetString("app.protocol"),
		},
		Server: Server{
			HttpPort: viper.GetString("server.port"),
		},
		DB:      db,
		Queue:   rabbitmq,
		Storage: storage,
		S3:      s3,
		LiveKit: LiveKit{
			URL:       viper.GetString("livekit.url"),
			APIKey:    viper.GetString("livekit.api_key"),
			APISecret: viper.GetString("livekit.api_secret"),
		},
		OpenAI: OpenAI{
			APIKey: viper.GetString("openai.api_key"),
			Model:  viper.GetString("openai.model"),
		},
		PublicBase: viper.GetString("public_base_url"),
	}, nil
}
