package config

import (
	"reflect"
	"strings"

	"rewrite-manager/core/database"
	"rewrite-manager/core/logger"
	"rewrite-manager/core/notify"
	"rewrite-manager/core/redis"
	"rewrite-manager/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// Catalog holds URL generation settings of the catalog.
	Catalog Catalog `mapstructure:"catalog"`
	// Database holds configuration for the catalog database connection.
	Database database.Config `mapstructure:"database"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Storage holds configuration for the report archive bucket.
	Storage storage.Config `mapstructure:"storage"`
	// Redis holds configuration for cache flushing and scope locking.
	Redis redis.Config `mapstructure:"redis"`
	// Notify holds configuration for the Pub/Sub notification topic.
	Notify notify.Config `mapstructure:"notify"`
}

// Catalog mirrors the host platform's SEO settings used when generating rewrites.
type Catalog struct {
	// CategoryURLSuffix is appended to every category request path.
	CategoryURLSuffix string `mapstructure:"category_url_suffix" default:".html"`
	// ProductURLSuffix is appended to every product request path.
	ProductURLSuffix string `mapstructure:"product_url_suffix" default:".html"`
	// ProductUseCategories generates category-scoped product paths as well.
	ProductUseCategories bool `mapstructure:"product_use_categories" default:"true"`
	// MaxDepth is the default descendant depth for category tree runs.
	MaxDepth int `mapstructure:"max_depth" default:"10"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. DATABASE_HOST -> database.host)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
