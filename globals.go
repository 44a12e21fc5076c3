package main

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/RiemaLabs/dividend-ledger/checkpoint/da"
	"github.com/RiemaLabs/dividend-ledger/ledger"
	"github.com/RiemaLabs/dividend-ledger/ledger/dividend"
	"github.com/RiemaLabs/dividend-ledger/ledger/getter"
	"github.com/RiemaLabs/dividend-ledger/ledger/state"
	"github.com/RiemaLabs/dividend-ledger/ledger/token"
	"github.com/RiemaLabs/dividend-ledger/storage"
)

type Config struct {
	LogLevel string `mapstructure:"log_level"`
	Source   struct {
		// Method is one of mysql, http or csv.
		Method   string                `mapstructure:"method"`
		Database getter.DatabaseConfig `mapstructure:"database"`
		URL      string                `mapstructure:"url"`
		CSV      string                `mapstructure:"csv"`
		Interval time.Duration         `mapstructure:"interval"`
	} `mapstructure:"source"`
	Ledger struct {
		Owner        string        `mapstructure:"owner"`
		Name         string        `mapstructure:"name"`
		Symbol       string        `mapstructure:"symbol"`
		BaseCurrency string        `mapstructure:"base_currency"`
		LockPeriod   time.Duration `mapstructure:"lock_period"`
		// RFC 3339; the replay clock starts here.
		Genesis string `mapstructure:"genesis"`
	} `mapstructure:"ledger"`
	Storage struct {
		Path     string `mapstructure:"path"`
		Interval uint   `mapstructure:"interval"`
		Keep     uint   `mapstructure:"keep"`
	} `mapstructure:"storage"`
	Report struct {
		// Method is S3 or DA.
		Method  string `mapstructure:"method"`
		Timeout int    `mapstructure:"timeout"`
		S3      struct {
			Region    string `mapstructure:"region"`
			Bucket    string `mapstructure:"bucket"`
			AccessKey string `mapstructure:"access_key"`
			SecretKey string `mapstructure:"secret_key"`
		} `mapstructure:"s3"`
		Da struct {
			RPC           string `mapstructure:"rpc"`
			AuthToken     string `mapstructure:"auth_token"`
			NamespaceID   string `mapstructure:"namespace_id"`
			SubmitTimeout string `mapstructure:"submit_timeout"`
		} `mapstructure:"da"`
	} `mapstructure:"report"`
	Service struct {
		URL       string `mapstructure:"url"`
		Name      string `mapstructure:"name"`
		Addr      string `mapstructure:"addr"`
		CacheSize int    `mapstructure:"cache_size"`
	} `mapstructure:"service"`
}

var defaults = map[string]interface{}{
	"log_level":              "info",
	"source.method":          "mysql",
	"source.database.host":   "localhost",
	"source.database.port":   "3306",
	"source.interval":        "10s",
	"ledger.lock_period":     dividend.RecycleLockPeriod.String(),
	"storage.path":           storage.CachePath,
	"storage.interval":       1000,
	"storage.keep":           2000,
	"report.timeout":         60000,
	"report.s3.region":       "us-west-2",
	"report.da.rpc":          da.DefaultNodeRPC,
	"report.da.namespace_id": da.DefaultNamespaceID,
	"service.name":           "dividend-ledger",
	"service.addr":           ":8080",
	"service.cache_size":     4096,
}

// Every key can be overridden by LEDGER_<KEY>, dots replaced by underscores.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for _, key := range []string{
		"source.database.user", "source.database.password", "source.database.dbname",
		"source.url", "source.csv", "ledger.owner", "ledger.name", "ledger.symbol",
		"ledger.base_currency", "ledger.genesis", "report.method",
		"report.s3.bucket", "report.s3.access_key", "report.s3.secret_key",
		"report.da.auth_token", "report.da.submit_timeout", "service.url",
	} {
		v.SetDefault(key, "")
	}
	v.SetEnvPrefix("LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	return &config, nil
}

func (config *Config) StateConfig() (state.Config, error) {
	owner := ledger.NewAddress(config.Ledger.Owner)
	if owner.IsZero() {
		return state.Config{}, errors.Wrap(ledger.ErrZeroAddress, "ledger.owner")
	}
	var genesis time.Time
	if config.Ledger.Genesis != "" {
		t, err := time.Parse(time.RFC3339, config.Ledger.Genesis)
		if err != nil {
			return state.Config{}, errors.Wrap(err, "ledger.genesis")
		}
		genesis = t.UTC()
	}
	return state.Config{
		Owner: owner,
		Metadata: token.Metadata{
			Name:         config.Ledger.Name,
			Symbol:       config.Ledger.Symbol,
			BaseCurrency: config.Ledger.BaseCurrency,
		},
		LockPeriod: config.Ledger.LockPeriod,
		Genesis:    genesis,
	}, nil
}

func (config *Config) NewGetter() (getter.ActionGetter, error) {
	switch strings.ToLower(config.Source.Method) {
	case "mysql":
		return getter.NewSQLGetter(config.Source.Database)
	case "http":
		return getter.NewHTTPGetter(config.Source.URL)
	case "csv":
		return getter.LoadCSV(config.Source.CSV)
	default:
		return nil, errors.Errorf("unknown source method %q", config.Source.Method)
	}
}
