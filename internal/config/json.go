package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] in the JSON file layout.
type StructuredJSONConfig struct {
	App struct {
		TokenSignKey         string   `json:"token_sign_key"`
		TokenIssuer          string   `json:"token_issuer"`
		AccessTokenDuration  Duration `json:"access_token_duration"`
		RefreshTokenDuration Duration `json:"refresh_token_duration"`
		RefreshTokenHashKey  string   `json:"refresh_token_hash_key"`
		SecureCookies        bool     `json:"secure_cookies"`
		LogLevel             string   `json:"log_level"`
		LogFormat            string   `json:"log_format"`
		Version              string   `json:"version"`
	} `json:"app,omitempty"`

	Storage struct {
		Driver string `json:"driver"`
		DB     struct {
			DSN         string `json:"dsn"`
			AutoMigrate bool   `json:"auto_migrate"`
		} `json:"db,omitempty"`
		REST struct {
			URL            string   `json:"url"`
			APIKey         string   `json:"api_key"`
			RequestTimeout Duration `json:"request_timeout"`
		} `json:"rest,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		GRPCAddress    string   `json:"grpc_address"`
		RequestTimeout Duration `json:"request_timeout"`
		AuthRateLimit  float64  `json:"auth_rate_limit"`
		AuthRateBurst  int      `json:"auth_rate_burst"`
	} `json:"server,omitempty"`

	Workers struct {
		RefreshTokenCleanupInterval Duration `json:"refresh_token_cleanup_interval"`
		HealthCheckInterval         Duration `json:"health_check_interval"`
		RateLimiterIdleTTL          Duration `json:"rate_limiter_idle_ttl"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			TokenSignKey:         jsonCfg.App.TokenSignKey,
			TokenIssuer:          jsonCfg.App.TokenIssuer,
			AccessTokenDuration:  time.Duration(jsonCfg.App.AccessTokenDuration),
			RefreshTokenDuration: time.Duration(jsonCfg.App.RefreshTokenDuration),
			RefreshTokenHashKey:  jsonCfg.App.RefreshTokenHashKey,
			SecureCookies:        jsonCfg.App.SecureCookies,
			LogLevel:             jsonCfg.App.LogLevel,
			LogFormat:            jsonCfg.App.LogFormat,
			Version:              jsonCfg.App.Version,
		},
		Storage: Storage{
			Driver: jsonCfg.Storage.Driver,
			DB: DB{
				DSN:         jsonCfg.Storage.DB.DSN,
				AutoMigrate: jsonCfg.Storage.DB.AutoMigrate,
			},
			REST: REST{
				URL:            jsonCfg.Storage.REST.URL,
				APIKey:         jsonCfg.Storage.REST.APIKey,
				RequestTimeout: time.Duration(jsonCfg.Storage.REST.RequestTimeout),
			},
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			GRPCAddress:    jsonCfg.Server.GRPCAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
			AuthRateLimit:  jsonCfg.Server.AuthRateLimit,
			AuthRateBurst:  jsonCfg.Server.AuthRateBurst,
		},
		Workers: Workers{
			RefreshTokenCleanupInterval: time.Duration(jsonCfg.Workers.RefreshTokenCleanupInterval),
			HealthCheckInterval:         time.Duration(jsonCfg.Workers.HealthCheckInterval),
			RateLimiterIdleTTL:          time.Duration(jsonCfg.Workers.RateLimiterIdleTTL),
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
