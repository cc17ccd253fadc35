package config

import (
	"encoding/json"
	"os"

	"github.com/prestobr/authd/internal/flagx"
	"github.com/prestobr/authd/internal/timex"
)

// JsonConfig is the JSON-file shape of Config. It uses timex.Duration for
// the TTL so both "24h" strings and integer nanoseconds parse; after
// unmarshalling its fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddrHTTP string         `json:"endpoint_addr_http"`
	DatabaseDSN      string         `json:"database_dsn"`
	SigningSecret    string         `json:"signing_secret"`
	TokenTTL         timex.Duration `json:"token_ttl"`
	FingerprintKey   string         `json:"fingerprint_key"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags, if any, into the provided Config. A missing flag means
// no file is loaded; an unreadable or invalid file panics, since the server
// must not start on a half-applied configuration.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.SigningSecret = c.SigningSecret
	config.TokenTTL = c.TokenTTL.Duration
	config.FingerprintKey = c.FingerprintKey
}
