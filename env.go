package mongoguard

import (
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/medhedtech/mongoguard/types"
)

// Environment variable names.
//
// MONGOGUARD_ENV falls back to NODE_ENV so deployments migrating from the
// original Node.js backend keep working without configuration changes.
const (
	EnvURI            = "MONGODB_URI"
	EnvURIFallback    = "MONGO_URI"
	EnvDatabase       = "MONGODB_DB"
	EnvEnvironment    = "MONGOGUARD_ENV"
	EnvEnvironmentAlt = "NODE_ENV"
	EnvDebug          = "MONGOGUARD_DEBUG"
	EnvReadPreference = "MONGODB_READ_PREFERENCE"
)

// ConnectConfigFromEnv builds a ConnectConfig from the process environment,
// loading a .env file first when one exists.
//
// Variables:
//   - MONGODB_URI (or MONGO_URI): connection string, required
//   - MONGODB_DB: default database; falls back to the URI path segment
//   - MONGOGUARD_ENV (or NODE_ENV): "production" selects 120s timeouts and
//     a max pool size of 15; anything else keeps development defaults
//   - MONGODB_READ_PREFERENCE: "secondaryPreferred" switches the read
//     preference; default is primaryPreferred
//   - MONGOGUARD_DEBUG: "true"/"1" enables driver command logging
//
// Returns:
//   - ConnectConfig: The assembled configuration
//   - error: *types.ConfigError when no URI is set
func ConnectConfigFromEnv() (ConnectConfig, error) {
	// A missing .env file is not an error; real deployments set variables
	// in the environment directly.
	_ = godotenv.Load()

	uri := os.Getenv(EnvURI)
	if uri == "" {
		uri = os.Getenv(EnvURIFallback)
	}
	if strings.TrimSpace(uri) == "" {
		return ConnectConfig{}, &types.ConfigError{
			Field:  "uri",
			Reason: "neither " + EnvURI + " nor " + EnvURIFallback + " is set",
		}
	}

	database := os.Getenv(EnvDatabase)
	if database == "" {
		database = databaseFromURI(uri)
	}

	cc := DefaultConnectConfig(uri, database)

	env := os.Getenv(EnvEnvironment)
	if env == "" {
		env = os.Getenv(EnvEnvironmentAlt)
	}
	if env == "production" {
		cc.ServerSelectionTimeout = 120 * time.Second
		cc.SocketTimeout = 120 * time.Second
		cc.ConnectTimeout = 120 * time.Second
		cc.MaxPoolSize = 15
	}

	if os.Getenv(EnvReadPreference) == "secondaryPreferred" {
		cc.ReadPreference = readpref.SecondaryPreferred()
	}

	switch strings.ToLower(os.Getenv(EnvDebug)) {
	case "1", "true", "yes":
		cc.DebugCommands = true
	}

	return cc, nil
}

// databaseFromURI extracts the database name from the URI path, if any.
func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}

	return strings.TrimPrefix(u.Path, "/")
}
