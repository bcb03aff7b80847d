package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/onboarding/internal/flagx"
)

var serverFlags = []string{
	"-a", "-ga", "-driver", "-d", "-mongo", "-mongodb", "-s", "-t", "-cors",
	"-log", "-u", "-p", "-b", "-g", "-e",
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string       HTTP bind address (e.g. ":4000")
//	-ga string      gRPC health bind address
//	-driver string  storage driver: postgres, mongo, memory
//	-d string       PostgreSQL DSN
//	-mongo string   MongoDB URI
//	-mongodb string MongoDB database
//	-s string       JWT HMAC secret key
//	-t int          access token validity, minutes
//	-cors string    comma separated allowed origins
//	-log string     log backend: slog or zap
//	-u -p -b -g -e  S3 user, password, bucket, region, endpoint
//
// Unknown arguments are dropped by flagx.FilterArgs before parsing, so -c
// and flags owned by other components do not collide.
func parseFlags(config *Config, args []string) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "ga", config.EndpointAddrGRPC, "gRPC health address and port")
	fs.StringVar(&config.StorageDriver, "driver", config.StorageDriver, "storage driver")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.MongoURI, "mongo", config.MongoURI, "MongoDB URI")
	fs.StringVar(&config.MongoDatabase, "mongodb", config.MongoDatabase, "MongoDB database")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	tokenMinutes := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	cors := fs.String("cors", "", "allowed CORS origins, comma separated")
	fs.StringVar(&config.LogBackend, "log", config.LogBackend, "log backend")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(flagx.FilterArgs(args, serverFlags)); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*tokenMinutes) * time.Minute
		case "cors":
			config.CORSOrigins = splitList(*cors)
		}
	})
}
