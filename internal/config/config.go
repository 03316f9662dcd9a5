package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings" // strings splits list-valued variables
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and costs, slices for list-valued settings.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	S3Region       string // object storage region
	S3Bucket       string // bucket holding participant photos
	S3AccessKey    string // object storage access key
	S3SecretKey    string // object storage secret key
	S3BaseEndpoint string // optional custom endpoint (minio or compatible; empty = AWS)

	AdminEmails        []string // allow-list granting admin status when no profile row exists yet
	AdminChannelUserID uint64   // user id participant messages are addressed to
	SignedURLTTLMin    int    // presigned retrieval URL lifetime in minutes
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),

		S3Region:       must("S3_REGION"),
		S3Bucket:       must("S3_BUCKET"),
		S3AccessKey:    must("S3_ACCESS_KEY"),
		S3SecretKey:    must("S3_SECRET_KEY"),
		S3BaseEndpoint: os.Getenv("S3_BASE_ENDPOINT"), // empty means default AWS endpoint

		AdminEmails:        splitList(os.Getenv("ADMIN_EMAILS")),
		AdminChannelUserID: mustUint("ADMIN_CHANNEL_USER_ID"),
		SignedURLTTLMin:    intOr("SIGNED_URL_TTL_MIN", 60),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// mustUint is like mustInt for unsigned identifiers.
func mustUint(key string) uint64 {
	s := must(key)
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		log.Fatalf("invalid uint for %s: %q", key, s)
	}
	return n
}

// intOr reads an optional integer variable, returning def when the
// variable is unset or malformed.
func intOr(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// splitList splits a comma-separated variable into trimmed, lowercased,
// non-empty items. Used for the administrator email allow-list.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
