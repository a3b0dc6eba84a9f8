package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                    string
	Env                     string
	PostgresConnStr         string
	MongoURI                string
	JWTSecret               string
	FirebaseCredentialsPath string
	VAPIDPublicKey          string
	VAPIDPrivateKey         string
	VAPIDSubscriber         string
	AvatarBaseURL           string
	SeedEmails              []string
	SentryDSN               string
	Debug                   bool
}

func Load() *Config {
	// Load environment variables from a .env file, if present
	_ = godotenv.Load()

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		JWTSecret:               getEnv("JWT_SECRET", "supersecretjwtkey"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		VAPIDPublicKey:          getEnv("VAPID_PUBLIC_KEY", ""),
		VAPIDPrivateKey:         getEnv("VAPID_PRIVATE_KEY", ""),
		VAPIDSubscriber:         getEnv("VAPID_SUBSCRIBER", "admin@example.com"),
		AvatarBaseURL:           getEnv("AVATAR_BASE_URL", ""),
		SeedEmails:              splitList(getEnv("SEED_EMAILS", "")),
		SentryDSN:               getEnv("SENTRY_DSN", ""),
		Debug:                   getEnv("DEBUG", "") == "true",
	}
}

// IsSeedEmail reports whether the given email belongs to one of the
// configured seed accounts.
func (c *Config) IsSeedEmail(email string) bool {
	for _, e := range c.SeedEmails {
		if strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
