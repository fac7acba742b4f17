package env

import (
	"os"
	"strconv"
	"strings"
)

// Prefix is prepended to every hookshot environment variable
const Prefix = "HOOKSHOT_"

// String returns the value of HOOKSHOT_<key>, or defaultVal when unset or empty
func String(key, defaultVal string) string {
	if val := os.Getenv(Prefix + key); val != "" {
		return val
	}
	return defaultVal
}

// Bool returns HOOKSHOT_<key> parsed as a boolean
func Bool(key string, defaultVal bool) bool {
	switch strings.ToLower(os.Getenv(Prefix + key)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	return defaultVal
}

// Int returns HOOKSHOT_<key> parsed as an integer
func Int(key string, defaultVal int) int {
	if val := os.Getenv(Prefix + key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
