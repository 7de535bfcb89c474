package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

// defaultProvider supplies the built-in configuration layer.
func defaultProvider() *confmap.Confmap {
	return confmap.Provider(map[string]interface{}{
		"timezone":     "",
		"lead_minutes": 5,
		"storage": map[string]interface{}{
			"path":      "",
			"in_memory": false,
		},
		"daemon": map[string]interface{}{
			"listen": "127.0.0.1:8765",
			// Midnight re-arm: event labels only carry a time of day, so
			// the reminder set is recomputed for each new day.
			"refresh_cron": "0 0 0 * * *",
		},
	}, ".")
}
