package config

const (
	// EnvPrefix is intentionally empty; every variable carries the full
	// ARTMARKET_ prefix in its envconfig tag.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "ARTMARKET_DB_DSN"
	EnvDBHost = "ARTMARKET_DB_HOST"
	EnvDBUser = "ARTMARKET_DB_USER"
	EnvDBName = "ARTMARKET_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
