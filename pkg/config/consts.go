package config

// EnvPrefix namespaces every environment variable consumed by the service.
const EnvPrefix = "adega"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "ADEGA_DB_DSN"
	EnvDBHost = "ADEGA_DB_HOST"
	EnvDBUser = "ADEGA_DB_USER"
	EnvDBName = "ADEGA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
