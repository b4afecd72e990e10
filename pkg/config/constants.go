package config

// EnvPrefix is the envconfig prefix; every field tag carries the full variable name.
const EnvPrefix = "SHIPFEE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv             = "SHIPFEE_APP_ENV"
	EnvPort               = "SHIPFEE_APP_PORT"
	EnvLogLevel           = "SHIPFEE_LOG_LEVEL"
	EnvDBDSN              = "SHIPFEE_DB_DSN"
	EnvDBDriver           = "SHIPFEE_DB_DRIVER"
	EnvDBHost             = "SHIPFEE_DB_HOST"
	EnvDBUser             = "SHIPFEE_DB_USER"
	EnvDBName             = "SHIPFEE_DB_NAME"
	EnvRedisURL           = "SHIPFEE_REDIS_URL"
	EnvJWTSecret          = "SHIPFEE_JWT_SECRET"
	EnvJWTIssuer          = "SHIPFEE_JWT_ISSUER"
	EnvUseSQLite          = "SHIPFEE_USE_SQLITE"
	EnvGCPProjectID       = "SHIPFEE_GCP_PROJECT_ID"
	EnvPubSubOrdersTopic  = "SHIPFEE_PUBSUB_ORDERS_TOPIC"
	EnvDefaultItemWeight  = "SHIPFEE_SHIPPING_DEFAULT_ITEM_WEIGHT_KG"
	EnvReconcileTolerance = "SHIPFEE_SHIPPING_RECONCILE_TOLERANCE"
	EnvReconcileAutoFix   = "SHIPFEE_RECONCILE_AUTO_FIX"
	EnvReconcileLookback  = "SHIPFEE_RECONCILE_LOOKBACK"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
