package config

import "time"

type LogBackend string

const (
	LogBackendCSV LogBackend = "csv"
	LogBackendDB  LogBackend = "db"
)

type Server struct {
	Platform string `mapstructure:"PLATFORM" default:"cellbank"`
	Service  string `mapstructure:"SERVICE" default:"api"`
	Port     int    `mapstructure:"WEB_PORT" default:"8080"`
	Env      string `mapstructure:"ENV" default:"dev"`
}

type Inventory struct {
	WorkbookPath    string        `mapstructure:"WORKBOOK_PATH" default:"new_cell_entries.xlsx"`
	UsageLogPath    string        `mapstructure:"USAGE_LOG_PATH" default:"usage_log.csv"`
	UsageLogBackend LogBackend    `mapstructure:"USAGE_LOG_BACKEND" default:"csv"`
	RecommendLimit  int           `mapstructure:"RECOMMEND_LIMIT" default:"5"`
	LockTTL         time.Duration `mapstructure:"LOCK_TTL" default:"10s"`
	LockWait        time.Duration `mapstructure:"LOCK_WAIT" default:"5s"`
}

// Score weights the linear vial score: passage, remaining vials and
// freeze-date freshness in days. Recommend* ranks candidates, Stored* is
// written to the Score column of new rows.
type Score struct {
	RecommendPassage   float64 `mapstructure:"SCORE_RECOMMEND_PASSAGE" default:"-1"`
	RecommendVials     float64 `mapstructure:"SCORE_RECOMMEND_VIALS" default:"1"`
	RecommendFreshness float64 `mapstructure:"SCORE_RECOMMEND_FRESHNESS" default:"0"`
	StoredPassage      float64 `mapstructure:"SCORE_STORED_PASSAGE" default:"-1"`
	StoredVials        float64 `mapstructure:"SCORE_STORED_VIALS" default:"1"`
	StoredFreshness    float64 `mapstructure:"SCORE_STORED_FRESHNESS" default:"1"`
}

type Database struct {
	Host     string `mapstructure:"DATABASE_HOST" default:"localhost"`
	Port     int    `mapstructure:"DATABASE_PORT" default:"5432"`
	Name     string `mapstructure:"DATABASE_NAME" default:"cellbank"`
	User     string `mapstructure:"DATABASE_USER" default:"postgres"`
	Password string `mapstructure:"DATABASE_PASSWORD" default:"cellbank"`
}

type Redis struct {
	Enabled  bool   `mapstructure:"REDIS_ENABLED" default:"false"`
	Host     string `mapstructure:"REDIS_HOST" default:"127.0.0.1"`
	Port     int    `mapstructure:"REDIS_PORT" default:"6379"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB" default:"0"`
}

type RPC struct {
	Cellosaurus RPCCellosaurus `mapstructure:",squash"`
}

type RPCCellosaurus struct {
	Addr    string        `mapstructure:"RPC_CELLOSAURUS_ADDR" default:"https://api.cellosaurus.org"`
	Timeout time.Duration `mapstructure:"RPC_CELLOSAURUS_TIMEOUT" default:"15s"`
}

type Log struct {
	LogPath  string `mapstructure:"LOG_PATH" default:"./info.log"`
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
}

type Trace struct {
	Version       string  `mapstructure:"TRACE_VERSION" default:"0.0.1"`
	TraceEndpoint string  `mapstructure:"TRACE_ENDPOINT" default:""`
	Insecure      bool    `mapstructure:"TRACE_INSECURE" default:"true"`
	SampleRatio   float64 `mapstructure:"TRACE_SAMPLE_RATIO" default:"1"`
}
