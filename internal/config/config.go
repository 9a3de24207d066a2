package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "cobranza/internal/errors"
)

// EnvPrefix is the prefix for every environment variable read by Load.
const EnvPrefix = "COBRANZA"

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Files     FilesConfig     `yaml:"files" envconfig:"FILES"`
	Scenario  ScenarioConfig  `yaml:"scenario" envconfig:"SCENARIO"`
	Model     ModelConfig     `yaml:"model" envconfig:"MODEL"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Publish   PublishConfig   `yaml:"publish" envconfig:"PUBLISH"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"omitempty,oneof=json text"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration. Relative
// directories are resolved against BaseDir.
type PathsConfig struct {
	BaseDir    string `yaml:"base_dir" envconfig:"BASE_DIR" validate:"required"`
	CatalogDir string `yaml:"catalog_dir" envconfig:"CATALOG_DIR" validate:"required"`
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	OutputDir  string `yaml:"output_dir" envconfig:"OUTPUT_DIR"`
	ShardDir   string `yaml:"shard_dir" envconfig:"SHARD_DIR"`
}

// FilesConfig holds input file names and output file names.
type FilesConfig struct {
	Banks               string `yaml:"banks" envconfig:"BANKS" validate:"required"`
	BankResponses       string `yaml:"bank_responses" envconfig:"BANK_RESPONSES" validate:"required"`
	Issuers             string `yaml:"issuers" envconfig:"ISSUERS" validate:"required"`
	CollectionLists     string `yaml:"collection_lists" envconfig:"COLLECTION_LISTS" validate:"required"`
	ListIssuers         string `yaml:"list_issuers" envconfig:"LIST_ISSUERS" validate:"required"`
	TransactionTemplate string `yaml:"transaction_template" envconfig:"TRANSACTION_TEMPLATE" validate:"required,contains=%d"`
	Years               []int  `yaml:"years" envconfig:"YEARS" validate:"required,min=1,dive,gte=1900,lte=2200"`
	ShardPattern        string `yaml:"shard_pattern" envconfig:"SHARD_PATTERN" validate:"required"`

	Summary         string `yaml:"summary" envconfig:"SUMMARY" validate:"required"`
	SummaryWorkbook string `yaml:"summary_workbook" envconfig:"SUMMARY_WORKBOOK"`
	MonthlyChart    string `yaml:"monthly_chart" envconfig:"MONTHLY_CHART" validate:"required"`
	TopBanksChart   string `yaml:"top_banks_chart" envconfig:"TOP_BANKS_CHART" validate:"required"`
	RejectionChart  string `yaml:"rejection_chart" envconfig:"REJECTION_CHART" validate:"required"`
	ScenarioChart   string `yaml:"scenario_chart" envconfig:"SCENARIO_CHART" validate:"required"`
	ScenarioTable   string `yaml:"scenario_table" envconfig:"SCENARIO_TABLE"`
	Recommendations string `yaml:"recommendations" envconfig:"RECOMMENDATIONS" validate:"required"`
	BestParams      string `yaml:"best_params" envconfig:"BEST_PARAMS"`
}

// ScenarioConfig configures the what-if comparison.
type ScenarioConfig struct {
	TargetBanks []string `yaml:"target_banks" envconfig:"TARGET_BANKS"`
	Uplift      float64  `yaml:"uplift" envconfig:"UPLIFT" validate:"gte=-1"`
}

// ModelConfig configures training and the hyperparameter search.
type ModelConfig struct {
	Seed                uint64  `yaml:"seed" envconfig:"SEED"`
	TestFraction        float64 `yaml:"test_fraction" envconfig:"TEST_FRACTION" validate:"gt=0,lt=1"`
	Trials              int     `yaml:"trials" envconfig:"TRIALS" validate:"gte=1"`
	TrialRounds         int     `yaml:"trial_rounds" envconfig:"TRIAL_ROUNDS" validate:"gte=1"`
	FinalRounds         int     `yaml:"final_rounds" envconfig:"FINAL_ROUNDS" validate:"gte=1"`
	EarlyStoppingRounds int     `yaml:"early_stopping_rounds" envconfig:"EARLY_STOPPING_ROUNDS" validate:"gte=1"`
	MaxConcurrency      int     `yaml:"max_concurrency" envconfig:"MAX_CONCURRENCY" validate:"gte=1"`
	MaxBins             int     `yaml:"max_bins" envconfig:"MAX_BINS" validate:"gte=2,lte=255"`
	MinDataInLeaf       int     `yaml:"min_data_in_leaf" envconfig:"MIN_DATA_IN_LEAF" validate:"gte=1"`
}

// TelemetryConfig configures tracing and the metrics textfile.
type TelemetryConfig struct {
	Environment     string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter   string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	EnableMetrics   bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	MetricsTextfile string  `yaml:"metrics_textfile" envconfig:"METRICS_TEXTFILE"`
	SampleRatio     float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// PublishConfig configures the optional Google Sheets upload.
type PublishConfig struct {
	Sheets SheetsConfig `yaml:"sheets" envconfig:"SHEETS"`
}

// SheetsConfig configures the Google Sheets publisher.
type SheetsConfig struct {
	Enabled         bool          `yaml:"enabled" envconfig:"ENABLED"`
	SpreadsheetID   string        `yaml:"spreadsheet_id" envconfig:"SPREADSHEET_ID" validate:"required_if=Enabled true"`
	SheetName       string        `yaml:"sheet_name" envconfig:"SHEET_NAME"`
	CredentialsFile string        `yaml:"credentials_file" envconfig:"CREDENTIALS_FILE"`
	ChunkSize       int           `yaml:"chunk_size" envconfig:"CHUNK_SIZE" validate:"gte=1"`
	RequestsPerSec  float64       `yaml:"requests_per_sec" envconfig:"REQUESTS_PER_SEC" validate:"gt=0"`
	Timeout         time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
}

// Load builds the configuration from defaults, an optional YAML file and
// COBRANZA_* environment variables, in increasing order of precedence.
// An empty configFile falls back to COBRANZA_CONFIG and then to the
// well-known locations.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if configFile == "" {
		configFile = getConfigFilePath()
	}

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).
				WithContext("path", configFile)
		}
	}

	// Fields have no default tags, so envconfig only touches variables that are set.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile overlays YAML values onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks struct constraints.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return apperrors.NewConfigError("config validation failed", err)
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return apperrors.NewConfigError(
			fmt.Sprintf("logging output %q requires a file path", c.Logging.Output), nil)
	}
	return nil
}

// ResolvePaths resolves the configured directories and file names.
func (c *Config) ResolvePaths() *Paths {
	return NewPaths(c.Paths, c.Files)
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Output:   "console",
			Format:   "json",
			FilePath: "logs/cobranza.log",
		},
		Paths: PathsConfig{
			BaseDir:    ".",
			CatalogDir: DefaultExtractDir,
			DataDir:    DefaultExtractDir,
			OutputDir:  ".",
			ShardDir:   ".",
		},
		Files: FilesConfig{
			Banks:               "CatBanco.csv",
			BankResponses:       "CatRespuestaBancos.csv",
			Issuers:             "CatEmisora.csv",
			CollectionLists:     "ListaCobro.csv",
			ListIssuers:         "ListaCobroEmisora.csv",
			TransactionTemplate: "ListaCobroDetalle%d.csv",
			Years:               []int{2022, 2023, 2024, 2025},
			ShardPattern:        "cluster_*.csv",
			Summary:             "resumen_cobranza_por_bancoFINAL.csv",
			SummaryWorkbook:     "resumen_cobranzaFINAL.xlsx",
			MonthlyChart:        "cobranza_mensualFINAL.png",
			TopBanksChart:       "top_bancosFINAL.png",
			RejectionChart:      "motivos_rechazoFINAL.png",
			ScenarioChart:       "comparacion_escenarios.png",
			ScenarioTable:       "comparacion_escenarios.csv",
			Recommendations:     "recomendaciones_personalizadas.csv",
			BestParams:          "mejores_parametros.json",
		},
		Scenario: ScenarioConfig{
			TargetBanks: []string{"BANORTE", "SANTANDER", "BBVA MEXICO"},
			Uplift:      DefaultUplift,
		},
		Model: ModelConfig{
			Seed:                DefaultSeed,
			TestFraction:        0.2,
			Trials:              DefaultTrials,
			TrialRounds:         1000,
			FinalRounds:         1500,
			EarlyStoppingRounds: 50,
			MaxConcurrency:      1,
			MaxBins:             255,
			MinDataInLeaf:       20,
		},
		Telemetry: TelemetryConfig{
			Environment:   "development",
			TraceExporter: "none",
			EnableMetrics: true,
			SampleRatio:   1.0,
		},
		Publish: PublishConfig{
			Sheets: SheetsConfig{
				SheetName:      "resumen",
				ChunkSize:      500,
				RequestsPerSec: 1,
				Timeout:        DefaultPublishTimeout,
			},
		},
	}
}
