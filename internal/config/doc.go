// Package config provides centralized configuration management for the
// cobranza batch commands.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority)
//  2. YAML configuration file
//  3. Default values (lowest priority)
//
// All environment variables use the COBRANZA_ prefix:
//
//	COBRANZA_PATHS_BASE_DIR=/srv/cobranza
//	COBRANZA_LOGGING_LEVEL=debug
//	COBRANZA_SCENARIO_TARGET_BANKS=BANORTE,SANTANDER
//	COBRANZA_MODEL_TRIALS=25
//
// # Path Management
//
// Paths resolves every input and output location from the configured base
// directory, replacing any dependency on the working directory:
//
//	paths := cfg.ResolvePaths()
//	banks := paths.CatalogFile(paths.Files.Banks)
//	detail := paths.TransactionFile(2023)
package config
