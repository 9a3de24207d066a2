package config

import "time"

// Application constants
const (
	AppName    = "cobranza"
	AppVersion = "1.0.0"

	// Directory holding the catalog and transaction extracts, relative to the base directory
	DefaultExtractDir = "ExtraccionDomiVersionFinal"

	DefaultLogLevel = "info"

	// Scenario defaults
	DefaultUplift = 0.2

	// Model defaults
	DefaultSeed   = 42
	DefaultTrials = 25

	DefaultPublishTimeout = 2 * time.Minute
)

// Column names shared by the loaders, the join and the trainer. Catalog and
// transaction columns are lowercased at load time.
const (
	ColBankID      = "idbanco"
	ColResponseID  = "idrespuestabanco"
	ColIssuerID    = "idemisora"
	ColListID      = "idlistacobro"
	ColYear        = "año"
	ColName        = "nombre"
	ColDescription = "descripcion"
	ColCollected   = "montocobrado"
	ColChargeDate  = "fechacobrobanco"
	ColMonth       = "mes"
	ColTotal       = "total_cobrado"
	ColAttempts    = "total_intentos"
	ColScenario    = "escenario"
)
