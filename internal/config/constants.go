package config

// Default paths
const (
	// DefaultDatabasePath is the default path for the library database
	DefaultDatabasePath = "./booklibrary.db"

	// DefaultCoversCacheDir is where downloaded cover images are kept
	DefaultCoversCacheDir = "./covers"

	// DefaultAuditDir is where import run records are written
	DefaultAuditDir = "./audit"
)
