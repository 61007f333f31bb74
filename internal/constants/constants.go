package constants

import "time"

const (
	PlayerIndexTTL       = 24 * time.Hour
	NBARequestInterval   = 600 * time.Millisecond
	DefenseGamesAnalyzed = 10
)

const (
	ExternalAPITimeout = 15 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 60 * time.Second
	ScanTimeout        = 15 * time.Minute
)

const (
	DBMaxOpenConns    = 16
	DBMaxIdleConns    = 4
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBatchSize       = 100
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	MinAttemptsPerGame = 3.0
	RosterScanLimit    = 10
	ScanConcurrency    = 4
	TopPicksLimit      = 10
	RecentRunsLimit    = 10
	SearchResultLimit  = 10
)

// confidence weights and thresholds
const (
	RecentWeight       = 35.0
	RecentMakesCeiling = 5.0
	RecentFlagMakes    = 3.0
	MatchupWeight      = 30.0

	HighVolumeAttempts     = 6.0
	ModerateVolumeAttempts = 4.0
	LowVolumeAttempts      = 2.0
	HighVolumePoints       = 15.0
	ModerateVolumePoints   = 10.0
	LowVolumePoints        = 5.0

	ConsistentStdDev   = 1.5
	SteadyStdDev       = 2.5
	ConsistentPoints   = 10.0
	SteadyPoints       = 5.0
	InjuryScorePoints  = 10.0
	InjuryPredictBoost = 0.3

	MaxConfidence   = 100
	HighTierMin     = 70
	MediumTierMin   = 50
	InjuryStatusOut = "OUT"
)
