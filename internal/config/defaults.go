package config

const (
	defaultDataDir               = "~/.local/share/statspub/data"
	defaultLogDir                = "~/.local/share/statspub/logs"
	defaultAnalyticsDir          = "~/.local/share/statspub/analytics"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultQueuePollInterval     = 5
	defaultErrorRetryInterval    = 10
	defaultAnalyticsRunInterval  = 300
	defaultScheduledScanInterval = 60
	defaultClaimConcurrency      = 4
)

// ProcessorPublicAPIQueries is the processor name for public API query call logs.
const ProcessorPublicAPIQueries = "public-api-queries"

// ProcessorPublicCSVDownloads is the processor name for public CSV download logs.
const ProcessorPublicCSVDownloads = "public-csv-downloads"

func defaultProcessors() []string {
	return []string{ProcessorPublicAPIQueries, ProcessorPublicCSVDownloads}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:      defaultDataDir,
			LogDir:       defaultLogDir,
			AnalyticsDir: defaultAnalyticsDir,
		},
		Workflow: Workflow{
			QueuePollInterval:     defaultQueuePollInterval,
			ErrorRetryInterval:    defaultErrorRetryInterval,
			AnalyticsRunInterval:  defaultAnalyticsRunInterval,
			ScheduledScanInterval: defaultScheduledScanInterval,
		},
		Analytics: Analytics{
			Enabled:          true,
			Processors:       defaultProcessors(),
			ClaimConcurrency: defaultClaimConcurrency,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
