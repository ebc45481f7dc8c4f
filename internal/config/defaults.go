package config

const (
	defaultDataDir = "~/.local/share/kr-notebook"
	defaultCardDB  = "~/.local/share/kr-notebook/learning.db"
	defaultLogDir  = "~/.local/share/kr-notebook/logs"

	defaultSiteBase               = "https://www.howtostudykorean.com"
	defaultUserAgent              = "kr-scraper/1.0 (Korean learning app; educational use)"
	defaultRequestDelayMS         = 500
	defaultPageTimeoutSeconds     = 30
	defaultDownloadTimeoutSeconds = 60

	defaultMinSilenceMS         = 200
	defaultSilenceThresholdDBFS = -40.0
	defaultPaddingMS            = 50
	defaultManualPaddingMS      = 75
	defaultResolutionMS         = 10
	defaultWorkers              = 4
	defaultFFmpegBinary         = "ffmpeg"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			CardDB:  defaultCardDB,
			LogDir:  defaultLogDir,
		},
		Scraper: Scraper{
			SiteBase:               defaultSiteBase,
			UserAgent:              defaultUserAgent,
			RequestDelayMS:         defaultRequestDelayMS,
			PageTimeoutSeconds:     defaultPageTimeoutSeconds,
			DownloadTimeoutSeconds: defaultDownloadTimeoutSeconds,
		},
		Segmentation: Segmentation{
			MinSilenceMS:         defaultMinSilenceMS,
			SilenceThresholdDBFS: defaultSilenceThresholdDBFS,
			PaddingMS:            defaultPaddingMS,
			ManualPaddingMS:      defaultManualPaddingMS,
			ResolutionMS:         defaultResolutionMS,
			Workers:              defaultWorkers,
			FFmpegBinary:         defaultFFmpegBinary,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
