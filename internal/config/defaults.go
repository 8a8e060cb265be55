package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Capture: CaptureConfig{
			IntervalSeconds: 30,
			ExcludedApps:    DefaultExcludedApps(),
			OCREnabled:      true,
		},
		Aggregation: AggregationConfig{
			IntervalSeconds:   300,
			DebounceSeconds:   10,
			MinSamples:        3,
			DeleteImagesAfter: false,
		},
		Retention: RetentionConfig{
			SampleDays:         7,
			EntryDays:          90,
			SummaryDays:        365,
			UsageDays:          365,
			StorageBudgetBytes: 0,
			EvictStepDays:      5,
		},
		Storage: StorageConfig{
			Path:       "~/.config/retrace",
			SQLiteFile: "retrace.db",
			ImageDir:   "captures",
		},
	}
}
