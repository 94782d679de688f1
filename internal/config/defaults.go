package config

const (
	defaultLibraryDir    = "./lyrics"
	defaultLogDir        = "~/.local/share/genreshelf/logs"
	defaultStagingSuffix = "_temp"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultJournalName   = "history.db"
	defaultIndexColumn   = "Unnamed: 0"
)

// Default returns a Config populated with repository defaults. The taxonomy is
// left empty; it comes from the configuration file.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir:    defaultLibraryDir,
			LogDir:        defaultLogDir,
			StagingSuffix: defaultStagingSuffix,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Journal: Journal{
			Enabled: true,
		},
		Dataset: Dataset{
			IndexColumn: defaultIndexColumn,
			Columns:     map[string]string{},
		},
	}
}
