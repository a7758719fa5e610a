package config

const (
	defaultSourceDir  = "src"
	defaultOutputDir  = "dist"
	defaultScratchDir = ".tmp-build"
	defaultLogDir     = "~/.local/state/webfonts/logs"
	defaultStateDir   = "~/.local/state/webfonts"

	// DefaultSubsetterCommand drives cn-font-split; each optional CSS
	// descriptor is a single token so it drops out when empty.
	DefaultSubsetterCommand = "cn-font-split -i {input} -o {output} --target-type={format} " +
		"--css.font-family={family} --css.font-weight={weight} " +
		"--css.font-style={style} --css.font-display={display}"

	defaultArchiveTool           = "7z"
	defaultRequestTimeoutSeconds = 300
	defaultLogRetentionDays      = 30
)

// Default returns a Config populated with repository defaults. The subsetter
// command stays empty so normalization can consult WEBFONTS_SUBSETTER.
func Default() Config {
	return Config{
		Paths: Paths{
			SourceDir:  defaultSourceDir,
			OutputDir:  defaultOutputDir,
			ScratchDir: defaultScratchDir,
			LogDir:     defaultLogDir,
			StateDir:   defaultStateDir,
		},
		Acquisition: Acquisition{
			ArchiveTool:           defaultArchiveTool,
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
		},
		Logging: Logging{
			Format:        "console",
			Level:         "info",
			RetentionDays: defaultLogRetentionDays,
		},
		History: History{
			Enabled: true,
		},
	}
}
