package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/CognitionAI/metabase-mcp-server/internal/config"
)

// resolveConfigPath returns the config file the CLI is operating on: the
// --config flag when given, otherwise the default location.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultPath()
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the active metabase-mcp configuration",
	Long: `Config shows the resolved configuration: which file it came from,
whether that file exists, and the effective connection settings after
MB_URL / MB_API_KEY environment overrides.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file if missing",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	path := resolveConfigPath()

	exists := true
	if _, err := os.Stat(path); os.IsNotExist(err) {
		exists = false
	}

	cfg := &config.Config{}
	if exists {
		loaded, err := config.LoadFrom(path)
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}
		cfg = loaded
	}

	if isJSONOutput() {
		outputSuccess(map[string]any{
			"config_path":                path,
			"exists":                     exists,
			"url":                        cfg.URL,
			"api_key_set":                cfg.APIKey != "",
			"timeout_seconds":            int(cfg.Timeout().Seconds()),
			"metadata_fetch_concurrency": cfg.MetadataFetchConcurrency,
			"ui": map[string]any{
				"accent":     cfg.UI.Accent,
				"code_theme": cfg.UI.CodeTheme,
			},
		}, nil)
		return nil
	}

	if !exists {
		fmt.Printf("Config file does not exist: %s\n", path)
		fmt.Println("Run 'metabase-mcp config init' to create it.")
		return nil
	}

	fmt.Printf("config: %s\n", path)
	if cfg.URL != "" {
		fmt.Printf("url: %s\n", cfg.URL)
	} else {
		fmt.Println("url: (not set)")
	}
	if cfg.APIKey != "" {
		fmt.Println("api_key: (set)")
	}
	fmt.Printf("timeout: %s\n", cfg.Timeout())
	if cfg.MetadataFetchConcurrency > 0 {
		fmt.Printf("metadata_fetch_concurrency: %d\n", cfg.MetadataFetchConcurrency)
	}
	if cfg.UI.Accent != "" {
		fmt.Printf("ui.accent: %s\n", cfg.UI.Accent)
	}
	if cfg.UI.CodeTheme != "" {
		fmt.Printf("ui.code_theme: %s\n", cfg.UI.CodeTheme)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	targetPath := resolveConfigPath()
	_, statErr := os.Stat(targetPath)
	existed := statErr == nil
	if statErr != nil && !os.IsNotExist(statErr) {
		return handleError(ErrInternal, statErr, "")
	}

	createdPath, err := config.CreateDefaultAt(targetPath)
	if err != nil {
		return handleError(ErrFileWriteError, err, "")
	}

	if isJSONOutput() {
		outputSuccess(map[string]any{
			"config_path": createdPath,
			"created":     !existed,
		}, nil)
		return nil
	}

	if existed {
		fmt.Printf("Config already exists: %s\n", createdPath)
	} else {
		fmt.Printf("Created config: %s\n", createdPath)
	}
	return nil
}
