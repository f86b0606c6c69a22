package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"rblxlocate/pkg/config"
	"rblxlocate/pkg/roblox"
	"rblxlocate/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage rblxlocate configuration files.

Configuration is loaded from, highest priority first:
  - Command line flags
  - Environment variables (RBLXLOCATE_*)
  - .env in the working directory or ~/.rblxlocate.env
  - Configuration file
  - Default values`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with every available option.

The file is created in the current directory as 'rblxlocate.yaml' unless a
different path is given with --config.`,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Show the configuration after merging every source. The security cookie
is masked.`,
	RunE: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Load the configuration from every source and check it.

This command checks:
  - YAML syntax
  - Required fields
  - Value ranges
  - Headshot size`,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const exampleConfig = `# rblxlocate configuration file
#
# Every option can also be set with an environment variable prefixed with
# RBLXLOCATE_, e.g. RBLXLOCATE_SECURITY or RBLXLOCATE_MAX_CONCURRENT_PAGES.

roblox:
  # .ROBLOSECURITY cookie value. Prefer 'rblxlocate auth login' or the
  # RBLXLOCATE_SECURITY environment variable over storing it here.
  security: ""

  # Saved account to use when security is empty
  account: ""

  user_agent: ""
  games_base_url: "https://www.roblox.com"
  thumbnails_base_url: "https://thumbnails.roblox.com"

http:
  # Per-request timeout, e.g. "30s". 0 waits forever.
  timeout: 0s
  max_idle_conns: 100

search:
  # Instance listings carry 48x48 PNG headshots; other values rarely match.
  headshot_size: "extra_tiny"
  headshot_format: "png"

  # Page requests in flight at once. 0 sends them all together.
  max_concurrent_pages: 0

rate_limit:
  # 0 disables client-side throttling
  requests_per_minute: 0

retry:
  # A failed page aborts the scan unless retries are enabled
  enabled: false
  max_attempts: 3
  base_delay: 500ms
  max_delay: 10s
  multiplier: 2.0

logging:
  # debug, info, warn, error or disabled. Logs go to stderr.
  level: "warn"

  # Optional log file instead of stderr
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = "rblxlocate.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists: %s", configPath)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0600); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Save a session with 'rblxlocate auth login'")
	fmt.Println("2. Run 'rblxlocate config validate' to check the configuration")
	fmt.Println("3. Find a player with 'rblxlocate find <place-id> <user-id>'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	displayCfg := *cfg
	if displayCfg.Roblox.Security != "" {
		displayCfg.Roblox.Security = maskSecret(displayCfg.Roblox.Security)
	}

	data, err := yaml.Marshal(&displayCfg)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	source := configFile
	if source == "" {
		source = config.FindConfigFile()
	}
	if source == "" {
		source = "(none found)"
	}
	fmt.Printf("\nConfiguration file: %s\n", source)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	source := configFile
	if source == "" {
		source = config.FindConfigFile()
	}
	if source != "" {
		ui.PrintInfo("Validating configuration", source)
	}

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	var problems []string
	if _, err := roblox.ParseSize(cfg.Search.HeadshotSize); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		ui.PrintError("Configuration has errors:")
		for _, p := range problems {
			fmt.Printf("  - %s\n", p)
		}
		return fmt.Errorf("invalid configuration")
	}

	if cfg.Roblox.Security == "" && cfg.Roblox.Account == "" {
		ui.PrintWarning("No security cookie configured; a saved account or the prompt will be used")
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Headshot: %s %s\n", cfg.Search.HeadshotSize, cfg.Search.HeadshotFormat)
	fmt.Printf("  Max concurrent pages: %s\n", unlimited(cfg.Search.MaxConcurrentPages))
	fmt.Printf("  Rate limit: %s requests/minute\n", unlimited(cfg.RateLimit.RequestsPerMinute))
	fmt.Printf("  Retry: %t\n", cfg.Retry.Enabled)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
	return nil
}

func unlimited(n int) string {
	if n == 0 {
		return "unlimited"
	}
	return fmt.Sprint(n)
}

func maskSecret(s string) string {
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
