package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"rblxlocate/pkg/auth"
	"rblxlocate/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage saved Roblox sessions",
	Long: `Manage saved .ROBLOSECURITY cookies so they need not be pasted on every run.

Cookies are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation

RBLXLOCATE_SECURITY is read as a read-only account named "env".`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [name]",
	Short: "Save a security cookie under a name",
	Long: `Save a .ROBLOSECURITY cookie in the system keychain or encrypted file.

You will be prompted for:
  - Account name (if not provided; defaults to "default")
  - Security cookie (hidden as you type)
  - User agent (optional, press Enter for the default)`,
	Example: `  # Interactive login
  rblxlocate auth login

  # Save under a name
  rblxlocate auth login alt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [name]",
	Short: "Remove a saved session",
	Long: `Remove a saved .ROBLOSECURITY cookie.

If no name is provided you will be shown the saved accounts to choose from.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sessions",
	Long:  `List saved accounts with their cookies masked.`,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	prompter := ui.NewPrompter(os.Stdin, os.Stdout)

	var name string
	if len(args) > 0 {
		name = strings.TrimSpace(args[0])
	}
	if name == "" {
		name, err = prompter.Ask("Account name (default): ")
		if err != nil {
			return err
		}
		if name == "" {
			name = "default"
		}
	}

	if existing, _ := manager.Retrieve(name); existing != nil {
		answer, err := prompter.Ask(fmt.Sprintf("Account '%s' already exists. Replace it? (y/N): ", name))
		if err != nil {
			return err
		}
		if !strings.HasPrefix(strings.ToLower(answer), "y") {
			return nil
		}
	}

	auth.ShowQuickGuide(os.Stdout)

	var token string
	for token == "" {
		answer, err := prompter.AskSecret(ui.SecurityPrompt)
		if err != nil {
			return err
		}
		if strings.EqualFold(answer, "help") {
			auth.ShowCookieGuide(os.Stdout)
			continue
		}
		token = auth.NormalizeToken(answer)
		if token == "" {
			return fmt.Errorf("security cookie is required")
		}
	}

	userAgent, err := prompter.Ask("User agent (press Enter for default): ")
	if err != nil {
		return err
	}

	account := &auth.Account{
		Name:          name,
		SecurityToken: token,
		UserAgent:     userAgent,
		LastModified:  time.Now(),
	}
	if err := manager.Store(account); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}

	ui.PrintSuccess("Account saved: " + name)
	ui.PrintInfo("Cookie", auth.SanitizeAccount(account).SecurityToken)
	fmt.Fprintf(ui.Stderr, "\nUse it with:\n  rblxlocate --account %s\n", name)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	if len(args) > 0 {
		return removeAccount(manager, args[0])
	}

	accounts, err := manager.List()
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}
	if len(accounts) == 0 {
		ui.PrintWarning("No saved accounts")
		return nil
	}

	fmt.Println("Select account to remove:")
	for i, account := range accounts {
		fmt.Printf("  %d. %s\n", i+1, account.Name)
	}
	fmt.Printf("  0. Cancel\n\n")

	prompter := ui.NewPrompter(os.Stdin, os.Stdout)
	answer, err := prompter.Ask("Choice: ")
	if err != nil {
		return err
	}

	choice, err := strconv.Atoi(answer)
	if err != nil || choice < 0 || choice > len(accounts) {
		return fmt.Errorf("invalid choice %q", answer)
	}
	if choice == 0 {
		return nil
	}
	return removeAccount(manager, accounts[choice-1].Name)
}

func removeAccount(manager *auth.Manager, name string) error {
	if err := manager.Delete(name); err != nil {
		return fmt.Errorf("failed to remove account: %w", err)
	}
	ui.PrintSuccess("Account removed: " + name)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	accounts, err := manager.List()
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}

	if len(accounts) == 0 {
		ui.PrintInfo("No saved accounts", "Use 'rblxlocate auth login' to add one")
		return nil
	}

	ui.PrintHighlight("Saved Accounts")
	fmt.Println()

	for i, account := range accounts {
		sanitized := auth.SanitizeAccount(account)
		fmt.Printf("%d. Name: %s\n", i+1, sanitized.Name)
		fmt.Printf("   Cookie: %s\n", sanitized.SecurityToken)
		if sanitized.UserAgent != "" {
			fmt.Printf("   User Agent: %s\n", sanitized.UserAgent)
		}
		fmt.Printf("   Last Modified: %s\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}
	return nil
}
