package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"redscraper/pkg/auth"
	"redscraper/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Reddit API credentials",
	Long: `Manage stored Reddit API credentials securely.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read-only fallback)

Never share your credentials or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [profile]",
	Short: "Store Reddit API credentials securely",
	Long: `Store Reddit API credentials in the system keychain or encrypted file.

You will be prompted for:
  - Profile name (if not provided; 'default' is a good choice)
  - Client ID of your registered Reddit application
  - Client secret (hidden as you type)
  - User agent (optional, press Enter for default)`,
	Example: `  # Interactive login
  redscraper auth login

  # Store under a named profile
  redscraper auth login work`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [profile]",
	Short: "Remove stored credentials",
	Long: `Remove stored Reddit API credentials.

If no profile is provided, you will be shown a list of stored profiles
to choose from. You can also remove all profiles at once.`,
	Example: `  # Interactive logout
  redscraper auth logout

  # Remove a specific profile
  redscraper auth logout work`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored credential profiles",
	Long:  `List all stored credential profiles with the client secret masked.`,
	Run:   runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)
}

func runLogin(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	var name string
	if len(args) > 0 {
		name = args[0]
	}

	reader := bufio.NewReader(os.Stdin)

	auth.PrintSetupInstructions()

	if name == "" {
		fmt.Print("Profile name [default]: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			ui.PrintError("Failed to read profile name", err.Error())
			os.Exit(1)
		}
		name = strings.TrimSpace(input)
		if name == "" {
			name = "default"
		}
	}

	// Check if the profile already exists
	if existing, _ := manager.Retrieve(name); existing != nil {
		fmt.Printf("Profile '%s' already exists. Update credentials? (y/N): ", name)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
	}

	fmt.Print("Client ID: ")
	clientID, err := reader.ReadString('\n')
	if err != nil {
		ui.PrintError("Failed to read client ID", err.Error())
		os.Exit(1)
	}
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		ui.PrintError("Client ID is required", "")
		os.Exit(1)
	}

	fmt.Print("Client secret (hidden): ")
	clientSecret, err := readPassword()
	if err != nil {
		ui.PrintError("Failed to read client secret", err.Error())
		os.Exit(1)
	}
	if clientSecret == "" {
		ui.PrintError("Client secret is required", "")
		os.Exit(1)
	}

	fmt.Print("User agent (press Enter to use default): ")
	userAgent, _ := reader.ReadString('\n')
	userAgent = strings.TrimSpace(userAgent)

	creds := &auth.Credentials{
		Name:         name,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		UserAgent:    userAgent,
		LastModified: time.Now(),
	}

	if err := manager.Store(creds); err != nil {
		ui.PrintError("Failed to store credentials", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Credentials stored: " + name)

	fmt.Println("\nRun a collection with:")
	fmt.Println("  redscraper scrape")
	fmt.Println("\nUse this profile explicitly:")
	fmt.Printf("  redscraper scrape --profile %s\n", name)
}

func runLogout(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	if len(args) > 0 {
		name := args[0]
		if err := manager.Delete(name); err != nil {
			ui.PrintError("Failed to remove profile", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess("Profile removed: " + name)
		return
	}

	profiles, err := manager.List()
	if err != nil || len(profiles) == 0 {
		ui.PrintError("No stored profiles found", "")
		return
	}

	reader := bufio.NewReader(os.Stdin)

	if len(profiles) == 1 {
		creds := profiles[0]
		fmt.Printf("Remove profile '%s'? (y/N): ", creds.Name)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}

		if err := manager.Delete(creds.Name); err != nil {
			ui.PrintError("Failed to remove profile", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess("Profile removed: " + creds.Name)
		return
	}

	fmt.Println("Select profile to remove:")
	for i, creds := range profiles {
		fmt.Printf("  %d. %s\n", i+1, creds.Name)
	}
	fmt.Printf("  %d. Remove all profiles\n", len(profiles)+1)
	fmt.Printf("  0. Cancel\n\n")

	fmt.Print("Choice: ")
	input, _ := reader.ReadString('\n')

	var choice int
	fmt.Sscanf(strings.TrimSpace(input), "%d", &choice)

	switch {
	case choice == 0:
		return
	case choice == len(profiles)+1:
		fmt.Print("Remove ALL profiles? This cannot be undone! (yes/N): ")
		confirm, _ := reader.ReadString('\n')
		if strings.TrimSpace(confirm) != "yes" {
			return
		}

		if err := manager.DeleteAll(); err != nil {
			ui.PrintError("Failed to remove all profiles", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess("All profiles removed")
	case choice > 0 && choice <= len(profiles):
		creds := profiles[choice-1]
		if err := manager.Delete(creds.Name); err != nil {
			ui.PrintError("Failed to remove profile", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess("Profile removed: " + creds.Name)
	default:
		ui.PrintError("Invalid choice", "")
		os.Exit(1)
	}
}

func runList(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	profiles, err := manager.List()
	if err != nil {
		ui.PrintError("Failed to list profiles", err.Error())
		os.Exit(1)
	}

	if len(profiles) == 0 {
		ui.PrintInfo("No stored profiles", "Use 'redscraper auth login' to add one")
		return
	}

	ui.PrintHighlight("Stored Profiles")
	fmt.Println()

	for i, creds := range profiles {
		sanitized := auth.Sanitize(creds)
		fmt.Printf("%d. Profile: %s\n", i+1, sanitized.Name)
		fmt.Printf("   Client ID: %s\n", sanitized.ClientID)
		fmt.Printf("   Client Secret: %s\n", sanitized.ClientSecret)
		if sanitized.UserAgent != "" {
			fmt.Printf("   User Agent: %s\n", sanitized.UserAgent)
		}
		fmt.Printf("   Last Modified: %s\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}
}

// readPassword reads a secret from stdin without echoing
func readPassword() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		secret, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(secret)), nil
		}
	}

	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
