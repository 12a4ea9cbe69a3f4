package auth

import "fmt"

// PrintSetupInstructions prints a walkthrough for obtaining Reddit API
// credentials. Shown by the auth login command before prompting.
func PrintSetupInstructions() {
	fmt.Println("To use the Reddit API you need a registered application.")
	fmt.Println()
	fmt.Println("1. Sign in to Reddit and open https://www.reddit.com/prefs/apps")
	fmt.Println("2. Click 'create another app...' at the bottom of the page")
	fmt.Println("3. Choose the 'script' app type")
	fmt.Println("4. Fill in a name and set the redirect URI to http://localhost:8080")
	fmt.Println("   (the redirect URI is required by the form but never used)")
	fmt.Println("5. Click 'create app'")
	fmt.Println()
	fmt.Println("The client ID is the string under the app name.")
	fmt.Println("The client secret is labeled 'secret' on the app page.")
	fmt.Println()
	fmt.Println("Reddit requires a descriptive User-Agent for API clients, e.g.")
	fmt.Println("  redscraper/1.0 (by /u/yourusername)")
	fmt.Println()
}
