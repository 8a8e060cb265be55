package config

// DefaultExcludedApps returns a curated list of apps that should never be
// sampled: password managers, banking clients, and other credential or
// financial surfaces. Matching is case-insensitive against both the app
// name and its identifier.
func DefaultExcludedApps() []string {
	return []string{
		// Password managers & keychains
		"1Password",
		"com.1password.1password",
		"Bitwarden",
		"com.bitwarden.desktop",
		"LastPass",
		"KeePassXC",
		"Keychain Access",
		"com.apple.keychainaccess",

		// System auth surfaces
		"SecurityAgent",
		"com.apple.SecurityAgent",

		// Banking & payments
		"Chase",
		"Bank of America",
		"Wells Fargo",
		"PayPal",
		"Venmo",

		// Crypto wallets
		"Ledger Live",
		"Exodus",

		// VPN / secrets tooling
		"Tunnelblick",
		"Secretive",
	}
}
