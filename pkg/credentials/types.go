package credentials

// File is the on-disk shape of credentials.toml.
type File struct {
	Version int                `toml:"version"`
	Keys    map[string]KeyItem `toml:"keys"`
}

// KeyItem holds the API key for one embedding provider.
type KeyItem struct {
	APIKey string `toml:"api_key"`
}
