// Command moments is a terminal client for paged moment feeds.
//
// Usage:
//
//	moments                 Open the feed TUI against the configured service
//	moments --offline       Open the feed TUI against the local database
//	moments serve           Run the fixture feed service over the local database
//	moments seed            Fill the local database with generated moments
package main

func main() {
	Execute()
}
