// Command casectl searches, answers from and re-embeds the case corpus
// without the HTTP server.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
