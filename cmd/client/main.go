// Command empire is the command line client for an Empire's Legacy server.
package main

import "empires-legacy/internal/cli"

func main() {
	cli.Execute()
}
