// Command emcee updates the plugin archives of a directory to the latest
// catalog files built for a pinned game version.
package main

import "github.com/rosshadden/emcee/cmd/emcee/cmd"

func main() {
	cmd.Execute()
}
