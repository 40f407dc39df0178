// The main package for the snowcourse executable.
package main

import (
	"github.com/JakeFAU/snowcourse-crawler/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
