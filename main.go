// Command destrack tracks requirements and the implementation nodes that
// satisfy them.
package main

import "github.com/papapumpkin/destrack/cmd"

func main() {
	cmd.Execute()
}
