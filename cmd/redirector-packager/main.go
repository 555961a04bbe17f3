package main

import "github.com/oshokin/redirector-packager/cmd/redirector-packager/cmd"

func main() {
	cmd.Execute()
}
