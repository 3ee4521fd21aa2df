package main

import "github.com/ptec-dev/audit-management/cmd"

func main() {
	cmd.Execute()
}
