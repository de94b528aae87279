package main

import "yamdb/cmd/yamdb-admin/command"

func main() {
	command.Execute()
}
