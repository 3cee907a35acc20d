package main

import (
	"context"

	"repcal/cmd/repcal/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
