package main

import (
	"context"
	"fmt"
	"os"

	"github.com/zeu5/leanrl/commands"
)

func main() {
	rootCommand := commands.GetRootCommand()
	if err := rootCommand.ExecuteContext(context.Background()); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
