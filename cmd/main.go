package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/linkmesh-ai/linkmesh/cmd/service"
)

func main() {
	root := &cobra.Command{
		Use:   "linkmesh",
		Short: "linkmesh",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("empty command")
		},
	}

	root.AddCommand(service.NewCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
