package cli

import (
	"github.com/spf13/cobra"
)

func newStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "檢查服務端狀態",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.printf("服務端: %s\n", a.settings.Server.URL)
			if err := a.client().Health(cmd.Context()); err != nil {
				a.printf("狀態:   不可用 (%v)\n", err)
				return err
			}
			a.printf("狀態:   正常\n")
			return nil
		},
	}
}
