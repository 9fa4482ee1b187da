package main

import (
	"encoding/json"
	"order-payment-engine/internal/dto"
	"order-payment-engine/internal/repository"

	"github.com/spf13/cobra"
)

func orderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "order [id]",
		Short: "Print an order with its items and status history as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := openDB()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			order, err := repository.NewOrderRepository(db).FindByID(ctx, args[0])
			if err != nil {
				return err
			}
			history, err := repository.NewHistoryRepository(db).ListByOrder(ctx, args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(&dto.OrderDetail{Order: order, History: history})
		},
	}
}
