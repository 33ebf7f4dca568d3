package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cloudcitycakeco/cakeorders/internal/config"
	"github.com/cloudcitycakeco/cakeorders/internal/order"
)

// NewOrderCmd returns the "order" command group for operating on orders
// without the HTTP server.
func NewOrderCmd(cfg *config.AppConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Inspect and update cake orders",
	}
	cmd.AddCommand(newOrderShowCmd(cfg), newOrderStatusCmd(cfg))
	return cmd
}

func newOrderShowCmd(cfg *config.AppConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print an order and its notification history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseOrderID(args[0])
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, verboseFlag(cmd))
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			o, err := a.orderSvc.GetOrder(cmd.Context(), id)
			if err != nil {
				return err
			}
			log, err := a.notificationSvc.ListOrderLog(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{"order": o, "notifications": log})
		},
	}
}

func newOrderStatusCmd(cfg *config.AppConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Move an order to a new status and send its notifications",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseOrderID(args[0])
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, verboseFlag(cmd))
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			change, err := a.orderSvc.ChangeStatus(cmd.Context(), id, order.ParseStatus(args[1]))
			if err != nil {
				return err
			}
			return printJSON(cmd, change)
		},
	}
}

func parseOrderID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid order id %q", s)
	}
	return id, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
