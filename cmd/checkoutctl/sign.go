package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alterd/checkout/internal/payments"
	"github.com/spf13/cobra"
)

// signCmd produces the signature the gateway would attach to a successful
// payment callback, for exercising verify-payment against a test key.
func signCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Compute a payment callback signature",
		Example: `  checkoutctl sign --order order_abc --payment pay_xyz
  RAZORPAY_KEY_SECRET=... checkoutctl sign --order order_abc --payment pay_xyz --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, _ := cmd.Flags().GetString("order")
			paymentID, _ := cmd.Flags().GetString("payment")
			asJSON, _ := cmd.Flags().GetBool("json")
			if orderID == "" || paymentID == "" {
				return errors.New("--order and --payment are required")
			}

			sig, err := payments.Sign([]byte(os.Getenv("RAZORPAY_KEY_SECRET")), orderID, paymentID)
			if errors.Is(err, payments.ErrMissingSecret) {
				return errors.New("RAZORPAY_KEY_SECRET is not set")
			}
			if err != nil {
				return err
			}

			if asJSON {
				fmt.Fprintf(cmd.OutOrStdout(),
					`{"razorpay_order_id":%q,"razorpay_payment_id":%q,"razorpay_signature":%q}`+"\n",
					orderID, paymentID, sig)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), sig)
			return nil
		},
	}
	cmd.Flags().String("order", "", "Gateway order id")
	cmd.Flags().String("payment", "", "Gateway payment id")
	cmd.Flags().Bool("json", false, "Print a verify-payment request body")
	return cmd
}
