package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/alterd/checkout/internal/catalog"
	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed [products.json]",
		Short: "Upsert products from a JSON array",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			products, err := readProducts(f)
			if err != nil {
				return err
			}

			db, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			repo := &catalog.Repo{DB: db}
			for _, p := range products {
				if err := repo.Upsert(cmd.Context(), p); err != nil {
					return fmt.Errorf("product %s: %w", p.ID, err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d product(s)\n", len(products))
			return nil
		},
	}
}

func productsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			products, err := (&catalog.Repo{DB: db}).List(cmd.Context())
			if err != nil {
				return err
			}
			printProducts(cmd.OutOrStdout(), products)
			return nil
		},
	}
}

func readProducts(r io.Reader) ([]catalog.Product, error) {
	var products []catalog.Product
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	for i, p := range products {
		if p.ID == "" || p.SKU == "" {
			return nil, fmt.Errorf("product #%d: id and sku are required", i)
		}
		if p.Price.Current.IsNegative() {
			return nil, fmt.Errorf("product %s: negative price", p.ID)
		}
		if p.Price.Currency == "" {
			products[i].Price.Currency = "INR"
		}
	}
	return products, nil
}

func printProducts(w io.Writer, products []catalog.Product) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSKU\tPRICE\tSTOCK\tTITLE")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s %s\t%d\t%s\n", p.ID, p.SKU, p.Price.Current.StringFixed(2), p.Price.Currency, p.Stock, p.Title)
	}
	_ = tw.Flush()
}
