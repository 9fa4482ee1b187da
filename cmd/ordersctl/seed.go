package main

import (
	"fmt"
	"io"
	"order-payment-engine/internal/model"
	"order-payment-engine/internal/repository"
	"order-payment-engine/internal/service"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Products []catalogEntry `yaml:"products"`
}

type catalogEntry struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Price    string `yaml:"price"`
	Currency string `yaml:"currency"`
	Stock    int    `yaml:"stock"`
}

func seedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert catalog products from a YAML file",
		Long: `Upsert catalog products from a YAML file. Existing skus get their
name, price, currency and stock replaced.

Example file:
  products:
    - id: mug-001
      name: Stoneware mug
      price: "500.00"
      currency: INR
      stock: 25`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			db, cfg, err := openDB()
			if err != nil {
				return err
			}

			products, err := loadCatalog(f, cfg.Gateway.Currency)
			if err != nil {
				return err
			}

			catalog := service.NewCatalogService(repository.NewProductRepository(db))
			if err := catalog.Seed(cmd.Context(), products); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d products\n", len(products))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog YAML file")
	cmd.MarkFlagRequired("file")

	return cmd
}

// loadCatalog parses a catalog file. Products without a currency get
// defaultCurrency.
func loadCatalog(r io.Reader, defaultCurrency string) ([]*model.Product, error) {
	var file catalogFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	products := make([]*model.Product, 0, len(file.Products))
	seen := make(map[string]bool)
	for i, entry := range file.Products {
		if entry.ID == "" {
			return nil, fmt.Errorf("product %d: missing id", i)
		}
		if seen[entry.ID] {
			return nil, fmt.Errorf("product %s: duplicate id", entry.ID)
		}
		seen[entry.ID] = true

		price, err := decimal.NewFromString(entry.Price)
		if err != nil {
			return nil, fmt.Errorf("product %s: price %q: %w", entry.ID, entry.Price, err)
		}
		currency := entry.Currency
		if currency == "" {
			currency = defaultCurrency
		}

		products = append(products, &model.Product{
			ID:       entry.ID,
			Name:     entry.Name,
			Price:    price,
			Currency: currency,
			Stock:    entry.Stock,
		})
	}
	return products, nil
}
