// cmd/tools/catalog-tool/main.go
package main

import (
	"flag"
	"fmt"
	"os"

	"finsync-advisor/pkg/registry"
)

var catalogPath string

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	matchCmd := flag.NewFlagSet("match", flag.ExitOnError)

	validateCmd.StringVar(&catalogPath, "path", "configs/products.json", "Path to product catalog file")
	listCmd.StringVar(&catalogPath, "path", "configs/products.json", "Path to product catalog file")
	matchCmd.StringVar(&catalogPath, "path", "configs/products.json", "Path to product catalog file")

	amount := matchCmd.Int64("amount", 0, "Requested loan amount in rupees")
	tenure := matchCmd.Int("tenure", 0, "Requested tenure in months")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		runValidate()
	case "list":
		listCmd.Parse(os.Args[2:])
		runList()
	case "match":
		matchCmd.Parse(os.Args[2:])
		runMatch(*amount, *tenure)
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: catalog-tool <command> [flags]")
	fmt.Println("Commands:")
	fmt.Println("  validate  Validate the product catalog against its schema")
	fmt.Println("  list      List all offered loan products")
	fmt.Println("  match     Find products covering an amount and tenure")
}

func loadCatalog() *registry.Registry {
	catalog, err := registry.Load(catalogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Catalog failed validation: %v\n", err)
		os.Exit(1)
	}
	return catalog
}

func runValidate() {
	catalog := loadCatalog()
	fmt.Printf("✅ Catalog is valid (%d products)\n", len(catalog.Products()))
}

func runList() {
	catalog := loadCatalog()
	fmt.Printf("%-12s %-24s %12s %12s %8s %8s %6s\n",
		"PRODUCT", "NAME", "MIN AMOUNT", "MAX AMOUNT", "MIN MO", "MAX MO", "RATE")
	for _, p := range catalog.Products() {
		fmt.Printf("%-12s %-24s %12d %12d %8d %8d %5.1f%%\n",
			p.ProductID, p.Name, p.MinAmount, p.MaxAmount, p.MinTenure, p.MaxTenure, p.BaseRate)
	}
}

func runMatch(amount int64, tenure int) {
	if amount <= 0 || tenure <= 0 {
		fmt.Fprintln(os.Stderr, "match requires -amount and -tenure")
		os.Exit(1)
	}
	catalog := loadCatalog()
	matches := catalog.Match(amount, tenure)
	if len(matches) == 0 {
		fmt.Printf("No product covers ₹%d over %d months\n", amount, tenure)
		os.Exit(1)
	}
	for _, p := range matches {
		fmt.Printf("%s (%s) at %.1f%% base rate\n", p.ProductID, p.Name, p.BaseRate)
	}
}
