package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/keyxmakerx/tagboard/internal/membership"
	"github.com/keyxmakerx/tagboard/internal/plugins/products"
)

type previewOptions struct {
	rulesPath   string
	catalogPath string
	format      string
	strict      bool
}

func newPreviewCmd() *cobra.Command {
	var opts previewOptions

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Evaluate a collection rule against a catalog file",
		Long: `Reads a rule from a YAML file and a catalog from a JSON, YAML or XLSX
file, and prints the products the rule selects in collection order.

The XLSX layout is the one produced by "tagboardctl export".`,
		Example: `  tagboardctl preview --rules spring.yaml --catalog catalog.xlsx
  tagboardctl preview --rules spring.yaml --catalog catalog.json --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPreview(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.rulesPath, "rules", "", "YAML rule file (required)")
	cmd.Flags().StringVar(&opts.catalogPath, "catalog", "", "catalog file: .json, .yaml, .yml or .xlsx (required)")
	cmd.Flags().StringVar(&opts.format, "format", "table", "output format: table or json")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail when the rule would be rejected on save")
	_ = cmd.MarkFlagRequired("rules")
	_ = cmd.MarkFlagRequired("catalog")
	return cmd
}

func runPreview(out, errOut io.Writer, opts previewOptions) error {
	if opts.format != "table" && opts.format != "json" {
		return fmt.Errorf("unknown format %q, want table or json", opts.format)
	}

	rule, err := loadRule(opts.rulesPath)
	if err != nil {
		return err
	}
	if err := membership.Validate(rule); err != nil {
		if opts.strict {
			return fmt.Errorf("invalid rule: %w", err)
		}
		fmt.Fprintf(errOut, "warning: %v\n", err)
	}

	catalog, err := loadCatalog(opts.catalogPath)
	if err != nil {
		return err
	}

	result := membership.Evaluate(catalog, rule)
	if opts.format == "json" {
		return writeJSON(out, result, membership.Fingerprint(catalog, rule))
	}
	return writeTable(out, result, len(catalog))
}

// loadRule reads a rule file. Missing logic and sort fall back to the
// defaults a new collection gets.
func loadRule(path string) (membership.TagConditions, error) {
	rule := membership.DefaultConditions()
	data, err := os.ReadFile(path)
	if err != nil {
		return rule, fmt.Errorf("reading rules: %w", err)
	}
	if err := yaml.Unmarshal(data, &rule); err != nil {
		return rule, fmt.Errorf("parsing rules %s: %w", path, err)
	}
	if rule.Logic == "" {
		rule.Logic = membership.LogicAnd
	}
	if rule.Sort == "" {
		rule.Sort = membership.SortPopularity
	}
	return rule, nil
}

func loadCatalog(path string) ([]membership.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	var catalog []membership.Product
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		catalog, err = products.ReadCatalogXLSX(f)
	case ".json":
		err = json.NewDecoder(f).Decode(&catalog)
	case ".yaml", ".yml":
		err = yaml.NewDecoder(f).Decode(&catalog)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	return catalog, nil
}

func writeJSON(w io.Writer, result []membership.Product, fingerprint string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Fingerprint string               `json:"fingerprint"`
		Total       int                  `json:"total"`
		Products    []membership.Product `json:"products"`
	}{fingerprint, len(result), result})
}

func writeTable(w io.Writer, result []membership.Product, catalogSize int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tPRICE\tTAGS")
	for _, p := range result {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Name, p.Type, p.Price.StringFixed(2), strings.Join(p.TagIDs(), ","))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d of %d products\n", len(result), catalogSize)
	return err
}
