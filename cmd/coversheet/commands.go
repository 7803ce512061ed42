package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/csg33k/txn-intake/internal/adapters/pdf"
	"github.com/csg33k/txn-intake/internal/commission"
	"github.com/csg33k/txn-intake/internal/domain"
	"github.com/csg33k/txn-intake/internal/mapping"
	"github.com/csg33k/txn-intake/internal/placement"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "coversheet",
		Short:         "Inspect commission math, record mappings and cover sheets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newDeriveCmd(), newProjectCmd(), newRenderCmd(), newTablesCmd())
	return root
}

func newDeriveCmd() *cobra.Command {
	var field, value, statePath, mode, salePrice string
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Apply one commission edit and print the derived updates",
		Example: `  coversheet derive --field totalCommissionPercentage --value 6
  coversheet derive --field listingAgentPercentage --value 3 --state commission.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, ok := commission.ParseField(field)
			if !ok {
				return fmt.Errorf("unknown commission field %q", field)
			}
			paid, ok := commission.ParsePaidMode(mode)
			if !ok {
				return fmt.Errorf("--mode: want percentage or currency, got %q", mode)
			}
			var state domain.CommissionState
			if statePath != "" {
				if err := readJSON(statePath, &state); err != nil {
					return err
				}
			}
			opts := commission.Options{Mode: paid, SalePrice: salePrice}
			patch := commission.Derive(f, value, state, opts)
			merged := commission.Apply(state, f, value, patch)
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"patch":  patch,
				"state":  merged,
				"errors": commission.Validate(merged, paid),
			})
		},
	}
	cmd.Flags().StringVar(&field, "field", "", "commission field that was edited")
	cmd.Flags().StringVar(&value, "value", "", "new value of the field")
	cmd.Flags().StringVar(&statePath, "state", "", "JSON file with the commission state before the edit")
	cmd.Flags().StringVar(&mode, "mode", "percentage", "how paid amounts are entered: percentage or currency")
	cmd.Flags().StringVar(&salePrice, "sale-price", "", "sale price, required to convert in currency mode")
	_ = cmd.MarkFlagRequired("field")
	return cmd
}

func newProjectCmd() *cobra.Command {
	var in, schema string
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Print the external record payloads for a form",
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, err := readForm(in)
			if err != nil {
				return err
			}
			table, err := mapping.TransactionTable(schema)
			if err != nil {
				return err
			}
			tx, txErr := mapping.Project(state, table)
			clientTable := mapping.MustEmbedded("client")
			clients := make([]mapping.Fields, 0, len(state.Clients))
			errs := []error{txErr}
			for i, c := range state.Clients {
				f, err := mapping.Project(c, clientTable)
				if err != nil {
					errs = append(errs, fmt.Errorf("client %d: %w", i+1, err))
				}
				clients = append(clients, f)
			}
			out := map[string]any{"table": table.Name, "transaction": tx, "clients": clients}
			if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			return errors.Join(errs...)
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "JSON file with the submitted form")
	cmd.Flags().StringVar(&schema, "schema", "v2", "transaction schema version: v1 or v2")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func newRenderCmd() *cobra.Command {
	var in, out string
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the cover sheet PDF for a form",
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, err := readForm(in)
			if err != nil {
				return err
			}
			table, ins, err := placement.ProjectForRole(state, placement.NewFontMeasurer())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := pdf.NewRenderer().Render(table, ins, w); err != nil {
				return err
			}
			if out != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%s, %d instructions)\n", out, table.Name, len(ins))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "JSON file with the submitted form")
	cmd.Flags().StringVar(&out, "out", "cover-sheet.pdf", `output file, or "-" for stdout`)
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func newTablesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Work with the embedded mapping and placement tables",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate every embedded table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			var errs []error
			report := func(kind, name string, err error) {
				if err != nil {
					fmt.Fprintf(w, "FAIL %-9s %s: %v\n", kind, name, err)
					errs = append(errs, err)
					return
				}
				fmt.Fprintf(w, "ok   %-9s %s\n", kind, name)
			}
			for _, name := range mapping.EmbeddedNames() {
				_, err := mapping.Embedded(name)
				report("mapping", name, err)
			}
			for _, t := range placement.Tables() {
				report("placement", t.Name, t.Validate())
			}
			return errors.Join(errs...)
		},
	})
	return cmd
}

func readForm(path string) (*domain.TransactionFormState, error) {
	var state domain.TransactionFormState
	if err := readJSON(path, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
