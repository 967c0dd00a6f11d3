package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fnrelay/gateway/internal/signkey"
)

var errSignatureMismatch = errors.New("signature does not match")

func newSignCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sign <account-id>",
		Short: "Print the signature for an account id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, err := loadSigner(opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signer.Sign(args[0]))
			return nil
		},
	}
}

func newVerifyCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <account-id> <signature>",
		Short: "Check a signature against an account id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, err := loadSigner(opts)
			if err != nil {
				return err
			}
			if !signer.Verify(args[0], args[1]) {
				return errSignatureMismatch
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

func newRoutesCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the HTTP routes the gateway serves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			container, err := offlineContainer(cfg)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, route := range container.Server().Routes() {
				fmt.Fprintf(w, "%s\t%s\n", route.Method, route.Path)
			}
			return w.Flush()
		},
	}
}

func newFunctionsCommand(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "functions",
		Short: "List the functions discovery exposes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			container, err := offlineContainer(cfg)
			if err != nil {
				return err
			}
			catalog := container.Registry().Catalog()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(catalog)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, fn := range catalog.Functions {
				fmt.Fprintf(w, "%s\t%s\n", fn.Name, fn.Description)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full catalog as JSON")
	return cmd
}

func loadSigner(opts *rootOptions) (signkey.Signer, error) {
	cfg, err := opts.load()
	if err != nil {
		return signkey.Signer{}, err
	}
	signer, err := signkey.NewSigner(cfg.Secret)
	if err != nil {
		return signkey.Signer{}, fmt.Errorf("FNRELAY_SECRET: %w", err)
	}
	return signer, nil
}
