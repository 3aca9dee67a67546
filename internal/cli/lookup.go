package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"showcase-cms/internal/content/domain/model"

	"github.com/spf13/cobra"
)

// NewParentsCommand lists parent documents.
func NewParentsCommand(opts *RootOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:           "parents",
		Short:         "List events, registries and rosters",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			parents, err := opts.client().ListParents(cmd.Context(), all)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if opts.Format == FormatJSON {
				return writeJSON(w, parents)
			}
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tKIND\tTITLE\tVERSION\tPUBLISHED")
			for _, p := range parents {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%t\n", p.ID, p.Kind, p.Title, p.Version, p.Published)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include unpublished parents")
	return cmd
}

// NewResolveCommand prints the asset path the site would use for a name.
func NewResolveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "resolve <kind> <name>",
		Short:         "Resolve the asset path for a display name",
		Example:       `  contentctl resolve award_recipient "A. J. Jawad"`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := model.ParseKind(args[0])
			if err != nil {
				return err
			}
			path, err := opts.client().ResolveAsset(cmd.Context(), kind, args[1])
			if err != nil {
				return err
			}
			if opts.Format == FormatJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"kind": string(kind), "name": args[1], "path": path})
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

// NewNotifyCommand submits a record to the outbound notification channel.
func NewNotifyCommand(opts *RootOptions) *cobra.Command {
	var (
		channel   string
		subject   string
		recipient string
		fields    []string
	)

	cmd := &cobra.Command{
		Use:           "notify",
		Short:         "Submit a record for outbound notification",
		Example:       `  contentctl notify --channel contact --subject "Partnership enquiry" --field name=Asha --field email=asha@example.org`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			values := make(map[string]string, len(fields))
			for _, f := range fields {
				k, v, ok := strings.Cut(f, "=")
				if !ok || strings.TrimSpace(k) == "" {
					return fmt.Errorf("invalid --field %q: expected name=value", f)
				}
				values[strings.TrimSpace(k)] = v
			}
			req := &model.NotificationRequest{
				Channel:   channel,
				Subject:   subject,
				Recipient: recipient,
				Fields:    values,
			}
			receipt, err := opts.client().Notify(cmd.Context(), req)
			if receipt != nil {
				if opts.Format == FormatJSON {
					if werr := writeJSON(cmd.OutOrStdout(), receipt); werr != nil {
						return werr
					}
				} else if receipt.Accepted {
					fmt.Fprintf(cmd.OutOrStdout(), "accepted %s\n", receipt.ID)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "refused %s\n", receipt.ID)
				}
			}
			return err
		},
	}

	cmd.Flags().StringVar(&channel, "channel", "contact", "notification channel")
	cmd.Flags().StringVar(&subject, "subject", "", "subject line")
	cmd.Flags().StringVar(&recipient, "recipient", "", "recipient address")
	cmd.Flags().StringArrayVar(&fields, "field", nil, "name=value (repeatable)")
	return cmd
}
