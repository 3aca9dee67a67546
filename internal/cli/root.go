// Package cli implements contentctl, the operator command line for showcase collections.
package cli

import (
	"context"
	"fmt"
	"time"

	"showcase-cms/internal/content/domain/model"
	"showcase-cms/internal/content/gateway"
	"showcase-cms/internal/content/usecase"

	"github.com/caarlos0/env/v6"
	"github.com/spf13/cobra"
)

const heuristicEnv = "RECONCILE_PLACEHOLDER_HEURISTIC"

// ClientConfig locates the document store API. Flags override the environment.
// PlaceholderHeuristic must match the server's setting of the same variable.
type ClientConfig struct {
	APIURL               string        `env:"CONTENT_API_URL" envDefault:"http://localhost:3000"`
	Token                string        `env:"CONTENT_API_TOKEN"`
	Timeout              time.Duration `env:"CONTENT_API_TIMEOUT" envDefault:"10s"`
	PlaceholderHeuristic bool          `env:"RECONCILE_PLACEHOLDER_HEURISTIC" envDefault:"true"`
}

// LoadClientConfig reads ClientConfig from the environment.
func LoadClientConfig() (*ClientConfig, error) {
	cfg := &ClientConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to load client configuration: %w", err)
	}
	return cfg, nil
}

// Client is what the commands need from the document store.
type Client interface {
	gateway.Gateway
	Reconciled(ctx context.Context, parentID string, key model.CollectionKey) (*usecase.ReconciledCollection, error)
	ListParents(ctx context.Context, includeAll bool) ([]*model.ParentDocument, error)
	ResolveAsset(ctx context.Context, kind model.Kind, name string) (string, error)
	Notify(ctx context.Context, req *model.NotificationRequest) (*model.NotificationReceipt, error)
}

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ClientConfig
	Format string
}

func (o *RootOptions) client() Client {
	return gateway.NewHTTPGateway(o.APIURL, o.Token, o.Timeout)
}

// NewRootCommand creates contentctl with defaults taken from cfg.
func NewRootCommand(cfg *ClientConfig) *cobra.Command {
	opts := &RootOptions{ClientConfig: *cfg}

	cmd := &cobra.Command{
		Use:   "contentctl",
		Short: "Edit showcase collections from the terminal",
		Long: `contentctl edits the ordered collections of showcase pages (partners, guests,
gallery, coverage, highlights, award recipients, team members).

Every change loads the collection, applies one edit and saves the whole list.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Format != FormatText && opts.Format != FormatJSON {
				return fmt.Errorf("invalid output %q: must be %s or %s", opts.Format, FormatText, FormatJSON)
			}
			if opts.APIURL == "" {
				return fmt.Errorf("--api-url or CONTENT_API_URL is required")
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.APIURL, "api-url", cfg.APIURL, "document store base URL")
	cmd.PersistentFlags().StringVar(&opts.Token, "token", cfg.Token, "operator bearer token")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", cfg.Timeout, "per-request timeout")
	cmd.PersistentFlags().BoolVar(&opts.PlaceholderHeuristic, "placeholder-heuristic", cfg.PlaceholderHeuristic,
		"treat \"Partner N\" style names as defaults when merging (match the server)")
	cmd.PersistentFlags().StringVarP(&opts.Format, "output", "o", FormatText, "output format (text|json)")

	cmd.AddCommand(NewParentsCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewEditCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewMoveCommand(opts))
	cmd.AddCommand(NewResolveCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))
	cmd.AddCommand(NewNotifyCommand(opts))

	return cmd
}
