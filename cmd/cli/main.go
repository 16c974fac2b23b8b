package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"pokedex/internal/grpcserver"
	"pokedex/internal/stream"
	"pokedex/pkg/logging"
)

const defaultBaseURL = "http://localhost:8080"

var (
	apiURL   string
	grpcAddr string
	timeout  time.Duration
	verbose  bool
	asJSON   bool

	logger = zap.NewNop()
	conn   *grpc.ClientConn
)

var rootCmd = &cobra.Command{
	Use:   "pokedex",
	Short: "Browse the Pokedex catalog service from the terminal",
	Long: `pokedex talks to a running api-server over HTTP, or to its gRPC
listener with --grpc. Listing flags mirror the web client's query string.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "warn"
		if verbose {
			level = "debug"
		}
		l, err := logging.New(level, "console")
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if conn != nil {
			_ = conn.Close()
		}
		_ = logger.Sync()
	},
}

func newBackend() (backend, error) {
	if grpcAddr == "" {
		return newHTTPBackend(apiURL, timeout), nil
	}
	cc, err := grpc.NewClient(grpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", grpcAddr, err)
	}
	conn = cc
	logger.Debug("using grpc backend", zap.String("addr", grpcAddr))
	return &grpcBackend{client: grpcserver.NewClient(cc)}, nil
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() { cancel(); stop() }
}

func addListFlags(cmd *cobra.Command, p *listParams, types *string) {
	cmd.Flags().IntVar(&p.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&p.Limit, "limit", 20, "entries per page (max 50)")
	cmd.Flags().StringVar(&p.Search, "search", "", "name or id substring")
	cmd.Flags().StringVar(types, "types", "", "comma-separated types; entries must have all of them")
	cmd.Flags().StringVar(&p.Sort, "sort", "id", "id, name or type")
}

func splitTypes(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func listCmd() *cobra.Command {
	var (
		p     listParams
		types string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of pokemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			b, err := newBackend()
			if err != nil {
				return err
			}
			p.Types = splitTypes(types)
			res, err := b.List(ctx, p)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			if err := printSummaries(cmd.OutOrStdout(), res.Pokemon); err != nil {
				return err
			}
			printPagination(cmd.OutOrStdout(), res.Pagination)
			return nil
		},
	}
	addListFlags(cmd, &p, &types)
	return cmd
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show the detail record of one pokemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id < 1 {
				return fmt.Errorf("invalid pokemon id %q", args[0])
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			b, err := newBackend()
			if err != nil {
				return err
			}
			d, err := b.Get(ctx, id)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), d)
			}
			return printDetail(cmd.OutOrStdout(), d)
		},
	}
}

func typesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the elemental types and their colors",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			b, err := newBackend()
			if err != nil {
				return err
			}
			types, err := b.Types(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), types)
			}
			for _, t := range types {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", t.Name, t.Color)
			}
			return nil
		},
	}
}

func watchCmd() *cobra.Command {
	var (
		p     listParams
		types string
		pages int
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Scroll through the listing over the stream socket",
		RunE: func(cmd *cobra.Command, args []string) error {
			// a scroll can outlive --timeout; only signals stop it
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p.Types = splitTypes(types)
			return watch(ctx, apiURL, p, pages, func(f stream.Frame) error {
				if asJSON {
					return printJSON(cmd.OutOrStdout(), f.ListResult)
				}
				if err := printSummaries(cmd.OutOrStdout(), f.Pokemon); err != nil {
					return err
				}
				printPagination(cmd.OutOrStdout(), f.Pagination)
				return nil
			})
		},
	}
	addListFlags(cmd, &p, &types)
	cmd.Flags().IntVar(&pages, "pages", 0, "stop after this many pages (0 = until the end)")
	return cmd
}

func exportCmd() *cobra.Command {
	var (
		p     listParams
		types string
		out   string
		limit int
	)
	cmd := &cobra.Command{
		Use:       "export <json|csv>",
		Short:     "Export listing summaries to a file",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"json", "csv"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			b, err := newBackend()
			if err != nil {
				return err
			}
			p.Types = splitTypes(types)
			items, err := fetchAll(ctx, b, p, limit)
			if err != nil {
				return fmt.Errorf("export %s failed: %w", args[0], err)
			}

			path := out
			if path == "" {
				path = "data/pokemon." + args[0]
			}
			if args[0] == "csv" {
				err = writeCSVFile(path, items)
			} else {
				err = writeJSONFile(path, items)
			}
			if err != nil {
				return fmt.Errorf("write %s failed: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d pokemon to %s\n", len(items), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&p.Search, "search", "", "name or id substring")
	cmd.Flags().StringVar(&types, "types", "", "comma-separated types")
	cmd.Flags().StringVar(&p.Sort, "sort", "id", "id, name or type")
	cmd.Flags().StringVar(&out, "out", "", "output path (default data/pokemon.<format>)")
	cmd.Flags().IntVar(&limit, "limit", 200, "max entries to export")
	return cmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("POKEDEX_API_URL", defaultBaseURL), "API base URL")
	rootCmd.PersistentFlags().StringVar(&grpcAddr, "grpc", os.Getenv("POKEDEX_GRPC_TARGET"), "gRPC address; when set, list/show/types/export use gRPC")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print raw JSON")

	rootCmd.AddCommand(listCmd(), showCmd(), typesCmd(), watchCmd(), exportCmd())
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
