package main

import (
	"fmt"
	"time"

	"github.com/Sternrassler/pagecache/pkg/batch"
	"github.com/Sternrassler/pagecache/pkg/pagecache"
	"github.com/spf13/cobra"
)

func getCmd(appFn func() *app) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "get URL [URL...]",
		Short: "Fetch one or more pages through the cache",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			fetcher := batch.NewFetcher(a.pages, batch.Config{
				MaxConcurrency: a.cfg.MaxConcurrency,
				Timeout:        a.cfg.Fetch.Timeout,
			})

			results, err := fetcher.FetchAll(cmd.Context(), args)
			out := cmd.OutOrStdout()
			for _, r := range results {
				if r.Error != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", r.URL, r.Error)
					continue
				}
				if quiet {
					fmt.Fprintf(out, "%s\t%d bytes\n", r.URL, len(r.Body))
					continue
				}
				if len(results) > 1 {
					fmt.Fprintf(out, "==> %s <==\n", r.URL)
				}
				fmt.Fprintln(out, r.Body)
			}
			return err
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Print sizes instead of bodies")
	return cmd
}

func countCmd(appFn func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "count URL",
		Short: "Print the access counter of a URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := appFn().pages.Count(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}

func demoCmd(appFn func() *app) *cobra.Command {
	var pause time.Duration

	cmd := &cobra.Command{
		Use:   "demo URL",
		Short: "Fetch a URL twice with a pause, with the direct and the wrapped variant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			wrapped := pagecache.Wrap(a.store, a.fetcher, a.cfg.TTL)
			return runDemo(cmd, a.pages, wrapped, args[0], pause)
		},
	}

	cmd.Flags().DurationVar(&pause, "pause", 5*time.Second, "Pause between the two fetches")
	return cmd
}

// runDemo shows cache behavior across a pause for both entry points.
func runDemo(cmd *cobra.Command, direct *pagecache.Cache, wrapped batch.Getter, url string, pause time.Duration) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	variants := []struct {
		name   string
		getter batch.Getter
	}{
		{"direct", direct},
		{"wrapped", wrapped},
	}

	for _, v := range variants {
		for i := 1; i <= 2; i++ {
			if i == 2 {
				select {
				case <-time.After(pause):
				case <-ctx.Done():
					return ctx.Err()
				}
			}

			body, err := v.getter.Get(ctx, url)
			if err != nil {
				return fmt.Errorf("%s fetch %d: %w", v.name, i, err)
			}
			n, err := direct.Count(ctx, url)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "--- %s #%d (count=%d) ---\n%s\n", v.name, i, n, body)
		}
	}
	return nil
}

func serveCmd(appFn func() *app) *cobra.Command {
	var listenAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve cached pages over HTTP",
		Long: `Serve cached pages over HTTP.

GET /page?url=... fetches any http or https URL a client supplies, including
hosts on the server's own network. Bind --listen to a trusted interface or put
the server behind an authenticating proxy.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			addr := a.cfg.ListenAddr
			if cmd.Flags().Changed("listen") {
				addr = listenAddr
			}
			return runServer(cmd.Context(), addr, newServer(a.pages, a.store, a.logger), a.logger)
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen", ":8080", "Listen address (overrides PAGECACHE_LISTEN_ADDR)")
	return cmd
}
