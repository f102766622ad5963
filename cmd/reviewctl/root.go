package main

import (
	"net/http"
	"os"
	"time"

	"github.com/Conceptual-Machines/reelmate-api/internal/client"
	"github.com/spf13/cobra"
)

const (
	defaultServer      = "http://localhost:8080"
	defaultHTTPTimeout = 5 * time.Minute
)

type rootOptions struct {
	server  string
	timeout time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "reviewctl",
		Short:         "Generate movie reviews from a reelmate-api server",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	server := os.Getenv("REELMATE_SERVER")
	if server == "" {
		server = defaultServer
	}
	root.PersistentFlags().StringVar(&opts.server, "server", server, "base URL of the API server")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", defaultHTTPTimeout, "overall request timeout")

	root.AddCommand(newReviewCmd(opts), newAnalyzeCmd(opts))
	return root
}

func (o *rootOptions) client() *client.Client {
	return client.New(o.server, &http.Client{Timeout: o.timeout})
}
