// Package cli holds the pdfchat command tree.
package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdfchat/cli/config"
	"github.com/pdfchat/cli/internal/api"
	"github.com/pdfchat/cli/internal/logging"
)

var (
	version = "dev"
	commit  = "unknown"
)

type options struct {
	configPath string
	apiURL     string
	verbose    bool
}

// runtime is what every command needs once flags are parsed
type runtime struct {
	cfg    *config.Config
	client *api.Client
	closer io.Closer
}

func (r *runtime) Close() error {
	return r.closer.Close()
}

// NewRootCmd builds the command tree. Running it without a subcommand starts
// the chat TUI.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "pdfchat",
		Short: "Chat with your PDFs from the terminal",
		Long: `pdfchat uploads a PDF to a document-chat server and lets you ask
questions about it, either in a full-screen chat or one command at a time.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file path (default is $HOME/.pdfchat/config.yaml)")
	root.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "API base URL (overrides config and "+config.EnvAPIURL+")")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	chat := newChatCmd(opts)
	root.RunE = chat.RunE
	root.Flags().AddFlagSet(chat.Flags())

	root.AddCommand(
		chat,
		newHealthCmd(opts),
		newUploadCmd(opts),
		newAskCmd(opts),
		newHistoryCmd(opts),
		newDocumentsCmd(opts),
		newMockServerCmd(opts),
	)
	return root
}

// setup loads config, configures logging and builds the API client. The TUI
// owns the terminal, so it logs to the configured file; everything else logs
// to stderr.
func (o *options) setup(cmd *cobra.Command, logToFile bool) (*runtime, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.apiURL != "" {
		cfg.API.BaseURL = strings.TrimRight(o.apiURL, "/")
	}

	logOpts := logging.Options{
		Level:    cfg.Log.Level,
		Verbose:  o.verbose,
		Fallback: cmd.ErrOrStderr(),
	}
	if logToFile {
		logOpts.File = cfg.Log.File
	}
	closer, err := logging.Setup(logOpts)
	if err != nil {
		return nil, err
	}

	client := api.NewClient(cfg.API.BaseURL, api.WithLogger(logging.For("api")))
	return &runtime{cfg: cfg, client: client, closer: closer}, nil
}

// resultErr turns a failed envelope into an error carrying the server's text
func resultErr[T any](r api.Result[T]) error {
	msg := r.Error
	if msg == "" {
		msg = "request failed"
	}
	if r.Kind == api.FailureTransport && r.Err != nil {
		return fmt.Errorf("%s: %w", msg, r.Err)
	}
	return errors.New(msg)
}
