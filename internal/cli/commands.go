package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pdfchat/cli/internal/api"
	"github.com/pdfchat/cli/internal/logging"
	"github.com/pdfchat/cli/internal/mockapi"
	"github.com/pdfchat/cli/internal/ollama"
	"github.com/pdfchat/cli/internal/session"
	"github.com/pdfchat/cli/internal/tui"
)

func newChatCmd(opts *options) *cobra.Command {
	var theme string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open the full-screen chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.setup(cmd, true)
			if err != nil {
				return err
			}
			defer rt.Close()

			name := rt.cfg.UI.Theme
			if theme != "" {
				name = theme
			}
			th, ok := tui.ThemeByName(name)
			if !ok {
				logging.For("cli").Warnf("unknown theme %q, using %s", name, tui.Midnight.Name)
				th = tui.Midnight
			}

			ctrl := session.NewController(rt.client,
				session.WithWelcomeDelay(rt.cfg.UI.WelcomeDelay),
				session.WithLogger(logging.For("session")),
			)
			return tui.NewApp(cmd.Context(), rt.client, ctrl, th).Run()
		},
	}
	cmd.Flags().StringVar(&theme, "theme", "", "color theme ("+strings.Join(tui.ThemeNames(), ", ")+")")
	return cmd
}

func newHealthCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the server is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.setup(cmd, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			res := rt.client.Health(cmd.Context())
			if !res.OK() {
				return resultErr(res)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Server:    %s\n", rt.client.BaseURL())
			fmt.Fprintf(out, "Status:    %s\n", res.Data.Status)
			fmt.Fprintf(out, "Timestamp: %s\n", res.Data.Timestamp)
			fmt.Fprintf(out, "OpenAI:    %t\n", res.Data.OpenAIConfigured)
			return nil
		},
	}
}

func newUploadCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file.pdf>",
		Short: "Upload a PDF and print its document id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.setup(cmd, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			f, err := session.OpenFile(args[0])
			if err != nil {
				return err
			}

			ctrl := session.NewController(rt.client,
				session.WithWelcomeDelay(0),
				session.WithLogger(logging.For("session")),
			)
			if err := ctrl.Run(cmd.Context(), ctrl.BeginUpload(f)); err != nil {
				return err
			}
			st := ctrl.Snapshot()
			if st.Error != "" {
				return errors.New(st.Error)
			}
			if !st.Bound() {
				return errors.New(session.MsgUploadFailed)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Document ID: %s\n", st.Document.ID)
			fmt.Fprintf(out, "File:        %s (%s", f.Name, humanize.Bytes(uint64(f.Size())))
			if f.Pages > 0 {
				fmt.Fprintf(out, ", %d pages", f.Pages)
			}
			fmt.Fprintln(out, ")")
			fmt.Fprintf(out, "Chunks:      %d\n", st.Document.ChunkCount)
			return nil
		},
	}
}

func newAskCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <document-id> <question...>",
		Short: "Ask one question about an uploaded document",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args[1:], " ")
			if strings.TrimSpace(question) == "" {
				return errors.New("question is empty")
			}

			rt, err := opts.setup(cmd, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			res := rt.client.SendMessage(cmd.Context(), args[0], question)
			if !res.OK() {
				return resultErr(res)
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Data.Response)
			return nil
		},
	}
}

func newHistoryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "history <document-id>",
		Short: "Print the conversation held about a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.setup(cmd, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			res := rt.client.GetChatHistory(cmd.Context(), args[0])
			if !res.OK() {
				return resultErr(res)
			}

			out := cmd.OutOrStdout()
			if len(res.Data.ChatHistory) == 0 {
				fmt.Fprintln(out, "No messages yet.")
				return nil
			}
			for _, e := range res.Data.ChatHistory {
				fmt.Fprintf(out, "[%s]\n", e.Timestamp)
				fmt.Fprintf(out, "You: %s\n", e.UserMessage)
				fmt.Fprintf(out, "AI:  %s\n\n", e.AIResponse)
			}
			return nil
		},
	}
}

func newDocumentsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "documents",
		Aliases: []string{"docs"},
		Short:   "Manage uploaded documents",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List uploaded documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.setup(cmd, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			res := rt.client.ListDocuments(cmd.Context())
			if !res.OK() {
				return resultErr(res)
			}
			printDocuments(cmd.OutOrStdout(), res.Data.Documents)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <document-id>",
		Short: "Delete a document and its conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.setup(cmd, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			res := rt.client.DeleteDocument(cmd.Context(), args[0])
			if !res.OK() {
				return resultErr(res)
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Data.Message)
			return nil
		},
	}

	cmd.AddCommand(list, del)
	return cmd
}

func printDocuments(out io.Writer, docs []api.Document) {
	if len(docs) == 0 {
		fmt.Fprintln(out, "No documents uploaded yet.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFILENAME\tSIZE\tCHUNKS\tUPLOADED")
	for _, d := range docs {
		chunks := "-"
		if d.ChunkCount != nil {
			chunks = fmt.Sprint(*d.ChunkCount)
		}
		uploaded := d.UploadTime
		if at, err := time.Parse(time.RFC3339Nano, d.UploadTime); err == nil {
			uploaded = humanize.Time(at)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.ID, d.Filename, humanize.Bytes(uint64(d.Size)), chunks, uploaded)
	}
	w.Flush()
}

func newMockServerCmd(opts *options) *cobra.Command {
	var addr, ollamaURL, model string
	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Run a local fake of the document-chat API",
		Long: `mock-server runs an in-memory implementation of the document-chat API.
Answers quote the most relevant excerpt unless an Ollama server is given,
in which case a local model writes them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.setup(cmd, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			if addr == "" {
				addr = rt.cfg.Mock.Addr
			}
			if ollamaURL == "" {
				ollamaURL = rt.cfg.Mock.OllamaURL
			}
			if model == "" {
				model = rt.cfg.Mock.Model
			}

			serverOpts := []mockapi.Option{mockapi.WithLogger(logging.For("mockapi"))}
			if ollamaURL != "" {
				gen := ollama.NewClient(ollamaURL, model)
				selected, err := gen.SelectModel(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to select ollama model: %w", err)
				}
				logging.For("cli").WithField("model", selected).Info("answers will be generated by ollama")
				serverOpts = append(serverOpts, mockapi.WithGenerator(gen))
			}

			return mockapi.New(serverOpts...).ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :5000)")
	cmd.Flags().StringVar(&ollamaURL, "ollama-url", "", "Ollama server used to write answers, e.g. "+ollama.DefaultBaseURL)
	cmd.Flags().StringVar(&model, "model", "", "Ollama model (default: best installed)")
	return cmd
}
