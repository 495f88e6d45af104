package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/chefbook/capture"
)

var captureTimeout time.Duration

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Read, save, copy or share a rendered recipe page",
	Long: `The capture commands load a recipe page from a running chefbook server
and act on the recipe it shows, like the buttons on the page itself.`,
}

var captureShowCmd = &cobra.Command{
	Use:   "show <url>",
	Short: "Print the recipe as plain text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := captureContext(cmd)
		defer cancel()
		_, draft, err := loadDraft(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), capture.FormatText(draft))
		return nil
	},
}

var captureSaveCmd = &cobra.Command{
	Use:   "save <url>",
	Short: "Save the recipe into the gallery",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := captureContext(cmd)
		defer cancel()
		client, draft, err := loadDraft(ctx, args[0])
		if err != nil {
			return err
		}
		out := terminal{w: cmd.OutOrStdout()}
		flow := &capture.SaveFlow{Saver: client, Alerter: out, Navigator: out}
		return flow.Run(ctx, draft)
	},
}

var captureCopyCmd = &cobra.Command{
	Use:   "copy <url>",
	Short: "Copy the recipe text to the clipboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := captureContext(cmd)
		defer cancel()
		_, draft, err := loadDraft(ctx, args[0])
		if err != nil {
			return err
		}
		out := terminal{w: cmd.OutOrStdout()}
		flow := &capture.CopyFlow{Alerter: out}
		if _, err := flow.Run(draft); err != nil {
			return err
		}
		fmt.Fprintln(out.w, "Copied!")
		return nil
	},
}

var captureShareCmd = &cobra.Command{
	Use:       "share <url> <facebook|twitter|whatsapp>",
	Short:     "Print the share link for a recipe page",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{string(capture.Facebook), string(capture.Twitter), string(capture.WhatsApp)},
	RunE: func(cmd *cobra.Command, args []string) error {
		link, err := capture.Share(terminal{w: cmd.OutOrStdout()}, capture.Platform(args[1]), args[0])
		if err != nil {
			return err
		}
		if link == "" {
			return fmt.Errorf("unknown platform %q", args[1])
		}
		return nil
	},
}

func init() {
	captureCmd.PersistentFlags().DurationVar(&captureTimeout, "timeout", 30*time.Second, "time allowed for the whole command")
	captureCmd.AddCommand(captureShowCmd, captureSaveCmd, captureCopyCmd, captureShareCmd)
}

// captureContext bounds a capture command, fetch and save together, by
// --timeout.
func captureContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, captureTimeout)
}

// loadDraft fetches the page at rawURL and collects its recipe. The client
// keeps the page's CSRF token for a following save.
func loadDraft(ctx context.Context, rawURL string) (*capture.Client, capture.Draft, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, capture.Draft{}, fmt.Errorf("invalid url %q", rawURL)
	}
	client, err := capture.NewClient(u.Scheme + "://" + u.Host)
	if err != nil {
		return nil, capture.Draft{}, err
	}
	doc, err := client.FetchPage(ctx, u.RequestURI())
	if err != nil {
		return nil, capture.Draft{}, err
	}
	draft := capture.CollectDocument(doc)
	if draft.Empty() {
		return nil, capture.Draft{}, capture.ErrEmptyDraft
	}
	return client, draft, nil
}

// terminal reports flow outcomes on w.
type terminal struct {
	w io.Writer
}

func (t terminal) Alert(message string) { fmt.Fprintln(t.w, message) }

func (t terminal) Navigate(path string) { fmt.Fprintf(t.w, "Saved. See %s\n", path) }

func (t terminal) Open(rawURL string) error {
	_, err := fmt.Fprintln(t.w, rawURL)
	return err
}
