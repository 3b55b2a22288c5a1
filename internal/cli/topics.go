package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/topic"
)

// TopicsOptions holds flags shared by the topics subcommands.
type TopicsOptions struct {
	*RootOptions
	APIURL  string        // overrides STOREFRONT_API_URL
	Timeout time.Duration // overrides STOREFRONT_TIMEOUT

	// RequestIDs overrides the X-Request-ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RequestIDs topic.RequestIDGenerator
}

// NewTopicsCommand creates the topics command and its subcommands.
func NewTopicsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TopicsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "topics",
		Short: "Manage the remote topic collection",
		Long: `List, save and delete topics in the remote collection.

The collection is reached at --api-url, then STOREFRONT_API_URL. Every
command makes its remote calls once; nothing is retried.`,
	}

	cmd.PersistentFlags().StringVar(&opts.APIURL, "api-url", "", "base URL of the topic collection")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 0, "timeout for each remote call")

	cmd.AddCommand(newTopicsListCommand(opts))
	cmd.AddCommand(newTopicsSaveCommand(opts))
	cmd.AddCommand(newTopicsDeleteCommand(opts))

	return cmd
}

func newTopicsListCommand(opts *TopicsOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List topics",
		Long: `Fetch the full topic collection.

Example:
  storefront topics list
  storefront topics list --api-url http://localhost:8080 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newTopicClient(opts, cmd)
			if err != nil {
				return err
			}
			if err := client.Load(cmd.Context()); err != nil {
				return formatter(opts.RootOptions, cmd).reportTopicError(err)
			}
			return printTopics(opts, cmd, client.Topics())
		},
	}
}

func newTopicsSaveCommand(opts *TopicsOptions) *cobra.Command {
	var id int64

	cmd := &cobra.Command{
		Use:   "save <title>...",
		Short: "Create topics or rename one",
		Long: `Save topics as one batch and print the refreshed collection.

Each title creates a topic. With --id, the single title renames that topic.

Example:
  storefront topics save "Go" "Rust"
  storefront topics save --id 3 "Zig"`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			drafts := make([]topic.Draft, 0, len(args))
			if cmd.Flags().Changed("id") {
				if len(args) != 1 {
					return NewExitError(ExitCommandError, "--id takes exactly one title")
				}
				drafts = append(drafts, topic.UpdateDraft(id, args[0]))
			} else {
				for _, title := range args {
					drafts = append(drafts, topic.NewDraft(title))
				}
			}

			client, err := newTopicClient(opts, cmd)
			if err != nil {
				return err
			}
			if err := client.Save(cmd.Context(), drafts...); err != nil {
				return formatter(opts.RootOptions, cmd).reportTopicError(err)
			}
			return printTopics(opts, cmd, client.Topics())
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "id of the topic to rename")

	return cmd
}

func newTopicsDeleteCommand(opts *TopicsOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete topics",
		Long: `Delete topics as one batch and print the refreshed collection.

Example:
  storefront topics delete 3 4`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					return NewExitError(ExitCommandError, fmt.Sprintf("invalid topic id %q", arg))
				}
				ids = append(ids, id)
			}

			client, err := newTopicClient(opts, cmd)
			if err != nil {
				return err
			}
			if err := client.Delete(cmd.Context(), ids); err != nil {
				return formatter(opts.RootOptions, cmd).reportTopicError(err)
			}
			return printTopics(opts, cmd, client.Topics())
		},
	}
}

// newTopicClient builds a client over the HTTP collection named by flags
// and configuration.
func newTopicClient(opts *TopicsOptions, cmd *cobra.Command) (*topic.Client, error) {
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return nil, err
	}
	if opts.APIURL != "" {
		cfg.APIURL = opts.APIURL
	}
	if opts.Timeout != 0 {
		cfg.Timeout = opts.Timeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	remote := topic.NewHTTPCollection(topic.HTTPConfig{
		BaseURL:    cfg.APIURL,
		Timeout:    cfg.Timeout,
		RequestIDs: opts.RequestIDs,
		Logger:     logger,
	})
	return topic.NewClient(remote, logger), nil
}

func printTopics(opts *TopicsOptions, cmd *cobra.Command, topics []topic.Topic) error {
	if opts.Format == "json" {
		return formatter(opts.RootOptions, cmd).Success(topics)
	}

	w := cmd.OutOrStdout()
	if len(topics) == 0 {
		fmt.Fprintln(w, "No topics.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tUPDATED")
	for _, t := range topics {
		id := "-"
		if t.ID != nil {
			id = strconv.FormatInt(*t.ID, 10)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", id, t.Title, t.UpdatedAt)
	}
	return tw.Flush()
}
