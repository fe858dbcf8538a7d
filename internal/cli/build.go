package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/querybench/internal/highlight"
	"github.com/mesh-intelligence/querybench/internal/query"
	"github.com/mesh-intelligence/querybench/internal/sqlite"
)

// queryFlags are the builder inputs shared by build and run.
type queryFlags struct {
	user    string
	game    string
	average bool
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.user, "user", "", "filter on username")
	cmd.Flags().StringVar(&f.game, "game", "", "filter on game")
	cmd.Flags().BoolVar(&f.average, "avg", false, "build the average-score query (needs --user and --game)")
}

func (f *queryFlags) query() (query.Query, error) {
	if f.average {
		return query.Average(f.user, f.game)
	}
	return query.Filter(f.user, f.game), nil
}

func newBuildCmd() *cobra.Command {
	var qf queryFlags

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Print the filter or average query for the given inputs",
		Long: "Print the generated query text. Filter values are embedded as\n" +
			"literals, exactly as they will run with exec.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := qf.query()
			if err != nil {
				return err
			}
			return printQuery(cmd.OutOrStdout(), q.Render())
		},
	}
	qf.register(cmd)
	return cmd
}

func newRunCmd() *cobra.Command {
	var qf queryFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build the filter or average query and execute it",
		Long: "Build the query and execute it with filter values bound as\n" +
			"parameters, so quotes in a value cannot change the statement.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := qf.query()
			if err != nil {
				return err
			}
			text, params := q.Statement()
			return withStore(func(b *sqlite.Backend) error {
				res, err := b.ExecuteStatement(cmd.Context(), text, params...)
				if err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), res)
			})
		},
	}
	qf.register(cmd)
	return cmd
}

func newHighlightCmd() *cobra.Command {
	var words bool

	cmd := &cobra.Command{
		Use:   "highlight [text|-]",
		Short: "Report keyword spans in query text",
		Long: "Print the text with keywords coloured, or the spans as JSON with\n" +
			"--json. Offsets are byte offsets. Reads stdin when the argument is -\n" +
			"or missing.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := textArg(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			var opts []highlight.Option
			if words {
				opts = append(opts, highlight.WithWordBoundaries())
			}
			spans := highlight.New(opts...).Highlight(text)

			if flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), spans)
			}
			style := highlight.StyleFor(cmd.OutOrStdout())
			_, err = fmt.Fprintln(cmd.OutOrStdout(), highlight.Apply(text, spans, style))
			return err
		},
	}
	cmd.Flags().BoolVar(&words, "words", false, "only match whole words")
	return cmd
}

// textArg returns args[0], or all of stdin when args is empty or "-".
func textArg(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}
