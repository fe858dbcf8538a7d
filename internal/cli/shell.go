package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/querybench/internal/highlight"
	"github.com/mesh-intelligence/querybench/internal/query"
	"github.com/mesh-intelligence/querybench/internal/records"
	"github.com/mesh-intelligence/querybench/internal/sqlite"
	"github.com/mesh-intelligence/querybench/pkg/types"
)

const (
	shellPrompt     = "querybench> "
	shellContinue   = "       ...> "
	shellMaxLineLen = 1 << 20
)

const shellHelp = `.tables                               list tables with columns
.columns TABLE                        list columns of TABLE
.build [USER] [GAME]                  build the filter query ("-" skips a filter)
.avg USER GAME                        build the average-score query
.run                                  execute the last built query with bound values
.adduser USERNAME EMAIL               add a user
.addactivity USERNAME GAME SCORE DATE add an activity
.load users|activities FILE           bulk-load a record file
.help                                 show this help
.quit                                 leave the shell
Anything else is SQL; it runs once a line ends with ";".
`

func newShellCmd() *cobra.Command {
	var persist bool

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive session on one store",
		Long: "Start a line-oriented session. The store is in memory unless\n" +
			"--persist is given, and is seeded from the configured seed files.\n" +
			"Type .help for the dot commands.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := storeConfig()
			if err != nil {
				return err
			}
			if !persist && !cfg.InMemory {
				cfg.InMemory = true
				cfg.DataDir = ""
				cfg.Seed = seedConfig(current.v)
			}

			b, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer b.Detach()

			out := cmd.OutOrStdout()
			sh := &shell{store: b, out: out, style: highlight.StyleFor(out)}
			return sh.run(cmd.Context(), cmd.InOrStdin())
		},
	}
	cmd.Flags().BoolVar(&persist, "persist", false, "use the file store instead of a throwaway in-memory one")
	return cmd
}

// shell is one interactive session. SQL lines accumulate in pending until
// a line ends with ";".
type shell struct {
	store   *sqlite.Backend
	out     io.Writer
	style   highlight.Style
	pending strings.Builder
	last    *query.Query
}

func (s *shell) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), shellMaxLineLen)

	s.prompt()
	for scanner.Scan() {
		if s.handle(ctx, scanner.Text()) {
			return nil
		}
		s.prompt()
	}
	fmt.Fprintln(s.out)
	return scanner.Err()
}

func (s *shell) prompt() {
	if s.pending.Len() > 0 {
		fmt.Fprint(s.out, shellContinue)
		return
	}
	fmt.Fprint(s.out, shellPrompt)
}

// handle processes one input line and reports whether the session ends.
func (s *shell) handle(ctx context.Context, line string) bool {
	trimmed := strings.TrimSpace(line)
	if s.pending.Len() == 0 {
		if trimmed == "" {
			return false
		}
		if strings.HasPrefix(trimmed, ".") {
			quit, err := s.command(ctx, strings.Fields(trimmed))
			if err != nil {
				s.report(err)
			}
			return quit
		}
	}

	if s.pending.Len() > 0 {
		s.pending.WriteByte('\n')
	}
	s.pending.WriteString(line)
	text := s.pending.String()

	// Re-highlight the whole buffer on every edit.
	if len(s.style.Prefix) > 0 {
		fmt.Fprintln(s.out, highlight.Apply(text, highlight.Highlight(text), s.style))
	}

	if !strings.HasSuffix(strings.TrimSpace(text), ";") {
		return false
	}
	s.pending.Reset()

	res, err := s.store.Execute(ctx, text)
	if err != nil {
		s.report(err)
		return false
	}
	if err := printResult(s.out, res); err != nil {
		s.report(err)
	}
	return false
}

func (s *shell) command(ctx context.Context, fields []string) (bool, error) {
	name, args := fields[0], fields[1:]

	switch name {
	case ".quit", ".exit":
		return true, nil

	case ".help":
		_, err := fmt.Fprint(s.out, shellHelp)
		return false, err

	case ".tables":
		schema, err := s.store.DescribeSchema(ctx)
		if err != nil {
			return false, err
		}
		return false, printSchema(s.out, schema)

	case ".columns":
		if len(args) != 1 {
			return false, usageError(".columns TABLE")
		}
		cols, err := s.store.ListColumns(ctx, args[0])
		if err != nil {
			return false, err
		}
		return false, printList(s.out, cols)

	case ".build":
		if len(args) > 2 {
			return false, usageError(".build [USER] [GAME]")
		}
		user, game := optionalArg(args, 0), optionalArg(args, 1)
		q := query.Filter(user, game)
		s.last = &q
		return false, s.show(q.Render())

	case ".avg":
		if len(args) != 2 {
			return false, usageError(".avg USER GAME")
		}
		q, err := query.Average(args[0], args[1])
		if err != nil {
			return false, err
		}
		s.last = &q
		return false, s.show(q.Render())

	case ".run":
		if s.last == nil {
			return false, fmt.Errorf("%w: nothing built yet (use .build or .avg)", types.ErrValidation)
		}
		text, params := s.last.Statement()
		res, err := s.store.ExecuteStatement(ctx, text, params...)
		if err != nil {
			return false, err
		}
		return false, printResult(s.out, res)

	case ".adduser":
		if len(args) != 2 {
			return false, usageError(".adduser USERNAME EMAIL")
		}
		id, err := s.store.AddUser(ctx, args[0], args[1])
		if err != nil {
			return false, err
		}
		_, err = fmt.Fprintf(s.out, "User %s added successfully! (user_id %d)\n", args[0], id)
		return false, err

	case ".addactivity":
		if len(args) != 4 {
			return false, usageError(".addactivity USERNAME GAME SCORE DATE")
		}
		id, err := s.store.AddActivity(ctx, args[0], args[1], args[2], args[3])
		if err != nil {
			return false, err
		}
		_, err = fmt.Fprintf(s.out, "Activity for %s in %s added successfully! (activity_id %d)\n", args[0], args[1], id)
		return false, err

	case ".load":
		if len(args) != 2 {
			return false, usageError(".load users|activities FILE")
		}
		loadFn, ok := loaders[args[0]]
		if !ok {
			return false, usageError(".load users|activities FILE")
		}
		recs, err := records.Read(args[1])
		if err != nil {
			return false, err
		}
		n, err := loadFn(s.store, ctx, recs)
		fmt.Fprintf(s.out, "Loaded %s %s\n", humanize.Comma(int64(n)), args[0])
		return false, err

	default:
		return false, fmt.Errorf("%w: unknown command %s (try .help)", types.ErrValidation, name)
	}
}

func (s *shell) show(text string) error {
	_, err := fmt.Fprintln(s.out, highlight.Apply(text, highlight.Highlight(text), s.style))
	return err
}

func (s *shell) report(err error) {
	fmt.Fprintf(s.out, "Error: %v\n", err)
}

// optionalArg returns args[i], treating "-" and a missing argument as empty.
func optionalArg(args []string, i int) string {
	if i >= len(args) || args[i] == "-" {
		return ""
	}
	return args[i]
}

func usageError(usage string) error {
	return fmt.Errorf("%w: usage: %s", types.ErrValidation, usage)
}
