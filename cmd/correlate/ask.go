package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"basegraph.app/correlate/internal/bootstrap"
	"basegraph.app/correlate/internal/model"
	"basegraph.app/correlate/internal/retriever"
	"basegraph.app/correlate/internal/synth"
)

var (
	askJSON    bool
	askSources []string
	askSession string
	searchTop  int
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from tickets, git history, code and documents",
	Long: `Answer a natural-language question with citations. Without an argument,
ask starts an interactive session that reads one question per line; each
question sees the previous answers. --session continues an earlier one.

Examples:
  correlate ask "why did we move auth to JWT?" --org 42
  correlate ask --org 42 --source tickets --source git`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := parseSources(askSources)
		if err != nil {
			return err
		}
		return withRuntime(cmd, func(ctx context.Context, rt *bootstrap.Runtime) error {
			asker := rt.Services.Synth()
			if asker == nil {
				return errors.New("answers are disabled: set LLM_API_KEY")
			}
			session := askSession
			ask := func(ctx context.Context, q string) (*model.Answer, error) {
				answer, err := asker.Ask(ctx, orgFlag, synth.Query{Question: q, Filter: filter, SessionID: session})
				if err != nil {
					return nil, err
				}
				session = answer.SessionID
				return answer, nil
			}
			if len(args) == 1 {
				answer, err := ask(ctx, args[0])
				if err != nil {
					return err
				}
				if askJSON {
					return printJSON(cmd, answer)
				}
				writeAnswer(cmd.OutOrStdout(), answer)
				fmt.Fprintf(cmd.ErrOrStderr(), "\nsession: %s\n", answer.SessionID)
				return nil
			}
			return repl(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), ask)
		})
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <kind> <query>",
	Short: "Hybrid semantic and keyword search within one entity kind",
	Long: `Examples:
  correlate search ticket "token refresh" --org 42
  correlate search code_file "jwt signer" --org 42 --top 20`,
	Args: cobra.ExactArgs(2),
	RunE: runJSON(func(ctx context.Context, rt *bootstrap.Runtime, args []string) (any, error) {
		return rt.Services.Retriever().Search(ctx, orgFlag, model.EntityKind(args[0]), args[1], searchTop)
	}),
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Print the full answer record as JSON")
	askCmd.Flags().StringSliceVar(&askSources, "source", nil, "Restrict sources: documents, tickets, git, code (default: all)")
	askCmd.Flags().StringVar(&askSession, "session", "", "Continue a conversation by session id")
	searchCmd.Flags().IntVar(&searchTop, "top", 10, "Maximum results")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(searchCmd)
}

func parseSources(raw []string) (retriever.Filter, error) {
	if len(raw) == 0 {
		return retriever.AllSources(), nil
	}
	var f retriever.Filter
	for _, s := range raw {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "documents", "docs":
			f.Documents = true
		case "tickets":
			f.Tickets = true
		case "git":
			f.Git = true
		case "code":
			f.Code = true
		default:
			return retriever.Filter{}, fmt.Errorf("unknown source %q", s)
		}
	}
	return f, nil
}

// repl answers one question per input line until EOF or quit.
func repl(ctx context.Context, in io.Reader, out, status io.Writer, ask func(context.Context, string) (*model.Answer, error)) error {
	fmt.Fprintln(status, "Enter your question (or 'quit' to exit):")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(status, "> ")
		if !scanner.Scan() {
			break
		}

		q := strings.TrimSpace(scanner.Text())
		if q == "" {
			continue
		}
		if q == "quit" || q == "exit" || q == "q" {
			break
		}

		answer, err := ask(ctx, q)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(status, "Error: %v\n", err)
			continue
		}
		writeAnswer(out, answer)
		fmt.Fprintln(out)
	}
	return scanner.Err()
}

func writeAnswer(w io.Writer, a *model.Answer) {
	fmt.Fprintln(w, a.Answer)
	if len(a.Sources) == 0 {
		return
	}
	fmt.Fprintln(w, "\nSources:")
	for _, s := range a.Sources {
		line := fmt.Sprintf("  [%s] %s %s", s.RefID, s.Kind, s.Key)
		if s.Title != "" && s.Title != s.Key {
			line += " - " + s.Title
		}
		if s.URL != nil {
			line += " (" + *s.URL + ")"
		}
		fmt.Fprintln(w, line)
	}
	if len(a.Degraded) > 0 {
		fmt.Fprintf(w, "\nUnavailable sources: %v\n", a.Degraded)
	}
}
