package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nexsupply/nexi"
	"github.com/nexsupply/nexi/internal/presentation/tui"
	"github.com/nexsupply/nexi/internal/runtime"
	"github.com/nexsupply/nexi/pkg/analysis"
	"github.com/nexsupply/nexi/pkg/domain"
	"github.com/spf13/cobra"
)

const editCommand = "/edit"

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Run the sourcing interview in the terminal",
	Long: `Asks the sourcing questions one by one. At the review step, type
"/edit <question-id> <new answer>" to change an earlier answer. When the
review is confirmed the analysis runs if an estimator is configured.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger, err := setup(cmd)
		if err != nil {
			fmt.Printf("Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		st, err := openStorage(cmd.Context(), cfg, logger)
		if err != nil {
			fmt.Printf("Error opening storage: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()

		svc, err := buildService(cmd.Context(), cfg, logger, st, nil)
		if err != nil {
			fmt.Printf("Error initializing nexi: %v\n", err)
			os.Exit(1)
		}

		ext := &domain.ExternalContext{}
		ext.ProjectName, _ = cmd.Flags().GetString("project")
		ext.MainChannel, _ = cmd.Flags().GetString("channel")
		ext.TargetMarkets, _ = cmd.Flags().GetStringSlice("market")
		ext.YearlyVolumePlan, _ = cmd.Flags().GetString("volume-plan")
		ext.TimelinePlan, _ = cmd.Flags().GetString("timeline-plan")
		analyze, _ := cmd.Flags().GetBool("analyze")

		tui.PrintBanner(os.Stdout, nexi.Version)
		c := &chat{
			svc:     svc,
			in:      bufio.NewScanner(cmd.InOrStdin()),
			out:     os.Stdout,
			render:  tui.NewRenderer(os.Stdout),
			analyze: analyze,
		}
		if err := c.run(cmd.Context(), ext); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("project", "", "Project name from onboarding")
	chatCmd.Flags().String("channel", "", "Main sales channel from onboarding (pre-fills the channel question)")
	chatCmd.Flags().StringSlice("market", nil, "Target markets from onboarding (the first pre-fills the market question)")
	chatCmd.Flags().String("volume-plan", "", "Yearly volume plan code from onboarding")
	chatCmd.Flags().String("timeline-plan", "", "Timeline plan from onboarding")
	chatCmd.Flags().Bool("analyze", true, "Run the analysis once the review is confirmed")
}

// chat drives one conversation over a line-based reader.
type chat struct {
	svc     *nexi.Service
	in      *bufio.Scanner
	out     io.Writer
	render  tui.Renderer
	analyze bool
}

func (c *chat) print(markdown string) {
	out, err := c.render(markdown)
	if err != nil {
		out = markdown
	}
	fmt.Fprintln(c.out, out)
}

func (c *chat) run(ctx context.Context, ext *domain.ExternalContext) error {
	state, prompt, err := c.svc.StartConversation(ctx, ext)
	if err != nil {
		return err
	}
	id := state.ID
	next := &prompt

	for next != nil {
		if next.Section == runtime.ReviewSection {
			summary, err := c.svc.Summary(ctx, id)
			if err != nil {
				return err
			}
			c.print(tui.FormatSummary(summary))
			c.print("_Type `" + editCommand + " <question-id> <answer>` to change an answer._")
		}
		c.print(tui.FormatPrompt(*next))

		fmt.Fprint(c.out, "> ")
		if !c.in.Scan() {
			fmt.Fprintln(c.out)
			return c.in.Err()
		}
		line := strings.TrimSpace(c.in.Text())
		if line == "exit" || line == "quit" {
			fmt.Fprintln(c.out, "Bye!")
			return nil
		}

		if rest, ok := strings.CutPrefix(line, editCommand+" "); ok {
			nodeID, answer, _ := strings.Cut(strings.TrimSpace(rest), " ")
			if _, err := c.svc.Revise(ctx, id, nodeID, answer); err != nil {
				c.reject(err)
			}
			continue
		}

		wasReview := next.Section == runtime.ReviewSection
		state, step, err := c.svc.Answer(ctx, id, line)
		if err != nil {
			if c.reject(err) {
				continue
			}
			return err
		}
		for _, m := range step.Messages {
			if m.Role == domain.RoleSystem {
				c.print(tui.FormatMessage(m))
			}
		}

		if wasReview && state.CurrentNodeID != next.NodeID && c.analyze {
			c.runAnalysis(ctx, id)
		}
		if step.Done {
			c.print(tui.FormatMessage(state.Messages[len(state.Messages)-1]))
		}
		next = step.Next
	}

	summary, err := c.svc.Summary(ctx, id)
	if err != nil {
		return err
	}
	c.print(tui.FormatSummary(summary))
	return nil
}

// reject prints a validation failure and reports whether the loop can
// continue.
func (c *chat) reject(err error) bool {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		c.print("> " + verr.Reason)
		return true
	}
	c.print("> " + err.Error())
	return false
}

func (c *chat) runAnalysis(ctx context.Context, id string) {
	attemptID, err := nexi.NewID()
	if err != nil {
		c.print("> " + err.Error())
		return
	}
	attempt := analysis.NewAttempt(attemptID, analysis.Subject{ClientKey: "cli"})
	_, result, err := c.svc.AnalyzeConversation(ctx, id, attempt)
	if err != nil {
		c.print(fmt.Sprintf("> Analysis unavailable (%s): %v", domain.KindOf(err), err))
		return
	}
	c.print(tui.FormatAnalysis(result))
}
