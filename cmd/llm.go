package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/myenglish/internal/llm"
	"github.com/abhisek/myenglish/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect tutor requests",
	Long: `Every lesson content, grading, roleplay, lookup and speech request is
recorded in the local database. Use these commands to see what the tutor
was asked, what it answered, and what it cost.`,
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent tutor requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		failedOnly, _ := cmd.Flags().GetBool("failed")
		since, _ := cmd.Flags().GetDuration("since")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		opts := store.QueryOpts{}
		if since > 0 {
			opts.From = time.Now().Add(-since)
		}
		// Filters apply after the query, so only cap it when none is set.
		if purpose == "" && !failedOnly {
			opts.Limit = limit
		}
		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		var shown []store.LLMEvent
		for _, e := range events {
			if purpose != "" && e.Purpose != purpose {
				continue
			}
			if failedOnly && e.Success {
				continue
			}
			shown = append(shown, e)
			if limit > 0 && len(shown) == limit {
				break
			}
		}
		if len(shown) == 0 {
			fmt.Println("No tutor requests recorded.")
			return nil
		}

		const row = "%-5v  %-16s  %-19s  %-24s  %6v  %6v  %6v  %s\n"
		fmt.Printf(row, "ID", "Time", "Purpose", "Model", "In", "Out", "Ms", "Result")
		rule(100)
		for _, e := range shown {
			fmt.Printf(row,
				e.ID,
				e.Timestamp.Local().Format("01-02 15:04:05"),
				truncate(e.Purpose, 19),
				truncate(e.Model, 24),
				e.InputTokens,
				e.OutputTokens,
				e.LatencyMs,
				result(e),
			)
		}
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and reply of one request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q", args[0])
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("no request with ID %d", id)
		}

		fields := [][2]string{
			{"Time", e.Timestamp.Local().Format(time.DateTime)},
			{"Purpose", e.Purpose},
			{"Provider", e.Provider},
			{"Model", e.Model},
			{"Tokens", fmt.Sprintf("%d in, %d out", e.InputTokens, e.OutputTokens)},
			{"Latency", (time.Duration(e.LatencyMs) * time.Millisecond).String()},
			{"Result", result(*e)},
		}
		if c := llm.LookupCost(e.Model); c != nil {
			fields = append(fields, [2]string{"Cost", formatCost(c.Cost(e.InputTokens, e.OutputTokens))})
		}
		for _, f := range fields {
			fmt.Printf("%-9s %s\n", f[0]+":", f[1])
		}
		if e.ErrorMessage != "" {
			fmt.Printf("%-9s %s\n", "Error:", e.ErrorMessage)
		}

		section("PROMPT", e.RequestBody)
		section("REPLY", e.ResponseBody)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage per purpose and estimated cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		byPurpose, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		if len(byPurpose) == 0 {
			fmt.Println("No tutor requests recorded.")
			return nil
		}

		const usageRow = "%-20s  %6v  %10v  %10v  %8v\n"
		fmt.Printf(usageRow, "Purpose", "Calls", "Input", "Output", "Avg ms")
		rule(62)
		var total store.LLMUsage
		for _, u := range byPurpose {
			fmt.Printf(usageRow, u.Purpose, u.Calls, u.InputTokens, u.OutputTokens, u.AvgLatencyMs)
			total.Calls += u.Calls
			total.InputTokens += u.InputTokens
			total.OutputTokens += u.OutputTokens
		}
		rule(62)
		fmt.Printf(usageRow, "TOTAL", total.Calls, total.InputTokens, total.OutputTokens, "")

		byModel, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}

		const costRow = "%-32s  %6v  %10s\n"
		fmt.Println()
		fmt.Printf(costRow, "Model", "Calls", "Cost (USD)")
		rule(52)
		var sum float64
		var unpriced []string
		for _, u := range byModel {
			c := llm.LookupCost(u.Model)
			if c == nil {
				unpriced = append(unpriced, u.Model)
				fmt.Printf(costRow, truncate(u.Model, 32), u.Calls, "?")
				continue
			}
			usd := c.Cost(u.InputTokens, u.OutputTokens)
			sum += usd
			fmt.Printf(costRow, truncate(u.Model, 32), u.Calls, formatCost(usd))
		}
		rule(52)
		label := "TOTAL"
		if len(unpriced) > 0 {
			label = "TOTAL (excluding unpriced)"
		}
		fmt.Printf(costRow, label, "", formatCost(sum))
		if len(unpriced) > 0 {
			fmt.Printf("\nNo pricing for: %s\n", strings.Join(unpriced, ", "))
		}
		return nil
	},
}

// result renders the outcome column: "ok" or the failure reason recorded
// ahead of the error text.
func result(e store.LLMEvent) string {
	if e.Success {
		return "ok"
	}
	if reason, _, ok := strings.Cut(e.ErrorMessage, ":"); ok && !strings.Contains(reason, " ") {
		return reason
	}
	return "failed"
}

func section(title, body string) {
	fmt.Println()
	fmt.Println(title)
	rule(60)
	if strings.TrimSpace(body) == "" {
		body = "(not captured)"
	}
	fmt.Println(body)
}

func rule(n int) {
	fmt.Println(strings.Repeat("─", n))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only show one purpose (lesson-context, text-evaluation, tutor-reply, word-definition, speech, ...)")
	llmListCmd.Flags().Bool("failed", false, "Only show failed requests")
	llmListCmd.Flags().Duration("since", 0, "Only show requests newer than this (e.g. 2h)")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
