package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/aegis-factor/internal/audit"
	"github.com/wonny/aegis-factor/internal/brain"
	"github.com/wonny/aegis-factor/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const dateLayout = "2006-01-02"

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Printf("⚠️  %s\n", message)
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Println(strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(values []string, widths []int) {
	for i, val := range values {
		fmt.Printf("%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Print("  ")
		}
	}
	fmt.Println()
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}

// PrintRunSummary prints the run header: id, stages and data shape
func PrintRunSummary(result *brain.RunResult) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  Run %s\n", result.RunID)
	PrintSeparator()
	PrintKeyValue("Config", shortHash(result.ConfigHash), 12)
	PrintKeyValue("Stages", strings.Join(result.CompletedStages, " → "), 12)
	if q := result.Quality; q != nil {
		PrintKeyValue("Data", fmt.Sprintf("%s (%d dates x %d assets)", q.Source, q.Dates, q.Assets), 12)
	}
	PrintKeyValue("Rebalances", strconv.Itoa(len(result.Rebalance)), 12)
	if r := result.Returns; r != nil {
		PrintKeyValue("Excluded", fmt.Sprintf("%d days undefined, %d dropped", r.ExcludedDays, r.DroppedDays), 12)
	}
	PrintKeyValue("Duration", result.Duration.Round(time.Millisecond).String(), 12)
	if q := result.Quality; q != nil {
		for _, w := range q.Warnings {
			PrintWarning(w)
		}
	}
}

// PrintReport prints the performance report
func PrintReport(r *audit.PerformanceReport) {
	if r == nil {
		return
	}
	PrintSeparator()
	PrintKeyValue("Period", fmt.Sprintf("%s ~ %s (%d days)", r.StartDate.Format(dateLayout), r.EndDate.Format(dateLayout), r.TradingDays), 14)
	PrintKeyValue("Total Return", pct(r.TotalReturn), 14)
	PrintKeyValue("CAGR", pct(r.CAGR), 14)
	PrintKeyValue("Volatility", pct(r.Volatility), 14)
	PrintKeyValue("Sharpe", fmt.Sprintf("%.2f", r.Sharpe), 14)
	PrintKeyValue("Sortino", fmt.Sprintf("%.2f", r.Sortino), 14)
	PrintKeyValue("Max Drawdown", pct(r.MaxDrawdown), 14)
	PrintKeyValue("Best Day", pct(r.BestDay), 14)
	PrintKeyValue("Worst Day", pct(r.WorstDay), 14)
	PrintKeyValue(fmt.Sprintf("VaR (%.0f%%)", r.TailRisk.Confidence*100), pct(r.TailRisk.VaR), 14)
	PrintKeyValue("CVaR", pct(r.TailRisk.ExpectedShortfall), 14)
	PrintDoubleSeparator()
}

// PrintSelection prints the members chosen on one rebalancing date
func PrintSelection(date time.Time, members []contracts.Member) {
	fmt.Println()
	fmt.Printf("📅 %s (%d selected)\n", date.Format(dateLayout), len(members))
	widths := []int{4, 12, 8, 10}
	PrintTableHeader([]string{"#", "Asset", "Rank", "Composite"}, widths)
	for i, m := range members {
		PrintTableRow([]string{
			strconv.Itoa(i + 1),
			m.Asset,
			strconv.FormatFloat(m.Rank, 'f', -1, 64),
			strconv.FormatFloat(m.Composite, 'f', -1, 64),
		}, widths)
	}
}

func pct(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
