package journal

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"
)

var backtestOrgFuncs = template.FuncMap{
	"pct":    func(x float64) string { return fmt.Sprintf("%.2f", x*100) },
	"mul100": func(x float64) float64 { return x * 100.0 },
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
	"trade": FormatTradeOrg,
}

var backtestOrg = template.Must(template.New("backtest").Funcs(backtestOrgFuncs).Parse(BacktestOrgTemplate))

// Org renders the run as an org-mode entry.
func (r *BacktestRun) Org() (string, error) {
	buf := new(bytes.Buffer)
	if err := backtestOrg.Execute(buf, r); err != nil {
		return "", fmt.Errorf("journal: org report: %w", err)
	}
	return buf.String(), nil
}

// WriteOrg writes the org report to r.OrgPath.
func (r *BacktestRun) WriteOrg() error {
	if r.OrgPath == "" {
		return fmt.Errorf("journal: no org path")
	}
	s, err := r.Org()
	if err != nil {
		return err
	}
	return os.WriteFile(r.OrgPath, []byte(s), 0o644)
}

// FormatTradeOrg renders one round trip as an org heading with its facts in
// a PROPERTIES drawer.
func FormatTradeOrg(t TradeRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*** Trade: %s (%s)\n", t.Instrument, shortID(t.TradeID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":TRADE_ID: %s\n", t.TradeID)
	fmt.Fprintf(&b, ":INSTRUMENT: %s\n", t.Instrument)
	fmt.Fprintf(&b, ":SIZE: %.2f\n", t.Size)
	fmt.Fprintf(&b, ":ENTRY_PRICE: %.5f\n", t.EntryPrice)
	fmt.Fprintf(&b, ":EXIT_PRICE: %.5f\n", t.ExitPrice)
	fmt.Fprintf(&b, ":OPEN_TIME: %s\n", t.OpenTime.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, ":CLOSE_TIME: %s\n", t.CloseTime.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, ":BARS: %d-%d\n", t.EntryBar, t.ExitBar)
	fmt.Fprintf(&b, ":RETURN_PCT: %.2f\n", t.Return*100)
	fmt.Fprintf(&b, ":REALIZED_PL: %.2f\n", t.RealizedPL)
	fmt.Fprintf(&b, ":REASON: %s\n", t.Reason)
	b.WriteString(":END:\n")
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[len(full)-8:]
}

const BacktestOrgTemplate = `
* BACKTEST: {{.Strategy}} {{.Symbol}}
:PROPERTIES:
:RUN_ID:      {{if .RunID}}{{.RunID}}{{else}}(run-id?){{end}}
:STRATEGY:    {{.Strategy}}
:SYMBOL:      {{.Symbol}}
:DATASET:     {{if .Dataset}}{{.Dataset}}{{else}}(dataset?){{end}}
:START_DATE:  {{.Start.Format "2006-01-02"}}
:END_DATE:    {{.End.Format "2006-01-02"}}
:BARS:        {{.Bars}}
:TRADES:      {{.Trades}}
:WINS:        {{.Wins}}
:LOSSES:      {{.Losses}}
:WIN_RATE:    {{pct .WinRate}}
:RETURN_PCT:  {{pct .TotalReturn}}
:SHARPE:      {{printf "%.3f" .Sharpe}}
:MAX_DD_PCT:  {{pct .MaxDrawdown}}
{{- if .RiskEnabled}}
:START_CAP:   {{printf "%.2f" .StartCapital}}
:END_CAP:     {{printf "%.2f" .EndCapital}}
{{- end}}
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Configuration
| Parameter        | Value |
|------------------+-------|
| Parameters       | {{.Params}} |
| Slippage %       | {{printf "%.4f" (mul100 .Slippage)}} |
| Commission %     | {{printf "%.4f" (mul100 .Commission)}} |
{{- if .RiskEnabled}}
| Max position %   | {{pct .MaxPositionPct}} |
| Max daily loss % | {{pct .MaxDailyLossPct}} |
| Max open trades  | {{.MaxOpenTrades}} |
| Stop loss %      | {{pct .StopLossPct}} |
| Take profit %    | {{pct .TakeProfitPct}} |
{{- end}}

** Performance Summary
- Total Return:     *{{pct .TotalReturn}}%*
- Sharpe:           *{{printf "%.3f" .Sharpe}}*
- Max Drawdown:     *{{pct .MaxDrawdown}}%*
- Win Rate:         *{{pct .WinRate}}%*
- Profit Factor:    *{{if ne .ProfitFactor 0.0}}{{printf "%.2f" .ProfitFactor}}{{else}}(profit-factor?){{end}}*
{{- if .Rejected}}
- Rejected entries: *{{.Rejected}}*
{{- end}}

** Trade Distribution
| Outcome | Count |
|---------+-------|
| Wins    | {{.Wins}} |
| Losses  | {{.Losses}} |
| Total   | {{.Trades}} |

{{- if .Windows}}

** Walk-Forward Windows
| # | Start | End | Trades | Return % | Sharpe | Max DD % |
|---+-------+-----+--------+----------+--------+----------|
{{- range .Windows}}
| {{.Index}} | {{.Start.Format "2006-01-02"}} | {{.End.Format "2006-01-02"}} | {{.Trades}} | {{pct .TotalReturn}} | {{printf "%.3f" .Sharpe}} | {{pct .MaxDrawdown}} |
{{- end}}
{{- end}}

{{- if .TradeLog}}

** Trades
{{range .TradeLog}}{{trade .}}{{end}}
{{- end}}

{{- if .Notes }}
** Observations
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}
`
