package journal

import (
	"bytes"
	"text/template"
	"time"

	"github.com/rustyeddy/riskparity/pkg/id"
	"github.com/rustyeddy/riskparity/report"
)

type orgView struct {
	Run
	Allocations []AllocationRecord
}

var runOrgFuncs = template.FuncMap{
	"pct":     func(x float64) float64 { return x * 100.0 },
	"short":   shortID,
	"money":   report.FormatMoney,
	"sym":     report.Symbol,
	"utc":     func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
	"started": startedAt,
}

// startedAt decodes the start time of a ULID run ID, or "" for other IDs.
func startedAt(runID string) string {
	t, err := id.Time(runID)
	if err != nil {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

const runOrgTemplate = `** Run: {{.Source}} ({{short .RunID}})
:PROPERTIES:
:RUN_ID:      {{.RunID}}
:ID:          {{.RunID}}
:CREATED:     {{utc .Created}}
{{- with started .RunID}}
:STARTED:     {{.}}
{{- end}}
:SOURCE:      {{.Source}}
:WORTH:       {{money .Worth (sym .Currency)}}
:CURRENCY:    {{.Currency}}
:CONFIDENCE:  {{printf "%.4f" .Confidence}}
:SIMULATIONS: {{.Simulations}}
:HORIZON:     {{.HorizonDays}}
:SEED:        {{.Seed}}
:ASSETS:      {{.Assets}}
:SKIPPED:     {{.Skipped}}
:END:

*** Allocation
| Asset | Weight % | Capital | Volatility | Historical VaR | Monte Carlo VaR |
|-------+----------+---------+------------+----------------+-----------------|
{{- range .Allocations}}
| {{.Asset}} | {{printf "%.2f" (pct .Weight)}} | {{money .Capital (sym $.Currency)}} | {{printf "%.6f" .Volatility}} | {{printf "%.6f" .HistoricalVaR}} | {{money .MonteCarloVaR (sym $.Currency)}} |
{{- end}}

*** Review
- 
`

var runOrg = template.Must(template.New("run").Funcs(runOrgFuncs).Parse(runOrgTemplate))

// FormatRunOrg renders a run and its allocations as an Org-mode block. The
// structured facts sit in a PROPERTIES drawer for search. Run IDs issued by
// pkg/id also yield a STARTED property decoded from the ID.
func FormatRunOrg(run Run, allocs []AllocationRecord) (string, error) {
	var buf bytes.Buffer
	if err := runOrg.Execute(&buf, orgView{Run: run, Allocations: allocs}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
