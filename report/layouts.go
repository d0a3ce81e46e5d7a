package report

const layouts = `
{{- define "rule"}}==================================================={{end}}

{{- define "offer"}}
  Audience:  {{text .Audience}}
  Pain:      {{text .Pain}}
  Promise:   {{text .Promise}}
  Mechanism: {{text .Mechanism}}
  Proof:     {{text .Proof}}
  Why now:   {{text .WhyNow}}
  Phrase:    {{phrase .}}
{{- end}}

{{- define "product"}}
{{template "rule"}}
PRODUCT LAB ({{.Progress.Product}}%)
{{template "rule"}}

[DIAGNOSTICS]
Most profitable audience: {{text .Product.TargetAudienceMostProfitable}}
Real value:               {{text .Product.RealValue}}
Top 3 pains:              {{text .Product.Top3Pains}}
80% of revenue now:       {{text .Product.Products80Now}}
80% of revenue next:      {{text .Product.Products80Future}}
Market does not need:     {{text .Product.WhatMarketDoesntNeed}}
7 second pitch:           {{text .Product.SevenSecondPitch}}

[PREMIUM OFFER]
{{- template "offer" .Product.PremiumOffer}}

[MASS OFFER]
{{- template "offer" .Product.MassOffer}}

[PRODUCT CALCULATOR]
{{- range .Products}}
{{inc .Index}}. {{.Item.Name}}
   Cost: {{money .Item.Cost $.Options.Currency}} | Price: {{money .Item.Price $.Options.Currency}}
   Margin: {{number .Metrics.Margin}} ({{percent .Metrics.MarginPercent}})
   Avg time: {{number .Item.AvgTime}} | Repeat rate: {{number .Item.RepeatRate}}% | Efficiency: {{number .Metrics.Efficiency}}
{{- else}}
{{"(not filled)"}}
{{- end}}
{{- with .Champion}}
Champion: {{.Item.Name}} (efficiency {{number .Metrics.Efficiency}})
{{- end}}
{{- if .Thin}}
Warning: every product keeps a margin below 20%.
{{- end}}
{{end}}

{{- define "economy"}}
{{template "rule"}}
ECONOMY LAB ({{.Progress.Economy}}%)
{{template "rule"}}

[P&L]
Revenue: {{money .Economy.Revenue .Options.Currency}}
COGS:    {{money .Economy.Cogs .Options.Currency}}
OPEX:    {{money .Economy.Opex .Options.Currency}}
Payroll: {{money .Economy.Payroll .Options.Currency}}
{{- with .Financials.Profit}}

Profit: {{money . $.Options.Currency}}
{{- end}}
{{- with .Financials.MarginPercent}}
Margin: {{percent .}} ({{$.Financials.Band}})
{{- end}}
{{- if .Financials.PayrollWarning}}
Warning: payroll is {{percent .Financials.PayrollRatio}} of revenue, above 40%.
{{- end}}

[GROWTH LEVERS]
{{- range .Levers}}
{{inc .Index}}. {{upper .Label}}
   Problem:         {{text .Problem}}
   Hypothesis:      {{text .Hypothesis}}
   Expected effect: {{text .ExpectedEffect}}
{{- else}}
{{"(not filled)"}}
{{- end}}

[MAIN LEVER]
{{with .MainLever}}Work on {{.Area.Label}}: {{.Hypothesis}}{{else}}(fill in the first lever){{end}}
{{end}}

{{- define "strategy"}}
{{template "rule"}}
STRATEGY LAB ({{.Progress.Strategy}}%)
{{template "rule"}}

[SCORES]
Sales:      {{score .Strategy.ScoreSales}}
Marketing:  {{score .Strategy.ScoreMarketing}}
Product:    {{score .Strategy.ScoreProduct}}
Team:       {{score .Strategy.ScoreTeam}}
Finance:    {{score .Strategy.ScoreFinance}}
Operations: {{score .Strategy.ScoreOps}}
{{- if .Scored}}

[POINT A]
Average score: {{printf "%.1f" .Average}} / 10
Weakest zones: {{range $i, $z := .Weakest}}{{if $i}}, {{end}}{{$z.Area.Label}} ({{$z.Score}}){{end}}
{{- end}}

[POINT B]
Money:   {{text .Strategy.TargetMoney}}
Team:    {{text .Strategy.TargetTeam}}
Product: {{text .Strategy.TargetProduct}}
Systems: {{text .Strategy.TargetSystems}}
Role:    {{text .Strategy.TargetRole}}
{{end}}

{{- define "status"}}
{{.Options.Title}}
Overall:  {{.Progress.Overall}}%
Product:  {{.Progress.Product}}%
Economy:  {{.Progress.Economy}}%
Strategy: {{.Progress.Strategy}}%
{{end}}

{{- define "full"}}
{{template "status" .}}
{{template "product" .}}
{{template "economy" .}}
{{template "strategy" .}}
{{- if .Insights}}
{{template "rule"}}
INSIGHTS
{{template "rule"}}
{{- range .Insights}}
[{{upper (print .Level)}}] {{.Message}}
{{- end}}
{{- end}}
{{end}}
`
