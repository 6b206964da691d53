package output

import (
	"bytes"
	_ "embed"
	"html/template"

	"github.com/rpgo/allocation-planner/internal/domain"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// HTMLFormatter produces a standalone HTML report from the markdown report.
type HTMLFormatter struct{}

func (h HTMLFormatter) Name() string { return "html" }

//go:embed templates/report.html.tmpl
var htmlTemplateSource string

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"curr": FormatCurrency,
}).Parse(htmlTemplateSource))

var markdownRenderer = goldmark.New(goldmark.WithExtensions(extension.GFM))

func (h HTMLFormatter) Format(plan *domain.RebalancePlan) ([]byte, error) {
	var body bytes.Buffer
	if err := markdownRenderer.Convert([]byte(planMarkdown(plan)), &body); err != nil {
		return nil, err
	}

	data := struct {
		Plan    *domain.RebalancePlan
		Summary PlanSummary
		Mix     []mixSegment
		Body    template.HTML
	}{plan, AnalyzePlan(plan), targetMix(plan), template.HTML(body.String())}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// mixSegment is one colored slice of the target allocation bar
type mixSegment struct {
	Name    string
	Color   template.CSS
	Percent string
}

func targetMix(plan *domain.RebalancePlan) []mixSegment {
	var mix []mixSegment
	for _, id := range sortedAssetIDs(plan.Metrics.TargetPercent) {
		pct := plan.Metrics.TargetPercent[id]
		if !pct.IsPositive() {
			continue
		}
		ac, _ := domain.LookupAssetClass(id)
		mix = append(mix, mixSegment{Name: ac.Name, Color: template.CSS(ac.Color), Percent: pct.StringFixed(2)})
	}
	return mix
}
