package report

import (
	"html/template"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/DrSkyle/cargoload/pkg/engine"
	"github.com/DrSkyle/cargoload/pkg/version"
)

// planWidth is the drawn size of the container's longer side, in pixels.
const planWidth = 480.0

type circle struct {
	ID     int
	CX, CY float64
	R      float64
	Color  string
	Value  float64
	Height float64
}

type level struct {
	Z       float64
	Width   float64
	Height  float64
	Circles []circle
}

type dashboardData struct {
	App       string
	Version   string
	Generated string
	Result    *engine.Result
	Levels    []level
	FillPct   float64
}

var dashboardTmpl = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"f2": func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) },
}).Parse(dashboardHTML))

// WriteDashboard renders the HTML plan view: summary cards followed by a
// top-down drawing of every height level.
func WriteDashboard(w io.Writer, res *engine.Result) error {
	return dashboardTmpl.Execute(w, buildDashboard(res, time.Now()))
}

// GenerateDashboard writes the HTML plan view to path.
func GenerateDashboard(res *engine.Result, path string) error {
	return writeFile(path, func(w io.Writer) error { return WriteDashboard(w, res) })
}

func buildDashboard(res *engine.Result, now time.Time) dashboardData {
	box := res.Container
	scale := 1.0
	if longest := math.Max(box.Length, box.Width); longest > 0 {
		scale = planWidth / longest
	}

	var levels []level
	for _, z := range res.Levels() {
		lv := level{Z: z, Width: box.Length * scale, Height: box.Width * scale}
		for _, c := range res.AtLevel(z) {
			color := c.Color
			if color == "" {
				color = "#888888"
			}
			lv.Circles = append(lv.Circles, circle{
				ID:     c.ID,
				CX:     c.X * scale,
				CY:     c.Y * scale,
				R:      c.Radius * scale,
				Color:  color,
				Value:  c.Value,
				Height: c.Height,
			})
		}
		levels = append(levels, lv)
	}

	return dashboardData{
		App:       version.AppName,
		Version:   version.Current,
		Generated: now.Format("2006-01-02 15:04:05"),
		Result:    res,
		Levels:    levels,
		FillPct:   res.FillRatio * 100,
	}
}

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.App}} Loading Plan</title>
    <style>
        :root {
            --bg: #050505;
            --surface: rgba(255, 255, 255, 0.03);
            --border: rgba(255, 255, 255, 0.1);
            --primary: #00FF99;
            --danger: #FF3366;
            --text: #F8FAFC;
            --text-dim: #94A3B8;
        }
        * { box-sizing: border-box; }
        body {
            background: var(--bg);
            color: var(--text);
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
            margin: 0;
            padding: 40px;
            font-size: 14px;
        }
        .header {
            display: flex;
            justify-content: space-between;
            align-items: center;
            margin-bottom: 40px;
            border-bottom: 1px solid var(--border);
            padding-bottom: 20px;
        }
        .logo { font-size: 1.5rem; font-weight: 700; letter-spacing: -1px; }
        .meta { color: var(--text-dim); }
        .kpi-grid {
            display: grid;
            grid-template-columns: repeat(4, 1fr);
            gap: 20px;
            margin-bottom: 40px;
        }
        .card {
            background: var(--surface);
            border: 1px solid var(--border);
            border-radius: 16px;
            padding: 24px;
        }
        .card h3 { margin: 0 0 10px 0; font-size: 0.75rem; color: var(--text-dim); text-transform: uppercase; letter-spacing: 1.2px; }
        .card .value { font-size: 2.5rem; font-weight: 700; }
        .card .value.safe { color: var(--primary); }
        .card .value.cost { color: var(--danger); }
        .levels { display: flex; flex-wrap: wrap; gap: 20px; }
        .level svg { background: var(--surface); border: 1px solid var(--border); }
        .level h2 { font-size: 0.9rem; color: var(--text-dim); }
    </style>
</head>
<body>
    <div class="header">
        <div class="logo">{{.App}} <span>{{.Version}}</span></div>
        <div class="meta">{{.Result.Strategy}} · Generated: {{.Generated}}</div>
    </div>

    <div class="kpi-grid">
        <div class="card"><h3>Loaded</h3><div class="value safe">{{.Result.PlacedCount}}</div></div>
        <div class="card"><h3>Unloaded</h3><div class="value cost">{{.Result.UnplacedCount}}</div></div>
        <div class="card"><h3>Total Value</h3><div class="value">{{f2 .Result.TotalValue}}</div></div>
        <div class="card"><h3>Fill</h3><div class="value">{{f2 .FillPct}}%</div></div>
    </div>

    <div class="levels">
    {{- range .Levels}}
        <div class="level">
            <h2>z = {{f2 .Z}}</h2>
            <svg width="{{f2 .Width}}" height="{{f2 .Height}}" viewBox="0 0 {{f2 .Width}} {{f2 .Height}}">
            {{- range .Circles}}
                <circle cx="{{f2 .CX}}" cy="{{f2 .CY}}" r="{{f2 .R}}" fill="{{.Color}}" fill-opacity="0.8" stroke="#F8FAFC" stroke-width="1"><title>#{{.ID}} value {{f2 .Value}} height {{f2 .Height}}</title></circle>
            {{- end}}
            </svg>
        </div>
    {{- end}}
    </div>
</body>
</html>
`
