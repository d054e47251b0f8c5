package health

import (
	"bytes"
	"html/template"
)

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>MultiInvest · API Status</title>
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; background: #F8FAFC; color: #0F172A; margin: 0; padding: 40px 20px; }
    .wrap { max-width: 900px; margin: 0 auto; }
    h1 { font-size: 40px; margin: 0 0 8px 0; letter-spacing: -1px; }
    h1.issue { color: #B91C1C; }
    .sub { color: #64748B; margin-bottom: 30px; }
    .grid { display: grid; grid-template-columns: repeat(3, 1fr); gap: 16px; }
    .card { background: #fff; border-radius: 16px; padding: 24px; box-shadow: 0 10px 30px -10px rgba(15, 23, 42, 0.1); }
    .label { text-transform: uppercase; font-size: 11px; font-weight: 800; letter-spacing: 2px; color: #94A3B8; margin-bottom: 16px; }
    .big { font-size: 32px; font-weight: 900; margin-bottom: 10px; }
    .row { display: flex; justify-content: space-between; padding: 6px 0; font-size: 14px; font-weight: 600; }
    .ok { color: #047857; }
    .err { color: #DC2626; }
    .foot { margin-top: 24px; font-family: monospace; font-size: 13px; color: #475569; }
    a { color: #1E3A8A; }
    @media (max-width: 800px) { .grid { grid-template-columns: 1fr; } }
  </style>
</head>
<body>
  <div class="wrap">
    {{if eq .Status "ok"}}<h1>All Systems Operational</h1>{{else}}<h1 class="issue">System Issues Detected</h1>{{end}}
    <p class="sub">Request statistics and dependency checks. Raw data: <a href="/health/json">/health/json</a> · <a href="/health/errors">/health/errors</a></p>
    <div class="grid">
      <div class="card">
        <div class="label">Traffic</div>
        <div class="big">{{.Traffic.TotalRequests}}</div>
        <div class="row"><span>Successful</span><span class="ok">{{.Traffic.SuccessCount}}</span></div>
        <div class="row"><span>Failed</span><span class="err">{{.Traffic.FailedCount}}</span></div>
        <div class="row"><span>Success Rate</span><span>{{.Traffic.SuccessRate}}%</span></div>
        <div class="row"><span>Avg Latency</span><span>{{.Traffic.AvgResponseTime}}ms</span></div>
      </div>
      <div class="card">
        <div class="label">Runtime</div>
        <div class="big">{{.Runtime.UptimeSeconds}}s</div>
        <div class="row"><span>Heap Used</span><span>{{.Runtime.Memory.HeapUsed}} MB</span></div>
        <div class="row"><span>Goroutines</span><span>{{.Runtime.Goroutines}}</span></div>
        <div class="row"><span>Go</span><span>{{.Runtime.GoVersion}}</span></div>
        <div class="row"><span>Platform</span><span>{{.Runtime.Platform}}</span></div>
      </div>
      <div class="card">
        <div class="label">Connectivity</div>
        {{range .Deps}}<div class="row"><span>{{.Name}}</span><span class="{{if .OK}}ok{{else}}err{{end}}">{{.Status}}</span></div>
        {{end}}
      </div>
    </div>
    {{with .LastRequest}}<div class="foot">LAST INBOUND {{.Method}} {{.Path}} {{.IP}}</div>{{end}}
  </div>
</body>
</html>`))

type depRow struct {
	Name   string
	Status string
	OK     bool
}

type lastRequest struct {
	Method, Path, IP string
}

// RenderDashboardHTML returns the HTML status page for GET /.
func RenderDashboardHTML(health CollectResult) (string, error) {
	deps := make([]depRow, 0, len(health.Dependencies))
	for _, name := range health.DependencyNames() {
		d := health.Dependencies[name]
		deps = append(deps, depRow{Name: name, Status: d.Status, OK: d.Status == "connected" || d.Status == "reachable"})
	}
	var last *lastRequest
	if m, ok := health.Traffic.LastRequest.(map[string]interface{}); ok {
		last = &lastRequest{}
		last.Method, _ = m["method"].(string)
		last.Path, _ = m["path"].(string)
		last.IP, _ = m["ip"].(string)
	}
	var buf bytes.Buffer
	err := dashboardTmpl.Execute(&buf, struct {
		CollectResult
		Deps        []depRow
		LastRequest *lastRequest
	}{health, deps, last})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
