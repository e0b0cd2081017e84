package dashboard

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>Training runs</title></head>
<body style="font-family: Arial, sans-serif; margin: 20px">
<h2>Training runs</h2>
{{if .Runs}}
<ul>
{{range .Runs}}<li><a href="/runs/{{.}}">{{.}}</a></li>
{{end}}</ul>
{{else}}
<p>No parsed runs found. Run <code>trainlog parse</code> first.</p>
{{end}}
</body>
</html>
`))

var runTemplate = template.Must(template.New("run").Parse(`<!DOCTYPE html>
<html>
<head>
<title>Dashboard: {{.Run}}</title>
<script src="https://cdn.plot.ly/plotly-2.35.2.min.js"></script>
</head>
<body style="font-family: Arial, sans-serif; margin: 20px">
<h2>Dashboard run: {{.Run}}</h2>
<a href="/">&larr; Back to run list</a>
<div id="metrics"></div>
<div id="step-time"></div>
<div id="ret"></div>
<h4>Top 100 records by Ret</h4>
<div id="top" style="max-height: 400px; overflow: auto"></div>
<div id="avg-t-block"></div>
<h4>Successes and episodes per {{.BucketWidth}} steps</h4>
<div id="block-bars"></div>
<script>
const run = {{.Run}};
const api = p => fetch("/api/runs/" + encodeURIComponent(run) + p).then(r => r.json());

api("/summary").then(s => {
  document.getElementById("metrics").innerHTML =
    "<p>Total training time: " + s.total_hours.toFixed(2) + " h</p>" +
    "<p>Successful best records (Reward &ge; {{.SuccessReward}}): " + s.best_successes + "</p>";
});

api("/records").then(rows => {
  Plotly.newPlot("step-time", [{x: rows.map(r => r.step), y: rows.map(r => r.t), mode: "lines"}],
    {title: "Step time (t) vs Step", xaxis: {title: "Step"}, yaxis: {title: "t [s]"}});
  Plotly.newPlot("ret", [{x: rows.map(r => r.step), y: rows.map(r => r.ret), mode: "lines"}],
    {title: "Ret vs Step", xaxis: {title: "Step"}, yaxis: {title: "Ret"}});
});

api("/best?top=100").then(rows => {
  const cols = ["step", "episode", "decision", "eps", "lr", "ret", "last_crash", "t", "sf", "found", "reward"];
  let html = "<table border='1' cellpadding='4'><tr>" + cols.map(c => "<th>" + c + "</th>").join("") + "</tr>";
  for (const r of rows) {
    html += "<tr>" + cols.map(c => "<td>" + r[c] + "</td>").join("") + "</tr>";
  }
  document.getElementById("top").innerHTML = html + "</table>";
});

api("/buckets").then(bs => {
  Plotly.newPlot("avg-t-block", [{x: bs.map(b => b.step_block), y: bs.map(b => b.avg_t), mode: "lines+markers"}],
    {title: "Mean step time per {{.BucketWidth}}-step block", xaxis: {title: "Step block"}, yaxis: {title: "mean t [s]"}});
  Plotly.newPlot("block-bars", [
    {x: bs.map(b => b.step_block), y: bs.map(b => b.successes), type: "bar", name: "successes"},
    {x: bs.map(b => b.step_block), y: bs.map(b => b.episodes), type: "bar", name: "episodes"},
  ], {barmode: "group", xaxis: {title: "Step block"}});
});
</script>
</body>
</html>
`))

func (s *Server) indexPage(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.Runs()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, map[string]any{"Runs": runs}); err != nil {
		logrus.Warnf("rendering index: %v", err)
	}
}

func (s *Server) runPage(w http.ResponseWriter, r *http.Request) {
	run := chi.URLParam(r, "run")
	if _, err := s.store.Tables(run); err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := map[string]any{
		"Run":           run,
		"BucketWidth":   s.bucketWidth,
		"SuccessReward": s.successReward,
	}
	if err := runTemplate.Execute(w, data); err != nil {
		logrus.Warnf("rendering run page: %v", err)
	}
}
