// Package templates holds the server-rendered pages. Components are
// html/template bodies wrapped as templ.Component so handlers render them
// the same way as generated templ code.
package templates

import (
	"context"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/csg33k/txn-intake/internal/commission"
	"github.com/csg33k/txn-intake/internal/domain"
)

var funcs = template.FuncMap{
	"salePrice":   salePrice,
	"shortID":     shortID,
	"ago":         ago,
	"statusClass": statusClass,
	"roleLabel":   roleLabel,
}

var indexTmpl = template.Must(template.New("index").Funcs(funcs).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Transaction Intake</title>
<style>
  :root { --ink:#0d1117; --paper:#f5f0e8; --ledger:#e8e0cc; --accent:#c0392b; --accent2:#2c6e49; --muted:#6b5e4e; --rule:#b8a898; }
  body { background:var(--paper); color:var(--ink); font-family:system-ui,sans-serif; margin:0; }
  .wrap { max-width:1100px; margin:0 auto; padding:32px 24px; }
  .mono { font-family:ui-monospace,monospace; }
  .section-header { font-family:ui-monospace,monospace; font-size:0.7rem; font-weight:600; letter-spacing:0.18em;
    text-transform:uppercase; color:var(--muted); border-bottom:1px solid var(--rule); padding-bottom:4px; margin:24px 0 12px; }
  .card { background:rgba(255,255,255,0.7); border:1px solid var(--ledger); border-left:4px solid var(--ink); padding:20px; }
  table { width:100%; border-collapse:collapse; font-size:0.85rem; }
  th { text-align:left; font-family:ui-monospace,monospace; font-size:0.65rem; letter-spacing:0.1em; color:var(--muted); }
  td, th { padding:6px 8px; border-bottom:1px solid var(--ledger); }
  .ok { color:var(--accent2); } .failed { color:var(--accent); } .pending { color:var(--muted); }
  label { display:block; font-family:ui-monospace,monospace; font-size:0.6rem; font-weight:600; letter-spacing:0.1em;
    text-transform:uppercase; color:var(--muted); }
  input { border:1px solid var(--rule); border-bottom:2px solid var(--ink); padding:6px 8px; width:100%; box-sizing:border-box; }
  input.invalid { border-bottom-color:var(--accent); }
  .grid { display:grid; grid-template-columns:repeat(5,1fr); gap:12px; }
</style>
</head>
<body>
<div class="wrap">
  <h1 class="mono" style="margin:0">Transaction Intake</h1>
  <div style="color:var(--muted);font-size:0.85rem">Commission amounts paid as <strong>{{.Mode}}</strong></div>

  <div class="section-header">Commission calculator</div>
  <div class="card">
    <div class="grid" style="margin-bottom:0.75rem">
      <div><label for="salePrice">salePrice</label><input id="salePrice" name="salePrice" class="mono" placeholder="$0.00"></div>
    </div>
    <div class="grid" id="commission" data-mode="{{.Mode}}">
      {{range .Fields}}<div><label for="{{.}}">{{.}}</label><input id="{{.}}" name="{{.}}" class="mono"></div>{{end}}
    </div>
  </div>

  <div class="section-header">Recent submissions</div>
  {{if .Submissions}}
  <table>
    <thead><tr><th>ID</th><th>Submitted</th><th>Role</th><th>Property</th><th>Price</th><th>Status</th><th></th></tr></thead>
    <tbody>
    {{range .Submissions}}
      <tr>
        <td class="mono"><a href="/api/submissions/{{.ID}}">{{shortID .ID}}</a></td>
        <td title="{{.CreatedAt}}">{{ago .CreatedAt}}</td>
        <td>{{roleLabel .State.AgentData.Role}}</td>
        <td>{{.State.PropertyData.Address}}</td>
        <td class="mono">{{salePrice .State.PropertyData.SalePrice}}</td>
        <td class="{{statusClass .Status}}" title="{{.Error}}">{{.Status}}</td>
        <td><a href="/api/submissions/{{.ID}}/coversheet.pdf">cover sheet</a></td>
      </tr>
    {{end}}
    </tbody>
  </table>
  {{else}}
  <p style="color:var(--muted)">No submissions yet.</p>
  {{end}}
</div>
<script>
(function () {
  const root = document.getElementById("commission");
  const salePrice = document.getElementById("salePrice");
  const inputs = Array.from(root.querySelectorAll("input"));
  const state = () => Object.fromEntries(inputs.map(i => [i.name, i.value]));
  inputs.forEach(input => input.addEventListener("change", async () => {
    const res = await fetch("/api/commission/derive", {
      method: "POST",
      headers: {"Content-Type": "application/json"},
      body: JSON.stringify({
        field: input.name,
        value: input.value,
        state: state(),
        salePrice: salePrice.value,
        mode: root.dataset.mode,
      }),
    });
    if (!res.ok) return;
    const body = await res.json();
    const next = body.data.state;
    inputs.forEach(i => {
      if (i !== input && next[i.name] !== undefined) i.value = next[i.name];
      i.classList.toggle("invalid", body.data.status[i.name] === "invalid");
    });
  }));
})();
</script>
</body>
</html>`))

type indexData struct {
	Mode        commission.PaidMode
	Fields      []string
	Submissions []domain.Submission
}

// Index lists recent submissions and hosts the commission calculator.
func Index(submissions []domain.Submission, mode commission.PaidMode) templ.Component {
	data := indexData{Mode: mode, Submissions: submissions}
	for _, f := range []commission.Field{
		commission.TotalCommissionPercentage,
		commission.ListingAgentPercentage,
		commission.BuyersAgentPercentage,
		commission.SellerPaidPercentage,
		commission.BuyerPaidPercentage,
	} {
		data.Fields = append(data.Fields, string(f))
	}
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return indexTmpl.Execute(w, data)
	})
}
