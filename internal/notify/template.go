package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/Masterminds/sprig/v3"
)

var emailTemplates = template.Must(
	template.New("emails").Funcs(sprig.FuncMap()).Parse(`
{{- define "order_updated" -}}
<h2>Order {{ .Order.ID }} updated</h2>
<p>Hi {{ default "there" .Order.UserName }},</p>
<p>Your order has been updated:</p>
<ul>
  <li>Status: <strong>{{ .Order.Status | title }}</strong></li>
  <li>Total: <strong>${{ printf "%.2f" .Order.Total }}</strong></li>
  {{- if .Order.PaymentMethod }}
  <li>Payment method: {{ .Order.PaymentMethod }}</li>
  {{- end }}
  {{- if .Order.Notes }}
  <li>Notes: {{ .Order.Notes }}</li>
  {{- end }}
</ul>
<p>Thanks for ordering with us.</p>
{{- end -}}

{{- define "tracking_updated" -}}
<h2>Your order {{ .Order.ID }} is on its way</h2>
<p>Hi {{ default "there" .Order.UserName }},</p>
<ul>
  {{- if .Tracking.Carrier }}
  <li>Carrier: {{ .Tracking.Carrier }}</li>
  {{- end }}
  {{- if .Tracking.TrackingNumber }}
  <li>Tracking number: <strong>{{ .Tracking.TrackingNumber }}</strong></li>
  {{- end }}
</ul>
{{- if .Tracking.TrackingURL }}
<p><a href="{{ .Tracking.TrackingURL }}">Track your delivery</a></p>
{{- end }}
{{- end -}}

{{- define "password_reset" -}}
<h2>Reset your password</h2>
<p>We received a request to reset your password. This link expires in one hour.</p>
<p><a href="{{ .ResetURL }}">Reset password</a></p>
<p>If you did not request this, you can ignore this email.</p>
{{- end -}}

{{- define "order_created" -}}
<h2>New order {{ .Order.ID }}</h2>
<p>A new order has been placed{{ if .Order.Email }} by {{ .Order.Email }}{{ end }}.</p>
<ul>
  <li>Total: <strong>${{ printf "%.2f" .Order.Total }}</strong></li>
  <li>Status: {{ .Order.Status | title }}</li>
  {{- if .Order.IsSample }}
  <li>Sample order</li>
  {{- end }}
</ul>
{{- end -}}
`))

func renderEmail(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
