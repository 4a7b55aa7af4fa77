// Package templates provides email template rendering
package templates

import (
	"bytes"
	"html/template"
	"log"
)

// LeadNotificationProps carries the values rendered into the lead
// notification email.
type LeadNotificationProps struct {
	Name         string
	Phone        string
	Email        string
	Message      string
	PropertyName string
	PropertyURL  string
	Source       string
	Medium       string
	Campaign     string
	LandingPage  string
}

var leadNotificationTemplate = template.Must(template.New("leadNotification").Parse(`
<!doctype html>
<html lang="en">
  <head>
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <meta http-equiv="Content-Type" content="text/html; charset=UTF-8">
    <title>New enquiry</title>
  </head>
  <body style="font-family: Helvetica, sans-serif; font-size: 16px; line-height: 1.4; background-color: #f4f5f6; margin: 0; padding: 24px;">
    <table role="presentation" border="0" cellpadding="0" cellspacing="0" style="background-color: #ffffff; border-radius: 8px; width: 100%; max-width: 600px; margin: 0 auto; padding: 24px;">
      <tr><td>
        <h2 style="margin-top: 0;">New enquiry from {{.Name}}</h2>
        <p><strong>Phone:</strong> {{.Phone}}</p>
        {{if .Email}}<p><strong>Email:</strong> {{.Email}}</p>{{end}}
        {{if .Message}}<p><strong>Message:</strong> {{.Message}}</p>{{end}}
        {{if .PropertyName}}<p><strong>Property:</strong> <a href="{{.PropertyURL}}">{{.PropertyName}}</a></p>{{end}}
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 16px 0;">
        <p style="color: #6b7280; font-size: 14px;">
          {{if .Source}}Source: {{.Source}}{{if .Medium}} / {{.Medium}}{{end}}{{if .Campaign}} / {{.Campaign}}{{end}}<br>{{end}}
          {{if .LandingPage}}Landing page: {{.LandingPage}}{{end}}
        </p>
      </td></tr>
    </table>
  </body>
</html>`))

// GetLeadNotificationContent renders the lead notification email body.
func GetLeadNotificationContent(props LeadNotificationProps) string {
	var buf bytes.Buffer
	if err := leadNotificationTemplate.Execute(&buf, props); err != nil {
		log.Printf("ERROR: Failed to render lead notification template: %v", err)
		return ""
	}
	return buf.String()
}
