package notification

import (
	"bytes"
	"html/template"
)

// emailTmpl is the HTML wrapper applied to every outgoing order email.
// {{.Subject}} and {{.Body}} are auto-escaped by html/template.
var emailTmpl = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width,initial-scale=1.0">
  <title>{{.Subject}}</title>
</head>
<body style="margin:0;padding:0;background-color:#fdf6f0;
     font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,Arial,sans-serif;">
  <table width="100%" cellpadding="0" cellspacing="0" role="presentation"
         style="background-color:#fdf6f0;padding:32px 16px;">
    <tr>
      <td align="center">
        <table width="560" cellpadding="0" cellspacing="0" role="presentation"
               style="max-width:560px;width:100%;">
          <tr>
            <td style="background-color:#7c2d12;padding:24px 36px;border-radius:12px 12px 0 0;">
              <span style="font-size:20px;font-weight:700;color:#ffffff;">Cloud City Cake Co.</span>
              <span style="display:block;font-size:11px;color:#fed7aa;margin-top:2px;letter-spacing:0.4px;">
                ORDER UPDATE
              </span>
            </td>
          </tr>
          <tr>
            <td style="background-color:#fff7ed;padding:14px 36px;border-left:3px solid #ea580c;">
              <p style="margin:0;font-size:15px;font-weight:600;color:#431407;">{{.Subject}}</p>
            </td>
          </tr>
          <tr>
            <td style="background-color:#ffffff;padding:32px 36px;">
              <div style="font-size:14px;line-height:1.7;color:#374151;
                          white-space:pre-wrap;word-break:break-word;">{{.Body}}</div>
            </td>
          </tr>
          <tr>
            <td style="background-color:#fafaf9;padding:18px 36px;
                       border-top:1px solid #e7e5e4;border-radius:0 0 12px 12px;">
              <p style="margin:0;font-size:12px;color:#a8a29e;">
                You are receiving this email because you placed an order with Cloud City Cake Co.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>
`))

// buildEmailHTML renders the HTML email template with the given subject and body.
func buildEmailHTML(subject, body string) (string, error) {
	var buf bytes.Buffer
	err := emailTmpl.Execute(&buf, struct{ Subject, Body string }{subject, body})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
