package helpers

import "fmt"

// BuildSimpleHTML wraps a body fragment in the shared mail frame.
func BuildSimpleHTML(title, body string) string {
	return fmt.Sprintf(`
<div style="max-width:560px;margin:0 auto;font-family:Arial,sans-serif;border:1px solid #eee;border-radius:8px;padding:24px;">
  <h2 style="color:#222;margin-top:0;">%s</h2>
  %s
  <p style="font-size:12px;color:#999;margin-bottom:0;">Inventory system</p>
</div>`, title, body)
}

// BuildPasswordResetHTML renders the reset mail with a 30-minute link.
func BuildPasswordResetHTML(name, resetLink string) string {
	body := fmt.Sprintf(`
  <p>Hello, %s</p>
  <p>Click the link below to change your password. If you did not request a
  password change, ignore this message.</p>
  <p>The link is valid for 30 minutes only.</p>
  <p><a href="%s" style="display:inline-block;padding:12px 24px;background:#2d74da;color:#fff;text-decoration:none;border-radius:6px;font-weight:600;">Reset password</a></p>
  <p style="font-size:12px;color:#999;">If the button does not work, copy the link: %s</p>`,
		name, resetLink, resetLink)
	return BuildSimpleHTML("Password reset request", body)
}
