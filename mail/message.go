package mail

import (
	"fmt"
	"strings"
	"time"
)

func buildMessage(fromHeader, fromAddr, to, subject, htmlBody string) string {
	boundary := fmt.Sprintf("gosignup-%d", time.Now().UnixNano())

	var sb strings.Builder
	sb.WriteString("From: " + fromHeader + "\r\n")
	sb.WriteString("Sender: " + fromAddr + "\r\n")
	sb.WriteString("Reply-To: " + fromAddr + "\r\n")
	sb.WriteString("To: " + to + "\r\n")
	sb.WriteString("Subject: " + subject + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: multipart/alternative; boundary=" + boundary + "\r\n")
	sb.WriteString("\r\n")
	sb.WriteString("--" + boundary + "\r\n")
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	sb.WriteString("Content-Transfer-Encoding: 7bit\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(stripTags(htmlBody) + "\r\n")
	sb.WriteString("--" + boundary + "\r\n")
	sb.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	sb.WriteString("Content-Transfer-Encoding: 7bit\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(htmlBody + "\r\n")
	sb.WriteString("--" + boundary + "--\r\n")
	return sb.String()
}

// OTPMessage renders the verification email body. The passcode appears
// here and nowhere else.
func OTPMessage(code string, ttl time.Duration) string {
	minutes := int(ttl.Minutes())
	if minutes < 1 {
		minutes = 1
	}

	return fmt.Sprintf(`<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
</head>
<body style="margin:0;padding:0;background:#ffffff;color:#0f1114;font-family:Verdana, Arial, sans-serif;">
  <table role="presentation" width="100%%" cellspacing="0" cellpadding="0" border="0" style="background:#ffffff;margin:0;padding:0;">
    <tr>
      <td align="center" style="padding:28px 16px;">
        <table role="presentation" width="480" cellspacing="0" cellpadding="0" border="0" style="width:480px;max-width:480px;background:#f6f7f9;border:1px solid #e3e6ea;">
          <tr>
            <td align="center" style="padding:40px 28px;">
              <div style="font-size:20px;color:#3c434b;margin-bottom:18px;">Your verification code</div>
              <div style="font-size:42px;letter-spacing:8px;font-weight:700;color:#14181d;">%s</div>
              <div style="font-size:15px;color:#3c434b;margin-top:22px;">The code is valid for %d minutes.</div>
              <div style="font-size:15px;color:#8a919a;margin-top:10px;">If this was not you, just ignore this email.</div>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`, code, minutes)
}

// stripTags produces the plain-text alternative part. It is a coarse
// reduction, good enough for the short bodies this package sends.
func stripTags(html string) string {
	var sb strings.Builder
	inTag := false

	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			sb.WriteRune(r)
		}
	}

	fields := strings.Fields(sb.String())
	return strings.Join(fields, " ")
}
