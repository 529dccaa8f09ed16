package gmail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"maps"
	"mime"
	"slices"
	"strings"

	"github.com/olmmcc/emaild/pkg/mailer"
)

// buildRaw renders email as an RFC 5322 message encoded the way the Gmail
// API expects it in the "raw" field.
func buildRaw(email *mailer.Email) (string, error) {
	if len(email.Recipients()) == 0 {
		return "", fmt.Errorf("%w: %w", ErrBuildMessage, mailer.ErrNoRecipient)
	}

	var buf bytes.Buffer
	writeHeader(&buf, "From", email.From)
	writeHeader(&buf, "To", strings.Join(email.To, ", "))
	writeHeader(&buf, "Cc", strings.Join(email.CC, ", "))
	writeHeader(&buf, "Bcc", strings.Join(email.BCC, ", "))
	writeHeader(&buf, "Reply-To", email.ReplyTo)
	writeHeader(&buf, "Subject", mime.QEncoding.Encode("utf-8", email.Subject))
	for _, k := range slices.Sorted(maps.Keys(email.Headers)) {
		writeHeader(&buf, k, email.Headers[k])
	}
	writeHeader(&buf, "MIME-Version", "1.0")

	switch {
	case email.HTML != "" && email.Text != "":
		boundary := "emaild-alt"
		writeHeader(&buf, "Content-Type", fmt.Sprintf(`multipart/alternative; boundary="%s"`, boundary))
		buf.WriteString("\r\n")
		writePart(&buf, boundary, "text/plain", email.Text)
		writePart(&buf, boundary, "text/html", email.HTML)
		fmt.Fprintf(&buf, "--%s--\r\n", boundary)
	case email.HTML != "":
		writeHeader(&buf, "Content-Type", `text/html; charset="UTF-8"`)
		buf.WriteString("\r\n")
		buf.WriteString(email.HTML)
	default:
		writeHeader(&buf, "Content-Type", `text/plain; charset="UTF-8"`)
		buf.WriteString("\r\n")
		buf.WriteString(email.Text)
	}

	return base64.URLEncoding.EncodeToString(buf.Bytes()), nil
}

func writeHeader(buf *bytes.Buffer, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(buf, "%s: %s\r\n", name, value)
}

func writePart(buf *bytes.Buffer, boundary, contentType, content string) {
	fmt.Fprintf(buf, "--%s\r\n", boundary)
	fmt.Fprintf(buf, "Content-Type: %s; charset=\"UTF-8\"\r\n\r\n", contentType)
	buf.WriteString(content)
	buf.WriteString("\r\n")
}
