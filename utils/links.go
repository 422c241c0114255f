package utils

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrMissingContactNumber is returned when a contact link is requested for an empty number
var ErrMissingContactNumber = errors.New("contact number is empty")

const whatsAppBase = "https://wa.me/"

// BuildLookupLink returns the public page a customer opens to see a job.
// It never fails; an empty code still yields a link, which simply finds nothing.
func BuildLookupLink(baseURL, code string) string {
	q := url.Values{}
	q.Set("code", NormalizeCode(code))

	u, err := url.Parse(baseURL)
	if err != nil {
		sep := "?"
		if strings.Contains(baseURL, "?") {
			sep = "&"
		}
		return baseURL + sep + q.Encode()
	}

	existing := u.Query()
	existing.Set("code", NormalizeCode(code))
	u.RawQuery = existing.Encode()
	return u.String()
}

// ContactMessage holds the fields rendered into the customer update message
type ContactMessage struct {
	ShopName   string
	Vehicle    string
	Plate      string
	Code       string
	Status     string
	Progress   int
	Detail     string
	LookupLink string
}

// Render produces the message text sent with the contact link
func (m ContactMessage) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Halo Kak 👋\n")
	fmt.Fprintf(&b, "Ini update progress motor dari %s.\n\n", orDash(m.ShopName))
	fmt.Fprintf(&b, "🛵 Motor: %s\n", orDash(m.Vehicle))
	fmt.Fprintf(&b, "📌 Plat: %s\n", orDash(m.Plate))
	fmt.Fprintf(&b, "🔑 Kode Cek: %s\n", orDash(m.Code))
	fmt.Fprintf(&b, "📍 Status: %s\n", orDash(m.Status))
	fmt.Fprintf(&b, "📈 Progress: %d%%\n", ClampProgress(m.Progress))
	fmt.Fprintf(&b, "🧾 Detail: %s\n\n", orDash(m.Detail))
	fmt.Fprintf(&b, "🔎 Cek progress di sini:\n%s\n\n", m.LookupLink)
	b.WriteString("Terima kasih 🙏")
	return b.String()
}

// BuildContactLink builds the WhatsApp deep link for a customer number
func BuildContactLink(number string, msg ContactMessage) (string, error) {
	n := NormalizeContactNumber(number)
	if n == "" {
		return "", ErrMissingContactNumber
	}
	return whatsAppBase + url.PathEscape(n) + "?text=" + url.QueryEscape(msg.Render()), nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
