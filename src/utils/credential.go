package utils

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/yeqown/go-qrcode"
)

// credentialPrefix tags the current wire format. Older scanner builds emit
// bare JSON or the colon-delimited form; DecodeCredential accepts all three.
const credentialPrefix = "TG1."

// Credential binds a booking to its event and the opaque serial minted at
// booking creation. It is derived state: losing a rendered code is not
// fatal, an equivalent one can be produced from the Booking at any time.
type Credential struct {
	EventID      uint   `json:"eventId"`
	BookingID    uint   `json:"bookingId"`
	TicketSerial string `json:"ticketId"`
}

func EncodeCredential(c *Credential) string {
	raw, _ := json.Marshal(c)
	return credentialPrefix + base64.RawURLEncoding.EncodeToString(raw)
}

type decodeStrategy func(raw string) (*Credential, bool)

var decodeStrategies = []decodeStrategy{
	decodePrefixed,
	decodeLooseJSON,
	decodeDelimited,
}

// DecodeCredential tries each known encoding in order. It only inspects the
// payload shape; whether the triple refers to a live booking is the
// admission validator's concern. The second return is false for anything
// unrecognized, it never panics.
func DecodeCredential(raw string) (*Credential, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	for _, parse := range decodeStrategies {
		if c, ok := parse(raw); ok {
			return c, true
		}
	}
	return nil, false
}

func decodePrefixed(raw string) (*Credential, bool) {
	if !strings.HasPrefix(raw, credentialPrefix) {
		return nil, false
	}
	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(raw, credentialPrefix))
	if err != nil {
		return nil, false
	}
	var c Credential
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, false
	}
	if c.EventID == 0 || c.BookingID == 0 || c.TicketSerial == "" {
		return nil, false
	}
	return &c, true
}

// decodeLooseJSON handles payloads from older apps that sent the triple as
// plain JSON, sometimes with numbers as strings and bookingId under its old
// reservationId key.
func decodeLooseJSON(raw string) (*Credential, bool) {
	if !strings.HasPrefix(raw, "{") || !gjson.Valid(raw) {
		return nil, false
	}
	e := gjson.Get(raw, "eventId")
	b := gjson.Get(raw, "bookingId")
	if !b.Exists() {
		b = gjson.Get(raw, "reservationId")
	}
	t := gjson.Get(raw, "ticketId")
	if !e.Exists() || !b.Exists() || !t.Exists() {
		return nil, false
	}
	c := Credential{
		EventID:      uint(e.Uint()),
		BookingID:    uint(b.Uint()),
		TicketSerial: t.String(),
	}
	if c.EventID == 0 || c.BookingID == 0 || c.TicketSerial == "" {
		return nil, false
	}
	return &c, true
}

// decodeDelimited handles the oldest format: e:<id>:b:<id>:t:<serial>.
func decodeDelimited(raw string) (*Credential, bool) {
	parts := strings.SplitN(raw, ":", 6)
	if len(parts) != 6 || parts[0] != "e" || parts[2] != "b" || parts[4] != "t" {
		return nil, false
	}
	eventId, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return nil, false
	}
	bookingId, err := strconv.ParseUint(parts[3], 10, 64)
	if err != nil {
		return nil, false
	}
	if eventId == 0 || bookingId == 0 || parts[5] == "" {
		return nil, false
	}
	return &Credential{
		EventID:      uint(eventId),
		BookingID:    uint(bookingId),
		TicketSerial: parts[5],
	}, true
}

// RenderCredentialQR writes the encoded credential as a QR image.
func RenderCredentialQR(c *Credential, filepath string) error {
	qrc, err := qrcode.New(EncodeCredential(c))
	if err != nil {
		return err
	}
	return qrc.Save(filepath)
}
