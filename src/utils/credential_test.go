package utils

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCredentialRoundTrip(t *testing.T) {
	in := &Credential{
		EventID:      12,
		BookingID:    345,
		TicketSerial: "0b54f4e1-3f61-4af7-a52e-1a3ffd0ae5a2",
	}
	payload := EncodeCredential(in)
	assert.True(t, len(payload) > 4)
	assert.Equal(t, "TG1.", payload[:4])

	out, ok := DecodeCredential(payload)
	assert.True(t, ok)
	assert.Equal(t, in, out)
}

func TestDecodeCredentialTrimsWhitespace(t *testing.T) {
	payload := EncodeCredential(&Credential{EventID: 1, BookingID: 2, TicketSerial: "abc"})
	out, ok := DecodeCredential("  " + payload + "\n")
	assert.True(t, ok)
	assert.Equal(t, uint(2), out.BookingID)
}

func TestDecodeLooseJSON(t *testing.T) {
	out, ok := DecodeCredential(`{"eventId": 12, "bookingId": 345, "ticketId": "serial-1"}`)
	assert.True(t, ok)
	assert.Equal(t, uint(12), out.EventID)
	assert.Equal(t, uint(345), out.BookingID)
	assert.Equal(t, "serial-1", out.TicketSerial)

	// Numbers as strings and the legacy reservationId key.
	out, ok = DecodeCredential(`{"eventId": "12", "reservationId": "345", "ticketId": "serial-1"}`)
	assert.True(t, ok)
	assert.Equal(t, uint(12), out.EventID)
	assert.Equal(t, uint(345), out.BookingID)
}

func TestDecodeDelimited(t *testing.T) {
	out, ok := DecodeCredential("e:12:b:345:t:serial-1")
	assert.True(t, ok)
	assert.Equal(t, &Credential{EventID: 12, BookingID: 345, TicketSerial: "serial-1"}, out)
}

func TestDecodeCredentialRejectsGarbage(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"not a credential",
		"TG1.!!!not-base64!!!",
		"TG1." + "eyJmb28iOiJiYXIifQ", // valid base64, wrong shape
		`{"eventId": 12}`,
		`{"eventId": 0, "bookingId": 345, "ticketId": "x"}`,
		"e:12:b:345",
		"e:x:b:345:t:serial",
		"x:12:b:345:t:serial",
	}
	for _, raw := range cases {
		out, ok := DecodeCredential(raw)
		assert.False(t, ok, "expected %q to be rejected", raw)
		assert.Nil(t, out)
	}
}

func TestRenderCredentialQR(t *testing.T) {
	target := path.Join(t.TempDir(), "eticket.jpeg")
	err := RenderCredentialQR(&Credential{EventID: 1, BookingID: 2, TicketSerial: "abc"}, target)
	assert.NoError(t, err)

	info, err := os.Stat(target)
	assert.NoError(t, err)
	assert.True(t, info.Size() > 0)
}
