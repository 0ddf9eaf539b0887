// Package ndef builds minimal NDEF messages. Only the well-known Text
// record is needed here: it mirrors a card's plaintext NIP-05 for platforms
// that can read standard NDEF but not custom NTAG424 files.
package ndef

import (
	"fmt"
)

const (
	// Short record, MB and ME set, TNF = well-known (0x01).
	textRecordHeader = 0xD1
	textRecordType   = 'T'

	// Short records cap the payload length at one byte.
	maxShortPayload = 255
)

// TextMessage encodes a single-record NDEF message holding a UTF-8 Text
// record with the given ISO language code.
func TextMessage(lang, text string) ([]byte, error) {
	if lang == "" {
		lang = "en"
	}
	if len(lang) > 63 {
		return nil, fmt.Errorf("ndef: language code too long: %d", len(lang))
	}
	payloadLen := 1 + len(lang) + len(text)
	if payloadLen > maxShortPayload {
		return nil, fmt.Errorf("ndef: text payload too long for a short record: %d", payloadLen)
	}

	msg := make([]byte, 0, 4+payloadLen)
	msg = append(msg, textRecordHeader)
	msg = append(msg, 1) // type length
	msg = append(msg, byte(payloadLen))
	msg = append(msg, textRecordType)
	// Status byte: UTF-8 flag clear, low 6 bits carry the language length.
	msg = append(msg, byte(len(lang)))
	msg = append(msg, lang...)
	msg = append(msg, text...)
	return msg, nil
}
