package dispatcher

import (
	"encoding/base64"
)

// placeholderPayloadBase64 is the fixed demo payload written by sandbox
// downloads. It is a minimal MP3 stub (ID3v2.4 header plus one frame),
// not real media, and is identical for every download.
const placeholderPayloadBase64 = "SUQzBAAAAAAAI1RTU0UAAAAPAAADTGF2ZTU4LjI5LjEwMAAAAAAAAAAAAAAA//uQZAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAWGluZwAAAA8AAAACAAACcQCAgICAgICAgICAgICAgICAgICAgICAgICAgICAgICAgICAgICAgICAgICAgICAgICA"

// placeholderPayload returns a fresh copy of the decoded demo bytes
func placeholderPayload() []byte {
	b, err := base64.StdEncoding.DecodeString(placeholderPayloadBase64)
	if err != nil {
		// The constant is fixed at build time; a decode failure is a bug
		panic("dispatcher: invalid placeholder payload: " + err.Error())
	}
	return b
}
