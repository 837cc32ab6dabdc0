package model

import (
	"bytes"
	"testing"
)

func TestDecodeDataURI(t *testing.T) {
	got, err := decodeDataURI("data:application/octet-stream;base64,AAEC")
	if err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if !bytes.Equal(got, []byte{0, 1, 2}) {
		t.Errorf("payload = %v, want [0 1 2]", got)
	}
}

func TestDecodeDataURIRejectsNonBase64(t *testing.T) {
	if _, err := decodeDataURI("data:text/plain,hello%20world"); err == nil {
		t.Error("expected error for a percent-encoded data URI")
	}
	if _, err := decodeDataURI("data:application/octet-stream;base64"); err == nil {
		t.Error("expected error for a data URI without a payload separator")
	}
}
