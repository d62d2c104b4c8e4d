package dian

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// UnknownSupplier is the placeholder used when the envelope carries no
// sender registration name. A nameless envelope is still a valid envelope.
const UnknownSupplier = "Unknown Supplier"

var (
	// ErrMalformedEnvelope means the outer document is not well-formed XML.
	ErrMalformedEnvelope = errors.New("malformed envelope")
	// ErrMissingInnerDocument means the envelope carries no embedded invoice.
	ErrMissingInnerDocument = errors.New("envelope has no embedded invoice")
)

// Envelope is the outer AttachedDocument. The commercial invoice travels
// inside it as character data under Attachment/ExternalReference/Description.
type Envelope struct {
	Supplier string
	// Payload is the inner invoice XML, whitespace-trimmed.
	Payload string
}

// ReadEnvelope extracts the embedded invoice payload and a best-effort
// supplier name from an AttachedDocument stream.
func ReadEnvelope(r io.Reader) (*Envelope, error) {
	root, err := decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}

	supplier := root.text(cac("SenderParty"), cac("PartyTaxScheme"), cbc("RegistrationName"))
	if supplier == "" {
		supplier = UnknownSupplier
	}

	desc := root.path(cac("Attachment"), cac("ExternalReference"), cbc("Description"))
	if desc == nil {
		return nil, ErrMissingInnerDocument
	}

	payload := strings.TrimSpace(desc.Text)
	if payload == "" {
		return nil, ErrMissingInnerDocument
	}

	return &Envelope{Supplier: supplier, Payload: payload}, nil
}
