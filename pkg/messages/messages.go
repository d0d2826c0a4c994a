// Package messages packages commands and signed transactions into
// transport-ready envelopes.
package messages

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
)

const (
	HeaderEntityID = "entity-id"

	// EnvelopeField is the multipart part carrying the signed transaction.
	EnvelopeField = "envelope"

	ContentTypeJSON = "application/json"
)

// IMessage is an immutable envelope consumed once by the transport.
type IMessage interface {
	// HttpBody returns a copy of the encoded body
	HttpBody() []byte

	// HttpHeaders returns a copy of the envelope headers
	HttpHeaders() map[string]string

	ContentType() string
}

func copyHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		out[k] = v
	}
	return out
}

type baseMsg struct {
	body        []byte
	headers     map[string]string
	contentType string
}

func (m *baseMsg) HttpBody() []byte {
	out := make([]byte, len(m.body))
	copy(out, m.body)
	return out
}

func (m *baseMsg) HttpHeaders() map[string]string {
	return copyHeaders(m.headers)
}

func (m *baseMsg) ContentType() string {
	return m.contentType
}

// JsonDataMsg carries a JSON body: a command list or a signed transaction payload.
type JsonDataMsg struct {
	baseMsg
}

// AppCmdsBody is the JSON body of an unsigned command message.
type AppCmdsBody struct {
	AppCmds interface{} `json:"appCmds"`
}

func NewJsonDataMsg(data interface{}, headers map[string]string) (*JsonDataMsg, error) {
	if data == nil {
		return nil, fmt.Errorf("message body cannot be nil")
	}
	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message body: %w", err)
	}
	return &JsonDataMsg{baseMsg{
		body:        body,
		headers:     copyHeaders(headers),
		contentType: ContentTypeJSON,
	}}, nil
}

// MultFormDataMsg carries form fields, attached files and the signed payload
// as a multipart/form-data body.
type MultFormDataMsg struct {
	baseMsg
	boundary string
}

func NewMultFormDataMsg(form *FormData, signedPayload interface{}, headers map[string]string) (*MultFormDataMsg, error) {
	if form == nil {
		form = NewFormData()
	}
	if signedPayload == nil {
		return nil, fmt.Errorf("signed payload cannot be nil")
	}
	envelope, err := json.Marshal(signedPayload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal signed payload: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range form.fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, fmt.Errorf("failed to write form field %s: %w", f.name, err)
		}
	}
	for _, f := range form.files {
		if f.file == nil {
			return nil, fmt.Errorf("form file %s is nil", f.name)
		}
		part, err := w.CreateFormFile(f.name, f.file.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to create form file %s: %w", f.name, err)
		}
		if _, err := part.Write(f.file.Content); err != nil {
			return nil, fmt.Errorf("failed to write form file %s: %w", f.name, err)
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"`, EnvelopeField))
	h.Set("Content-Type", ContentTypeJSON)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create envelope part: %w", err)
	}
	if _, err := part.Write(envelope); err != nil {
		return nil, fmt.Errorf("failed to write envelope part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	return &MultFormDataMsg{
		baseMsg: baseMsg{
			body:        buf.Bytes(),
			headers:     copyHeaders(headers),
			contentType: w.FormDataContentType(),
		},
		boundary: w.Boundary(),
	}, nil
}

func (m *MultFormDataMsg) Boundary() string {
	return m.boundary
}
