package messages

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_JsonDataMsg(t *testing.T) {
	headers := map[string]string{HeaderEntityID: "u1"}
	msg, err := NewJsonDataMsg(map[string]string{"hello": "world"}, headers)
	require.NoError(t, err)

	assert.JSONEq(t, `{"hello":"world"}`, string(msg.HttpBody()))
	assert.Equal(t, ContentTypeJSON, msg.ContentType())
	assert.Equal(t, "u1", msg.HttpHeaders()[HeaderEntityID])

	// envelope is immutable from the outside
	headers[HeaderEntityID] = "changed"
	msg.HttpHeaders()[HeaderEntityID] = "changed"
	body := msg.HttpBody()
	body[0] = 'X'
	assert.Equal(t, "u1", msg.HttpHeaders()[HeaderEntityID])
	assert.JSONEq(t, `{"hello":"world"}`, string(msg.HttpBody()))
}

func Test_JsonDataMsg_NilBody(t *testing.T) {
	_, err := NewJsonDataMsg(nil, nil)
	require.Error(t, err)
}

func Test_JsonDataMsg_AppCmds(t *testing.T) {
	msg, err := NewJsonDataMsg(AppCmdsBody{AppCmds: []int{1, 2}}, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"appCmds":[1,2]}`, string(msg.HttpBody()))
	assert.Empty(t, msg.HttpHeaders())
}

func readParts(t *testing.T, msg *MultFormDataMsg) (map[string]string, map[string][]string) {
	t.Helper()
	mediaType, params, err := mime.ParseMediaType(msg.ContentType())
	require.NoError(t, err)
	require.Equal(t, "multipart/form-data", mediaType)
	require.Equal(t, msg.Boundary(), params["boundary"])

	fields := map[string]string{}
	files := map[string][]string{}
	r := multipart.NewReader(bytes.NewReader(msg.HttpBody()), params["boundary"])
	for {
		part, err := r.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(part)
		require.NoError(t, err)
		if part.FileName() != "" {
			files[part.FormName()] = append(files[part.FormName()], part.FileName()+":"+string(data))
			continue
		}
		fields[part.FormName()] = string(data)
	}
	return fields, files
}

func Test_MultFormDataMsg(t *testing.T) {
	form, err := CreateFormData(map[string]interface{}{
		"email":  "a@b.com",
		"status": 1,
		"attributes": map[string]interface{}{
			"avatar": &File{Name: "me.png", Content: []byte("png")},
			"name":   "Alice",
		},
	})
	require.NoError(t, err)

	signed := map[string]string{"signature": "0xabc"}
	msg, err := NewMultFormDataMsg(form, signed, map[string]string{HeaderEntityID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "u1", msg.HttpHeaders()[HeaderEntityID])

	fields, files := readParts(t, msg)
	assert.Equal(t, "a@b.com", fields["email"])
	assert.Equal(t, "1", fields["status"])
	assert.JSONEq(t, `{"avatar":"me.png","name":"Alice"}`, fields["attributes"])
	assert.JSONEq(t, `{"signature":"0xabc"}`, fields[EnvelopeField])
	assert.Equal(t, []string{"me.png:png"}, files["avatar"])
}

func Test_MultFormDataMsg_RequiresSignedPayload(t *testing.T) {
	_, err := NewMultFormDataMsg(NewFormData(), nil, nil)
	require.Error(t, err)
}

func Test_ReplaceFileWithName(t *testing.T) {
	attrs := map[string]interface{}{
		"avatar":  &File{Name: "a.png"},
		"gallery": []*File{{Name: "1.png"}, {Name: "2.png"}},
		"bio":     "hello",
	}
	out, err := ReplaceFileWithName(attrs)
	require.NoError(t, err)
	assert.Equal(t, "a.png", out["avatar"])
	assert.Equal(t, []string{"1.png", "2.png"}, out["gallery"])
	assert.Equal(t, "hello", out["bio"])

	_, stillFile := attrs["avatar"].(*File)
	assert.True(t, stillFile, "input must not be mutated")
	empty, err := ReplaceFileWithName(nil)
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func Test_NilFilesAreRejected(t *testing.T) {
	cases := map[string]map[string]interface{}{
		"nil file":            {"avatar": (*File)(nil)},
		"nil file in gallery": {"gallery": []*File{{Name: "1.png"}, nil}},
	}
	for name, attrs := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReplaceFileWithName(attrs)
			require.Error(t, err)

			_, err = CreateFormData(map[string]interface{}{"attributes": attrs})
			require.Error(t, err)
		})
	}

	t.Run("top level nil file", func(t *testing.T) {
		_, err := CreateFormData(map[string]interface{}{"document": (*File)(nil)})
		require.Error(t, err)
	})

	t.Run("nil file appended directly", func(t *testing.T) {
		fd := NewFormData()
		fd.AppendFile("avatar", nil)
		_, err := NewMultFormDataMsg(fd, map[string]string{"signature": "0x"}, nil)
		require.Error(t, err)
	})
}

func Test_CreateFormData_MultipleFiles(t *testing.T) {
	form, err := CreateFormData(map[string]interface{}{
		"attributes": map[string]interface{}{
			"gallery": []*File{{Name: "1.png"}, {Name: "2.png"}},
		},
		"skipped": nil,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"1.png", "2.png"}, form.FileNames("gallery"))
	_, ok := form.Field("skipped")
	assert.False(t, ok)
}

func Test_GenSha256Hash(t *testing.T) {
	h1, err := GenSha256Hash(map[string]interface{}{"b": 1, "a": "x"})
	require.NoError(t, err)
	h2, err := GenSha256Hash(map[string]interface{}{"a": "x", "b": 1})
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)

	// sha256("{}")
	empty, err := GenSha256Hash(map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, "44136fa355b3678a1146ad16f7e8649e94fb4fc21fe77e8310c060f61caaff8a", empty)

	_, err = GenSha256Hash(func() {})
	require.Error(t, err)

	var raw json.RawMessage
	_, err = GenSha256Hash(raw)
	require.NoError(t, err)
}
