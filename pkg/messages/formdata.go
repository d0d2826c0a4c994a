package messages

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// File is an uploaded attachment, typically an attribute value.
type File struct {
	Name    string
	Content []byte
}

type formField struct {
	name  string
	value string
}

type formFile struct {
	name string
	file *File
}

// FormData is an ordered set of form fields and files.
type FormData struct {
	fields []formField
	files  []formFile
}

func NewFormData() *FormData {
	return &FormData{}
}

func (fd *FormData) Append(name, value string) {
	fd.fields = append(fd.fields, formField{name: name, value: value})
}

func (fd *FormData) AppendFile(name string, file *File) {
	fd.files = append(fd.files, formFile{name: name, file: file})
}

// Field returns the first value stored under name.
func (fd *FormData) Field(name string) (string, bool) {
	for _, f := range fd.fields {
		if f.name == name {
			return f.value, true
		}
	}
	return "", false
}

// FileNames returns the file names attached under name.
func (fd *FormData) FileNames(name string) []string {
	var out []string
	for _, f := range fd.files {
		if f.name == name && f.file != nil {
			out = append(out, f.file.Name)
		}
	}
	return out
}

// CreateFormData flattens a request payload into form data. Keys are visited
// in sorted order. Files found directly in the "attributes" map are attached
// under their attribute id; every other value is written as a field, JSON
// encoded unless it is already a string.
func CreateFormData(data map[string]interface{}) (*FormData, error) {
	for key, value := range data {
		if f, ok := value.(*File); ok && f == nil {
			return nil, fmt.Errorf("form field %s holds a nil file", key)
		}
	}
	fd := NewFormData()

	for _, key := range sortedKeys(data) {
		value := data[key]
		if value == nil {
			continue
		}
		if key == "attributes" {
			if attrs, ok := asMap(value); ok {
				named, err := ReplaceFileWithName(attrs)
				if err != nil {
					return nil, err
				}
				appendAttributeFiles(fd, attrs)
				replaced, err := json.Marshal(named)
				if err != nil {
					return nil, fmt.Errorf("failed to encode attributes: %w", err)
				}
				fd.Append(key, string(replaced))
				continue
			}
		}
		switch v := value.(type) {
		case string:
			fd.Append(key, v)
		case *File:
			fd.AppendFile(key, v)
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("failed to encode form field %s: %w", key, err)
			}
			fd.Append(key, string(encoded))
		}
	}
	return fd, nil
}

func appendAttributeFiles(fd *FormData, attrs map[string]interface{}) {
	for _, attrID := range sortedKeys(attrs) {
		switch v := attrs[attrID].(type) {
		case *File:
			fd.AppendFile(attrID, v)
		case []*File:
			for _, f := range v {
				fd.AppendFile(attrID, f)
			}
		}
	}
}

// ReplaceFileWithName returns a copy of attrs where every file value is
// replaced by its name, so the attributes can be hashed and committed on chain.
// A nil file is an error.
func ReplaceFileWithName(attrs map[string]interface{}) (map[string]interface{}, error) {
	if attrs == nil {
		return nil, nil
	}
	out := make(map[string]interface{}, len(attrs))
	for k, v := range attrs {
		switch val := v.(type) {
		case *File:
			if val == nil {
				return nil, fmt.Errorf("attribute %s holds a nil file", k)
			}
			out[k] = val.Name
		case []*File:
			names := make([]string, 0, len(val))
			for i, f := range val {
				if f == nil {
					return nil, fmt.Errorf("attribute %s holds a nil file at index %d", k, i)
				}
				names = append(names, f.Name)
			}
			out[k] = names
		default:
			out[k] = v
		}
	}
	return out, nil
}

// GenSha256Hash returns the hex sha256 of the JSON encoding of v.
func GenSha256Hash(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode value for hashing: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func asMap(v interface{}) (map[string]interface{}, bool) {
	m, ok := v.(map[string]interface{})
	return m, ok
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
