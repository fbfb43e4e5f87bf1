package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pocketbase"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encodeBody serializes a create or update body. Bodies holding a File are
// written as multipart/form-data, everything else as JSON.
func encodeBody(body interface{}) ([]byte, string, error) {
	if body == nil {
		return []byte("{}"), constants.ContentTypeJSON, nil
	}

	fields, ok := bodyFields(body)
	if ok && hasFile(fields) {
		return encodeMultipart(fields)
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, "", &pocketbase.SerializationError{Op: "encode request body", Err: err}
	}

	return data, constants.ContentTypeJSON, nil
}

// bodyFields returns the top-level fields of a map or struct body, keeping
// the original Go values so File fields survive.
func bodyFields(body interface{}) (map[string]interface{}, bool) {
	switch typed := body.(type) {
	case map[string]interface{}:
		return typed, true
	case pocketbase.Record:
		return typed.Fields(), true
	case *pocketbase.Record:
		if typed == nil {
			return nil, false
		}

		return typed.Fields(), true
	}

	value := reflect.ValueOf(body)
	for value.Kind() == reflect.Ptr || value.Kind() == reflect.Interface {
		if value.IsNil() {
			return nil, false
		}

		value = value.Elem()
	}

	switch value.Kind() {
	case reflect.Map:
		if value.Type().Key().Kind() != reflect.String {
			return nil, false
		}

		fields := make(map[string]interface{}, value.Len())

		iter := value.MapRange()
		for iter.Next() {
			fields[iter.Key().String()] = iter.Value().Interface()
		}

		return fields, true
	case reflect.Struct:
		if isFile(value.Interface()) {
			return nil, false
		}

		fields := make(map[string]interface{})
		collectStructFields(value, fields)

		return fields, true
	default:
		return nil, false
	}
}

func collectStructFields(value reflect.Value, fields map[string]interface{}) {
	structType := value.Type()

	for i := range structType.NumField() {
		field := structType.Field(i)
		if !field.IsExported() {
			continue
		}

		name, omitEmpty, skip := parseJSONTag(field)
		if skip {
			continue
		}

		fieldValue := value.Field(i)

		if field.Anonymous && name == "" {
			embedded := fieldValue
			if embedded.Kind() == reflect.Ptr {
				if embedded.IsNil() {
					continue
				}

				embedded = embedded.Elem()
			}

			if embedded.Kind() == reflect.Struct {
				collectStructFields(embedded, fields)

				continue
			}
		}

		if name == "" {
			name = field.Name
		}

		if omitEmpty && fieldValue.IsZero() {
			continue
		}

		fields[name] = fieldValue.Interface()
	}
}

func parseJSONTag(field reflect.StructField) (string, bool, bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}

	name, options, _ := strings.Cut(tag, ",")

	return name, strings.Contains(options, "omitempty"), false
}

func isFile(value interface{}) bool {
	switch value.(type) {
	case pocketbase.File, *pocketbase.File, []pocketbase.File, []*pocketbase.File:
		return true
	default:
		return false
	}
}

// hasFile reports whether any field carries a file to upload. Nil pointers
// and empty lists do not count.
func hasFile(fields map[string]interface{}) bool {
	for _, value := range fields {
		if holdsFile(value) {
			return true
		}
	}

	return false
}

func holdsFile(value interface{}) bool {
	switch typed := value.(type) {
	case pocketbase.File:
		return true
	case *pocketbase.File:
		return typed != nil
	case []pocketbase.File:
		return len(typed) > 0
	case []*pocketbase.File:
		for _, file := range typed {
			if file != nil {
				return true
			}
		}

		return false
	default:
		return false
	}
}

func encodeMultipart(fields map[string]interface{}) ([]byte, string, error) {
	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		err := writeField(writer, key, fields[key])
		if err != nil {
			return nil, "", &pocketbase.SerializationError{Op: "encode multipart field " + key, Err: err}
		}
	}

	err := writer.Close()
	if err != nil {
		return nil, "", &pocketbase.SerializationError{Op: "close multipart body", Err: err}
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}

func writeField(writer *multipart.Writer, key string, value interface{}) error {
	switch typed := value.(type) {
	case pocketbase.File:
		return writeFile(writer, key, &typed)
	case *pocketbase.File:
		if typed == nil {
			return writer.WriteField(key, "")
		}

		return writeFile(writer, key, typed)
	case []pocketbase.File:
		for i := range typed {
			err := writeFile(writer, key, &typed[i])
			if err != nil {
				return err
			}
		}

		return nil
	case []*pocketbase.File:
		for _, file := range typed {
			if file == nil {
				continue
			}

			err := writeFile(writer, key, file)
			if err != nil {
				return err
			}
		}

		return nil
	}

	text, err := formatScalar(value)
	if err != nil {
		return err
	}

	return writer.WriteField(key, text)
}

// formatScalar renders scalars as text and any other value as JSON.
func formatScalar(value interface{}) (string, error) {
	if value == nil {
		return "", nil
	}

	switch typed := value.(type) {
	case string:
		return typed, nil
	case json.Number:
		return typed.String(), nil
	case fmt.Stringer:
		if _, isMarshaler := value.(json.Marshaler); !isMarshaler {
			return typed.String(), nil
		}
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return "", nil
		}
	}

	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func writeFile(writer *multipart.Writer, key string, file *pocketbase.File) error {
	data := file.Data
	if data == nil && file.Reader != nil {
		read, err := io.ReadAll(file.Reader)
		if err != nil {
			return fmt.Errorf("reading file %q: %w", file.Name, err)
		}

		data = read
	}

	name := file.Name
	if name == "" {
		name = key
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(key), quoteEscaper.Replace(name)))
	header.Set(constants.HeaderContentType, contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("creating part for %q: %w", key, err)
	}

	_, err = part.Write(data)
	if err != nil {
		return fmt.Errorf("writing part for %q: %w", key, err)
	}

	return nil
}
