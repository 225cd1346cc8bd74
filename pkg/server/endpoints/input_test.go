package endpoints

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casq89/mibauu-backend/pkg/model"
)

func TestReadInput_JSONKeepsNumbers(t *testing.T) {
	req := jsonRequest(http.MethodPost, "/offers", `{"price":12.50,"stock":3,"tags":["a"]}`)

	in, err := readInput(req, nil, "image", true)
	require.NoError(t, err)
	assert.Nil(t, in.file)
	assert.Equal(t, json.Number("12.50"), in.fields["price"])
	assert.Equal(t, []interface{}{"a"}, in.fields["tags"])
}

func TestReadInput_Multipart(t *testing.T) {
	rules := FieldRules{
		"price":  {Kind: FieldFloat, Always: true},
		"stock":  {Kind: FieldInt},
		"enable": {Kind: FieldBool, Always: true},
	}
	req := multipartRequest(t, http.MethodPost, "/products", map[string]string{"stock": "x", "name": "Ball"},
		&formFile{field: "image", filename: "b.png", content: "PNG"})

	in, err := readInput(req, rules, "image", true)
	require.NoError(t, err)
	assert.Equal(t, model.Record{"stock": nil, "name": "Ball", "price": nil, "enable": false}, in.fields)
	require.NotNil(t, in.file)
	assert.Equal(t, "b.png", in.file.Filename)
}

func TestReadInput_MultipartWithoutDefaults(t *testing.T) {
	rules := FieldRules{
		"name":   {Kind: FieldString, Always: true},
		"price":  {Kind: FieldFloat, Always: true},
		"enable": {Kind: FieldBool, Always: true},
	}
	req := multipartRequest(t, http.MethodPut, "/products/5", map[string]string{"price": "3.5"},
		&formFile{field: "image", filename: "b.png", content: "PNG"})

	in, err := readInput(req, rules, "image", false)
	require.NoError(t, err)
	assert.Equal(t, model.Record{"price": 3.5}, in.fields)
	require.NotNil(t, in.file)
}

func TestCoerce(t *testing.T) {
	assert.Equal(t, int64(7), coerce("7", FieldInt))
	assert.Nil(t, coerce("7.5", FieldInt))
	assert.Equal(t, 7.5, coerce("7.5", FieldFloat))
	assert.Equal(t, true, coerce("true", FieldBool))
	assert.Equal(t, false, coerce("TRUE", FieldBool))
	assert.Equal(t, "7", coerce("7", FieldString))
}

func TestFileContentType(t *testing.T) {
	declared := &multipart.FileHeader{Filename: "a.bin", Header: textproto.MIMEHeader{"Content-Type": {"image/webp"}}}
	assert.Equal(t, "image/webp", fileContentType(declared))

	byExt := &multipart.FileHeader{Filename: "a.png", Header: textproto.MIMEHeader{}}
	assert.Equal(t, "image/png", fileContentType(byExt))

	unknown := &multipart.FileHeader{Filename: "a", Header: textproto.MIMEHeader{}}
	assert.Equal(t, "application/octet-stream", fileContentType(unknown))
}
