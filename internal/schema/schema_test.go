package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func TestRoundTrip(t *testing.T) {
	payloads := []Payload{
		Text{Content: "<p>Hello <strong>world</strong></p>", Align: "center"},
		Code{Language: "json", Code: "{\n  \"a\": 1\n}"},
		Table{Columns: []string{"Name", "Port"}, Rows: [][]string{{"JIMI", "21100"}, {"JTT"}}},
		Image{URL: "/uploads/a.png", Alt: "diagram", Width: intPtr(640), Height: intPtr(480)},
		Image{URL: "/uploads/b.png"},
		Alert{Variant: "warning", Title: "Careful", Body: "Port 21100 must be open"},
		Hero{Title: "Docs", Subtitle: "Quick answers", BgColor: "slate"},
		CardGrid{Cards: []Card{{Icon: "box", Title: "JC450", Description: "Setup", Link: "/docs/jc450", Color: "blue"}}},
		RawHTML("<div><p>imported</p></div>"),
	}

	for _, p := range payloads {
		t.Run(string(p.Type()), func(t *testing.T) {
			encoded, err := Encode(p)
			require.NoError(t, err)

			decoded, err := Decode(p.Type(), encoded)
			require.NoError(t, err)
			assert.Equal(t, p, decoded)
		})
	}
}

func TestDecodeAliases(t *testing.T) {
	p, err := Decode(TypeTable, `{"headers":["Protocolo","Porta"],"rows":[["JIMI","21100"]]}`)
	require.NoError(t, err)
	assert.Equal(t, Table{Columns: []string{"Protocolo", "Porta"}, Rows: [][]string{{"JIMI", "21100"}}}, p)

	p, err = Decode(TypeAlert, `{"variant":"info","title":"Note","message":"read this"}`)
	require.NoError(t, err)
	assert.Equal(t, Alert{Variant: "info", Title: "Note", Body: "read this"}, p)

	p, err = Decode(TypeCardGrid, `{"icon":"zap","title":"Fast","description":"d","link":"#"}`)
	require.NoError(t, err)
	assert.Equal(t, CardGrid{Cards: []Card{{Icon: "zap", Title: "Fast", Description: "d", Link: "#"}}}, p)
}

func TestDecodeExtraFieldsDropped(t *testing.T) {
	p, err := Decode(TypeCode, `{"language":"bash","code":"ls","theme":"dark"}`)
	require.NoError(t, err)
	assert.Equal(t, Code{Language: "bash", Code: "ls"}, p)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(TypeText, "just some words")
	assert.True(t, errors.Is(err, ErrMalformedPayload))

	_, err = Decode(TypeTable, `{"rows": "nope"}`)
	assert.True(t, errors.Is(err, ErrMalformedPayload))

	_, err = Decode(Type("heading"), `{"level":1}`)
	assert.True(t, errors.Is(err, ErrUnknownType))
}

func TestDecodeRawHTMLStringLiteral(t *testing.T) {
	p, err := Decode(TypeRawHTML, `"<p>quoted</p>"`)
	require.NoError(t, err)
	assert.Equal(t, RawHTML("<p>quoted</p>"), p)
}

func TestFromJSON(t *testing.T) {
	p, err := FromJSON(TypeText, json.RawMessage(`{"content":"<p>x</p>","align":"left"}`))
	require.NoError(t, err)
	assert.Equal(t, Text{Content: "<p>x</p>", Align: "left"}, p)

	p, err = FromJSON(TypeText, json.RawMessage(`"{\"content\":\"<p>y</p>\",\"align\":\"right\"}"`))
	require.NoError(t, err)
	assert.Equal(t, Text{Content: "<p>y</p>", Align: "right"}, p)

	p, err = FromJSON(TypeRawHTML, json.RawMessage(`"<h1>t</h1>"`))
	require.NoError(t, err)
	assert.Equal(t, RawHTML("<h1>t</h1>"), p)

	p, err = FromJSON(TypeAlert, nil)
	require.NoError(t, err)
	assert.Equal(t, Alert{Variant: "info"}, p)

	_, err = FromJSON(Type("bogus"), nil)
	assert.True(t, errors.Is(err, ErrUnknownType))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(Text{Align: "right"}))
	assert.Error(t, Validate(Text{Align: "justify"}))
	assert.NoError(t, Validate(Alert{Variant: "error"}))
	assert.Error(t, Validate(Alert{Variant: "fatal"}))
	assert.Error(t, Validate(nil))
	assert.NoError(t, Validate(RawHTML("")))
}

func TestDefaultCoversEveryType(t *testing.T) {
	for _, typ := range Types {
		p := Default(typ)
		require.NotNil(t, p, typ)
		assert.Equal(t, typ, p.Type())
	}
	assert.Nil(t, Default(Type("nope")))
}
