package document

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docextract/constants"
)

func TestFieldInvariant(t *testing.T) {
	assert.False(t, Text("", 0.9).IsSet())
	assert.False(t, Text("Acme", 0).IsSet())
	assert.Nil(t, Number(12, 0).Value)

	f := Number(75000, 1.7)
	assert.True(t, f.IsSet())
	assert.Equal(t, 1.0, f.Confidence)

	assert.Equal(t, "", Empty().WithRaw("ignored").RawText)
	assert.Equal(t, 0.42, FromPercent(42))
	assert.Equal(t, 0.0, ClampConfidence(-3))
}

func TestFieldUnmarshalNormalizes(t *testing.T) {
	var f Field
	require.NoError(t, json.Unmarshal([]byte(`{"value":"Acme","confidence":0}`), &f))
	assert.False(t, f.IsSet())
	assert.Nil(t, f.Value)

	require.NoError(t, json.Unmarshal([]byte(`{"value":12.5,"confidence":0.8,"rawText":"$12.50"}`), &f))
	v, ok := f.Float()
	assert.True(t, ok)
	assert.Equal(t, 12.5, v)
	assert.Equal(t, "$12.50", f.RawText)
}

func TestExtractionSetFieldAndFields(t *testing.T) {
	ex := NewExtraction(constants.W2)
	require.NotNil(t, ex.W2)
	assert.True(t, ex.SetField("employerName", Text("Acme Corp", 0.9)))
	assert.False(t, ex.SetField("notAField", Text("x", 0.9)))

	assert.Equal(t, "Acme Corp", ex.W2.EmployerName.String())
	assert.Len(t, ex.Fields(), 14)
	assert.Equal(t, 1, ex.SetCount())
	assert.InDelta(t, 0.9, ex.MeanConfidence(), 1e-9)
}

func TestExtractionUnknownTypeIsGeneric(t *testing.T) {
	ex := NewExtraction("insurance")
	assert.Equal(t, constants.Other, ex.Type)
	require.NotNil(t, ex.Generic)
	assert.True(t, ex.SetField("anything", Number(3, 0.5)))
	assert.Equal(t, 0.0, (&Extraction{Type: constants.Other}).MeanConfidence())
}

func TestExtractionJSONRoundTrip(t *testing.T) {
	ex := NewExtraction(constants.Paystub)
	ex.Paystub.GrossPay = Number(2500, 0.9)
	ex.Paystub.PayDate = Text("2024-05-31", 0.8)

	b, err := json.Marshal(ex)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"documentType":"paystub"`)
	assert.Contains(t, string(b), `"grossPay":{"value":2500,"confidence":0.9}`)

	var back Extraction
	require.NoError(t, json.Unmarshal(b, &back))
	require.NotNil(t, back.Paystub)
	assert.Equal(t, ex.Paystub.GrossPay, back.Paystub.GrossPay)
	assert.False(t, back.Paystub.NetPay.IsSet())
}

func TestGenericJSON(t *testing.T) {
	ex := NewExtraction(constants.Other)
	ex.Generic.RawText = "hello"
	ex.SetField("amount_1", Number(10, 0.5))

	b, err := json.Marshal(ex)
	require.NoError(t, err)

	var back Extraction
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, constants.Other, back.Type)
	assert.Equal(t, "hello", back.Generic.RawText)
	assert.Equal(t, Number(10, 0.5), back.Generic.Fields["amount_1"])
}

func TestResultConstructors(t *testing.T) {
	ok := Succeeded("mock", NewExtraction(constants.ID), 0.8)
	assert.True(t, ok.Success)
	assert.Equal(t, constants.ID, ok.DocumentType)
	assert.NotNil(t, ok.Extraction)

	bad := Failed("cloud", "", "INVALID_INPUT", "empty")
	assert.False(t, bad.Success)
	assert.Nil(t, bad.Extraction)
	assert.Equal(t, constants.Other, bad.DocumentType)
	assert.Equal(t, "empty", bad.Error)
}
