package helpcenter_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tendant/help-center/pkg/helpcenter"
)

func TestBodyValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    helpcenter.Body
		wantErr bool
	}{
		{
			name:    "nil blocks list rejected",
			body:    helpcenter.Body{},
			wantErr: true,
		},
		{
			name: "empty blocks list allowed",
			body: helpcenter.Body{Blocks: []helpcenter.Block{}},
		},
		{
			name: "paragraph with text",
			body: helpcenter.Body{Blocks: []helpcenter.Block{
				{Type: helpcenter.BlockParagraph, Data: json.RawMessage(`{"text":"hi"}`)},
			}},
		},
		{
			name: "paragraph missing text",
			body: helpcenter.Body{Blocks: []helpcenter.Block{
				{Type: helpcenter.BlockParagraph, Data: json.RawMessage(`{}`)},
			}},
			wantErr: true,
		},
		{
			name: "empty paragraph text allowed",
			body: helpcenter.Body{Blocks: []helpcenter.Block{
				{Type: helpcenter.BlockParagraph, Data: json.RawMessage(`{"text":""}`)},
			}},
		},
		{
			name: "unknown block type",
			body: helpcenter.Body{Blocks: []helpcenter.Block{
				{Type: "table", Data: json.RawMessage(`{}`)},
			}},
			wantErr: true,
		},
		{
			name: "heading with valid level",
			body: helpcenter.Body{Blocks: []helpcenter.Block{
				{Type: helpcenter.BlockHeading, Data: json.RawMessage(`{"text":"Title","level":2}`)},
			}},
		},
		{
			name: "heading level out of range",
			body: helpcenter.Body{Blocks: []helpcenter.Block{
				{Type: helpcenter.BlockHeading, Data: json.RawMessage(`{"text":"Title","level":7}`)},
			}},
			wantErr: true,
		},
		{
			name: "heading missing level",
			body: helpcenter.Body{Blocks: []helpcenter.Block{
				{Type: helpcenter.BlockHeading, Data: json.RawMessage(`{"text":"Title"}`)},
			}},
			wantErr: true,
		},
		{
			name: "list with items",
			body: helpcenter.Body{Blocks: []helpcenter.Block{
				{Type: helpcenter.BlockList, Data: json.RawMessage(`{"items":["a","b"]}`)},
			}},
		},
		{
			name: "list missing items",
			body: helpcenter.Body{Blocks: []helpcenter.Block{
				{Type: helpcenter.BlockList, Data: json.RawMessage(`{}`)},
			}},
			wantErr: true,
		},
		{
			name: "image with url",
			body: helpcenter.Body{Blocks: []helpcenter.Block{
				{Type: helpcenter.BlockImage, Data: json.RawMessage(`{"url":"https://cdn.example.com/a.png","alt":"a"}`)},
			}},
		},
		{
			name: "image with empty url",
			body: helpcenter.Body{Blocks: []helpcenter.Block{
				{Type: helpcenter.BlockImage, Data: json.RawMessage(`{"url":""}`)},
			}},
			wantErr: true,
		},
		{
			name: "divider needs no data",
			body: helpcenter.Body{Blocks: []helpcenter.Block{
				{Type: helpcenter.BlockDivider},
			}},
		},
		{
			name: "malformed data payload",
			body: helpcenter.Body{Blocks: []helpcenter.Block{
				{Type: helpcenter.BlockQuote, Data: json.RawMessage(`{"text"`)},
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.body.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, helpcenter.ErrInvalidBlock)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
