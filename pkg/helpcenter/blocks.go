package helpcenter

import (
	"encoding/json"
	"fmt"
)

// BlockType is the domain type for rich-text block variants.
type BlockType string

// Known block variants (typed).
const (
	BlockParagraph BlockType = "paragraph"
	BlockHeading   BlockType = "heading"
	BlockList      BlockType = "list"
	BlockImage     BlockType = "image"
	BlockQuote     BlockType = "quote"
	BlockCode      BlockType = "code"
	BlockDivider   BlockType = "divider"
)

// IsValid returns true for a known block variant.
func (t BlockType) IsValid() bool {
	switch t {
	case BlockParagraph, BlockHeading, BlockList, BlockImage, BlockQuote, BlockCode, BlockDivider:
		return true
	}
	return false
}

// Block is one rich-text content block. Data is kept as opaque JSON; only
// its structure is validated, never its meaning.
type Block struct {
	Type BlockType       `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Body is the ordered rich-text content of a guide.
type Body struct {
	Blocks []Block `json:"blocks"`
}

// Validate checks every block for structural well-formedness. Unknown block
// types are rejected here, at the boundary, so persistence never sees them.
func (b Body) Validate() error {
	if b.Blocks == nil {
		return fmt.Errorf("%w: body requires a blocks list", ErrInvalidBlock)
	}
	for i, blk := range b.Blocks {
		if err := blk.Validate(); err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
	}
	return nil
}

// Validate checks a single block against its variant's structural shape.
func (b Block) Validate() error {
	if !b.Type.IsValid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidBlock, b.Type)
	}

	switch b.Type {
	case BlockDivider:
		// No payload required.
		return nil
	case BlockParagraph, BlockQuote, BlockCode:
		var data struct {
			Text *string `json:"text"`
		}
		if err := decodeBlockData(b.Data, &data); err != nil {
			return err
		}
		if data.Text == nil {
			return fmt.Errorf("%w: %s requires data.text", ErrInvalidBlock, b.Type)
		}
	case BlockHeading:
		var data struct {
			Text  *string `json:"text"`
			Level int     `json:"level"`
		}
		if err := decodeBlockData(b.Data, &data); err != nil {
			return err
		}
		if data.Text == nil {
			return fmt.Errorf("%w: heading requires data.text", ErrInvalidBlock)
		}
		if data.Level < 1 || data.Level > 6 {
			return fmt.Errorf("%w: heading level must be 1..6, got %d", ErrInvalidBlock, data.Level)
		}
	case BlockList:
		var data struct {
			Items *[]string `json:"items"`
		}
		if err := decodeBlockData(b.Data, &data); err != nil {
			return err
		}
		if data.Items == nil {
			return fmt.Errorf("%w: list requires data.items", ErrInvalidBlock)
		}
	case BlockImage:
		var data struct {
			URL *string `json:"url"`
			Alt string  `json:"alt"`
		}
		if err := decodeBlockData(b.Data, &data); err != nil {
			return err
		}
		if data.URL == nil || *data.URL == "" {
			return fmt.Errorf("%w: image requires data.url", ErrInvalidBlock)
		}
	}

	return nil
}

func decodeBlockData(raw json.RawMessage, into any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing data", ErrInvalidBlock)
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBlock, err)
	}
	return nil
}
