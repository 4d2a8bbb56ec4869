package content

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// formats lists the recognised front-matter blocks. YAML is decoded with
// yaml.v3 so that YAML 1.1 booleans such as y, no and on stay strings.
var formats = []*frontmatter.Format{
	frontmatter.NewFormat("---", "---", yaml.Unmarshal),
	frontmatter.NewFormat("+++", "+++", toml.Unmarshal),
	frontmatter.NewFormat(";;;", ";;;", json.Unmarshal),
}

// ParseDocument splits source into its front-matter mapping and Markdown body.
// YAML (---), TOML (+++) and JSON (;;;) blocks are recognised. A document
// without front-matter yields an empty mapping and the whole source as body.
func ParseDocument(source []byte) (map[string]any, []byte, error) {
	meta := map[string]any{}
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta, formats...)
	if err != nil {
		return nil, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if meta == nil {
		meta = map[string]any{}
	}
	return meta, body, nil
}
